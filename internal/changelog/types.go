package changelog

// CommitType maps a conventional commit type to a changelog section.
type CommitType struct {
	Type        string `json:"type" yaml:"type"`
	Section     string `json:"section" yaml:"section"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Types is an ordered commit type table.
type Types []CommitType

// OtherSection is the title used for commits without a conventional header.
const OtherSection = "Other Changes"

// DefaultTypes returns a fresh copy of the built-in commit type table.
func DefaultTypes() Types {
	return Types{
		{Type: "feat", Section: "✨ Features", Description: "New features"},
		{Type: "feature", Section: "✨ Features", Description: "New features"},
		{Type: "fix", Section: "🐛 Bug Fixes", Description: "Bug fixes"},
		{Type: "perf", Section: "⚡ Performance", Description: "Performance improvements"},
		{Type: "revert", Section: "⏪ Reverts", Description: "Reverted changes"},
		{Type: "docs", Section: "📝 Documentation", Description: "Documentation updates"},
		{Type: "style", Section: "💄 Styles", Description: "Formatting or style changes"},
		{Type: "chore", Section: "🎫 Chores", Description: "Non-functional changes"},
		{Type: "refactor", Section: "♻ Refactoring", Description: "Code restructuring"},
		{Type: "test", Section: "✅ Tests", Description: "Test updates"},
		{Type: "build", Section: "👷 Build System", Description: "Build tooling changes"},
		{Type: "ci", Section: "🔧 Continuous Integration", Description: "CI configuration"},
		{Type: "config", Section: "🔨 Configuration", Description: "Configuration file updates"},
		{Type: "deps", Section: "🔗 Dependencies", Description: "Dependency version changes"},
		{Type: "security", Section: "🔒 Security", Description: "Security fixes"},
		{Type: "i18n", Section: "🌐 Internationalization", Description: "Localization updates"},
		{Type: "ux", Section: "🖥️ User Experience", Description: "User experience improvements"},
		{Type: "hotfix", Section: "🔥 Hotfixes", Description: "Urgent fixes"},
	}
}

// Merge returns a new table with overrides applied. An override replaces an
// existing entry in place; unknown types are appended in override order.
func (t Types) Merge(overrides []CommitType) Types {
	merged := make(Types, len(t), len(t)+len(overrides))
	copy(merged, t)

	for _, o := range overrides {
		if i := merged.index(o.Type); i >= 0 {
			merged[i] = o
			continue
		}
		merged = append(merged, o)
	}
	return merged
}

// Title returns the section title for a type, falling back to the type
// itself when the table has no entry.
func (t Types) Title(commitType string) string {
	if commitType == "" {
		return OtherSection
	}
	if i := t.index(commitType); i >= 0 {
		return t[i].Section
	}
	return commitType
}

func (t Types) index(commitType string) int {
	for i, ct := range t {
		if ct.Type == commitType {
			return i
		}
	}
	return -1
}
