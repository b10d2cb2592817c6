package changelog

import "github.com/grokify/releaseconductor/internal/commitlog"

// Entry is one commit line in a changelog section.
type Entry struct {
	Type        string
	Scope       string
	Description string
	ShortHash   string
	FullHash    string
	PR          string
	Breaking    bool
	Breaks      string
}

// Section groups the entries for one commit type.
type Section struct {
	Type    string
	Entries []Entry
}

// Classify groups commits by type. Types appear in first-seen order and
// entries keep source order inside a type. Commits without a conventional
// header are grouped under the empty type.
func Classify(commits []commitlog.Commit) []Section {
	var sections []Section
	index := make(map[string]int)

	for _, c := range commits {
		entry := Entry{
			Type:        c.Type,
			Scope:       c.Scope,
			Description: c.Description,
			ShortHash:   c.ShortHash,
			FullHash:    c.FullHash,
			PR:          c.PR,
			Breaking:    c.Breaking,
			Breaks:      c.Breaks,
		}
		if !c.IsConventional() {
			entry.Description = c.Header
		}

		i, ok := index[c.Type]
		if !ok {
			i = len(sections)
			index[c.Type] = i
			sections = append(sections, Section{Type: c.Type})
		}
		sections[i].Entries = append(sections[i].Entries, entry)
	}

	return sections
}
