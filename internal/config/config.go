// Package config holds the resolved release configuration, its defaults and
// the user config file that overrides them.
package config

import (
	"path/filepath"
	"strings"

	"github.com/grokify/releaseconductor/internal/changelog"
)

// Defaults that are not toggles.
const (
	DefaultCommitMessage = "chore(release): ${version}"
	DefaultTagName       = "${version}"
	DefaultTagMessage    = "Release ${version}"
	DefaultReleaseName   = "Release ${version}"
	DefaultTokenRef      = "GITHUB_TOKEN"
	DefaultPublishPath   = "."
	DefaultPackageDir    = "packages/{pkg}"
	DefaultTagTemplate   = "{pkg}@{version}"
	DefaultTagPrefix     = "{pkg}@"
)

// Config is the resolved configuration. It is not modified after Merge.
type Config struct {
	Git       GitConfig
	Npm       NpmConfig
	GitHub    GitHubConfig
	Changelog ChangelogConfig
	Hooks     map[HookKey]Hook
	Monorepo  MonorepoConfig
}

// GitConfig controls the commit, tag and push steps.
type GitConfig struct {
	Commit Toggle
	Tag    Toggle
	Push   Toggle

	CommitMessage string
	TagName       string
	TagMessage    string

	CommitArgs []string
	TagArgs    []string
	PushArgs   []string

	AddUntrackedFiles   bool
	RequireRepository   bool
	RequireRemote       bool
	RequireWorkDirClean bool
}

// NpmConfig controls publishing.
type NpmConfig struct {
	Publish     Toggle
	PublishPath string
	PublishArgs []string
	SkipChecks  bool
}

// GitHubConfig controls release creation.
type GitHubConfig struct {
	Release      Toggle
	ReleaseName  string
	AutoGenerate bool
	Prerelease   bool
	Draft        bool
	TokenRef     string
	Assets       []string
	SkipChecks   bool
}

// ChangelogConfig controls the changelog file and section titles.
type ChangelogConfig struct {
	Infile string
	Types  []changelog.CommitType
}

// MonorepoConfig resolves package directories and tags per package.
type MonorepoConfig struct {
	Enabled    bool
	Packages   []string
	PackageDir func(pkg string) string
	TagName    func(pkg, version string) string
	TagPrefix  func(pkg string) string
}

// Default returns the built-in configuration. In CI every stage toggle is
// forced on; otherwise each one is asked.
func Default(ci bool) Config {
	toggle := Ask()
	if ci {
		toggle = Forced(true)
	}

	hooks := make(map[HookKey]Hook, len(HookKeys))
	for _, k := range HookKeys {
		hooks[k] = Hook{}
	}

	return Config{
		Git: GitConfig{
			Commit:              toggle,
			Tag:                 toggle,
			Push:                toggle,
			CommitMessage:       DefaultCommitMessage,
			TagName:             DefaultTagName,
			TagMessage:          DefaultTagMessage,
			CommitArgs:          []string{},
			TagArgs:             []string{},
			PushArgs:            []string{},
			RequireRepository:   true,
			RequireRemote:       true,
			RequireWorkDirClean: true,
		},
		Npm: NpmConfig{
			Publish:     toggle,
			PublishPath: DefaultPublishPath,
			PublishArgs: []string{},
		},
		GitHub: GitHubConfig{
			Release:     toggle,
			ReleaseName: DefaultReleaseName,
			TokenRef:    DefaultTokenRef,
			Assets:      []string{},
		},
		Changelog: ChangelogConfig{
			Infile: changelog.DefaultInfile,
		},
		Hooks: hooks,
		Monorepo: MonorepoConfig{
			PackageDir: PackageDirTemplate(DefaultPackageDir),
			TagName:    TagNameTemplate(DefaultTagTemplate),
			TagPrefix:  PackageDirTemplate(DefaultTagPrefix),
		},
	}
}

// PackageDir returns the directory of pkg, relative to the working directory.
func (c Config) PackageDir(pkg string) string {
	if !c.Monorepo.Enabled || pkg == "" {
		return "."
	}
	return filepath.Clean(c.Monorepo.PackageDir(pkg))
}

// TagFor returns the tag name for a release of pkg.
func (c Config) TagFor(pkg, version string) string {
	if c.Monorepo.Enabled && pkg != "" && c.Monorepo.TagName != nil {
		return c.Monorepo.TagName(pkg, version)
	}
	return Expand(c.Git.TagName, Vars{Version: version})
}

// TagMatch returns the glob selecting tags that belong to pkg.
func (c Config) TagMatch(pkg string) string {
	if c.Monorepo.Enabled && pkg != "" && c.Monorepo.TagPrefix != nil {
		return c.Monorepo.TagPrefix(pkg) + "*"
	}
	return "*"
}

// ChangelogTypes returns the default commit type table with overrides applied.
func (c Config) ChangelogTypes() changelog.Types {
	return changelog.DefaultTypes().Merge(c.Changelog.Types)
}

// Hook returns the hook for key, or the zero hook.
func (c Config) Hook(key HookKey) Hook {
	return c.Hooks[key]
}

// Vars are the values available to message templates.
type Vars struct {
	Version string
	Tag     string
}

// Expand replaces ${version} and ${tag} in a message template.
func Expand(tpl string, vars Vars) string {
	return strings.NewReplacer(
		"${version}", vars.Version,
		"${tag}", vars.Tag,
	).Replace(tpl)
}

// PackageDirTemplate turns a "{pkg}" template into a function.
func PackageDirTemplate(tpl string) func(pkg string) string {
	return func(pkg string) string {
		return strings.ReplaceAll(tpl, "{pkg}", pkg)
	}
}

// TagNameTemplate turns a "{pkg}"/"{version}" template into a function.
func TagNameTemplate(tpl string) func(pkg, version string) string {
	return func(pkg, version string) string {
		return strings.NewReplacer("{pkg}", pkg, "{version}", version).Replace(tpl)
	}
}
