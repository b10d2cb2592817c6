package config

import (
	"github.com/grokify/releaseconductor/internal/changelog"
)

// UserConfig is a partial configuration. Nil fields keep the default.
type UserConfig struct {
	Git       *UserGitConfig       `yaml:"git,omitempty"`
	Npm       *UserNpmConfig       `yaml:"npm,omitempty"`
	GitHub    *UserGitHubConfig    `yaml:"github,omitempty"`
	Changelog *UserChangelogConfig `yaml:"changelog,omitempty"`
	Hooks     map[HookKey]Hook     `yaml:"hooks,omitempty"`
	Monorepo  *UserMonorepoConfig  `yaml:"monorepo,omitempty"`
}

type UserGitConfig struct {
	Commit              *Toggle  `yaml:"commit,omitempty"`
	Tag                 *Toggle  `yaml:"tag,omitempty"`
	Push                *Toggle  `yaml:"push,omitempty"`
	CommitMessage       *string  `yaml:"commitMessage,omitempty"`
	TagName             *string  `yaml:"tagName,omitempty"`
	TagMessage          *string  `yaml:"tagMessage,omitempty"`
	CommitArgs          []string `yaml:"commitArgs,omitempty"`
	TagArgs             []string `yaml:"tagArgs,omitempty"`
	PushArgs            []string `yaml:"pushArgs,omitempty"`
	AddUntrackedFiles   *bool    `yaml:"addUntrackedFiles,omitempty"`
	RequireRepository   *bool    `yaml:"requireRepository,omitempty"`
	RequireRemote       *bool    `yaml:"requireRemote,omitempty"`
	RequireWorkDirClean *bool    `yaml:"requireWorkDirClean,omitempty"`
}

type UserNpmConfig struct {
	Publish     *Toggle  `yaml:"publish,omitempty"`
	PublishPath *string  `yaml:"publishPath,omitempty"`
	PublishArgs []string `yaml:"publishArgs,omitempty"`
	SkipChecks  *bool    `yaml:"skipChecks,omitempty"`
}

type UserGitHubConfig struct {
	Release      *Toggle  `yaml:"release,omitempty"`
	ReleaseName  *string  `yaml:"releaseName,omitempty"`
	AutoGenerate *bool    `yaml:"autoGenerate,omitempty"`
	Prerelease   *bool    `yaml:"prerelease,omitempty"`
	Draft        *bool    `yaml:"draft,omitempty"`
	TokenRef     *string  `yaml:"tokenRef,omitempty"`
	Assets       []string `yaml:"assets,omitempty"`
	SkipChecks   *bool    `yaml:"skipChecks,omitempty"`
}

type UserChangelogConfig struct {
	Infile *string                `yaml:"infile,omitempty"`
	Types  []changelog.CommitType `yaml:"types,omitempty"`
}

// UserMonorepoConfig takes templates from the file and functions from Go
// callers. A function wins over a template for the same field.
type UserMonorepoConfig struct {
	Enabled    *bool    `yaml:"enabled,omitempty"`
	Packages   []string `yaml:"packages,omitempty"`
	PackageDir *string  `yaml:"packageDir,omitempty"`
	TagName    *string  `yaml:"tagName,omitempty"`
	TagPrefix  *string  `yaml:"tagPrefix,omitempty"`

	PackageDirFunc func(pkg string) string          `yaml:"-"`
	TagNameFunc    func(pkg, version string) string `yaml:"-"`
	TagPrefixFunc  func(pkg string) string          `yaml:"-"`
}

// IsEmpty reports whether the user config sets nothing.
func (u *UserConfig) IsEmpty() bool {
	return u == nil || (u.Git == nil && u.Npm == nil && u.GitHub == nil &&
		u.Changelog == nil && len(u.Hooks) == 0 && u.Monorepo == nil)
}

// Merge overlays user on defaults and returns the resolved configuration.
// Slices and maps are copied; function values are kept as they are.
func Merge(defaults Config, user *UserConfig) Config {
	c := defaults
	c.Git.CommitArgs = cloneStrings(defaults.Git.CommitArgs)
	c.Git.TagArgs = cloneStrings(defaults.Git.TagArgs)
	c.Git.PushArgs = cloneStrings(defaults.Git.PushArgs)
	c.Npm.PublishArgs = cloneStrings(defaults.Npm.PublishArgs)
	c.GitHub.Assets = cloneStrings(defaults.GitHub.Assets)
	c.Changelog.Types = append([]changelog.CommitType(nil), defaults.Changelog.Types...)
	c.Monorepo.Packages = cloneStrings(defaults.Monorepo.Packages)
	c.Hooks = make(map[HookKey]Hook, len(defaults.Hooks))
	for k, h := range defaults.Hooks {
		c.Hooks[k] = h
	}

	if user == nil {
		return c
	}

	if g := user.Git; g != nil {
		setToggle(&c.Git.Commit, g.Commit)
		setToggle(&c.Git.Tag, g.Tag)
		setToggle(&c.Git.Push, g.Push)
		setString(&c.Git.CommitMessage, g.CommitMessage)
		setString(&c.Git.TagName, g.TagName)
		setString(&c.Git.TagMessage, g.TagMessage)
		setStrings(&c.Git.CommitArgs, g.CommitArgs)
		setStrings(&c.Git.TagArgs, g.TagArgs)
		setStrings(&c.Git.PushArgs, g.PushArgs)
		setBool(&c.Git.AddUntrackedFiles, g.AddUntrackedFiles)
		setBool(&c.Git.RequireRepository, g.RequireRepository)
		setBool(&c.Git.RequireRemote, g.RequireRemote)
		setBool(&c.Git.RequireWorkDirClean, g.RequireWorkDirClean)
	}

	if n := user.Npm; n != nil {
		setToggle(&c.Npm.Publish, n.Publish)
		setString(&c.Npm.PublishPath, n.PublishPath)
		setStrings(&c.Npm.PublishArgs, n.PublishArgs)
		setBool(&c.Npm.SkipChecks, n.SkipChecks)
	}

	if gh := user.GitHub; gh != nil {
		setToggle(&c.GitHub.Release, gh.Release)
		setString(&c.GitHub.ReleaseName, gh.ReleaseName)
		setBool(&c.GitHub.AutoGenerate, gh.AutoGenerate)
		setBool(&c.GitHub.Prerelease, gh.Prerelease)
		setBool(&c.GitHub.Draft, gh.Draft)
		setString(&c.GitHub.TokenRef, gh.TokenRef)
		setStrings(&c.GitHub.Assets, gh.Assets)
		setBool(&c.GitHub.SkipChecks, gh.SkipChecks)
	}

	if cl := user.Changelog; cl != nil {
		setString(&c.Changelog.Infile, cl.Infile)
		if cl.Types != nil {
			c.Changelog.Types = append([]changelog.CommitType(nil), cl.Types...)
		}
	}

	for k, h := range user.Hooks {
		c.Hooks[k] = h
	}

	if m := user.Monorepo; m != nil {
		setBool(&c.Monorepo.Enabled, m.Enabled)
		setStrings(&c.Monorepo.Packages, m.Packages)

		switch {
		case m.PackageDirFunc != nil:
			c.Monorepo.PackageDir = m.PackageDirFunc
		case m.PackageDir != nil:
			c.Monorepo.PackageDir = PackageDirTemplate(*m.PackageDir)
		}
		switch {
		case m.TagNameFunc != nil:
			c.Monorepo.TagName = m.TagNameFunc
		case m.TagName != nil:
			c.Monorepo.TagName = TagNameTemplate(*m.TagName)
		}
		switch {
		case m.TagPrefixFunc != nil:
			c.Monorepo.TagPrefix = m.TagPrefixFunc
		case m.TagPrefix != nil:
			c.Monorepo.TagPrefix = PackageDirTemplate(*m.TagPrefix)
		}
	}

	return c
}

func setToggle(dst *Toggle, src *Toggle) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setStrings(dst *[]string, src []string) {
	if src != nil {
		*dst = cloneStrings(src)
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
