package release

import (
	"fmt"

	"github.com/grokify/releaseconductor/internal/version"
	"github.com/grokify/releaseconductor/pkg/model"
)

// Context is the state of one release run. Stages read and update it through
// a pointer; nothing else holds it.
type Context struct {
	DryRun        bool
	CI            bool
	ShowChangelog bool
	ShowRelease   bool
	Prepare       bool

	// Set by CHECK when a collaborator is unavailable under non-strict
	// settings, or by the package's private flag.
	NoGit    bool
	NoNpm    bool
	NoGitHub bool

	Increment        string
	IsIncrement      bool
	ConfigFileExists bool
	SelectedPackage  string

	Package   PackageInfo
	Git       GitState
	Npm       NpmState
	GitHub    GitHubState
	Decisions Decisions
}

// PackageInfo describes the package being released.
type PackageInfo struct {
	Name     string
	Dir      string // absolute package directory
	RelDir   string // package directory relative to the working directory
	Private  bool
	Access   string
	Registry string

	Current        string
	FromPreRelease bool
	ToPreRelease   bool
	PreID          string
	PreBase        string

	next string
}

// Next returns the resolved next version, or "" before BUMP.
func (p *PackageInfo) Next() string { return p.next }

// GitState holds the git facts of the run. The mutation flags can only be
// raised.
type GitState struct {
	RemoteName    string
	RemoteURL     string
	Branch        string
	LatestTag     string
	PreviousTag   string
	CurrentTag    string
	CommitMessage string
	TagMessage    string

	committed bool
	tagged    bool
	pushed    bool
}

// MarkCommitted records that the release commit exists.
func (g *GitState) MarkCommitted() { g.committed = true }

// MarkTagged records that the release tag exists locally.
func (g *GitState) MarkTagged() { g.tagged = true }

// MarkPushed records that the release reached a remote. Rollback is
// disabled from here on.
func (g *GitState) MarkPushed() { g.pushed = true }

// Committed reports whether the release commit was created.
func (g *GitState) Committed() bool { return g.committed }

// Tagged reports whether the release tag was created.
func (g *GitState) Tagged() bool { return g.tagged }

// Pushed reports whether anything was pushed.
func (g *GitState) Pushed() bool { return g.pushed }

// NpmState holds the npm facts of the run.
type NpmState struct {
	Username string
	OTP      string
	DistTag  string
}

// GitHubState holds the GitHub facts of the run.
type GitHubState struct {
	Owner       string
	Repo        string
	Username    string
	Token       string
	Changelog   string
	ReleaseName string
	WebFallback bool

	Released   bool
	ReleaseID  int64
	ReleaseURL string
	UploadURL  string
	Assets     []model.Asset
}

// RepoRef returns the GitHub repository of the run.
func (g GitHubState) RepoRef() model.RepoRef {
	return model.RepoRef{Owner: g.Owner, Name: g.Repo}
}

// Decisions are the answers for the gated steps of this run. The resolved
// configuration is left untouched.
type Decisions struct {
	Commit  bool
	Tag     bool
	Push    bool
	Publish bool
	Release bool
}

// SetNext stores the resolved next version and its pre-release facts. A
// different version cannot replace one that is already set.
func (c *Context) SetNext(res version.Resolution) error {
	if c.Package.next != "" && c.Package.next != res.Next {
		return fmt.Errorf("next version already resolved as %s, refusing %s", c.Package.next, res.Next)
	}
	c.Package.next = res.Next
	c.Package.FromPreRelease = res.FromPreRelease
	c.Package.ToPreRelease = res.ToPreRelease
	c.Package.PreID = res.PreID
	c.Package.PreBase = res.PreBase
	c.IsIncrement = res.IsIncrement
	return nil
}
