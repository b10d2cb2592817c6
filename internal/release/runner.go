// Package release runs the release pipeline: check, bump, changelog, git,
// npm and github, with rollback of local git changes on failure and at the
// end of a dry run.
package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grokify/releaseconductor/internal/changelog"
	"github.com/grokify/releaseconductor/internal/config"
	"github.com/grokify/releaseconductor/internal/console"
	"github.com/grokify/releaseconductor/internal/gitcmd"
	"github.com/grokify/releaseconductor/internal/hooks"
	"github.com/grokify/releaseconductor/internal/manifest"
	"github.com/grokify/releaseconductor/internal/npm"
	"github.com/grokify/releaseconductor/internal/prompt"
	"github.com/grokify/releaseconductor/internal/releaser"
	"github.com/grokify/releaseconductor/internal/version"
	"github.com/grokify/releaseconductor/pkg/model"
)

// Options are the per-invocation settings from the command line.
type Options struct {
	Increment     string // release type argument: keyword or version
	DryRun        bool
	CI            bool
	ShowChangelog bool
	ShowRelease   bool
	Prepare       bool // stop after the git stage
	Package       string
	OTP           string
	WorkDir       string

	ConfigFileExists bool
}

// Deps are the collaborators of a run. Zero fields get defaults from New.
type Deps struct {
	Git            gitcmd.Git
	Npm            npm.Client
	NewReleaser    func(token string) releaser.Releaser
	StoredToken    func() string
	Browser        releaser.Browser
	Prompter       prompt.Prompter
	Hooks          *hooks.Runner
	Console        *console.Printer
	Logger         *zap.Logger
	Getenv         func(string) string
	Now            func() time.Time
	ReadPackage    func(dir string) (*manifest.Package, error)
	WriteChangelog func(path, section string) error
}

// Runner executes one release.
type Runner struct {
	cfg  config.Config
	opts Options
	deps Deps

	summary *model.RunSummary
	bumped  bool
}

// DetectCI reports whether prompts must be avoided: --ci, the print-only
// flags, or a CI environment.
func DetectCI(opts Options, getenv func(string) string) bool {
	if getenv == nil {
		getenv = os.Getenv
	}
	return opts.CI || opts.ShowChangelog || opts.ShowRelease ||
		getenv("GITHUB_ACTIONS") != "" || getenv("CI") != ""
}

// New creates a Runner. cfg must already be merged with config.Default for
// the run's CI mode.
func New(cfg config.Config, opts Options, deps Deps) *Runner {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Console == nil {
		deps.Console = console.Stderr()
	}
	if deps.Git == nil {
		deps.Git = gitcmd.New(opts.WorkDir, deps.Logger)
	}
	if deps.Npm == nil {
		deps.Npm = npm.NewCLI(deps.Logger)
	}
	if deps.NewReleaser == nil {
		deps.NewReleaser = releaser.NewGitHub
	}
	if deps.Browser == nil {
		deps.Browser = releaser.NewBrowser(os.Stdout, os.Stderr)
	}
	if deps.Prompter == nil {
		deps.Prompter = prompt.NewHuh()
	}
	if deps.Hooks == nil {
		deps.Hooks = hooks.NewRunner(opts.WorkDir, deps.Logger)
	}
	if deps.Hooks.Notifier == nil {
		deps.Hooks.Notifier = deps.Console
	}
	if deps.ReadPackage == nil {
		deps.ReadPackage = manifest.Read
	}
	if deps.WriteChangelog == nil {
		deps.WriteChangelog = changelog.UpdateFile
	}
	return &Runner{cfg: cfg, opts: opts, deps: deps}
}

// Run executes the pipeline. The summary is returned even on error. A
// cancelled prompt returns an error matching prompt.ErrCancelled after the
// rollback.
func (r *Runner) Run(ctx context.Context) (*model.RunSummary, error) {
	r.summary = &model.RunSummary{Timestamp: r.deps.Now(), DryRun: r.opts.DryRun}

	rc, err := r.newContext()
	if err != nil {
		r.summary.Error = err.Error()
		return r.summary, err
	}
	r.fillSummary(rc)

	r.deps.Console.Step("🚀  Starting release" + console.DryRunSuffix(rc.DryRun))

	// CHECK runs before any mutation; its failures need no rollback.
	if err := r.check(ctx, rc); err != nil {
		return r.fail(ctx, rc, StageCheck, err, false)
	}
	r.record(StageCheck, model.StageDone, "")

	stages := []struct {
		name string
		run  func(context.Context, *Context) error
	}{
		{StageBump, r.bump},
		{StageChangelog, r.changelog},
		{StageGit, r.git},
		{StageNpm, r.npm},
		{StageGitHub, r.github},
	}

	for _, s := range stages {
		if rc.Prepare && (s.name == StageNpm || s.name == StageGitHub) {
			r.record(s.name, model.StageSkipped, "prepare only")
			continue
		}
		err := s.run(ctx, rc)
		r.fillSummary(rc)
		if errors.Is(err, errStop) {
			r.record(s.name, model.StageDone, "print only")
			// the bump may already have touched package.json
			if r.bumped {
				r.rollback(ctx, rc)
			}
			return r.summary, nil
		}
		if err != nil {
			return r.fail(ctx, rc, s.name, err, true)
		}
	}

	if rc.DryRun {
		r.rollback(ctx, rc)
	}
	r.fillSummary(rc)

	outro := "🎉  Release finished successfully"
	if rc.Prepare {
		outro = "🎉  PrepareRelease finished successfully"
	}
	r.deps.Console.Step(fmt.Sprintf("%s in %s%s", outro,
		r.deps.Now().Sub(r.summary.Timestamp).Round(time.Second), console.DryRunSuffix(rc.DryRun)))
	return r.summary, nil
}

func (r *Runner) fail(ctx context.Context, rc *Context, stage string, err error, rollback bool) (*model.RunSummary, error) {
	if rollback {
		r.rollback(ctx, rc)
	}
	r.fillSummary(rc)

	if errors.Is(err, prompt.ErrCancelled) {
		r.record(stage, model.StageFailed, "cancelled")
		r.summary.Error = prompt.ErrCancelled.Error()
		return r.summary, err
	}

	r.record(stage, model.StageFailed, err.Error())
	r.summary.Error = err.Error()
	r.deps.Logger.Debug("release stage failed", zap.String("stage", stage), zap.Error(err))
	return r.summary, &StageError{Stage: stage, Err: err}
}

func (r *Runner) record(stage string, status model.StageStatus, detail string) {
	r.summary.Stages = append(r.summary.Stages, model.StageResult{Stage: stage, Status: status, Detail: detail})
}

func (r *Runner) fillSummary(rc *Context) {
	s := r.summary
	s.Package = rc.Package.Name
	s.Current = rc.Package.Current
	s.Next = rc.Package.Next()
	s.Tag = rc.Git.CurrentTag
	s.DistTag = rc.Npm.DistTag
	s.Repo = rc.GitHub.RepoRef()
	s.ReleaseURL = rc.GitHub.ReleaseURL
	s.Committed = rc.Git.Committed()
	s.Tagged = rc.Git.Tagged()
	s.Pushed = rc.Git.Pushed()
}

// newContext selects the package, reads its manifest and resolves the
// initial next version from the release type argument.
func (r *Runner) newContext() (*Context, error) {
	rc := &Context{
		DryRun:           r.opts.DryRun,
		CI:               DetectCI(r.opts, r.deps.Getenv),
		ShowChangelog:    r.opts.ShowChangelog,
		ShowRelease:      r.opts.ShowRelease,
		Prepare:          r.opts.Prepare,
		Increment:        r.opts.Increment,
		IsIncrement:      true,
		ConfigFileExists: r.opts.ConfigFileExists,
	}

	pkg, err := r.selectPackage(rc)
	if err != nil {
		return nil, err
	}
	rc.SelectedPackage = pkg

	rel := r.cfg.PackageDir(pkg)
	dir := filepath.Join(r.opts.WorkDir, rel)
	m, err := r.deps.ReadPackage(dir)
	if err != nil {
		return nil, err
	}
	if _, err := version.Parse(m.Version); err != nil {
		return nil, fmt.Errorf("package %s: %w", m.Name, err)
	}

	rc.Package = PackageInfo{
		Name:           m.Name,
		Dir:            dir,
		RelDir:         rel,
		Private:        m.Private,
		Access:         m.PublishConfig.Access,
		Registry:       m.PublishConfig.Registry,
		Current:        m.Version,
		FromPreRelease: version.IsPreRelease(m.Version),
	}
	rc.NoNpm = m.Private
	rc.Npm.OTP = r.opts.OTP

	if rc.Increment != "" {
		res, err := version.Resolve(m.Version, version.Request{Increment: rc.Increment})
		switch {
		case err == nil:
			if err := rc.SetNext(res); err != nil {
				return nil, err
			}
		case errors.Is(err, version.ErrUnresolved) && rc.CI:
			return nil, fmt.Errorf("cannot resolve release type %q for %s: %w", rc.Increment, m.Version, err)
		case errors.Is(err, version.ErrUnresolved):
			// prompted for in BUMP
		default:
			return nil, err
		}
	}

	r.deps.Logger.Debug("release context created",
		zap.String("package", rc.Package.Name),
		zap.String("dir", dir),
		zap.String("current", rc.Package.Current),
		zap.String("next", rc.Package.Next()),
		zap.Bool("ci", rc.CI),
		zap.Bool("dryRun", rc.DryRun))
	return rc, nil
}

func (r *Runner) selectPackage(rc *Context) (string, error) {
	mono := r.cfg.Monorepo
	if !mono.Enabled {
		return "", nil
	}
	if rc.CI {
		if r.opts.Package == "" {
			return "", ErrMonorepoPackage
		}
		return r.opts.Package, nil
	}
	if r.opts.Package != "" {
		return r.opts.Package, nil
	}
	switch len(mono.Packages) {
	case 0:
		return "", ErrNoPackages
	case 1:
		return mono.Packages[0], nil
	}

	options := make([]prompt.Option, len(mono.Packages))
	for i, p := range mono.Packages {
		options[i] = prompt.Option{Label: p, Value: p}
	}
	return r.deps.Prompter.Select(
		r.deps.Console.Question(console.KindPackage, "Select package release:"),
		options, mono.Packages[0])
}

// decide resolves a gated step. CI never prompts; an Ask toggle, or any
// toggle during a dry run, is asked interactively.
func (r *Runner) decide(rc *Context, t config.Toggle, kind, title string, forced *[]string, name string) (bool, error) {
	if rc.CI {
		return t.Enabled(true), nil
	}
	if t.IsAsk() || rc.DryRun {
		return r.deps.Prompter.Confirm(r.deps.Console.Question(kind, title), t.Enabled(true))
	}
	*forced = append(*forced, name)
	return t.Enabled(true), nil
}

func (r *Runner) logForced(rc *Context, prefix string, forced []string) {
	if len(forced) == 0 {
		return
	}
	source := "default"
	if rc.ConfigFileExists {
		source = "user"
	}
	r.deps.Console.Message(prefix, fmt.Sprintf("Using %s config: %s", source, strings.Join(forced, ", ")))
}

func (r *Runner) runHook(ctx context.Context, rc *Context, key config.HookKey) error {
	return r.deps.Hooks.Run(ctx, r.cfg.Hooks, key, rc.DryRun)
}
