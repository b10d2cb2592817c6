package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grokify/releaseconductor/internal/changelog"
	"github.com/grokify/releaseconductor/internal/config"
	"github.com/grokify/releaseconductor/internal/console"
	"github.com/grokify/releaseconductor/internal/prompt"
	"github.com/grokify/releaseconductor/internal/version"
	"github.com/grokify/releaseconductor/pkg/model"
)

// bump resolves the next version, writes it to package.json between the
// bump hooks, expands the message templates and previews the changelog.
func (r *Runner) bump(ctx context.Context, rc *Context) error {
	out := r.deps.Console
	current := rc.Package.Current

	if rc.Package.Next() == "" && rc.IsIncrement {
		next, err := r.nextVersion(rc)
		if err != nil {
			return err
		}
		res, err := version.Describe(current, next)
		if err != nil {
			return err
		}
		if err := rc.SetNext(res); err != nil {
			return err
		}
	}
	next := rc.Package.Next()

	if rc.ShowRelease {
		out.Success("🎉  Released "+next, rc.DryRun)
		return errStop
	}

	if err := r.runHook(ctx, rc, config.BeforeBump); err != nil {
		return err
	}
	if rc.NoGit && rc.DryRun {
		// nothing could restore package.json afterwards
		out.Message("PKG", "Skipping version write outside a git repository")
	} else {
		if err := r.deps.Npm.BumpVersion(ctx, rc.Package.Dir, next); err != nil {
			return fmt.Errorf("failed to bump version to %s: %w", next, err)
		}
		r.bumped = true
	}
	if err := r.formatTemplates(ctx, rc); err != nil {
		return err
	}
	out.Success(fmt.Sprintf("Version bumped: (%s...%s)", current, out.Diff(current, next)), rc.DryRun)
	if err := r.runHook(ctx, rc, config.AfterBump); err != nil {
		return err
	}

	if !rc.NoGit {
		if err := r.previewChangelog(ctx, rc); err != nil {
			return err
		}
	}
	if rc.ShowChangelog {
		out.Success("🎉  Changelog collected", rc.DryRun)
		return errStop
	}
	r.record(StageBump, model.StageDone, next)
	return nil
}

// nextVersion asks for the next version, or picks a patch bump in CI.
func (r *Runner) nextVersion(rc *Context) (string, error) {
	current := rc.Package.Current
	if rc.CI {
		return version.CIVersion(current)
	}

	choices, initial, err := version.Choices(current)
	if err != nil {
		return "", err
	}
	options := make([]prompt.Option, len(choices))
	for i, c := range choices {
		options[i] = prompt.Option{Label: c.Label, Value: c.Value, Hint: c.Hint}
	}

	q := r.deps.Console.Question
	picked, err := r.deps.Prompter.Select(q(console.KindVersion, "Select version bump:"), options, initial)
	if err != nil {
		return "", err
	}

	switch picked {
	case version.AsIs:
		return current, nil
	case version.Custom:
		return r.deps.Prompter.Input(q(console.KindVersion, "Enter custom version:"), current, func(s string) error {
			if !version.IsValid(strings.TrimSpace(s)) {
				return errors.New("Invalid version")
			}
			return nil
		})
	default:
		return picked, nil
	}
}

// formatTemplates derives the tag, the messages and the release name for the
// resolved version.
func (r *Runner) formatTemplates(ctx context.Context, rc *Context) error {
	next := rc.Package.Next()
	tag := r.cfg.TagFor(rc.SelectedPackage, next)
	vars := config.Vars{Version: next, Tag: tag}

	if !rc.NoGit {
		tags, err := r.deps.Git.Tags(ctx, r.cfg.TagMatch(rc.SelectedPackage))
		if err != nil {
			return gitErr("failed to list tags: %w", err)
		}
		if len(tags) > 0 {
			rc.Git.LatestTag = tags[0]
		}
	}

	rc.Git.CurrentTag = tag
	rc.Git.CommitMessage = config.Expand(r.cfg.Git.CommitMessage, vars)
	rc.Git.TagMessage = config.Expand(r.cfg.Git.TagMessage, vars)
	rc.GitHub.ReleaseName = config.Expand(r.cfg.GitHub.ReleaseName, vars)
	return nil
}

// previewChangelog renders the section for this release into
// rc.GitHub.Changelog and prints it.
func (r *Runner) previewChangelog(ctx context.Context, rc *Context) error {
	out := r.deps.Console
	gen := &changelog.Generator{
		History: r.deps.Git,
		Types:   r.cfg.ChangelogTypes(),
		Logger:  r.deps.Logger,
	}

	res, err := gen.Generate(ctx, changelog.Request{
		IsIncrement: rc.IsIncrement,
		TagMatch:    r.cfg.TagMatch(rc.SelectedPackage),
		Path:        rc.Package.RelDir,
		Render: changelog.RenderOptions{
			Version:    rc.Package.Next(),
			CurrentTag: rc.Git.CurrentTag,
			Owner:      rc.GitHub.Owner,
			Repo:       rc.GitHub.Repo,
			Date:       r.deps.Now().Format("2006-01-02"),
		},
	})
	if err != nil {
		return gitErr("failed to generate changelog: %w", err)
	}
	rc.GitHub.Changelog = res.Text
	rc.Git.PreviousTag = res.PreviousTag

	if len(res.Commits) == 0 {
		out.Message("GIT", "No commits found since last release")
		return nil
	}

	to := res.Range.To
	if to == "" {
		to = "HEAD"
	}
	out.Message("GIT", fmt.Sprintf("Changelog(%s...%s):\n\n%s", res.Range.From, to, strings.TrimRight(res.Text, "\n")))
	return nil
}
