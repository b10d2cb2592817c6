package release

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/grokify/releaseconductor/internal/config"
	"github.com/grokify/releaseconductor/internal/console"
	"github.com/grokify/releaseconductor/internal/gitcmd"
	"github.com/grokify/releaseconductor/internal/npm"
	"github.com/grokify/releaseconductor/internal/prompt"
	"github.com/grokify/releaseconductor/internal/releaser"
	"github.com/grokify/releaseconductor/pkg/model"
)

// maxAssetUploads bounds concurrent release asset uploads.
const maxAssetUploads = 4

func dryRunArgs(dryRun bool) []string {
	if dryRun {
		return []string{gitcmd.DryRunFlag}
	}
	return nil
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

// changelog writes the previewed section into the package changelog and
// stages every change.
func (r *Runner) changelog(ctx context.Context, rc *Context) error {
	out := r.deps.Console
	if rc.NoGit {
		r.record(StageChangelog, model.StageSkipped, "no git repository")
		return nil
	}

	if rc.IsIncrement {
		path := filepath.Join(rc.Package.Dir, r.cfg.Changelog.Infile)
		if err := r.deps.WriteChangelog(path, rc.GitHub.Changelog); err != nil {
			return fmt.Errorf("failed to update %s: %w", path, err)
		}
		if err := r.deps.Git.Add(ctx, true, nil); err != nil {
			return gitErr("failed to stage changes: %w", err)
		}
		out.Success("Changelog generated", rc.DryRun)
		r.record(StageChangelog, model.StageDone, path)
	} else {
		r.record(StageChangelog, model.StageSkipped, "version unchanged")
	}

	status, err := r.deps.Git.Status(ctx)
	if err != nil {
		return gitErr("failed to read status: %w", err)
	}
	if status == "" {
		out.Message("GIT", "Working tree clean. No files changed")
	} else {
		out.Message("GIT", "Changes:\n\n"+status)
	}
	return nil
}

// git commits, tags and pushes the release between the push hooks.
func (r *Runner) git(ctx context.Context, rc *Context) error {
	if rc.NoGit {
		r.record(StageGit, model.StageSkipped, "no git repository")
		return nil
	}

	gc := r.cfg.Git
	var forced []string
	var err error
	d := &rc.Decisions
	if d.Commit, err = r.decide(rc, gc.Commit, console.KindGit,
		fmt.Sprintf("Create git commit (%s)?", rc.Git.CommitMessage), &forced, "git.commit"); err != nil {
		return err
	}
	if d.Tag, err = r.decide(rc, gc.Tag, console.KindGit,
		fmt.Sprintf("Create git tag (%s)?", rc.Git.CurrentTag), &forced, "git.tag"); err != nil {
		return err
	}
	if d.Push, err = r.decide(rc, gc.Push, console.KindGit,
		"Push commits and tags to remote?", &forced, "git.push"); err != nil {
		return err
	}
	r.logForced(rc, "GIT", forced)

	if !rc.IsIncrement {
		r.deps.Console.Message("GIT", "Version unchanged, skipping commit, tag & push")
		r.record(StageGit, model.StageSkipped, "version unchanged")
		return nil
	}

	if err := r.runHook(ctx, rc, config.BeforePush); err != nil {
		return err
	}
	if err := r.commitAndTag(ctx, rc); err != nil {
		return err
	}
	r.deps.Console.Success("Git commit, tag & push completed", rc.DryRun)
	if err := r.runHook(ctx, rc, config.AfterPush); err != nil {
		return err
	}
	r.record(StageGit, model.StageDone, rc.Git.CurrentTag)
	return nil
}

// commitAndTag runs the git mutations. The context flags are raised only
// outside a dry run.
func (r *Runner) commitAndTag(ctx context.Context, rc *Context) error {
	g := r.deps.Git
	gc := r.cfg.Git
	d := rc.Decisions
	if !d.Commit {
		return nil
	}

	args := dryRunArgs(rc.DryRun)

	if err := g.Add(ctx, gc.AddUntrackedFiles, args); err != nil {
		return gitErr("failed to stage files: %w", err)
	}
	if err := g.Commit(ctx, rc.Git.CommitMessage, concat(gc.CommitArgs, args)); err != nil {
		return gitErr("failed to commit: %w", err)
	}
	if !rc.DryRun {
		rc.Git.MarkCommitted()
	}

	if d.Tag {
		if err := g.TagAnnotated(ctx, rc.Git.CurrentTag, rc.Git.TagMessage, concat(gc.TagArgs, args)); err != nil {
			return gitErr("failed to create tag %s: %w", rc.Git.CurrentTag, err)
		}
		if !rc.DryRun {
			rc.Git.MarkTagged()
		}
	}

	if !d.Push {
		return nil
	}
	remotes, err := g.Remotes(ctx)
	if err != nil {
		return gitErr("failed to list remotes: %w", err)
	}
	for _, remote := range remotes {
		switch {
		case d.Tag && rc.DryRun:
			// no tag exists locally in a dry run
			r.deps.Logger.Debug("skipping tag push in dry run",
				zap.String("remote", remote), zap.String("tag", rc.Git.CurrentTag))
		case d.Tag:
			if err := g.PushTag(ctx, remote, rc.Git.CurrentTag, args); err != nil {
				return gitErr("failed to push tag to %s: %w", remote, err)
			}
			rc.Git.MarkPushed()
		}
		if err := g.PushBranch(ctx, remote, rc.Git.Branch, concat(gc.PushArgs, args)); err != nil {
			return gitErr("failed to push %s to %s: %w", rc.Git.Branch, remote, err)
		}
		if !rc.DryRun {
			rc.Git.MarkPushed()
		}
	}
	return nil
}

// npm publishes the package between the publish hooks, asking for a
// one-time password once when the registry demands one.
func (r *Runner) npm(ctx context.Context, rc *Context) error {
	if rc.NoNpm {
		r.record(StageNpm, model.StageSkipped, "private package")
		return nil
	}

	target := rc.Package.Name + "@" + rc.Package.Next()
	var forced []string
	publish, err := r.decide(rc, r.cfg.Npm.Publish, console.KindNpm,
		fmt.Sprintf("Publish to npm (%s)?", target), &forced, "npm.publish")
	if err != nil {
		return err
	}
	rc.Decisions.Publish = publish
	r.logForced(rc, "NPM", forced)

	if err := r.runHook(ctx, rc, config.BeforePublish); err != nil {
		return err
	}
	if publish {
		if err := r.publish(ctx, rc); err != nil {
			return err
		}
		r.deps.Console.Success("NPM package published: "+packageURL(rc.Package.Name, rc.Package.Next()), rc.DryRun)
		r.record(StageNpm, model.StageDone, target+" "+rc.Npm.DistTag)
	} else {
		r.record(StageNpm, model.StageSkipped, "declined")
	}
	return r.runHook(ctx, rc, config.AfterPublish)
}

func (r *Runner) publish(ctx context.Context, rc *Context) error {
	client := r.deps.Npm
	tag, err := npm.ResolvePublishTag(ctx, client, rc.Package.Name, rc.Package.Next(), r.registry(rc))
	if err != nil {
		return npmErr("%w", err)
	}
	rc.Npm.DistTag = tag

	opts := npm.PublishOptions{
		Dir:    filepath.Join(rc.Package.Dir, r.cfg.Npm.PublishPath),
		Tag:    tag,
		OTP:    rc.Npm.OTP,
		Args:   r.cfg.Npm.PublishArgs,
		DryRun: rc.DryRun,
	}
	err = client.Publish(ctx, opts)
	if err == nil {
		return nil
	}
	if !npm.IsOTPError(err) || rc.CI {
		return npmErr("failed to publish %s: %w", rc.Package.Name, err)
	}

	r.deps.Logger.Debug("npm asked for a one-time password", zap.Error(err))
	otp, err := r.deps.Prompter.Input(
		r.deps.Console.Question(console.KindNpm, "Enter npm one-time password (OTP):"), "", prompt.Required)
	if err != nil {
		return err
	}
	rc.Npm.OTP = otp
	opts.OTP = otp
	if err := client.Publish(ctx, opts); err != nil {
		return npmErr("failed to publish %s: %w", rc.Package.Name, err)
	}
	return nil
}

func packageURL(name, version string) string {
	return fmt.Sprintf("https://www.npmjs.com/package/%s/v/%s", name, version)
}

// github creates the release between the release hooks. Without a token the
// prefilled web form is opened instead. Nothing is created in a dry run.
func (r *Runner) github(ctx context.Context, rc *Context) error {
	if rc.NoGitHub {
		r.record(StageGitHub, model.StageSkipped, "no GitHub remote")
		return nil
	}

	var forced []string
	release, err := r.decide(rc, r.cfg.GitHub.Release, console.KindGitHub,
		fmt.Sprintf("Create a new GitHub release (%s)?", rc.GitHub.ReleaseName), &forced, "github.release")
	if err != nil {
		return err
	}
	rc.Decisions.Release = release
	r.logForced(rc, "GITHUB", forced)

	if err := r.runHook(ctx, rc, config.BeforeRelease); err != nil {
		return err
	}
	switch {
	case !release:
		r.record(StageGitHub, model.StageSkipped, "declined")
	case rc.DryRun:
		r.record(StageGitHub, model.StageSkipped, "dry run")
	default:
		if err := r.createRelease(ctx, rc); err != nil {
			return err
		}
		url := rc.GitHub.ReleaseURL
		if url == "" {
			url = releaser.ReleaseURL(rc.GitHub.RepoRef(), rc.Git.CurrentTag)
		}
		r.deps.Console.Success("GitHub release created: "+url, rc.DryRun)
		r.record(StageGitHub, model.StageDone, url)
	}
	return r.runHook(ctx, rc, config.AfterRelease)
}

func (r *Runner) createRelease(ctx context.Context, rc *Context) error {
	gc := r.cfg.GitHub
	repo := rc.GitHub.RepoRef()
	prerelease := rc.Package.ToPreRelease || gc.Prerelease

	if rc.GitHub.WebFallback {
		u := releaser.WebReleaseURL(repo, rc.Git.CurrentTag, rc.GitHub.ReleaseName, rc.GitHub.Changelog, prerelease)
		if err := r.deps.Browser.Browse(u); err != nil {
			return githubErr("failed to open browser: %w", err)
		}
		return nil
	}

	body := releaser.TruncateBody(rc.GitHub.Changelog)
	if gc.AutoGenerate {
		body = ""
	}
	gh := r.deps.NewReleaser(rc.GitHub.Token)
	rel, updated, err := releaser.PublishRelease(ctx, gh, &model.ReleaseRequest{
		Repo:          repo,
		TagName:       rc.Git.CurrentTag,
		Name:          rc.GitHub.ReleaseName,
		Body:          body,
		Draft:         gc.Draft,
		Prerelease:    prerelease,
		GenerateNotes: gc.AutoGenerate,
		MakeLatest:    !prerelease,
	})
	if err != nil {
		return githubErr("%w", err)
	}
	rc.GitHub.Released = true
	rc.GitHub.ReleaseID = rel.ID
	rc.GitHub.ReleaseURL = rel.HTMLURL
	rc.GitHub.UploadURL = rel.UploadURL
	r.deps.Logger.Debug("github release published",
		zap.Int64("id", rel.ID), zap.Bool("updatedDraft", updated))

	if len(gc.Assets) == 0 {
		return nil
	}
	files, err := releaser.ExpandAssets(r.opts.WorkDir, gc.Assets)
	if err != nil {
		return githubErr("%w", err)
	}
	assets, err := releaser.UploadAssets(ctx, gh, repo, rel.ID, files, maxAssetUploads)
	rc.GitHub.Assets = assets
	if err != nil {
		return githubErr("failed to upload assets (%d of %d uploaded): %w", len(assets), len(files), err)
	}
	if len(files) > 0 {
		names := make([]string, len(assets))
		for i, a := range assets {
			names[i] = a.Name
		}
		r.deps.Console.Message("GITHUB", "Uploaded assets: "+strings.Join(names, ", "))
	}
	return nil
}
