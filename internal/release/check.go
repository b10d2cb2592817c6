package release

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/grokify/releaseconductor/internal/config"
	"github.com/grokify/releaseconductor/internal/gitcmd"
	"github.com/grokify/releaseconductor/internal/npm"
	"github.com/grokify/releaseconductor/pkg/model"
)

// check verifies git, npm and GitHub preconditions. It mutates nothing
// outside rc.
func (r *Runner) check(ctx context.Context, rc *Context) error {
	out := r.deps.Console

	if err := r.checkGit(ctx, rc); err != nil {
		return err
	}
	if rc.NoGit {
		out.Message("GIT", "Not a git repository, git steps disabled")
	} else {
		remote := "not found"
		if rc.Git.RemoteURL != "" {
			remote = fmt.Sprintf("%s → %s", rc.Git.RemoteName, rc.Git.RemoteURL)
		}
		out.Success("Git remote resolved: "+remote, rc.DryRun)
	}

	if !rc.NoNpm {
		user, err := r.checkNpm(ctx, rc)
		if err != nil {
			return err
		}
		out.Success(fmt.Sprintf("NPM registry: %s %s", r.registry(rc), user), rc.DryRun)
	}

	if !rc.NoGitHub {
		user, err := r.checkGitHub(ctx, rc)
		if err != nil {
			return err
		}
		out.Success(fmt.Sprintf("GitHub repository: %s %s", rc.GitHub.RepoRef().FullName(), user), rc.DryRun)
	}

	return nil
}

func (r *Runner) checkGit(ctx context.Context, rc *Context) error {
	g := r.deps.Git
	gc := r.cfg.Git

	if !g.IsRepo(ctx) {
		if gc.RequireRepository {
			return gitErr("Repository not found for %s", rc.Package.Name)
		}
		rc.NoGit = true
		rc.NoGitHub = true
		return nil
	}

	if gc.RequireWorkDirClean {
		clean, err := g.IsClean(ctx)
		if err != nil {
			return gitErr("failed to read working tree status: %w", err)
		}
		if !clean {
			return gitErr("Working dir must be clean")
		}
	}

	name, url, err := g.Remote(ctx)
	if err != nil {
		return gitErr("failed to read remotes: %w", err)
	}
	if url == "" {
		if gc.RequireRemote {
			return gitErr("Remote %q not found", gitcmd.DefaultRemote)
		}
		rc.NoGitHub = true
		return nil
	}
	rc.Git.RemoteName = name
	rc.Git.RemoteURL = url

	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		return gitErr("failed to read current branch: %w", err)
	}
	rc.Git.Branch = branch

	repo, err := model.ParseRemoteURL(url)
	if err != nil {
		r.deps.Logger.Warn("remote is not a GitHub repository", zap.String("url", url), zap.Error(err))
		rc.NoGitHub = true
		return nil
	}
	rc.GitHub.Owner = repo.Owner
	rc.GitHub.Repo = repo.Name
	return nil
}

func (r *Runner) registry(rc *Context) string {
	if rc.Package.Registry != "" {
		return rc.Package.Registry
	}
	return npm.DefaultRegistry
}

// checkNpm resolves the dist-tag, then checks the registry and the login
// concurrently, then write access. It returns the npm user.
func (r *Runner) checkNpm(ctx context.Context, rc *Context) (string, error) {
	client := r.deps.Npm
	registry := r.registry(rc)
	name := rc.Package.Name

	tag, err := npm.ResolvePublishTag(ctx, client, name, rc.Package.Current, registry)
	if err != nil {
		return "", npmErr("%w", err)
	}
	rc.Npm.DistTag = tag

	if r.cfg.Npm.SkipChecks {
		return "", nil
	}

	var user string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := client.Ping(gctx, registry); err != nil {
			return npmErr("Unable to reach npm registry %s", registry)
		}
		return nil
	})
	g.Go(func() error {
		u, err := client.Whoami(gctx, registry)
		if err != nil || u == "" {
			return npmErr("Not authenticated with npm. Please run npm login and try again.")
		}
		user = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	rc.Npm.Username = user

	published, err := client.PublishedVersion(ctx, name+"@"+tag, registry)
	if err != nil {
		return "", npmErr("failed to read published version of %s: %w", name, err)
	}
	if published != "" {
		ok, err := client.HasWriteAccess(ctx, name, user, registry)
		if err != nil || !ok {
			return "", npmErr("User %s is not a collaborator of %s.", user, name)
		}
	}

	return user, nil
}

// token returns the GitHub token from the configured variable, falling back
// to the gh CLI's stored token.
func (r *Runner) token() (string, string) {
	ref := r.cfg.GitHub.TokenRef
	if ref == "" {
		ref = config.DefaultTokenRef
	}
	if t := r.deps.Getenv(ref); t != "" {
		return t, ref
	}
	if r.deps.StoredToken != nil {
		return r.deps.StoredToken(), ref
	}
	return "", ref
}

// checkGitHub finds a token and verifies that its owner may release. It
// returns the GitHub user.
func (r *Runner) checkGitHub(ctx context.Context, rc *Context) (string, error) {
	token, ref := r.token()
	actions := r.deps.Getenv("GITHUB_ACTIONS") != ""

	if token == "" {
		rc.GitHub.WebFallback = true
		if rc.CI && actions {
			return "", githubErr("Missing GitHub token. Please set %s", ref)
		}
		return "", nil
	}
	rc.GitHub.Token = token

	if r.cfg.GitHub.SkipChecks {
		return "", nil
	}

	if actions {
		rc.GitHub.Username = r.deps.Getenv("GITHUB_ACTOR")
		return rc.GitHub.Username, nil
	}

	gh := r.deps.NewReleaser(token)
	user, err := gh.AuthenticatedUser(ctx)
	if err != nil {
		return "", githubErr("Invalid GitHub token or insufficient permissions")
	}
	ok, err := gh.IsCollaborator(ctx, rc.GitHub.RepoRef(), user)
	if err != nil || !ok {
		return "", githubErr("User does not have permission to create releases")
	}
	rc.GitHub.Username = user
	return user, nil
}
