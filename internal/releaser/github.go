package releaser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v84/github"
	"github.com/grokify/gogithub/release"
	"github.com/grokify/mogo/net/http/retryhttp"

	"github.com/grokify/releaseconductor/pkg/model"
)

// GitHubReleaser implements Releaser for GitHub.
type GitHubReleaser struct {
	client *github.Client
}

// NewGitHubReleaser creates a new GitHub releaser with default options.
// DefaultOptions sets no enterprise URLs, which is the only failing path of
// NewGitHubReleaserWithOptions, so the client is never nil.
func NewGitHubReleaser(token string) *GitHubReleaser {
	r, err := NewGitHubReleaserWithOptions(token, DefaultOptions())
	if err != nil {
		client := github.NewClient(nil)
		if token != "" {
			client = client.WithAuthToken(token)
		}
		return NewGitHubReleaserWithClient(client)
	}
	return r
}

// NewGitHubReleaserWithOptions creates a releaser whose HTTP client retries
// rate-limited requests.
func NewGitHubReleaserWithOptions(token string, opts Options) (*GitHubReleaser, error) {
	retryOpts := []retryhttp.Option{}
	if opts.MaxRetries > 0 {
		retryOpts = append(retryOpts, retryhttp.WithMaxRetries(opts.MaxRetries))
	}
	if opts.InitialBackoff > 0 {
		retryOpts = append(retryOpts, retryhttp.WithInitialBackoff(opts.InitialBackoff))
	}

	rt := retryhttp.NewWithOptions(retryOpts...)
	client := github.NewClient(&http.Client{Transport: rt})
	if token != "" {
		client = client.WithAuthToken(token)
	}

	if opts.BaseURL != "" || opts.UploadURL != "" {
		base, upload := opts.BaseURL, opts.UploadURL
		if upload == "" {
			upload = base
		}
		if base == "" {
			base = upload
		}
		var err error
		client, err = client.WithEnterpriseURLs(base, upload)
		if err != nil {
			return nil, fmt.Errorf("failed to set GitHub URLs: %w", err)
		}
	}

	return &GitHubReleaser{client: client}, nil
}

// NewGitHubReleaserWithClient wraps an existing go-github client.
func NewGitHubReleaserWithClient(client *github.Client) *GitHubReleaser {
	return &GitHubReleaser{client: client}
}

// AuthenticatedUser returns the login of the token owner.
func (r *GitHubReleaser) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := r.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// IsCollaborator reports whether user is a collaborator of the repository.
func (r *GitHubReleaser) IsCollaborator(ctx context.Context, repo model.RepoRef, user string) (bool, error) {
	ok, _, err := r.client.Repositories.IsCollaborator(ctx, repo.Owner, repo.Name, user)
	if err != nil {
		return false, fmt.Errorf("failed to check collaborator: %w", err)
	}
	return ok, nil
}

// GetReleaseByTag returns nil without an error when the tag has no release.
func (r *GitHubReleaser) GetReleaseByTag(ctx context.Context, repo model.RepoRef, tag string) (*model.Release, error) {
	rel, resp, err := r.client.Repositories.GetReleaseByTag(ctx, repo.Owner, repo.Name, tag)
	if err != nil {
		if isNotFound(resp, err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get release %s: %w", tag, err)
	}
	return toModel(rel, repo), nil
}

// CreateRelease creates a new release for a repository.
func (r *GitHubReleaser) CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error) {
	created, err := release.CreateRelease(ctx, r.client, req.Repo.Owner, req.Repo.Name, toGitHub(req))
	if err != nil {
		return nil, fmt.Errorf("failed to create release: %w", err)
	}
	return toModel(created, req.Repo), nil
}

// UpdateRelease overwrites the release with id.
func (r *GitHubReleaser) UpdateRelease(ctx context.Context, id int64, req *model.ReleaseRequest) (*model.Release, error) {
	updated, _, err := r.client.Repositories.EditRelease(ctx, req.Repo.Owner, req.Repo.Name, id, toGitHub(req))
	if err != nil {
		return nil, fmt.Errorf("failed to update release: %w", err)
	}
	return toModel(updated, req.Repo), nil
}

// UploadAsset uploads the file at path as a release asset named after it.
func (r *GitHubReleaser) UploadAsset(ctx context.Context, repo model.RepoRef, releaseID int64, path string) (*model.Asset, error) {
	f, err := os.Open(filepath.Clean(path)) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}
	defer f.Close()

	opts := &github.UploadOptions{Name: filepath.Base(path)}
	asset, _, err := r.client.Repositories.UploadReleaseAsset(ctx, repo.Owner, repo.Name, releaseID, opts, f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload asset %s: %w", opts.Name, err)
	}

	return &model.Asset{
		ID:          asset.GetID(),
		Name:        asset.GetName(),
		Size:        asset.GetSize(),
		ContentType: asset.GetContentType(),
		DownloadURL: asset.GetBrowserDownloadURL(),
	}, nil
}

func toGitHub(req *model.ReleaseRequest) *github.RepositoryRelease {
	ghRelease := &github.RepositoryRelease{
		TagName:              github.Ptr(req.TagName),
		Name:                 github.Ptr(req.Name),
		Body:                 github.Ptr(req.Body),
		Draft:                github.Ptr(req.Draft),
		Prerelease:           github.Ptr(req.Prerelease),
		GenerateReleaseNotes: github.Ptr(req.GenerateNotes),
	}
	if req.TargetCommitish != "" {
		ghRelease.TargetCommitish = github.Ptr(req.TargetCommitish)
	}
	if req.MakeLatest {
		ghRelease.MakeLatest = github.Ptr("true")
	}
	return ghRelease
}

func toModel(rel *github.RepositoryRelease, repo model.RepoRef) *model.Release {
	return &model.Release{
		ID:          rel.GetID(),
		TagName:     rel.GetTagName(),
		Name:        rel.GetName(),
		Body:        rel.GetBody(),
		Draft:       rel.GetDraft(),
		Prerelease:  rel.GetPrerelease(),
		CreatedAt:   rel.GetCreatedAt().Time,
		PublishedAt: rel.GetPublishedAt().Time,
		HTMLURL:     rel.GetHTMLURL(),
		UploadURL:   rel.GetUploadURL(),
		Repo:        repo,
	}
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
