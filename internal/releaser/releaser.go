package releaser

import (
	"context"
	"time"

	"github.com/grokify/releaseconductor/pkg/model"
)

// Releaser defines the GitHub operations used to publish a release.
type Releaser interface {
	// AuthenticatedUser returns the login of the token owner.
	AuthenticatedUser(ctx context.Context) (string, error)

	// IsCollaborator reports whether user may push to the repository.
	IsCollaborator(ctx context.Context, repo model.RepoRef, user string) (bool, error)

	// GetReleaseByTag returns the release for tag, or nil when there is none.
	GetReleaseByTag(ctx context.Context, repo model.RepoRef, tag string) (*model.Release, error)

	// CreateRelease creates a new release for a repository.
	CreateRelease(ctx context.Context, req *model.ReleaseRequest) (*model.Release, error)

	// UpdateRelease overwrites an existing release.
	UpdateRelease(ctx context.Context, id int64, req *model.ReleaseRequest) (*model.Release, error)

	// UploadAsset attaches the file at path to a release.
	UploadAsset(ctx context.Context, repo model.RepoRef, releaseID int64, path string) (*model.Asset, error)
}

// Options configures the GitHub client.
type Options struct {
	MaxRetries     int           // retries on 429 and 5xx responses
	InitialBackoff time.Duration // first retry delay
	BaseURL        string        // API base URL, for GitHub Enterprise or tests
	UploadURL      string        // upload base URL, for GitHub Enterprise or tests
}

// DefaultOptions returns sensible default client options.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     3,
		InitialBackoff: time.Second,
	}
}

// NewGitHub creates a new GitHub releaser with the given token.
func NewGitHub(token string) Releaser {
	return NewGitHubReleaser(token)
}
