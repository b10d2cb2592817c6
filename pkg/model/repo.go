package model

import (
	"fmt"
	"net/url"
	"strings"
)

// RepoRef is a lightweight reference to a repository.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// FullName returns the full repository name in owner/repo format.
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether owner or name is missing.
func (r RepoRef) IsZero() bool {
	return r.Owner == "" || r.Name == ""
}

// ParseRemoteURL extracts owner and repository from a git remote URL. It
// accepts scp-like SSH ("git@host:owner/repo.git"), ssh://, git:// and
// http(s) forms.
func ParseRemoteURL(remote string) (RepoRef, error) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return RepoRef{}, fmt.Errorf("empty remote url")
	}

	var path string
	if at := strings.Index(remote, "@"); at >= 0 && !strings.Contains(remote, "://") {
		colon := strings.Index(remote[at:], ":")
		if colon < 0 {
			return RepoRef{}, fmt.Errorf("unsupported remote url: %s", remote)
		}
		path = remote[at+colon+1:]
	} else {
		u, err := url.Parse(remote)
		if err != nil {
			return RepoRef{}, fmt.Errorf("failed to parse remote url: %w", err)
		}
		path = u.Path
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return RepoRef{}, fmt.Errorf("remote url has no owner/repo: %s", remote)
	}

	return RepoRef{Owner: parts[len(parts)-2], Name: parts[len(parts)-1]}, nil
}
