package model

import "time"

// Release represents a GitHub release.
type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tagName"`
	Name        string    `json:"name"`
	Body        string    `json:"body,omitempty"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	CreatedAt   time.Time `json:"createdAt"`
	PublishedAt time.Time `json:"publishedAt"`
	HTMLURL     string    `json:"htmlUrl"`
	UploadURL   string    `json:"uploadUrl,omitempty"`
	Repo        RepoRef   `json:"repo"`
}

// ReleaseRequest contains the information needed to create or update a release.
type ReleaseRequest struct {
	Repo            RepoRef `json:"repo"`
	TagName         string  `json:"tagName"`
	TargetCommitish string  `json:"targetCommitish,omitempty"` // Branch or commit SHA
	Name            string  `json:"name"`
	Body            string  `json:"body"`
	Draft           bool    `json:"draft"`
	Prerelease      bool    `json:"prerelease"`
	GenerateNotes   bool    `json:"generateNotes"`
	MakeLatest      bool    `json:"makeLatest"`
}

// Asset is a file attached to a release.
type Asset struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}
