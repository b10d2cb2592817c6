package releaser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/conc/pool"

	"github.com/grokify/releaseconductor/pkg/model"
)

// MaxBodyLength is the longest release body GitHub accepts, with headroom.
const MaxBodyLength = 124000

// ErrReleaseExists is returned when the tag already has a published release.
var ErrReleaseExists = errors.New("release already exists and is not a draft")

// TruncateBody shortens body to MaxBodyLength runes.
func TruncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= MaxBodyLength {
		return body
	}
	return string(runes[:MaxBodyLength])
}

// PublishRelease creates the release for req.TagName, or updates it when a
// draft for the tag already exists. A published release for the tag is an
// error.
func PublishRelease(ctx context.Context, r Releaser, req *model.ReleaseRequest) (*model.Release, bool, error) {
	existing, err := r.GetReleaseByTag(ctx, req.Repo, req.TagName)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		created, err := r.CreateRelease(ctx, req)
		return created, false, err
	}
	if !existing.Draft {
		return nil, false, fmt.Errorf("%w: %s", ErrReleaseExists, req.TagName)
	}

	updated, err := r.UpdateRelease(ctx, existing.ID, req)
	return updated, true, err
}

// ExpandAssets resolves glob patterns relative to dir into a sorted,
// de-duplicated file list. "**" matches across directories.
func ExpandAssets(dir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid asset pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// UploadAssets uploads every file concurrently and waits for all of them. A
// failed upload fails the batch; assets that were already uploaded stay
// attached to the release.
func UploadAssets(ctx context.Context, r Releaser, repo model.RepoRef, releaseID int64, files []string, maxConcurrent int) ([]model.Asset, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	var (
		mu       sync.Mutex
		uploaded []model.Asset
	)

	p := pool.New().WithMaxGoroutines(maxConcurrent).WithContext(ctx)
	for _, file := range files {
		p.Go(func(ctx context.Context) error {
			asset, err := r.UploadAsset(ctx, repo, releaseID, file)
			if err != nil {
				return err
			}
			mu.Lock()
			uploaded = append(uploaded, *asset)
			mu.Unlock()
			return nil
		})
	}
	err := p.Wait()

	sort.Slice(uploaded, func(i, j int) bool { return uploaded[i].Name < uploaded[j].Name })
	return uploaded, err
}
