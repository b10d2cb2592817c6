package changelog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/grokify/releaseconductor/internal/commitlog"
)

// Range is a commit span. An empty From means "from the first commit".
type Range struct {
	From string
	To   string
}

// String returns the range in git revision syntax.
func (r Range) String() string {
	if r.From == "" {
		return r.To
	}
	return r.From + ".." + r.To
}

// History is the subset of git the generator reads from.
type History interface {
	// Tags returns tags matching the glob, newest first.
	Tags(ctx context.Context, match string) ([]string, error)
	// Log returns raw commit records for the range, limited to path when set.
	Log(ctx context.Context, rng string, path string) ([]string, error)
}

// ResolveRange picks the commits to describe. For an increment the range runs
// from the latest tag to HEAD. Otherwise the release already has a tag and the
// range runs from the tag before it to that tag. Without tags the full history
// is used.
func ResolveRange(ctx context.Context, h History, isIncrement bool, match string) (Range, error) {
	tags, err := h.Tags(ctx, match)
	if err != nil {
		return Range{}, fmt.Errorf("failed to list tags: %w", err)
	}

	if isIncrement {
		if len(tags) == 0 {
			return Range{To: "HEAD"}, nil
		}
		return Range{From: tags[0], To: "HEAD"}, nil
	}

	switch len(tags) {
	case 0:
		return Range{To: "HEAD"}, nil
	case 1:
		return Range{To: tags[0]}, nil
	default:
		return Range{From: tags[1], To: tags[0]}, nil
	}
}

// Generator produces the changelog section for a release.
type Generator struct {
	History History
	Types   Types
	Logger  *zap.Logger
}

// Request describes the release being documented.
type Request struct {
	IsIncrement bool
	TagMatch    string // glob for this package's tags, e.g. "pkg@*"
	Path        string // limit commits to this directory
	Render      RenderOptions
}

// Result carries the rendered section and the tags it was rendered against.
type Result struct {
	Range       Range
	Commits     []commitlog.Commit
	PreviousTag string
	Text        string
}

// Generate resolves the range, reads and classifies commits and renders them.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	logger := g.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rng, err := ResolveRange(ctx, g.History, req.IsIncrement, req.TagMatch)
	if err != nil {
		return nil, err
	}

	records, err := g.History.Log(ctx, rng.String(), req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log %s: %w", rng, err)
	}
	commits := commitlog.ParseLog(records)
	logger.Debug("changelog range resolved",
		zap.String("range", rng.String()),
		zap.Int("commits", len(commits)))

	opts := req.Render
	if opts.Types == nil {
		opts.Types = g.Types
	}
	opts.PreviousTag = rng.From
	if !req.IsIncrement && rng.To != "HEAD" {
		opts.CurrentTag = rng.To
	}

	return &Result{
		Range:       rng,
		Commits:     commits,
		PreviousTag: rng.From,
		Text:        Render(Classify(commits), opts),
	}, nil
}
