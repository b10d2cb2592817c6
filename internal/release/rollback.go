package release

import (
	"context"

	"go.uber.org/zap"

	"github.com/grokify/releaseconductor/pkg/model"
)

// rollback undoes local git changes: the working tree, the release tag and
// the release commit. Once anything was pushed it does nothing, so local
// history never diverges from the remote.
func (r *Runner) rollback(ctx context.Context, rc *Context) {
	if rc.NoGit {
		return
	}
	if rc.Git.Pushed() {
		r.deps.Logger.Info("skipping rollback after push", zap.String("tag", rc.Git.CurrentTag))
		r.record(StageRollback, model.StageSkipped, "already pushed")
		return
	}

	g := r.deps.Git
	logger := r.deps.Logger

	// every step runs even if an earlier one failed
	if err := g.Restore(ctx); err != nil {
		logger.Warn("git restore failed", zap.Error(err))
	}
	if rc.Git.Tagged() {
		if err := g.DeleteTag(ctx, rc.Git.CurrentTag); err != nil {
			logger.Warn("git tag delete failed", zap.String("tag", rc.Git.CurrentTag), zap.Error(err))
		}
	}
	ref := "HEAD"
	if rc.Git.Committed() {
		ref = "HEAD~1"
	}
	if err := g.ResetHard(ctx, ref); err != nil {
		logger.Warn("git reset failed", zap.String("ref", ref), zap.Error(err))
	}

	r.summary.RolledBack = true
	r.record(StageRollback, model.StageDone, ref)
}
