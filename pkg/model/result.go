package model

import "time"

// StageStatus is the outcome of one release stage.
type StageStatus string

const (
	StageDone    StageStatus = "done"
	StageSkipped StageStatus = "skipped"
	StageFailed  StageStatus = "failed"
)

// StageResult records what happened in one stage.
type StageResult struct {
	Stage  string      `json:"stage"`
	Status StageStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// RunSummary contains the results of one release run.
type RunSummary struct {
	Timestamp  time.Time     `json:"timestamp"`
	DryRun     bool          `json:"dryRun"`
	Package    string        `json:"package"`
	Current    string        `json:"current"`
	Next       string        `json:"next"`
	Tag        string        `json:"tag,omitempty"`
	DistTag    string        `json:"distTag,omitempty"`
	Repo       RepoRef       `json:"repo"`
	ReleaseURL string        `json:"releaseUrl,omitempty"`
	Committed  bool          `json:"committed"`
	Tagged     bool          `json:"tagged"`
	Pushed     bool          `json:"pushed"`
	RolledBack bool          `json:"rolledBack"`
	Stages     []StageResult `json:"stages"`
	Error      string        `json:"error,omitempty"`
}

// Stage returns the result for name, if recorded.
func (s *RunSummary) Stage(name string) (StageResult, bool) {
	for _, r := range s.Stages {
		if r.Stage == name {
			return r, true
		}
	}
	return StageResult{}, false
}
