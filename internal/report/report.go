package report

import (
	"fmt"
	"strings"

	"github.com/grokify/releaseconductor/pkg/model"
)

// Formatter defines the interface for formatting results.
type Formatter interface {
	// FormatRunSummary formats the outcome of one release run.
	FormatRunSummary(summary *model.RunSummary) (string, error)
}

// New returns the formatter for format. An empty format selects the table.
func New(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return NewTableFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "markdown", "md":
		return NewMarkdownFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q: use table, json, markdown or csv", format)
	}
}

func title(summary *model.RunSummary) string {
	if summary.DryRun {
		return "Release Dry Run Results"
	}
	return "Release Results"
}

func statusIcon(s model.StageStatus) string {
	switch s {
	case model.StageDone:
		return "✅"
	case model.StageSkipped:
		return "⏭️ "
	default:
		return "❌"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
