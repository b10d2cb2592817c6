package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/grokify/releaseconductor/pkg/model"
)

// MarkdownFormatter formats results as Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new Markdown formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// FormatRunSummary formats a run summary as Markdown.
func (f *MarkdownFormatter) FormatRunSummary(summary *model.RunSummary) (string, error) {
	var sb strings.Builder

	sb.WriteString("# " + title(summary) + "\n\n")
	sb.WriteString(fmt.Sprintf("**Time:** %s\n\n", summary.Timestamp.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Package:** %s\n\n", summary.Package))
	sb.WriteString(fmt.Sprintf("**Version:** %s → %s\n\n", summary.Current, summary.Next))
	if summary.Tag != "" {
		sb.WriteString(fmt.Sprintf("**Tag:** `%s`\n\n", summary.Tag))
	}
	if summary.DistTag != "" {
		sb.WriteString(fmt.Sprintf("**npm dist-tag:** `%s`\n\n", summary.DistTag))
	}
	if summary.ReleaseURL != "" {
		sb.WriteString(fmt.Sprintf("**Release:** [%s](%s)\n\n", summary.Repo.FullName(), summary.ReleaseURL))
	}
	sb.WriteString(fmt.Sprintf("**Committed:** %s | **Tagged:** %s | **Pushed:** %s | **Rolled Back:** %s\n\n",
		yesNo(summary.Committed), yesNo(summary.Tagged), yesNo(summary.Pushed), yesNo(summary.RolledBack)))

	if len(summary.Stages) > 0 {
		sb.WriteString("## Stages\n\n")
		sb.WriteString("| Stage | Status | Detail |\n")
		sb.WriteString("|-------|--------|--------|\n")
		for _, s := range summary.Stages {
			sb.WriteString(fmt.Sprintf("| %s | %s %s | %s |\n",
				s.Stage, statusIcon(s.Status), s.Status, strings.ReplaceAll(s.Detail, "|", `\|`)))
		}
	}

	if summary.Error != "" {
		sb.WriteString("\n## Error\n\n")
		sb.WriteString(fmt.Sprintf("**%s**\n", summary.Error))
	}

	return sb.String(), nil
}
