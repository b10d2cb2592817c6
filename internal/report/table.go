package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/grokify/releaseconductor/pkg/model"
)

// TableFormatter formats results as text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// FormatRunSummary formats a run summary as a text table.
func (f *TableFormatter) FormatRunSummary(summary *model.RunSummary) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s (%s)\n", title(summary), summary.Timestamp.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Package: %s | Version: %s → %s\n", summary.Package, summary.Current, summary.Next))
	sb.WriteString(fmt.Sprintf("Committed: %s | Tagged: %s | Pushed: %s | Rolled Back: %s\n",
		yesNo(summary.Committed), yesNo(summary.Tagged), yesNo(summary.Pushed), yesNo(summary.RolledBack)))
	if summary.ReleaseURL != "" {
		sb.WriteString("Release: " + summary.ReleaseURL + "\n")
	}
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if len(summary.Stages) == 0 {
		sb.WriteString("No stages ran.\n")
	} else {
		sb.WriteString(fmt.Sprintf("%-12s %-10s %s\n", "STAGE", "STATUS", "DETAIL"))
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, s := range summary.Stages {
			sb.WriteString(fmt.Sprintf("%-12s %s %-7s %s\n",
				s.Stage, statusIcon(s.Status), s.Status, truncate(s.Detail, 55)))
		}
	}

	if summary.Error != "" {
		sb.WriteString("\nError:\n")
		sb.WriteString("  " + summary.Error + "\n")
	}

	return sb.String(), nil
}
