package report

import (
	"bytes"
	"encoding/csv"

	"github.com/grokify/releaseconductor/pkg/model"
)

// CSVFormatter formats results as CSV, one row per stage.
type CSVFormatter struct{}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// FormatRunSummary formats a run summary as CSV.
func (f *CSVFormatter) FormatRunSummary(summary *model.RunSummary) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Package", "Current", "Next", "Tag", "Stage", "Status", "Detail"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, s := range summary.Stages {
		row := []string{
			summary.Package,
			summary.Current,
			summary.Next,
			summary.Tag,
			s.Stage,
			string(s.Status),
			s.Detail,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	if summary.Error != "" {
		row := []string{summary.Package, summary.Current, summary.Next, summary.Tag, "", string(model.StageFailed), summary.Error}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}
