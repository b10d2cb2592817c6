package report

import (
	"encoding/json"

	"github.com/grokify/releaseconductor/pkg/model"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	Indent bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{Indent: true}
}

// FormatRunSummary formats a run summary as JSON.
func (f *JSONFormatter) FormatRunSummary(summary *model.RunSummary) (string, error) {
	var data []byte
	var err error

	if f.Indent {
		data, err = json.MarshalIndent(summary, "", "  ")
	} else {
		data, err = json.Marshal(summary)
	}

	if err != nil {
		return "", err
	}

	return string(data) + "\n", nil
}
