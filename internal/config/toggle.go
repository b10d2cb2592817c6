package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Toggle is a stage switch that is either forced on/off or left to an
// interactive question.
type Toggle struct {
	forced bool
	value  bool
}

// Ask returns a toggle that is decided by prompting.
func Ask() Toggle { return Toggle{} }

// Forced returns a toggle with a fixed value.
func Forced(v bool) Toggle { return Toggle{forced: true, value: v} }

// IsAsk reports whether the toggle needs a prompt.
func (t Toggle) IsAsk() bool { return !t.forced }

// Value returns the forced value. ok is false for Ask.
func (t Toggle) Value() (value, ok bool) { return t.value, t.forced }

// Enabled returns the forced value, or fallback when the toggle is Ask.
func (t Toggle) Enabled(fallback bool) bool {
	if t.forced {
		return t.value
	}
	return fallback
}

func (t Toggle) String() string {
	if !t.forced {
		return "ask"
	}
	return fmt.Sprintf("%t", t.value)
}

// UnmarshalYAML accepts a boolean, "ask" or null.
func (t *Toggle) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*t = Ask()
		return nil
	}
	if node.Kind == yaml.ScalarNode && strings.EqualFold(node.Value, "ask") {
		*t = Ask()
		return nil
	}

	var b bool
	if err := node.Decode(&b); err != nil {
		return fmt.Errorf("toggle must be true, false or \"ask\" (line %d)", node.Line)
	}
	*t = Forced(b)
	return nil
}

// MarshalYAML writes Ask as "ask".
func (t Toggle) MarshalYAML() (any, error) {
	if !t.forced {
		return "ask", nil
	}
	return t.value, nil
}
