package prompt

import (
	"errors"
	"testing"
)

func nonInteractive() *Huh {
	return &Huh{Interactive: func() bool { return false }}
}

func TestHuh_NotTTY(t *testing.T) {
	h := nonInteractive()

	if _, err := h.Confirm("Continue?", true); !errors.Is(err, ErrNotTTY) {
		t.Errorf("Confirm: expected ErrNotTTY, got %v", err)
	}
	if _, err := h.Select("Pick", []Option{{Label: "A", Value: "a"}}, "a"); !errors.Is(err, ErrNotTTY) {
		t.Errorf("Select: expected ErrNotTTY, got %v", err)
	}
	if _, err := h.Input("Name", "", Required); !errors.Is(err, ErrNotTTY) {
		t.Errorf("Input: expected ErrNotTTY, got %v", err)
	}
}

func TestHuh_SelectRequiresOptions(t *testing.T) {
	_, err := nonInteractive().Select("Pick", nil, "")
	if err == nil || errors.Is(err, ErrNotTTY) {
		t.Errorf("expected a no-options error, got %v", err)
	}
}

func TestRequired(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", true},
		{"   ", true},
		{"1.2.3", false},
	}
	for _, tt := range tests {
		if err := Required(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("Required(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}
