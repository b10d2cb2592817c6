// Package prompt asks the user for release decisions in the terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("operation cancelled")

// ErrNotTTY is returned when a prompt is needed but stdin is not a terminal.
var ErrNotTTY = errors.New("stdin is not a TTY")

// Option is one entry of a Select prompt.
type Option struct {
	Label string
	Value string
	Hint  string
}

// ValidateFunc checks a text answer.
type ValidateFunc func(string) error

// Prompter asks questions. Every method returns ErrCancelled when the user
// aborts.
type Prompter interface {
	Confirm(title string, initial bool) (bool, error)
	Select(title string, options []Option, initial string) (string, error)
	Input(title, initial string, validate ValidateFunc) (string, error)
}

// Huh implements Prompter with charmbracelet/huh forms.
type Huh struct {
	Accessible bool
	// Interactive reports whether prompts can be shown. Defaults to a
	// terminal check on stdin.
	Interactive func() bool
}

// NewHuh returns a Prompter that renders huh forms. Accessible mode is
// enabled by the ACCESSIBLE environment variable.
func NewHuh() *Huh {
	return &Huh{Accessible: os.Getenv("ACCESSIBLE") != ""}
}

func (h *Huh) interactive() bool {
	if h.Interactive != nil {
		return h.Interactive()
	}
	return term.IsTerminal(int(os.Stdin.Fd())) // #nosec G115
}

func (h *Huh) run(field huh.Field) error {
	if !h.interactive() {
		return ErrNotTTY
	}
	err := huh.NewForm(huh.NewGroup(field)).WithAccessible(h.Accessible).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

// Confirm asks a yes/no question.
func (h *Huh) Confirm(title string, initial bool) (bool, error) {
	answer := initial
	err := h.run(huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&answer))
	if err != nil {
		return false, err
	}
	return answer, nil
}

// Select asks for one of options. initial preselects the option with that
// value.
func (h *Huh) Select(title string, options []Option, initial string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options to select from")
	}

	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		label := o.Label
		if o.Hint != "" {
			label = fmt.Sprintf("%s (%s)", o.Label, o.Hint)
		}
		opts = append(opts, huh.NewOption(label, o.Value))
	}

	selected := initial
	err := h.run(huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&selected))
	if err != nil {
		return "", err
	}
	return selected, nil
}

// Input asks for a line of text. An empty validate accepts anything.
func (h *Huh) Input(title, initial string, validate ValidateFunc) (string, error) {
	value := initial
	input := huh.NewInput().
		Title(title).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}
	if err := h.run(input); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Required rejects blank answers.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}
