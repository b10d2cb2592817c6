package config

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// HookKey names a lifecycle point.
type HookKey string

const (
	BeforeBump    HookKey = "before:bump"
	AfterBump     HookKey = "after:bump"
	BeforePublish HookKey = "before:publish"
	AfterPublish  HookKey = "after:publish"
	BeforePush    HookKey = "before:push"
	AfterPush     HookKey = "after:push"
	BeforeRelease HookKey = "before:release"
	AfterRelease  HookKey = "after:release"
)

// HookKeys lists every lifecycle point in pipeline order.
var HookKeys = []HookKey{
	BeforeBump, AfterBump,
	BeforePush, AfterPush,
	BeforePublish, AfterPublish,
	BeforeRelease, AfterRelease,
}

// Hook is either a list of shell commands or a Go callback. A hook with a
// callback ignores Commands.
type Hook struct {
	Commands []string
	Callback func(ctx context.Context) error
}

// Commands returns a shell hook.
func Commands(cmds ...string) Hook { return Hook{Commands: cmds} }

// Callback returns a function hook.
func Callback(fn func(ctx context.Context) error) Hook { return Hook{Callback: fn} }

// IsZero reports whether the hook does nothing.
func (h Hook) IsZero() bool {
	return h.Callback == nil && len(h.Commands) == 0
}

// UnmarshalYAML accepts a single command string or a list of them.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			*h = Hook{}
			return nil
		}
		*h = Commands(node.Value)
		return nil
	case yaml.SequenceNode:
		var cmds []string
		if err := node.Decode(&cmds); err != nil {
			return fmt.Errorf("hook commands must be strings (line %d): %w", node.Line, err)
		}
		*h = Commands(cmds...)
		return nil
	}
	return fmt.Errorf("hook must be a command or a list of commands (line %d)", node.Line)
}

// MarshalYAML writes shell commands; callbacks cannot be serialized.
func (h Hook) MarshalYAML() (any, error) {
	if len(h.Commands) == 1 {
		return h.Commands[0], nil
	}
	return h.Commands, nil
}
