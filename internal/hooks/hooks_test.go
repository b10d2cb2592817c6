package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/grokify/releaseconductor/internal/config"
)

type recorder struct {
	lines []string
}

func (r *recorder) Success(msg string, _ bool) {
	r.lines = append(r.lines, msg)
}

func TestRunner_ShellCommands(t *testing.T) {
	var ran []string
	rec := &recorder{}
	r := &Runner{
		Dir: "/work",
		Shell: func(_ context.Context, dir, command string) ([]byte, error) {
			if dir != "/work" {
				t.Errorf("expected dir /work, got %s", dir)
			}
			ran = append(ran, command)
			if command == "false" {
				return []byte("boom"), errors.New("exit status 1")
			}
			return nil, nil
		},
		Notifier: rec,
	}

	hooks := map[config.HookKey]config.Hook{
		config.BeforeBump: config.Commands("npm test", "false", " ", "npm run build"),
	}

	if err := r.Run(context.Background(), hooks, config.BeforeBump, false); err != nil {
		t.Fatalf("expected shell failures to be tolerated, got %v", err)
	}
	if diff := cmp.Diff([]string{"npm test", "false", "npm run build"}, ran); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"npm test", "npm run build"}, rec.lines); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_DryRun(t *testing.T) {
	rec := &recorder{}
	r := &Runner{
		Shell: func(context.Context, string, string) ([]byte, error) {
			t.Fatal("shell must not run in dry-run mode")
			return nil, nil
		},
		Notifier: rec,
	}
	called := false
	hooks := map[config.HookKey]config.Hook{
		config.AfterPush:     config.Commands("echo pushed"),
		config.BeforeRelease: config.Callback(func(context.Context) error { called = true; return nil }),
	}

	if err := r.Run(context.Background(), hooks, config.AfterPush, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := r.Run(context.Background(), hooks, config.BeforeRelease, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if called {
		t.Error("callback must not run in dry-run mode")
	}
	if len(rec.lines) != 2 {
		t.Errorf("expected both hooks reported, got %v", rec.lines)
	}
}

func TestRunner_CallbackError(t *testing.T) {
	r := NewRunner(".", nil)
	want := errors.New("nope")
	hooks := map[config.HookKey]config.Hook{
		config.BeforePublish: config.Callback(func(context.Context) error { return want }),
	}

	err := r.Run(context.Background(), hooks, config.BeforePublish, false)
	if !errors.Is(err, want) {
		t.Errorf("expected callback error, got %v", err)
	}

	if err := r.Run(context.Background(), hooks, config.AfterPublish, false); err != nil {
		t.Errorf("expected missing hook to be a no-op, got %v", err)
	}
}
