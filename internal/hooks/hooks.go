// Package hooks runs the lifecycle hooks configured around release stages.
package hooks

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/grokify/releaseconductor/internal/config"
)

// ShellFunc runs one shell command and returns its combined output.
type ShellFunc func(ctx context.Context, dir, command string) ([]byte, error)

// Notifier receives a line for every hook that ran or would have run.
type Notifier interface {
	Success(msg string, dryRun bool)
}

// Runner executes hooks. Shell command failures are logged and do not stop
// the release; a callback returning an error does.
type Runner struct {
	Dir      string
	Shell    ShellFunc
	Logger   *zap.Logger
	Notifier Notifier
}

// NewRunner creates a runner that executes commands with the system shell.
func NewRunner(dir string, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Dir:    dir,
		Shell:  SystemShell,
		Logger: logger,
	}
}

// Run executes the hook registered under key. In dry-run mode nothing is
// executed but every hook is still reported.
func (r *Runner) Run(ctx context.Context, hooks map[config.HookKey]config.Hook, key config.HookKey, dryRun bool) error {
	h, ok := hooks[key]
	if !ok || h.IsZero() {
		return nil
	}
	logger := r.logger().With(zap.String("hook", string(key)), zap.Bool("dryRun", dryRun))

	if h.Callback != nil {
		if !dryRun {
			if err := h.Callback(ctx); err != nil {
				return fmt.Errorf("hook %s failed: %w", key, err)
			}
		}
		r.notify(fmt.Sprintf("run %s callback", key), dryRun)
		return nil
	}

	for _, command := range h.Commands {
		command = strings.TrimSpace(command)
		if command == "" {
			continue
		}
		if !dryRun {
			out, err := r.Shell(ctx, r.Dir, command)
			if err != nil {
				logger.Error("hook command failed",
					zap.String("command", command),
					zap.ByteString("output", out),
					zap.Error(err))
				continue
			}
			logger.Debug("hook command finished", zap.String("command", command))
		}
		r.notify(command, dryRun)
	}

	return nil
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) notify(msg string, dryRun bool) {
	if r.Notifier != nil {
		r.Notifier.Success(msg, dryRun)
	}
}

// SystemShell runs command through sh -c, or cmd /C on Windows.
func SystemShell(ctx context.Context, dir, command string) ([]byte, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	cmd.Dir = dir
	return cmd.CombinedOutput()
}
