// Package gitcmd wraps the git commands used during a release.
package gitcmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/grokify/releaseconductor/internal/commitlog"
)

// DryRunFlag is appended to mutating commands in dry-run mode.
const DryRunFlag = "--dry-run"

// DefaultRemote is used when the repository has a remote with this name.
const DefaultRemote = "origin"

// logFormat emits "<full>\n<short>\n<subject>\n<body>" records terminated by
// the commitlog record separator.
const logFormat = "--format=%H%n%h%n%s%n%b%x1e"

// Git is the set of repository operations a release needs.
type Git interface {
	IsRepo(ctx context.Context) bool
	IsClean(ctx context.Context) (bool, error)
	// Remote returns the preferred remote and its URL. Both are empty when
	// the repository has no remote.
	Remote(ctx context.Context) (name, url string, err error)
	Remotes(ctx context.Context) ([]string, error)
	CurrentBranch(ctx context.Context) (string, error)

	Add(ctx context.Context, all bool, args []string) error
	Commit(ctx context.Context, message string, args []string) error
	TagAnnotated(ctx context.Context, tag, message string, args []string) error
	PushTag(ctx context.Context, remote, tag string, args []string) error
	PushBranch(ctx context.Context, remote, branch string, args []string) error

	Tags(ctx context.Context, match string) ([]string, error)
	Log(ctx context.Context, rng, path string) ([]string, error)
	Status(ctx context.Context) (string, error)

	Restore(ctx context.Context) error
	DeleteTag(ctx context.Context, tag string) error
	ResetHard(ctx context.Context, ref string) error
}

// RunFunc executes git with args in dir and returns trimmed stdout.
type RunFunc func(ctx context.Context, dir string, args ...string) (string, error)

// Exec implements Git by running the git binary.
type Exec struct {
	Dir    string
	Run    RunFunc
	Logger *zap.Logger
}

// New creates an Exec rooted at dir.
func New(dir string, logger *zap.Logger) *Exec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exec{Dir: dir, Run: runGit, Logger: logger}
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (g *Exec) git(ctx context.Context, args ...string) (string, error) {
	if g.Logger != nil {
		g.Logger.Debug("git", zap.Strings("args", args))
	}
	return g.Run(ctx, g.Dir, args...)
}

// IsRepo reports whether Dir is inside a work tree.
func (g *Exec) IsRepo(ctx context.Context) bool {
	out, err := g.git(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// IsClean reports whether there are no uncommitted changes.
func (g *Exec) IsClean(ctx context.Context) (bool, error) {
	out, err := g.Status(ctx)
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// Remote prefers "origin" and falls back to the first configured remote.
func (g *Exec) Remote(ctx context.Context) (string, string, error) {
	remotes, err := g.Remotes(ctx)
	if err != nil {
		return "", "", err
	}
	if len(remotes) == 0 {
		return "", "", nil
	}

	name := remotes[0]
	if slices.Contains(remotes, DefaultRemote) {
		name = DefaultRemote
	}
	url, err := g.git(ctx, "remote", "get-url", name)
	if err != nil {
		return name, "", err
	}
	return name, url, nil
}

// Remotes lists configured remotes.
func (g *Exec) Remotes(ctx context.Context) ([]string, error) {
	out, err := g.git(ctx, "remote")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// CurrentBranch returns the checked-out branch name.
func (g *Exec) CurrentBranch(ctx context.Context) (string, error) {
	return g.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// Add stages changes: everything with all, tracked files only otherwise.
func (g *Exec) Add(ctx context.Context, all bool, args []string) error {
	cmd := []string{"add", "--update"}
	if all {
		cmd = []string{"add", "--all"}
	}
	_, err := g.git(ctx, append(cmd, args...)...)
	return err
}

// Commit records staged changes.
func (g *Exec) Commit(ctx context.Context, message string, args []string) error {
	_, err := g.git(ctx, append([]string{"commit", "--message", message}, args...)...)
	return err
}

// TagAnnotated creates an annotated tag. git tag has no dry-run mode, so the
// command is only logged when args request one.
func (g *Exec) TagAnnotated(ctx context.Context, tag, message string, args []string) error {
	if slices.Contains(args, DryRunFlag) {
		if g.Logger != nil {
			g.Logger.Debug("skipping tag in dry-run", zap.String("tag", tag))
		}
		return nil
	}
	_, err := g.git(ctx, append([]string{"tag", "--annotate", tag, "--message", message}, args...)...)
	return err
}

// PushTag pushes one tag to remote. A dry run pushes HEAD under the tag
// name, since TagAnnotated created no local tag to push.
func (g *Exec) PushTag(ctx context.Context, remote, tag string, args []string) error {
	refspec := "refs/tags/" + tag
	if slices.Contains(args, DryRunFlag) {
		refspec = "HEAD:" + refspec
	}
	_, err := g.git(ctx, append([]string{"push", remote, refspec}, args...)...)
	return err
}

// PushBranch pushes branch to remote.
func (g *Exec) PushBranch(ctx context.Context, remote, branch string, args []string) error {
	_, err := g.git(ctx, append([]string{"push", remote, branch}, args...)...)
	return err
}

// Tags lists tags matching the glob, newest first.
func (g *Exec) Tags(ctx context.Context, match string) ([]string, error) {
	if match == "" {
		match = "*"
	}
	out, err := g.git(ctx, "tag", "--list", match, "--sort=-creatordate")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// Log returns raw commit records for rng, limited to path when set.
func (g *Exec) Log(ctx context.Context, rng, path string) ([]string, error) {
	args := []string{"log", logFormat}
	if rng != "" {
		args = append(args, rng)
	}
	if path != "" && path != "." {
		args = append(args, "--", path)
	}
	out, err := g.git(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git log %s: %w", rng, err)
	}
	return commitlog.SplitRecords(out), nil
}

// Status returns the porcelain status.
func (g *Exec) Status(ctx context.Context) (string, error) {
	return g.git(ctx, "status", "--porcelain")
}

// Restore discards unstaged changes in the work tree.
func (g *Exec) Restore(ctx context.Context) error {
	_, err := g.git(ctx, "restore", ".")
	return err
}

// DeleteTag removes a local tag.
func (g *Exec) DeleteTag(ctx context.Context, tag string) error {
	_, err := g.git(ctx, "tag", "--delete", tag)
	return err
}

// ResetHard resets the index and work tree to ref.
func (g *Exec) ResetHard(ctx context.Context, ref string) error {
	_, err := g.git(ctx, "reset", "--hard", ref)
	return err
}

func lines(out string) []string {
	var res []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return res
}
