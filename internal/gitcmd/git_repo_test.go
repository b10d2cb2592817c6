package gitcmd

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
)

// newRepo creates a work repository with one tagged commit pushed to a bare
// origin.
func newRepo(t *testing.T) *Exec {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(home, ".gitconfig"))
	t.Setenv("GIT_AUTHOR_NAME", "Release Bot")
	t.Setenv("GIT_AUTHOR_EMAIL", "bot@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Release Bot")
	t.Setenv("GIT_COMMITTER_EMAIL", "bot@example.com")

	ctx := context.Background()
	remote := t.TempDir()
	if _, err := runGit(ctx, remote, "init", "--bare"); err != nil {
		t.Fatalf("failed to init remote: %v", err)
	}

	dir := t.TempDir()
	g := New(dir, nil)
	if _, err := g.git(ctx, "init"); err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"version":"1.2.3"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"add", "--all"},
		{"commit", "--message", "initial"},
		{"tag", "--annotate", "1.2.3", "--message", "1.2.3"},
		{"remote", "add", "origin", remote},
	} {
		if _, err := g.git(ctx, args...); err != nil {
			t.Fatalf("git %v failed: %v", args, err)
		}
	}
	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.git(ctx, "push", "origin", branch, "refs/tags/1.2.3"); err != nil {
		t.Fatalf("failed to seed remote: %v", err)
	}
	return g
}

func TestExec_DryRunReleaseAgainstRepo(t *testing.T) {
	g := newRepo(t)
	ctx := context.Background()
	args := []string{DryRunFlag}

	if err := os.WriteFile(filepath.Join(g.Dir, "package.json"), []byte(`{"version":"1.3.0"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(ctx, true, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	head, err := g.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Add(ctx, false, args); err != nil {
		t.Fatalf("Add --dry-run failed: %v", err)
	}
	if err := g.Commit(ctx, "chore(release): 1.3.0", args); err != nil {
		t.Fatalf("Commit --dry-run failed: %v", err)
	}
	if err := g.TagAnnotated(ctx, "1.3.0", "Release 1.3.0", args); err != nil {
		t.Fatalf("TagAnnotated --dry-run failed: %v", err)
	}
	if err := g.PushTag(ctx, "origin", "1.3.0", args); err != nil {
		t.Fatalf("PushTag --dry-run failed: %v", err)
	}
	if err := g.PushBranch(ctx, "origin", branch, args); err != nil {
		t.Fatalf("PushBranch --dry-run failed: %v", err)
	}

	after, err := g.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if after != head {
		t.Errorf("expected HEAD to stay at %s, got %s", head, after)
	}
	tags, err := g.Tags(ctx, "*")
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(tags, "1.3.0") {
		t.Errorf("expected no 1.3.0 tag, got %v", tags)
	}
	remoteTags, err := g.git(ctx, "ls-remote", "--tags", "origin")
	if err != nil {
		t.Fatal(err)
	}
	if slices.ContainsFunc(lines(remoteTags), func(l string) bool { return filepath.Base(l) == "1.3.0" }) {
		t.Errorf("expected remote to be untouched, got %s", remoteTags)
	}
}

func TestExec_PushMissingTagFails(t *testing.T) {
	g := newRepo(t)

	if err := g.PushTag(context.Background(), "origin", "9.9.9", nil); err == nil {
		t.Error("expected pushing a tag that does not exist to fail")
	}
}

func TestExec_RollbackAgainstRepo(t *testing.T) {
	g := newRepo(t)
	ctx := context.Background()

	path := filepath.Join(g.Dir, "package.json")
	if err := os.WriteFile(path, []byte(`{"version":"2.0.0"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(ctx, true, nil); err != nil {
		t.Fatal(err)
	}
	if err := g.Commit(ctx, "chore(release): 2.0.0", nil); err != nil {
		t.Fatal(err)
	}
	if err := g.TagAnnotated(ctx, "2.0.0", "Release 2.0.0", nil); err != nil {
		t.Fatal(err)
	}

	if err := g.DeleteTag(ctx, "2.0.0"); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}
	if err := g.ResetHard(ctx, "HEAD~1"); err != nil {
		t.Fatalf("ResetHard failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"version":"1.2.3"}` {
		t.Errorf("expected original package.json, got %s", data)
	}
	clean, err := g.IsClean(ctx)
	if err != nil || !clean {
		t.Errorf("expected clean tree, got %v %v", clean, err)
	}
}
