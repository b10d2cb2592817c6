package changelog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/grokify/releaseconductor/internal/commitlog"
)

func sampleCommits() []commitlog.Commit {
	return []commitlog.Commit{
		commitlog.ParseCommit("fix: first fix", "", "", "aaa1111", "aaa1111full"),
		commitlog.ParseCommit("feat(ui): new button", "", "", "bbb2222", "bbb2222full"),
		commitlog.ParseCommit("fix: second fix", "", "", "ccc3333", "ccc3333full"),
		commitlog.ParseCommit("random commit", "", "", "ddd4444", "ddd4444full"),
	}
}

func TestClassify_Order(t *testing.T) {
	sections := Classify(sampleCommits())

	var gotTypes []string
	for _, s := range sections {
		gotTypes = append(gotTypes, s.Type)
	}
	if diff := cmp.Diff([]string{"fix", "feat", ""}, gotTypes); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}

	fixes := sections[0].Entries
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fix entries, got %d", len(fixes))
	}
	if fixes[0].Description != "first fix" || fixes[1].Description != "second fix" {
		t.Errorf("expected source order, got %q then %q", fixes[0].Description, fixes[1].Description)
	}

	other := sections[2].Entries[0]
	if other.Description != "random commit" {
		t.Errorf("expected unclassified entry to use its header, got %q", other.Description)
	}
}

func TestRender(t *testing.T) {
	opts := RenderOptions{
		Version:     "1.1.0",
		CurrentTag:  "v1.1.0",
		PreviousTag: "v1.0.0",
		Owner:       "acme",
		Repo:        "widget",
		Date:        "2024-05-01",
	}

	got := Render(Classify(sampleCommits()), opts)

	want := "## [1.1.0](https://github.com/acme/widget/compare/v1.0.0...v1.1.0) (2024-05-01)\n" +
		"\n### 🐛 Bug Fixes\n\n" +
		"* **fix** first fix [aaa1111](https://github.com/acme/widget/commit/aaa1111full)\n" +
		"* **fix** second fix [ccc3333](https://github.com/acme/widget/commit/ccc3333full)\n" +
		"\n### ✨ Features\n\n" +
		"* **feat** new button [bbb2222](https://github.com/acme/widget/commit/bbb2222full)\n" +
		"\n### Other Changes\n\n" +
		"* random commit [ddd4444](https://github.com/acme/widget/commit/ddd4444full)\n" +
		"\n**Full Changelog**: https://github.com/acme/widget/compare/v1.0.0...v1.1.0\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_NoPreviousTag(t *testing.T) {
	got := Render(Classify(sampleCommits()[:1]), RenderOptions{
		Version: "0.1.0", Owner: "acme", Repo: "widget", Date: "2024-05-01",
	})

	if !strings.HasPrefix(got, "## 0.1.0 (2024-05-01)\n") {
		t.Errorf("expected bare heading, got %q", got)
	}
	if strings.Contains(got, "Full Changelog") {
		t.Errorf("expected no compare footer without a previous tag")
	}
}

func TestRender_Breaking(t *testing.T) {
	commits := []commitlog.Commit{
		commitlog.ParseCommit("feat(core)!: add widget (#42)", "", "BREAKING CHANGE: removes old API", "eee5555", "eee5555full"),
	}

	got := Render(Classify(commits), RenderOptions{Version: "2.0.0", Owner: "o", Repo: "r"})

	if !strings.Contains(got, "### ⚠ BREAKING CHANGES\n\n* **core:** removes old API ([eee5555](https://github.com/o/r/commit/eee5555full))\n") {
		t.Errorf("expected breaking changes block, got:\n%s", got)
	}
}

func TestRender_Idempotent(t *testing.T) {
	opts := RenderOptions{Version: "1.0.1", PreviousTag: "1.0.0", CurrentTag: "1.0.1", Owner: "o", Repo: "r", Date: "2024-01-02"}

	first := Render(Classify(sampleCommits()), opts)
	second := Render(Classify(sampleCommits()), opts)
	if first != second {
		t.Errorf("expected identical output for identical input")
	}
}

func TestTypes_MergeAndTitle(t *testing.T) {
	base := DefaultTypes()
	merged := base.Merge([]CommitType{
		{Type: "fix", Section: "Fixes"},
		{Type: "wip", Section: "Work In Progress"},
	})

	if base.Title("fix") != "🐛 Bug Fixes" {
		t.Errorf("expected base table to be unchanged, got %q", base.Title("fix"))
	}
	if merged.Title("fix") != "Fixes" {
		t.Errorf("expected override title, got %q", merged.Title("fix"))
	}
	if merged[2].Type != "fix" {
		t.Errorf("expected override in place, got %s at index 2", merged[2].Type)
	}
	if merged[len(merged)-1].Type != "wip" {
		t.Errorf("expected unknown type appended, got %s", merged[len(merged)-1].Type)
	}
	if merged.Title("unknown") != "unknown" {
		t.Errorf("expected raw type fallback, got %q", merged.Title("unknown"))
	}
}

func TestMerge(t *testing.T) {
	existing := "# Changelog\n\n## 1.0.0 (2024-01-01)\n\n* **feat**  odd  spacing kept\n"
	section := "## 1.1.0 (2024-02-01)\n\n* **fix** thing\n"

	got := Merge(existing, section)
	want := "# Changelog\n\n## 1.1.0 (2024-02-01)\n\n* **fix** thing\n\n## 1.0.0 (2024-01-01)\n\n* **feat**  odd  spacing kept\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}

	if got := Merge("", section); got != "# Changelog\n\n"+section {
		t.Errorf("expected new file content, got %q", got)
	}
}

func TestMerge_TitleWholeLine(t *testing.T) {
	section := "## 1.1.0 (2024-02-01)\n\n* **fix** thing\n"

	got := Merge("# Changelog of widget\n\nold notes\n", section)
	want := "# Changelog\n\n" + section + "\n# Changelog of widget\n\nold notes\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}

	got = Merge("# Changelog", section)
	if got != "# Changelog\n\n"+section {
		t.Errorf("expected title-only file to be replaced, got %q", got)
	}

	got = Merge("# Changelog\r\n\r\n## 1.0.0\r\n", section)
	if want := "# Changelog\n\n" + section + "\n## 1.0.0\r\n"; got != want {
		t.Errorf("Merge = %q, want %q", got, want)
	}
}

func TestUpdateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultInfile)

	if err := UpdateFile(path, "## 1.0.0\n"); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if err := UpdateFile(path, "## 1.0.1\n"); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read changelog: %v", err)
	}
	want := "# Changelog\n\n## 1.0.1\n\n## 1.0.0\n"
	if string(data) != want {
		t.Errorf("expected %q, got %q", want, string(data))
	}
}

type fakeHistory struct {
	tags    []string
	records []string
	gotRng  string
	gotPath string
}

func (f *fakeHistory) Tags(_ context.Context, _ string) ([]string, error) {
	return f.tags, nil
}

func (f *fakeHistory) Log(_ context.Context, rng, path string) ([]string, error) {
	f.gotRng = rng
	f.gotPath = path
	return f.records, nil
}

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name        string
		tags        []string
		isIncrement bool
		want        Range
	}{
		{"increment with tags", []string{"v1.1.0", "v1.0.0"}, true, Range{From: "v1.1.0", To: "HEAD"}},
		{"increment without tags", nil, true, Range{To: "HEAD"}},
		{"no increment", []string{"v1.1.0", "v1.0.0"}, false, Range{From: "v1.0.0", To: "v1.1.0"}},
		{"no increment single tag", []string{"v1.0.0"}, false, Range{To: "v1.0.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRange(context.Background(), &fakeHistory{tags: tt.tags}, tt.isIncrement, "*")
			if err != nil {
				t.Fatalf("ResolveRange failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	h := &fakeHistory{
		tags:    []string{"1.0.0"},
		records: []string{"abcdef0123\nabcdef0\nfeat: shiny\n"},
	}
	g := &Generator{History: h, Types: DefaultTypes()}

	res, err := g.Generate(context.Background(), Request{
		IsIncrement: true,
		Path:        "packages/a",
		Render:      RenderOptions{Version: "1.1.0", CurrentTag: "1.1.0", Owner: "o", Repo: "r", Date: "2024-03-03"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if h.gotRng != "1.0.0..HEAD" || h.gotPath != "packages/a" {
		t.Errorf("unexpected log call %q %q", h.gotRng, h.gotPath)
	}
	if res.PreviousTag != "1.0.0" {
		t.Errorf("expected previous tag 1.0.0, got %s", res.PreviousTag)
	}
	if !strings.HasPrefix(res.Text, "## [1.1.0](https://github.com/o/r/compare/1.0.0...1.1.0) (2024-03-03)") {
		t.Errorf("unexpected header: %q", res.Text)
	}
	if !strings.Contains(res.Text, "* **feat** shiny [abcdef0](https://github.com/o/r/commit/abcdef0123)") {
		t.Errorf("expected feat entry, got %q", res.Text)
	}
}
