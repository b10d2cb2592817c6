package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/grokify/releaseconductor/internal/gitcmd"
	"github.com/grokify/releaseconductor/internal/npm"
	"github.com/grokify/releaseconductor/internal/prompt"
	"github.com/grokify/releaseconductor/pkg/model"
)

// snapshot reads every file below dir.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to snapshot %s: %v", dir, err)
	}
	return files
}

// treeHash hashes the files below dir.
func treeHash(t *testing.T, dir string) string {
	t.Helper()
	files := snapshot(t, dir)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name + "\x00" + files[name] + "\x00"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// fakeGit models a repository whose working tree is a real directory.
// Commits snapshot the tree; reset --hard writes a snapshot back.
type fakeGit struct {
	t   *testing.T
	dir string

	notRepo   bool
	dirty     bool
	remoteURL string
	tags      []string
	records   []string
	failOn    map[string]error

	calls [][]string // every git call, in order
	heads []map[string]string
}

var _ gitcmd.Git = (*fakeGit)(nil)

func newFakeGit(t *testing.T, dir string) *fakeGit {
	return &fakeGit{
		t:         t,
		dir:       dir,
		remoteURL: "git@github.com:acme/widget.git",
		tags:      []string{"1.2.3", "1.2.2"},
		records: []string{
			"1111111111\n1111111\nfeat(core): add widget (#42)\n",
			"2222222222\n2222222\nfix: handle nil config\n",
		},
		failOn: map[string]error{},
		heads:  []map[string]string{snapshot(t, dir)},
	}
}

func (f *fakeGit) call(args ...string) error {
	f.calls = append(f.calls, args)
	return f.failOn[args[0]]
}

// called reports whether a git command with this name ran.
func (f *fakeGit) called(name string) bool {
	for _, c := range f.calls {
		if c[0] == name {
			return true
		}
	}
	return false
}

func (f *fakeGit) argsOf(name string) [][]string {
	var out [][]string
	for _, c := range f.calls {
		if c[0] == name {
			out = append(out, c[1:])
		}
	}
	return out
}

func isDryRun(args []string) bool {
	return slices.Contains(args, gitcmd.DryRunFlag)
}

func (f *fakeGit) IsRepo(context.Context) bool { return !f.notRepo }

func (f *fakeGit) IsClean(context.Context) (bool, error) { return !f.dirty, nil }

func (f *fakeGit) Remote(context.Context) (string, string, error) {
	if f.remoteURL == "" {
		return "", "", nil
	}
	return "origin", f.remoteURL, nil
}

func (f *fakeGit) Remotes(context.Context) ([]string, error) { return []string{"origin"}, nil }

func (f *fakeGit) CurrentBranch(context.Context) (string, error) { return "main", nil }

func (f *fakeGit) Add(_ context.Context, all bool, args []string) error {
	if all {
		return f.call(append([]string{"add", "-A"}, args...)...)
	}
	return f.call(append([]string{"add", "-u"}, args...)...)
}

func (f *fakeGit) Commit(_ context.Context, message string, args []string) error {
	if err := f.call(append([]string{"commit", "-m", message}, args...)...); err != nil {
		return err
	}
	if !isDryRun(args) {
		f.heads = append(f.heads, snapshot(f.t, f.dir))
	}
	return nil
}

func (f *fakeGit) TagAnnotated(_ context.Context, tag, message string, args []string) error {
	if err := f.call(append([]string{"tag", "-a", tag, "-m", message}, args...)...); err != nil {
		return err
	}
	if !isDryRun(args) {
		f.tags = append([]string{tag}, f.tags...)
	}
	return nil
}

// PushTag fails like git does when the tag does not exist locally.
func (f *fakeGit) PushTag(_ context.Context, remote, tag string, args []string) error {
	if err := f.call(append([]string{"push", remote, "tag", tag}, args...)...); err != nil {
		return err
	}
	if !slices.Contains(f.tags, tag) {
		return fmt.Errorf("src refspec refs/tags/%s does not match any", tag)
	}
	return nil
}

func (f *fakeGit) PushBranch(_ context.Context, remote, branch string, args []string) error {
	return f.call(append([]string{"push", remote, branch}, args...)...)
}

func (f *fakeGit) Tags(context.Context, string) ([]string, error) { return f.tags, nil }

func (f *fakeGit) Log(context.Context, string, string) ([]string, error) { return f.records, nil }

func (f *fakeGit) Status(context.Context) (string, error) { return "", nil }

func (f *fakeGit) Restore(context.Context) error { return f.call("restore", ".") }

func (f *fakeGit) DeleteTag(_ context.Context, tag string) error {
	f.tags = slices.DeleteFunc(f.tags, func(s string) bool { return s == tag })
	return f.call("tag", "--delete", tag)
}

func (f *fakeGit) ResetHard(_ context.Context, ref string) error {
	if err := f.call("reset", "--hard", ref); err != nil {
		return err
	}
	if ref == "HEAD~1" && len(f.heads) > 1 {
		f.heads = f.heads[:len(f.heads)-1]
	}
	head := f.heads[len(f.heads)-1]

	current := snapshot(f.t, f.dir)
	for name := range current {
		if _, ok := head[name]; !ok {
			if err := os.Remove(filepath.Join(f.dir, name)); err != nil {
				return err
			}
		}
	}
	for name, content := range head {
		if err := os.WriteFile(filepath.Join(f.dir, name), []byte(content), 0o600); err != nil {
			return err
		}
	}
	return nil
}

// fakeNpm rewrites package.json on bump and fails publishes from a queue.
type fakeNpm struct {
	mu          sync.Mutex
	user        string
	pingErr     error
	published   map[string]string
	publishErrs []error
	publishes   []npm.PublishOptions
	bumps       []string
}

var _ npm.Client = (*fakeNpm)(nil)

func (f *fakeNpm) Ping(context.Context, string) error { return f.pingErr }

func (f *fakeNpm) Whoami(context.Context, string) (string, error) { return f.user, nil }

func (f *fakeNpm) PublishedVersion(_ context.Context, spec, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.published[spec], nil
}

func (f *fakeNpm) HasWriteAccess(context.Context, string, string, string) (bool, error) {
	return true, nil
}

func (f *fakeNpm) BumpVersion(_ context.Context, dir, version string) error {
	f.bumps = append(f.bumps, version)
	path := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return err
	}
	pkg["version"] = version
	out, err := json.Marshal(pkg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func (f *fakeNpm) Publish(_ context.Context, opts npm.PublishOptions) error {
	f.publishes = append(f.publishes, opts)
	if len(f.publishErrs) == 0 {
		return nil
	}
	err := f.publishErrs[0]
	f.publishErrs = f.publishErrs[1:]
	return err
}

var errOTP = errors.New("npm ERR! code EOTP\nThis operation requires a one-time password from your authenticator.")

// fakeReleaser records created releases.
type fakeReleaser struct {
	user     string
	denied   bool
	created  []*model.ReleaseRequest
	existing *model.Release
}

func (f *fakeReleaser) AuthenticatedUser(context.Context) (string, error) { return f.user, nil }

func (f *fakeReleaser) IsCollaborator(context.Context, model.RepoRef, string) (bool, error) {
	return !f.denied, nil
}

func (f *fakeReleaser) GetReleaseByTag(context.Context, model.RepoRef, string) (*model.Release, error) {
	return f.existing, nil
}

func (f *fakeReleaser) CreateRelease(_ context.Context, req *model.ReleaseRequest) (*model.Release, error) {
	f.created = append(f.created, req)
	return &model.Release{
		ID:      99,
		TagName: req.TagName,
		HTMLURL: "https://github.com/" + req.Repo.FullName() + "/releases/tag/" + req.TagName,
	}, nil
}

func (f *fakeReleaser) UpdateRelease(_ context.Context, id int64, req *model.ReleaseRequest) (*model.Release, error) {
	return &model.Release{ID: id, TagName: req.TagName}, nil
}

func (f *fakeReleaser) UploadAsset(_ context.Context, _ model.RepoRef, _ int64, path string) (*model.Asset, error) {
	return &model.Asset{Name: filepath.Base(path)}, nil
}

// fakePrompter answers every confirm with confirm and every input from
// inputs. cancel makes every prompt abort.
type fakePrompter struct {
	confirm bool
	selects []string
	inputs  []string
	cancel  bool

	confirms []string
	asked    int
}

func (f *fakePrompter) Confirm(title string, _ bool) (bool, error) {
	f.asked++
	f.confirms = append(f.confirms, title)
	if f.cancel {
		return false, prompt.ErrCancelled
	}
	return f.confirm, nil
}

func (f *fakePrompter) Select(_ string, options []prompt.Option, initial string) (string, error) {
	f.asked++
	if f.cancel {
		return "", prompt.ErrCancelled
	}
	if len(f.selects) == 0 {
		return initial, nil
	}
	v := f.selects[0]
	f.selects = f.selects[1:]
	return v, nil
}

func (f *fakePrompter) Input(_ string, initial string, validate prompt.ValidateFunc) (string, error) {
	f.asked++
	if f.cancel {
		return "", prompt.ErrCancelled
	}
	if len(f.inputs) == 0 {
		return initial, nil
	}
	v := f.inputs[0]
	f.inputs = f.inputs[1:]
	if validate != nil {
		if err := validate(v); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(v), nil
}

type fakeBrowser struct {
	urls []string
}

func (f *fakeBrowser) Browse(url string) error {
	f.urls = append(f.urls, url)
	return nil
}
