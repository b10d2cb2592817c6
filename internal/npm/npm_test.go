package npm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubClient struct {
	Client
	published map[string]string
}

func (s *stubClient) PublishedVersion(_ context.Context, spec, _ string) (string, error) {
	return s.published[spec], nil
}

func TestIsOTPError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("npm ERR! code EOTP\nThis operation requires a one-time password."), true},
		{errors.New("OTP required"), true},
		{errors.New("E403 forbidden"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsOTPError(tt.err); got != tt.want {
			t.Errorf("IsOTPError(%v) = %v, expected %v", tt.err, got, tt.want)
		}
	}
}

func TestResolvePublishTag(t *testing.T) {
	client := &stubClient{published: map[string]string{"widget": "2.0.0"}}

	tests := []struct {
		name    string
		pkg     string
		version string
		want    string
	}{
		{"pre-release identifier", "widget", "2.1.0-beta.0", "beta"},
		{"numeric pre-release", "widget", "2.1.0-0", "next"},
		{"nothing published", "fresh", "1.0.0", "latest"},
		{"newer than active", "widget", "2.0.1", "latest"},
		{"older than active", "widget", "1.9.9", "previous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePublishTag(context.Background(), client, tt.pkg, tt.version, DefaultRegistry)
			if err != nil {
				t.Fatalf("ResolvePublishTag failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCLI_Publish(t *testing.T) {
	var gotDir string
	var gotArgs []string
	c := &CLI{Run: func(_ context.Context, dir string, args ...string) (string, error) {
		gotDir = dir
		gotArgs = args
		return "", nil
	}}

	err := c.Publish(context.Background(), PublishOptions{
		Dir: "packages/core", Tag: "beta", OTP: "123456", Args: []string{"--access", "public"}, DryRun: true,
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if gotDir != "packages/core" {
		t.Errorf("expected dir packages/core, got %s", gotDir)
	}
	want := []string{"publish", "--tag", "beta", "--otp", "123456", "--access", "public", "--dry-run"}
	if diff := cmp.Diff(want, gotArgs); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestCLI_Whoami(t *testing.T) {
	c := &CLI{Run: func(context.Context, string, ...string) (string, error) {
		return "", errors.New("npm whoami: exit status 1: npm ERR! code ENEEDAUTH")
	}}

	user, err := c.Whoami(context.Background(), DefaultRegistry)
	if err != nil || user != "" {
		t.Errorf("expected anonymous user without error, got %q %v", user, err)
	}
}

func TestCLI_HasWriteAccess(t *testing.T) {
	c := &CLI{Run: func(_ context.Context, _ string, args ...string) (string, error) {
		if !strings.Contains(strings.Join(args, " "), "collaborators widget alice") {
			t.Errorf("unexpected args %v", args)
		}
		return `{"alice": "read-write"}`, nil
	}}

	ok, err := c.HasWriteAccess(context.Background(), "widget", "alice", DefaultRegistry)
	if err != nil {
		t.Fatalf("HasWriteAccess failed: %v", err)
	}
	if !ok {
		t.Error("expected write access")
	}
}

func TestCLI_PublishedVersionNotFound(t *testing.T) {
	c := &CLI{Run: func(context.Context, string, ...string) (string, error) {
		return "", errors.New("npm view: exit status 1: npm ERR! code E404")
	}}

	v, err := c.PublishedVersion(context.Background(), "nope@latest", DefaultRegistry)
	if err != nil || v != "" {
		t.Errorf("expected empty version without error, got %q %v", v, err)
	}
}
