// Package npm talks to the npm registry through the npm CLI.
package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/grokify/releaseconductor/internal/version"
)

// DefaultRegistry is used when package.json has no publishConfig.registry.
const DefaultRegistry = "https://registry.npmjs.org"

// Dist-tags chosen by ResolvePublishTag.
const (
	TagLatest   = "latest"
	TagNext     = "next"
	TagPrevious = "previous"
)

var otpPattern = regexp.MustCompile(`(?i)one-time password|otp`)

// IsOTPError reports whether err asks for a one-time password.
func IsOTPError(err error) bool {
	return err != nil && otpPattern.MatchString(err.Error())
}

// PublishOptions describe one npm publish call.
type PublishOptions struct {
	Dir    string
	Tag    string
	OTP    string
	Args   []string
	DryRun bool
}

// Client is the set of npm operations a release needs.
type Client interface {
	Ping(ctx context.Context, registry string) error
	// Whoami returns the authenticated user, or "" when not logged in.
	Whoami(ctx context.Context, registry string) (string, error)
	// PublishedVersion returns the version behind a "name" or "name@tag"
	// spec, or "" when nothing is published.
	PublishedVersion(ctx context.Context, spec, registry string) (string, error)
	HasWriteAccess(ctx context.Context, pkg, user, registry string) (bool, error)
	BumpVersion(ctx context.Context, dir, version string) error
	Publish(ctx context.Context, opts PublishOptions) error
}

// RunFunc executes npm with args in dir and returns trimmed stdout.
type RunFunc func(ctx context.Context, dir string, args ...string) (string, error)

// CLI implements Client with the npm binary.
type CLI struct {
	Run    RunFunc
	Logger *zap.Logger
}

// NewCLI creates a CLI client.
func NewCLI(logger *zap.Logger) *CLI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLI{Run: runNpm, Logger: logger}
}

func runNpm(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "npm", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("npm %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("npm %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *CLI) npm(ctx context.Context, dir string, args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("npm", zap.Strings("args", args), zap.String("dir", dir))
	}
	return c.Run(ctx, dir, args...)
}

// Ping checks that the registry answers.
func (c *CLI) Ping(ctx context.Context, registry string) error {
	_, err := c.npm(ctx, "", "ping", "--registry", registry)
	return err
}

// Whoami returns "" without an error when the user is not logged in.
func (c *CLI) Whoami(ctx context.Context, registry string) (string, error) {
	out, err := c.npm(ctx, "", "whoami", "--registry", registry)
	if err != nil {
		if strings.Contains(err.Error(), "ENEEDAUTH") || strings.Contains(err.Error(), "E401") {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// PublishedVersion returns "" for unknown packages or tags.
func (c *CLI) PublishedVersion(ctx context.Context, spec, registry string) (string, error) {
	out, err := c.npm(ctx, "", "view", spec, "version", "--registry", registry)
	if err != nil {
		if strings.Contains(err.Error(), "E404") {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// HasWriteAccess checks the collaborator list of pkg for user.
func (c *CLI) HasWriteAccess(ctx context.Context, pkg, user, registry string) (bool, error) {
	out, err := c.npm(ctx, "", "access", "list", "collaborators", pkg, user, "--json", "--registry", registry)
	if err != nil {
		return false, err
	}
	if out == "" {
		return false, nil
	}

	var perms map[string]string
	if err := json.Unmarshal([]byte(out), &perms); err != nil {
		return false, fmt.Errorf("failed to parse npm access output: %w", err)
	}
	return perms[user] == "read-write", nil
}

// BumpVersion writes version into the package.json in dir without touching git.
func (c *CLI) BumpVersion(ctx context.Context, dir, v string) error {
	_, err := c.npm(ctx, dir, "version", v, "--no-git-tag-version", "--allow-same-version")
	return err
}

// Publish publishes the package in opts.Dir.
func (c *CLI) Publish(ctx context.Context, opts PublishOptions) error {
	args := []string{"publish"}
	if opts.Tag != "" {
		args = append(args, "--tag", opts.Tag)
	}
	if opts.OTP != "" {
		args = append(args, "--otp", opts.OTP)
	}
	args = append(args, opts.Args...)
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	_, err := c.npm(ctx, opts.Dir, args...)
	return err
}

// ResolvePublishTag picks the dist-tag for publishing v. Pre-releases use
// their identifier, or "next". A version older than the active "latest" is
// published as "previous".
func ResolvePublishTag(ctx context.Context, client Client, name, v, registry string) (string, error) {
	if version.IsPreRelease(v) {
		res, err := version.Describe(v, v)
		// a numeric identifier is not a usable dist-tag
		if _, numErr := strconv.Atoi(res.PreID); err == nil && res.PreID != "" && numErr != nil {
			return res.PreID, nil
		}
		return TagNext, nil
	}

	active, err := client.PublishedVersion(ctx, name, registry)
	if err != nil {
		return "", fmt.Errorf("failed to read published version of %s: %w", name, err)
	}
	if active == "" {
		return TagLatest, nil
	}
	if version.Compare(v, active) < 0 {
		return TagPrevious, nil
	}
	return TagLatest, nil
}
