package release

import (
	"errors"
	"fmt"
)

// Stage names, in execution order.
const (
	StageCheck     = "check"
	StageBump      = "bump"
	StageChangelog = "changelog"
	StageGit       = "git"
	StageNpm       = "npm"
	StageGitHub    = "github"
	StageRollback  = "rollback"
)

var (
	// ErrMonorepoPackage is returned in CI when a monorepo run has no
	// --package.
	ErrMonorepoPackage = errors.New(`CI mode requires a target package in monorepo. Please specify it via "--package <pkg>"`)

	// ErrNoPackages is returned when a monorepo lists no packages.
	ErrNoPackages = errors.New(`Monorepo detected, but no packages found. Please configure "monorepo.packages"`)

	// errStop ends a print-only run (--show-release, --show-changelog)
	// successfully.
	errStop = errors.New("stop")
)

// StageError reports the stage whose action failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func gitErr(format string, args ...any) error {
	return fmt.Errorf("[git] "+format, args...)
}

func npmErr(format string, args ...any) error {
	return fmt.Errorf("[npm] "+format, args...)
}

func githubErr(format string, args ...any) error {
	return fmt.Errorf("[github] "+format, args...)
}
