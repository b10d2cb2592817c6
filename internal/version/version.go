// Package version parses, compares and bumps semantic versions the way npm
// packages use them.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// ErrInvalidVersion is returned for input that is not a semantic version.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrUnresolved means no next version could be derived from the request.
	ErrUnresolved = errors.New("next version could not be resolved")
)

var (
	strictPattern = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)
	coercePattern = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?`)
)

// Version represents a semantic version.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
	Prefix     string // "v" or empty
}

// IsValid reports whether s is a complete semantic version.
func IsValid(s string) bool {
	if !strictPattern.MatchString(s) {
		return false
	}
	return semver.IsValid(canonical(s))
}

// Parse parses a complete semantic version.
func Parse(s string) (*Version, error) {
	s = strings.TrimSpace(s)
	if !IsValid(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	v := &Version{}
	if strings.HasPrefix(s, "v") {
		v.Prefix = "v"
		s = strings.TrimPrefix(s, "v")
	}

	if idx := strings.Index(s, "+"); idx >= 0 {
		v.Build = s[idx+1:]
		s = s[:idx]
	}
	if idx := strings.Index(s, "-"); idx >= 0 {
		v.Prerelease = s[idx+1:]
		s = s[:idx]
	}

	parts := strings.Split(s, ".")
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: component %q", ErrInvalidVersion, p)
		}
		nums[i] = n
	}
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]

	return v, nil
}

// Coerce extracts the first "X[.Y[.Z]]" run from free text, e.g. "v2" or
// "release-1.4". Pre-release and build data are dropped.
func Coerce(s string) (*Version, error) {
	m := coercePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	v := &Version{}
	for i, dst := range []*int{&v.Major, &v.Minor, &v.Patch} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		*dst = n
	}
	return v, nil
}

// String returns the version as a string.
func (v *Version) String() string {
	s := fmt.Sprintf("%s%d.%d.%d", v.Prefix, v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// PreReleaseIDs returns the dot-separated pre-release identifiers.
func (v *Version) PreReleaseIDs() []string {
	if v.Prerelease == "" {
		return nil
	}
	return strings.Split(v.Prerelease, ".")
}

// Compare compares two versions.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v *Version) Compare(other *Version) int {
	return semver.Compare(canonical(v.String()), canonical(other.String()))
}

// Compare orders two version strings. Invalid versions sort before valid ones.
func Compare(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// IsPreRelease reports whether s is a valid version with a pre-release part.
func IsPreRelease(s string) bool {
	return IsValid(s) && semver.Prerelease(canonical(s)) != ""
}

// IsIncrement reports whether next sorts strictly after current. Equal
// versions are not an increment.
func IsIncrement(current, next string) bool {
	return Compare(next, current) > 0
}

func canonical(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return s
}
