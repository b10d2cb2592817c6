package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is a release increment keyword.
type Kind string

const (
	Major      Kind = "major"
	Minor      Kind = "minor"
	Patch      Kind = "patch"
	PreMajor   Kind = "premajor"
	PreMinor   Kind = "preminor"
	PrePatch   Kind = "prepatch"
	PreRelease Kind = "prerelease"
)

// AsIs keeps the current version. Custom asks for a typed version.
const (
	AsIs   = "as-is"
	Custom = "custom"
)

// DefaultPreID is the pre-release identifier used when none is given.
const DefaultPreID = "beta"

// ParseKind reports whether s is an increment keyword.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Major, Minor, Patch, PreMajor, PreMinor, PrePatch, PreRelease:
		return k, true
	}
	return "", false
}

// Bump returns the next version for kind. Stable kinds applied to a
// pre-release promote it when possible, so 1.0.0-beta.1 patch is 1.0.0.
func (v *Version) Bump(kind Kind, preID string) (*Version, error) {
	next := &Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch, Prefix: v.Prefix}
	isPre := v.Prerelease != ""

	switch kind {
	case Major:
		if v.Minor != 0 || v.Patch != 0 || !isPre {
			next.Major++
		}
		next.Minor, next.Patch = 0, 0
	case Minor:
		if v.Patch != 0 || !isPre {
			next.Minor++
		}
		next.Patch = 0
	case Patch:
		if !isPre {
			next.Patch++
		}
	case PreMajor:
		next.Major++
		next.Minor, next.Patch = 0, 0
		next.Prerelease = firstPre(preID)
	case PreMinor:
		next.Minor++
		next.Patch = 0
		next.Prerelease = firstPre(preID)
	case PrePatch:
		next.Patch++
		next.Prerelease = firstPre(preID)
	case PreRelease:
		if !isPre {
			next.Patch++
			next.Prerelease = firstPre(preID)
			break
		}
		next.Prerelease = incPre(v.PreReleaseIDs(), preID)
	default:
		return nil, fmt.Errorf("unknown increment %q", kind)
	}

	return next, nil
}

func firstPre(preID string) string {
	if preID == "" {
		preID = DefaultPreID
	}
	return preID + ".0"
}

// incPre bumps the right-most numeric identifier. A different preID restarts
// the counter; identifiers without a number get ".0" appended.
func incPre(ids []string, preID string) string {
	if preID != "" && ids[0] != preID {
		return preID + ".0"
	}

	out := append([]string(nil), ids...)
	for i := len(out) - 1; i >= 0; i-- {
		if n, err := strconv.Atoi(out[i]); err == nil {
			out[i] = strconv.Itoa(n + 1)
			return strings.Join(out, ".")
		}
	}
	return strings.Join(append(out, "0"), ".")
}

// Inc is a string convenience around Parse and Bump.
func Inc(current string, kind Kind, preID string) (string, error) {
	v, err := Parse(current)
	if err != nil {
		return "", err
	}
	next, err := v.Bump(kind, preID)
	if err != nil {
		return "", err
	}
	return next.String(), nil
}

// CIVersion is the automatic patch bump used when prompting is not possible.
func CIVersion(current string) (string, error) {
	return Inc(current, Patch, "")
}

// Request describes how the next version should be chosen. Exactly one of the
// fields is normally set; Input is validated strictly.
type Request struct {
	Increment string // keyword, "as-is" or explicit version
	Input     string // custom version typed by the user
	PreID     string
}

// Resolution is a resolved next version with its pre-release facts.
type Resolution struct {
	Current        string
	Next           string
	FromPreRelease bool
	ToPreRelease   bool
	PreID          string
	PreBase        string
	IsIncrement    bool
}

// Resolve derives the next version. An unknown keyword or unparseable
// increment yields ErrUnresolved so that the caller can prompt; an invalid
// custom input yields ErrInvalidVersion.
func Resolve(current string, req Request) (Resolution, error) {
	if _, err := Parse(current); err != nil {
		return Resolution{}, fmt.Errorf("current version: %w", err)
	}

	var next string
	switch {
	case req.Input != "":
		if !IsValid(req.Input) {
			return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidVersion, req.Input)
		}
		next = req.Input
	case strings.TrimSpace(req.Increment) == "":
		return Resolution{}, ErrUnresolved
	case req.Increment == AsIs:
		next = current
	default:
		if kind, ok := ParseKind(req.Increment); ok {
			inc, err := Inc(current, kind, req.PreID)
			if err != nil {
				return Resolution{}, fmt.Errorf("%w: %v", ErrUnresolved, err)
			}
			next = inc
			break
		}
		if IsValid(req.Increment) {
			next = req.Increment
			break
		}
		// an explicit version with surrounding noise, e.g. "release-2.1"
		if !strings.ContainsAny(req.Increment, "0123456789") {
			return Resolution{}, ErrUnresolved
		}
		c, err := Coerce(req.Increment)
		if err != nil {
			return Resolution{}, ErrUnresolved
		}
		next = c.String()
	}

	return Describe(current, next)
}

// Describe fills the pre-release facts for a known next version.
func Describe(current, next string) (Resolution, error) {
	nv, err := Parse(next)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{
		Current:        current,
		Next:           nv.String(),
		FromPreRelease: IsPreRelease(current),
		ToPreRelease:   nv.Prerelease != "",
		IsIncrement:    IsIncrement(current, next),
	}
	if ids := nv.PreReleaseIDs(); len(ids) > 0 {
		res.PreID = ids[0]
		if len(ids) > 1 {
			res.PreBase = ids[1]
		}
	}
	return res, nil
}

// Choice is one option in the interactive version menu.
type Choice struct {
	Label string
	Value string // a version, AsIs or Custom
	Hint  string
}

// Choices lists the interactive version options. A pre-release current
// version offers "prerelease" first and no pre-bump kinds; as-is and custom
// are always last. The second result is the default selection.
func Choices(current string) ([]Choice, string, error) {
	v, err := Parse(current)
	if err != nil {
		return nil, "", err
	}

	inc := func(kind Kind, preID string) string {
		n, _ := v.Bump(kind, preID)
		return n.String()
	}

	fromPre := v.Prerelease != ""
	var choices []Choice
	if fromPre {
		pr := inc(PreRelease, "")
		choices = append(choices, Choice{Label: "Pre-Release", Value: pr, Hint: pr})
	}
	for _, k := range []struct {
		label string
		kind  Kind
	}{{"Patch", Patch}, {"Minor", Minor}, {"Major", Major}} {
		n := inc(k.kind, "")
		choices = append(choices, Choice{Label: k.label, Value: n, Hint: n})
	}
	if !fromPre {
		for _, k := range []struct {
			label string
			kind  Kind
		}{{"Pre-Patch", PrePatch}, {"Pre-Minor", PreMinor}, {"Pre-Major", PreMajor}} {
			n := inc(k.kind, DefaultPreID)
			choices = append(choices, Choice{Label: k.label, Value: n, Hint: n})
		}
	}
	choices = append(choices,
		Choice{Label: "As-Is", Value: AsIs, Hint: current},
		Choice{Label: "Custom", Value: Custom, Hint: "custom specified"},
	)

	return choices, choices[0].Value, nil
}

// Change marks whether a dot-separated component differs from the old one.
type Change struct {
	Part    string
	Changed bool
}

// Diff splits to on dots and marks the components that differ from from.
func Diff(from, to string) []Change {
	a := strings.Split(from, ".")
	b := strings.Split(to, ".")

	changes := make([]Change, len(b))
	for i, part := range b {
		changes[i] = Change{Part: part, Changed: i >= len(a) || a[i] != part}
	}
	return changes
}
