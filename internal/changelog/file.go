package changelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Title is the fixed top-level heading of a changelog file.
const Title = "# Changelog"

// DefaultInfile is the changelog file name inside a package directory.
const DefaultInfile = "CHANGELOG.md"

// Merge prepends section below the changelog title. Everything that was below
// the title is kept byte for byte.
func Merge(existing, section string) string {
	section = strings.TrimRight(section, "\n") + "\n"

	rest := existing
	first, _, _ := strings.Cut(rest, "\n")
	if strings.TrimRight(first, "\r") == Title {
		rest = strings.TrimPrefix(rest, Title)
		rest = strings.TrimLeft(rest, "\r\n")
	}

	if strings.TrimSpace(rest) == "" {
		return Title + "\n\n" + section
	}
	return Title + "\n\n" + section + "\n" + rest
}

// UpdateFile merges section into the changelog at path, creating the file
// when it does not exist.
func UpdateFile(path, section string) error {
	path = filepath.Clean(path)

	existing, err := os.ReadFile(path) // #nosec G304 -- path comes from release config
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read changelog: %w", err)
	}

	if err := os.WriteFile(path, []byte(Merge(string(existing), section)), 0o644); err != nil { // #nosec G306
		return fmt.Errorf("failed to write changelog: %w", err)
	}
	return nil
}
