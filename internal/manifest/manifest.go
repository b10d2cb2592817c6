// Package manifest reads the package.json of a package directory.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the manifest file name.
const FileName = "package.json"

// ErrNoVersion is returned when the manifest has no version field.
var ErrNoVersion = errors.New("package.json has no version")

// PublishConfig is the publishConfig block of package.json.
type PublishConfig struct {
	Access   string `json:"access,omitempty"`
	Registry string `json:"registry,omitempty"`
}

// Package holds the manifest fields a release needs.
type Package struct {
	Name          string        `json:"name"`
	Version       string        `json:"version"`
	Private       bool          `json:"private,omitempty"`
	PublishConfig PublishConfig `json:"publishConfig,omitempty"`

	Dir  string `json:"-"`
	Path string `json:"-"`
}

// Read loads dir/package.json.
func Read(dir string) (*Package, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	pkg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	pkg.Dir = dir
	pkg.Path = path
	return pkg, nil
}

// Parse decodes package.json content.
func Parse(data []byte) (*Package, error) {
	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	if pkg.Version == "" {
		return nil, ErrNoVersion
	}
	return &pkg, nil
}
