package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames are the config file names searched in the working directory, in
// order. JSON files are read with the YAML decoder.
var FileNames = []string{
	"release.config.yaml",
	"release.config.yml",
	"release.config.json",
}

// ErrConfigExists is returned by WriteScaffold when a config file is present
// and overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

// Find returns the first config file present in dir, or "".
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads the config file in dir. It returns an empty config and an empty
// path when there is none.
func Load(dir string) (*UserConfig, string, error) {
	path := Find(dir)
	if path == "" {
		return &UserConfig{}, "", nil
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFromFile loads a user config from a YAML or JSON file.
func LoadFromFile(path string) (*UserConfig, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", cleanPath, err)
	}
	return cfg, nil
}

// LoadFromBytes loads a user config from YAML or JSON bytes.
func LoadFromBytes(data []byte) (*UserConfig, error) {
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Scaffold returns the starter config written by the init command.
func Scaffold(monorepo bool) ([]byte, error) {
	ask := Ask()
	commitMessage := DefaultCommitMessage
	tagName := DefaultTagName
	releaseName := DefaultReleaseName
	tokenRef := DefaultTokenRef

	cfg := UserConfig{
		Git: &UserGitConfig{
			Commit:        &ask,
			Tag:           &ask,
			Push:          &ask,
			CommitMessage: &commitMessage,
			TagName:       &tagName,
		},
		Npm: &UserNpmConfig{Publish: &ask},
		GitHub: &UserGitHubConfig{
			Release:     &ask,
			ReleaseName: &releaseName,
			TokenRef:    &tokenRef,
		},
		Hooks: map[HookKey]Hook{
			BeforeBump: Commands("npm test"),
		},
	}

	if monorepo {
		enabled := true
		packageDir := DefaultPackageDir
		tagTemplate := DefaultTagTemplate
		tagPrefix := DefaultTagPrefix
		cfg.Monorepo = &UserMonorepoConfig{
			Enabled:    &enabled,
			Packages:   []string{},
			PackageDir: &packageDir,
			TagName:    &tagTemplate,
			TagPrefix:  &tagPrefix,
		}
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// WriteScaffold writes the starter config into dir and returns its path.
func WriteScaffold(dir string, monorepo, force bool) (string, error) {
	if existing := Find(dir); existing != "" && !force {
		return existing, fmt.Errorf("%w: %s", ErrConfigExists, existing)
	}

	data, err := Scaffold(monorepo)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileNames[0])
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
