// Package config — .stringsync.yaml configuration file support.
//
// The file is optional; absent settings fall back to built-in defaults.
// The repos root can also be overridden through the STRINGSYNC_DIR
// environment variable, which takes precedence over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name, looked up in the user's config
// directory.
const FileName = ".stringsync.yaml"

// PolicyKeepLocal and PolicyTakeUpstream are the accepted merge_policy
// values.
const (
	PolicyKeepLocal    = "keep-local"
	PolicyTakeUpstream = "take-upstream"
)

// Config holds tool-level settings.
type Config struct {
	// ReposDir is the directory holding all repository roots.
	ReposDir string `yaml:"repos_dir,omitempty"`
	// MergePolicy is the default sync merge policy: "keep-local" (default)
	// or "take-upstream".
	MergePolicy string `yaml:"merge_policy,omitempty"`
	// CloneDepth limits clone history (default 1; 0 = full history).
	CloneDepth int `yaml:"clone_depth,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ReposDir:    defaultReposDir(),
		MergePolicy: PolicyKeepLocal,
		CloneDepth:  1,
	}
}

func defaultReposDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "repos"
	}
	return filepath.Join(home, ".local", "share", "stringsync", "repos")
}

// Load reads the configuration file from dir (typically the user's home
// directory), applying defaults for missing settings and the STRINGSYNC_DIR
// environment override.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", FileName, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	if cfg.ReposDir == "" {
		cfg.ReposDir = defaultReposDir()
	}
	if cfg.MergePolicy == "" {
		cfg.MergePolicy = PolicyKeepLocal
	}
	switch cfg.MergePolicy {
	case PolicyKeepLocal, PolicyTakeUpstream:
	default:
		return nil, fmt.Errorf("invalid merge_policy %q", cfg.MergePolicy)
	}

	if env := os.Getenv("STRINGSYNC_DIR"); env != "" {
		cfg.ReposDir = env
	}
	return cfg, nil
}
