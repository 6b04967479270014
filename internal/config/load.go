package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads, validates and normalizes a dotup.yaml configuration file.
// Paths starting with "~" are expanded to the user home directory, defaults
// are applied, and all validation problems are reported at once.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg, path)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if err := expandPaths(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config, configPath string) {
	for i := range cfg.Resources {
		if cfg.Resources[i].MaxAge == 0 {
			cfg.Resources[i].MaxAge = Duration(DefaultMaxAge)
		}
	}
	if cfg.Repo.Path != "" {
		if cfg.Repo.Remote == "" {
			cfg.Repo.Remote = "origin"
		}
		if cfg.Repo.ProbeTimeout == 0 {
			cfg.Repo.ProbeTimeout = Duration(DefaultProbeTimeout)
		}
	}
	if cfg.Sync.Marker == "" {
		cfg.Sync.Marker = filepath.Base(configPath)
	}
}

func expandPaths(cfg *Config) error {
	var err error
	for i := range cfg.Resources {
		if cfg.Resources[i].Dest, err = ExpandHome(cfg.Resources[i].Dest); err != nil {
			return err
		}
	}
	if cfg.Sync.Dest, err = ExpandHome(cfg.Sync.Dest); err != nil {
		return err
	}
	if cfg.Profile.File, err = ExpandHome(cfg.Profile.File); err != nil {
		return err
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory for '%s': %w", path, err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", cfg.Version))
	}

	names := make(map[string]bool)
	for i, res := range cfg.Resources {
		prefix := fmt.Sprintf("resource[%d]", i)
		if res.Name != "" {
			prefix = fmt.Sprintf("resource '%s'", res.Name)
		}

		if res.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: 'name' is required", prefix))
		} else if names[res.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate resource name '%s'", prefix, res.Name))
		} else {
			names[res.Name] = true
		}

		if res.URL == "" {
			errs = append(errs, fmt.Sprintf("%s: 'url' is required", prefix))
		} else if u, err := url.Parse(res.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("%s: 'url' must be an http(s) URL, got '%s'", prefix, res.URL))
		}

		if res.Dest == "" {
			errs = append(errs, fmt.Sprintf("%s: 'dest' is required", prefix))
		}
	}

	if cfg.Sync.Source == "" {
		errs = append(errs, "sync: 'source' is required")
	}
	if cfg.Sync.Dest == "" {
		errs = append(errs, "sync: 'dest' is required")
	}

	if len(cfg.Profile.Lines) > 0 && cfg.Profile.File == "" {
		errs = append(errs, "profile: 'file' is required when 'lines' are configured")
	}
	for i, line := range cfg.Profile.Lines {
		if strings.TrimSpace(line) == "" {
			errs = append(errs, fmt.Sprintf("profile line[%d]: must not be blank", i))
		}
		if strings.ContainsRune(line, '\n') {
			errs = append(errs, fmt.Sprintf("profile line[%d]: must be a single line", i))
		}
	}

	return errs
}
