package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxAge is the staleness threshold applied to resources that do not
// set max_age explicitly.
const DefaultMaxAge = 720 * time.Hour

// DefaultProbeTimeout bounds the remote reachability probe before a
// fast-forward attempt.
const DefaultProbeTimeout = 5 * time.Second

// Config represents the dotup.yaml configuration file.
type Config struct {
	Version   int           `yaml:"version"`
	Resources []Resource    `yaml:"resources"`
	Repo      RepoConfig    `yaml:"repo,omitempty"`
	Sync      SyncConfig    `yaml:"sync"`
	Profile   ProfileConfig `yaml:"profile,omitempty"`
}

// Resource defines a remote file to download into the home directory.
type Resource struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Dest   string   `yaml:"dest"`
	MaxAge Duration `yaml:"max_age,omitempty"`
}

// RepoConfig describes the local dotfiles checkout to fast-forward before
// syncing. An empty Path disables the update stage.
type RepoConfig struct {
	Path         string   `yaml:"path,omitempty"`
	Remote       string   `yaml:"remote,omitempty"`
	ProbeTimeout Duration `yaml:"probe_timeout,omitempty"`
}

// SyncConfig describes the dotfile tree copy from the checkout into the home
// directory.
type SyncConfig struct {
	Source  string   `yaml:"source"`
	Dest    string   `yaml:"dest"`
	Marker  string   `yaml:"marker,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// ProfileConfig lists the exact lines that must exist in the shell init file.
type ProfileConfig struct {
	File  string   `yaml:"file,omitempty"`
	Lines []string `yaml:"lines,omitempty"`
}

// Duration wraps time.Duration so it round-trips through YAML as a string
// like "720h" or "5s".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like '720h': %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration '%s': %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration '%s' must not be negative", raw)
	}
	*d = Duration(parsed)
	return nil
}
