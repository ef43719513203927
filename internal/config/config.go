package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dyluth/hive/internal/build"
	"github.com/dyluth/hive/internal/derive"
)

// FileName is the project configuration file looked up by default.
const FileName = "hive.yml"

// Defaults applied by Validate.
const (
	DefaultState       = "docs/hive_state.json"
	DefaultOutput      = "docs"
	DefaultLockTimeout = "10s"
	DefaultNotes       = build.DefaultNotes
)

// HiveConfig represents the top-level hive.yml configuration
type HiveConfig struct {
	Version string       `yaml:"version" validate:"required,eq=1"`
	State   string       `yaml:"state" validate:"required"`  // Canonical hive state document (read-only)
	Output  string       `yaml:"output" validate:"required"` // Directory receiving the JSON artifacts
	Feed    FeedConfig   `yaml:"feed"`
	Roster  RosterConfig `yaml:"roster"`
	Build   BuildConfig  `yaml:"build"`
	Site    SiteConfig   `yaml:"site"`
	Lock    LockConfig   `yaml:"lock"`
}

// FeedConfig controls feed ordering
type FeedConfig struct {
	Order string `yaml:"order,omitempty" validate:"omitempty,oneof=legacy strict"` // legacy (default) or strict
}

// RosterConfig controls the roster preview
type RosterConfig struct {
	Preview *int `yaml:"preview,omitempty" validate:"omitempty,min=0"` // Minions in rosterPreview (default 12)
}

// BuildConfig controls build.json
type BuildConfig struct {
	Notes string `yaml:"notes,omitempty"`
}

// SiteConfig names the external site generator run after artifacts are written
type SiteConfig struct {
	Command string `yaml:"command,omitempty"` // Empty skips site generation
}

// LockConfig controls the build lock over the output directory
type LockConfig struct {
	Timeout string `yaml:"timeout,omitempty"` // Go duration, default 10s
}

// Default returns a configuration with every default applied.
func Default() *HiveConfig {
	c := &HiveConfig{Version: "1"}
	c.applyDefaults()
	return c
}

func (c *HiveConfig) applyDefaults() {
	if c.State == "" {
		c.State = DefaultState
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Feed.Order == "" {
		c.Feed.Order = string(derive.FeedOrderLegacy)
	}
	if c.Roster.Preview == nil {
		preview := derive.DefaultPreviewSize
		c.Roster.Preview = &preview
	}
	if c.Build.Notes == "" {
		c.Build.Notes = DefaultNotes
	}
	if c.Lock.Timeout == "" {
		c.Lock.Timeout = DefaultLockTimeout
	}
}

// Validate applies defaults and performs strict validation on the configuration
func (c *HiveConfig) Validate() error {
	if c.Version != "1" {
		return fmt.Errorf("unsupported version: %s (expected: 1)", c.Version)
	}

	c.applyDefaults()

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid value for %s: %v (rule: %s)", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return err
	}

	timeout, err := time.ParseDuration(c.Lock.Timeout)
	if err != nil {
		return fmt.Errorf("lock.timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("lock.timeout must be positive, got %s", c.Lock.Timeout)
	}

	return nil
}

// LockTimeout returns the parsed lock timeout. Call after Validate.
func (c *HiveConfig) LockTimeout() time.Duration {
	d, err := time.ParseDuration(c.Lock.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// DeriveOptions returns the derivation settings. Call after Validate.
func (c *HiveConfig) DeriveOptions() derive.Options {
	opts := derive.DefaultOptions()
	opts.FeedOrder = derive.FeedOrder(c.Feed.Order)
	if c.Roster.Preview != nil {
		opts.PreviewSize = *c.Roster.Preview
	}
	return opts
}

// BuildOptions returns the build settings. Call after Validate.
func (c *HiveConfig) BuildOptions() build.Options {
	return build.Options{
		StatePath:   c.State,
		OutputDir:   c.Output,
		Derive:      c.DeriveOptions(),
		Notes:       c.Build.Notes,
		SiteCommand: c.Site.Command,
		LockTimeout: c.LockTimeout(),
	}
}

// Load reads and validates hive.yml from the specified path
func Load(path string) (*HiveConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config HiveConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise.
// Any other read or validation failure is returned.
func LoadOrDefault(path string) (*HiveConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}
