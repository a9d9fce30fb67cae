// Package config loads the optional .bless.yaml project configuration from
// the repository root. Absent file means defaults; unknown keys are errors so
// a typo never silently disables a setting.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SonOfLilit/bless/pkg/engine"
	"github.com/SonOfLilit/bless/pkg/manifest"
)

// FileName is the conventional config filename at the repository root.
const FileName = ".bless.yaml"

// Duration wraps time.Duration with YAML string parsing ("30s", "2m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the project configuration surface.
type Config struct {
	// SnapshotDir holds snapshot files, relative to the repository root.
	SnapshotDir string `yaml:"snapshot_dir"`
	// ManifestSuffix selects manifest files during discovery.
	ManifestSuffix string `yaml:"manifest_suffix"`
	// Workers bounds parallel case execution; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// Timeout limits one harness invocation; 0 means no limit.
	Timeout Duration `yaml:"timeout"`
	// MissingBaseline is "fail" (default) or "pending".
	MissingBaseline engine.MissingPolicy `yaml:"missing_baseline"`
}

// Default returns the configuration used when no .bless.yaml exists.
func Default() *Config {
	return &Config{
		SnapshotDir:     "blessed",
		ManifestSuffix:  manifest.DefaultSuffix,
		MissingBaseline: engine.MissingFail,
	}
}

// Load reads and strictly decodes a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes config bytes, filling unset fields with defaults.
func Parse(data []byte, source string) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	defaults := Default()
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = defaults.SnapshotDir
	}
	if cfg.ManifestSuffix == "" {
		cfg.ManifestSuffix = defaults.ManifestSuffix
	}
	if cfg.MissingBaseline == "" {
		cfg.MissingBaseline = defaults.MissingBaseline
	}
	switch cfg.MissingBaseline {
	case engine.MissingFail, engine.MissingPending:
	default:
		return nil, fmt.Errorf("parse %s: missing_baseline must be %q or %q, got %q",
			source, engine.MissingFail, engine.MissingPending, cfg.MissingBaseline)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("parse %s: workers must not be negative", source)
	}
	return cfg, nil
}

// LoadFromRoot reads .bless.yaml under root, returning defaults when the file
// does not exist.
func LoadFromRoot(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
