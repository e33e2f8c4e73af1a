// Package config loads the optional .vtree/config.yaml file that tunes tree
// behaviour for the vtree binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/vtree/pkg/types"
)

// Config represents a .vtree/config.yaml file.
type Config struct {
	Tree      TreeConfig      `yaml:"tree,omitempty"`
	Pool      PoolConfig      `yaml:"pool,omitempty"`
	Drop      DropConfig      `yaml:"drop,omitempty"`
	Selection SelectionConfig `yaml:"selection,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
}

// TreeConfig controls row store and child loading.
type TreeConfig struct {
	ShowRoot bool `yaml:"show_root,omitempty"`
	// ReleaseOnCollapse destroys descendant rows on collapse. Defaults to true.
	ReleaseOnCollapse *bool `yaml:"release_on_collapse,omitempty"`
	// DefaultChildPolicy is "normal", "auto-expand" or "load-on-expand".
	DefaultChildPolicy string `yaml:"default_child_policy,omitempty"`
	RowHeaders         bool   `yaml:"row_headers,omitempty"`
	// Placeholder is shown in cells whose data callback failed.
	Placeholder string `yaml:"placeholder,omitempty"`
}

// PoolConfig tunes the widget pool.
type PoolConfig struct {
	// Prewarm is the number of rows whose widgets are built up front for
	// the default binding.
	Prewarm int `yaml:"prewarm,omitempty"`
}

// DropConfig controls drop location resolution.
type DropConfig struct {
	AllowEmptySpace bool `yaml:"allow_empty_space,omitempty"`
	// EdgeBand is the fraction of row height at each edge that resolves to
	// Above/Below when OnRow is also allowed. Must be in (0, 0.5].
	EdgeBand float64 `yaml:"edge_band,omitempty"`
}

// SelectionConfig controls the selection coordinator.
type SelectionConfig struct {
	MultiSelect *bool `yaml:"multi_select,omitempty"`
	// WarnThreshold logs a warning for changes spanning more rows. 0 disables.
	WarnThreshold int `yaml:"warn_threshold,omitempty"`
}

// LogConfig mirrors logger.Options.
type LogConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
	Level   string `yaml:"level,omitempty"`
}

// DefaultEdgeBand is used when drop.edge_band is unset.
const DefaultEdgeBand = 0.25

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing vtree config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vtree config: %w", err)
	}
	return &cfg, nil
}

// LoadOptional loads the config found from dir upwards, or the defaults when
// there is none.
func LoadOptional(dir string) (*Config, error) {
	path, err := Find(dir)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Find searches for .vtree/config.yaml starting from dir and walking up.
func Find(dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	for {
		candidate := filepath.Join(dir, ".vtree", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

func (c *Config) applyDefaults() {
	if c.Tree.ReleaseOnCollapse == nil {
		v := true
		c.Tree.ReleaseOnCollapse = &v
	}
	if c.Tree.Placeholder == "" {
		c.Tree.Placeholder = "<unavailable>"
	}
	if c.Drop.EdgeBand == 0 {
		c.Drop.EdgeBand = DefaultEdgeBand
	}
	if c.Selection.MultiSelect == nil {
		v := true
		c.Selection.MultiSelect = &v
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := types.ParseChildPolicy(c.Tree.DefaultChildPolicy); err != nil {
		return err
	}
	if c.Drop.EdgeBand <= 0 || c.Drop.EdgeBand > 0.5 {
		return &types.Error{Kind: types.ErrKindConfig, Msg: fmt.Sprintf("drop.edge_band %v outside (0, 0.5]", c.Drop.EdgeBand)}
	}
	if c.Pool.Prewarm < 0 {
		return &types.Error{Kind: types.ErrKindConfig, Msg: "pool.prewarm must not be negative"}
	}
	if c.Selection.WarnThreshold < 0 {
		return &types.Error{Kind: types.ErrKindConfig, Msg: "selection.warn_threshold must not be negative"}
	}
	return nil
}

// ChildPolicy returns the parsed default child policy.
func (c *Config) ChildPolicy() types.ChildPolicy {
	p, _ := types.ParseChildPolicy(c.Tree.DefaultChildPolicy)
	return p
}

// ReleaseOnCollapse reports the effective tree.release_on_collapse.
func (c *Config) ReleaseOnCollapse() bool {
	return c.Tree.ReleaseOnCollapse == nil || *c.Tree.ReleaseOnCollapse
}

// MultiSelect reports the effective selection.multi_select.
func (c *Config) MultiSelect() bool {
	return c.Selection.MultiSelect == nil || *c.Selection.MultiSelect
}
