// Package buildcfg loads the YAML configuration documents that drive
// the offline compiler and the query engine, the way the teacher
// project configures generation runs: a typed struct with yaml tags,
// defaults filled in after decode, and a thin validation pass.
package buildcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BuildConfig configures one offline compiler run (component C7's
// caller).
type BuildConfig struct {
	OutputPath      string `yaml:"output_path"`
	LandmarkCount   int    `yaml:"landmark_count"`
	WalkScale       float32 `yaml:"walk_scale"`
	IncludeGlobals  bool   `yaml:"include_globals"`
}

// QueryProfile configures one query engine instance (component C10's
// caller): which snapshot to open and the search tuning knobs.
type QueryProfile struct {
	SnapshotPath    string `yaml:"snapshot_path"`
	OpenSet         string `yaml:"open_set"` // "heap" or "bucket"
	MaxGlobalFanout int    `yaml:"max_global_fanout"`
}

func (c *BuildConfig) applyDefaults() {
	if c.LandmarkCount == 0 {
		c.LandmarkCount = 16
	}
	if c.WalkScale == 0 {
		c.WalkScale = 600
	}
}

func (c *BuildConfig) validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("buildcfg: output_path is required")
	}
	if c.LandmarkCount < 0 {
		return fmt.Errorf("buildcfg: landmark_count must be non-negative, got %d", c.LandmarkCount)
	}
	return nil
}

func (p *QueryProfile) applyDefaults() {
	if p.OpenSet == "" {
		p.OpenSet = "heap"
	}
}

func (p *QueryProfile) validate() error {
	if p.SnapshotPath == "" {
		return fmt.Errorf("buildcfg: snapshot_path is required")
	}
	switch p.OpenSet {
	case "heap", "bucket":
	default:
		return fmt.Errorf("buildcfg: unknown open_set %q", p.OpenSet)
	}
	return nil
}

// LoadBuildConfig reads and validates a build configuration document.
func LoadBuildConfig(path string) (BuildConfig, error) {
	var c BuildConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read build config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("parse build config %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

// LoadQueryProfile reads and validates a query profile document.
func LoadQueryProfile(path string) (QueryProfile, error) {
	var p QueryProfile
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read query profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse query profile %s: %w", path, err)
	}
	p.applyDefaults()
	if err := p.validate(); err != nil {
		return p, err
	}
	return p, nil
}
