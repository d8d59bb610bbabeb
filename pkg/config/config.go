// Package config loads the startup configuration for the lumentrace CLI: a
// TOML file describing the default scene, window size, and tracing knobs,
// overridable by command-line flags.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// Config is the top-level shape of lumentrace.toml.
type Config struct {
	Scene    SceneConfig    `toml:"scene"`
	Window   WindowConfig   `toml:"window"`
	Tracing  TracingConfig  `toml:"tracing"`
	Rendering RenderingConfig `toml:"rendering"`
}

type SceneConfig struct {
	Path string `toml:"path"`
}

type WindowConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// TracingConfig mirrors the fields of core.TracingConfig that make sense as
// startup knobs; NEEMode is expressed as a string in the file and resolved
// against the core package's named constants when applied.
type TracingConfig struct {
	MaxBounces               int     `toml:"max_bounces"`
	MinBounces               int     `toml:"min_bounces"`
	NEEMode                  string  `toml:"nee_mode"`
	SpecularWeightClampMin   float64 `toml:"specular_weight_clamp_min"`
	SpecularWeightClampMax   float64 `toml:"specular_weight_clamp_max"`
	EmissiveStrengthFallback float64 `toml:"emissive_strength_fallback"`
	UseBlueNoise             bool    `toml:"use_blue_noise"`
	Denoise                  bool    `toml:"denoise"`
}

type RenderingConfig struct {
	WorkerCount int `toml:"worker_count"`
	SyncRate    int `toml:"sync_rate"`
}

// Default returns the built-in configuration used when no lumentrace.toml
// is present, matching core.DefaultTracingConfig's choices for the tracing
// section and the original viewer's 1280x720 default window.
func Default() Config {
	base := core.DefaultTracingConfig(1280, 720)
	return Config{
		Scene:  SceneConfig{Path: "scenes/default.json"},
		Window: WindowConfig{Width: base.Width, Height: base.Height},
		Tracing: TracingConfig{
			MaxBounces:               base.MaxBounces,
			MinBounces:               base.MinBounces,
			NEEMode:                  "mis",
			SpecularWeightClampMin:   base.SpecularWeightClampMin,
			SpecularWeightClampMax:   base.SpecularWeightClampMax,
			EmissiveStrengthFallback: base.EmissiveStrengthFallback,
			UseBlueNoise:             base.UseBlueNoise,
			Denoise:                  base.Denoise,
		},
		Rendering: RenderingConfig{WorkerCount: 0, SyncRate: base.SyncRate},
	}
}

// Load reads and decodes a TOML config file at path. A missing file is not
// an error: Default() is returned unchanged, since lumentrace.toml is
// optional and CLI flags can supply everything it would have set.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// NEEModeValue resolves the config file's string NEE mode to the core package's
// typed constant, defaulting to MIS for an empty or unrecognized value.
func (c Config) NEEModeValue() core.NEEMode {
	switch c.Tracing.NEEMode {
	case "off":
		return core.NEEOff
	case "direct_only":
		return core.NEEDirectOnly
	default:
		return core.NEEMIS
	}
}

// ToTracingConfig builds a core.TracingConfig from this config's tracing and
// rendering sections, applying the resolved window dimensions.
func (c Config) ToTracingConfig() core.TracingConfig {
	return core.TracingConfig{
		Width:                    c.Window.Width,
		Height:                   c.Window.Height,
		MaxBounces:               c.Tracing.MaxBounces,
		MinBounces:               c.Tracing.MinBounces,
		NEEMode:                  c.NEEModeValue(),
		SpecularWeightClampMin:   c.Tracing.SpecularWeightClampMin,
		SpecularWeightClampMax:   c.Tracing.SpecularWeightClampMax,
		EmissiveStrengthFallback: c.Tracing.EmissiveStrengthFallback,
		SyncRate:                 c.Rendering.SyncRate,
		UseBlueNoise:             c.Tracing.UseBlueNoise,
		Denoise:                  c.Tracing.Denoise,
	}
}
