// Package config provides configuration loading and access for the phasor
// field tools.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/phasor/field"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all evaluation session parameters.
type Config struct {
	Field     FieldConfig     `yaml:"field"`
	Kernels   KernelsConfig   `yaml:"kernels"`
	Params    ParamsConfig    `yaml:"params"`
	Optimize  OptimizeConfig  `yaml:"optimize"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// FieldConfig selects the six evaluation mode axes by name.
type FieldConfig struct {
	DensityMode   string `yaml:"density_mode"`   // noise, complex, state
	AmplitudeMode string `yaml:"amplitude_mode"` // static, gauss, rangle, radial
	FrequencyMode string `yaml:"frequency_mode"` // static, gauss
	WindowMode    string `yaml:"window_mode"`    // anisotropic, gauss, isotropic, ramp
	CellMode      string `yaml:"cell_mode"`      // clamp, mod
	OutputMode    string `yaml:"output_mode"`    // optimize, average, hybrid
}

// KernelsConfig sizes and seeds the kernel buffer.
type KernelsConfig struct {
	MaxPerCell   int   `yaml:"max_per_cell"`   // slot capacity reserved per cell
	CountPerCell int   `yaml:"count_per_cell"` // slots populated by placement
	Seed         int64 `yaml:"seed"`
}

// ParamsConfig holds the numeric session parameters.
type ParamsConfig struct {
	NoiseBandwidth     float64 `yaml:"noise_bandwidth"`
	FilterBandwidth    float64 `yaml:"filter_bandwidth"`
	AmplitudeBandwidth float64 `yaml:"amplitude_bandwidth"`
	MinFrequency       float64 `yaml:"min_frequency"`
	MaxFrequency       float64 `yaml:"max_frequency"`
	FrequencyBandwidth float64 `yaml:"frequency_bandwidth"`
	AngleOffset        float64 `yaml:"angle_offset"`
	AngleRange         float64 `yaml:"angle_range"`
	AngleScale         float64 `yaml:"angle_scale"` // noise-field scale for coherent orientations
	MinIsotropy        float64 `yaml:"min_isotropy"`
	MaxIsotropy        float64 `yaml:"max_isotropy"`
	WindowRadius       float64 `yaml:"window_radius"`
	LearningRate       float64 `yaml:"learning_rate"`
	HybridBlend        float64 `yaml:"hybrid_blend"`
	StateRate          float64 `yaml:"state_rate"`
}

// OptimizeConfig drives headless optimization runs.
type OptimizeConfig struct {
	Passes int `yaml:"passes"`
}

// ViewerConfig sizes the interactive viewer.
type ViewerConfig struct {
	ScreenWidth  int  `yaml:"screen_width"`
	ScreenHeight int  `yaml:"screen_height"`
	ShowKernels  bool `yaml:"show_kernels"`
	TargetFPS    int  `yaml:"target_fps"`
}

// TelemetryConfig controls perf collection.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // passes to average perf over
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	GridWidth  int // cells, from noise bandwidth
	GridHeight int
	Modes      field.Modes
	Params     field.Params
}

var global *Config

// Init loads configuration from the given path (empty = embedded defaults)
// and installs it as the global config.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global config. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load reads embedded defaults, overlays the optional user file, and
// computes derived values.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GridExtent returns the square cell extent matched to a noise bandwidth,
// so that one kernel's 5% support spans roughly one cell.
func GridExtent(noiseBandwidth float64) int {
	return int(math.Ceil(32.0 / (math.Sqrt(-math.Log(0.05)) / noiseBandwidth)))
}

// computeDerived resolves mode names and builds the field session values.
func (c *Config) computeDerived() error {
	modes, err := field.ParseModes(
		c.Field.DensityMode,
		c.Field.AmplitudeMode,
		c.Field.FrequencyMode,
		c.Field.WindowMode,
		c.Field.CellMode,
		c.Field.OutputMode,
	)
	if err != nil {
		return err
	}
	c.Derived.Modes = modes

	ext := GridExtent(c.Params.NoiseBandwidth)
	if ext < 1 {
		return fmt.Errorf("noise bandwidth %v yields empty grid", c.Params.NoiseBandwidth)
	}
	c.Derived.GridWidth = ext
	c.Derived.GridHeight = ext

	if c.Kernels.MaxPerCell < 1 {
		return fmt.Errorf("kernels.max_per_cell must be at least 1, got %d", c.Kernels.MaxPerCell)
	}
	if c.Kernels.CountPerCell > c.Kernels.MaxPerCell {
		return fmt.Errorf("kernels.count_per_cell %d exceeds max_per_cell %d",
			c.Kernels.CountPerCell, c.Kernels.MaxPerCell)
	}

	c.Derived.Params = field.Params{
		NoiseBandwidth:     float32(c.Params.NoiseBandwidth),
		FilterBandwidth:    float32(c.Params.FilterBandwidth),
		AmplitudeBandwidth: float32(c.Params.AmplitudeBandwidth),
		MinFrequency:       float32(c.Params.MinFrequency),
		MaxFrequency:       float32(c.Params.MaxFrequency),
		FrequencyBandwidth: float32(c.Params.FrequencyBandwidth),
		MinIsotropy:        float32(c.Params.MinIsotropy),
		MaxIsotropy:        float32(c.Params.MaxIsotropy),
		WindowRadius:       float32(c.Params.WindowRadius),
		LearningRate:       float32(c.Params.LearningRate),
		HybridBlend:        float32(c.Params.HybridBlend),
		StateRate:          float32(c.Params.StateRate),
	}
	return nil
}

// Grid returns the derived field grid descriptor.
func (c *Config) Grid() field.Grid {
	return field.Grid{
		Width:        c.Derived.GridWidth,
		Height:       c.Derived.GridHeight,
		SlotsPerCell: c.Kernels.MaxPerCell,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
