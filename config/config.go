// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Degenerate centroid fallbacks.
const (
	FallbackHold       = "hold"
	FallbackDiskCenter = "disk_center"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Robots    RobotsConfig    `yaml:"robots"`
	Field     FieldConfig     `yaml:"field"`
	Motion    MotionConfig    `yaml:"motion"`
	Driver    DriverConfig    `yaml:"driver"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Stream    StreamConfig    `yaml:"stream"`
	Scenario  ScenarioConfig  `yaml:"scenario"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the grid dimensions in cells.
type WorldConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// RobotsConfig holds swarm size and per-robot radii.
type RobotsConfig struct {
	Count        int     `yaml:"count"`
	SensorRadius float64 `yaml:"sensor_radius"` // Disk sensed into the own map each cycle
	CommRadius   float64 `yaml:"comm_radius"`   // Max distance at which peers are neighbors
}

// FieldConfig holds scalar field shaping constants.
type FieldConfig struct {
	Baseline      float64 `yaml:"baseline"`       // Initial value of every cell
	GoalAmplitude float64 `yaml:"goal_amplitude"` // Peak of each goal bump
	GoalFalloff   float64 `yaml:"goal_falloff"`   // exp(-falloff*d^2/(rows+cols))
}

// MotionConfig holds the decision cycle constants.
type MotionConfig struct {
	SocialWeight       float64 `yaml:"social_weight"`       // Blend factor for flocking (lambda)
	MaxStepLength      float64 `yaml:"max_step_length"`     // Per-cycle displacement cap
	Substeps           int     `yaml:"substeps"`            // Micro-steps per cycle
	DisturbanceFactor  float64 `yaml:"disturbance_factor"`  // Displacement multiplier on first contact
	DegenerateFallback string  `yaml:"degenerate_fallback"` // hold | disk_center
	Confine            bool    `yaml:"confine"`             // Clamp positions to the grid after each micro-step
}

// DriverConfig holds robot loop scheduling.
type DriverConfig struct {
	Pace time.Duration `yaml:"pace"` // Delay between cycles of one robot (0 = yield only)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	SampleEvery    int           `yaml:"sample_every"`    // Headless: sample every N steps
	SampleInterval time.Duration `yaml:"sample_interval"` // Concurrent: wall-clock sample period
	Tracks         bool          `yaml:"tracks"`          // Also write per-robot tracks.csv
}

// StreamConfig holds websocket feed parameters.
type StreamConfig struct {
	Interval time.Duration `yaml:"interval"` // Frame broadcast period
	Queue    int           `yaml:"queue"`    // Per-client buffered frames before drop
}

// Point is an integer grid coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// RectangleConfig is an inclusive obstacle rectangle.
type RectangleConfig struct {
	ULX int `yaml:"ulx"`
	ULY int `yaml:"uly"`
	LRX int `yaml:"lrx"`
	LRY int `yaml:"lry"`
}

// CircleConfig is a filled obstacle disk.
type CircleConfig struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Radius int `yaml:"radius"`
}

// DisturbanceConfig is a single disturbance cell.
type DisturbanceConfig struct {
	X  int `yaml:"x"`
	Y  int `yaml:"y"`
	DX int `yaml:"dx"`
	DY int `yaml:"dy"`
}

// VortexConfig lays disturbances along radial spokes, each pushing
// tangentially with a strength growing away from the centre.
type VortexConfig struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Spokes int `yaml:"spokes"`
	Length int `yaml:"length"`
}

// ScenarioConfig describes the setup-time environment.
type ScenarioConfig struct {
	Starts       []Point             `yaml:"starts"`
	Goals        []Point             `yaml:"goals"`
	Rectangles   []RectangleConfig   `yaml:"rectangles"`
	Circles      []CircleConfig      `yaml:"circles"`
	Obstacles    []Point             `yaml:"obstacles"`
	Disturbances []DisturbanceConfig `yaml:"disturbances"`
	Vortices     []VortexConfig      `yaml:"vortices"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells  int     // World.Rows * World.Cols
	Jitter int     // Start jitter bound per axis
	MicroV float64 // MaxStepLength / Substeps, the largest unblended micro-step
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the values the simulation cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.World.Rows <= 0 || c.World.Cols <= 0:
		return fmt.Errorf("%w: world %dx%d must be positive", ErrInvalid, c.World.Rows, c.World.Cols)
	case c.Robots.Count < 0:
		return fmt.Errorf("%w: robots.count %d", ErrInvalid, c.Robots.Count)
	case c.Robots.SensorRadius < 0 || c.Robots.CommRadius < 0:
		return fmt.Errorf("%w: negative robot radius", ErrInvalid)
	case c.Motion.Substeps < 1:
		return fmt.Errorf("%w: motion.substeps %d must be at least 1", ErrInvalid, c.Motion.Substeps)
	case c.Motion.SocialWeight < 0 || c.Motion.SocialWeight > 1:
		return fmt.Errorf("%w: motion.social_weight %v outside [0,1]", ErrInvalid, c.Motion.SocialWeight)
	case c.Motion.MaxStepLength <= 0:
		return fmt.Errorf("%w: motion.max_step_length %v must be positive", ErrInvalid, c.Motion.MaxStepLength)
	case c.Field.Baseline <= 0:
		return fmt.Errorf("%w: field.baseline %v must be positive", ErrInvalid, c.Field.Baseline)
	case c.Driver.Pace < 0:
		return fmt.Errorf("%w: driver.pace %v is negative", ErrInvalid, c.Driver.Pace)
	case c.Telemetry.SampleInterval <= 0:
		return fmt.Errorf("%w: telemetry.sample_interval %v must be positive", ErrInvalid, c.Telemetry.SampleInterval)
	case c.Stream.Interval <= 0:
		return fmt.Errorf("%w: stream.interval %v must be positive", ErrInvalid, c.Stream.Interval)
	}
	switch c.Motion.DegenerateFallback {
	case FallbackHold, FallbackDiskCenter:
	default:
		return fmt.Errorf("%w: unknown motion.degenerate_fallback %q", ErrInvalid, c.Motion.DegenerateFallback)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.World.Rows * c.World.Cols
	c.Derived.Jitter = c.Derived.Cells / 100000
	c.Derived.MicroV = c.Motion.MaxStepLength / float64(c.Motion.Substeps)

	if c.Telemetry.SampleEvery < 1 {
		c.Telemetry.SampleEvery = 1
	}
	if c.Stream.Queue < 1 {
		c.Stream.Queue = 1
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
