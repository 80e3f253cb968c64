package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned (wrapped) for any configuration the engine
// cannot simulate. It is always reported before a random number is drawn.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "RADSAFETY_"

// Config holds the immutable parameters of one transport run.
type Config struct {
	AttenuationCoefficient Real `json:"attenuationCoefficient" yaml:"attenuationCoefficient" env:"MU"`
	DomainRadius           Real `json:"domainRadius" yaml:"domainRadius" env:"DOMAIN_RADIUS"`
	PhotonCount            int  `json:"photonCount" yaml:"photonCount" env:"PHOTONS"`
	// Zero disables the crossing tally.
	BoundaryCheckRadius Real `json:"boundaryCheckRadius,omitempty" yaml:"boundaryCheckRadius,omitempty" env:"CHECK_RADIUS"`
	// When > 0 the photon takes fixed steps with no attenuation or absorption.
	FixedStepSize   Real   `json:"fixedStepSize,omitempty" yaml:"fixedStepSize,omitempty" env:"STEP_SIZE"`
	MaxInteractions int    `json:"maxInteractions,omitempty" yaml:"maxInteractions,omitempty" env:"MAX_INTERACTIONS"`
	PathSampleSize  int    `json:"pathSampleSize,omitempty" yaml:"pathSampleSize,omitempty" env:"PATH_SAMPLE"`
	Seed            uint64 `json:"seed,omitempty" yaml:"seed,omitempty" env:"SEED"`
	Workers         int    `json:"workers,omitempty" yaml:"workers,omitempty" env:"WORKERS"`
	Units           string `json:"units,omitempty" yaml:"units,omitempty" env:"UNITS"`
}

// DefaultConfig returns the reference attenuating run.
func DefaultConfig() Config {
	return Config{
		AttenuationCoefficient: AttenuationCoefficient,
		DomainRadius:           DomainRadius,
		PhotonCount:            PhotonCount,
		BoundaryCheckRadius:    BoundaryCheckRadius,
		MaxInteractions:        MaxInteractions,
		PathSampleSize:         PathSampleSize,
		Units:                  Units,
	}
}

// Attenuating reports whether step lengths are sampled from the exponential
// free-path distribution (as opposed to the fixed-step walk).
func (c Config) Attenuating() bool { return c.FixedStepSize == 0 }

// Validate checks the configuration. Every error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if !isFinite(c.FixedStepSize) || c.FixedStepSize < 0 {
		return invalid("fixed step size must be >= 0, got %g", c.FixedStepSize)
	}
	if c.Attenuating() && (!isFinite(c.AttenuationCoefficient) || c.AttenuationCoefficient <= 0) {
		return invalid("attenuation coefficient must be > 0, got %g", c.AttenuationCoefficient)
	}
	if !isFinite(c.DomainRadius) || c.DomainRadius <= 0 {
		return invalid("domain radius must be > 0, got %g", c.DomainRadius)
	}
	if c.PhotonCount <= 0 {
		return invalid("photon count must be > 0, got %d", c.PhotonCount)
	}
	if !isFinite(c.BoundaryCheckRadius) || c.BoundaryCheckRadius < 0 {
		return invalid("boundary check radius must be >= 0, got %g", c.BoundaryCheckRadius)
	}
	if c.BoundaryCheckRadius >= c.DomainRadius {
		return invalid("boundary check radius %g must be below domain radius %g", c.BoundaryCheckRadius, c.DomainRadius)
	}
	if c.MaxInteractions < 0 {
		return invalid("max interactions must be >= 0, got %d", c.MaxInteractions)
	}
	if c.PathSampleSize < 0 {
		return invalid("path sample size must be >= 0, got %d", c.PathSampleSize)
	}
	if c.Workers < 0 {
		return invalid("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// withDefaults fills optional zero-valued fields.
func (c Config) withDefaults() Config {
	if c.MaxInteractions == 0 {
		c.MaxInteractions = MaxInteractions
	}
	if c.PathSampleSize == 0 {
		c.PathSampleSize = PathSampleSize
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Units == "" {
		c.Units = Units
	}
	return c
}

// LoadConfig reads a JSON or YAML file over DefaultConfig and then applies
// RADSAFETY_* environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from RADSAFETY_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
