// Package config loads the gameplay settings file and the host environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the settings file.
const (
	DefaultDrainRateFlight    = 0.05
	DefaultChargeAmountPotion = 0.5
	DefaultTickInterval       = time.Second
	DefaultMinForBar          = 0.05
)

// Config holds the gameplay settings read from config.yml.
type Config struct {
	DrainRateFlight    float64       // level drained per tick while flying
	ChargeAmountPotion float64       // level gained per charge potion
	FlightThreshold    float64       // level needed to fly
	TickInterval       time.Duration // drain period
	MinForBar          float64       // level at which the gauge appears
}

// fileConfig mirrors the YAML layout. Pointers tell absent keys from zero.
type fileConfig struct {
	Mysticism struct {
		DrainRateFlight    *float64       `yaml:"drainRateFlight"`
		ChargeAmountPotion *float64       `yaml:"chargeAmountPotion"`
		FlightThreshold    *float64       `yaml:"flightThreshold"`
		TickInterval       *time.Duration `yaml:"tickInterval"`
	} `yaml:"mysticism"`
	BarVisibility struct {
		MinMysticismForBar *float64 `yaml:"minMysticismForBar"`
	} `yaml:"barVisibility"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DrainRateFlight:    DefaultDrainRateFlight,
		ChargeAmountPotion: DefaultChargeAmountPotion,
		FlightThreshold:    DefaultDrainRateFlight,
		TickInterval:       DefaultTickInterval,
		MinForBar:          DefaultMinForBar,
	}
}

// Parse decodes YAML settings over the defaults. A missing flightThreshold
// follows drainRateFlight.
func Parse(data []byte) (Config, error) {
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	cfg := Default()
	m := raw.Mysticism
	if m.DrainRateFlight != nil {
		cfg.DrainRateFlight = *m.DrainRateFlight
	}
	if m.ChargeAmountPotion != nil {
		cfg.ChargeAmountPotion = *m.ChargeAmountPotion
	}
	cfg.FlightThreshold = cfg.DrainRateFlight
	if m.FlightThreshold != nil {
		cfg.FlightThreshold = *m.FlightThreshold
	}
	if m.TickInterval != nil {
		cfg.TickInterval = *m.TickInterval
	}
	if v := raw.BarVisibility.MinMysticismForBar; v != nil {
		cfg.MinForBar = *v
	}
	return cfg.Normalize(), nil
}

// Load reads the settings file at path. A missing file yields Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize clamps every level-valued field into [0, 1] and replaces a
// non-positive tick interval with the default.
func (c Config) Normalize() Config {
	c.DrainRateFlight = unit(c.DrainRateFlight)
	c.ChargeAmountPotion = unit(c.ChargeAmountPotion)
	c.FlightThreshold = unit(c.FlightThreshold)
	c.MinForBar = unit(c.MinForBar)
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	return c
}

func unit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return math.Min(v, 1)
}
