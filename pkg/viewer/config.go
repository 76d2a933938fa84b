package viewer

import (
	"errors"
	"fmt"
)

// Default zoom settings
const (
	DefaultMinZoom    = 0.5
	DefaultMaxZoom    = 5.0
	DefaultWheelStep  = 0.1
	DefaultButtonStep = 0.25
	DefaultTapSlop    = 6.0
)

// Config holds the bounds and step sizes used by an Engine
type Config struct {
	MinZoom    float64   `yaml:"min_zoom"`
	MaxZoom    float64   `yaml:"max_zoom"`
	WheelStep  float64   `yaml:"wheel_step"`  // zoom delta per wheel tick
	ButtonStep float64   `yaml:"button_step"` // zoom delta per control button press
	ClickStops []float64 `yaml:"click_stops"` // scales visited by repeated taps
	TapSlop    float64   `yaml:"tap_slop"`    // max pointer travel (px) still counted as a tap
}

// DefaultConfig returns the stock viewer settings
func DefaultConfig() Config {
	return Config{
		MinZoom:    DefaultMinZoom,
		MaxZoom:    DefaultMaxZoom,
		WheelStep:  DefaultWheelStep,
		ButtonStep: DefaultButtonStep,
		ClickStops: []float64{1, 2, 3},
		TapSlop:    DefaultTapSlop,
	}
}

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("viewer: invalid config")

// Validate checks that the bounds are usable
func (c Config) Validate() error {
	if c.MinZoom <= 0 {
		return fmt.Errorf("%w: min_zoom must be positive, got %g", ErrInvalidConfig, c.MinZoom)
	}
	if c.MinZoom > c.MaxZoom {
		return fmt.Errorf("%w: min_zoom %g exceeds max_zoom %g", ErrInvalidConfig, c.MinZoom, c.MaxZoom)
	}
	if c.WheelStep <= 0 || c.ButtonStep <= 0 {
		return fmt.Errorf("%w: zoom steps must be positive", ErrInvalidConfig)
	}
	if c.TapSlop < 0 {
		return fmt.Errorf("%w: tap_slop must not be negative", ErrInvalidConfig)
	}
	if len(c.ClickStops) == 0 {
		return fmt.Errorf("%w: click_stops is empty", ErrInvalidConfig)
	}
	for _, s := range c.ClickStops {
		if s < c.MinZoom || s > c.MaxZoom {
			return fmt.Errorf("%w: click stop %g outside [%g, %g]", ErrInvalidConfig, s, c.MinZoom, c.MaxZoom)
		}
	}
	return nil
}
