// Package config holds the startup configuration of the propulsion test rig.
//
// The configuration is read once at startup and never changes afterwards.
package config

import (
	"time"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	"gopkg.in/yaml.v3"

	"github.com/ralvarezdev/tinygo-proprig/gate"
)

type (
	// Config is the rig configuration.
	Config struct {
		Clock     ClockConfig     `yaml:"clock" mapstructure:"clock"`
		Throttle  ThrottleConfig  `yaml:"throttle" mapstructure:"throttle"`
		Heartbeat HeartbeatConfig `yaml:"heartbeat" mapstructure:"heartbeat"`
		Serial    SerialConfig    `yaml:"serial" mapstructure:"serial"`
		Gate      GateConfig      `yaml:"gate" mapstructure:"gate"`
		Motors    MotorsConfig    `yaml:"motors" mapstructure:"motors"`
		Loop      LoopConfig      `yaml:"loop" mapstructure:"loop"`
	}

	// ClockConfig describes the clock tree.
	ClockConfig struct {
		SpeedHz    uint32 `yaml:"speed_hz" mapstructure:"speed_hz"`
		PWMDivider uint32 `yaml:"pwm_divider" mapstructure:"pwm_divider"`
	}

	// ThrottleConfig describes the throttle derivation.
	ThrottleConfig struct {
		PWMFrequencyHz uint32 `yaml:"pwm_frequency_hz" mapstructure:"pwm_frequency_hz"`

		// CalibratedZero replaces the computed zero throttle pulse width when non-zero
		CalibratedZero uint32 `yaml:"calibrated_zero" mapstructure:"calibrated_zero"`

		// EnforceMax discards increases beyond the computed max pulse width
		EnforceMax bool `yaml:"enforce_max" mapstructure:"enforce_max"`
	}

	// HeartbeatConfig describes the periodic tick and the heartbeat indicator.
	HeartbeatConfig struct {
		TickRateHz     uint32 `yaml:"tick_rate_hz" mapstructure:"tick_rate_hz"`
		TicksPerToggle uint32 `yaml:"ticks_per_toggle" mapstructure:"ticks_per_toggle"`
	}

	// SerialConfig describes the console link.
	SerialConfig struct {
		BaudRate    uint32      `yaml:"baud_rate" mapstructure:"baud_rate"`
		ClockSource ClockSource `yaml:"clock_source" mapstructure:"clock_source"`
	}

	// GateConfig describes the startup gate.
	GateConfig struct {
		Button          string        `yaml:"button" mapstructure:"button"`
		MaxPolls        uint32        `yaml:"max_polls" mapstructure:"max_polls"`
		Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
		PollInterval    time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
		DebounceSamples uint8         `yaml:"debounce_samples" mapstructure:"debounce_samples"`
	}

	// MotorsConfig describes the motor outputs.
	MotorsConfig struct {
		Variant MotorVariant `yaml:"variant" mapstructure:"variant"`

		// Active lists the motor outputs driven by the console commands
		Active []uint8 `yaml:"active" mapstructure:"active"`

		ReadyMaxPolls uint32        `yaml:"ready_max_polls" mapstructure:"ready_max_polls"`
		ReadyTimeout  time.Duration `yaml:"ready_timeout" mapstructure:"ready_timeout"`

		// RampStep is the pulse width change per PWM period, in nanoseconds, when an ESC
		// output moves to a new pulse width. 0 sets the new pulse width at once
		RampStep uint32 `yaml:"ramp_step" mapstructure:"ramp_step"`
	}

	// LoopConfig describes the foreground loop.
	LoopConfig struct {
		// IdleInterval is the sleep of an iteration that found no command, 0 to only yield
		IdleInterval time.Duration `yaml:"idle_interval" mapstructure:"idle_interval"`
	}
)

// Default returns the configuration of the rig as built for the bench.
func Default() Config {
	return Config{
		Clock: ClockConfig{
			SpeedHz:    120000000,
			PWMDivider: 64,
		},
		Throttle: ThrottleConfig{
			PWMFrequencyHz: 400,
			CalibratedZero: 2020,
		},
		Heartbeat: HeartbeatConfig{
			TickRateHz:     12,
			TicksPerToggle: 6,
		},
		Serial: SerialConfig{
			BaudRate:    115200,
			ClockSource: ClockSourcePIOSC,
		},
		Gate: GateConfig{
			Button:          "left",
			DebounceSamples: gate.DefaultDebounceSamples,
		},
		Motors: MotorsConfig{
			Variant:      MotorVariantHex,
			Active:       []uint8{0, 1},
			ReadyTimeout: 100 * time.Millisecond,
		},
		Loop: LoopConfig{
			IdleInterval: time.Millisecond,
		},
	}
}

// Parse decodes a YAML document over the default configuration and validates the result.
//
// Parameters:
//
// data: The YAML document, an empty document yields the defaults
//
// Returns:
//
// The configuration and an error code if it could not be decoded or is invalid
func Parse(data []byte) (Config, tinygoerrors.ErrorCode) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, ErrorCodeConfigInvalidYAML
	}
	if code := cfg.Validate(); code != tinygoerrors.ErrorCodeNil {
		return Config{}, code
	}
	return cfg, tinygoerrors.ErrorCodeNil
}

// Validate checks every bound of the configuration.
func (c *Config) Validate() tinygoerrors.ErrorCode {
	switch {
	case c.Clock.SpeedHz == 0:
		return ErrorCodeConfigZeroClockSpeed
	case c.Clock.PWMDivider == 0:
		return ErrorCodeConfigZeroPWMDivider
	case c.Throttle.PWMFrequencyHz == 0:
		return ErrorCodeConfigZeroPWMFrequency
	case c.Heartbeat.TickRateHz == 0:
		return ErrorCodeConfigZeroTickRate
	case c.Heartbeat.TicksPerToggle == 0:
		return ErrorCodeConfigZeroTicksPerToggle
	case c.Serial.BaudRate == 0:
		return ErrorCodeConfigZeroBaudRate
	case c.Serial.ClockSource == ClockSourceNil:
		return ErrorCodeConfigUnknownClockSource
	case c.Motors.Variant.MotorCount() == 0:
		return ErrorCodeConfigUnknownMotorVariant
	case len(c.Motors.Active) == 0:
		return ErrorCodeConfigNoActiveMotors
	case !c.GateButton().IsValid():
		return ErrorCodeConfigUnknownGateButton
	}

	for _, motor := range c.Motors.Active {
		if motor >= c.Motors.Variant.MotorCount() {
			return ErrorCodeConfigActiveMotorOutOfRange
		}
	}
	return tinygoerrors.ErrorCodeNil
}

// GateButton returns the button pattern the startup gate waits for.
func (c *Config) GateButton() gate.ButtonState {
	return gate.ParseButtonState(c.Gate.Button)
}

// GateOptions returns the bounds of the startup gate wait.
func (c *Config) GateOptions() gate.Options {
	return gate.Options{
		MaxPolls:     c.Gate.MaxPolls,
		Timeout:      c.Gate.Timeout,
		PollInterval: c.Gate.PollInterval,
	}
}

// PWMClockHz returns the frequency of the PWM clock.
func (c *Config) PWMClockHz() uint32 {
	if c.Clock.PWMDivider == 0 {
		return 0
	}
	return c.Clock.SpeedHz / c.Clock.PWMDivider
}
