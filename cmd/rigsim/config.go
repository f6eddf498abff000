package main

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ralvarezdev/tinygo-proprig/config"
)

const (
	// envPrefix is the prefix of the environment variables overriding the config file
	envPrefix = "PROPRIG"
)

// setDefaults registers every config key with its default value, so the environment can
// override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	cfg := config.Default()

	// Clock defaults
	v.SetDefault("clock.speed_hz", cfg.Clock.SpeedHz)
	v.SetDefault("clock.pwm_divider", cfg.Clock.PWMDivider)

	// Throttle defaults
	v.SetDefault("throttle.pwm_frequency_hz", cfg.Throttle.PWMFrequencyHz)
	v.SetDefault("throttle.calibrated_zero", cfg.Throttle.CalibratedZero)
	v.SetDefault("throttle.enforce_max", cfg.Throttle.EnforceMax)

	// Heartbeat defaults
	v.SetDefault("heartbeat.tick_rate_hz", cfg.Heartbeat.TickRateHz)
	v.SetDefault("heartbeat.ticks_per_toggle", cfg.Heartbeat.TicksPerToggle)

	// Serial defaults
	v.SetDefault("serial.baud_rate", cfg.Serial.BaudRate)
	v.SetDefault("serial.clock_source", cfg.Serial.ClockSource.String())

	// Gate defaults
	v.SetDefault("gate.button", cfg.Gate.Button)
	v.SetDefault("gate.max_polls", cfg.Gate.MaxPolls)
	v.SetDefault("gate.timeout", cfg.Gate.Timeout)
	v.SetDefault("gate.poll_interval", cfg.Gate.PollInterval)
	v.SetDefault("gate.debounce_samples", cfg.Gate.DebounceSamples)

	// Motors defaults
	v.SetDefault("motors.variant", cfg.Motors.Variant.String())
	v.SetDefault("motors.active", cfg.Motors.Active)
	v.SetDefault("motors.ready_max_polls", cfg.Motors.ReadyMaxPolls)
	v.SetDefault("motors.ready_timeout", cfg.Motors.ReadyTimeout)
	v.SetDefault("motors.ramp_step", cfg.Motors.RampStep)

	// Loop defaults
	v.SetDefault("loop.idle_interval", cfg.Loop.IdleInterval)
}

// numberToTextHookFunc renders integers as text for the targets decoding from text, so
// numeric enum values such as a motor variant of 6 reach their UnmarshalText.
func numberToTextHookFunc() mapstructure.DecodeHookFuncType {
	textUnmarshaler := reflect.TypeFor[encoding.TextUnmarshaler]()
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if !reflect.PointerTo(to).Implements(textUnmarshaler) {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return cast.ToStringE(data)
		default:
			return data, nil
		}
	}
}

// loadConfig layers the defaults, the config file and the PROPRIG_* environment variables.
//
// Parameters:
//
// path: The config file, empty to only use the defaults and the environment
//
// Returns:
//
// The validated configuration
func loadConfig(path string) (config.Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				numberToTextHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		),
	); err != nil {
		return config.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if code := cfg.Validate(); code != tinygoerrors.ErrorCodeNil {
		return config.Config{}, fmt.Errorf("invalid config: error code %d", code)
	}
	return cfg, nil
}

// newConfigCmd creates the command printing the effective configuration.
func newConfigCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective rig configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(options.configFile)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
