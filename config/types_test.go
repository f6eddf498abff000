package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralvarezdev/tinygo-proprig/gate"
)

const testYAML = `
clock:
  speed_hz: 80000000
throttle:
  calibrated_zero: 0
  enforce_max: true
serial:
  clock_source: system
gate:
  button: both
  timeout: 30s
  poll_interval: 5ms
motors:
  variant: quad
  active: [0, 1, 2, 3]
  ramp_step: 10000
loop:
  idle_interval: 250us
`

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.Equal(t, tinygoerrors.ErrorCodeNil, cfg.Validate())
	assert.Equal(t, gate.ButtonLeft, cfg.GateButton())
	assert.Equal(t, uint32(1875000), cfg.PWMClockHz())
	assert.Zero(t, cfg.Motors.RampStep)
}

func TestParseEmptyYieldsDefaults(t *testing.T) {
	cfg, code := Parse(nil)
	require.Equal(t, tinygoerrors.ErrorCodeNil, code)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, code := Parse([]byte(testYAML))
	require.Equal(t, tinygoerrors.ErrorCodeNil, code)

	assert.Equal(t, uint32(80000000), cfg.Clock.SpeedHz)
	assert.Equal(t, uint32(64), cfg.Clock.PWMDivider)
	assert.Equal(t, uint32(0), cfg.Throttle.CalibratedZero)
	assert.True(t, cfg.Throttle.EnforceMax)
	assert.Equal(t, ClockSourceSystem, cfg.Serial.ClockSource)
	assert.Equal(t, gate.ButtonsAll, cfg.GateButton())
	assert.Equal(t, gate.Options{Timeout: 30 * time.Second, PollInterval: 5 * time.Millisecond}, cfg.GateOptions())
	assert.Equal(t, MotorVariantQuad, cfg.Motors.Variant)
	assert.Equal(t, []uint8{0, 1, 2, 3}, cfg.Motors.Active)
	assert.Equal(t, uint32(10000), cfg.Motors.RampStep)
	assert.Equal(t, 250*time.Microsecond, cfg.Loop.IdleInterval)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name     string
		document string
		expected tinygoerrors.ErrorCode
	}{
		{"malformed", "clock: [", ErrorCodeConfigInvalidYAML},
		{"unknown variant", "motors:\n  variant: octo\n", ErrorCodeConfigInvalidYAML},
		{"unknown clock source", "serial:\n  clock_source: crystal\n", ErrorCodeConfigInvalidYAML},
		{"zero clock", "clock:\n  speed_hz: 0\n", ErrorCodeConfigZeroClockSpeed},
		{"zero divider", "clock:\n  pwm_divider: 0\n", ErrorCodeConfigZeroPWMDivider},
		{"zero frequency", "throttle:\n  pwm_frequency_hz: 0\n", ErrorCodeConfigZeroPWMFrequency},
		{"zero tick rate", "heartbeat:\n  tick_rate_hz: 0\n", ErrorCodeConfigZeroTickRate},
		{"zero ticks per toggle", "heartbeat:\n  ticks_per_toggle: 0\n", ErrorCodeConfigZeroTicksPerToggle},
		{"zero baud", "serial:\n  baud_rate: 0\n", ErrorCodeConfigZeroBaudRate},
		{"no active motors", "motors:\n  active: []\n", ErrorCodeConfigNoActiveMotors},
		{"active out of range", "motors:\n  variant: quad\n  active: [0, 5]\n", ErrorCodeConfigActiveMotorOutOfRange},
		{"unknown button", "gate:\n  button: middle\n", ErrorCodeConfigUnknownGateButton},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code := Parse([]byte(tt.document))
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestMotorVariant(t *testing.T) {
	assert.Equal(t, uint8(4), MotorVariantQuad.MotorCount())
	assert.Equal(t, uint8(0x0f), MotorVariantQuad.OutputMask())
	assert.Equal(t, uint8(6), MotorVariantHex.MotorCount())
	assert.Equal(t, uint8(0x3f), MotorVariantHex.OutputMask())
	assert.Equal(t, uint8(0), MotorVariantNil.OutputMask())

	var v MotorVariant
	require.NoError(t, v.UnmarshalText([]byte("6")))
	assert.Equal(t, MotorVariantHex, v)
	assert.Error(t, v.UnmarshalText([]byte("octo")))
}

func TestParseFirmwareConfig(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "cmd", "proprig", "rig.yaml"))
	require.NoError(t, err)

	cfg, code := Parse(data)
	require.Equal(t, tinygoerrors.ErrorCodeNil, code)
	assert.Equal(t, MotorVariantHex, cfg.Motors.Variant)
	assert.Equal(t, uint32(10000), cfg.Motors.RampStep)
	assert.Equal(t, uint32(2020), cfg.Throttle.CalibratedZero)
}
