package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralvarezdev/tinygo-proprig/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
throttle:
  calibrated_zero: 1900
  enforce_max: true
motors:
  variant: quad
  active: [2, 3]
gate:
  button: both
  timeout: 30s
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1900), cfg.Throttle.CalibratedZero)
	assert.True(t, cfg.Throttle.EnforceMax)
	assert.Equal(t, config.MotorVariantQuad, cfg.Motors.Variant)
	assert.Equal(t, []uint8{2, 3}, cfg.Motors.Active)
	assert.Equal(t, "both", cfg.Gate.Button)
	assert.Equal(t, 30*time.Second, cfg.Gate.Timeout)
	assert.Equal(t, uint32(120000000), cfg.Clock.SpeedHz)
}

func TestLoadConfigEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "motors:\n  variant: hex\n")
	t.Setenv("PROPRIG_MOTORS_VARIANT", "quad")
	t.Setenv("PROPRIG_SERIAL_BAUD_RATE", "9600")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.MotorVariantQuad, cfg.Motors.Variant)
	assert.Equal(t, uint32(9600), cfg.Serial.BaudRate)
}

func TestLoadConfigNumericVariant(t *testing.T) {
	cases := []struct {
		content string
		want    config.MotorVariant
	}{
		{content: "motors:\n  variant: 6\n", want: config.MotorVariantHex},
		{content: "motors:\n  variant: 4\n  active: [3]\n", want: config.MotorVariantQuad},
	}
	for _, c := range cases {
		fromFile, err := loadConfig(writeConfig(t, c.content))
		require.NoError(t, err)
		assert.Equal(t, c.want, fromFile.Motors.Variant)

		parsed, code := config.Parse([]byte(c.content))
		require.Equal(t, tinygoerrors.ErrorCodeNil, code)
		assert.Equal(t, parsed, fromFile)
	}

	_, err := loadConfig(writeConfig(t, "serial:\n  clock_source: 1\n"))
	assert.Error(t, err)
	_, code := config.Parse([]byte("serial:\n  clock_source: 1\n"))
	assert.NotEqual(t, tinygoerrors.ErrorCodeNil, code)
}

func TestLoadConfigRampStep(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "motors:\n  ramp_step: 2500\n"))
	require.NoError(t, err)
	assert.Equal(t, uint32(2500), cfg.Motors.RampStep)

	t.Setenv("PROPRIG_MOTORS_RAMP_STEP", "750")
	cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, uint32(750), cfg.Motors.RampStep)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "motors:\n  variant: quad\n  active: [5]\n")
	_, err := loadConfig(path)
	assert.ErrorContains(t, err, "invalid config")

	path = writeConfig(t, "motors:\n  variant: octo\n")
	_, err = loadConfig(path)
	assert.Error(t, err)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfigCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "variant: hex")
	assert.Contains(t, out.String(), "calibrated_zero: 2020")
}

func TestRunCommand(t *testing.T) {
	path := writeConfig(t, "loop:\n  idle_interval: 0s\n")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("wQ"))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"run", "--config", path, "--press-after", "0s", "--timeout", "10s"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Press left button to start.\r\n")
	assert.True(t, strings.HasSuffix(out.String(), "Program ending.\r\n"))
	assert.Contains(t, errOut.String(), "heartbeat toggles")
	assert.Contains(t, errOut.String(), "stopped")
}

func TestRunCommandRejectsUnknownButtons(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--buttons", "middle"})

	assert.ErrorContains(t, cmd.Execute(), "unknown buttons")
}
