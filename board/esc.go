//go:build tinygo && (rp2040 || rp2350)

package board

import (
	"time"

	"machine"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	tinygologger "github.com/ralvarezdev/tinygo-logger"
	tinygopwm "github.com/ralvarezdev/tinygo-pwm"
)

type (
	// MotorOutput wires one ESC signal line to a PWM slice.
	//
	// Two consecutive motors share a slice, motor 2k on its A channel and motor 2k+1 on its B channel.
	MotorOutput struct {
		PWM tinygopwm.PWM
		Pin machine.Pin
	}

	// motorState is the state of one ESC signal line.
	motorState struct {
		pwm        tinygopwm.PWM
		pin        machine.Pin
		channel    uint8
		configured bool
		enabled    bool
		pulse      uint32
		target     uint32
	}

	// MotorBank drives the ESC signal lines of the rig.
	//
	// Pulse widths are set in PWM clock ticks and converted into nanoseconds for the slices.
	MotorBank struct {
		motors      []motorState
		pwmClockHz  uint32
		period      uint32
		periodDelay time.Duration
		generators  uint8
		pulseStep   *uint32
		logger      tinygologger.Logger
	}
)

var (
	// setPeriodPrefix is the prefix for the log message when setting the PWM period
	setPeriodPrefix = []byte("Set ESC PWM period to:")

	// setPulseWidthPrefix is the prefix for the log message when setting the pulse width
	setPulseWidthPrefix = []byte("Set ESC pulse width to:")

	// enableOutputsPrefix is the prefix for the log message when enabling the outputs
	enableOutputsPrefix = []byte("Enable ESC outputs:")

	// enableGeneratorsPrefix is the prefix for the log message when enabling the generators
	enableGeneratorsPrefix = []byte("Enable ESC PWM generators:")
)

// NewMotorBank creates a new instance of MotorBank
//
// Parameters:
//
// outputs: The ESC signal lines, indexed by motor
// pwmClockHz: The frequency of the PWM clock the pulse widths are expressed in
// pulseStep: Step in nanoseconds for gradually changing the pulse width, nil to change it at once
// logger: The logger to log messages, may be nil
//
// Returns:
//
// An instance of MotorBank and an error if any output is missing its PWM slice
func NewMotorBank(
	outputs []MotorOutput,
	pwmClockHz uint32,
	pulseStep *uint32,
	logger tinygologger.Logger,
) (*MotorBank, tinygoerrors.ErrorCode) {
	if pwmClockHz == 0 {
		return nil, ErrorCodeBoardZeroPWMClock
	}

	motors := make([]motorState, len(outputs))
	for i, output := range outputs {
		if output.PWM == nil {
			return nil, ErrorCodeBoardNilPWM
		}
		motors[i] = motorState{
			pwm: output.PWM,
			pin: output.Pin,
		}
	}

	return &MotorBank{
		motors:     motors,
		pwmClockHz: pwmClockHz,
		pulseStep:  pulseStep,
		logger:     logger,
	}, tinygoerrors.ErrorCodeNil
}

// ticksToNanoseconds converts PWM clock ticks into nanoseconds.
func (m *MotorBank) ticksToNanoseconds(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1e9 / uint64(m.pwmClockHz))
}

// SetPeriod configures the PWM slice of the generator.
//
// Parameters:
//
// generator: The generator, driving motors 2*generator and 2*generator+1
// ticks: The period in PWM clock ticks
//
// Returns:
//
// An error if the slice could not be configured or a channel could not be obtained
func (m *MotorBank) SetPeriod(generator uint8, ticks uint32) tinygoerrors.ErrorCode {
	first := int(generator) * 2
	if first >= len(m.motors) {
		return ErrorCodeBoardUnknownMotor
	}

	// Configure the PWM
	period := m.ticksToNanoseconds(ticks)
	if err := m.motors[first].pwm.Configure(
		machine.PWMConfig{
			Period: uint64(period),
		},
	); err != nil {
		return ErrorCodeBoardFailedToConfigurePWM
	}
	m.period = period
	m.periodDelay = time.Duration(period)

	// Log the configured period
	if m.logger != nil {
		m.logger.AddMessageWithUint32(
			setPeriodPrefix,
			period,
			true,
			true,
			false,
		)
		m.logger.Debug()
	}

	// Get the channels from the pins of the generator
	for i := first; i < first+2 && i < len(m.motors); i++ {
		channel, err := m.motors[i].pwm.Channel(m.motors[i].pin)
		if err != nil {
			return ErrorCodeBoardFailedToGetPWMChannel
		}
		m.motors[i].channel = channel
		m.motors[i].configured = true
		tinygopwm.SetDuty(m.motors[i].pwm, channel, 0, m.period)
	}
	return tinygoerrors.ErrorCodeNil
}

// SetPulseWidth sets the target pulse width of the motor.
//
// The signal line only carries the pulse once both its output and its generator are enabled.
//
// Parameters:
//
// motor: The motor index
// ticks: The pulse width in PWM clock ticks
func (m *MotorBank) SetPulseWidth(motor uint8, ticks uint32) tinygoerrors.ErrorCode {
	if int(motor) >= len(m.motors) {
		return ErrorCodeBoardUnknownMotor
	}
	m.motors[motor].target = m.ticksToNanoseconds(ticks)
	m.apply(motor)
	return tinygoerrors.ErrorCodeNil
}

// EnableOutputs enables the signal lines of the motors in mask.
func (m *MotorBank) EnableOutputs(mask uint8) {
	if m.logger != nil {
		m.logger.AddMessageWithUint32(
			enableOutputsPrefix,
			uint32(mask),
			true,
			true,
			false,
		)
		m.logger.Debug()
	}

	for motor := range m.motors {
		if mask&(1<<motor) != 0 {
			m.motors[motor].enabled = true
			m.apply(uint8(motor))
		}
	}
}

// EnableGenerators starts the generators in mask.
func (m *MotorBank) EnableGenerators(mask uint8) {
	if m.logger != nil {
		m.logger.AddMessageWithUint32(
			enableGeneratorsPrefix,
			uint32(mask),
			true,
			true,
			false,
		)
		m.logger.Debug()
	}

	m.generators |= mask
	for motor := range m.motors {
		m.apply(uint8(motor))
	}
}

// isLive reports whether the signal line of the motor carries its pulse.
func (m *MotorBank) isLive(motor uint8) bool {
	state := &m.motors[motor]
	return state.configured && state.enabled && m.generators&(1<<(motor/2)) != 0
}

// apply drives the signal line of the motor towards its target pulse width.
func (m *MotorBank) apply(motor uint8) {
	if !m.isLive(motor) {
		return
	}
	state := &m.motors[motor]
	if state.pulse == state.target {
		return
	}
	m.graduallySetPulseWidth(state, state.target)
}

// graduallySetPulseWidth gradually sets the pulse width of the signal line to the pulse value
//
// Parameters:
//
// state: The signal line
// pulse: The pulse width in nanoseconds
func (m *MotorBank) graduallySetPulseWidth(state *motorState, pulse uint32) {
	// Gradually increment or decrement the pulse to the target value, starting from the
	// first live pulse
	if m.pulseStep != nil && state.pulse != 0 {
		for i, ok := nextRampPulse(state.pulse, pulse, *m.pulseStep); ok; i, ok = nextRampPulse(i, pulse, *m.pulseStep) {
			tinygopwm.SetDuty(state.pwm, state.channel, i, m.period)
			time.Sleep(m.periodDelay)
		}
	}

	// Log the final pulse
	if m.logger != nil {
		m.logger.AddMessageWithUint32(
			setPulseWidthPrefix,
			pulse,
			true,
			true,
			false,
		)
		m.logger.Debug()
	}
	tinygopwm.SetDuty(state.pwm, state.channel, pulse, m.period)
	state.pulse = pulse
}
