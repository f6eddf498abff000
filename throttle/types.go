package throttle

import (
	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
)

type (
	// Calibration holds the throttle bounds derived from the clock tree at startup.
	Calibration struct {
		// ComputedZero is the pulse width of a 1 ms pulse in PWM ticks
		ComputedZero uint32

		// Zero is the pulse width used at runtime, either ComputedZero or the calibrated override
		Zero uint32

		// Max is the pulse width of a 2 ms pulse in PWM ticks
		Max uint32

		// Step is the amount a single increase or decrease moves the throttle
		Step uint32

		// PeriodTicks is the PWM generator period in PWM ticks
		PeriodTicks uint32
	}

	// Model holds the commandable pulse width and its bounds.
	//
	// A Model has a single owner: every mutation must happen in the same execution context.
	Model struct {
		zero       uint32
		max        uint32
		step       uint32
		current    uint32
		enforceMax bool
	}
)

const (
	// StepDivisor divides the computed zero pulse width into throttle steps
	StepDivisor = 400

	// millisecondsPerSecond converts a PWM frequency into a 1 ms pulse width
	millisecondsPerSecond = 1000
)

// Derive computes the throttle calibration from the clock configuration.
//
// Parameters:
//
// clockSpeed: The system clock speed in Hz
// pwmDivider: The divider between the system clock and the PWM clock
// pwmFrequency: The PWM output frequency in Hz
// calibratedZero: The zero throttle pulse width override in PWM ticks, 0 to keep the computed value
//
// Returns:
//
// The derived calibration and an error code if the configuration cannot produce a usable throttle
func Derive(
	clockSpeed uint32,
	pwmDivider uint32,
	pwmFrequency uint32,
	calibratedZero uint32,
) (Calibration, tinygoerrors.ErrorCode) {
	if clockSpeed == 0 {
		return Calibration{}, ErrorCodeThrottleZeroClockSpeed
	}
	if pwmFrequency == 0 {
		return Calibration{}, ErrorCodeThrottleZeroPWMFrequency
	}
	if pwmDivider == 0 {
		return Calibration{}, ErrorCodeThrottleZeroDivider
	}

	// Number of PWM ticks per PWM period
	period := clockSpeed / pwmFrequency / pwmDivider
	if period == 0 {
		return Calibration{}, ErrorCodeThrottleZeroPeriod
	}

	calibration := Calibration{
		ComputedZero: period * 1 * pwmFrequency / millisecondsPerSecond,
		Max:          period * 2 * pwmFrequency / millisecondsPerSecond,
		PeriodTicks:  period,
	}
	calibration.Step = calibration.ComputedZero / StepDivisor
	if calibration.Step == 0 {
		return Calibration{}, ErrorCodeThrottleZeroStep
	}

	// The calibrated override replaces the computed zero, the step and max stay frequency-derived
	calibration.Zero = calibration.ComputedZero
	if calibratedZero != 0 {
		calibration.Zero = calibratedZero
	}
	if calibration.Zero >= period {
		return Calibration{}, ErrorCodeThrottleZeroExceedsPeriod
	}
	return calibration, tinygoerrors.ErrorCodeNil
}

// NewModel creates a new throttle Model resting at zero throttle.
//
// Parameters:
//
// zero: The minimum armed pulse width
// max: The nominal maximum pulse width
// step: The amount a single increase or decrease moves the throttle
// enforceMax: Whether increases beyond max are discarded
//
// Returns:
//
// The throttle Model and an error code if the bounds are invalid
func NewModel(
	zero uint32,
	max uint32,
	step uint32,
	enforceMax bool,
) (*Model, tinygoerrors.ErrorCode) {
	if step == 0 {
		return nil, ErrorCodeThrottleZeroStep
	}
	if enforceMax && max < zero {
		return nil, ErrorCodeThrottleInvalidMax
	}
	return &Model{
		zero:       zero,
		max:        max,
		step:       step,
		current:    zero,
		enforceMax: enforceMax,
	}, tinygoerrors.ErrorCodeNil
}

// NewModelFromCalibration creates a new throttle Model from a derived calibration.
func NewModelFromCalibration(
	calibration Calibration,
	enforceMax bool,
) (*Model, tinygoerrors.ErrorCode) {
	return NewModel(calibration.Zero, calibration.Max, calibration.Step, enforceMax)
}

// Increase moves the throttle up by one step.
//
// Without max enforcement the throttle is unbounded above; only a uint32 wrap is refused.
//
// Returns:
//
// The current pulse width and whether the increase was applied
func (m *Model) Increase() (uint32, bool) {
	candidate := m.current + m.step
	if candidate < m.current {
		return m.current, false
	}
	if m.enforceMax && candidate > m.max {
		return m.current, false
	}
	m.current = candidate
	return m.current, true
}

// Decrease moves the throttle down by one step, discarding the decrement if it would go below zero throttle.
//
// Returns:
//
// The current pulse width and whether the decrease was applied
func (m *Model) Decrease() (uint32, bool) {
	if m.current < m.step || m.current-m.step < m.zero {
		return m.current, false
	}
	m.current -= m.step
	return m.current, true
}

// Reset sets the throttle back to zero throttle and returns it.
func (m *Model) Reset() uint32 {
	m.current = m.zero
	return m.current
}

// Current returns the current pulse width.
func (m *Model) Current() uint32 {
	return m.current
}

// Zero returns the zero throttle pulse width.
func (m *Model) Zero() uint32 {
	return m.zero
}

// Max returns the nominal maximum pulse width.
func (m *Model) Max() uint32 {
	return m.max
}

// Step returns the throttle step.
func (m *Model) Step() uint32 {
	return m.step
}

// IsMaxEnforced returns whether increases beyond max are discarded.
func (m *Model) IsMaxEnforced() bool {
	return m.enforceMax
}
