package throttle

import (
	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
)

const (
	// ErrorCodeThrottleStartNumber is the starting number for throttle-related error codes.
	ErrorCodeThrottleStartNumber uint16 = 5320
)

const (
	ErrorCodeThrottleZeroClockSpeed tinygoerrors.ErrorCode = tinygoerrors.ErrorCode(iota + ErrorCodeThrottleStartNumber)
	ErrorCodeThrottleZeroPWMFrequency
	ErrorCodeThrottleZeroDivider
	ErrorCodeThrottleZeroStep
	ErrorCodeThrottleZeroPeriod
	ErrorCodeThrottleZeroExceedsPeriod
	ErrorCodeThrottleInvalidMax
)
