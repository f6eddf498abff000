package config

import (
	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
)

const (
	// ErrorCodeConfigStartNumber is the starting number for configuration error codes.
	ErrorCodeConfigStartNumber uint16 = 5360
)

const (
	ErrorCodeConfigInvalidYAML tinygoerrors.ErrorCode = tinygoerrors.ErrorCode(iota + ErrorCodeConfigStartNumber)
	ErrorCodeConfigZeroClockSpeed
	ErrorCodeConfigZeroPWMDivider
	ErrorCodeConfigZeroPWMFrequency
	ErrorCodeConfigZeroTickRate
	ErrorCodeConfigZeroTicksPerToggle
	ErrorCodeConfigZeroBaudRate
	ErrorCodeConfigUnknownClockSource
	ErrorCodeConfigUnknownMotorVariant
	ErrorCodeConfigNoActiveMotors
	ErrorCodeConfigActiveMotorOutOfRange
	ErrorCodeConfigUnknownGateButton
)
