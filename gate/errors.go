package gate

import (
	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
)

const (
	// ErrorCodeGateStartNumber is the starting number for startup gate error codes.
	ErrorCodeGateStartNumber uint16 = 5340
)

const (
	ErrorCodeGateNilPoller tinygoerrors.ErrorCode = tinygoerrors.ErrorCode(iota + ErrorCodeGateStartNumber)
	ErrorCodeGateInvalidPattern
	ErrorCodeGateTimeout
	ErrorCodeGatePollLimitReached
	ErrorCodeGateCanceled
)
