package tinygo_proprig

import (
	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
)

const (
	// ErrorCodeRigStartNumber is the starting number for rig-related error codes.
	ErrorCodeRigStartNumber uint16 = 5300
)

const (
	ErrorCodeRigNilHardware tinygoerrors.ErrorCode = tinygoerrors.ErrorCode(iota + ErrorCodeRigStartNumber)
	ErrorCodeRigPeripheralNotReady
	ErrorCodeRigNotInitialized
	ErrorCodeRigNotRunning
	ErrorCodeRigAlreadyInitialized
	ErrorCodeRigCanceled
)
