//go:build tinygo && (rp2040 || rp2350)

package board

import (
	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
)

const (
	// ErrorCodeBoardStartNumber is the starting number for board-related error codes.
	ErrorCodeBoardStartNumber uint16 = 5380
)

const (
	ErrorCodeBoardFailedToConfigurePWM tinygoerrors.ErrorCode = tinygoerrors.ErrorCode(iota + ErrorCodeBoardStartNumber)
	ErrorCodeBoardFailedToGetPWMChannel
	ErrorCodeBoardZeroPWMClock
	ErrorCodeBoardUnknownMotor
	ErrorCodeBoardNilPWM
	ErrorCodeBoardNilUART
)
