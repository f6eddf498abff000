// Package gate blocks startup until the operator confirms with a button pattern.
package gate

import (
	"context"
	"time"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
)

type (
	// Options bounds a Wait. The zero value waits forever without sleeping between polls.
	Options struct {
		// MaxPolls is the maximum number of polls, 0 for no limit
		MaxPolls uint32

		// Timeout is the maximum time to wait, 0 for no limit
		Timeout time.Duration

		// PollInterval is the sleep between two polls, 0 to busy-poll
		PollInterval time.Duration
	}
)

// Matches returns whether the debounced button state satisfies the desired pattern.
//
// A single-button pattern ignores the other button, the both-buttons pattern needs both.
func Matches(debounced uint8, desired ButtonState) bool {
	if !desired.IsValid() {
		return false
	}
	return ButtonState(debounced)&desired == desired
}

// Wait polls the buttons until the desired pattern is observed.
//
// Parameters:
//
// ctx: The context checked once per poll, may be nil
// poller: The button poller
// desired: The pattern to wait for
// options: The bounds of the wait
//
// Returns:
//
// The number of polls performed and an error code if the pattern was not observed
func Wait(
	ctx context.Context,
	poller Poller,
	desired ButtonState,
	options Options,
) (uint32, tinygoerrors.ErrorCode) {
	if poller == nil {
		return 0, ErrorCodeGateNilPoller
	}
	if !desired.IsValid() {
		return 0, ErrorCodeGateInvalidPattern
	}

	var deadline time.Time
	if options.Timeout > 0 {
		deadline = time.Now().Add(options.Timeout)
	}

	var polls uint32
	for {
		debounced, _ := poller.PollButtonState()
		polls++
		if Matches(debounced, desired) {
			return polls, tinygoerrors.ErrorCodeNil
		}

		if options.MaxPolls > 0 && polls >= options.MaxPolls {
			return polls, ErrorCodeGatePollLimitReached
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return polls, ErrorCodeGateTimeout
		}
		if ctx != nil && ctx.Err() != nil {
			return polls, ErrorCodeGateCanceled
		}
		if options.PollInterval > 0 {
			time.Sleep(options.PollInterval)
		}
	}
}
