package gate

import (
	"context"
	"testing"
	"time"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	"github.com/stretchr/testify/assert"
)

// scriptedPoller replays a sequence of debounced states, then repeats the last one.
type scriptedPoller struct {
	states []uint8
	polls  int
}

func (s *scriptedPoller) PollButtonState() (uint8, uint8) {
	index := s.polls
	if index >= len(s.states) {
		index = len(s.states) - 1
	}
	s.polls++
	return s.states[index], s.states[index]
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(uint8(ButtonLeft), ButtonLeft))
	assert.True(t, Matches(uint8(ButtonsAll), ButtonLeft))
	assert.False(t, Matches(uint8(ButtonRight), ButtonLeft))

	assert.True(t, Matches(uint8(ButtonRight), ButtonRight))
	assert.False(t, Matches(uint8(ButtonNone), ButtonRight))

	assert.True(t, Matches(uint8(ButtonsAll), ButtonsAll))
	assert.False(t, Matches(uint8(ButtonLeft), ButtonsAll))
	assert.False(t, Matches(uint8(ButtonRight), ButtonsAll))

	assert.False(t, Matches(uint8(ButtonsAll), ButtonNone))
}

func TestWaitReturnsWhenPatternObserved(t *testing.T) {
	poller := &scriptedPoller{states: []uint8{0, 0, uint8(ButtonRight), uint8(ButtonLeft)}}

	polls, code := Wait(context.Background(), poller, ButtonLeft, Options{})
	assert.Equal(t, tinygoerrors.ErrorCodeNil, code)
	assert.Equal(t, uint32(4), polls)
}

func TestWaitForBothIgnoresSingleButtons(t *testing.T) {
	poller := &scriptedPoller{states: []uint8{
		uint8(ButtonLeft), uint8(ButtonRight), uint8(ButtonLeft), uint8(ButtonRight),
	}}

	polls, code := Wait(context.Background(), poller, ButtonsAll, Options{MaxPolls: 50})
	assert.Equal(t, ErrorCodeGatePollLimitReached, code)
	assert.Equal(t, uint32(50), polls)

	poller = &scriptedPoller{states: []uint8{uint8(ButtonLeft), uint8(ButtonsAll)}}
	polls, code = Wait(context.Background(), poller, ButtonsAll, Options{MaxPolls: 50})
	assert.Equal(t, tinygoerrors.ErrorCodeNil, code)
	assert.Equal(t, uint32(2), polls)
}

func TestWaitTimeout(t *testing.T) {
	poller := &scriptedPoller{states: []uint8{0}}

	start := time.Now()
	_, code := Wait(nil, poller, ButtonRight, Options{
		Timeout:      20 * time.Millisecond,
		PollInterval: time.Millisecond,
	})
	assert.Equal(t, ErrorCodeGateTimeout, code)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	polls, code := Wait(ctx, &scriptedPoller{states: []uint8{0}}, ButtonLeft, Options{})
	assert.Equal(t, ErrorCodeGateCanceled, code)
	assert.Equal(t, uint32(1), polls)
}

func TestWaitRejectsInvalidArguments(t *testing.T) {
	_, code := Wait(nil, nil, ButtonLeft, Options{})
	assert.Equal(t, ErrorCodeGateNilPoller, code)

	_, code = Wait(nil, &scriptedPoller{states: []uint8{3}}, ButtonNone, Options{})
	assert.Equal(t, ErrorCodeGateInvalidPattern, code)
}

func TestParseButtonState(t *testing.T) {
	assert.Equal(t, ButtonLeft, ParseButtonState("left"))
	assert.Equal(t, ButtonRight, ParseButtonState("right"))
	assert.Equal(t, ButtonsAll, ParseButtonState("both"))
	assert.Equal(t, ButtonNone, ParseButtonState("middle"))
	assert.Equal(t, "left button", ButtonLeft.String())
}
