package heartbeat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingIndicator struct {
	levels []bool
}

func (r *recordingIndicator) Set(on bool) {
	r.levels = append(r.levels, on)
}

func TestTickTogglesEverySixTicks(t *testing.T) {
	indicator := &recordingIndicator{}
	s := NewScheduler(DefaultTicksPerToggle, indicator)

	for tick := 1; tick <= 60; tick++ {
		toggled := s.Tick()
		require.Equal(t, tick%6 == 0, toggled, "tick %d", tick)
	}
	assert.Equal(t, uint32(10), s.Toggles())
	require.Len(t, indicator.levels, 10)
	for i, level := range indicator.levels {
		assert.Equal(t, i%2 == 0, level)
	}
}

func TestTickCountWrapsAfterToggle(t *testing.T) {
	s := NewScheduler(DefaultTicksPerToggle, nil)
	for i := 0; i < 5; i++ {
		s.Tick()
	}
	assert.Equal(t, uint32(5), s.TickCount())
	assert.False(t, s.IsOn())

	assert.True(t, s.Tick())
	assert.Equal(t, uint32(0), s.TickCount())
	assert.True(t, s.IsOn())
}

func TestSingleTickPerToggle(t *testing.T) {
	s := NewScheduler(0, nil)
	assert.True(t, s.Tick())
	assert.True(t, s.Tick())
	assert.False(t, s.IsOn())
	assert.Equal(t, uint32(2), s.Toggles())
}
