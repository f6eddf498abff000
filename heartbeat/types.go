// Package heartbeat toggles a status indicator at a fixed sub-multiple of the periodic tick.
package heartbeat

type (
	// Indicator is the output driven by the heartbeat.
	Indicator interface {
		Set(on bool)
	}

	// Scheduler counts ticks and toggles its indicator once every ticksPerToggle ticks.
	//
	// A Scheduler is owned by the periodic tick context and must never block.
	Scheduler struct {
		indicator Indicator
		resetAt   uint32
		tickCount uint32
		isOn      bool
		toggles   uint32
	}
)

const (
	// DefaultTicksPerToggle gives a 2 Hz toggle rate on a 12 Hz tick
	DefaultTicksPerToggle = 6
)

// NewScheduler creates a new heartbeat Scheduler with the indicator off.
//
// Parameters:
//
// ticksPerToggle: Number of ticks between two toggles, values below 1 are treated as 1
// indicator: The indicator to drive, may be nil
func NewScheduler(ticksPerToggle uint32, indicator Indicator) *Scheduler {
	if ticksPerToggle == 0 {
		ticksPerToggle = 1
	}
	return &Scheduler{
		indicator: indicator,
		resetAt:   ticksPerToggle - 1,
	}
}

// Tick advances the scheduler by one tick.
//
// Returns:
//
// Whether the indicator was toggled by this tick
func (s *Scheduler) Tick() bool {
	if s.tickCount < s.resetAt {
		s.tickCount++
		return false
	}

	s.isOn = !s.isOn
	s.tickCount = 0
	s.toggles++
	if s.indicator != nil {
		s.indicator.Set(s.isOn)
	}
	return true
}

// IsOn returns whether the indicator is currently on.
func (s *Scheduler) IsOn() bool {
	return s.isOn
}

// TickCount returns the ticks counted since the last toggle.
func (s *Scheduler) TickCount() uint32 {
	return s.tickCount
}

// Toggles returns the number of toggles since the scheduler was created.
func (s *Scheduler) Toggles() uint32 {
	return s.toggles
}
