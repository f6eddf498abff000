package board

// nextRampPulse returns the pulse width one ramp step from current towards target.
//
// Parameters:
//
// current: The pulse width on the signal line
// target: The pulse width the signal line moves to
// step: The largest change per PWM period, 0 to disable the ramp
//
// Returns:
//
// The intermediate pulse width and false once target is within one step of current
func nextRampPulse(current, target, step uint32) (uint32, bool) {
	switch {
	case step == 0:
		return target, false
	case current < target && target-current > step:
		return current + step, true
	case current > target && current-target > step:
		return current - step, true
	default:
		return target, false
	}
}
