package gate

type (
	// ButtonState is a bitmask of pressed buttons.
	ButtonState uint8
)

const (
	ButtonNone  ButtonState = 0
	ButtonLeft  ButtonState = 1 << 0
	ButtonRight ButtonState = 1 << 1
	ButtonsAll              = ButtonLeft | ButtonRight
)

// IsValid returns whether the state is one of the patterns the gate can wait for.
func (b ButtonState) IsValid() bool {
	switch b {
	case ButtonLeft, ButtonRight, ButtonsAll:
		return true
	default:
		return false
	}
}

// String returns the operator-facing name of the pattern.
func (b ButtonState) String() string {
	switch b {
	case ButtonNone:
		return "none"
	case ButtonLeft:
		return "left button"
	case ButtonRight:
		return "right button"
	case ButtonsAll:
		return "both buttons"
	default:
		return "unknown"
	}
}

// ParseButtonState maps a configuration name to its pattern, ButtonNone if unknown.
func ParseButtonState(name string) ButtonState {
	switch name {
	case "left":
		return ButtonLeft
	case "right":
		return ButtonRight
	case "both", "all":
		return ButtonsAll
	default:
		return ButtonNone
	}
}
