package command

type (
	// Command is a single-byte console command.
	Command byte
)

const (
	CommandNil      Command = 0
	CommandQuit     Command = 'Q'
	CommandMenu     Command = 'M'
	CommandIncrease Command = 'w'
	CommandDecrease Command = 's'
	CommandZero     Command = 'x'
)

// Parse maps a received byte to its command, CommandNil if the byte is not a command.
func Parse(b byte) Command {
	switch c := Command(b); c {
	case CommandQuit, CommandMenu, CommandIncrease, CommandDecrease, CommandZero:
		return c
	default:
		return CommandNil
	}
}

// IsMutating returns whether the command changes the throttle and writes the motor outputs.
func (c Command) IsMutating() bool {
	switch c {
	case CommandIncrease, CommandDecrease, CommandZero:
		return true
	default:
		return false
	}
}

// String returns the command byte as a string, or "nil" for CommandNil.
func (c Command) String() string {
	if c == CommandNil {
		return "nil"
	}
	return string(rune(c))
}
