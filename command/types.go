// Package command maps received console bytes to throttle changes.
package command

import (
	"io"

	tinygobuffers "github.com/ralvarezdev/tinygo-buffers"

	"github.com/ralvarezdev/tinygo-proprig/throttle"
)

type (
	// PulseWidthSetter writes a pulse width to a motor output channel.
	PulseWidthSetter interface {
		SetPWMDutyCycle(channel uint8, ticks uint32)
	}

	// Result describes what a single Apply did.
	Result struct {
		Command Command
		Current uint32
		Applied bool
	}

	// Interpreter applies console commands to a throttle Model.
	//
	// The Interpreter owns the throttle Model and the quit flag: it must only be used from the
	// foreground loop.
	Interpreter struct {
		throttle     *throttle.Model
		motors       PulseWidthSetter
		activeMotors []uint8
		console      io.Writer
		quit         bool
		buffer       []byte
	}
)

var (
	// menuText is printed by CommandMenu
	menuText = []byte("Menu:\r\nM - Print this menu.\r\n" +
		"Q - Quit this program.\r\n" +
		"w - Increase motor throttle.\r\n" +
		"s - Decrease motor throttle.\r\n" +
		"x - Stop the motors.\r\n")

	// increasePrefix is the prefix of the report after CommandIncrease
	increasePrefix = []byte("Throttle Increase: ")

	// decreasePrefix is the prefix of the report after CommandDecrease
	decreasePrefix = []byte("Throttle Decrease: ")

	// zeroPrefix is the prefix of the report after CommandZero
	zeroPrefix = []byte("Throttle zeroed: ")

	// lineEnding terminates every report
	lineEnding = []byte("\r\n")
)

// NewInterpreter creates a new command Interpreter.
//
// Parameters:
//
// model: The throttle Model mutated by the commands
// motors: The motor outputs written through after every throttle change
// activeMotors: The motor output channels written by the commands
// console: The console the reports are written to, may be nil
func NewInterpreter(
	model *throttle.Model,
	motors PulseWidthSetter,
	activeMotors []uint8,
	console io.Writer,
) *Interpreter {
	return &Interpreter{
		throttle:     model,
		motors:       motors,
		activeMotors: activeMotors,
		console:      console,
		buffer:       make([]byte, 0, 32),
	}
}

// Apply handles one received byte.
//
// Parameters:
//
// b: The received byte
//
// Returns:
//
// The Result of the command, with CommandNil for ignored bytes
func (i *Interpreter) Apply(b byte) Result {
	result := Result{Command: Parse(b)}

	switch result.Command {
	case CommandQuit:
		i.quit = true
		result.Applied = true
	case CommandMenu:
		i.Menu()
		result.Applied = true
	case CommandIncrease:
		result.Current, result.Applied = i.throttle.Increase()
		i.writeMotors(result.Current)
		i.report(increasePrefix, result.Current)
	case CommandDecrease:
		result.Current, result.Applied = i.throttle.Decrease()
		i.writeMotors(result.Current)
		i.report(decreasePrefix, result.Current)
	case CommandZero:
		result.Current = i.throttle.Reset()
		result.Applied = true
		i.writeMotors(result.Current)
		i.report(zeroPrefix, result.Current)
	}
	if result.Command != CommandIncrease && result.Command != CommandDecrease {
		result.Current = i.throttle.Current()
	}
	return result
}

// Menu writes the command menu to the console.
func (i *Interpreter) Menu() {
	if i.console != nil {
		_, _ = i.console.Write(menuText)
	}
}

// QuitRequested returns whether CommandQuit has been applied.
func (i *Interpreter) QuitRequested() bool {
	return i.quit
}

// Throttle returns the throttle Model owned by the Interpreter.
func (i *Interpreter) Throttle() *throttle.Model {
	return i.throttle
}

// writeMotors writes the pulse width to every active motor output.
func (i *Interpreter) writeMotors(ticks uint32) {
	if i.motors == nil {
		return
	}
	for _, channel := range i.activeMotors {
		i.motors.SetPWMDutyCycle(channel, ticks)
	}
}

// report writes a status line to the console.
func (i *Interpreter) report(prefix []byte, value uint32) {
	if i.console == nil {
		return
	}
	i.buffer = append(i.buffer[:0], prefix...)
	i.buffer = append(i.buffer, tinygobuffers.UintToDecimal(uint64(value))...)
	i.buffer = append(i.buffer, lineEnding...)
	_, _ = i.console.Write(i.buffer)
}
