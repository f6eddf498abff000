//go:build tinygo && (rp2040 || rp2350)

// Package board is the Hardware of the rig on a TinyGo target.
//
// Interrupt sources are serviced by a dispatcher goroutine: it runs whenever the foreground
// loop yields, and never runs a handler while another one is running.
package board

import (
	"context"
	"sync/atomic"
	"time"

	"device/rp"
	"machine"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	tinygologger "github.com/ralvarezdev/tinygo-logger"

	tinygoproprig "github.com/ralvarezdev/tinygo-proprig"
	"github.com/ralvarezdev/tinygo-proprig/config"
	"github.com/ralvarezdev/tinygo-proprig/gate"
)

type (
	// Pins maps the rig pins onto the target.
	Pins struct {
		// LEDs are the four status LEDs, LED1 to LED4
		LEDs [4]machine.Pin

		// Buttons are the left and right push buttons, active low
		Buttons [2]machine.Pin

		// ConsoleTX and ConsoleRX are the console serial pins
		ConsoleTX machine.Pin
		ConsoleRX machine.Pin
	}

	// Board implements the rig Hardware on a TinyGo target.
	Board struct {
		uart        *machine.UART
		pins        Pins
		motors      *MotorBank
		debouncer   *gate.Debouncer
		handlers    [3]func()
		enabled     atomic.Bool
		tickRate    chan uint32
		pollPeriod  time.Duration
		logger      tinygologger.Logger
		lastErrCode tinygoerrors.ErrorCode
	}
)

const (
	// DefaultPollPeriod is the period the dispatcher checks the receive buffer at
	DefaultPollPeriod = time.Millisecond
)

var (
	// peripheralClockPrefix is the prefix for the log message when enabling a peripheral clock
	peripheralClockPrefix = []byte("Enable peripheral clock:")

	// serialConfiguredPrefix is the prefix for the log message when configuring the console
	serialConfiguredPrefix = []byte("Console baud rate:")

	// tickRatePrefix is the prefix for the log message when setting the tick rate
	tickRatePrefix = []byte("Tick rate:")

	// motorErrorPrefix is the prefix for the log message when a motor operation fails
	motorErrorPrefix = []byte("ESC error code:")
)

// New creates a new instance of Board
//
// Parameters:
//
// uart: The console UART
// pins: The pin mapping
// motors: The ESC signal lines
// debounceSamples: The number of identical samples the button debouncer needs
// logger: The logger to log messages, may be nil
//
// Returns:
//
// An instance of Board and an error if the UART is missing
func New(
	uart *machine.UART,
	pins Pins,
	motors *MotorBank,
	debounceSamples uint8,
	logger tinygologger.Logger,
) (*Board, tinygoerrors.ErrorCode) {
	if uart == nil {
		return nil, ErrorCodeBoardNilUART
	}
	if motors == nil {
		return nil, ErrorCodeBoardNilPWM
	}

	// Buttons pull the line low when pressed
	for _, pin := range pins.Buttons {
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}

	return &Board{
		uart:       uart,
		pins:       pins,
		motors:     motors,
		debouncer:  gate.NewDebouncer(debounceSamples),
		tickRate:   make(chan uint32, 1),
		pollPeriod: DefaultPollPeriod,
		logger:     logger,
	}, tinygoerrors.ErrorCodeNil
}

// Run dispatches the tick and serial-receive interrupts until ctx is done.
func (b *Board) Run(ctx context.Context) {
	var ticks <-chan time.Time
	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	poll := time.NewTicker(b.pollPeriod)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case hz := <-b.tickRate:
			if ticker != nil {
				ticker.Stop()
			}
			ticker = time.NewTicker(time.Second / time.Duration(hz))
			ticks = ticker.C
		case <-ticks:
			b.raise(tinygoproprig.InterruptSourceTick)
		case <-poll.C:
			for b.uart.Buffered() > 0 && b.raise(tinygoproprig.InterruptSourceSerialReceive) {
			}
		}
	}
}

// raise runs the handler of source if interrupts are enabled.
func (b *Board) raise(source tinygoproprig.InterruptSource) bool {
	if !b.enabled.Load() || int(source) >= len(b.handlers) {
		return false
	}
	handler := b.handlers[source]
	if handler == nil {
		return false
	}
	handler()
	return true
}

// logErrorCode logs a failed motor operation and keeps it for LastErrorCode.
func (b *Board) logErrorCode(code tinygoerrors.ErrorCode) {
	if code == tinygoerrors.ErrorCodeNil {
		return
	}
	b.lastErrCode = code
	if b.logger != nil {
		b.logger.AddMessageWithUint32(
			motorErrorPrefix,
			uint32(code),
			true,
			true,
			false,
		)
		b.logger.Debug()
	}
}

// LastErrorCode returns the last error code of a motor operation.
func (b *Board) LastErrorCode() tinygoerrors.ErrorCode {
	return b.lastErrCode
}

// EnablePeripheralClock logs the peripheral, machine gates its own clocks on Configure.
func (b *Board) EnablePeripheralClock(peripheral tinygoproprig.Peripheral) {
	if b.logger != nil {
		b.logger.AddMessageWithUint32(
			peripheralClockPrefix,
			uint32(peripheral),
			true,
			true,
			false,
		)
		b.logger.Debug()
	}
}

// PeripheralReady always reports true, machine configures peripherals synchronously.
func (b *Board) PeripheralReady(tinygoproprig.Peripheral) bool {
	return true
}

// ConfigurePinFunction is a no-op, the UART and PWM configurations mux their own pins.
func (b *Board) ConfigurePinFunction(tinygoproprig.Pin, tinygoproprig.PinFunction) {}

// SetGPIODirection configures the LED pins of port in mask as outputs.
func (b *Board) SetGPIODirection(port tinygoproprig.Port, mask uint8) {
	var pins []machine.Pin
	switch port {
	case tinygoproprig.PortLED1:
		pins = b.pins.LEDs[0:2]
	case tinygoproprig.PortLED2:
		pins = b.pins.LEDs[2:4]
	default:
		return
	}
	for i, pin := range pins {
		if mask&(1<<i) != 0 {
			pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		}
	}
}

// SetPWMPeriod sets the period of the generator in PWM clock ticks.
func (b *Board) SetPWMPeriod(generator uint8, ticks uint32) {
	b.logErrorCode(b.motors.SetPeriod(generator, ticks))
}

// SetPWMDutyCycle sets the pulse width of the motor output channel in PWM clock ticks.
func (b *Board) SetPWMDutyCycle(channel uint8, ticks uint32) {
	b.logErrorCode(b.motors.SetPulseWidth(channel, ticks))
}

// EnablePWMOutputs enables the motor outputs in mask.
func (b *Board) EnablePWMOutputs(mask uint8) {
	b.motors.EnableOutputs(mask)
}

// EnablePWMGenerators starts the generators in mask.
func (b *Board) EnablePWMGenerators(mask uint8) {
	b.motors.EnableGenerators(mask)
}

// ConfigureSerial configures the console UART. The baud generator clock is fixed by the target.
func (b *Board) ConfigureSerial(baudRate uint32, _ config.ClockSource) {
	_ = b.uart.Configure(
		machine.UARTConfig{
			BaudRate: baudRate,
			TX:       b.pins.ConsoleTX,
			RX:       b.pins.ConsoleRX,
		},
	)

	if b.logger != nil {
		b.logger.AddMessageWithUint32(
			serialConfiguredPrefix,
			baudRate,
			true,
			true,
			false,
		)
		b.logger.Debug()
	}
}

// ReadByteNonBlocking takes a byte from the receive buffer, reporting false when it is empty.
func (b *Board) ReadByteNonBlocking() (byte, bool) {
	if b.uart.Buffered() == 0 {
		return 0, false
	}
	c, err := b.uart.ReadByte()
	if err != nil {
		return 0, false
	}
	return c, true
}

// WriteByteNonBlocking queues c into the transmit FIFO, reporting false when the FIFO is full.
func (b *Board) WriteByteNonBlocking(c byte) bool {
	if b.uart.Bus.UARTFR.HasBits(rp.UART0_UARTFR_TXFF) {
		return false
	}
	b.uart.Bus.UARTDR.Set(uint32(c))
	return true
}

// RegisterInterruptHandler sets the handler the dispatcher runs for source.
func (b *Board) RegisterInterruptHandler(source tinygoproprig.InterruptSource, handler func()) {
	if int(source) < len(b.handlers) {
		b.handlers[source] = handler
	}
}

// SetInterruptsEnabled unmasks or masks every interrupt source.
func (b *Board) SetInterruptsEnabled(enabled bool) {
	b.enabled.Store(enabled)
}

// SetTickRate restarts the tick interrupt at hz, ignoring 0.
func (b *Board) SetTickRate(hz uint32) {
	if hz == 0 {
		return
	}
	select {
	case <-b.tickRate:
	default:
	}
	b.tickRate <- hz

	if b.logger != nil {
		b.logger.AddMessageWithUint32(
			tickRatePrefix,
			hz,
			true,
			true,
			false,
		)
		b.logger.Debug()
	}
}

// PollButtonState returns the debounced and raw button patterns.
func (b *Board) PollButtonState() (uint8, uint8) {
	var raw uint8
	if !b.pins.Buttons[0].Get() {
		raw |= uint8(gate.ButtonLeft)
	}
	if !b.pins.Buttons[1].Get() {
		raw |= uint8(gate.ButtonRight)
	}
	debounced, _ := b.debouncer.Update(raw)
	return debounced, raw
}

// WriteDigitalOutput drives an LED pin, ignoring other pins.
func (b *Board) WriteDigitalOutput(pin tinygoproprig.Pin, level bool) {
	if pin < tinygoproprig.PinLED1 || pin > tinygoproprig.PinLED4 {
		return
	}
	b.pins.LEDs[pin-tinygoproprig.PinLED1].Set(level)
}
