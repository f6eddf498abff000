// Package sim is a host-side board running the rig without hardware: the serial link is
// an io.Reader/io.Writer pair and both interrupt sources are driven by one dispatcher
// goroutine, so handlers never nest.
package sim

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	tinygoproprig "github.com/ralvarezdev/tinygo-proprig"
	"github.com/ralvarezdev/tinygo-proprig/config"
	"github.com/ralvarezdev/tinygo-proprig/gate"
)

type (
	// Options configures the simulated board.
	Options struct {
		// Buttons is the pattern the simulated operator presses
		Buttons gate.ButtonState

		// PressAfter is the delay between board creation and the button press
		PressAfter time.Duration

		// ReadyDelay is the delay between enabling a peripheral clock and the peripheral being ready
		ReadyDelay time.Duration

		// RXDepth is the depth of the receive FIFO, bytes beyond it are lost
		RXDepth int

		// PWMClockHz converts PWM ticks into microseconds in the logs, 0 to skip the conversion
		PWMClockHz uint32

		// DebounceSamples is the number of identical samples the button debouncer needs
		DebounceSamples uint8
	}

	// Board is a simulated Hardware.
	Board struct {
		logger  *zap.Logger
		options Options
		created time.Time
		output  io.Writer

		mu          sync.Mutex
		handlers    map[tinygoproprig.InterruptSource]func()
		clocks      map[tinygoproprig.Peripheral]time.Time
		pinFuncs    map[tinygoproprig.Pin]tinygoproprig.PinFunction
		periods     map[uint8]uint32
		duties      map[uint8]uint32
		outputs     uint8
		generators  uint8
		leds        map[tinygoproprig.Pin]bool
		ledToggles  map[tinygoproprig.Pin]uint32
		debouncer   *gate.Debouncer
		limiter     *rate.Limiter
		rx          []byte
		rxOverflows uint32

		enabled  atomic.Bool
		tickRate chan uint32
		rxNotify chan struct{}
		txBytes  atomic.Uint32
		rxBytes  atomic.Uint32
	}

	// MotorState is the last pulse width written to a motor output.
	MotorState struct {
		Channel uint8
		Ticks   uint32
		Enabled bool
	}
)

const (
	// DefaultRXDepth matches a 16-byte hardware receive FIFO
	DefaultRXDepth = 16
)

// NewBoard creates a new simulated Board.
//
// Parameters:
//
// output: The writer receiving every transmitted byte
// options: The simulation options
// logger: The logger, a no-op logger is used if nil
func NewBoard(output io.Writer, options Options, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.RXDepth <= 0 {
		options.RXDepth = DefaultRXDepth
	}
	return &Board{
		logger:     logger,
		options:    options,
		created:    time.Now(),
		output:     output,
		handlers:   make(map[tinygoproprig.InterruptSource]func()),
		clocks:     make(map[tinygoproprig.Peripheral]time.Time),
		pinFuncs:   make(map[tinygoproprig.Pin]tinygoproprig.PinFunction),
		periods:    make(map[uint8]uint32),
		duties:     make(map[uint8]uint32),
		leds:       make(map[tinygoproprig.Pin]bool),
		ledToggles: make(map[tinygoproprig.Pin]uint32),
		debouncer:  gate.NewDebouncer(options.DebounceSamples),
		tickRate:   make(chan uint32, 1),
		rxNotify:   make(chan struct{}, 1),
	}
}

// Run feeds input to the serial receiver and dispatches the interrupts until ctx is done.
//
// The input is read from a separate goroutine that is not waited for, a blocked read on
// input does not keep Run from returning.
func (b *Board) Run(ctx context.Context, input io.Reader) error {
	received := make(chan byte, b.options.RXDepth)
	if input != nil {
		go b.readInput(input, received)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.pumpInput(ctx, received)
	})
	g.Go(func() error {
		return b.dispatch(ctx)
	})
	err := g.Wait()
	if err == context.Canceled || err == context.DeadlineExceeded {
		return nil
	}
	return err
}

// readInput forwards every byte of input until it is exhausted.
func (b *Board) readInput(input io.Reader, received chan<- byte) {
	buffer := make([]byte, 64)
	for {
		n, err := input.Read(buffer)
		for _, c := range buffer[:n] {
			received <- c
		}
		if err != nil {
			if err != io.EOF {
				b.logger.Warn("serial input closed", zap.Error(err))
			}
			return
		}
	}
}

// pumpInput moves received bytes into the receive FIFO at the configured baud rate.
func (b *Board) pumpInput(ctx context.Context, received <-chan byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-received:
			b.mu.Lock()
			limiter := b.limiter
			b.mu.Unlock()
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}
			b.queue(c)
		}
	}
}

// queue pushes c into the receive FIFO and raises the receive interrupt.
func (b *Board) queue(c byte) {
	b.mu.Lock()
	if len(b.rx) >= b.options.RXDepth {
		b.rxOverflows++
		b.mu.Unlock()
		b.logger.Warn("receive FIFO overflow", zap.Uint8("byte", c))
		return
	}
	b.rx = append(b.rx, c)
	b.mu.Unlock()

	select {
	case b.rxNotify <- struct{}{}:
	default:
	}
}

// dispatch runs the interrupt handlers, one at a time, while interrupts are enabled.
func (b *Board) dispatch(ctx context.Context) error {
	var ticks <-chan time.Time
	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	// Re-check the receive FIFO periodically, bytes may arrive while interrupts are masked
	poll := time.NewTicker(time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case hz := <-b.tickRate:
			if ticker != nil {
				ticker.Stop()
			}
			ticker = time.NewTicker(time.Second / time.Duration(hz))
			ticks = ticker.C
		case <-ticks:
			b.raise(tinygoproprig.InterruptSourceTick)
		case <-b.rxNotify:
			b.drainReceive()
		case <-poll.C:
			b.drainReceive()
		}
	}
}

// drainReceive raises the receive interrupt once per byte waiting in the FIFO.
func (b *Board) drainReceive() {
	for b.enabled.Load() {
		b.mu.Lock()
		pending := len(b.rx)
		b.mu.Unlock()
		if pending == 0 {
			return
		}
		if !b.raise(tinygoproprig.InterruptSourceSerialReceive) {
			return
		}
	}
}

// raise runs the handler of source if interrupts are enabled.
func (b *Board) raise(source tinygoproprig.InterruptSource) bool {
	if !b.enabled.Load() {
		return false
	}
	b.mu.Lock()
	handler := b.handlers[source]
	b.mu.Unlock()
	if handler == nil {
		return false
	}
	handler()
	return true
}

// EnablePeripheralClock starts the ready delay of the peripheral.
func (b *Board) EnablePeripheralClock(peripheral tinygoproprig.Peripheral) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clocks[peripheral]; !ok {
		b.clocks[peripheral] = time.Now()
	}
	b.logger.Debug("peripheral clock enabled", zap.Uint8("peripheral", uint8(peripheral)))
}

// PeripheralReady reports whether the ready delay of the peripheral has elapsed.
func (b *Board) PeripheralReady(peripheral tinygoproprig.Peripheral) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	enabledAt, ok := b.clocks[peripheral]
	return ok && time.Since(enabledAt) >= b.options.ReadyDelay
}

// ConfigurePinFunction records the function of the pin.
func (b *Board) ConfigurePinFunction(pin tinygoproprig.Pin, function tinygoproprig.PinFunction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pinFuncs[pin] = function
}

// SetGPIODirection logs the output pins of the port.
func (b *Board) SetGPIODirection(port tinygoproprig.Port, mask uint8) {
	b.logger.Debug("gpio direction set", zap.Uint8("port", uint8(port)), zap.Uint8("mask", mask))
}

// SetPWMPeriod records the period of the generator in PWM clock ticks.
func (b *Board) SetPWMPeriod(generator uint8, ticks uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.periods[generator] = ticks
	b.logger.Debug("pwm period set", zap.Uint8("generator", generator), zap.Uint32("ticks", ticks))
}

// SetPWMDutyCycle records the pulse width of the motor output channel in PWM clock ticks.
func (b *Board) SetPWMDutyCycle(channel uint8, ticks uint32) {
	b.mu.Lock()
	b.duties[channel] = ticks
	b.mu.Unlock()

	fields := []zap.Field{zap.Uint8("motor", channel), zap.Uint32("ticks", ticks)}
	if b.options.PWMClockHz > 0 {
		micros := float64(ticks) * 1e6 / float64(b.options.PWMClockHz)
		fields = append(fields, zap.Float64("pulse_us", micros))
	}
	b.logger.Info("motor pulse width", fields...)
}

// EnablePWMOutputs enables the motor outputs in mask.
func (b *Board) EnablePWMOutputs(mask uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outputs |= mask
	b.logger.Info("pwm outputs enabled", zap.Uint8("mask", mask))
}

// EnablePWMGenerators starts the generators in mask.
func (b *Board) EnablePWMGenerators(mask uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generators |= mask
	b.logger.Info("pwm generators enabled", zap.Uint8("mask", mask))
}

// ConfigureSerial paces the receive FIFO at the baud rate.
func (b *Board) ConfigureSerial(baudRate uint32, clockSource config.ClockSource) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// 10 bit times per byte with one start and one stop bit
	b.limiter = rate.NewLimiter(rate.Limit(float64(baudRate)/10), 1)
	b.logger.Info("serial configured",
		zap.Uint32("baud_rate", baudRate),
		zap.Stringer("clock_source", clockSource),
	)
}

// ReadByteNonBlocking takes a byte from the receive FIFO, reporting false when it is empty.
func (b *Board) ReadByteNonBlocking() (byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.rx) == 0 {
		return 0, false
	}
	c := b.rx[0]
	b.rx = b.rx[1:]
	b.rxBytes.Add(1)
	return c, true
}

// WriteByteNonBlocking writes c to the output, reporting false when the write fails.
func (b *Board) WriteByteNonBlocking(c byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.output != nil {
		if _, err := b.output.Write([]byte{c}); err != nil {
			return false
		}
	}
	b.txBytes.Add(1)
	return true
}

// RegisterInterruptHandler sets the handler the dispatcher runs for source.
func (b *Board) RegisterInterruptHandler(source tinygoproprig.InterruptSource, handler func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[source] = handler
}

// SetInterruptsEnabled unmasks or masks every interrupt source.
func (b *Board) SetInterruptsEnabled(enabled bool) {
	b.enabled.Store(enabled)
	b.logger.Debug("interrupts", zap.Bool("enabled", enabled))
	if enabled {
		select {
		case b.rxNotify <- struct{}{}:
		default:
		}
	}
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
	b.logger.Info("tick rate set", zap.Uint32("hz", hz))
}

// PollButtonState returns the debounced and raw patterns of the simulated buttons.
func (b *Board) PollButtonState() (uint8, uint8) {
	var raw uint8
	if time.Since(b.created) >= b.options.PressAfter {
		raw = uint8(b.options.Buttons)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	debounced, changed := b.debouncer.Update(raw)
	if changed != 0 {
		b.logger.Info("buttons", zap.Uint8("state", debounced))
	}
	return debounced, raw
}

// WriteDigitalOutput drives a pin and counts its changes.
func (b *Board) WriteDigitalOutput(pin tinygoproprig.Pin, level bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.leds[pin] != level {
		b.ledToggles[pin]++
	}
	b.leds[pin] = level
	b.logger.Debug("digital output", zap.Uint8("pin", uint8(pin)), zap.Bool("level", level))
}

// Motors returns the state of every motor output written so far, ordered by channel.
func (b *Board) Motors() []MotorState {
	b.mu.Lock()
	defer b.mu.Unlock()

	motors := make([]MotorState, 0, len(b.duties))
	for channel := uint8(0); channel < 8; channel++ {
		ticks, ok := b.duties[channel]
		if !ok {
			continue
		}
		motors = append(motors, MotorState{
			Channel: channel,
			Ticks:   ticks,
			Enabled: b.outputs&(1<<channel) != 0,
		})
	}
	return motors
}

// LED returns the level of the pin and the number of times it changed.
func (b *Board) LED(pin tinygoproprig.Pin) (bool, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.leds[pin], b.ledToggles[pin]
}

// TransmittedBytes returns the number of bytes written to the serial link.
func (b *Board) TransmittedBytes() uint32 {
	return b.txBytes.Load()
}

// ReceivedBytes returns the number of bytes read from the receive FIFO.
func (b *Board) ReceivedBytes() uint32 {
	return b.rxBytes.Load()
}

// Overflows returns the number of bytes lost to a full receive FIFO.
func (b *Board) Overflows() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rxOverflows
}
