package tinygo_proprig

import (
	"sync"

	"github.com/ralvarezdev/tinygo-proprig/config"
)

// fakeHardware is an in-memory Hardware recording every operation.
type fakeHardware struct {
	mu sync.Mutex

	clocks      []Peripheral
	notReady    map[Peripheral]bool
	pinFuncs    map[Pin]PinFunction
	periods     map[uint8]uint32
	duties      map[uint8]uint32
	dutyWrites  int
	outputs     uint8
	generators  uint8
	baudRate    uint32
	clockSource config.ClockSource
	tickRate    uint32
	leds        map[Pin]bool
	ledWrites   map[Pin]int
	buttons     uint8
	polls       int
	pressAfter  int

	handlers          map[InterruptSource]func()
	interruptsEnabled bool

	rx     []byte
	tx     []byte
	txFull bool
}

func newFakeHardware() *fakeHardware {
	return &fakeHardware{
		notReady:  make(map[Peripheral]bool),
		pinFuncs:  make(map[Pin]PinFunction),
		periods:   make(map[uint8]uint32),
		duties:    make(map[uint8]uint32),
		leds:      make(map[Pin]bool),
		ledWrites: make(map[Pin]int),
		handlers:  make(map[InterruptSource]func()),
	}
}

func (f *fakeHardware) EnablePeripheralClock(peripheral Peripheral) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clocks = append(f.clocks, peripheral)
}

func (f *fakeHardware) PeripheralReady(peripheral Peripheral) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.notReady[peripheral]
}

func (f *fakeHardware) ConfigurePinFunction(pin Pin, function PinFunction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pinFuncs[pin] = function
}

func (f *fakeHardware) SetGPIODirection(Port, uint8) {}

func (f *fakeHardware) SetPWMPeriod(generator uint8, ticks uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods[generator] = ticks
}

func (f *fakeHardware) SetPWMDutyCycle(channel uint8, ticks uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duties[channel] = ticks
	f.dutyWrites++
}

func (f *fakeHardware) EnablePWMOutputs(mask uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs = mask
}

func (f *fakeHardware) EnablePWMGenerators(mask uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generators = mask
}

func (f *fakeHardware) ConfigureSerial(baudRate uint32, clockSource config.ClockSource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baudRate = baudRate
	f.clockSource = clockSource
}

func (f *fakeHardware) ReadByteNonBlocking() (byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rx) == 0 {
		return 0, false
	}
	b := f.rx[0]
	f.rx = f.rx[1:]
	return b, true
}

func (f *fakeHardware) WriteByteNonBlocking(b byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.txFull {
		return false
	}
	f.tx = append(f.tx, b)
	return true
}

func (f *fakeHardware) RegisterInterruptHandler(source InterruptSource, handler func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[source] = handler
}

func (f *fakeHardware) SetInterruptsEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interruptsEnabled = enabled
}

func (f *fakeHardware) SetTickRate(hz uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickRate = hz
}

func (f *fakeHardware) PollButtonState() (uint8, uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.polls > f.pressAfter {
		return f.buttons, f.buttons
	}
	return 0, 0
}

func (f *fakeHardware) WriteDigitalOutput(pin Pin, level bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leds[pin] = level
	f.ledWrites[pin]++
}

// fire raises the interrupt if interrupts are enabled, the handler running on the caller goroutine.
func (f *fakeHardware) fire(source InterruptSource) bool {
	f.mu.Lock()
	handler := f.handlers[source]
	enabled := f.interruptsEnabled
	f.mu.Unlock()

	if !enabled || handler == nil {
		return false
	}
	handler()
	return true
}

// receive queues b on the serial line and raises the serial-receive interrupt.
func (f *fakeHardware) receive(b byte) bool {
	f.mu.Lock()
	f.rx = append(f.rx, b)
	f.mu.Unlock()
	return f.fire(InterruptSourceSerialReceive)
}

func (f *fakeHardware) transmitted() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.tx)
}

func (f *fakeHardware) clearTransmitted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tx = nil
}

func (f *fakeHardware) duty(channel uint8) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duties[channel]
}

func (f *fakeHardware) led(pin Pin) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leds[pin]
}
