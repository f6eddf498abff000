package tinygo_proprig

import (
	"github.com/ralvarezdev/tinygo-proprig/config"
)

type (
	// Hardware is the set of peripheral operations the rig consumes.
	//
	// Every operation is infallible once the board is up. ReadByteNonBlocking and
	// WriteByteNonBlocking are called from the serial-receive handler and must never block.
	Hardware interface {
		EnablePeripheralClock(peripheral Peripheral)
		PeripheralReady(peripheral Peripheral) bool
		ConfigurePinFunction(pin Pin, function PinFunction)
		SetGPIODirection(port Port, mask uint8)

		SetPWMPeriod(generator uint8, ticks uint32)
		SetPWMDutyCycle(channel uint8, ticks uint32)
		EnablePWMOutputs(mask uint8)
		EnablePWMGenerators(mask uint8)

		ConfigureSerial(baudRate uint32, clockSource config.ClockSource)
		ReadByteNonBlocking() (byte, bool)
		WriteByteNonBlocking(b byte) bool

		RegisterInterruptHandler(source InterruptSource, handler func())
		SetInterruptsEnabled(enabled bool)
		SetTickRate(hz uint32)

		PollButtonState() (debounced, raw uint8)
		WriteDigitalOutput(pin Pin, level bool)
	}
)
