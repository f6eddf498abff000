package tinygo_proprig

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"

	"github.com/ralvarezdev/tinygo-proprig/command"
	"github.com/ralvarezdev/tinygo-proprig/config"
	"github.com/ralvarezdev/tinygo-proprig/gate"
	"github.com/ralvarezdev/tinygo-proprig/heartbeat"
	"github.com/ralvarezdev/tinygo-proprig/mailbox"
	"github.com/ralvarezdev/tinygo-proprig/throttle"
)

type (
	// Rig drives the propulsion bench test rig.
	//
	// Two execution contexts touch a Rig once it runs: the interrupt handlers (OnTick and
	// OnSerialReceive) and the foreground loop (Run). The serial-receive handler only posts
	// into the mailbox; the throttle and the quit flag are owned by the foreground through
	// the interpreter, and the heartbeat is owned by the tick handler.
	Rig struct {
		cfg         config.Config
		hardware    Hardware
		calibration throttle.Calibration
		console     *Console
		interpreter *command.Interpreter
		heartbeat   *heartbeat.Scheduler
		mailbox     mailbox.Mailbox
		state       State
		ticks       atomic.Uint32
		received    atomic.Uint32
	}

	// heartbeatIndicator drives the heartbeat LED.
	heartbeatIndicator struct {
		hardware Hardware
	}
)

var (
	// clockSpeedPrefix is the prefix of the clock speed report
	clockSpeedPrefix = []byte("Clock speed: ")

	// initializingMotorsText is printed before the motor bring-up
	initializingMotorsText = []byte("Initializing motors...\r\n")

	// generatorPeriodPrefix is the prefix of the PWM generator period report
	generatorPeriodPrefix = []byte("PWM generator period: ")

	// initializationCompleteText is printed before the startup gate
	initializationCompleteText = []byte("Initialization Complete!\r\nPress ")

	// toStartText completes the startup gate prompt
	toStartText = []byte(" to start.\r\n")

	// programEndingText is printed once the foreground loop exits
	programEndingText = []byte("Program ending.\r\n")

	// lineEnding terminates every console line
	lineEnding = []byte("\r\n")
)

// Set drives the heartbeat LED.
func (h heartbeatIndicator) Set(on bool) {
	h.hardware.WriteDigitalOutput(PinLED4, on)
}

// NewRig creates a new Rig.
//
// Parameters:
//
// cfg: The rig configuration
// hardware: The hardware collaborator
//
// Returns:
//
// The Rig and an error code if the configuration is invalid or cannot derive a usable throttle
func NewRig(cfg config.Config, hardware Hardware) (*Rig, tinygoerrors.ErrorCode) {
	if hardware == nil {
		return nil, ErrorCodeRigNilHardware
	}
	if code := cfg.Validate(); code != tinygoerrors.ErrorCodeNil {
		return nil, code
	}

	// Derive the throttle bounds from the clock tree
	calibration, code := throttle.Derive(
		cfg.Clock.SpeedHz,
		cfg.Clock.PWMDivider,
		cfg.Throttle.PWMFrequencyHz,
		cfg.Throttle.CalibratedZero,
	)
	if code != tinygoerrors.ErrorCodeNil {
		return nil, code
	}
	model, code := throttle.NewModelFromCalibration(calibration, cfg.Throttle.EnforceMax)
	if code != tinygoerrors.ErrorCodeNil {
		return nil, code
	}

	console := NewConsole(hardware, 0)
	return &Rig{
		cfg:         cfg,
		hardware:    hardware,
		calibration: calibration,
		console:     console,
		interpreter: command.NewInterpreter(model, hardware, cfg.Motors.Active, console),
		heartbeat:   heartbeat.NewScheduler(cfg.Heartbeat.TicksPerToggle, heartbeatIndicator{hardware}),
	}, tinygoerrors.ErrorCodeNil
}

// Init brings up the LEDs, the console and the motor outputs with interrupts masked.
//
// Every motor output is left at zero throttle with its PWM generator stopped.
func (r *Rig) Init() tinygoerrors.ErrorCode {
	if r.state != StateNil {
		return ErrorCodeRigAlreadyInitialized
	}
	r.hardware.SetInterruptsEnabled(false)

	r.initLEDs()
	r.setLED(LEDAll, false)
	r.setLED(LEDInit, true)

	r.initConsole()
	r.console.WriteLine(clockSpeedPrefix, r.cfg.Clock.SpeedHz)

	if code := r.initMotors(); code != tinygoerrors.ErrorCodeNil {
		return code
	}
	r.state = StateInitialized
	return tinygoerrors.ErrorCodeNil
}

// initLEDs configures the LED pins and registers the tick handler.
func (r *Rig) initLEDs() {
	r.hardware.EnablePeripheralClock(PeripheralLEDPort1)
	r.hardware.EnablePeripheralClock(PeripheralLEDPort2)
	r.hardware.SetGPIODirection(PortLED1, 0b11)
	r.hardware.SetGPIODirection(PortLED2, 0b11)
	r.hardware.RegisterInterruptHandler(InterruptSourceTick, r.OnTick)
}

// initConsole configures the serial link and registers the serial-receive handler.
func (r *Rig) initConsole() {
	r.hardware.EnablePeripheralClock(PeripheralConsoleGPIO)
	r.hardware.ConfigurePinFunction(PinConsoleRX, PinFunctionUART)
	r.hardware.ConfigurePinFunction(PinConsoleTX, PinFunctionUART)
	r.hardware.EnablePeripheralClock(PeripheralConsoleUART)
	r.hardware.ConfigureSerial(r.cfg.Serial.BaudRate, r.cfg.Serial.ClockSource)
	r.hardware.RegisterInterruptHandler(InterruptSourceSerialReceive, r.OnSerialReceive)
}

// initMotors configures every motor output of the variant at zero throttle.
func (r *Rig) initMotors() tinygoerrors.ErrorCode {
	_, _ = r.console.Write(initializingMotorsText)

	r.hardware.EnablePeripheralClock(PeripheralPWM)
	r.hardware.EnablePeripheralClock(PeripheralPWMGPIO)
	if code := r.waitPeripheralReady(PeripheralPWMGPIO); code != tinygoerrors.ErrorCodeNil {
		return code
	}

	variant := r.cfg.Motors.Variant
	count := variant.MotorCount()
	for motor := uint8(0); motor < count; motor++ {
		r.hardware.ConfigurePinFunction(MotorPin(motor), PinFunctionPWM)
	}
	for generator := uint8(0); generator <= MotorGenerator(count-1); generator++ {
		r.hardware.SetPWMPeriod(generator, r.calibration.PeriodTicks)
	}
	r.console.WriteLine(generatorPeriodPrefix, r.calibration.PeriodTicks)

	zero := r.interpreter.Throttle().Zero()
	for motor := uint8(0); motor < count; motor++ {
		r.hardware.SetPWMDutyCycle(motor, zero)
	}
	r.hardware.EnablePWMOutputs(variant.OutputMask())

	_, _ = r.console.WriteString("Motors initialized for " + variant.String() + " rig.\r\n")
	return tinygoerrors.ErrorCodeNil
}

// waitPeripheralReady polls the peripheral until it is ready or the configured bound is hit.
func (r *Rig) waitPeripheralReady(peripheral Peripheral) tinygoerrors.ErrorCode {
	var deadline time.Time
	if r.cfg.Motors.ReadyTimeout > 0 {
		deadline = time.Now().Add(r.cfg.Motors.ReadyTimeout)
	}

	var polls uint32
	for !r.hardware.PeripheralReady(peripheral) {
		polls++
		if r.cfg.Motors.ReadyMaxPolls > 0 && polls >= r.cfg.Motors.ReadyMaxPolls {
			return ErrorCodeRigPeripheralNotReady
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return ErrorCodeRigPeripheralNotReady
		}
	}
	return tinygoerrors.ErrorCodeNil
}

// Start waits for the operator at the startup gate, then starts the tick, the motor
// generators and the interrupts.
//
// Parameters:
//
// ctx: The context checked by the startup gate, may be nil
//
// Returns:
//
// An error code if the Rig was not initialized or the startup gate did not pass
func (r *Rig) Start(ctx context.Context) tinygoerrors.ErrorCode {
	if r.state != StateInitialized {
		return ErrorCodeRigNotInitialized
	}

	button := r.cfg.GateButton()
	_, _ = r.console.Write(initializationCompleteText)
	_, _ = r.console.WriteString(button.String())
	_, _ = r.console.Write(toStartText)

	r.setLED(LEDAll, true)
	_, code := gate.Wait(ctx, r.hardware, button, r.cfg.GateOptions())
	r.setLED(LEDAll, false)
	if code != tinygoerrors.ErrorCodeNil {
		return code
	}

	r.hardware.SetTickRate(r.cfg.Heartbeat.TickRateHz)
	r.hardware.EnablePWMGenerators(r.activeGeneratorMask())
	r.interpreter.Menu()

	r.state = StateRunning
	r.hardware.SetInterruptsEnabled(true)
	return tinygoerrors.ErrorCodeNil
}

// activeGeneratorMask returns the PWM generators driving the active motors.
func (r *Rig) activeGeneratorMask() uint8 {
	var mask uint8
	for _, motor := range r.cfg.Motors.Active {
		mask |= 1 << MotorGenerator(motor)
	}
	return mask
}

// Step runs one foreground iteration: it takes the pending command, if any, and applies it.
//
// Returns:
//
// The Result of the applied command and whether a command was pending
func (r *Rig) Step() (command.Result, bool) {
	b, ok := r.mailbox.Take()
	if !ok {
		return command.Result{}, false
	}
	return r.interpreter.Apply(b), true
}

// Run is the foreground loop. It applies the received commands until the quit command
// is received or ctx is done, then zeroes the throttle and masks the interrupts.
//
// Parameters:
//
// ctx: The context checked once per iteration, may be nil
//
// Returns:
//
// ErrorCodeRigCanceled if ctx ended the loop, an error code if the Rig is not running
func (r *Rig) Run(ctx context.Context) tinygoerrors.ErrorCode {
	if r.state != StateRunning {
		return ErrorCodeRigNotRunning
	}

	code := tinygoerrors.ErrorCodeNil
	for !r.interpreter.QuitRequested() {
		if ctx != nil && ctx.Err() != nil {
			code = ErrorCodeRigCanceled
			break
		}
		if _, ok := r.Step(); !ok {
			r.idle()
		}
	}

	r.shutdown()
	return code
}

// Execute initializes, starts and runs the Rig.
func (r *Rig) Execute(ctx context.Context) tinygoerrors.ErrorCode {
	if code := r.Init(); code != tinygoerrors.ErrorCodeNil {
		return code
	}
	if code := r.Start(ctx); code != tinygoerrors.ErrorCodeNil {
		return code
	}
	return r.Run(ctx)
}

// idle yields the processor between two iterations that found no command.
func (r *Rig) idle() {
	if r.cfg.Loop.IdleInterval > 0 {
		time.Sleep(r.cfg.Loop.IdleInterval)
		return
	}
	runtime.Gosched()
}

// shutdown zeroes the throttle, turns the LEDs off and masks the interrupts.
func (r *Rig) shutdown() {
	r.interpreter.Apply(byte(command.CommandZero))
	_, _ = r.console.Write(programEndingText)
	r.setLED(LEDAll, false)
	r.hardware.SetInterruptsEnabled(false)
	r.state = StateStopped
}

// OnTick is the periodic tick handler. It must never block.
func (r *Rig) OnTick() {
	r.ticks.Add(1)
	r.heartbeat.Tick()
}

// OnSerialReceive is the serial-receive handler. It reads one byte, echoes it back and
// posts it to the mailbox for the foreground loop. It must never block.
func (r *Rig) OnSerialReceive() {
	b, ok := r.hardware.ReadByteNonBlocking()
	if !ok {
		return
	}
	r.received.Add(1)
	r.hardware.WriteByteNonBlocking(b)
	r.mailbox.Post(b)
}

// setLED drives every pin of the LED.
func (r *Rig) setLED(led LED, on bool) {
	for _, pin := range led.Pins() {
		r.hardware.WriteDigitalOutput(pin, on)
	}
}

// State returns the lifecycle state of the Rig.
func (r *Rig) State() State {
	return r.state
}

// Calibration returns the throttle calibration derived at creation.
func (r *Rig) Calibration() throttle.Calibration {
	return r.calibration
}

// Throttle returns the current throttle pulse width. It must only be called from the foreground.
func (r *Rig) Throttle() uint32 {
	return r.interpreter.Throttle().Current()
}

// Ticks returns the number of ticks handled.
func (r *Rig) Ticks() uint32 {
	return r.ticks.Load()
}

// Received returns the number of bytes received on the serial link.
func (r *Rig) Received() uint32 {
	return r.received.Load()
}

// Dropped returns the number of received commands overwritten before the foreground took them.
func (r *Rig) Dropped() uint32 {
	return r.mailbox.Dropped()
}

// HeartbeatToggles returns the number of heartbeat toggles. It must not be called while ticks are handled.
func (r *Rig) HeartbeatToggles() uint32 {
	return r.heartbeat.Toggles()
}

// Console returns the Console writing to the serial link.
func (r *Rig) Console() *Console {
	return r.console
}

// Config returns the configuration of the Rig.
func (r *Rig) Config() config.Config {
	return r.cfg
}
