package tinygo_proprig

type (
	// Peripheral identifies a peripheral whose clock is gated.
	Peripheral uint8

	// Port identifies a GPIO port.
	Port uint8

	// Pin identifies a board pin used by the rig.
	Pin uint8

	// PinFunction is the function multiplexed onto a pin.
	PinFunction uint8

	// InterruptSource identifies one of the two interrupt sources of the rig.
	InterruptSource uint8

	// LED identifies a user LED, LEDAll addressing every one of them.
	LED uint8

	// State is the lifecycle state of a Rig.
	State uint8
)

const (
	PeripheralNil Peripheral = iota
	PeripheralLEDPort1
	PeripheralLEDPort2
	PeripheralConsoleGPIO
	PeripheralConsoleUART
	PeripheralPWM
	PeripheralPWMGPIO
)

const (
	PortNil Port = iota
	PortLED1
	PortLED2
)

const (
	PinNil Pin = iota
	PinLED1
	PinLED2
	PinLED3
	PinLED4
	PinConsoleRX
	PinConsoleTX
	PinMotor1
	PinMotor2
	PinMotor3
	PinMotor4
	PinMotor5
	PinMotor6
)

const (
	PinFunctionNil PinFunction = iota
	PinFunctionUART
	PinFunctionPWM
)

const (
	InterruptSourceNil InterruptSource = iota
	InterruptSourceTick
	InterruptSourceSerialReceive
)

const (
	LEDNil LED = iota
	LEDInit
	LED2
	LED3
	LEDHeartbeat
	LEDAll
)

const (
	StateNil State = iota
	StateInitialized
	StateRunning
	StateStopped
)

// MotorPin returns the pin of the motor output, PinNil if out of range.
func MotorPin(motor uint8) Pin {
	if motor >= 6 {
		return PinNil
	}
	return PinMotor1 + Pin(motor)
}

// MotorGenerator returns the PWM generator driving the motor output.
func MotorGenerator(motor uint8) uint8 {
	return motor / 2
}

// Pins returns the pins lit by the LED.
func (l LED) Pins() []Pin {
	switch l {
	case LEDInit:
		return []Pin{PinLED1}
	case LED2:
		return []Pin{PinLED2}
	case LED3:
		return []Pin{PinLED3}
	case LEDHeartbeat:
		return []Pin{PinLED4}
	case LEDAll:
		return []Pin{PinLED1, PinLED2, PinLED3, PinLED4}
	default:
		return nil
	}
}

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "nil"
	}
}
