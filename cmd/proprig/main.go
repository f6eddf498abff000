//go:build tinygo && (rp2040 || rp2350)

// Command proprig is the propulsion test rig firmware.
package main

import (
	"context"
	_ "embed"
	"time"

	"machine"

	tinygoerrors "github.com/ralvarezdev/tinygo-errors"
	tinygologger "github.com/ralvarezdev/tinygo-logger"

	tinygoproprig "github.com/ralvarezdev/tinygo-proprig"
	"github.com/ralvarezdev/tinygo-proprig/board"
	"github.com/ralvarezdev/tinygo-proprig/config"
)

const (
	// loggerBufferSize is the size of the debug message buffer, written to the USB console
	loggerBufferSize = 128
)

var (
	//go:embed rig.yaml
	rigConfig []byte

	// pins is the rig wiring
	pins = board.Pins{
		LEDs:      [4]machine.Pin{machine.GP25, machine.GP18, machine.GP19, machine.GP20},
		Buttons:   [2]machine.Pin{machine.GP14, machine.GP15},
		ConsoleTX: machine.GP12,
		ConsoleRX: machine.GP13,
	}

	// motorOutputs are the ESC signal lines, two per PWM slice
	motorOutputs = []board.MotorOutput{
		{PWM: machine.PWM0, Pin: machine.GP0},
		{PWM: machine.PWM0, Pin: machine.GP1},
		{PWM: machine.PWM1, Pin: machine.GP2},
		{PWM: machine.PWM1, Pin: machine.GP3},
		{PWM: machine.PWM2, Pin: machine.GP4},
		{PWM: machine.PWM2, Pin: machine.GP5},
	}
)

func main() {
	logger := tinygologger.NewDefaultLogger(loggerBufferSize)

	cfg, code := config.Parse(rigConfig)
	if code != tinygoerrors.ErrorCodeNil {
		halt(logger, code)
	}

	// Ramp the ESC outputs only when a step is configured
	var rampStep *uint32
	if cfg.Motors.RampStep > 0 {
		rampStep = &cfg.Motors.RampStep
	}

	motors, code := board.NewMotorBank(
		motorOutputs[:cfg.Motors.Variant.MotorCount()],
		cfg.PWMClockHz(),
		rampStep,
		logger,
	)
	if code != tinygoerrors.ErrorCodeNil {
		halt(logger, code)
	}

	hardware, code := board.New(machine.UART0, pins, motors, cfg.Gate.DebounceSamples, logger)
	if code != tinygoerrors.ErrorCodeNil {
		halt(logger, code)
	}

	rig, code := tinygoproprig.NewRig(cfg, hardware)
	if code != tinygoerrors.ErrorCodeNil {
		halt(logger, code)
	}

	ctx := context.Background()
	go hardware.Run(ctx)
	halt(logger, rig.Execute(ctx))
}

// halt parks the firmware, reporting the error code on the debug output.
func halt(logger tinygologger.Logger, code tinygoerrors.ErrorCode) {
	for {
		if code != tinygoerrors.ErrorCodeNil {
			logger.AddErrorCode(code, true)
			logger.Error()
		}
		time.Sleep(5 * time.Second)
	}
}
