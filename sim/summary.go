package sim

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	tinygoproprig "github.com/ralvarezdev/tinygo-proprig"
)

// Summary is the state of a finished simulated run.
type Summary struct {
	RunID            string
	Variant          string
	State            string
	ErrorCode        uint16
	Throttle         uint32
	PWMClockHz       uint32
	Motors           []MotorState
	Ticks            uint32
	HeartbeatToggles uint32
	Received         uint32
	Dropped          uint32
	Transmitted      uint32
	ConsoleDropped   uint32
	Overflows        uint32
}

// NewSummary collects the summary of a run. The rig must no longer be running.
func NewSummary(runID string, rig *tinygoproprig.Rig, board *Board, code uint16) Summary {
	cfg := rig.Config()
	_, toggles := board.LED(tinygoproprig.PinLED4)
	return Summary{
		RunID:            runID,
		Variant:          cfg.Motors.Variant.String(),
		State:            rig.State().String(),
		ErrorCode:        code,
		Throttle:         rig.Throttle(),
		PWMClockHz:       cfg.PWMClockHz(),
		Motors:           board.Motors(),
		Ticks:            rig.Ticks(),
		HeartbeatToggles: toggles,
		Received:         rig.Received(),
		Dropped:          rig.Dropped(),
		Transmitted:      board.TransmittedBytes(),
		ConsoleDropped:   rig.Console().Dropped(),
		Overflows:        board.Overflows(),
	}
}

// Render renders the summary as two ASCII tables, the motors then the counters.
func (s Summary) Render() string {
	motors := table.NewWriter()
	motors.SetStyle(table.StyleRounded)
	motors.SetTitle(fmt.Sprintf("%s rig, run %s", s.Variant, s.RunID))
	motors.AppendHeader(table.Row{"Motor", "Pulse (ticks)", "Pulse (us)", "Output"})
	for _, motor := range s.Motors {
		output := "disabled"
		if motor.Enabled {
			output = "enabled"
		}
		motors.AppendRow(table.Row{
			motor.Channel + 1,
			motor.Ticks,
			s.micros(motor.Ticks),
			output,
		})
	}
	motors.AppendFooter(table.Row{"", "", "throttle", s.Throttle})

	counters := table.NewWriter()
	counters.SetStyle(table.StyleRounded)
	counters.AppendHeader(table.Row{"Counter", "Value"})
	counters.AppendRows([]table.Row{
		{"state", s.State},
		{"error code", s.ErrorCode},
		{"ticks", s.Ticks},
		{"heartbeat toggles", s.HeartbeatToggles},
		{"bytes received", s.Received},
		{"commands dropped", s.Dropped},
		{"bytes transmitted", s.Transmitted},
		{"console bytes dropped", s.ConsoleDropped},
		{"receive overflows", s.Overflows},
	})

	return motors.Render() + "\n" + counters.Render() + "\n"
}

// micros formats a pulse width in microseconds.
func (s Summary) micros(ticks uint32) string {
	if s.PWMClockHz == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", float64(ticks)*1e6/float64(s.PWMClockHz))
}
