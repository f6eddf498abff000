package tinygo_proprig

import (
	"sync/atomic"

	tinygobuffers "github.com/ralvarezdev/tinygo-buffers"
)

type (
	// Console writes foreground text to the serial link byte by byte.
	Console struct {
		hardware Hardware
		maxSpins uint32
		dropped  atomic.Uint32
	}
)

const (
	// DefaultConsoleMaxSpins is the number of attempts to queue a byte before dropping it
	DefaultConsoleMaxSpins = 1 << 16
)

// NewConsole creates a new Console on top of the hardware serial link.
//
// Parameters:
//
// hardware: The hardware collaborator
// maxSpins: Attempts to queue a byte into a full transmitter before dropping it, 0 for the default
func NewConsole(hardware Hardware, maxSpins uint32) *Console {
	if maxSpins == 0 {
		maxSpins = DefaultConsoleMaxSpins
	}
	return &Console{
		hardware: hardware,
		maxSpins: maxSpins,
	}
}

// Write queues every byte of p into the serial transmitter.
//
// Write must only be called from the foreground: it spins while the transmitter is full.
// Bytes still refused after maxSpins attempts are dropped and counted.
func (c *Console) Write(p []byte) (int, error) {
	for _, b := range p {
		var spins uint32
		for !c.hardware.WriteByteNonBlocking(b) {
			spins++
			if spins >= c.maxSpins {
				c.dropped.Add(1)
				break
			}
		}
	}
	return len(p), nil
}

// WriteString queues every byte of s into the serial transmitter.
func (c *Console) WriteString(s string) (int, error) {
	return c.Write([]byte(s))
}

// WriteLine queues the prefix, the decimal value and a CR/LF line ending.
func (c *Console) WriteLine(prefix []byte, value uint32) {
	line := make([]byte, 0, len(prefix)+12)
	line = append(line, prefix...)
	line = append(line, tinygobuffers.UintToDecimal(uint64(value))...)
	line = append(line, lineEnding...)
	_, _ = c.Write(line)
}

// Dropped returns the number of bytes dropped because the transmitter stayed full.
func (c *Console) Dropped() uint32 {
	return c.dropped.Load()
}
