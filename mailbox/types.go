// Package mailbox hands the most recently received command byte from the serial-receive
// context to the foreground loop.
package mailbox

import (
	"sync/atomic"
)

type (
	// Mailbox is a single-slot holding area for one pending byte.
	//
	// Post is the only writer and Take the only reader-and-clearer; both are a single atomic
	// exchange, so Post never blocks and can be called from an interrupt handler.
	Mailbox struct {
		slot    atomic.Uint32
		posted  atomic.Uint32
		dropped atomic.Uint32
	}
)

const (
	// pendingFlag marks the slot as holding an unconsumed byte
	pendingFlag uint32 = 1 << 8

	// byteMask extracts the byte from the slot
	byteMask uint32 = 0xff
)

// Post stores b in the slot, overwriting any byte that was not yet taken.
//
// Returns:
//
// Whether a pending byte was overwritten and lost
func (m *Mailbox) Post(b byte) bool {
	previous := m.slot.Swap(pendingFlag | uint32(b))
	m.posted.Add(1)
	if previous&pendingFlag == 0 {
		return false
	}
	m.dropped.Add(1)
	return true
}

// Take removes the pending byte from the slot.
//
// Returns:
//
// The pending byte and whether there was one
func (m *Mailbox) Take() (byte, bool) {
	value := m.slot.Swap(0)
	if value&pendingFlag == 0 {
		return 0, false
	}
	return byte(value & byteMask), true
}

// Pending returns whether a byte is waiting to be taken.
func (m *Mailbox) Pending() bool {
	return m.slot.Load()&pendingFlag != 0
}

// Posted returns the number of bytes posted since creation.
func (m *Mailbox) Posted() uint32 {
	return m.posted.Load()
}

// Dropped returns the number of bytes overwritten before they were taken.
func (m *Mailbox) Dropped() uint32 {
	return m.dropped.Load()
}
