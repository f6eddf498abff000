package gate

type (
	// Debouncer turns raw button samples into a debounced state.
	//
	// A button changes its debounced state only after the raw sample disagrees with it for
	// the configured number of consecutive samples.
	Debouncer struct {
		samples  uint8
		state    uint8
		counters [8]uint8
	}
)

const (
	// DefaultDebounceSamples is the number of consecutive samples needed to accept a change
	DefaultDebounceSamples = 4
)

// NewDebouncer creates a new Debouncer with every button released.
//
// Parameters:
//
// samples: Number of consecutive disagreeing samples before a button changes state, values below 1 are treated as 1
func NewDebouncer(samples uint8) *Debouncer {
	if samples == 0 {
		samples = 1
	}
	return &Debouncer{samples: samples}
}

// Update feeds one raw sample to the Debouncer.
//
// Parameters:
//
// raw: The raw button bitmask, a set bit being a pressed button
//
// Returns:
//
// The debounced button bitmask and the bits that changed with this sample
func (d *Debouncer) Update(raw uint8) (debounced uint8, changed uint8) {
	for bit := uint8(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		if (raw^d.state)&mask == 0 {
			d.counters[bit] = 0
			continue
		}

		d.counters[bit]++
		if d.counters[bit] >= d.samples {
			d.state ^= mask
			changed |= mask
			d.counters[bit] = 0
		}
	}
	return d.state, changed
}

// State returns the current debounced button bitmask.
func (d *Debouncer) State() uint8 {
	return d.state
}
