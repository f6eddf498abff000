package gate

type (
	// Poller samples the operator buttons.
	Poller interface {
		// PollButtonState returns the debounced and the raw button bitmasks
		PollButtonState() (debounced, raw uint8)
	}
)
