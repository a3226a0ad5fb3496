package midi

// ControllerType identifies the kind of controller. The zero value prints as
// "unknown".
type ControllerType int

const (
	ControllerPads ControllerType = iota + 1
	ControllerLaunchpad
)

func (t ControllerType) String() string {
	switch t {
	case ControllerPads:
		return "pads"
	case ControllerLaunchpad:
		return "launchpad"
	default:
		return "unknown"
	}
}

// NoteEvent is a note-on from a pad. Velocity is always > 0.
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8 // 0-15
}

// LEDUpdate sets one LED on a grid controller. Row 0 is the bottom row.
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8 // MIDI channel of the NoteOn, ChannelStatic for solid color
}

// Controller is the interface for MIDI pad devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Input events from the controller
	NoteEvents() <-chan NoteEvent

	// Output to the controller (no-op for devices without LEDs)
	SetLEDBatch(updates []LEDUpdate) error

	// Lifecycle
	Close() error
}

// ChannelStatic lights an LED with a solid color
const ChannelStatic uint8 = 0

// eventBuffer holds note-ons between driver callbacks and the UI loop. The UI
// drains everything queued per wakeup, so this only has to cover a stalled
// frame during a fast roll.
const eventBuffer = 512
