package midi

import (
	"fmt"

	"go-drawpad/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PadController handles a generic MIDI pad controller (input only)
type PadController struct {
	id       string
	inPort   drivers.In
	channel  int // 1-16, 0 = any
	stopFunc func()

	noteChan chan NoteEvent
}

// NewPadController listens on inPort. channel filters input (1-16), 0 accepts all.
func NewPadController(id string, inPort drivers.In, channel int) (*PadController, error) {
	pc := &PadController{
		id:       id,
		inPort:   inPort,
		channel:  channel,
		noteChan: make(chan NoteEvent, eventBuffer),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			pc.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		pc.stopFunc = stop
	}

	return pc, nil
}

// handle runs on the driver's goroutine
func (pc *PadController) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}
	if pc.channel != 0 && int(channel)+1 != pc.channel {
		return
	}
	emit(pc.noteChan, NoteEvent{Note: note, Velocity: velocity, Channel: channel}, pc.id)
}

// emit never blocks the driver callback; a full buffer drops the event
func emit(ch chan NoteEvent, ev NoteEvent, id string) {
	select {
	case ch <- ev:
	default:
		debug.Log("midi", "%s: event buffer full, dropped note %d", id, ev.Note)
	}
}

func (pc *PadController) ID() string {
	return pc.id
}

func (pc *PadController) Type() ControllerType {
	return ControllerPads
}

func (pc *PadController) NoteEvents() <-chan NoteEvent {
	return pc.noteChan
}

// SetLEDBatch is a no-op for plain pads (no visual feedback)
func (pc *PadController) SetLEDBatch(updates []LEDUpdate) error {
	return nil
}

func (pc *PadController) Close() error {
	if pc.stopFunc != nil {
		pc.stopFunc()
	}
	close(pc.noteChan)
	return nil
}
