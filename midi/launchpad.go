package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go-drawpad/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// GridSize is the Launchpad X main grid (8x8, no side/top buttons)
const GridSize = 8

var ledSendCount uint64

// LaunchpadController handles a Novation Launchpad X in programmer mode.
// Grid pads arrive as plain note-ons so they can be mapped in the pad bank.
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	channel  int
	stopFunc func()

	// mu guards send; Close clears the grid and nils send under it so a
	// frame flush can't write to a closed port
	mu   sync.Mutex
	send func(msg gomidi.Message) error

	noteChan chan NoteEvent
	closed   bool
}

// NewLaunchpadController creates and configures a Launchpad
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out, channel int) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:       id,
		inPort:   inPort,
		outPort:  outPort,
		channel:  channel,
		noteChan: make(chan NoteEvent, eventBuffer),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send

		// Programmer mode: F0 00 20 29 02 0C 00 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))

		// Brightness to maximum: F0 00 20 29 02 0C 08 <brightness> F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))

		// External LED feedback: F0 00 20 29 02 0C 0A 01 01 F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}))
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

// handle forwards grid note-ons; side and top buttons are ignored
func (lp *LaunchpadController) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}
	if lp.channel != 0 && int(channel)+1 != lp.channel {
		return
	}
	if row, _ := noteToRowCol(note); row < 0 {
		return
	}
	emit(lp.noteChan, NoteEvent{Note: note, Velocity: velocity, Channel: channel}, lp.id)
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent {
	return lp.noteChan
}

// SetLEDBatch sends one NoteOn per update; callers diff to keep batches small.
// After Close it does nothing.
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.sendBatch(updates)
}

// sendBatch requires lp.mu
func (lp *LaunchpadController) sendBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		if u.Row < 0 || u.Row >= GridSize || u.Col < 0 || u.Col >= GridSize {
			continue
		}
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		if err := lp.send(gomidi.NoteOn(u.Channel, note, color)); err != nil {
			return fmt.Errorf("led %d,%d: %w", u.Row, u.Col, err)
		}
	}

	count := atomic.AddUint64(&ledSendCount, uint64(len(updates)))
	if count%100 < uint64(len(updates)) {
		debug.Log("lp-send", "batch count=%d (this batch=%d)", count, len(updates))
	}

	return nil
}

// mapRGBToLaunchpad finds the nearest Launchpad X palette color for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	// Format: {velocity, R, G, B}
	palette := [][4]uint8{
		{0, 0, 0, 0},         // off
		{1, 30, 30, 30},      // dim grey
		{5, 255, 0, 0},       // red
		{6, 255, 80, 80},     // bright red
		{7, 180, 60, 60},     // dim red
		{9, 255, 100, 0},     // orange
		{11, 180, 80, 40},    // dim orange
		{13, 255, 200, 0},    // yellow
		{17, 0, 180, 0},      // green
		{19, 0, 100, 0},      // dim green
		{21, 0, 255, 0},      // bright green
		{37, 0, 200, 200},    // cyan
		{43, 40, 60, 120},    // dim blue
		{45, 0, 100, 255},    // blue
		{47, 80, 150, 255},   // bright blue
		{49, 150, 0, 200},    // purple
		{53, 255, 80, 180},   // pink
		{78, 100, 100, 255},  // light blue
		{84, 255, 150, 50},   // bright orange
		{87, 150, 255, 100},  // lime
		{97, 180, 180, 60},   // dim yellow
		{119, 255, 255, 255}, // white
	}

	bestMatch := uint8(0)
	bestDist := 1 << 30

	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])

	for _, p := range palette {
		pr, pg, pb := int(p[1]), int(p[2]), int(p[3])
		dist := (r-pr)*(r-pr) + (g-pg)*(g-pg) + (b-pb)*(b-pb)
		if dist < bestDist {
			bestDist = dist
			bestMatch = p[0]
		}
	}

	return bestMatch
}

// Close blanks the grid, stops input and closes NoteEvents. Calling it again
// is a no-op.
func (lp *LaunchpadController) Close() error {
	lp.mu.Lock()
	if lp.closed {
		lp.mu.Unlock()
		return nil
	}
	lp.closed = true
	var err error
	if lp.send != nil {
		updates := make([]LEDUpdate, 0, GridSize*GridSize)
		for row := 0; row < GridSize; row++ {
			for col := 0; col < GridSize; col++ {
				updates = append(updates, LEDUpdate{Row: row, Col: col})
			}
		}
		err = lp.sendBatch(updates)
		lp.send = nil
	}
	lp.mu.Unlock()

	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.noteChan)
	return err
}

// Launchpad X programmer-mode grid: row 0 (bottom) = notes 11-18,
// row 7 (top) = notes 81-88.

func rowColToNote(row, col int) uint8 {
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row >= GridSize || col < 0 || col >= GridSize {
		return -1, -1
	}
	return row, col
}

// LaunchpadGridNote returns the note a grid pad sends, for building pad banks
func LaunchpadGridNote(row, col int) uint8 {
	return rowColToNote(row, col)
}
