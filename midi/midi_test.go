package midi

import (
	"errors"
	"sync"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func newTestPads(channel int) *PadController {
	return &PadController{id: "test", channel: channel, noteChan: make(chan NoteEvent, eventBuffer)}
}

func drain(ch chan NoteEvent) []NoteEvent {
	var out []NoteEvent
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestPadControllerHandle(t *testing.T) {
	pc := newTestPads(0)
	pc.handle(gomidi.NoteOn(0, 36, 100))
	pc.handle(gomidi.NoteOn(3, 38, 0)) // running-status note off
	pc.handle(gomidi.NoteOff(0, 36))
	pc.handle(gomidi.ControlChange(0, 7, 64))
	pc.handle(gomidi.NoteOn(9, 42, 1))

	got := drain(pc.noteChan)
	want := []NoteEvent{
		{Note: 36, Velocity: 100, Channel: 0},
		{Note: 42, Velocity: 1, Channel: 9},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPadControllerChannelFilter(t *testing.T) {
	pc := newTestPads(1)
	pc.handle(gomidi.NoteOn(0, 82, 90)) // MIDI channel 1
	pc.handle(gomidi.NoteOn(1, 84, 90)) // MIDI channel 2
	got := drain(pc.noteChan)
	if len(got) != 1 || got[0].Note != 82 {
		t.Fatalf("got %v, want only note 82", got)
	}
}

func TestPadControllerKeepsFastRoll(t *testing.T) {
	// Four pads hit 50 times each before the UI reads anything
	pc := newTestPads(0)
	notes := []uint8{82, 84, 80, 85}
	const hits = 200
	for i := 0; i < hits; i++ {
		pc.handle(gomidi.NoteOn(0, notes[i%len(notes)], uint8(1+i%127)))
	}
	got := drain(pc.noteChan)
	if len(got) != hits {
		t.Fatalf("got %d events, want %d", len(got), hits)
	}
	for i, ev := range got {
		if ev.Note != notes[i%len(notes)] || ev.Velocity != uint8(1+i%127) {
			t.Fatalf("event %d = %+v, want note %d velocity %d", i, ev, notes[i%len(notes)], 1+i%127)
		}
	}
}

func TestPadControllerDropsWhenFull(t *testing.T) {
	pc := newTestPads(0)
	for i := 0; i < eventBuffer+5; i++ {
		pc.handle(gomidi.NoteOn(0, uint8(i%128), 64))
	}
	got := drain(pc.noteChan)
	if len(got) != eventBuffer {
		t.Fatalf("got %d events, want %d", len(got), eventBuffer)
	}
	last := uint8((eventBuffer - 1) % 128)
	if got[0].Note != 0 || got[eventBuffer-1].Note != last {
		t.Fatalf("buffer kept wrong events: first=%d last=%d, want 0, %d", got[0].Note, got[eventBuffer-1].Note, last)
	}
}

func TestLaunchpadHandleGridOnly(t *testing.T) {
	lp := &LaunchpadController{id: "lp", noteChan: make(chan NoteEvent, eventBuffer)}
	lp.handle(gomidi.NoteOn(0, 11, 127)) // bottom-left
	lp.handle(gomidi.NoteOn(0, 19, 127)) // side button
	lp.handle(gomidi.NoteOn(0, 88, 20))  // top-right
	lp.handle(gomidi.NoteOn(0, 95, 127)) // top row
	got := drain(lp.noteChan)
	if len(got) != 2 || got[0].Note != 11 || got[1].Note != 88 {
		t.Fatalf("got %v, want notes 11 and 88", got)
	}
}

func TestLaunchpadCloseStopsLEDs(t *testing.T) {
	sent := 0
	lp := &LaunchpadController{
		id:       "lp",
		noteChan: make(chan NoteEvent, 1),
		send: func(gomidi.Message) error {
			sent++
			return nil
		},
	}

	if err := lp.SetLEDBatch([]LEDUpdate{{Row: 0, Col: 0, Color: [3]uint8{255, 0, 0}}}); err != nil {
		t.Fatalf("SetLEDBatch() error = %v", err)
	}
	if err := lp.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got, want := sent, 1+GridSize*GridSize; got != want {
		t.Fatalf("sent = %d after Close, want %d", got, want)
	}

	if err := lp.SetLEDBatch([]LEDUpdate{{Row: 1, Col: 1}}); err != nil {
		t.Fatalf("SetLEDBatch() after Close error = %v", err)
	}
	if err := lp.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if got, want := sent, 1+GridSize*GridSize; got != want {
		t.Fatalf("sent = %d after second Close, want %d", got, want)
	}
	if _, ok := <-lp.NoteEvents(); ok {
		t.Fatalf("NoteEvents() still open after Close")
	}
}

func TestLaunchpadCloseDuringFlush(t *testing.T) {
	var (
		mu      sync.Mutex
		sent    int
		lateErr error
	)
	lp := &LaunchpadController{id: "lp", noteChan: make(chan NoteEvent)}
	closed := false
	lp.send = func(gomidi.Message) error {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			lateErr = errors.New("send after close")
		}
		sent++
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			lp.SetLEDBatch([]LEDUpdate{{Row: i % GridSize, Col: 0, Color: [3]uint8{0, 255, 0}}})
		}
	}()
	lp.Close()
	mu.Lock()
	closed = true
	mu.Unlock()
	wg.Wait()

	if lateErr != nil {
		t.Fatalf("SetLEDBatch raced Close: %v", lateErr)
	}
	if sent < GridSize*GridSize {
		t.Fatalf("sent = %d, want at least the %d-LED clear", sent, GridSize*GridSize)
	}
}

func TestRowColNoteRoundTrip(t *testing.T) {
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			note := rowColToNote(row, col)
			r, c := noteToRowCol(note)
			if r != row || c != col {
				t.Fatalf("noteToRowCol(%d) = %d,%d, want %d,%d", note, r, c, row, col)
			}
		}
	}
	for _, note := range []uint8{0, 10, 19, 20, 89, 91, 127} {
		if r, c := noteToRowCol(note); r != -1 || c != -1 {
			t.Fatalf("noteToRowCol(%d) = %d,%d, want -1,-1", note, r, c)
		}
	}
	if got := LaunchpadGridNote(0, 0); got != 11 {
		t.Fatalf("LaunchpadGridNote(0,0) = %d, want 11", got)
	}
}

func TestMapRGBToLaunchpad(t *testing.T) {
	tests := []struct {
		rgb  [3]uint8
		want uint8
	}{
		{[3]uint8{0, 0, 0}, 0},
		{[3]uint8{255, 0, 0}, 5},
		{[3]uint8{250, 250, 250}, 119},
		{[3]uint8{0, 250, 0}, 21},
		{[3]uint8{25, 25, 25}, 1},
	}
	for _, tt := range tests {
		if got := mapRGBToLaunchpad(tt.rgb); got != tt.want {
			t.Fatalf("mapRGBToLaunchpad(%v) = %d, want %d", tt.rgb, got, tt.want)
		}
	}
}

func TestMatchPort(t *testing.T) {
	tests := []struct {
		name, match string
		want        bool
	}{
		{"nanoPAD2 PAD", "nanopad", true},
		{"nanoPAD2 PAD", "launchpad", false},
		{"Teensy MIDI", "", true},
		{"Midi Through Port-0", "", false},
		{"Midi Through Port-0", "through", true},
	}
	for _, tt := range tests {
		if got := matchPort(tt.name, tt.match); got != tt.want {
			t.Fatalf("matchPort(%q, %q) = %v, want %v", tt.name, tt.match, got, tt.want)
		}
	}
	if !IsLaunchpad("Launchpad X LPX MIDI") || IsLaunchpad("Launchpad X LPX DAW") {
		t.Fatalf("isLaunchpad mismatch")
	}
}

func TestPadControllerWithoutPort(t *testing.T) {
	pc, err := NewPadController("none", nil, 0)
	if err != nil {
		t.Fatalf("NewPadController() error = %v", err)
	}
	if pc.Type() != ControllerPads || pc.ID() != "none" {
		t.Fatalf("unexpected controller %v %q", pc.Type(), pc.ID())
	}
	if err := pc.SetLEDBatch([]LEDUpdate{{Row: 1}}); err != nil {
		t.Fatalf("SetLEDBatch() error = %v", err)
	}
	if err := pc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, ok := <-pc.NoteEvents(); ok {
		t.Fatalf("NoteEvents() still open after Close")
	}
}

func TestControllerTypeString(t *testing.T) {
	tests := []struct {
		typ  ControllerType
		want string
	}{
		{ControllerType(0), "unknown"},
		{ControllerPads, "pads"},
		{ControllerLaunchpad, "launchpad"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Fatalf("ControllerType(%d).String() = %q, want %q", int(tt.typ), got, tt.want)
		}
	}
}
