package host

import (
	"errors"
	"testing"

	"go-drawpad/canvas"
	"go-drawpad/midi"
	"go-drawpad/mode"
	"go-drawpad/pad"
	"go-drawpad/theme"
)

type call struct {
	pad            int
	note, velocity uint8
}

// recorder is a mode that remembers everything the host does to it
type recorder struct {
	name   string
	setups int
	draws  int
	calls  []call

	drawnBeforeSetup bool
}

func (r *recorder) Name() string { return r.name }
func (r *recorder) Setup()       { r.setups++ }

func (r *recorder) Draw(c *canvas.Canvas) {
	if r.setups == 0 {
		r.drawnBeforeSetup = true
	}
	r.draws++
	c.Set(0, 0, theme.RGB{255, 255, 255})
}

func (r *recorder) HandleMidi(p int, note, velocity uint8) {
	r.calls = append(r.calls, call{p, note, velocity})
}

type fakeController struct {
	typ     midi.ControllerType
	batches [][]midi.LEDUpdate
	failing int // SetLEDBatch calls left to fail
}

func (f *fakeController) ID() string                        { return "fake" }
func (f *fakeController) Type() midi.ControllerType         { return f.typ }
func (f *fakeController) NoteEvents() <-chan midi.NoteEvent { return nil }
func (f *fakeController) Close() error                      { return nil }
func (f *fakeController) SetLEDBatch(u []midi.LEDUpdate) error {
	if f.failing > 0 {
		f.failing--
		return errors.New("port gone")
	}
	f.batches = append(f.batches, u)
	return nil
}

func kitBank() *pad.Bank {
	b := pad.NewBank()
	b.NewPad("Kick", 36, false)
	b.NewPad("Snare", 38, false)
	b.NewPad("Hat", 42, true)
	return b
}

func newHost(t *testing.T, modes ...*recorder) *Host {
	t.Helper()
	args := make([]mode.Mode, len(modes))
	for i, m := range modes {
		args[i] = m
	}
	h, err := New(kitBank(), canvas.New(16, 8), args...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h
}

func TestNewRequiresMode(t *testing.T) {
	if _, err := New(kitBank(), canvas.New(1, 1)); !errors.Is(err, ErrNoMode) {
		t.Fatalf("New() with no modes error = %v, want ErrNoMode", err)
	}
}

func TestDispatchOrderAndTriples(t *testing.T) {
	r := &recorder{name: "rec"}
	h := newHost(t, r)

	events := []midi.NoteEvent{
		{Note: 38, Velocity: 10},
		{Note: 36, Velocity: 127},
		{Note: 99, Velocity: 50}, // no pad
		{Note: 42, Velocity: 1},
		{Note: 38, Velocity: 64},
	}
	wantOK := []bool{true, true, false, true, true}
	for i, ev := range events {
		if got := h.HandleNote(ev); got != wantOK[i] {
			t.Fatalf("HandleNote(%+v) = %v, want %v", ev, got, wantOK[i])
		}
	}

	want := []call{{1, 38, 10}, {0, 36, 127}, {2, 42, 1}, {1, 38, 64}}
	if len(r.calls) != len(want) {
		t.Fatalf("got %d calls %v, want %v", len(r.calls), r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Fatalf("call %d = %+v, want %+v", i, r.calls[i], want[i])
		}
	}
}

func TestSetupOncePerMode(t *testing.T) {
	a := &recorder{name: "a"}
	b := &recorder{name: "b"}
	h := newHost(t, a, b)

	if a.setups != 1 || b.setups != 0 {
		t.Fatalf("after New setups = %d,%d, want 1,0", a.setups, b.setups)
	}

	h.Frame()
	h.NextMode()
	h.Frame()
	h.NextMode()
	h.Frame()
	if err := h.SetModeByName("b"); err != nil {
		t.Fatalf("SetModeByName(b) error = %v", err)
	}
	h.Frame()

	if a.setups != 1 || b.setups != 1 {
		t.Fatalf("setups = %d,%d, want 1,1", a.setups, b.setups)
	}
	if a.drawnBeforeSetup || b.drawnBeforeSetup {
		t.Fatalf("Draw called before Setup")
	}
	if a.draws != 2 || b.draws != 2 {
		t.Fatalf("draws = %d,%d, want 2,2", a.draws, b.draws)
	}
}

func TestEventsGoToCurrentMode(t *testing.T) {
	a := &recorder{name: "a"}
	b := &recorder{name: "b"}
	h := newHost(t, a, b)

	h.HandleNote(midi.NoteEvent{Note: 36, Velocity: 1})
	if err := h.SetMode(1); err != nil {
		t.Fatalf("SetMode(1) error = %v", err)
	}
	h.HandleNote(midi.NoteEvent{Note: 38, Velocity: 2})

	if len(a.calls) != 1 || len(b.calls) != 1 {
		t.Fatalf("calls = %d,%d, want 1,1", len(a.calls), len(b.calls))
	}
	if h.Current() != b || h.CurrentIndex() != 1 {
		t.Fatalf("Current() is not mode b")
	}
}

func TestSetModeErrors(t *testing.T) {
	h := newHost(t, &recorder{name: "a"})
	for _, i := range []int{-1, 1, 7} {
		if err := h.SetMode(i); !errors.Is(err, ErrNoMode) {
			t.Fatalf("SetMode(%d) error = %v, want ErrNoMode", i, err)
		}
	}
	if err := h.SetModeByName("zzz"); !errors.Is(err, ErrNoMode) {
		t.Fatalf("SetModeByName(zzz) error = %v, want ErrNoMode", err)
	}
}

func TestSetModeClearsCanvas(t *testing.T) {
	h := newHost(t, &recorder{name: "a"}, &recorder{name: "b"})
	h.Frame()
	if h.Canvas().Lit() == 0 {
		t.Fatalf("Frame() drew nothing")
	}
	h.SetMode(1)
	if h.Canvas().Lit() != 0 {
		t.Fatalf("SetMode did not clear canvas")
	}
}

func TestPressPad(t *testing.T) {
	r := &recorder{name: "rec"}
	h := newHost(t, r)
	if !h.PressPad(1, 100) {
		t.Fatalf("PressPad(1) = false")
	}
	if h.PressPad(5, 100) {
		t.Fatalf("PressPad(5) = true for missing pad")
	}
	if len(r.calls) != 1 || r.calls[0] != (call{1, 38, 100}) {
		t.Fatalf("calls = %v, want [{1 38 100}]", r.calls)
	}
}

func TestRecentlyHit(t *testing.T) {
	h := newHost(t, &recorder{name: "rec"})
	if h.RecentlyHit(0, 5) {
		t.Fatalf("RecentlyHit before any hit")
	}
	h.PressPad(0, 100)
	h.Frame()
	h.Frame()
	if !h.RecentlyHit(0, 2) {
		t.Fatalf("RecentlyHit(0, 2) = false two frames after hit")
	}
	h.Frame()
	if h.RecentlyHit(0, 2) {
		t.Fatalf("RecentlyHit(0, 2) = true three frames after hit")
	}
}

func TestFlushLEDsDiffs(t *testing.T) {
	h := newHost(t, &recorder{name: "rec"})
	fc := &fakeController{typ: midi.ControllerLaunchpad}
	h.SetController(fc)

	if err := h.FlushLEDs(); err != nil {
		t.Fatalf("FlushLEDs() error = %v", err)
	}
	if len(fc.batches) != 1 || len(fc.batches[0]) != midi.GridSize*midi.GridSize {
		t.Fatalf("first flush sent %v, want a full grid", fc.batches)
	}

	h.FlushLEDs()
	if len(fc.batches) != 1 {
		t.Fatalf("unchanged canvas sent another batch")
	}

	h.Frame() // lights canvas (0,0), top-left
	h.FlushLEDs()
	if len(fc.batches) != 2 || len(fc.batches[1]) != 1 {
		t.Fatalf("second flush = %v, want one update", fc.batches)
	}
	u := fc.batches[1][0]
	if u.Row != midi.GridSize-1 || u.Col != 0 {
		t.Fatalf("update at %d,%d, want top-left %d,0", u.Row, u.Col, midi.GridSize-1)
	}
}

func TestFlushLEDsRetriesAfterError(t *testing.T) {
	h := newHost(t, &recorder{name: "rec"})
	fc := &fakeController{typ: midi.ControllerLaunchpad}
	h.SetController(fc)
	h.FlushLEDs()

	h.Frame()
	fc.failing = 1
	if err := h.FlushLEDs(); err == nil {
		t.Fatalf("FlushLEDs() error = nil, want send error")
	}
	if len(fc.batches) != 1 {
		t.Fatalf("failed flush recorded a batch")
	}

	if err := h.FlushLEDs(); err != nil {
		t.Fatalf("FlushLEDs() after recovery error = %v", err)
	}
	if len(fc.batches) != 2 || len(fc.batches[1]) != 1 {
		t.Fatalf("retry sent %v, want the one changed LED", fc.batches[1:])
	}
	if u := fc.batches[1][0]; u.Row != midi.GridSize-1 || u.Col != 0 {
		t.Fatalf("retry update at %d,%d, want %d,0", u.Row, u.Col, midi.GridSize-1)
	}

	h.FlushLEDs()
	if len(fc.batches) != 2 {
		t.Fatalf("committed LEDs were sent again")
	}
}

func TestFlushLEDsSkipsPlainPads(t *testing.T) {
	h := newHost(t, &recorder{name: "rec"})
	fc := &fakeController{typ: midi.ControllerPads}
	h.SetController(fc)
	h.Frame()
	h.FlushLEDs()
	if len(fc.batches) != 0 {
		t.Fatalf("sent LEDs to a controller without LEDs")
	}
	h.SetController(nil)
	if err := h.FlushLEDs(); err != nil {
		t.Fatalf("FlushLEDs() with no controller error = %v", err)
	}
}
