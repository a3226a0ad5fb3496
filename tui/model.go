package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-drawpad/debug"
	"go-drawpad/host"
	"go-drawpad/midi"
	"go-drawpad/theme"
	"go-drawpad/widgets"
)

// keyPads maps home-row keys to pad indices for playing without hardware.
// Shifted keys hit at full velocity.
const keyPads = "asdfghjk"

const (
	keyVelocity     = 100
	keyVelocityHard = 127
	hitGlowFrames   = 6
)

type Model struct {
	Host      *host.Host
	DeviceMgr *midi.DeviceManager // nil when running without MIDI
	Theme     *theme.Theme

	frameRate   time.Duration
	controllers map[string]midi.Controller
	status      string
	warn        bool // status reports a failure
	quitting    bool
}

// FrameMsg triggers one Draw of the current mode
type FrameMsg time.Time

// NoteMsg carries the note-ons a controller had queued, oldest first
type NoteMsg struct {
	Events     []midi.NoteEvent
	Controller midi.Controller
}

// controllerClosedMsg is sent when a controller's event channel closes
type controllerClosedMsg struct{ ID string }

type DeviceEventMsg midi.DeviceEvent

func NewModel(h *host.Host, deviceMgr *midi.DeviceManager, th *theme.Theme, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		Host:        h,
		DeviceMgr:   deviceMgr,
		Theme:       th,
		frameRate:   time.Second / time.Duration(fps),
		controllers: make(map[string]midi.Controller),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frameRate, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// ListenForNotes waits for the next note from c, then takes whatever else is
// already queued so a fast roll empties the channel in one message. Dispatch
// stays on the bubbletea goroutine, in arrival order.
func ListenForNotes(c midi.Controller) tea.Cmd {
	return func() tea.Msg {
		ch := c.NoteEvents()
		ev, ok := <-ch
		if !ok {
			return controllerClosedMsg{ID: c.ID()}
		}
		events := []midi.NoteEvent{ev}
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					// Deliver what we have; the next listen sees the close.
					return NoteMsg{Events: events, Controller: c}
				}
				events = append(events, ev)
			default:
				return NoteMsg{Events: events, Controller: c}
			}
		}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick()}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case FrameMsg:
		m.Host.Frame()
		if err := m.Host.FlushLEDs(); err != nil {
			m.status, m.warn = fmt.Sprintf("LED error: %v", err), true
			debug.Log("led", "flush: %v", err)
		}
		return m, m.tick()

	case NoteMsg:
		for _, ev := range msg.Events {
			m.Host.HandleNote(ev)
		}
		return m, ListenForNotes(msg.Controller)

	case controllerClosedMsg:
		debug.Log("tui", "controller %s closed", msg.ID)
		return m, nil

	case DeviceEventMsg:
		return m.handleDevice(midi.DeviceEvent(msg))
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.Host.NextMode()
		m.status, m.warn = "", false

	case "c":
		m.Host.Clear()

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key[0] - '1')
		if err := m.Host.SetMode(idx); err != nil {
			m.status, m.warn = err.Error(), true
		} else {
			m.status, m.warn = "", false
		}

	default:
		if len(key) != 1 {
			break
		}
		vel := uint8(keyVelocity)
		lower := strings.ToLower(key)
		if lower != key {
			vel = keyVelocityHard
		}
		if i := strings.Index(keyPads, lower); i >= 0 {
			if !m.Host.PressPad(i, vel) {
				m.status, m.warn = fmt.Sprintf("no pad %d", i), true
			}
		}
	}
	return m, nil
}

func (m Model) handleDevice(event midi.DeviceEvent) (tea.Model, tea.Cmd) {
	var next tea.Cmd
	if m.DeviceMgr != nil {
		next = ListenForDevices(m.DeviceMgr)
	}

	switch event.Type {
	case midi.DeviceConnected:
		c := event.Controller
		m.controllers[event.ID] = c
		// A Launchpad takes over LED feedback from plain pads
		if cur := m.Host.Controller(); cur == nil || (c.Type() == midi.ControllerLaunchpad && cur.Type() != midi.ControllerLaunchpad) {
			m.Host.SetController(c)
		}
		m.status, m.warn = "connected "+event.ID, false
		return m, tea.Batch(next, ListenForNotes(c))

	case midi.DeviceDisconnected:
		delete(m.controllers, event.ID)
		if cur := m.Host.Controller(); cur != nil && cur.ID() == event.ID {
			m.Host.SetController(nil)
		}
		m.status, m.warn = "disconnected "+event.ID, false
	}
	return m, next
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Padding(0, 1)
	if m.warn {
		statusStyle = statusStyle.Foreground(m.Theme.Warning()).Bold(true)
	}

	cur := m.Host.Current()
	deviceStatus := dimStyle.Render("no device")
	if c := m.Host.Controller(); c != nil {
		s := fmt.Sprintf("%s [%s]", c.ID(), c.Type())
		if n := len(m.controllers); n > 1 {
			s += fmt.Sprintf(" +%d", n-1)
		}
		deviceStatus = lipgloss.NewStyle().Foreground(m.Theme.Active()).Render(s)
	}

	header := headerStyle.Render(fmt.Sprintf("go-drawpad  %s (%d/%d)",
		cur.Name(), m.Host.CurrentIndex()+1, len(m.Host.Modes()))) + "  " + deviceStatus

	canvasView := widgets.RenderCanvas(m.Host.Canvas(), m.Theme)
	pads := widgets.RenderPadStrip(m.Host.Bank().Pads(), func(i int) bool {
		return m.Host.RecentlyHit(i, hitGlowFrames)
	}, m.Theme)

	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "tab / 1-9", Desc: "switch mode"},
			{Key: keyPads, Desc: "hit pads 1-8 (shift = hard)"},
			{Key: "c", Desc: "clear canvas"},
			{Key: "q", Desc: "quit"},
		}},
	}))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(canvasView)
	out.WriteString("\n\n")
	out.WriteString(pads)
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}

	return out.String()
}
