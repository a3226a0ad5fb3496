package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drawpad/canvas"
	"go-drawpad/pad"
	"go-drawpad/theme"
)

// RenderCanvas draws the canvas one terminal cell per canvas cell. Runs of the
// same colour share one styled span.
func RenderCanvas(c *canvas.Canvas, th *theme.Theme) string {
	blank := lipgloss.NewStyle().Foreground(th.Muted())
	lines := make([]string, 0, c.Height())

	for y := 0; y < c.Height(); y++ {
		var line strings.Builder
		runStart := 0
		for x := 1; x <= c.Width(); x++ {
			if x < c.Width() && c.At(x, y) == c.At(runStart, y) {
				continue
			}
			line.WriteString(renderRun(c.At(runStart, y), x-runStart, th, blank))
			runStart = x
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func renderRun(rgb theme.RGB, n int, th *theme.Theme, blank lipgloss.Style) string {
	if rgb == (theme.RGB{}) {
		return blank.Render(strings.Repeat(string(th.Symbols.Blank), n))
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Hex(rgb)))
	return style.Render(strings.Repeat(string(th.Symbols.Cell), n))
}

// RenderPadStrip renders one label per pad, lit when hit(index) is true.
// Aux pads carry a marker after the note.
func RenderPadStrip(pads []*pad.Pad, hit func(index int) bool, th *theme.Theme) string {
	on := lipgloss.NewStyle().Foreground(th.Success()).Bold(true)
	off := lipgloss.NewStyle().Foreground(th.Muted())

	items := make([]string, 0, len(pads))
	for _, p := range pads {
		label := fmt.Sprintf("%s(%d)", p.Name, p.Note)
		if p.IsAux {
			label += string(th.Symbols.AuxMark)
		}
		if hit(p.Index) {
			items = append(items, on.Render(string(th.Symbols.PadOn)+" "+label))
		} else {
			items = append(items, off.Render(string(th.Symbols.PadOff)+" "+label))
		}
	}
	return strings.Join(items, "  ")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
