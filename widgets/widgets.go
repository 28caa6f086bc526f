package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderPadRow renders a row of colored pads with spacing
func RenderPadRow(colors [][3]uint8) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c))
	}
	return out.String()
}

// Fill returns how many of width cells a value in [lo, hi] fills
func Fill(v, lo, hi float64, width int) int {
	if width <= 0 || hi <= lo || math.IsNaN(v) {
		return 0
	}
	n := int(math.Round((v - lo) / (hi - lo) * float64(width)))
	return max(0, min(n, width))
}

// RenderMeter renders "label ████░░░░ value" with the bar scaled to [lo, hi]
func RenderMeter(label string, v, lo, hi float64, width int, full, empty rune) string {
	n := Fill(v, lo, hi, width)
	bar := strings.Repeat(string(full), n) + strings.Repeat(string(empty), width-n)
	return fmt.Sprintf("%-20s %s %7.2f", label, bar, v)
}

// RenderSelector lists names on one line, marking the active one
func RenderSelector(names []string, active int, on, off rune, activeStyle lipgloss.Style) string {
	parts := make([]string, len(names))
	for i, name := range names {
		if i == active {
			parts[i] = activeStyle.Render(fmt.Sprintf("%c %s", on, name))
		} else {
			parts[i] = fmt.Sprintf("%c %s", off, name)
		}
	}
	return strings.Join(parts, "  ")
}

// RenderNotes renders held notes as "● C4 ● E4", or idle when none are held
func RenderNotes(notes []uint8, held, idle rune) string {
	if len(notes) == 0 {
		return string(idle)
	}
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = fmt.Sprintf("%c %s", held, NoteName(n))
	}
	return strings.Join(parts, " ")
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the scientific pitch name, middle C (60) being C4
func NoteName(n uint8) string {
	return fmt.Sprintf("%s%d", noteNames[n%12], int(n)/12-1)
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
