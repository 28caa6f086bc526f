package widgets

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFill(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		width     int
		want      int
	}{
		{0, 0, 1, 10, 0},
		{1, 0, 1, 10, 10},
		{0.5, 0, 1, 10, 5},
		{2, 0, 1, 10, 10},
		{-1, 0, 1, 10, 0},
		{180, 0, 360, 8, 4},
		{0.5, 1, 1, 10, 0},
		{math.NaN(), 0, 1, 10, 0},
		{0.5, 0, 1, 0, 0},
	}
	for _, tt := range tests {
		if got := Fill(tt.v, tt.lo, tt.hi, tt.width); got != tt.want {
			t.Errorf("Fill(%v, %v, %v, %d) = %d, want %d", tt.v, tt.lo, tt.hi, tt.width, got, tt.want)
		}
	}
}

func TestRenderMeter(t *testing.T) {
	got := RenderMeter("speed", 2, 0, 4, 4, '#', '-')
	if !strings.Contains(got, "##--") || !strings.HasPrefix(got, "speed") || !strings.HasSuffix(got, "2.00") {
		t.Fatalf("meter = %q", got)
	}
}

func TestRenderSelector(t *testing.T) {
	got := RenderSelector([]string{"swarm", "grid"}, 1, '*', 'o', lipgloss.NewStyle())
	if got != "o swarm  * grid" {
		t.Fatalf("selector = %q", got)
	}
}

func TestNoteName(t *testing.T) {
	tests := map[uint8]string{60: "C4", 69: "A4", 0: "C-1", 127: "G9", 61: "C#4"}
	for n, want := range tests {
		if got := NoteName(n); got != want {
			t.Errorf("NoteName(%d) = %s, want %s", n, got, want)
		}
	}
	if got := RenderNotes(nil, '@', '.'); got != "." {
		t.Errorf("no notes = %q", got)
	}
	if got := RenderNotes([]uint8{60, 64}, '@', '.'); got != "@ C4 @ E4" {
		t.Errorf("notes = %q", got)
	}
}
