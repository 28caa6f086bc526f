package theme

import (
	"bufio"
	"embed"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

//go:embed palettes/*.gpl
var builtin embed.FS

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// ParseGPL reads a GIMP palette
func ParseGPL(r io.Reader, name string) (*Palette, error) {
	p := &Palette{Name: name}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// Parse RGB values (first 3 fields are R G B)
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found in palette %s", name)
	}

	return p, nil
}

// LoadGPL reads a palette file from disk
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseGPL(f, path)
}

// Builtin returns an embedded palette by name
func Builtin(name string) (*Palette, error) {
	f, err := builtin.Open(path.Join("palettes", name+".gpl"))
	if err != nil {
		return nil, fmt.Errorf("unknown palette %q", name)
	}
	defer f.Close()
	return ParseGPL(f, name)
}

// Names lists the embedded palettes
func Names() []string {
	entries, _ := fs.ReadDir(builtin, "palettes")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".gpl"))
	}
	sort.Strings(names)
	return names
}

// Load resolves name as an embedded palette first, then as a file path
func Load(name string) (*Palette, error) {
	if p, err := Builtin(name); err == nil {
		return p, nil
	}
	return LoadGPL(name)
}

// Lookup returns the color at normalized position 0-1, blended in Lab
// between neighbouring entries
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	// Find the two colors to interpolate between
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i].colorful()
	c1 := p.Colors[i+1].colorful()
	r, g, b := c0.BlendLab(c1, frac).Clamped().RGB255()
	return RGB{r, g, b}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}

// Sample returns n opaque colors spread evenly over the palette
func (p *Palette) Sample(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		c := p.Lookup(t)
		out[i] = color.RGBA{c[0], c[1], c[2], 255}
	}
	return out
}
