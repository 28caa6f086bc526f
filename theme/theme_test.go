package theme

import (
	"strings"
	"testing"
)

func TestBuiltinPalettes(t *testing.T) {
	names := Names()
	if len(names) != 3 || names[0] != "inferno" || names[1] != "plasma" {
		t.Fatalf("Names() = %v", names)
	}
	for _, name := range names {
		p, err := Builtin(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if p.Name != name || len(p.Colors) < 8 {
			t.Errorf("%s: name %q, %d colors", name, p.Name, len(p.Colors))
		}
	}
	if _, err := Builtin("sunset"); err == nil {
		t.Fatal("unknown palette loaded")
	}
}

func TestParseGPL(t *testing.T) {
	src := "GIMP Palette\nName: two\nColumns: 2\n# comment\n  0   0   0\tblack\n255 255 255\twhite\nbad line\n"
	p, err := ParseGPL(strings.NewReader(src), "x")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two" || len(p.Colors) != 2 {
		t.Fatalf("got %+v", p)
	}
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n"), "empty"); err == nil {
		t.Fatal("empty palette accepted")
	}
}

func TestLookupEndsAndSample(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {255, 255, 255}}}
	if p.Lookup(-1) != (RGB{0, 0, 0}) || p.Lookup(2) != (RGB{255, 255, 255}) {
		t.Fatal("Lookup does not clamp to the ends")
	}
	mid := p.Lookup(0.5)
	if mid[0] == 0 || mid[0] == 255 {
		t.Fatalf("midpoint = %v", mid)
	}

	s := p.Sample(3)
	if len(s) != 3 || s[0].R != 0 || s[2].R != 255 || s[1].A != 255 {
		t.Fatalf("Sample = %v", s)
	}
}
