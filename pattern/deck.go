package pattern

// Deck is the ordered pattern catalog with one active entry
type Deck struct {
	gens   []Generator
	active int
}

// NewDeck creates a deck with the first generator active
func NewDeck(gens ...Generator) *Deck {
	d := &Deck{gens: gens}
	if len(gens) > 0 {
		gens[0].Reset()
	}
	return d
}

func (d *Deck) Len() int   { return len(d.gens) }
func (d *Deck) Index() int { return d.active }

// Active returns the active generator, or nil for an empty deck
func (d *Deck) Active() Generator {
	if len(d.gens) == 0 {
		return nil
	}
	return d.gens[d.active]
}

// Names returns the generator names in order
func (d *Deck) Names() []string {
	names := make([]string, len(d.gens))
	for i, g := range d.gens {
		names[i] = g.Name()
	}
	return names
}

// Select activates generator i, wrapping out-of-range indexes. The outgoing
// generator's state is discarded and the incoming one starts from baseline.
func (d *Deck) Select(i int) {
	n := len(d.gens)
	if n == 0 {
		return
	}
	i = ((i % n) + n) % n
	d.gens[d.active].Reset()
	d.active = i
	d.gens[i].Reset()
}

func (d *Deck) Next() { d.Select(d.active + 1) }
func (d *Deck) Prev() { d.Select(d.active - 1) }

// SelectName activates the generator called name
func (d *Deck) SelectName(name string) bool {
	for i, g := range d.gens {
		if g.Name() == name {
			d.Select(i)
			return true
		}
	}
	return false
}
