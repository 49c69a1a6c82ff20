package panels

// Tableau10 is the categorical scheme used for content types.
var Tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// Palette assigns colors to keys in first-seen order and remembers them, so a
// type keeps its color across redraws. Colors repeat after the scheme runs
// out.
type Palette struct {
	scheme   []string
	assigned map[string]string
}

// NewPalette creates a palette over scheme, or Tableau10 when scheme is
// empty.
func NewPalette(scheme ...string) *Palette {
	if len(scheme) == 0 {
		scheme = Tableau10
	}

	return &Palette{scheme: scheme, assigned: make(map[string]string)}
}

// Color returns the color for key, assigning the next one on first use.
func (p *Palette) Color(key string) string {
	if c, ok := p.assigned[key]; ok {
		return c
	}

	c := p.scheme[len(p.assigned)%len(p.scheme)]
	p.assigned[key] = c

	return c
}

// Len is the number of keys assigned so far.
func (p *Palette) Len() int { return len(p.assigned) }
