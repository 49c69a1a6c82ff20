// Package scale maps data values onto pixel ranges: linear, square-root and
// time scales with round tick generation.
package scale

import "math"

// Linear maps a continuous numeric domain onto a numeric range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear creates a linear scale from [d0, d1] to [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Domain returns the input bounds.
func (s *Linear) Domain() (d0, d1 float64) { return s.d0, s.d1 }

// Range returns the output bounds.
func (s *Linear) Range() (r0, r1 float64) { return s.r0, s.r1 }

// SetDomain replaces the input bounds.
func (s *Linear) SetDomain(d0, d1 float64) { s.d0, s.d1 = d0, d1 }

// SetRange replaces the output bounds.
func (s *Linear) SetRange(r0, r1 float64) { s.r0, s.r1 = r0, r1 }

// Map projects v into the range. A zero-width domain maps everything to the
// middle of the range.
func (s *Linear) Map(v float64) float64 {
	return interpolate(s.r0, s.r1, normalize(s.d0, s.d1, v))
}

// Invert projects a range value back into the domain.
func (s *Linear) Invert(v float64) float64 {
	if s.r0 == s.r1 {
		return s.d0
	}

	return interpolate(s.d0, s.d1, (v-s.r0)/(s.r1-s.r0))
}

// Ticks returns about count round values within the domain.
func (s *Linear) Ticks(count int) []float64 {
	return Ticks(s.d0, s.d1, count)
}

// Sqrt maps values through a square-root transform so that area, not
// radius, is proportional to the input.
type Sqrt struct {
	d0, d1 float64
	r0, r1 float64
}

// NewSqrt creates a square-root scale from [d0, d1] to [r0, r1].
func NewSqrt(d0, d1, r0, r1 float64) *Sqrt {
	return &Sqrt{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Domain returns the input bounds.
func (s *Sqrt) Domain() (d0, d1 float64) { return s.d0, s.d1 }

// Range returns the output bounds.
func (s *Sqrt) Range() (r0, r1 float64) { return s.r0, s.r1 }

// SetDomain replaces the input bounds.
func (s *Sqrt) SetDomain(d0, d1 float64) { s.d0, s.d1 = d0, d1 }

// SetRange replaces the output bounds.
func (s *Sqrt) SetRange(r0, r1 float64) { s.r0, s.r1 = r0, r1 }

// Map projects v into the range.
func (s *Sqrt) Map(v float64) float64 {
	return interpolate(s.r0, s.r1, normalize(signedSqrt(s.d0), signedSqrt(s.d1), signedSqrt(v)))
}

func signedSqrt(v float64) float64 {
	if v < 0 {
		return -math.Sqrt(-v)
	}

	return math.Sqrt(v)
}

func normalize(a, b, v float64) float64 {
	if a == b {
		return 0.5
	}

	return (v - a) / (b - a)
}

func interpolate(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
