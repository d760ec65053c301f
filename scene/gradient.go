package scene

import "suntrace/core"

// Stop is one colour stop of a Gradient at position T in [0,1].
type Stop struct {
	T     float64
	Color core.Color
}

// Gradient is an ordered sequence of colour stops sampled by linear
// interpolation. Colours carry premultiplied-alpha semantics so Sample's
// result can be accumulated directly into an Output's colour buffer.
type Gradient struct {
	Stops []Stop
}

// NewGradient builds a Gradient from stops, sorted by T ascending. Panics
// if fewer than two stops are given, since a single stop has nothing to
// interpolate between.
func NewGradient(stops []Stop) *Gradient {
	if len(stops) < 2 {
		panic("scene: gradient needs at least two colour stops")
	}
	sorted := make([]Stop, len(stops))
	copy(sorted, stops)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].T < sorted[j-1].T; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return &Gradient{Stops: sorted}
}

// Sample returns the gradient's colour at u, clamped to [0,1]. Below the
// first stop or above the last, the edge stop's colour is returned.
func (g *Gradient) Sample(u float64) core.Color {
	if u <= g.Stops[0].T {
		return g.Stops[0].Color
	}
	last := len(g.Stops) - 1
	if u >= g.Stops[last].T {
		return g.Stops[last].Color
	}
	for i := 0; i < last; i++ {
		a, b := g.Stops[i], g.Stops[i+1]
		if u >= a.T && u <= b.T {
			span := b.T - a.T
			if span <= 0 {
				return b.Color
			}
			frac := float32((u - a.T) / span)
			return core.Color{
				R: a.Color.R + (b.Color.R-a.Color.R)*frac,
				G: a.Color.G + (b.Color.G-a.Color.G)*frac,
				B: a.Color.B + (b.Color.B-a.Color.B)*frac,
				A: a.Color.A + (b.Color.A-a.Color.A)*frac,
			}
		}
	}
	return g.Stops[last].Color
}

// Mix linearly interpolates between two colours by factor s in [0,1],
// used for the shadow-factor colour mix in the tracer's shading step.
func Mix(a, b core.Color, s float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*s,
		G: a.G + (b.G-a.G)*s,
		B: a.B + (b.B-a.B)*s,
		A: a.A + (b.A-a.A)*s,
	}
}
