// Package dsp holds the small filter and interpolation primitives the
// playback path needs.
package dsp

import "math"

// Biquad implements a second-order IIR filter (no heap allocations in
// Process).
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64 // input history
	y1, y2 float64 // output history
}

// NewBiquad creates a biquad filter with the given coefficients.
func NewBiquad(b0, b1, b2, a1, a2 float64) *Biquad {
	return &Biquad{b0: b0, b1: b1, b2: b2, a1: a1, a2: a2}
}

// NewLowpass creates a lowpass biquad at the given cutoff.
func NewLowpass(cutoff, sampleRate, q float64) *Biquad {
	w0 := 2.0 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(b0/a0, b1/a0, b2/a0, a1/a0, a2/a0)
}

// Process runs one sample through the filter (Direct Form I).
func (b *Biquad) Process(input float64) float64 {
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// Cubic performs 4-point third-order Lagrange interpolation between p1
// and p2. frac is the fractional position in [0, 1).
func Cubic(p0, p1, p2, p3, frac float64) float64 {
	c0 := p1
	c1 := p2 - p0/3.0 - p1/2.0 - p3/6.0
	c2 := p0/2.0 - p1 + p2/2.0
	c3 := p1/2.0 - p2/2.0 + (p3-p0)/6.0
	return c0 + frac*(c1+frac*(c2+frac*c3))
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, frac float64) float64 {
	return a + frac*(b-a)
}
