package render

import (
	"math"
	"math/cmplx"
	"testing"

	algofft "github.com/cwbudde/algo-fft"
)

// testPCM is a minimal in-memory buffer entry.
type testPCM struct {
	data []float64
	rate int
}

func (p *testPCM) Duration() float64  { return float64(len(p.data)) / float64(p.rate) }
func (p *testPCM) Samples() []float64 { return p.data }
func (p *testPCM) SampleRate() int    { return p.rate }

func sinePCM(freq, seconds float64, rate int, amp float64) *testPCM {
	n := int(seconds * float64(rate))
	data := make([]float64, n)
	for i := range data {
		data[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &testPCM{data: data, rate: rate}
}

// renderSeconds drives the engine in fixed blocks and concatenates the
// output.
func renderSeconds(e *Engine, seconds float64) []float64 {
	const block = 512
	total := int(seconds * float64(e.SampleRate()))
	out := make([]float64, 0, total)
	for len(out) < total {
		out = append(out, e.Process(block)...)
	}
	return out[:total]
}

func peak(data []float64) float64 {
	var m float64
	for _, v := range data {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// dominantBin returns the FFT bin with the largest magnitude over the
// first fftSize samples.
func dominantBin(t *testing.T, data []float64, fftSize int) int {
	t.Helper()
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		t.Fatalf("fft plan: %v", err)
	}
	buf := make([]float64, fftSize)
	spec := make([]complex128, fftSize/2+1)
	for i := 0; i < fftSize && i < len(data); i++ {
		// Hann window keeps leakage from smearing the peak.
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
		buf[i] = data[i] * w
	}
	plan.Forward(spec, buf)

	best, bestMag := 0, 0.0
	for k := 1; k < fftSize/2; k++ {
		if mag := cmplx.Abs(spec[k]); mag > bestMag {
			best, bestMag = k, mag
		}
	}
	return best
}
