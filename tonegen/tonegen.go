// Package tonegen synthesizes decaying harmonic tones, used as stand-in
// sample material when no recordings are at hand.
package tonegen

import (
	"fmt"
	"math"
	"math/rand"
)

// Config controls synthetic note generation.
type Config struct {
	SampleRate int
	DurationS  float64
	Partials   int
	Seed       int64

	Brightness float64 // >1 boosts upper partials, <1 darkens
	DecayS     float64 // fundamental decay time; partials decay faster

	NormalizePeak float64
}

// DefaultConfig returns a short, piano-ish tone setup.
func DefaultConfig() Config {
	return Config{
		SampleRate:    48000,
		DurationS:     1.5,
		Partials:      12,
		Seed:          1,
		Brightness:    0.8,
		DecayS:        1.0,
		NormalizePeak: 0.9,
	}
}

// Validate rejects configurations that cannot render.
func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Partials < 1 {
		return fmt.Errorf("partials must be >= 1")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.DecayS <= 0 {
		return fmt.Errorf("decay must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// Note renders a decaying tone at the given fundamental frequency.
// Partial placement is deterministic; the RNG only jitters amplitude and
// phase, so equal seeds render equal tones.
func Note(cfg Config, freqHz float64) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if freqHz <= 0 {
		return nil, fmt.Errorf("frequency must be > 0")
	}

	n := int(math.Round(cfg.DurationS * float64(cfg.SampleRate)))
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(cfg.Seed))
	nyquist := 0.5 * float64(cfg.SampleRate)

	for k := 1; k <= cfg.Partials; k++ {
		f := freqHz * float64(k)
		if f >= nyquist*0.95 {
			break
		}
		amp := math.Pow(float64(k), -1.0/cfg.Brightness)
		amp *= 0.9 + 0.2*rng.Float64()
		phase := 2.0 * math.Pi * rng.Float64()
		// Upper partials die off faster, like a struck string.
		decay := cfg.DecayS / (1.0 + 0.4*float64(k-1))

		w := 2.0 * math.Pi * f / float64(cfg.SampleRate)
		for i := 0; i < n; i++ {
			t := float64(i) / float64(cfg.SampleRate)
			out[i] += amp * math.Exp(-t/decay) * math.Sin(w*float64(i)+phase)
		}
	}

	normalize(out, cfg.NormalizePeak)
	return out, nil
}

// Frequency converts a semitone key to Hz with A at key 69 tuned to
// 440 Hz.
func Frequency(key int) float64 {
	return 440.0 * math.Exp2(float64(key-69)/12.0)
}

func normalize(data []float64, peak float64) {
	maxAbs := 0.0
	for _, v := range data {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return
	}
	g := peak / maxAbs
	for i := range data {
		data[i] *= g
	}
}
