package render

import (
	"github.com/cwbudde/algo-approx"

	"github.com/cwbudde/algo-sampler/dsp"
)

// fadeOutCurveK drives the exponential fade-out to roughly -60 dB by the
// end of the fade window.
const fadeOutCurveK = 6.908

// playbackSource plays one buffer at a fixed ratio with a fade pair and
// a velocity scalar. The engine lock guards all fields.
type playbackSource struct {
	engine   *Engine
	data     []float64
	dataRate int
	ratio    float64
	fadeIn   float64
	fadeOut  float64
	onEnded  func()

	started  bool
	startAt  float64
	duration float64
	velocity float64
	stopped  bool
	stopAt   float64
	pos      float64 // fractional read position, in data frames
	lowpass  *dsp.Biquad
	done     bool
}

func newPlaybackSource(e *Engine, pcm PCM, ratio, fadeIn, fadeOut float64, onEnded func()) *playbackSource {
	s := &playbackSource{
		engine:   e,
		data:     pcm.Samples(),
		dataRate: pcm.SampleRate(),
		ratio:    ratio,
		fadeIn:   fadeIn,
		fadeOut:  fadeOut,
		onEnded:  onEnded,
	}
	if ratio > 1 {
		// Pitching up folds content past Nyquist back down; keep it out.
		cutoff := 0.45 * float64(e.sampleRate) / ratio
		s.lowpass = dsp.NewLowpass(cutoff, float64(e.sampleRate), 0.707)
	}
	return s
}

// Start schedules playback and registers the source with its engine.
// Instants already in the past are clamped to the engine's position.
func (s *playbackSource) Start(at, offset, duration, velocity float64) {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.started || s.done {
		return
	}
	now := float64(e.frames) / float64(e.sampleRate)
	if at < now {
		at = now
	}
	s.started = true
	s.startAt = at
	s.duration = duration
	s.velocity = velocity
	s.pos = offset * float64(s.dataRate)
	e.sources = append(e.sources, s)
}

// Stop begins the fade-out at the given instant; stopping twice keeps
// the earlier instant.
func (s *playbackSource) Stop(at float64) {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.done {
		return
	}
	now := float64(e.frames) / float64(e.sampleRate)
	if at < now {
		at = now
	}
	if s.stopped && at >= s.stopAt {
		return
	}
	s.stopped = true
	s.stopAt = at
}

// render mixes this source into out, a block starting at blockStart
// seconds. Called with the engine lock held.
func (s *playbackSource) render(out []float64, blockStart float64) {
	if s.done || !s.started {
		return
	}
	e := s.engine
	dt := 1.0 / float64(e.sampleRate)
	step := s.ratio * float64(s.dataRate) / float64(e.sampleRate)

	for i := range out {
		t := blockStart + float64(i)*dt
		if t < s.startAt {
			continue
		}
		elapsed := t - s.startAt
		if elapsed >= s.duration {
			s.done = true
			return
		}
		if s.stopped && t >= s.stopAt+s.fadeOut {
			s.done = true
			return
		}
		if s.pos >= float64(len(s.data)-1) {
			s.done = true
			return
		}

		y := s.sampleAt()
		if s.lowpass != nil {
			y = s.lowpass.Process(y)
		}
		out[i] += y * s.envelope(t, elapsed) * s.velocity
		s.pos += step
	}
}

// sampleAt reads the buffer at the current fractional position with
// 4-point cubic interpolation, clamping at the edges.
func (s *playbackSource) sampleAt() float64 {
	i := int(s.pos)
	frac := s.pos - float64(i)
	n := len(s.data)
	p := func(j int) float64 {
		if j < 0 {
			j = 0
		}
		if j >= n {
			j = n - 1
		}
		return s.data[j]
	}
	return dsp.Cubic(p(i-1), p(i), p(i+1), p(i+2), frac)
}

// envelope returns the fade gain at instant t, elapsed seconds into
// playback. Fade-in is linear; fade-out decays exponentially over the
// fixed fade window, starting at the explicit stop instant or at the
// natural end minus the window, whichever comes first.
func (s *playbackSource) envelope(t, elapsed float64) float64 {
	g := 1.0
	if s.fadeIn > 0 && elapsed < s.fadeIn {
		g = elapsed / s.fadeIn
	}
	fadeStart := s.startAt + s.duration - s.fadeOut
	if s.stopped && s.stopAt < fadeStart {
		fadeStart = s.stopAt
	}
	if t < fadeStart {
		return g
	}
	if s.fadeOut <= 0 {
		return 0
	}
	x := (t - fadeStart) / s.fadeOut
	if x >= 1 {
		return 0
	}
	return g * float64(approx.FastExp(float32(-fadeOutCurveK*x)))
}
