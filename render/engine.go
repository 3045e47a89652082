// Package render turns triggered voices into audio frames: it owns the
// playback sources a sampler schedules and mixes them sample-accurately
// into mono blocks.
package render

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-sampler/sampler"
)

// PCM is the concrete view the engine needs of a buffer entry.
// *buffers.Entry implements it.
type PCM interface {
	sampler.Buffer
	Samples() []float64
	SampleRate() int
}

// Engine mixes active playback sources into mono frames and implements
// sampler.SourceFactory. Time zero is the first rendered frame. The
// engine may be driven from an audio callback goroutine; trigger paths
// and Process are serialized by the internal lock.
type Engine struct {
	mu         sync.Mutex
	sampleRate int
	frames     int64
	sources    []*playbackSource
}

// NewEngine creates an engine rendering at the given sample rate.
func NewEngine(sampleRate int) *Engine {
	return &Engine{sampleRate: sampleRate}
}

// SampleRate returns the engine's output rate.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Now returns the render position in seconds.
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.frames) / float64(e.sampleRate)
}

// ActiveSources returns the number of sources still rendering.
func (e *Engine) ActiveSources() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sources)
}

// NewSource prepares a playback source reading buf at the given ratio,
// shaped by the fade pair. onEnded fires exactly once when the source
// finishes, natural end or stopped.
func (e *Engine) NewSource(buf sampler.Buffer, ratio, fadeIn, fadeOut float64, onEnded func()) (sampler.Source, error) {
	pcm, ok := buf.(PCM)
	if !ok {
		return nil, fmt.Errorf("render: buffer does not expose PCM data")
	}
	if ratio <= 0 {
		return nil, fmt.Errorf("render: non-positive playback ratio %g", ratio)
	}
	return newPlaybackSource(e, pcm, ratio, fadeIn, fadeOut, onEnded), nil
}

// Process renders numFrames mono frames and advances the engine clock.
// End-of-playback notifications fire after the internal lock is
// released, so they may re-enter trigger paths.
func (e *Engine) Process(numFrames int) []float64 {
	out := make([]float64, numFrames)

	e.mu.Lock()
	blockStart := float64(e.frames) / float64(e.sampleRate)
	for _, src := range e.sources {
		src.render(out, blockStart)
	}

	var finished []func()
	keep := make([]*playbackSource, 0, len(e.sources))
	for _, src := range e.sources {
		if src.done {
			if src.onEnded != nil {
				finished = append(finished, src.onEnded)
			}
			continue
		}
		keep = append(keep, src)
	}
	e.sources = keep
	e.frames += int64(numFrames)
	e.mu.Unlock()

	for _, fn := range finished {
		fn()
	}
	return out
}
