package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/cwbudde/algo-sampler/buffers"
	"github.com/cwbudde/algo-sampler/render"
	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/cwbudde/algo-sampler/tonegen"
	"github.com/cwbudde/algo-sampler/transport"
)

// arpeggio is the demo line; several pitches have no stored sample and
// resolve to a re-pitched neighbor.
var arpeggio = []sampler.Key{60, 64, 67, 72, 67, 64, 62, 65, 69, 74, 69, 65}

var synthKeys = []sampler.Key{48, 55, 60, 64, 67, 72}

func main() {
	sampleRate := flag.Int("sample-rate", 48000, "Playback sample rate in Hz")
	bpm := flag.Float64("bpm", 110, "Tempo in BPM")
	velocity := flag.Float64("velocity", 0.9, "Velocity scalar (0..1)")
	duration := flag.Float64("duration", 10.0, "Seconds to play before releasing")
	flag.Parse()

	store := buffers.NewStore(*sampleRate)
	tcfg := tonegen.DefaultConfig()
	tcfg.SampleRate = *sampleRate
	for _, key := range synthKeys {
		data, err := tonegen.Note(tcfg, tonegen.Frequency(int(key)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error synthesizing %s: %v\n", key, err)
			os.Exit(1)
		}
		if err := store.AddEntry(key, buffers.NewEntry(data, *sampleRate)); err != nil {
			fmt.Fprintf(os.Stderr, "Error indexing %s: %v\n", key, err)
			os.Exit(1)
		}
	}

	trans := transport.New(*bpm)
	engine := render.NewEngine(*sampleRate)
	smp := sampler.New(store, engine, trans, &sampler.Config{Attack: 0.005, Release: 0.25})

	sr := beep.SampleRate(*sampleRate)
	if err := speaker.Init(sr, sr.N(time.Millisecond*100)); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing speaker: %v\n", err)
		os.Exit(1)
	}
	speaker.Play(&engineStreamer{engine: engine, trans: trans})

	step, err := trans.Interval(transport.Note("8n"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Playing arpeggio at %.0f BPM for %.1f s...\n", *bpm, *duration)

	// The speaker streams on its own goroutine; speaker.Lock serializes
	// trigger calls against Process.
	ticker := time.NewTicker(time.Duration(step * float64(time.Second)))
	defer ticker.Stop()
	deadline := time.Now().Add(time.Duration(*duration * float64(time.Second)))
	for i := 0; time.Now().Before(deadline); i++ {
		<-ticker.C
		pitch := arpeggio[i%len(arpeggio)]
		speaker.Lock()
		err := smp.TriggerAttackRelease(
			[]sampler.Key{pitch},
			[]transport.Time{transport.Note("8n")},
			transport.Immediate,
			*velocity,
		)
		speaker.Unlock()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error triggering %s: %v\n", pitch, err)
		}
	}

	speaker.Lock()
	if err := smp.ReleaseAll(transport.Immediate); err != nil {
		fmt.Fprintf(os.Stderr, "Error releasing: %v\n", err)
	}
	speaker.Unlock()

	// Let the release tails ring out before tearing down.
	time.Sleep(500 * time.Millisecond)
	speaker.Lock()
	err = smp.Dispose()
	speaker.Unlock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error disposing: %v\n", err)
		os.Exit(1)
	}
}

// engineStreamer adapts the render engine to a beep.Streamer, advancing
// the transport in lockstep with the rendered frames.
type engineStreamer struct {
	engine *render.Engine
	trans  *transport.Transport
}

func (s *engineStreamer) Stream(samples [][2]float64) (int, bool) {
	s.trans.Advance(float64(len(samples)) / float64(s.engine.SampleRate()))
	block := s.engine.Process(len(samples))
	for i, v := range block {
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (s *engineStreamer) Err() error { return nil }
