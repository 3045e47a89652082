package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/cwbudde/algo-sampler/buffers"
	"github.com/cwbudde/algo-sampler/internal/wavio"
	"github.com/cwbudde/algo-sampler/preset"
	"github.com/cwbudde/algo-sampler/render"
	"github.com/cwbudde/algo-sampler/sampler"
	"github.com/cwbudde/algo-sampler/tonegen"
	"github.com/cwbudde/algo-sampler/transport"
)

// synthKeys is the sparse sample map used with -synth; requested pitches
// in between are re-pitched from the nearest entry.
var synthKeys = []sampler.Key{48, 55, 60, 64, 67, 72}

func main() {
	// Command-line flags
	presetPath := flag.String("preset", "", "Preset JSON file mapping note names to WAV samples")
	synth := flag.Bool("synth", false, "Synthesize sample material instead of loading a preset")
	notes := flag.String("notes", "C3:4n,E3:4n,G3:4n,C4:2n", "Note sequence as name:duration pairs")
	velocity := flag.Float64("velocity", 1.0, "Velocity scalar (0..1)")
	bpm := flag.Float64("bpm", 0, "Tempo override in BPM")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	tail := flag.Float64("tail", 0.5, "Extra seconds rendered after the last release")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	if *presetPath == "" && !*synth {
		fmt.Fprintln(os.Stderr, "Error: need -preset or -synth")
		os.Exit(1)
	}

	store := buffers.NewStore(*sampleRate)
	cfg := &sampler.Config{Release: 0.1}
	tempo := 120.0

	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		cfg.Attack = p.AttackS
		cfg.Release = p.ReleaseS
		tempo = p.BPM

		var wg sync.WaitGroup
		errs := make(chan error, len(p.Samples))
		for key, path := range p.Samples {
			wg.Add(1)
			store.Add(key, path, func(err error) {
				if err != nil {
					errs <- err
				}
				wg.Done()
			})
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			fmt.Fprintf(os.Stderr, "Error decoding sample: %v\n", err)
			os.Exit(1)
		}
	} else {
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
	}
	if *bpm > 0 {
		tempo = *bpm
	}

	seq, err := parseSequence(*notes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -notes: %v\n", err)
		os.Exit(1)
	}

	trans := transport.New(tempo)
	engine := render.NewEngine(*sampleRate)
	smp := sampler.New(store, engine, trans, cfg)

	fmt.Printf("Rendering %d notes at %.0f BPM, %d Hz to %s...\n", len(seq), tempo, *sampleRate, *output)

	cursor := 0.0
	end := 0.0
	for _, ev := range seq {
		span, err := trans.Interval(transport.Note(ev.duration))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		err = smp.TriggerAttackRelease(
			[]sampler.Key{ev.key},
			[]transport.Time{transport.Note(ev.duration)},
			transport.Seconds(cursor),
			*velocity,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error triggering %s: %v\n", ev.key, err)
			os.Exit(1)
		}
		cursor += span
		if releaseEnd := cursor + cfg.Release; releaseEnd > end {
			end = releaseEnd
		}
	}
	end += *tail

	const blockSize = 128
	totalFrames := int(end * float64(*sampleRate))
	samples := make([]float64, 0, totalFrames)
	for len(samples) < totalFrames {
		n := blockSize
		if rem := totalFrames - len(samples); rem < n {
			n = rem
		}
		trans.Advance(float64(n) / float64(*sampleRate))
		samples = append(samples, engine.Process(n)...)
	}

	if err := smp.Dispose(); err != nil {
		fmt.Fprintf(os.Stderr, "Error disposing: %v\n", err)
		os.Exit(1)
	}
	if err := wavio.WriteMono(*output, samples, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d frames (%.2f s) to %s\n", len(samples), end, *output)
}

type noteEvent struct {
	key      sampler.Key
	duration string
}

// parseSequence splits "C3:4n,E3:8n" into note events. A missing
// duration defaults to a quarter note.
func parseSequence(s string) ([]noteEvent, error) {
	var seq []noteEvent
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, duration := part, "4n"
		if i := strings.IndexByte(part, ':'); i >= 0 {
			name, duration = part[:i], part[i+1:]
		}
		key, err := sampler.ParseNote(name)
		if err != nil {
			return nil, err
		}
		seq = append(seq, noteEvent{key: key, duration: duration})
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty sequence")
	}
	return seq, nil
}
