// Package preset loads sampler presets from JSON: a mapping of note
// names to sample files plus trigger defaults.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-sampler/sampler"
)

// File is the JSON schema for sampler presets.
type File struct {
	// Samples maps note names ("C3", "F#2") to WAV paths, resolved
	// relative to the preset file.
	Samples map[string]string `json:"samples"`

	AttackS  *float64 `json:"attack_s"`
	ReleaseS *float64 `json:"release_s"`
	BPM      *float64 `json:"bpm"`
}

// Preset is a validated preset with resolved keys and paths.
type Preset struct {
	Samples  map[sampler.Key]string
	AttackS  float64
	ReleaseS float64
	BPM      float64
}

// LoadJSON loads a preset file and applies it on top of defaults
// (attack 0 s, release 0.1 s, 120 BPM).
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := &Preset{
		Samples:  make(map[sampler.Key]string),
		AttackS:  0,
		ReleaseS: 0.1,
		BPM:      120,
	}
	if f.AttackS != nil {
		if *f.AttackS < 0 {
			return nil, fmt.Errorf("attack_s must be >= 0")
		}
		p.AttackS = *f.AttackS
	}
	if f.ReleaseS != nil {
		if *f.ReleaseS < 0 {
			return nil, fmt.Errorf("release_s must be >= 0")
		}
		p.ReleaseS = *f.ReleaseS
	}
	if f.BPM != nil {
		if *f.BPM <= 0 {
			return nil, fmt.Errorf("bpm must be > 0")
		}
		p.BPM = *f.BPM
	}

	base := filepath.Dir(path)
	for name, samplePath := range f.Samples {
		key, err := sampler.ParseNote(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("samples: %w", err)
		}
		if _, dup := p.Samples[key]; dup {
			return nil, fmt.Errorf("samples: duplicate entry for %s", key)
		}
		samplePath = strings.TrimSpace(samplePath)
		if samplePath == "" {
			return nil, fmt.Errorf("samples: empty path for %s", key)
		}
		if !filepath.IsAbs(samplePath) {
			samplePath = filepath.Clean(filepath.Join(base, samplePath))
		}
		p.Samples[key] = samplePath
	}
	return p, nil
}
