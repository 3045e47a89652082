package preset

import (
	"os"
	"path/filepath"
	"testing"
)

func writePreset(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "preset.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writePreset(t, dir, `{
		"samples": {"C3": "c3.wav", "F#2": "sub/fs2.wav"},
		"attack_s": 0.01,
		"release_s": 0.5,
		"bpm": 90
	}`)

	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.AttackS != 0.01 || p.ReleaseS != 0.5 || p.BPM != 90 {
		t.Errorf("defaults = (%v, %v, %v), want (0.01, 0.5, 90)", p.AttackS, p.ReleaseS, p.BPM)
	}
	if got := p.Samples[60]; got != filepath.Join(dir, "c3.wav") {
		t.Errorf("C3 path = %q, want it resolved against the preset dir", got)
	}
	if got := p.Samples[54]; got != filepath.Join(dir, "sub", "fs2.wav") {
		t.Errorf("F#2 path = %q, want the cleaned relative path", got)
	}
}

func TestLoadJSONDefaults(t *testing.T) {
	path := writePreset(t, t.TempDir(), `{"samples": {"A3": "a3.wav"}}`)

	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.AttackS != 0 || p.ReleaseS != 0.1 || p.BPM != 120 {
		t.Errorf("defaults = (%v, %v, %v), want (0, 0.1, 120)", p.AttackS, p.ReleaseS, p.BPM)
	}
	if _, ok := p.Samples[69]; !ok {
		t.Error("A3 missing from the loaded preset")
	}
}

func TestLoadJSONAbsolutePathKept(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "samples", "c3.wav")
	path := writePreset(t, t.TempDir(), `{"samples": {"C3": "`+filepath.ToSlash(abs)+`"}}`)

	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if got := p.Samples[60]; got != abs {
		t.Errorf("absolute path = %q, want %q untouched", got, abs)
	}
}

func TestLoadJSONRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"bad note name", `{"samples": {"H3": "h3.wav"}}`},
		{"empty path", `{"samples": {"C3": "  "}}`},
		{"negative attack", `{"samples": {}, "attack_s": -1}`},
		{"negative release", `{"samples": {}, "release_s": -0.5}`},
		{"zero bpm", `{"samples": {}, "bpm": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePreset(t, t.TempDir(), tt.body)
			if _, err := LoadJSON(path); err == nil {
				t.Error("want error")
			}
		})
	}

	if _, err := LoadJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file: want error")
	}
}
