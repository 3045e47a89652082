package sampler

import (
	"fmt"
	"math"
	"strconv"
)

// Key identifies a semitone-quantized pitch (a MIDI-style note number).
// Note names follow the C3 = 60 octave convention.
type Key int

// MaxSearchRadius bounds the nearest-sample search, in semitones
// (8 octaves).
const MaxSearchRadius = 96

var classNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var classOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// ParseNote converts a note name such as "C3", "F#2" or "Eb4" to a Key.
func ParseNote(name string) (Key, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("sampler: bad note name %q", name)
	}
	class, ok := classOffsets[name[0]]
	if !ok {
		return 0, fmt.Errorf("sampler: bad note name %q", name)
	}
	rest := name[1:]
	switch rest[0] {
	case '#':
		class++
		rest = rest[1:]
	case 'b':
		class--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("sampler: bad note name %q", name)
	}
	return Key((octave+2)*12 + class), nil
}

// String renders the key as a note name with its number, e.g. "C3 (60)".
func (k Key) String() string {
	class := ((int(k) % 12) + 12) % 12
	octave := int(math.Floor(float64(k)/12.0)) - 2
	return fmt.Sprintf("%s%d (%d)", classNames[class], octave, int(k))
}

// Ratio converts a semitone interval to an equal-tempered frequency
// ratio. Positive intervals pitch up.
func Ratio(interval int) float64 {
	return math.Exp2(float64(interval) / 12.0)
}

// findClosest searches outward from key for the nearest stored sample,
// one semitone at a time. At equal distance the sample above the request
// wins. The returned interval is the shift that re-pitches the found
// sample to the requested key: positive means the sample sits below the
// request and must be pitched up.
func findClosest(st Storage, key Key) (Key, int, error) {
	if st.Has(key) {
		return key, 0, nil
	}
	for r := 1; r <= MaxSearchRadius; r++ {
		if st.Has(key + Key(r)) {
			return key + Key(r), -r, nil
		}
		if st.Has(key - Key(r)) {
			return key - Key(r), r, nil
		}
	}
	return 0, 0, &ResolutionError{Key: key}
}
