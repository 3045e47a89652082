// Package buffers loads and indexes the recorded samples a sampler
// plays, keyed by semitone pitch. Decoding runs in the background; the
// store is safe for concurrent use.
package buffers

import (
	"fmt"
	"sort"
	"sync"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"

	"github.com/cwbudde/algo-sampler/internal/wavio"
	"github.com/cwbudde/algo-sampler/sampler"
)

// Entry is one decoded sample: normalized mono data at the store's
// sample rate. Entries are immutable once indexed.
type Entry struct {
	data       []float64
	sampleRate int
}

// NewEntry wraps already-decoded mono data.
func NewEntry(data []float64, sampleRate int) *Entry {
	return &Entry{data: data, sampleRate: sampleRate}
}

// Duration reports the recorded length in seconds.
func (e *Entry) Duration() float64 {
	return float64(len(e.data)) / float64(e.sampleRate)
}

// Samples returns the decoded mono data. Callers must not mutate it.
func (e *Entry) Samples() []float64 { return e.data }

// SampleRate returns the rate the data is stored at.
func (e *Entry) SampleRate() int { return e.sampleRate }

// Store holds decoded samples keyed by pitch. Every entry is converted
// to the store's sample rate on load.
type Store struct {
	mu         sync.Mutex
	sampleRate int
	entries    map[sampler.Key]*Entry
	pending    int
	closed     bool
}

// NewStore creates an empty store at the given sample rate.
func NewStore(sampleRate int) *Store {
	return &Store{
		sampleRate: sampleRate,
		entries:    make(map[sampler.Key]*Entry),
	}
}

// SampleRate returns the rate entries are stored at.
func (s *Store) SampleRate() int { return s.sampleRate }

// Add decodes the WAV file at path in the background and indexes it
// under key. onDone, if non-nil, runs when the decode finishes.
func (s *Store) Add(key sampler.Key, path string, onDone func(error)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if onDone != nil {
			onDone(fmt.Errorf("buffers: store closed"))
		}
		return
	}
	s.pending++
	s.mu.Unlock()

	go func() {
		entry, err := loadWAV(path, s.sampleRate)
		s.mu.Lock()
		s.pending--
		if err == nil && !s.closed {
			s.entries[key] = entry
		}
		s.mu.Unlock()
		if onDone != nil {
			onDone(err)
		}
	}()
}

// AddEntry indexes an already-decoded sample under key. The entry's rate
// must match the store's.
func (s *Store) AddEntry(key sampler.Key, e *Entry) error {
	if e.sampleRate != s.sampleRate {
		return fmt.Errorf("buffers: entry rate %d does not match store rate %d", e.sampleRate, s.sampleRate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("buffers: store closed")
	}
	s.entries[key] = e
	return nil
}

// Has reports whether a sample is indexed under key.
func (s *Store) Has(key sampler.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Get returns the entry at key, or nil when absent. Callers check Has
// first; the sampler core always does.
func (s *Store) Get(key sampler.Key) sampler.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	return e
}

// Loaded reports whether every queued decode has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending == 0
}

// Keys returns the indexed pitches in ascending order.
func (s *Store) Keys() []sampler.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]sampler.Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Close drops every entry and rejects further decodes. Results of
// decodes still in flight are discarded.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = make(map[sampler.Key]*Entry)
	return nil
}

func loadWAV(path string, targetRate int) (*Entry, error) {
	data, rate, err := wavio.ReadMono(path)
	if err != nil {
		return nil, err
	}
	data, err = resampleIfNeeded(data, rate, targetRate)
	if err != nil {
		return nil, err
	}
	return &Entry{data: data, sampleRate: targetRate}, nil
}

func resampleIfNeeded(in []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}
