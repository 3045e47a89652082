package sampler

import (
	"fmt"

	"github.com/cwbudde/algo-sampler/transport"
)

type fakeBuffer struct {
	duration float64
}

func (b *fakeBuffer) Duration() float64 { return b.duration }

type fakeStorage struct {
	entries map[Key]*fakeBuffer
	loading bool
	closed  bool
}

func newFakeStorage(keys ...Key) *fakeStorage {
	st := &fakeStorage{entries: make(map[Key]*fakeBuffer)}
	for _, k := range keys {
		st.entries[k] = &fakeBuffer{duration: 1.0}
	}
	return st
}

func (s *fakeStorage) Has(key Key) bool {
	_, ok := s.entries[key]
	return ok
}

func (s *fakeStorage) Get(key Key) Buffer {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	return e
}

func (s *fakeStorage) Loaded() bool { return !s.loading }

// Close only flags the store. Keeping the key set truthful afterwards
// ensures nothing downstream leans on a store that empties itself.
func (s *fakeStorage) Close() error {
	s.closed = true
	return nil
}

type fakeSource struct {
	ratio   float64
	fadeIn  float64
	fadeOut float64
	onEnded func()
	onStop  func(at float64) // test hook, runs inside Stop

	started  bool
	startAt  float64
	offset   float64
	duration float64
	velocity float64
	stopped  bool
	stopAt   float64
}

func (s *fakeSource) Start(at, offset, duration, velocity float64) {
	s.started = true
	s.startAt = at
	s.offset = offset
	s.duration = duration
	s.velocity = velocity
}

func (s *fakeSource) Stop(at float64) {
	if s.stopped && at >= s.stopAt {
		return
	}
	s.stopped = true
	s.stopAt = at
	if s.onStop != nil {
		s.onStop(at)
	}
}

// finish simulates the natural end-of-playback notification.
func (s *fakeSource) finish() {
	if s.onEnded != nil {
		s.onEnded()
	}
}

type fakeFactory struct {
	sources []*fakeSource
	fail    bool
}

func (f *fakeFactory) NewSource(buf Buffer, ratio, fadeIn, fadeOut float64, onEnded func()) (Source, error) {
	if f.fail {
		return nil, fmt.Errorf("factory down")
	}
	src := &fakeSource{ratio: ratio, fadeIn: fadeIn, fadeOut: fadeOut, onEnded: onEnded}
	f.sources = append(f.sources, src)
	return src, nil
}

func (f *fakeFactory) last() *fakeSource {
	if len(f.sources) == 0 {
		return nil
	}
	return f.sources[len(f.sources)-1]
}

func newTestSampler(cfg *Config, keys ...Key) (*Sampler, *fakeStorage, *fakeFactory, *transport.Transport) {
	st := newFakeStorage(keys...)
	fac := &fakeFactory{}
	trans := transport.New(120)
	return New(st, fac, trans, cfg), st, fac, trans
}
