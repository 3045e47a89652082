package sampler

import "testing"

func makeVoice(key Key) (*Voice, *fakeSource) {
	src := &fakeSource{}
	v := &Voice{
		key:     key,
		sample:  key,
		ratio:   1,
		fadeOut: 0.1,
		source:  src,
		startAt: 0,
		endAt:   1,
	}
	return v, src
}

func TestPoolRegisterUnregisterByIdentity(t *testing.T) {
	p := NewVoicePool()
	v1, _ := makeVoice(60)
	v2, _ := makeVoice(60)
	p.Register(60, v1)
	p.Register(60, v2)
	if got := p.Active(60); got != 2 {
		t.Fatalf("Active(60) = %d, want 2", got)
	}

	p.Unregister(60, v1)
	if got := p.Active(60); got != 1 {
		t.Fatalf("after unregister, Active(60) = %d, want 1", got)
	}
	// v2 must be the survivor.
	p.Unregister(60, v2)
	if got := p.Active(60); got != 0 {
		t.Fatalf("after second unregister, Active(60) = %d, want 0", got)
	}
}

func TestPoolUnregisterAbsentIsNoop(t *testing.T) {
	p := NewVoicePool()
	v, _ := makeVoice(60)
	p.Unregister(60, v) // never registered
	p.Register(60, v)
	p.Unregister(60, v)
	p.Unregister(60, v) // stop/natural-end race: second removal is fine
	if got := p.Size(); got != 0 {
		t.Fatalf("Size = %d, want 0", got)
	}
}

func TestPoolStopAllClearsEagerlyAndSignalsStop(t *testing.T) {
	p := NewVoicePool()
	v1, s1 := makeVoice(60)
	v2, s2 := makeVoice(60)
	p.Register(60, v1)
	p.Register(60, v2)

	p.StopAll(60, 2.5)
	if got := p.Active(60); got != 0 {
		t.Fatalf("Active(60) = %d, want 0 immediately after StopAll", got)
	}
	for i, s := range []*fakeSource{s1, s2} {
		if !s.stopped || s.stopAt != 2.5 {
			t.Errorf("source %d: stopped=%v stopAt=%v, want stop at 2.5", i, s.stopped, s.stopAt)
		}
	}
}

func TestPoolStopAllUnknownKeyIsNoop(t *testing.T) {
	p := NewVoicePool()
	p.StopAll(99, 0) // must not panic or create a slot
	if got := p.Size(); got != 0 {
		t.Fatalf("Size = %d, want 0", got)
	}
}

func TestPoolStopEverythingDrainsEveryKey(t *testing.T) {
	p := NewVoicePool()
	sources := make([]*fakeSource, 0, 6)
	for _, key := range []Key{60, 64, 67} {
		for i := 0; i < 2; i++ {
			v, s := makeVoice(key)
			p.Register(key, v)
			sources = append(sources, s)
		}
	}

	p.StopEverything(1.0)
	if got := p.Size(); got != 0 {
		t.Fatalf("Size = %d, want 0 after StopEverything", got)
	}
	for i, s := range sources {
		if !s.stopped {
			t.Errorf("source %d did not receive the stop signal", i)
		}
	}
}

func TestPoolStopEverythingSurvivesReentrantUnregister(t *testing.T) {
	p := NewVoicePool()
	var voices []*Voice
	var sources []*fakeSource
	for i := 0; i < 3; i++ {
		v, s := makeVoice(60)
		voices = append(voices, v)
		sources = append(sources, s)
		p.Register(60, v)
	}
	// Each stop immediately fires the natural-end path, mutating the
	// pool while the drain loop runs.
	for i := range sources {
		v := voices[i]
		sources[i].onStop = func(float64) {
			p.Unregister(60, v)
			v.end()
		}
	}

	p.StopEverything(0.5)
	if got := p.Size(); got != 0 {
		t.Fatalf("Size = %d, want 0", got)
	}
	for i, s := range sources {
		if !s.stopped {
			t.Errorf("source %d missed its stop signal", i)
		}
	}
}

func TestPoolStopEverythingReachesKeysAddedMidDrain(t *testing.T) {
	p := NewVoicePool()
	v1, s1 := makeVoice(60)
	v2, s2 := makeVoice(72)
	p.Register(60, v1)
	// Stopping the first voice registers another under a key the drain
	// has not visited yet.
	s1.onStop = func(float64) {
		p.Register(72, v2)
	}

	p.StopEverything(1.0)
	if got := p.Size(); got != 0 {
		t.Fatalf("Size = %d, want 0", got)
	}
	if !s1.stopped {
		t.Error("first source missed its stop signal")
	}
	if !s2.stopped {
		t.Error("voice registered mid-drain missed its stop signal")
	}
}
