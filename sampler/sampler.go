// Package sampler is a polyphonic, pitch-resolving sample playback
// engine: requested pitches are mapped to the nearest stored sample,
// re-pitched by an equal-tempered ratio, and tracked as voices until
// they are released or play out.
package sampler

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-sampler/transport"
)

const defaultRelease = 0.1

// Config holds trigger defaults. The zero value is usable.
type Config struct {
	// Attack and Release are the fade durations, in seconds, captured by
	// each voice at creation time.
	Attack  float64
	Release float64
	// OnError receives errors from trigger calls that were deferred by
	// Sync and therefore cannot be returned to the caller. May be nil.
	OnError func(error)
}

// Sampler coordinates pitch resolution, voice registration, and the
// timed attack/release protocol over its external collaborators.
type Sampler struct {
	storage Storage
	factory SourceFactory
	clock   Clock
	pool    *VoicePool

	attack   float64
	release  float64
	onError  func(error)
	synced   bool
	disposed bool
}

// New creates a sampler over the given collaborators. cfg may be nil; a
// zero release falls back to 100 ms.
func New(storage Storage, factory SourceFactory, clock Clock, cfg *Config) *Sampler {
	s := &Sampler{
		storage: storage,
		factory: factory,
		clock:   clock,
		pool:    NewVoicePool(),
		release: defaultRelease,
	}
	if cfg != nil {
		s.attack = cfg.Attack
		if cfg.Release > 0 {
			s.release = cfg.Release
		}
		s.onError = cfg.OnError
	}
	return s
}

// Pool exposes the active-voice registry.
func (s *Sampler) Pool() *VoicePool { return s.pool }

// Loaded reports whether the underlying store finished decoding.
func (s *Sampler) Loaded() bool { return s.storage.Loaded() }

// Attack returns the fade-in default applied to future voices.
func (s *Sampler) Attack() float64 { return s.attack }

// Release returns the fade-out default applied to future voices.
func (s *Sampler) Release() float64 { return s.release }

// SetAttack changes the fade-in default. Voices already created keep
// the fade they were built with.
func (s *Sampler) SetAttack(seconds float64) {
	if seconds >= 0 {
		s.attack = seconds
	}
}

// SetRelease changes the fade-out default. Voices already created keep
// the fade they were built with.
func (s *Sampler) SetRelease(seconds float64) {
	if seconds >= 0 {
		s.release = seconds
	}
}

// Resolve maps a requested pitch to the nearest stored sample key and
// the semitone interval that re-pitches the sample to the request.
func (s *Sampler) Resolve(pitch Key) (Key, int, error) {
	return findClosest(s.storage, pitch)
}

// TriggerAttack starts one voice per pitch at the resolved instant.
// Pitches that cannot be resolved are reported in the joined error,
// each as a *ResolutionError; the remaining pitches still sound.
func (s *Sampler) TriggerAttack(pitches []Key, at transport.Time, velocity float64) error {
	if s.disposed {
		return ErrDisposed
	}
	when, err := s.clock.Resolve(at)
	if err != nil {
		return err
	}
	if s.synced {
		s.clock.Schedule(when, func(at float64) {
			// The sampler may have been disposed between the call and
			// the scheduled instant.
			if s.disposed {
				s.report(ErrDisposed)
				return
			}
			s.report(s.attackAt(pitches, at, velocity))
		})
		return nil
	}
	return s.attackAt(pitches, when, velocity)
}

// TriggerRelease begins the fade-out of every voice registered under
// each pitch and clears those slots immediately. Pitches with no active
// voices are skipped silently: releasing a note that never sounded, or
// already ended, is valid.
func (s *Sampler) TriggerRelease(pitches []Key, at transport.Time) error {
	if s.disposed {
		return ErrDisposed
	}
	when, err := s.clock.Resolve(at)
	if err != nil {
		return err
	}
	if s.synced {
		s.clock.Schedule(when, func(at float64) {
			if s.disposed {
				s.report(ErrDisposed)
				return
			}
			s.releaseAt(pitches, at)
		})
		return nil
	}
	s.releaseAt(pitches, when)
	return nil
}

// ReleaseAll stops every active voice regardless of pitch at the
// resolved instant.
func (s *Sampler) ReleaseAll(at transport.Time) error {
	if s.disposed {
		return ErrDisposed
	}
	when, err := s.clock.Resolve(at)
	if err != nil {
		return err
	}
	s.pool.StopEverything(when)
	return nil
}

// TriggerAttackRelease couples an attack at the resolved instant with a
// release after each pitch's duration. A single duration is shared by
// every pitch; with multiple durations the pairing is positional and the
// last value covers any remaining pitches. Multiple durations for a
// single pitch are rejected before any voice is created.
func (s *Sampler) TriggerAttackRelease(pitches []Key, durations []transport.Time, at transport.Time, velocity float64) error {
	if s.disposed {
		return ErrDisposed
	}
	if len(durations) == 0 {
		return fmt.Errorf("%w: no duration given", ErrContract)
	}
	if len(pitches) == 1 && len(durations) > 1 {
		return fmt.Errorf("%w: %d durations for a single pitch", ErrContract, len(durations))
	}
	when, err := s.clock.Resolve(at)
	if err != nil {
		return err
	}
	spans := make([]float64, len(pitches))
	for i := range pitches {
		j := i
		if j >= len(durations) {
			j = len(durations) - 1
		}
		span, err := s.clock.Interval(durations[j])
		if err != nil {
			return err
		}
		if span < 0 {
			return fmt.Errorf("%w: negative duration for pitch %s", ErrContract, pitches[i])
		}
		spans[i] = span
	}
	if s.synced {
		s.clock.Schedule(when, func(at float64) {
			if s.disposed {
				s.report(ErrDisposed)
				return
			}
			s.report(s.attackReleaseAt(pitches, spans, at, velocity))
		})
		return nil
	}
	return s.attackReleaseAt(pitches, spans, when, velocity)
}

// Sync defers future TriggerAttack/TriggerRelease/TriggerAttackRelease
// calls to the shared clock; the resolved-time semantics are unchanged,
// only the execution instant moves. Errors raised by a deferred call go
// to Config.OnError.
func (s *Sampler) Sync() { s.synced = true }

// Unsync restores immediate execution.
func (s *Sampler) Unsync() { s.synced = false }

// Synced reports whether trigger calls are deferred to the clock.
func (s *Sampler) Synced() bool { return s.synced }

// Dispose releases the sample store, stops every active voice, and
// clears the pool. Any later trigger operation fails with ErrDisposed.
// Disposing twice is a no-op.
func (s *Sampler) Dispose() error {
	if s.disposed {
		return nil
	}
	s.disposed = true
	err := s.storage.Close()
	s.pool.StopEverything(s.clock.Now())
	return err
}

func (s *Sampler) attackAt(pitches []Key, when, velocity float64) error {
	var errs []error
	for _, pitch := range pitches {
		if err := s.attackOne(pitch, when, velocity); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Sampler) attackOne(pitch Key, when, velocity float64) error {
	sample, interval, err := findClosest(s.storage, pitch)
	if err != nil {
		return err
	}
	buf := s.storage.Get(sample)
	ratio := Ratio(interval)
	// Pitched-up samples play proportionally shorter, preserving the
	// recorded duration in wall-clock terms after re-pitching.
	duration := buf.Duration() / ratio

	v := &Voice{
		key:      pitch,
		sample:   sample,
		ratio:    ratio,
		velocity: velocity,
		fadeOut:  s.release,
		startAt:  when,
		endAt:    when + duration,
	}
	src, err := s.factory.NewSource(buf, ratio, s.attack, s.release, func() {
		s.pool.Unregister(pitch, v)
		v.end()
	})
	if err != nil {
		return fmt.Errorf("sampler: source for pitch %s: %w", pitch, err)
	}
	v.source = src
	s.pool.Register(pitch, v)
	src.Start(when, 0, duration, velocity)
	return nil
}

func (s *Sampler) releaseAt(pitches []Key, when float64) {
	for _, pitch := range pitches {
		s.pool.StopAll(pitch, when)
	}
}

func (s *Sampler) attackReleaseAt(pitches []Key, spans []float64, when, velocity float64) error {
	var errs []error
	for i, pitch := range pitches {
		if err := s.attackOne(pitch, when, velocity); err != nil {
			errs = append(errs, err)
			continue
		}
		s.pool.StopAll(pitch, when+spans[i])
	}
	return errors.Join(errs...)
}

func (s *Sampler) report(err error) {
	if err != nil && s.onError != nil {
		s.onError(err)
	}
}
