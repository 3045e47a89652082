// Package transport is the musical clock a sampler schedules against:
// it converts time descriptors (seconds or tempo-relative notation) into
// absolute instants and fires deferred callbacks as time advances.
package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// Time is a scheduling descriptor: a fixed amount of seconds or a
// tempo-relative notation such as "4n", "8n.", "8t" or "2m". The zero
// value means "now" when resolved as an instant and zero when used as a
// duration.
type Time struct {
	seconds  float64
	notation string
	set      bool
}

// Seconds builds a descriptor for an absolute instant (or a plain span
// when used as a duration).
func Seconds(s float64) Time {
	return Time{seconds: s, set: true}
}

// Note builds a tempo-relative descriptor. Supported forms: "<n>n" for a
// 1/n note, "<n>t" for a 1/n triplet, "<n>m" for n measures of 4/4, with
// an optional trailing "." for dotted values.
func Note(notation string) Time {
	return Time{notation: notation, set: true}
}

// Immediate resolves to the clock's current position.
var Immediate = Time{}

// Transport keeps the tempo, the current position in seconds, and an
// ordered queue of scheduled callbacks.
type Transport struct {
	bpm    float64
	now    float64
	events []event
}

type event struct {
	at float64
	fn func(at float64)
}

// New creates a transport at the given tempo. Non-positive tempos fall
// back to 120 BPM.
func New(bpm float64) *Transport {
	if bpm <= 0 {
		bpm = 120
	}
	return &Transport{bpm: bpm}
}

// BPM returns the current tempo.
func (t *Transport) BPM() float64 { return t.bpm }

// SetBPM changes the tempo for future notation lookups. Non-positive
// values are ignored.
func (t *Transport) SetBPM(bpm float64) {
	if bpm > 0 {
		t.bpm = bpm
	}
}

// Now returns the transport position in seconds.
func (t *Transport) Now() float64 { return t.now }

// Resolve converts an instant descriptor to absolute seconds. Notation
// descriptors resolve relative to the current position; the zero value
// resolves to now.
func (t *Transport) Resolve(v Time) (float64, error) {
	if !v.set {
		return t.now, nil
	}
	if v.notation == "" {
		return v.seconds, nil
	}
	d, err := t.notationSeconds(v.notation)
	if err != nil {
		return 0, err
	}
	return t.now + d, nil
}

// Interval converts a duration descriptor to a span in seconds.
func (t *Transport) Interval(v Time) (float64, error) {
	if !v.set {
		return 0, nil
	}
	if v.notation == "" {
		return v.seconds, nil
	}
	return t.notationSeconds(v.notation)
}

// Schedule queues fn to fire once the transport reaches at. Instants
// already in the past fire on the next Advance. Insertion keeps the
// queue sorted so equal instants fire in schedule order.
func (t *Transport) Schedule(at float64, fn func(at float64)) {
	i := len(t.events)
	for i > 0 && t.events[i-1].at > at {
		i--
	}
	t.events = append(t.events, event{})
	copy(t.events[i+1:], t.events[i:])
	t.events[i] = event{at: at, fn: fn}
}

// Advance moves the transport forward by dt seconds and fires every due
// callback in instant order. Callbacks may schedule further events.
func (t *Transport) Advance(dt float64) {
	if dt < 0 {
		return
	}
	t.now += dt
	for len(t.events) > 0 && t.events[0].at <= t.now {
		ev := t.events[0]
		t.events = t.events[1:]
		ev.fn(ev.at)
	}
}

// Pending returns the number of queued callbacks.
func (t *Transport) Pending() int { return len(t.events) }

// notationSeconds converts "4n"/"8t"/"2m" style notation at the current
// tempo. A whole note spans four beats.
func (t *Transport) notationSeconds(s string) (float64, error) {
	orig := s
	dotted := strings.HasSuffix(s, ".")
	s = strings.TrimSuffix(s, ".")
	if len(s) < 2 {
		return 0, fmt.Errorf("transport: bad notation %q", orig)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("transport: bad notation %q", orig)
	}
	whole := 240.0 / t.bpm
	var d float64
	switch s[len(s)-1] {
	case 'n':
		d = whole / float64(n)
	case 't':
		d = whole / float64(n) * 2.0 / 3.0
	case 'm':
		d = whole * float64(n)
	default:
		return 0, fmt.Errorf("transport: bad notation %q", orig)
	}
	if dotted {
		d *= 1.5
	}
	return d, nil
}
