package sampler

import "github.com/cwbudde/algo-sampler/transport"

// Buffer is an immutable handle to one decoded sample.
type Buffer interface {
	// Duration reports the recorded length in seconds.
	Duration() float64
}

// Storage is the sampler's read-only view of the sample store, keyed by
// pitch. The set of keys may grow while buffers finish loading; a single
// resolve observes one snapshot.
type Storage interface {
	Has(key Key) bool
	// Get returns the entry at key. Calling Get for a key Has reported
	// absent is a caller bug.
	Get(key Key) Buffer
	// Loaded reports whether every pending decode has completed.
	Loaded() bool
	Close() error
}

// Source is one in-flight playback handle produced by a SourceFactory.
// All instants are absolute seconds on the engine clock.
type Source interface {
	// Start schedules playback. offset skips into the sample data and
	// duration bounds the wall-clock play length.
	Start(at, offset, duration, velocity float64)
	// Stop begins the source's fade-out at the given instant.
	Stop(at float64)
}

// SourceFactory builds playback sources bound to a buffer and a playback
// ratio. onEnded fires exactly once when the source finishes, whether it
// ran to completion or was stopped.
type SourceFactory interface {
	NewSource(buf Buffer, ratio, fadeIn, fadeOut float64, onEnded func()) (Source, error)
}

// Clock resolves scheduling descriptors to absolute instants and carries
// deferred calls for synced samplers. *transport.Transport implements it.
type Clock interface {
	Now() float64
	// Resolve converts an instant descriptor to absolute seconds.
	Resolve(t transport.Time) (float64, error)
	// Interval converts a duration descriptor to a span in seconds.
	Interval(d transport.Time) (float64, error)
	// Schedule defers fn until the clock reaches at.
	Schedule(at float64, fn func(at float64))
}
