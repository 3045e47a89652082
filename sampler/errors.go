package sampler

import (
	"errors"
	"fmt"
)

// ErrDisposed is returned by every trigger operation after Dispose.
var ErrDisposed = errors.New("sampler: disposed")

// ErrContract flags an invalid argument shape, detected before any voice
// is created.
var ErrContract = errors.New("sampler: contract violation")

// ResolutionError reports a requested pitch with no stored sample within
// MaxSearchRadius semitones.
type ResolutionError struct {
	Key Key
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("sampler: no playable sample within %d semitones of %s", MaxSearchRadius, e.Key)
}
