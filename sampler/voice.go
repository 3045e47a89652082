package sampler

// VoiceState tracks a voice through its playback lifecycle.
type VoiceState int

const (
	VoiceScheduled VoiceState = iota
	VoiceSounding
	VoiceReleasing
	VoiceEnded
)

func (s VoiceState) String() string {
	switch s {
	case VoiceScheduled:
		return "scheduled"
	case VoiceSounding:
		return "sounding"
	case VoiceReleasing:
		return "releasing"
	case VoiceEnded:
		return "ended"
	}
	return "unknown"
}

// Voice is one in-flight playback of a stored sample, registered in the
// pool under the pitch the caller asked for.
type Voice struct {
	key      Key // logical pitch the caller requested
	sample   Key // resolved sample actually played
	ratio    float64
	velocity float64
	fadeOut  float64
	source   Source
	startAt  float64
	endAt    float64 // natural end, fade-out included
	stopAt   float64
	stopped  bool
	ended    bool
}

// Key returns the logical pitch the voice is registered under.
func (v *Voice) Key() Key { return v.key }

// Sample returns the resolved sample key the voice plays.
func (v *Voice) Sample() Key { return v.sample }

// Ratio returns the re-pitch ratio applied to the sample.
func (v *Voice) Ratio() float64 { return v.ratio }

// Velocity returns the velocity scalar the voice was triggered with.
func (v *Voice) Velocity() float64 { return v.velocity }

// State reports the lifecycle stage as of the given instant.
func (v *Voice) State(now float64) VoiceState {
	switch {
	case v.ended:
		return VoiceEnded
	case v.stopped && now >= v.stopAt:
		return VoiceReleasing
	case now >= v.endAt-v.fadeOut && v.endAt > v.startAt:
		return VoiceReleasing
	case now >= v.startAt:
		return VoiceSounding
	default:
		return VoiceScheduled
	}
}

// Stop signals the source to begin its fade-out at the given instant.
// The fade length was fixed when the voice was created; later changes to
// the pool's release default do not reach it. Stopping twice keeps the
// earlier instant.
func (v *Voice) Stop(at float64) {
	if v.ended {
		return
	}
	if v.stopped && at >= v.stopAt {
		return
	}
	v.stopped = true
	v.stopAt = at
	v.source.Stop(at)
}

// end marks the terminal transition. Idempotent: the natural-end
// callback and an explicit stop may both try to finish the same voice.
func (v *Voice) end() {
	v.ended = true
}
