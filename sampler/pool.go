package sampler

// VoicePool tracks active voices per logical pitch. It is mutated only
// by trigger operations, bulk clears, and each voice's own natural-end
// callback.
type VoicePool struct {
	active map[Key][]*Voice
}

// NewVoicePool creates an empty pool.
func NewVoicePool() *VoicePool {
	return &VoicePool{active: make(map[Key][]*Voice)}
}

// Register appends v under key, creating the slot if absent.
func (p *VoicePool) Register(key Key, v *Voice) {
	p.active[key] = append(p.active[key], v)
}

// Unregister removes v by identity from the slot at key. Removing a
// voice that is already gone is a no-op: an explicit stop and a natural
// end-of-playback may both try to clear the same slot.
func (p *VoicePool) Unregister(key Key, v *Voice) {
	vs := p.active[key]
	for i, cur := range vs {
		if cur == v {
			vs = append(vs[:i], vs[i+1:]...)
			break
		}
	}
	if len(vs) == 0 {
		delete(p.active, key)
		return
	}
	p.active[key] = vs
}

// StopAll signals stop-at-at to every voice under key and clears the
// slot eagerly, without waiting for each voice's own unregister
// callback, so a release followed by an immediate retrigger cannot
// observe stale voices.
func (p *VoicePool) StopAll(key Key, at float64) {
	vs := p.active[key]
	if len(vs) == 0 {
		return
	}
	delete(p.active, key)
	for _, v := range vs {
		v.Stop(at)
	}
}

// StopEverything stops and clears every slot. Each slot is drained by
// repeated removal rather than a bulk clear so the stop signal reaches
// every voice even if a callback mutates the pool mid-drain. The key
// list is snapshotted and the pool re-checked until empty, because a
// callback may register voices under keys the current pass has not
// seen.
func (p *VoicePool) StopEverything(at float64) {
	for len(p.active) > 0 {
		keys := make([]Key, 0, len(p.active))
		for key := range p.active {
			keys = append(keys, key)
		}
		for _, key := range keys {
			for {
				vs := p.active[key]
				if len(vs) == 0 {
					break
				}
				v := vs[len(vs)-1]
				p.active[key] = vs[:len(vs)-1]
				v.Stop(at)
			}
			delete(p.active, key)
		}
	}
}

// Active returns the number of voices registered under key.
func (p *VoicePool) Active(key Key) int {
	return len(p.active[key])
}

// Size returns the total voice count across all keys.
func (p *VoicePool) Size() int {
	n := 0
	for _, vs := range p.active {
		n += len(vs)
	}
	return n
}
