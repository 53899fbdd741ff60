package llm

import "sync"

// Rotator provides round-robin selection over configured API keys, so that
// rate-limited keys are cycled away from on the next attempt.
type Rotator struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewRotator creates a Rotator over the given keys.
func NewRotator(keys []string) *Rotator {
	return &Rotator{keys: append([]string(nil), keys...)}
}

// Next returns the next key in rotation, or "" if no keys are configured.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return ""
	}
	key := r.keys[r.next%len(r.keys)]
	r.next++
	return key
}

// Len returns the number of configured keys.
func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}
