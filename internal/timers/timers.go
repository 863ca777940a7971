// Package timers provides a keyed registry of cancellable one-shot timers.
// Arming a key always cancels any pending timer under the same key, so the
// repeated cancel-then-set pattern around hover and animation delays lives
// in one place.
package timers

import (
	"strings"
	"sync"
	"time"
)

// Registry schedules named one-shot callbacks.
type Registry struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	seq     map[string]uint64
	stopped bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		timers: make(map[string]*time.Timer),
		seq:    make(map[string]uint64),
	}
}

// Schedule arms fn to run after d, replacing any pending timer for key.
func (r *Registry) Schedule(key string, d time.Duration, fn func()) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	if t, ok := r.timers[key]; ok {
		t.Stop()
	}
	r.seq[key]++
	n := r.seq[key]
	r.timers[key] = time.AfterFunc(d, func() {
		r.mu.Lock()
		if r.stopped || r.seq[key] != n {
			r.mu.Unlock()
			return
		}
		delete(r.timers, key)
		r.mu.Unlock()
		fn()
	})
	r.mu.Unlock()
}

// Cancel stops a pending timer for key, if any.
func (r *Registry) Cancel(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[key]; ok {
		t.Stop()
		delete(r.timers, key)
	}
	r.seq[key]++
}

// CancelPrefix stops every pending timer whose key starts with prefix.
func (r *Registry) CancelPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.timers {
		if strings.HasPrefix(key, prefix) {
			t.Stop()
			delete(r.timers, key)
			r.seq[key]++
		}
	}
}

// Pending reports whether a timer is armed for key.
func (r *Registry) Pending(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[key]
	return ok
}

// Stop cancels everything and refuses further scheduling.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for key, t := range r.timers {
		t.Stop()
		delete(r.timers, key)
	}
}
