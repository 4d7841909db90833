package validation

import (
	"maps"
	"sync"
	"time"
)

// ClearDelay is how long a field error stays visible after the field is edited.
const ClearDelay = 300 * time.Millisecond

// FieldErrors holds the field-level errors of an open form. Editing a field
// schedules its error to disappear after the delay whether or not the new
// value is valid; only the next submit re-validates.
type FieldErrors struct {
	mu     sync.Mutex
	delay  time.Duration
	errs   map[string]string
	timers map[string]*time.Timer
}

func NewFieldErrors(delay time.Duration) *FieldErrors {
	if delay <= 0 {
		delay = ClearDelay
	}
	return &FieldErrors{
		delay:  delay,
		errs:   make(map[string]string),
		timers: make(map[string]*time.Timer),
	}
}

// Replace swaps in the result of a validation pass and cancels pending clears.
func (f *FieldErrors) Replace(e *Errors) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopLocked()
	f.errs = make(map[string]string)
	if e != nil {
		maps.Copy(f.errs, e.Fields)
	}
}

// Touched restarts the clear timer of field. Fields without an error are ignored.
func (f *FieldErrors) Touched(field string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.errs[field]; !ok {
		return
	}
	if t, ok := f.timers[field]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(f.delay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		// A Replace or a newer Touched owns the field now.
		if f.timers[field] != t {
			return
		}
		delete(f.errs, field)
		delete(f.timers, field)
	})
	f.timers[field] = t
}

// Snapshot returns a copy of the currently visible errors.
func (f *FieldErrors) Snapshot() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errs)
}

// Stop cancels all pending clears.
func (f *FieldErrors) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()
}

func (f *FieldErrors) stopLocked() {
	for k, t := range f.timers {
		t.Stop()
		delete(f.timers, k)
	}
}
