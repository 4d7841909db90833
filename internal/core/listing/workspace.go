package listing

import (
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Workspace keeps each session's controllers between requests so filtering
// and dialogs work against the session's last fetch. Entries expire after
// ttl of inactivity or when the LRU is full.
type Workspace struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, any]
}

// closer is satisfied by every *Controller[T].
type closer interface {
	Close()
}

func NewWorkspace(size int, ttl time.Duration) *Workspace {
	if size <= 0 {
		size = 512
	}
	onEvict := func(_ string, v any) {
		if c, ok := v.(closer); ok {
			c.Close()
		}
	}
	return &Workspace{cache: expirable.NewLRU[string, any](size, onEvict, ttl)}
}

// Acquire returns the controller stored under (sessionID, kind), creating it
// with build when absent. Concurrent first requests share one controller.
func Acquire[T any](w *Workspace, sessionID, kind string, build func() *Controller[T]) *Controller[T] {
	key := sessionID + ":" + kind

	w.mu.Lock()
	defer w.mu.Unlock()
	if v, ok := w.cache.Get(key); ok {
		if ctrl, ok := v.(*Controller[T]); ok {
			w.cache.Add(key, ctrl) // refresh expiry
			return ctrl
		}
	}
	// An expired entry may linger until the cleanup tick; closing it here
	// keeps Add from overwriting it silently.
	w.cache.Remove(key)
	ctrl := build()
	w.cache.Add(key, ctrl)
	return ctrl
}

// Evict drops every controller of sessionID.
func (w *Workspace) Evict(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := sessionID + ":"
	for _, key := range w.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			w.cache.Remove(key)
		}
	}
}

// Len is the number of cached controllers.
func (w *Workspace) Len() int {
	return w.cache.Len()
}
