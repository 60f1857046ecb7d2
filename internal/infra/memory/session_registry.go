package memory

import "sync"

// SessionRegistry is an in-memory implementation of app.SessionRegistry:
// membership is checked and set under one lock, so the first starter wins.
type SessionRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{active: make(map[string]struct{})}
}

func (r *SessionRegistry) TryAcquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, held := r.active[key]; held {
		return false
	}
	r.active[key] = struct{}{}
	return true
}

func (r *SessionRegistry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, key)
}
