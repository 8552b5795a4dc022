package session

import "sync"

// Unlocked remembers tips the user explicitly unlocked. It lives for the
// process only and is never persisted.
type Unlocked struct {
	mu  sync.RWMutex
	ids map[string]bool
}

func NewUnlocked() *Unlocked {
	return &Unlocked{ids: make(map[string]bool)}
}

func (u *Unlocked) Add(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ids[id] = true
}

func (u *Unlocked) Contains(id string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.ids[id]
}

func (u *Unlocked) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.ids)
}

func (u *Unlocked) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ids = make(map[string]bool)
}
