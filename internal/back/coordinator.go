package back

import (
	"sort"
	"sync"
)

// keyedLocks hands out one mutex per key so work can be serialized per
// Discord channel (queue mutation + matchmaking attempt) or per player
// (rating history updates) without blocking unrelated keys.
// Locks are never reclaimed, the key space is bounded by the number of
// channels and players seen.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{
		locks: map[string]*sync.Mutex{},
	}
}

func (l *keyedLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}

	return lock
}

// lock acquires the mutex of one key and returns its release.
func (l *keyedLocks) lock(key string) (unlock func()) {
	lock := l.get(key)
	lock.Lock()
	return lock.Unlock
}

// lockAll acquires the mutexes of every given key, deduplicated and in
// sorted order so two callers locking overlapping sets cannot deadlock.
func (l *keyedLocks) lockAll(keys []string) (unlock func()) {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	locked := make([]*sync.Mutex, 0, len(sorted))
	for k := range sorted {
		if k > 0 && sorted[k] == sorted[k-1] {
			continue
		}

		lock := l.get(sorted[k])
		lock.Lock()
		locked = append(locked, lock)
	}

	return func() {
		for k := len(locked) - 1; k >= 0; k-- {
			locked[k].Unlock()
		}
	}
}
