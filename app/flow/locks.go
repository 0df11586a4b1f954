package flow

import "sync"

// userLocks serializes handling per user; telebot runs handlers concurrently.
type userLocks struct {
	mu sync.Mutex
	m  map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{m: make(map[int64]*userLock)}
}

// Lock blocks until the user's lock is held and returns its release func.
func (l *userLocks) Lock(userID int64) func() {
	l.mu.Lock()
	e, ok := l.m[userID]
	if !ok {
		e = &userLock{}
		l.m[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
