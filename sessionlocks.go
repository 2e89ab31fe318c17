package quizgame

import "sync"

// SessionLocks hands out one mutex per session key, so requests of the same
// session run one at a time while different sessions never wait on each other.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionLocks creates an empty lock table
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[string]*sessionLock),
	}
}

// Lock blocks until key is free and returns the matching unlock function
func (sl *SessionLocks) Lock(key string) (unlock func()) {
	sl.mu.Lock()
	l, ok := sl.locks[key]
	if !ok {
		l = &sessionLock{}
		sl.locks[key] = l
	}
	l.refs++
	sl.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()

			sl.mu.Lock()
			defer sl.mu.Unlock()
			l.refs--
			if l.refs == 0 {
				delete(sl.locks, key)
			}
		})
	}
}

// Size returns the number of keys currently held or waited on
func (sl *SessionLocks) Size() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return len(sl.locks)
}
