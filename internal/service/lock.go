package service

import "sync"

// matchLocks serializes state-machine transitions per match id. Accept and
// cancel share the same entry predicate distinguished only by caller
// identity, so two near-simultaneous calls must not interleave.
type matchLocks struct {
	mu    sync.Mutex
	locks map[int64]*matchLock
}

type matchLock struct {
	sync.Mutex
	refs int
}

func newMatchLocks() *matchLocks {
	return &matchLocks{locks: make(map[int64]*matchLock)}
}

// Acquire blocks until the caller holds the exclusive lock for matchID and
// returns the release function.
func (ml *matchLocks) Acquire(matchID int64) func() {
	ml.mu.Lock()
	l, ok := ml.locks[matchID]
	if !ok {
		l = &matchLock{}
		ml.locks[matchID] = l
	}
	l.refs++
	ml.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		ml.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(ml.locks, matchID)
		}
		ml.mu.Unlock()
	}
}
