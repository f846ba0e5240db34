package service

import "sync"

// proposalLocks serializes recompute-and-save per proposal. Interactive
// mutations and bulk/background paths take the same lock, so two recompute
// runs on one proposal can never interleave and overwrite each other's
// totals with stale values.
type proposalLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newProposalLocks() *proposalLocks {
	return &proposalLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the lock for one proposal and returns its release func.
func (l *proposalLocks) Lock(proposalID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[proposalID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[proposalID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
