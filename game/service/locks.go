// game/service/locks.go
package service

import "sync"

// gameLocks hands out one mutex per game id so every conquest attempt for a
// game runs to completion before the next begins. Locks are never removed;
// a mutex per game ever touched by this instance is a few dozen bytes and
// games are permanent anyway.
type gameLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for gameID and returns its unlock function.
func (gl *gameLocks) Lock(gameID string) func() {
	gl.mu.Lock()
	lock, ok := gl.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		gl.locks[gameID] = lock
	}
	gl.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
