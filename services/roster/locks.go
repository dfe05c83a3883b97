package roster

import "sync"

// gameLocks serializes roster mutations per game inside this process. The
// store's row lock does the same across processes.
type gameLocks struct {
	mu    sync.Mutex
	locks map[uint]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[uint]*gameLock)}
}

func (l *gameLocks) lock(gameID uint) func() {
	l.mu.Lock()
	gl, ok := l.locks[gameID]
	if !ok {
		gl = &gameLock{}
		l.locks[gameID] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.Lock()
	return func() {
		gl.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, gameID)
		}
		l.mu.Unlock()
	}
}
