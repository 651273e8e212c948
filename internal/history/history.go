package history

import (
	"sync"

	"github.com/lunachat/luna/internal/models"
)

// Log is an append-only, in-memory conversation log. It lives for the
// lifetime of the process and is shared by all requests, so every
// accessor takes the lock.
type Log struct {
	mu    sync.RWMutex
	turns []models.Turn
}

func NewLog() *Log {
	return &Log{turns: make([]models.Turn, 0)}
}

// Append adds turns to the end of the log in the order given.
func (l *Log) Append(turns ...models.Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turns...)
}

// Turns returns a copy of the full log in conversation order.
func (l *Log) Turns() []models.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Window returns a copy of at most the last n turns.
func (l *Log) Window(n int) []models.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n > len(l.turns) {
		n = len(l.turns)
	}
	out := make([]models.Turn, n)
	copy(out, l.turns[len(l.turns)-n:])
	return out
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = l.turns[:0]
}

// Len reports the number of recorded turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
