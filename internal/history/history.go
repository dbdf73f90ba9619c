package history

import (
	"sync"

	"docchat/internal/domain"
)

const DefaultCapacity = 50

// Log keeps the most recent conversation turns in a fixed-size ring.
// Once full, each Append drops the oldest turn.
type Log struct {
	mu    sync.Mutex
	turns []domain.Turn
	head  int // index of the oldest turn
	size  int
}

func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{turns: make([]domain.Turn, capacity)}
}

func (l *Log) Append(t domain.Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.size < len(l.turns) {
		l.turns[(l.head+l.size)%len(l.turns)] = t
		l.size++
		return
	}
	l.turns[l.head] = t
	l.head = (l.head + 1) % len(l.turns)
}

// Turns returns a copy of the retained turns, oldest first.
func (l *Log) Turns() []domain.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Turn, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.turns[(l.head+i)%len(l.turns)]
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *Log) Cap() int { return len(l.turns) }

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.turns)
	l.head, l.size = 0, 0
}
