package session

import (
	"context"
	"sync"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Locks - мьютекс на каждого пользователя. Записи удаляются, когда ими никто не пользуется.
type Locks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

func NewLocks() *Locks {
	return &Locks{entries: make(map[int64]*lockEntry)}
}

func (l *Locks) acquire(userID int64) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[userID]
	if !ok {
		e = &lockEntry{}
		l.entries[userID] = e
	}
	e.refs++
	return e
}

func (l *Locks) release(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[userID]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(l.entries, userID)
	}
}

// WithLock выполняет fn, удерживая блокировку пользователя.
// Если контекст отменён до начала, fn не вызывается.
func (l *Locks) WithLock(ctx context.Context, userID int64, fn func(context.Context) error) error {
	e := l.acquire(userID)
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		l.release(userID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (l *Locks) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
