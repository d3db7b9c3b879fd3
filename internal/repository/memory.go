package repository

import (
	"context"
	"fmt"
	"sync"
)

// MemoryTable хранит строки в памяти. Используется бэкендом memory и в тестах.
type MemoryTable struct {
	mu   sync.RWMutex
	rows [][]string
}

func NewMemoryTable(rows ...[]string) *MemoryTable {
	t := &MemoryTable{}
	for _, r := range rows {
		t.rows = append(t.rows, copyRow(r))
	}
	return t
}

func (t *MemoryTable) Rows(_ context.Context) ([][]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = copyRow(r)
	}
	return out, nil
}

func (t *MemoryTable) Append(_ context.Context, row []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = append(t.rows, copyRow(row))
	return nil
}

func (t *MemoryTable) DeleteRow(_ context.Context, position int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if position < 1 || position > len(t.rows) {
		return fmt.Errorf("delete row %d of %d: %w", position, len(t.rows), ErrPosition)
	}
	t.rows = append(t.rows[:position-1], t.rows[position:]...)
	return nil
}

// Len возвращает количество строк, включая заголовок
func (t *MemoryTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func copyRow(r []string) []string {
	return append([]string(nil), r...)
}
