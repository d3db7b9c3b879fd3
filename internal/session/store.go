// Package session хранит состояние диалога каждого пользователя.
package session

import (
	"context"
	"sync"

	"github.com/ivanoskov/budget_bot/internal/model"
)

// Store - хранилище сессий по идентификатору пользователя
type Store interface {
	Get(ctx context.Context, userID int64) (*model.Session, bool, error)
	Set(ctx context.Context, userID int64, s *model.Session) error
}

// Memory хранит сессии в памяти процесса
type Memory struct {
	mu       sync.RWMutex
	sessions map[int64]*model.Session
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[int64]*model.Session)}
}

// Get возвращает копию сессии, чтобы вызывающий не менял общее состояние без Set
func (m *Memory) Get(_ context.Context, userID int64) (*model.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, false, nil
	}
	return s.Clone(), true, nil
}

func (m *Memory) Set(_ context.Context, userID int64, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = s.Clone()
	return nil
}

// Len возвращает число сохранённых сессий
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
