package services

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// SessionStore is keyed persistence of PromoState by session id. Load
// returns (nil, nil) when no state exists for the session.
type SessionStore interface {
	Load(sessionID string) (*models.PromoState, error)
	Save(state *models.PromoState) error
	Delete(sessionID string) error
}

// MemoryService puts a per-session cache in front of a durable SessionStore.
// Entries are overwritten on every save and dropped when a save fails, so a
// crash-restart always falls back to the durable copy. It implements
// SessionStore itself.
type MemoryService struct {
	store SessionStore

	mu    sync.RWMutex
	cache map[string]*models.PromoState
}

func NewMemoryService(store SessionStore) *MemoryService {
	return &MemoryService{
		store: store,
		cache: make(map[string]*models.PromoState),
	}
}

func (m *MemoryService) Load(sessionID string) (*models.PromoState, error) {
	m.mu.RLock()
	state, ok := m.cache[sessionID]
	m.mu.RUnlock()
	if ok {
		return state, nil
	}

	state, err := m.store.Load(sessionID)
	if err != nil {
		return nil, err
	}
	if state != nil {
		m.mu.Lock()
		m.cache[sessionID] = state
		m.mu.Unlock()
	}
	return state, nil
}

func (m *MemoryService) Save(state *models.PromoState) error {
	state.Touch()
	if err := m.store.Save(state); err != nil {
		// Drop the cached copy so the next load reflects what was
		// actually persisted.
		m.mu.Lock()
		delete(m.cache, state.SessionID)
		m.mu.Unlock()
		return err
	}
	m.mu.Lock()
	m.cache[state.SessionID] = state
	m.mu.Unlock()
	return nil
}

func (m *MemoryService) Delete(sessionID string) error {
	m.mu.Lock()
	delete(m.cache, sessionID)
	m.mu.Unlock()
	if err := m.store.Delete(sessionID); err != nil {
		return err
	}
	logrus.Infof("Session state deleted: %s", sessionID)
	return nil
}
