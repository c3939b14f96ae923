package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/promoagente/promoagente-backend/internal/models"
)

// ErrStateStore marks a load/save/delete failure of the session store.
// Store failures are fatal for a turn; the orchestrator surfaces them as a
// temporary unavailability.
var ErrStateStore = errors.New("state store failure")

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load retrieves the PromoState for a session. Returns (nil, nil) when the
// session has no stored state yet.
func (r *SessionRepository) Load(sessionID string) (*models.PromoState, error) {
	var row models.PromoSession
	err := r.db.First(&row, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrStateStore, sessionID, err)
	}
	return models.PromoStateFromMap(row.State), nil
}

// Save upserts the full PromoState as a single row keyed by session id.
func (r *SessionRepository) Save(state *models.PromoState) error {
	doc, err := toDocument(state)
	if err != nil {
		return fmt.Errorf("%w: serialize %s: %v", ErrStateStore, state.SessionID, err)
	}
	row := models.PromoSession{
		SessionID: state.SessionID,
		State:     doc,
	}
	err = r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStateStore, state.SessionID, err)
	}
	return nil
}

// Delete removes the stored state for a session.
func (r *SessionRepository) Delete(sessionID string) error {
	err := r.db.Delete(&models.PromoSession{}, "session_id = ?", sessionID).Error
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStateStore, sessionID, err)
	}
	return nil
}

// toDocument round-trips the state through JSON so list and metadata values
// land as plain jsonb types.
func toDocument(state *models.PromoState) (models.JSON, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	var doc models.JSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
