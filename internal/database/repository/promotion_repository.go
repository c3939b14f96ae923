package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/promoagente/promoagente-backend/internal/models"
)

type PromotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// SaveFinalized archives one finalized promotion.
func (r *PromotionRepository) SaveFinalized(promo *models.Promotion) error {
	if err := r.db.Create(promo).Error; err != nil {
		return fmt.Errorf("%w: save promotion %s: %v", ErrStateStore, promo.PromoID, err)
	}
	return nil
}

// GetAll retrieves all finalized promotions, newest first.
func (r *PromotionRepository) GetAll() ([]*models.Promotion, error) {
	var promos []*models.Promotion
	err := r.db.Order("created_at DESC").Find(&promos).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list promotions: %v", ErrStateStore, err)
	}
	return promos, nil
}

// GetBySessionID retrieves the finalized promotions archived from a session.
func (r *PromotionRepository) GetBySessionID(sessionID string) ([]*models.Promotion, error) {
	var promos []*models.Promotion
	err := r.db.Where("session_id = ?", sessionID).Order("created_at DESC").Find(&promos).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list promotions for %s: %v", ErrStateStore, sessionID, err)
	}
	return promos, nil
}
