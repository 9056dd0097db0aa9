package repository

import (
	"context"
	"errors"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromoRepo interface {
	Create(ctx context.Context, p *models.PromoCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error)
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	List(ctx context.Context) ([]*models.PromoCode, error)
	Save(ctx context.Context, p *models.PromoCode) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// TryIncrementUses: uses_count += 1, если лимит не исчерпан (атомарно)
	TryIncrementUses(ctx context.Context, id uuid.UUID) (bool, error)
}

type promoRepo struct{ db *gorm.DB }

func NewPromoRepo(db *gorm.DB) PromoRepo { return &promoRepo{db: db} }

func (r *promoRepo) Create(ctx context.Context, p *models.PromoCode) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *promoRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error) {
	var p models.PromoCode
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *promoRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var p models.PromoCode
	err := r.db.WithContext(ctx).First(&p, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *promoRepo) List(ctx context.Context) ([]*models.PromoCode, error) {
	var list []*models.PromoCode
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *promoRepo) Save(ctx context.Context, p *models.PromoCode) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *promoRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PromoCode{})
	return tx.RowsAffected > 0, tx.Error
}

func (r *promoRepo) TryIncrementUses(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE promo_codes
SET uses_count = uses_count + 1
WHERE id = @id
  AND active = true
  AND (max_uses IS NULL OR uses_count < max_uses)
`, map[string]any{"id": id})
	return tx.RowsAffected > 0, tx.Error
}
