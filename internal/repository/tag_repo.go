package repository

import (
	"context"
	"errors"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagRepo interface {
	Create(ctx context.Context, t *models.Tag) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type tagRepo struct{ db *gorm.DB }

func NewTagRepo(db *gorm.DB) TagRepo { return &tagRepo{db: db} }

func (r *tagRepo) Create(ctx context.Context, t *models.Tag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tagRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var t models.Tag
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *tagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var t models.Tag
	err := r.db.WithContext(ctx).First(&t, "lower(name) = lower(?)", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *tagRepo) List(ctx context.Context) ([]*models.Tag, error) {
	var list []*models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *tagRepo) Rename(ctx context.Context, id uuid.UUID, name string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Tag{}).Where("id = ?", id).Update("name", name)
	return tx.RowsAffected > 0, tx.Error
}

func (r *tagRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Tag{})
	return tx.RowsAffected > 0, tx.Error
}
