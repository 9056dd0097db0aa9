package repository

import (
	"context"
	"errors"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepo interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

type settingRepo struct{ db *gorm.DB }

func NewSettingRepo(db *gorm.DB) SettingRepo { return &settingRepo{db: db} }

func (r *settingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var s models.Setting
	err := r.db.WithContext(ctx).First(&s, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.Value, true, nil
}

func (r *settingRepo) Put(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.Setting{Key: key, Value: value}).Error
}
