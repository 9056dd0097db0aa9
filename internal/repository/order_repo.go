package repository

import (
	"context"
	"errors"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	Status   *models.OrderStatus
	TgUserID *int64
	Limit    int
	Offset   int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByAdminThread(ctx context.Context, chatID int64, threadID int) (*models.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	SetTrackingNumber(ctx context.Context, id uuid.UUID, trackingNumber string) error
	BindAdminThread(ctx context.Context, id uuid.UUID, chatID int64, threadID int, threadMessageID *int) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByAdminThread(ctx context.Context, chatID int64, threadID int) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		First(&ord, "admin_chat_id = ? AND admin_thread_id = ?", chatID, threadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.TgUserID != nil {
		q = q.Where("tg_user_id = ?", *f.TgUserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []*models.Order
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Preload("Items").Find(&list).Error
	return list, total, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) SetTrackingNumber(ctx context.Context, id uuid.UUID, trackingNumber string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Update("tracking_number", trackingNumber).Error
}

func (r *orderRepo) BindAdminThread(ctx context.Context, id uuid.UUID, chatID int64, threadID int, threadMessageID *int) error {
	upd := map[string]any{
		"admin_chat_id":   chatID,
		"admin_thread_id": threadID,
	}
	if threadMessageID != nil {
		upd["admin_thread_message_id"] = *threadMessageID
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(upd).Error
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	return tx.RowsAffected > 0, tx.Error
}
