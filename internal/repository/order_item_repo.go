package repository

import (
	"context"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderItemRepo interface {
	BulkCreate(ctx context.Context, items []models.OrderItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	// SoldCounts — сумма количеств по всем заказам, сгруппированная по товару
	SoldCounts(ctx context.Context) (map[uuid.UUID]int64, error)
}

type orderItemRepo struct{ db *gorm.DB }

func NewOrderItemRepo(db *gorm.DB) OrderItemRepo { return &orderItemRepo{db: db} }

func (r *orderItemRepo) BulkCreate(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *orderItemRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *orderItemRepo) SoldCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []struct {
		ProductID uuid.UUID
		Sold      int64
	}
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Select("product_id, SUM(quantity) AS sold").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Sold
	}
	return out, nil
}
