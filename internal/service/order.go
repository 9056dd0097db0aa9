package service

import (
	"context"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/repository"

	"github.com/google/uuid"
)

type CreateOrderItem struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

type CreateOrderInput struct {
	CustomerName string
	Phone        string
	Address      string
	Comment      string
	PromoCode    string
	TgUserID     int64
	TgUsername   string
	Items        []CreateOrderItem
}

type OrderListFilter struct {
	Status   *models.OrderStatus
	TgUserID *int64
	Limit    int
	Offset   int
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error)
	Ship(ctx context.Context, id uuid.UUID, trackingNumber string) (*models.Order, error)

	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByAdminThread(ctx context.Context, chatID int64, threadID int) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// Store — транзакционная граница поверх агрегата репозиториев.
type Store interface {
	WithTx(ctx context.Context, fn func(tx *repository.Repository) error) error
}
