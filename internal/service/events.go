package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderItemEvent struct {
	ProductID  uuid.UUID  `json:"product_id"`
	VariantID  *uuid.UUID `json:"variant_id,omitempty"`
	Quantity   int        `json:"quantity"`
	PriceMinor int64      `json:"price_minor"`
}

type OrderCreatedEvent struct {
	OrderID       uuid.UUID        `json:"order_id"`
	TgUserID      int64            `json:"tg_user_id"`
	Items         []OrderItemEvent `json:"items"`
	SubtotalMinor int64            `json:"subtotal_minor"`
	DiscountMinor int64            `json:"discount_minor"`
	TotalMinor    int64            `json:"total_minor"`
	Currency      string           `json:"currency"`
	PromoCode     string           `json:"promo_code,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	TgUserID  int64     `json:"tg_user_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Tracking  string    `json:"tracking_number,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error
}
