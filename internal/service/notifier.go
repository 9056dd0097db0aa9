package service

import (
	"context"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
)

type OrderDecision string

const (
	DecisionApproved OrderDecision = "APPROVED"
	DecisionRejected OrderDecision = "REJECTED"
)

// OrderNotifier — порт доставки уведомлений. Ошибки доставки не откатывают
// уже зафиксированную операцию: сервис их только логирует.
type OrderNotifier interface {
	NotifyUserOrderPlaced(ctx context.Context, order *models.Order) error
	NotifyNewOrder(ctx context.Context, order *models.Order) error
	NotifyUserOrderStatus(ctx context.Context, order *models.Order, decision OrderDecision) error
	NotifyUserOrderRejected(ctx context.Context, order *models.Order, reason string) error
	NotifyUserOrderShipped(ctx context.Context, order *models.Order) error
	UpdateOrderTopicStatus(ctx context.Context, order *models.Order)
}
