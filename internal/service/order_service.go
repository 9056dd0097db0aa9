package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const currencyUAH = "UAH"

// Допустимые переходы статусов. Всё остальное — ErrInvalidStatusTransition,
// в частности повторный reject не восстанавливает сток дважды.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusNew:      {models.OrderStatusApproved, models.OrderStatusRejected},
	models.OrderStatusApproved: {models.OrderStatusShipped, models.OrderStatusRejected},
}

func canTransition(from, to models.OrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NormalizePromoCode приводит код к канонической форме: trim + upper.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type orderService struct {
	store    Store
	repo     *repository.Repository
	notifier OrderNotifier
	events   EventBus
	log      *zap.Logger
	now      func() time.Time
}

func NewOrderService(store Store, repo *repository.Repository, notifier OrderNotifier, events EventBus, log *zap.Logger) OrderService {
	return &orderService{
		store:    store,
		repo:     repo,
		notifier: notifier,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// demandKey агрегирует спрос по (товар, вариант): две строки на один вариант
// проверяются против остатка суммарно, а не по отдельности.
type demandKey struct {
	productID uuid.UUID
	variantID uuid.UUID // uuid.Nil, если вариант не задан
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, ErrQuantityInvalid
		}
	}

	s.log.Info("Создание заказа",
		zap.Int64("tgUserId", in.TgUserID), zap.Int("items", len(in.Items)))

	var order *models.Order
	now := s.now()

	err := s.store.WithTx(ctx, func(tx *repository.Repository) error {
		products := map[uuid.UUID]*models.Product{}
		demand := map[demandKey]int{}
		demandOrder := []demandKey{}

		var (
			itemsDB  []models.OrderItem
			subtotal int64
		)

		for _, it := range in.Items {
			p, ok := products[it.ProductID]
			if !ok {
				loaded, err := tx.Products.GetByID(ctx, it.ProductID)
				if err != nil {
					return err
				}
				if loaded == nil {
					return fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
				}
				if !loaded.Active || loaded.Archived {
					return fmt.Errorf("%w: %s", ErrProductInactive, loaded.Title)
				}
				products[it.ProductID] = loaded
				p = loaded
			}

			var variant *models.ProductVariant
			if p.HasVariants() {
				if it.VariantID == nil {
					return fmt.Errorf("%w: %s", ErrVariantRequired, p.Title)
				}
				variant = p.FindVariant(*it.VariantID)
				if variant == nil {
					return fmt.Errorf("%w: %s", ErrVariantNotFound, *it.VariantID)
				}
			} else if it.VariantID != nil {
				return fmt.Errorf("%w: %s", ErrVariantNotAllowed, p.Title)
			}

			key := demandKey{productID: p.ID}
			if variant != nil {
				key.variantID = variant.ID
			}
			if _, seen := demand[key]; !seen {
				demandOrder = append(demandOrder, key)
			}
			demand[key] += it.Quantity

			line := models.OrderItem{
				ProductID:          p.ID,
				TitleSnapshot:      p.Title,
				PriceMinorSnapshot: p.PriceMinor,
				Quantity:           it.Quantity,
				CreatedAt:          now,
			}
			if variant != nil {
				vid := variant.ID
				vname := variant.Name
				line.VariantID = &vid
				line.VariantNameSnapshot = &vname
			}
			itemsDB = append(itemsDB, line)
			subtotal += p.PriceMinor * int64(it.Quantity)
		}

		// Списание остатков по агрегированному спросу, атомарно на каждую позицию
		for _, key := range demandOrder {
			p := products[key.productID]
			qty := demand[key]

			var (
				ok  bool
				err error
			)
			if key.variantID != uuid.Nil {
				ok, err = tx.Products.TryDeductVariantStock(ctx, key.productID, key.variantID, qty)
			} else {
				ok, err = tx.Products.TryDeductStock(ctx, key.productID, qty)
			}
			if err != nil {
				return err
			}
			if !ok {
				s.log.Warn("Недостаточно остатка для заказа",
					zap.String("product", p.Title), zap.Int("requested", qty))
				return fmt.Errorf("%w: %s", ErrInsufficientStock, p.Title)
			}
		}

		// Промокод: один на заказ, процент приоритетнее фиксированной суммы
		var (
			discount  int64
			promoCode *string
		)
		if code := NormalizePromoCode(in.PromoCode); code != "" {
			promo, err := tx.Promos.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if promo == nil {
				return fmt.Errorf("%w: %s", ErrPromoNotFound, code)
			}
			if !promo.Active {
				return fmt.Errorf("%w: %s", ErrPromoInactive, code)
			}
			ok, err := tx.Promos.TryIncrementUses(ctx, promo.ID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrPromoLimitReached, code)
			}

			if promo.DiscountPercent > 0 {
				discount = subtotal * int64(promo.DiscountPercent) / 100
			} else if promo.DiscountAmountMinor > 0 {
				discount = promo.DiscountAmountMinor
				if discount > subtotal {
					discount = subtotal
				}
			}
			promoCode = &promo.Code
		}

		total := subtotal - discount
		if total < 0 {
			total = 0
		}

		order = &models.Order{
			Status:        models.OrderStatusNew,
			SubtotalMinor: subtotal,
			DiscountMinor: discount,
			TotalMinor:    total,
			Currency:      currencyUAH,
			CustomerName:  in.CustomerName,
			Phone:         in.Phone,
			Address:       in.Address,
			Comment:       in.Comment,
			TgUserID:      in.TgUserID,
			TgUsername:    in.TgUsername,
			PromoCode:     promoCode,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}

		for i := range itemsDB {
			itemsDB[i].OrderID = order.ID
		}
		if err := tx.Items.BulkCreate(ctx, itemsDB); err != nil {
			return err
		}
		order.Items = itemsDB
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Заказ создан",
		zap.String("orderId", order.ID.String()), zap.Int64("totalMinor", order.TotalMinor))

	// Уведомления после коммита: их сбой заказ не откатывает
	if s.notifier != nil {
		if err := s.notifier.NotifyUserOrderPlaced(ctx, order); err != nil {
			s.log.Warn("Не удалось уведомить покупателя о заказе", zap.Error(err))
		}
		if err := s.notifier.NotifyNewOrder(ctx, order); err != nil {
			s.log.Warn("Не удалось уведомить админа о новом заказе", zap.Error(err))
		}
	}

	if s.events != nil {
		evItems := make([]OrderItemEvent, 0, len(order.Items))
		for _, it := range order.Items {
			evItems = append(evItems, OrderItemEvent{
				ProductID:  it.ProductID,
				VariantID:  it.VariantID,
				Quantity:   it.Quantity,
				PriceMinor: it.PriceMinorSnapshot,
			})
		}
		promo := ""
		if order.PromoCode != nil {
			promo = *order.PromoCode
		}
		_ = s.events.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:       order.ID,
			TgUserID:      order.TgUserID,
			Items:         evItems,
			SubtotalMinor: order.SubtotalMinor,
			DiscountMinor: order.DiscountMinor,
			TotalMinor:    order.TotalMinor,
			Currency:      order.Currency,
			PromoCode:     promo,
			CreatedAt:     order.CreatedAt,
		})
	}

	return order, nil
}

func (s *orderService) Approve(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order *models.Order

	err := s.store.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		order, err = s.loadForTransition(ctx, tx, id, models.OrderStatusApproved)
		if err != nil {
			return err
		}
		return tx.Orders.UpdateStatus(ctx, id, models.OrderStatusApproved)
	})
	if err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusApproved

	s.log.Info("Заказ одобрен", zap.String("orderId", id.String()))

	if s.notifier != nil {
		if err := s.notifier.NotifyUserOrderStatus(ctx, order, DecisionApproved); err != nil {
			s.log.Warn("Не удалось уведомить покупателя об одобрении", zap.Error(err))
		}
		s.notifier.UpdateOrderTopicStatus(ctx, order)
	}
	s.publishStatusChanged(ctx, order, "")

	return order, nil
}

func (s *orderService) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	reason = sanitizeReason(reason)
	var order *models.Order

	err := s.store.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		order, err = s.loadForTransition(ctx, tx, id, models.OrderStatusRejected)
		if err != nil {
			return err
		}

		// Вернуть сток по каждой позиции: в вариант, если он был, иначе в товар
		for _, it := range order.Items {
			if it.VariantID != nil {
				err = tx.Products.RestoreVariantStock(ctx, it.ProductID, *it.VariantID, it.Quantity)
			} else {
				err = tx.Products.RestoreStock(ctx, it.ProductID, it.Quantity)
			}
			if err != nil {
				return err
			}
		}

		return tx.Orders.UpdateStatus(ctx, id, models.OrderStatusRejected)
	})
	if err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusRejected

	s.log.Info("Заказ отклонён", zap.String("orderId", id.String()), zap.String("reason", reason))

	if s.notifier != nil {
		if err := s.notifier.NotifyUserOrderRejected(ctx, order, reason); err != nil {
			s.log.Warn("Не удалось уведомить покупателя об отклонении", zap.Error(err))
		}
		s.notifier.UpdateOrderTopicStatus(ctx, order)
	}
	s.publishStatusChanged(ctx, order, reason)

	return order, nil
}

func (s *orderService) Ship(ctx context.Context, id uuid.UUID, trackingNumber string) (*models.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, ErrTrackingNumberRequired
	}

	var order *models.Order
	err := s.store.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		order, err = s.loadForTransition(ctx, tx, id, models.OrderStatusShipped)
		if err != nil {
			return err
		}
		if err := tx.Orders.SetTrackingNumber(ctx, id, trackingNumber); err != nil {
			return err
		}
		return tx.Orders.UpdateStatus(ctx, id, models.OrderStatusShipped)
	})
	if err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusShipped
	order.TrackingNumber = &trackingNumber

	s.log.Info("Заказ отправлен",
		zap.String("orderId", id.String()), zap.String("trackingNumber", trackingNumber))

	if s.notifier != nil {
		if err := s.notifier.NotifyUserOrderShipped(ctx, order); err != nil {
			s.log.Warn("Не удалось уведомить покупателя об отправке", zap.Error(err))
		}
		s.notifier.UpdateOrderTopicStatus(ctx, order)
	}
	s.publishStatusChanged(ctx, order, "")

	return order, nil
}

func (s *orderService) loadForTransition(ctx context.Context, tx *repository.Repository, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	order, err := tx.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !canTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, to)
	}
	return order, nil
}

func (s *orderService) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) FindByAdminThread(ctx context.Context, chatID int64, threadID int) (*models.Order, error) {
	order, err := s.repo.Orders.GetByAdminThread(ctx, chatID, threadID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error) {
	ordersPtr, total, err := s.repo.Orders.List(ctx, repository.OrderListFilter{
		Status:   f.Status,
		TgUserID: f.TgUserID,
		Limit:    f.Limit,
		Offset:   f.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, len(ordersPtr))
	for i, o := range ordersPtr {
		orders[i] = *o
	}
	return orders, total, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	s.log.Info("Заказ удалён", zap.String("orderId", id.String()))
	return nil
}

func (s *orderService) publishStatusChanged(ctx context.Context, order *models.Order, reason string) {
	if s.events == nil {
		return
	}
	tracking := ""
	if order.TrackingNumber != nil {
		tracking = *order.TrackingNumber
	}
	_ = s.events.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
		OrderID:   order.ID,
		TgUserID:  order.TgUserID,
		Status:    string(order.Status),
		Reason:    reason,
		Tracking:  tracking,
		ChangedAt: s.now(),
	})
}

func sanitizeReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if len(reason) > 500 {
		reason = reason[:500]
	}
	return reason
}
