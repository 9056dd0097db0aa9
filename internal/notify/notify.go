package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/repository"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"
	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"

	"go.uber.org/zap"
)

// Service доставляет уведомления о заказах покупателю и в админ-чат,
// заводя для каждого заказа отдельную тему форума.
type Service struct {
	gw                 telegram.Gateway
	safe               *telegram.Safe
	repo               *repository.Repository
	defaultAdminChatID string
	log                *zap.Logger
}

func NewService(gw telegram.Gateway, repo *repository.Repository, defaultAdminChatID string, log *zap.Logger) *Service {
	return &Service{
		gw:                 gw,
		safe:               telegram.NewSafe(gw, log),
		repo:               repo,
		defaultAdminChatID: defaultAdminChatID,
		log:                log,
	}
}

func (s *Service) adminChatID(ctx context.Context) (int64, bool) {
	raw, found, err := s.repo.Settings.Get(ctx, service.AdminChatIDKey)
	if err != nil {
		s.log.Warn("Не удалось прочитать настройку админ-чата", zap.Error(err))
	}
	if !found || raw == "" {
		raw = s.defaultAdminChatID
	}
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.log.Warn("Некорректный id админ-чата", zap.String("value", raw))
		return 0, false
	}
	return id, true
}

// NotifyNewOrder шлёт админу карточку нового заказа с кнопками решения.
// Перед этим пытается создать тему заказа; без тем работаем в плоском режиме.
func (s *Service) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	chatID, ok := s.adminChatID(ctx)
	if !ok {
		s.log.Warn("Пропуск уведомления админа: админ-чат не настроен")
		return nil
	}

	topicLink := s.ensureOrderChat(ctx, order, chatID)

	text := AdminOrderText(order)
	if topicLink == "" {
		text += "\n\n⚠️ <i>Чат заказа не создан. Включите темы (Forum) в админ-чате, чтобы работать в отдельных чатах заказов.</i>"
	}

	approveBtn := telegram.InlineKeyboardButton{
		Text:         "✅ Одобрить",
		CallbackData: CallbackApprovePrefix + order.ID.String(),
	}
	rejectBtn := telegram.InlineKeyboardButton{
		Text:         "❌ Отклонить",
		CallbackData: CallbackRejectPrefix + order.ID.String(),
	}

	rows := [][]telegram.InlineKeyboardButton{{approveBtn, rejectBtn}}
	if topicLink != "" {
		rows = append(rows, []telegram.InlineKeyboardButton{{Text: "💬 В чат заказа", URL: topicLink}})
	}

	s.log.Info("Отправка уведомления админу о заказе",
		zap.String("orderId", order.ID.String()), zap.Int64("chatId", chatID))
	_, err := s.gw.SendMessage(ctx, telegram.SendMessage{
		ChatID:      chatID,
		Text:        text,
		ParseHTML:   true,
		ReplyMarkup: &telegram.InlineKeyboardMarkup{Rows: rows},
	})
	return err
}

// ensureOrderChat создаёт тему заказа при первом обращении и сохраняет
// привязку на заказ. Возвращает ссылку на тему либо пустую строку.
func (s *Service) ensureOrderChat(ctx context.Context, order *models.Order, adminChatID int64) string {
	if order.AdminChatID != nil && order.AdminThreadID != nil {
		return TopicLink(*order.AdminChatID, *order.AdminThreadID)
	}

	threadID, ok := s.safe.CreateForumTopic(ctx, adminChatID, OrderTopicName(order))
	if !ok {
		return ""
	}

	var threadMessageID *int
	sent := s.safe.SendMessage(ctx, telegram.SendMessage{
		ChatID:    adminChatID,
		ThreadID:  &threadID,
		Text:      AdminOrderText(order),
		ParseHTML: true,
	})
	if sent != nil {
		threadMessageID = &sent.MessageID
	}

	if err := s.repo.Orders.BindAdminThread(ctx, order.ID, adminChatID, threadID, threadMessageID); err != nil {
		s.log.Warn("Не удалось сохранить привязку темы заказа",
			zap.String("orderId", order.ID.String()), zap.Error(err))
	}
	order.AdminChatID = &adminChatID
	order.AdminThreadID = &threadID
	order.AdminThreadMessageID = threadMessageID

	return TopicLink(adminChatID, threadID)
}

// UpdateOrderTopicStatus переименовывает тему заказа под текущий статус.
func (s *Service) UpdateOrderTopicStatus(ctx context.Context, order *models.Order) {
	if order.AdminChatID == nil || order.AdminThreadID == nil {
		return
	}
	s.safe.EditForumTopic(ctx, *order.AdminChatID, *order.AdminThreadID, OrderTopicName(order))
}

func (s *Service) NotifyUserOrderPlaced(ctx context.Context, order *models.Order) error {
	if order.TgUserID <= 0 {
		s.log.Warn("Пропуск уведомления: у заказа нет tg user id", zap.String("orderId", order.ID.String()))
		return nil
	}
	_, err := s.gw.SendMessage(ctx, telegram.SendMessage{
		ChatID:    order.TgUserID,
		Text:      UserPlacedText(order),
		ParseHTML: true,
	})
	return err
}

func (s *Service) NotifyUserOrderStatus(ctx context.Context, order *models.Order, decision service.OrderDecision) error {
	if order.TgUserID <= 0 {
		s.log.Warn("Пропуск уведомления: у заказа нет tg user id", zap.String("orderId", order.ID.String()))
		return nil
	}

	var text string
	if decision == service.DecisionApproved {
		text = UserApprovedText(order)
	} else {
		text = UserRejectedText(order, "")
	}

	_, err := s.gw.SendMessage(ctx, telegram.SendMessage{
		ChatID:    order.TgUserID,
		Text:      text,
		ParseHTML: true,
	})
	return err
}

func (s *Service) NotifyUserOrderRejected(ctx context.Context, order *models.Order, reason string) error {
	if order.TgUserID <= 0 {
		s.log.Warn("Пропуск уведомления: у заказа нет tg user id", zap.String("orderId", order.ID.String()))
		return nil
	}
	_, err := s.gw.SendMessage(ctx, telegram.SendMessage{
		ChatID:    order.TgUserID,
		Text:      UserRejectedText(order, reason),
		ParseHTML: true,
	})
	return err
}

func (s *Service) NotifyUserOrderShipped(ctx context.Context, order *models.Order) error {
	if order.TgUserID <= 0 {
		s.log.Warn("Пропуск уведомления: у заказа нет tg user id", zap.String("orderId", order.ID.String()))
		return nil
	}
	_, err := s.gw.SendMessage(ctx, telegram.SendMessage{
		ChatID:    order.TgUserID,
		Text:      UserShippedText(order),
		ParseHTML: true,
	})
	return err
}

// NotifyUserPaymentRequest шлёт покупателю счёт (шаблон из настроек) с
// принудительным ответом, чтобы подтверждение оплаты вернулось в чат заказа.
func (s *Service) NotifyUserPaymentRequest(ctx context.Context, order *models.Order) (*telegram.MessageRef, error) {
	if order.TgUserID <= 0 {
		return nil, fmt.Errorf("order %s has no tg user id", order.ID)
	}

	html, found, err := s.repo.Settings.Get(ctx, service.PaymentTemplateKey)
	if err != nil {
		return nil, err
	}
	if !found || html == "" {
		html = service.DefaultPaymentTemplate()
	}

	s.log.Info("Отправка счёта покупателю",
		zap.String("orderId", order.ID.String()), zap.Int64("tgUserId", order.TgUserID))
	return s.gw.SendMessage(ctx, telegram.SendMessage{
		ChatID:     order.TgUserID,
		Text:       html,
		ParseHTML:  true,
		ForceReply: true,
	})
}
