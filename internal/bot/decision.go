package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/notify"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"
	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DecisionHandler обрабатывает inline-кнопки карточки заказа и ответы
// админа на forced-reply подсказки (ТТН, причина отклонения).
type DecisionHandler struct {
	orders   service.OrderService
	notifier *notify.Service
	state    *State
	safe     *telegram.Safe
	admins   map[int64]bool
	log      *zap.Logger
}

func NewDecisionHandler(orders service.OrderService, notifier *notify.Service, state *State, safe *telegram.Safe, adminIDs []int64, log *zap.Logger) *DecisionHandler {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &DecisionHandler{
		orders:   orders,
		notifier: notifier,
		state:    state,
		safe:     safe,
		admins:   admins,
		log:      log,
	}
}

func (h *DecisionHandler) IsAdmin(userID int64) bool {
	return h.admins[userID]
}

// HandleCallback возвращает true, если callback относится к заказам.
func (h *DecisionHandler) HandleCallback(ctx context.Context, cb *telegram.Callback) bool {
	data := cb.Data
	var prefix string
	switch {
	case strings.HasPrefix(data, notify.CallbackApprovePrefix):
		prefix = notify.CallbackApprovePrefix
	case strings.HasPrefix(data, notify.CallbackRejectPrefix):
		prefix = notify.CallbackRejectPrefix
	case strings.HasPrefix(data, notify.CallbackShipPrefix):
		prefix = notify.CallbackShipPrefix
	case strings.HasPrefix(data, notify.CallbackInvoicePrefix):
		prefix = notify.CallbackInvoicePrefix
	default:
		return false
	}

	if cb.From == nil || !h.IsAdmin(cb.From.ID) {
		h.safe.AnswerCallback(ctx, telegram.AnswerCallback{
			CallbackID: cb.ID, Text: "⛔ Нет доступа", ShowAlert: true,
		})
		return true
	}

	orderID, err := uuid.Parse(strings.TrimPrefix(data, prefix))
	if err != nil {
		h.log.Warn("Некорректный id заказа в callback", zap.String("data", data))
		h.safe.AnswerCallback(ctx, telegram.AnswerCallback{CallbackID: cb.ID, Text: "Заказ не найден", ShowAlert: true})
		return true
	}

	switch prefix {
	case notify.CallbackApprovePrefix:
		h.approve(ctx, cb, orderID)
	case notify.CallbackRejectPrefix:
		h.promptRejection(ctx, cb, orderID)
	case notify.CallbackShipPrefix:
		h.promptShipment(ctx, cb, orderID)
	case notify.CallbackInvoicePrefix:
		h.sendInvoice(ctx, cb, orderID)
	}
	return true
}

func (h *DecisionHandler) approve(ctx context.Context, cb *telegram.Callback, orderID uuid.UUID) {
	order, err := h.orders.Approve(ctx, orderID)
	if err != nil {
		h.answerServiceError(ctx, cb.ID, err)
		return
	}
	if cb.Message != nil {
		h.rewriteOrderMessage(ctx, cb.Message.ChatID, cb.Message.MessageID, order, "", "")
	}
	h.safe.AnswerCallback(ctx, telegram.AnswerCallback{CallbackID: cb.ID, Text: "✅ Заказ одобрен"})
}

// promptShipment присылает forced-reply подсказку и регистрирует ожидание ТТН.
func (h *DecisionHandler) promptShipment(ctx context.Context, cb *telegram.Callback, orderID uuid.UUID) {
	if cb.Message == nil {
		return
	}
	sent := h.safe.SendMessage(ctx, telegram.SendMessage{
		ChatID:     cb.Message.ChatID,
		ThreadID:   cb.Message.ThreadID,
		Text:       "Введите ТТН для заказа <code>" + orderID.String() + "</code>",
		ParseHTML:  true,
		ForceReply: true,
	})
	if sent == nil {
		h.safe.AnswerCallback(ctx, telegram.AnswerCallback{CallbackID: cb.ID, Text: "Ошибка", ShowAlert: true})
		return
	}
	h.state.PutPending(sent.MessageID, PendingAction{
		Kind:           PendingShipment,
		OrderID:        orderID,
		ChatID:         cb.Message.ChatID,
		OrderMessageID: cb.Message.MessageID,
	})
	h.safe.AnswerCallback(ctx, telegram.AnswerCallback{CallbackID: cb.ID})
}

func (h *DecisionHandler) promptRejection(ctx context.Context, cb *telegram.Callback, orderID uuid.UUID) {
	if cb.Message == nil {
		return
	}
	sent := h.safe.SendMessage(ctx, telegram.SendMessage{
		ChatID:     cb.Message.ChatID,
		ThreadID:   cb.Message.ThreadID,
		Text:       "Напишите причину отклонения для заказа <code>" + orderID.String() + "</code>",
		ParseHTML:  true,
		ForceReply: true,
	})
	if sent == nil {
		h.safe.AnswerCallback(ctx, telegram.AnswerCallback{CallbackID: cb.ID, Text: "Ошибка", ShowAlert: true})
		return
	}
	h.state.PutPending(sent.MessageID, PendingAction{
		Kind:           PendingRejection,
		OrderID:        orderID,
		ChatID:         cb.Message.ChatID,
		OrderMessageID: cb.Message.MessageID,
	})
	h.safe.AnswerCallback(ctx, telegram.AnswerCallback{CallbackID: cb.ID})
}

// sendInvoice шлёт покупателю платёжный шаблон и ставит якорь ответа,
// чтобы дальнейшие ответы покупателя попадали в тему заказа.
func (h *DecisionHandler) sendInvoice(ctx context.Context, cb *telegram.Callback, orderID uuid.UUID) {
	order, err := h.orders.FindByID(ctx, orderID)
	if err != nil {
		h.answerServiceError(ctx, cb.ID, err)
		return
	}
	if order.Status != models.OrderStatusApproved {
		h.safe.AnswerCallback(ctx, telegram.AnswerCallback{
			CallbackID: cb.ID, Text: "Счёт доступен только для одобренных заказов", ShowAlert: true,
		})
		return
	}

	ref, err := h.notifier.NotifyUserPaymentRequest(ctx, order)
	if err != nil || ref == nil {
		h.log.Warn("Не удалось отправить счёт покупателю",
			zap.String("orderId", orderID.String()), zap.Error(err))
		h.safe.AnswerCallback(ctx, telegram.AnswerCallback{
			CallbackID: cb.ID, Text: "Не удалось отправить счёт", ShowAlert: true,
		})
		return
	}
	h.state.PutReplyAnchor(ChatKey{ChatID: ref.ChatID, MessageID: ref.MessageID}, orderID)
	h.safe.AnswerCallback(ctx, telegram.AnswerCallback{CallbackID: cb.ID, Text: "✅ Счёт отправлен"})
}

// HandlePendingReply потребляет ответ админа на подсказку. Возвращает true,
// если сообщение было ответом на зарегистрированную подсказку.
func (h *DecisionHandler) HandlePendingReply(ctx context.Context, msg *telegram.Message) bool {
	if msg.ReplyTo == nil {
		return false
	}
	action, ok := h.state.TakePending(msg.ReplyTo.MessageID)
	if !ok {
		return false
	}
	if msg.From == nil || !h.IsAdmin(msg.From.ID) {
		// чужой ответ не потребляет подсказку
		h.state.PutPending(msg.ReplyTo.MessageID, action)
		return false
	}

	value := strings.TrimSpace(msg.Text)
	if value == "" {
		h.safe.DeleteMessage(ctx, msg.ChatID, msg.MessageID)
		h.state.PutPending(msg.ReplyTo.MessageID, action)
		return true
	}

	var (
		order *models.Order
		err   error
	)
	switch action.Kind {
	case PendingShipment:
		order, err = h.orders.Ship(ctx, action.OrderID, value)
	case PendingRejection:
		order, err = h.orders.Reject(ctx, action.OrderID, value)
	}
	if err != nil {
		h.log.Warn("Не удалось применить решение по заказу",
			zap.String("orderId", action.OrderID.String()), zap.Error(err))
		h.safe.SendMessage(ctx, telegram.SendMessage{
			ChatID:   msg.ChatID,
			ThreadID: msg.ThreadID,
			Text:     "Не удалось обработать заказ: " + serviceErrorText(err),
		})
		return true
	}

	reason := ""
	if action.Kind == PendingRejection {
		reason = value
	}
	h.rewriteOrderMessage(ctx, action.ChatID, action.OrderMessageID, order, "", reason)

	h.safe.DeleteMessage(ctx, msg.ChatID, msg.ReplyTo.MessageID)
	h.safe.DeleteMessage(ctx, msg.ChatID, msg.MessageID)
	return true
}

// rewriteOrderMessage перерисовывает карточку заказа в админ-чате под
// текущий статус вместе с доступными действиями.
func (h *DecisionHandler) rewriteOrderMessage(ctx context.Context, chatID int64, messageID int, order *models.Order, statusOverride, rejectReason string) {
	h.safe.EditMessageText(ctx, telegram.EditMessageText{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        notify.AdminDecisionText(order, statusOverride, rejectReason),
		ParseHTML:   true,
		ReplyMarkup: orderKeyboard(order),
	})
}

// orderKeyboard строит клавиатуру карточки по статусу заказа.
func orderKeyboard(order *models.Order) *telegram.InlineKeyboardMarkup {
	id := order.ID.String()
	var rows [][]telegram.InlineKeyboardButton

	switch order.Status {
	case models.OrderStatusApproved:
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "📦 Выслано", CallbackData: notify.CallbackShipPrefix + id},
			{Text: "❌ Отклонить", CallbackData: notify.CallbackRejectPrefix + id},
		})
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "💳 Отправить счёт", CallbackData: notify.CallbackInvoicePrefix + id},
		})
	case models.OrderStatusShipped:
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "❌ Отклонить", CallbackData: notify.CallbackRejectPrefix + id},
		})
	}

	if order.AdminChatID != nil && order.AdminThreadID != nil {
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "💬 В чат заказа", URL: notify.TopicLink(*order.AdminChatID, *order.AdminThreadID)},
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return &telegram.InlineKeyboardMarkup{Rows: rows}
}

func (h *DecisionHandler) answerServiceError(ctx context.Context, callbackID string, err error) {
	h.safe.AnswerCallback(ctx, telegram.AnswerCallback{
		CallbackID: callbackID, Text: serviceErrorText(err), ShowAlert: true,
	})
}

func serviceErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		return "Заказ не найден"
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return "Недопустимый переход статуса"
	case errors.Is(err, service.ErrTrackingNumberRequired):
		return "Укажите номер ТТН"
	default:
		return "Ошибка обработки заказа"
	}
}
