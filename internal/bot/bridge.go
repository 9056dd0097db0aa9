package bot

import (
	"context"

	"github.com/vladbogun1/tg-shop-miniapp/internal/notify"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"
	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"

	"go.uber.org/zap"
)

const adminHeaderSeparator = "══════════════"

// Bridge пересылает сообщения между темой заказа в админ-чате и личкой
// покупателя, сохраняя корреляции для правок и ответов.
type Bridge struct {
	orders service.OrderService
	state  *State
	safe   *telegram.Safe
	admins map[int64]bool
	log    *zap.Logger
}

func NewBridge(orders service.OrderService, state *State, safe *telegram.Safe, adminIDs []int64, log *zap.Logger) *Bridge {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Bridge{orders: orders, state: state, safe: safe, admins: admins, log: log}
}

// HandleOrderChatMessage пересылает сообщение админа из темы заказа
// покупателю. Возвращает true, если сообщение относилось к теме заказа.
func (b *Bridge) HandleOrderChatMessage(ctx context.Context, msg *telegram.Message) bool {
	if msg.ThreadID == nil || msg.From == nil || !b.admins[msg.From.ID] {
		return false
	}
	order, err := b.orders.FindByAdminThread(ctx, msg.ChatID, *msg.ThreadID)
	if err != nil || order == nil {
		return false
	}
	if order.TgUserID <= 0 {
		b.log.Warn("Сообщение в теме заказа без tg-пользователя",
			zap.String("orderId", order.ID.String()))
		return true
	}

	headerText := adminHeaderSeparator + "\n📩 <b>Сообщение от администратора</b>\n" + adminHeaderSeparator
	if msg.HasText() {
		headerText += "\n<blockquote>" + notify.EscapeHTML(msg.Text) + "</blockquote>"
	} else {
		headerText += "\n<i>Администратор отправил вложение.</i>"
	}
	headerText += "\n\n<i>Ответьте на это сообщение, чтобы написать администратору.</i>"

	header := b.safe.SendMessage(ctx, telegram.SendMessage{
		ChatID:     order.TgUserID,
		Text:       headerText,
		ParseHTML:  true,
		ForceReply: true,
	})
	if header == nil {
		return true
	}

	src := ChatKey{ChatID: msg.ChatID, MessageID: msg.MessageID}
	headerKey := ChatKey{ChatID: header.ChatID, MessageID: header.MessageID}
	b.state.PutHeader(src, headerKey)
	b.state.PutReplyAnchor(headerKey, order.ID)

	if msg.IsMedia() {
		mirror := b.safe.SendMedia(ctx, telegram.SendMedia{
			ChatID:           order.TgUserID,
			ReplyToMessageID: &header.MessageID,
			Kind:             msg.Kind,
			FileID:           msg.FileID,
			Caption:          msg.Caption,
			Contact:          msg.Contact,
			Location:         msg.Location,
		})
		if mirror != nil {
			b.state.PutMirror(src, ChatKey{ChatID: mirror.ChatID, MessageID: mirror.MessageID})
			b.state.PutReplyAnchor(ChatKey{ChatID: mirror.ChatID, MessageID: mirror.MessageID}, order.ID)
		}
	} else {
		// текст уже внутри header, зеркало не нужно
		b.state.PutMirror(src, headerKey)
	}
	return true
}

// HandleUserReply пересылает ответ покупателя на header или счёт в тему
// заказа. Возвращает true, если сообщение было таким ответом.
func (b *Bridge) HandleUserReply(ctx context.Context, msg *telegram.Message) bool {
	if msg.ReplyTo == nil {
		return false
	}
	anchor := ChatKey{ChatID: msg.ChatID, MessageID: msg.ReplyTo.MessageID}
	orderID, ok := b.state.ReplyAnchor(anchor)
	if !ok {
		return false
	}
	order, err := b.orders.FindByID(ctx, orderID)
	if err != nil || order.AdminChatID == nil || order.AdminThreadID == nil {
		b.log.Warn("Ответ покупателя без привязанной темы заказа",
			zap.String("orderId", orderID.String()), zap.Error(err))
		return true
	}

	src := ChatKey{ChatID: msg.ChatID, MessageID: msg.MessageID}
	b.state.PutMessageOrder(src, orderID)

	header := "👤 <b>Сообщение от пользователя</b>"
	if msg.HasText() {
		sent := b.safe.SendMessage(ctx, telegram.SendMessage{
			ChatID:    *order.AdminChatID,
			ThreadID:  order.AdminThreadID,
			Text:      header + "\n" + notify.EscapeHTML(msg.Text),
			ParseHTML: true,
		})
		if sent != nil {
			b.state.PutMirror(src, ChatKey{ChatID: sent.ChatID, MessageID: sent.MessageID})
		}
		return true
	}

	b.safe.SendMessage(ctx, telegram.SendMessage{
		ChatID:    *order.AdminChatID,
		ThreadID:  order.AdminThreadID,
		Text:      header,
		ParseHTML: true,
	})
	mirror := b.safe.SendMedia(ctx, telegram.SendMedia{
		ChatID:   *order.AdminChatID,
		ThreadID: order.AdminThreadID,
		Kind:     msg.Kind,
		FileID:   msg.FileID,
		Caption:  msg.Caption,
		Contact:  msg.Contact,
		Location: msg.Location,
	})
	if mirror != nil {
		b.state.PutMirror(src, ChatKey{ChatID: mirror.ChatID, MessageID: mirror.MessageID})
	}
	return true
}

// HandleEditedMessage проталкивает правку в зеркальную копию: текстовую
// правку в текст, правку подписи в подпись. Возвращает true, если правка
// относилась к коррелированному сообщению.
func (b *Bridge) HandleEditedMessage(ctx context.Context, msg *telegram.Message) bool {
	src := ChatKey{ChatID: msg.ChatID, MessageID: msg.MessageID}

	// правка админа в теме заказа: обновить header у покупателя
	if header, ok := b.state.Header(src); ok {
		if msg.HasText() {
			headerText := adminHeaderSeparator + "\n📩 <b>Сообщение от администратора</b> <i>(изменено)</i>\n" + adminHeaderSeparator +
				"\n<blockquote>" + notify.EscapeHTML(msg.Text) + "</blockquote>" +
				"\n\n<i>Ответьте на это сообщение, чтобы написать администратору.</i>"
			b.safe.EditMessageText(ctx, telegram.EditMessageText{
				ChatID:    header.ChatID,
				MessageID: header.MessageID,
				Text:      headerText,
				ParseHTML: true,
			})
		}
		if mirror, ok := b.state.Mirror(src); ok && mirror != header && msg.Caption != "" {
			b.safe.EditMessageCaption(ctx, telegram.EditMessageCaption{
				ChatID:    mirror.ChatID,
				MessageID: mirror.MessageID,
				Caption:   msg.Caption,
			})
		}
		return true
	}

	// правка покупателя: обновить копию в теме заказа
	if mirror, ok := b.state.Mirror(src); ok {
		if msg.HasText() {
			b.safe.EditMessageText(ctx, telegram.EditMessageText{
				ChatID:    mirror.ChatID,
				MessageID: mirror.MessageID,
				Text:      "👤 <b>Сообщение от пользователя</b> <i>(изменено)</i>\n" + notify.EscapeHTML(msg.Text),
				ParseHTML: true,
			})
		} else if msg.Caption != "" {
			b.safe.EditMessageCaption(ctx, telegram.EditMessageCaption{
				ChatID:    mirror.ChatID,
				MessageID: mirror.MessageID,
				Caption:   msg.Caption,
			})
		}
		return true
	}
	return false
}
