package bot_test

import (
	"context"
	"strings"
	"testing"

	"github.com/vladbogun1/tg-shop-miniapp/internal/bot"
	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const buyerID int64 = 555001

func newBridgeFixture(orders *fakeOrderService) (*bot.Bridge, *bot.State, *fakeGateway) {
	gw := &fakeGateway{}
	log := zap.NewNop()
	state := bot.NewState()
	safe := telegram.NewSafe(gw, log)
	bridge := bot.NewBridge(orders, state, safe, []int64{adminID}, log)
	return bridge, state, gw
}

func boundOrder() *models.Order {
	chatID := int64(adminChatID)
	threadID := 777
	return &models.Order{
		ID:            uuid.New(),
		TgUserID:      buyerID,
		Status:        models.OrderStatusNew,
		AdminChatID:   &chatID,
		AdminThreadID: &threadID,
	}
}

func adminThreadMessage(msgID int, text string) *telegram.Message {
	threadID := 777
	return &telegram.Message{
		MessageID: msgID,
		ChatID:    adminChatID,
		ThreadID:  &threadID,
		From:      &telegram.User{ID: adminID},
		Kind:      telegram.KindText,
		Text:      text,
	}
}

func TestOrderChatMessage_TextRelayedToBuyer(t *testing.T) {
	order := boundOrder()
	orders := &fakeOrderService{
		FindByAdminThreadFunc: func(ctx context.Context, chatID int64, threadID int) (*models.Order, error) {
			if chatID != adminChatID || threadID != 777 {
				t.Fatalf("неверный поиск темы: chat=%d thread=%d", chatID, threadID)
			}
			return order, nil
		},
	}
	bridge, state, gw := newBridgeFixture(orders)

	handled := bridge.HandleOrderChatMessage(context.Background(), adminThreadMessage(40, "Привет <b>от</b> админа"))
	if !handled {
		t.Fatal("сообщение в теме заказа не обработано")
	}
	if len(gw.Sent) != 1 {
		t.Fatalf("ожидали 1 сообщение покупателю, получили %d", len(gw.Sent))
	}
	header := gw.Sent[0]
	if header.ChatID != buyerID {
		t.Fatalf("сообщение ушло не покупателю: %d", header.ChatID)
	}
	if !header.ForceReply {
		t.Fatal("header должен запрашивать ответ")
	}
	if !strings.Contains(header.Text, "📩 <b>Сообщение от администратора</b>") {
		t.Fatalf("нет заголовка администратора: %q", header.Text)
	}
	if !strings.Contains(header.Text, "Привет &lt;b&gt;от&lt;/b&gt; админа") {
		t.Fatalf("текст не экранирован: %q", header.Text)
	}
	if strings.Count(header.Text, "══════════════") != 2 {
		t.Fatalf("ожидали два разделителя: %q", header.Text)
	}

	// header является и якорём для ответа покупателя, и зеркалом текста
	headerKey := bot.ChatKey{ChatID: buyerID, MessageID: 1}
	if id, ok := state.ReplyAnchor(headerKey); !ok || id != order.ID {
		t.Fatal("ReplyAnchor для header не зарегистрирован")
	}
	src := bot.ChatKey{ChatID: adminChatID, MessageID: 40}
	if mirror, ok := state.Mirror(src); !ok || mirror != headerKey {
		t.Fatal("зеркало текстового сообщения должно указывать на header")
	}
}

func TestOrderChatMessage_MediaMirroredAsReply(t *testing.T) {
	order := boundOrder()
	orders := &fakeOrderService{
		FindByAdminThreadFunc: func(ctx context.Context, chatID int64, threadID int) (*models.Order, error) {
			return order, nil
		},
	}
	bridge, state, gw := newBridgeFixture(orders)

	threadID := 777
	msg := &telegram.Message{
		MessageID: 41,
		ChatID:    adminChatID,
		ThreadID:  &threadID,
		From:      &telegram.User{ID: adminID},
		Kind:      telegram.KindPhoto,
		FileID:    "photo-file-id",
		Caption:   "накладная",
	}
	if !bridge.HandleOrderChatMessage(context.Background(), msg) {
		t.Fatal("медиа в теме заказа не обработано")
	}
	if len(gw.Sent) != 1 || len(gw.Media) != 1 {
		t.Fatalf("ожидали header + медиа, получили %d/%d", len(gw.Sent), len(gw.Media))
	}
	if !strings.Contains(gw.Sent[0].Text, "Администратор отправил вложение") {
		t.Fatalf("нет пометки о вложении: %q", gw.Sent[0].Text)
	}
	media := gw.Media[0]
	if media.ChatID != buyerID || media.FileID != "photo-file-id" || media.Caption != "накладная" {
		t.Fatalf("медиа переслано с искажением: %+v", media)
	}
	if media.ReplyToMessageID == nil || *media.ReplyToMessageID != 1 {
		t.Fatal("медиа должно быть ответом на header")
	}

	// зеркало указывает на медиа-копию, обе копии являются якорями
	src := bot.ChatKey{ChatID: adminChatID, MessageID: 41}
	mirror, ok := state.Mirror(src)
	if !ok || mirror.MessageID != 2 {
		t.Fatalf("зеркало медиа не зарегистрировано: %+v", mirror)
	}
	if id, ok := state.ReplyAnchor(mirror); !ok || id != order.ID {
		t.Fatal("медиа-копия должна быть якорём для ответа")
	}
}

func TestOrderChatMessage_IgnoresNonAdminAndPlainChat(t *testing.T) {
	orders := &fakeOrderService{
		FindByAdminThreadFunc: func(ctx context.Context, chatID int64, threadID int) (*models.Order, error) {
			t.Fatal("поиск заказа не должен вызываться")
			return nil, nil
		},
	}
	bridge, _, gw := newBridgeFixture(orders)

	// не админ
	msg := adminThreadMessage(50, "привет")
	msg.From = &telegram.User{ID: 1}
	if bridge.HandleOrderChatMessage(context.Background(), msg) {
		t.Fatal("сообщение не-админа не должно обрабатываться")
	}

	// сообщение вне темы
	msg = adminThreadMessage(51, "привет")
	msg.ThreadID = nil
	if bridge.HandleOrderChatMessage(context.Background(), msg) {
		t.Fatal("сообщение вне темы не должно обрабатываться")
	}
	if len(gw.Sent) != 0 {
		t.Fatal("ничего не должно быть отправлено")
	}
}

func TestUserReply_TextRelayedToThread(t *testing.T) {
	order := boundOrder()
	orders := &fakeOrderService{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			if id != order.ID {
				t.Fatalf("поиск чужого заказа: %s", id)
			}
			return order, nil
		},
	}
	bridge, state, gw := newBridgeFixture(orders)

	anchor := bot.ChatKey{ChatID: buyerID, MessageID: 10}
	state.PutReplyAnchor(anchor, order.ID)

	msg := &telegram.Message{
		MessageID: 11,
		ChatID:    buyerID,
		From:      &telegram.User{ID: buyerID},
		ReplyTo:   &telegram.Message{MessageID: 10},
		Kind:      telegram.KindText,
		Text:      "когда <доставка>?",
	}
	if !bridge.HandleUserReply(context.Background(), msg) {
		t.Fatal("ответ покупателя не обработан")
	}
	if len(gw.Sent) != 1 {
		t.Fatalf("ожидали 1 сообщение в тему, получили %d", len(gw.Sent))
	}
	sent := gw.Sent[0]
	if sent.ChatID != adminChatID || sent.ThreadID == nil || *sent.ThreadID != 777 {
		t.Fatalf("сообщение ушло не в тему заказа: %+v", sent)
	}
	if !strings.Contains(sent.Text, "👤 <b>Сообщение от пользователя</b>") {
		t.Fatalf("нет заголовка пользователя: %q", sent.Text)
	}
	if !strings.Contains(sent.Text, "когда &lt;доставка&gt;?") {
		t.Fatalf("текст не экранирован: %q", sent.Text)
	}

	src := bot.ChatKey{ChatID: buyerID, MessageID: 11}
	if id, ok := state.MessageOrder(src); !ok || id != order.ID {
		t.Fatal("сообщение покупателя не привязано к заказу")
	}
	if mirror, ok := state.Mirror(src); !ok || mirror.ChatID != adminChatID {
		t.Fatal("зеркало ответа в теме не зарегистрировано")
	}
}

func TestUserReply_MediaRelayedWithHeader(t *testing.T) {
	order := boundOrder()
	orders := &fakeOrderService{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
	}
	bridge, state, gw := newBridgeFixture(orders)
	state.PutReplyAnchor(bot.ChatKey{ChatID: buyerID, MessageID: 10}, order.ID)

	msg := &telegram.Message{
		MessageID: 12,
		ChatID:    buyerID,
		From:      &telegram.User{ID: buyerID},
		ReplyTo:   &telegram.Message{MessageID: 10},
		Kind:      telegram.KindVoice,
		FileID:    "voice-file-id",
	}
	if !bridge.HandleUserReply(context.Background(), msg) {
		t.Fatal("медиа-ответ покупателя не обработан")
	}
	if len(gw.Sent) != 1 || len(gw.Media) != 1 {
		t.Fatalf("ожидали заголовок + медиа, получили %d/%d", len(gw.Sent), len(gw.Media))
	}
	media := gw.Media[0]
	if media.ChatID != adminChatID || media.ThreadID == nil || *media.ThreadID != 777 {
		t.Fatalf("медиа ушло не в тему: %+v", media)
	}
	if media.FileID != "voice-file-id" || media.Kind != telegram.KindVoice {
		t.Fatalf("медиа переслано с искажением: %+v", media)
	}
	if _, ok := state.Mirror(bot.ChatKey{ChatID: buyerID, MessageID: 12}); !ok {
		t.Fatal("зеркало медиа-ответа не зарегистрировано")
	}
}

func TestUserReply_UnanchoredIgnored(t *testing.T) {
	bridge, _, gw := newBridgeFixture(&fakeOrderService{})

	msg := &telegram.Message{
		MessageID: 13,
		ChatID:    buyerID,
		From:      &telegram.User{ID: buyerID},
		ReplyTo:   &telegram.Message{MessageID: 999},
		Kind:      telegram.KindText,
		Text:      "мимо",
	}
	if bridge.HandleUserReply(context.Background(), msg) {
		t.Fatal("ответ без якоря не должен обрабатываться")
	}
	if len(gw.Sent) != 0 {
		t.Fatal("ничего не должно быть отправлено")
	}
}

func TestEditedMessage_AdminEditUpdatesHeader(t *testing.T) {
	order := boundOrder()
	orders := &fakeOrderService{
		FindByAdminThreadFunc: func(ctx context.Context, chatID int64, threadID int) (*models.Order, error) {
			return order, nil
		},
	}
	bridge, _, gw := newBridgeFixture(orders)

	if !bridge.HandleOrderChatMessage(context.Background(), adminThreadMessage(60, "старый текст")) {
		t.Fatal("исходное сообщение не обработано")
	}

	edited := adminThreadMessage(60, "новый текст")
	if !bridge.HandleEditedMessage(context.Background(), edited) {
		t.Fatal("правка админа не обработана")
	}
	if len(gw.Sent) != 1 {
		t.Fatalf("правка не должна создавать новые сообщения, отправлено %d", len(gw.Sent))
	}
	if len(gw.TextEdits) != 1 {
		t.Fatalf("ожидали 1 правку текста, получили %d", len(gw.TextEdits))
	}
	edit := gw.TextEdits[0]
	if edit.ChatID != buyerID || edit.MessageID != 1 {
		t.Fatalf("правка ушла не в header: %+v", edit)
	}
	if !strings.Contains(edit.Text, "(изменено)") || !strings.Contains(edit.Text, "новый текст") {
		t.Fatalf("текст header не обновлён: %q", edit.Text)
	}
}

func TestEditedMessage_UserEditUpdatesMirror(t *testing.T) {
	order := boundOrder()
	orders := &fakeOrderService{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
	}
	bridge, state, gw := newBridgeFixture(orders)
	state.PutReplyAnchor(bot.ChatKey{ChatID: buyerID, MessageID: 10}, order.ID)

	msg := &telegram.Message{
		MessageID: 11,
		ChatID:    buyerID,
		From:      &telegram.User{ID: buyerID},
		ReplyTo:   &telegram.Message{MessageID: 10},
		Kind:      telegram.KindText,
		Text:      "исходный",
	}
	if !bridge.HandleUserReply(context.Background(), msg) {
		t.Fatal("ответ покупателя не обработан")
	}

	edited := &telegram.Message{
		MessageID: 11,
		ChatID:    buyerID,
		From:      &telegram.User{ID: buyerID},
		Kind:      telegram.KindText,
		Text:      "исправленный",
	}
	if !bridge.HandleEditedMessage(context.Background(), edited) {
		t.Fatal("правка покупателя не обработана")
	}
	if len(gw.TextEdits) != 1 {
		t.Fatalf("ожидали 1 правку текста, получили %d", len(gw.TextEdits))
	}
	edit := gw.TextEdits[0]
	if edit.ChatID != adminChatID {
		t.Fatalf("правка ушла не в тему: %+v", edit)
	}
	if !strings.Contains(edit.Text, "исправленный") || !strings.Contains(edit.Text, "(изменено)") {
		t.Fatalf("текст зеркала не обновлён: %q", edit.Text)
	}
}

func TestEditedMessage_CaptionEditUpdatesMirrorCaption(t *testing.T) {
	order := boundOrder()
	orders := &fakeOrderService{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return order, nil
		},
	}
	bridge, state, gw := newBridgeFixture(orders)
	state.PutReplyAnchor(bot.ChatKey{ChatID: buyerID, MessageID: 10}, order.ID)

	msg := &telegram.Message{
		MessageID: 14,
		ChatID:    buyerID,
		From:      &telegram.User{ID: buyerID},
		ReplyTo:   &telegram.Message{MessageID: 10},
		Kind:      telegram.KindPhoto,
		FileID:    "photo-1",
		Caption:   "чек",
	}
	if !bridge.HandleUserReply(context.Background(), msg) {
		t.Fatal("медиа-ответ не обработан")
	}

	edited := &telegram.Message{
		MessageID: 14,
		ChatID:    buyerID,
		From:      &telegram.User{ID: buyerID},
		Kind:      telegram.KindPhoto,
		FileID:    "photo-1",
		Caption:   "чек об оплате",
	}
	if !bridge.HandleEditedMessage(context.Background(), edited) {
		t.Fatal("правка подписи не обработана")
	}
	if len(gw.CapEdits) != 1 {
		t.Fatalf("ожидали 1 правку подписи, получили %d", len(gw.CapEdits))
	}
	if gw.CapEdits[0].Caption != "чек об оплате" {
		t.Fatalf("подпись не обновлена: %q", gw.CapEdits[0].Caption)
	}
}

func TestEditedMessage_UncorrelatedIgnored(t *testing.T) {
	bridge, _, gw := newBridgeFixture(&fakeOrderService{})

	msg := &telegram.Message{
		MessageID: 99,
		ChatID:    buyerID,
		Kind:      telegram.KindText,
		Text:      "никому",
	}
	if bridge.HandleEditedMessage(context.Background(), msg) {
		t.Fatal("правка без корреляции не должна обрабатываться")
	}
	if len(gw.TextEdits) != 0 && len(gw.CapEdits) != 0 {
		t.Fatal("правки не должны отправляться")
	}
}
