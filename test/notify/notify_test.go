package notify_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/notify"
	"github.com/vladbogun1/tg-shop-miniapp/internal/repository"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"
	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeGateway записывает команды; ошибки создания тем инъектируются через TopicErr.
type fakeGateway struct {
	mu       sync.Mutex
	nextID   int
	Sent     []telegram.SendMessage
	Topics   []string
	Renames  []string
	TopicErr error
}

func (g *fakeGateway) SendMessage(ctx context.Context, cmd telegram.SendMessage) (*telegram.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sent = append(g.Sent, cmd)
	g.nextID++
	return &telegram.MessageRef{ChatID: cmd.ChatID, MessageID: g.nextID}, nil
}

func (g *fakeGateway) SendMedia(ctx context.Context, cmd telegram.SendMedia) (*telegram.MessageRef, error) {
	return nil, nil
}

func (g *fakeGateway) EditMessageText(ctx context.Context, cmd telegram.EditMessageText) error {
	return nil
}

func (g *fakeGateway) EditMessageCaption(ctx context.Context, cmd telegram.EditMessageCaption) error {
	return nil
}

func (g *fakeGateway) EditMessageReplyMarkup(ctx context.Context, cmd telegram.EditMessageReplyMarkup) error {
	return nil
}

func (g *fakeGateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (g *fakeGateway) AnswerCallback(ctx context.Context, cmd telegram.AnswerCallback) error {
	return nil
}

func (g *fakeGateway) CreateForumTopic(ctx context.Context, chatID int64, name string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.TopicErr != nil {
		return 0, g.TopicErr
	}
	g.Topics = append(g.Topics, name)
	return 321, nil
}

func (g *fakeGateway) EditForumTopic(ctx context.Context, chatID int64, threadID int, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Renames = append(g.Renames, name)
	return nil
}

type fakeSettingRepo struct {
	values map[string]string
}

func (r *fakeSettingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *fakeSettingRepo) Put(ctx context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

type fakeOrderRepo struct {
	repository.OrderRepo

	bound       []uuid.UUID
	boundThread int
}

func (r *fakeOrderRepo) BindAdminThread(ctx context.Context, id uuid.UUID, chatID int64, threadID int, threadMessageID *int) error {
	r.bound = append(r.bound, id)
	r.boundThread = threadID
	return nil
}

func newNotifyFixture(settings map[string]string) (*notify.Service, *fakeGateway, *fakeOrderRepo) {
	gw := &fakeGateway{}
	orderRepo := &fakeOrderRepo{}
	repo := &repository.Repository{
		Orders:   orderRepo,
		Settings: &fakeSettingRepo{values: settings},
	}
	svc := notify.NewService(gw, repo, "", zap.NewNop())
	return svc, gw, orderRepo
}

func sampleOrder() *models.Order {
	variant := "Чёрный, L"
	promo := "SAVE10"
	return &models.Order{
		ID:            uuid.New(),
		TgUserID:      4242,
		TgUsername:    "buyer",
		CustomerName:  "Иван <Петров>",
		Phone:         "+380501112233",
		Address:       "Киев, Отделение 5",
		Status:        models.OrderStatusNew,
		Currency:      "UAH",
		TotalMinor:    9000,
		DiscountMinor: 1000,
		PromoCode:     &promo,
		Items: []models.OrderItem{
			{
				TitleSnapshot:       "Футболка <лого>",
				VariantNameSnapshot: &variant,
				PriceMinorSnapshot:  2500,
				Quantity:            4,
			},
		},
	}
}

func TestEscapeHTML(t *testing.T) {
	got := notify.EscapeHTML(`a & <b> "c"`)
	if got != `a &amp; &lt;b&gt; "c"` {
		t.Fatalf("некорректное экранирование: %q", got)
	}
}

func TestTopicLink(t *testing.T) {
	cases := []struct {
		chatID   int64
		threadID int
		want     string
	}{
		{-1001234567890, 42, "https://t.me/c/1234567890/42"},
		{-100555, 7, "https://t.me/c/555/7"},
	}
	for _, c := range cases {
		if got := notify.TopicLink(c.chatID, c.threadID); got != c.want {
			t.Errorf("TopicLink(%d, %d) = %q, ожидали %q", c.chatID, c.threadID, got, c.want)
		}
	}
}

func TestOrderTopicName_TracksStatus(t *testing.T) {
	order := sampleOrder()
	shortID := order.ID.String()[:8]

	name := notify.OrderTopicName(order)
	if !strings.HasPrefix(name, "🆕 ") || !strings.Contains(name, shortID) {
		t.Fatalf("имя темы нового заказа: %q", name)
	}

	order.Status = models.OrderStatusShipped
	name = notify.OrderTopicName(order)
	if !strings.HasPrefix(name, "📦 ") {
		t.Fatalf("имя темы после отправки: %q", name)
	}
}

func TestItemsBlock_EscapesAndTotals(t *testing.T) {
	block := notify.ItemsBlock(sampleOrder())
	if !strings.Contains(block, "Футболка &lt;лого&gt;") {
		t.Fatalf("название не экранировано: %q", block)
	}
	if !strings.Contains(block, "× 4 — 10000 UAH") {
		t.Fatalf("нет суммы строки: %q", block)
	}
	if !strings.Contains(block, "<b>💰 Итого:</b> 9000 UAH") {
		t.Fatalf("нет итога: %q", block)
	}
	if !strings.Contains(block, "Скидка: -1000 UAH") || !strings.Contains(block, "Промокод: SAVE10") {
		t.Fatalf("нет скидки или промокода: %q", block)
	}
}

func TestAdminDecisionText_StatusAndExtras(t *testing.T) {
	order := sampleOrder()
	order.Status = models.OrderStatusShipped
	ttn := "TTN<1>"
	order.TrackingNumber = &ttn

	text := notify.AdminDecisionText(order, "", "")
	if !strings.Contains(text, "📦 <b>ВЫСЛАНО</b>") {
		t.Fatalf("нет заголовка статуса: %q", text)
	}
	if !strings.Contains(text, "📦 ТТН: TTN&lt;1&gt;") {
		t.Fatalf("нет ТТН: %q", text)
	}

	order.Status = models.OrderStatusRejected
	order.TrackingNumber = nil
	text = notify.AdminDecisionText(order, "", "нет <на складе>")
	if !strings.Contains(text, "❌ <b>ОТКЛОНЕНО</b>") {
		t.Fatalf("нет заголовка отклонения: %q", text)
	}
	if !strings.Contains(text, "❌ Причина: нет &lt;на складе&gt;") {
		t.Fatalf("нет причины: %q", text)
	}
}

func TestNotifyNewOrder_CreatesTopicAndBinds(t *testing.T) {
	order := sampleOrder()
	svc, gw, orderRepo := newNotifyFixture(map[string]string{
		service.AdminChatIDKey: "-1001234567890",
	})

	if err := svc.NotifyNewOrder(context.Background(), order); err != nil {
		t.Fatalf("NotifyNewOrder: %v", err)
	}
	if len(gw.Topics) != 1 {
		t.Fatalf("тема не создана: %d", len(gw.Topics))
	}
	if len(orderRepo.bound) != 1 || orderRepo.bound[0] != order.ID || orderRepo.boundThread != 321 {
		t.Fatalf("привязка темы не сохранена: %+v", orderRepo)
	}
	if order.AdminThreadID == nil || *order.AdminThreadID != 321 {
		t.Fatal("заказ не обновлён привязкой темы")
	}

	// карточка в теме + карточка с кнопками в общем чате
	if len(gw.Sent) != 2 {
		t.Fatalf("ожидали 2 сообщения, получили %d", len(gw.Sent))
	}
	card := gw.Sent[1]
	if card.ReplyMarkup == nil || len(card.ReplyMarkup.Rows) != 2 {
		t.Fatalf("у карточки нет кнопок решения и ссылки: %+v", card.ReplyMarkup)
	}
	if !strings.Contains(card.Text, "🛒 Новый заказ") {
		t.Fatalf("нет заголовка карточки: %q", card.Text)
	}
	if strings.Contains(card.Text, "Чат заказа не создан") {
		t.Fatalf("предупреждение о плоском режиме не должно появляться: %q", card.Text)
	}
	link := card.ReplyMarkup.Rows[1][0]
	if link.URL != "https://t.me/c/1234567890/321" {
		t.Fatalf("ссылка на тему: %q", link.URL)
	}
}

func TestNotifyNewOrder_FlatModeFallback(t *testing.T) {
	order := sampleOrder()
	svc, gw, orderRepo := newNotifyFixture(map[string]string{
		service.AdminChatIDKey: "-100500",
	})
	gw.TopicErr = errors.New("forum is disabled")

	if err := svc.NotifyNewOrder(context.Background(), order); err != nil {
		t.Fatalf("NotifyNewOrder: %v", err)
	}
	if len(orderRepo.bound) != 0 {
		t.Fatal("привязка не должна сохраняться без темы")
	}
	if len(gw.Sent) != 1 {
		t.Fatalf("ожидали 1 сообщение, получили %d", len(gw.Sent))
	}
	card := gw.Sent[0]
	if !strings.Contains(card.Text, "Чат заказа не создан") {
		t.Fatalf("нет предупреждения о плоском режиме: %q", card.Text)
	}
	if card.ReplyMarkup == nil || len(card.ReplyMarkup.Rows) != 1 {
		t.Fatalf("в плоском режиме остаются только кнопки решения: %+v", card.ReplyMarkup)
	}
}

func TestNotifyNewOrder_NoAdminChatConfigured(t *testing.T) {
	svc, gw, _ := newNotifyFixture(map[string]string{})

	if err := svc.NotifyNewOrder(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("без админ-чата уведомление тихо пропускается: %v", err)
	}
	if len(gw.Sent) != 0 {
		t.Fatal("ничего не должно быть отправлено")
	}
}

func TestNotifyNewOrder_ReusesBoundTopic(t *testing.T) {
	order := sampleOrder()
	chatID := int64(-1001234567890)
	threadID := 321
	order.AdminChatID = &chatID
	order.AdminThreadID = &threadID

	svc, gw, orderRepo := newNotifyFixture(map[string]string{
		service.AdminChatIDKey: "-1001234567890",
	})

	if err := svc.NotifyNewOrder(context.Background(), order); err != nil {
		t.Fatalf("NotifyNewOrder: %v", err)
	}
	if len(gw.Topics) != 0 || len(orderRepo.bound) != 0 {
		t.Fatal("существующая тема не должна пересоздаваться")
	}
}

func TestUpdateOrderTopicStatus(t *testing.T) {
	order := sampleOrder()
	chatID := int64(-100500)
	threadID := 9
	order.AdminChatID = &chatID
	order.AdminThreadID = &threadID
	order.Status = models.OrderStatusApproved

	svc, gw, _ := newNotifyFixture(map[string]string{})
	svc.UpdateOrderTopicStatus(context.Background(), order)

	if len(gw.Renames) != 1 || !strings.HasPrefix(gw.Renames[0], "✅ ") {
		t.Fatalf("тема не переименована под статус: %+v", gw.Renames)
	}
}

func TestNotifyUserPaymentRequest_TemplateFallback(t *testing.T) {
	order := sampleOrder()
	svc, gw, _ := newNotifyFixture(map[string]string{})

	ref, err := svc.NotifyUserPaymentRequest(context.Background(), order)
	if err != nil {
		t.Fatalf("NotifyUserPaymentRequest: %v", err)
	}
	if ref == nil || ref.ChatID != order.TgUserID {
		t.Fatalf("счёт ушёл не покупателю: %+v", ref)
	}
	sent := gw.Sent[0]
	if !sent.ForceReply {
		t.Fatal("счёт должен запрашивать ответ")
	}
	if !strings.Contains(sent.Text, "Реквизиты для оплаты") {
		t.Fatalf("нет шаблона по умолчанию: %q", sent.Text)
	}

	// сохранённый шаблон имеет приоритет
	svc2, gw2, _ := newNotifyFixture(map[string]string{
		service.PaymentTemplateKey: "<b>Оплата</b> по ссылке",
	})
	if _, err := svc2.NotifyUserPaymentRequest(context.Background(), order); err != nil {
		t.Fatalf("NotifyUserPaymentRequest: %v", err)
	}
	if gw2.Sent[0].Text != "<b>Оплата</b> по ссылке" {
		t.Fatalf("сохранённый шаблон не использован: %q", gw2.Sent[0].Text)
	}
}

func TestNotifyUserOrderShipped_IncludesTracking(t *testing.T) {
	order := sampleOrder()
	order.Status = models.OrderStatusShipped
	ttn := "59000123456789"
	order.TrackingNumber = &ttn

	svc, gw, _ := newNotifyFixture(map[string]string{})
	if err := svc.NotifyUserOrderShipped(context.Background(), order); err != nil {
		t.Fatalf("NotifyUserOrderShipped: %v", err)
	}
	sent := gw.Sent[0]
	if sent.ChatID != order.TgUserID {
		t.Fatalf("уведомление ушло не покупателю: %d", sent.ChatID)
	}
	if !strings.Contains(sent.Text, "ТТН: 59000123456789") {
		t.Fatalf("нет номера ТТН: %q", sent.Text)
	}
}
