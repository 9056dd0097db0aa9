package bot_test

import (
	"context"
	"sync"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"
	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"

	"github.com/google/uuid"
)

// fakeGateway записывает все команды и раздаёт возрастающие id сообщений.
type fakeGateway struct {
	mu        sync.Mutex
	nextID    int
	Sent      []telegram.SendMessage
	Media     []telegram.SendMedia
	TextEdits []telegram.EditMessageText
	CapEdits  []telegram.EditMessageCaption
	Deleted   []int
	Answers   []telegram.AnswerCallback
	Topics    []string

	SendErr error
}

func (g *fakeGateway) nextMessageID() int {
	g.nextID++
	return g.nextID
}

func (g *fakeGateway) SendMessage(ctx context.Context, cmd telegram.SendMessage) (*telegram.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SendErr != nil {
		return nil, g.SendErr
	}
	g.Sent = append(g.Sent, cmd)
	return &telegram.MessageRef{ChatID: cmd.ChatID, MessageID: g.nextMessageID()}, nil
}

func (g *fakeGateway) SendMedia(ctx context.Context, cmd telegram.SendMedia) (*telegram.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SendErr != nil {
		return nil, g.SendErr
	}
	g.Media = append(g.Media, cmd)
	return &telegram.MessageRef{ChatID: cmd.ChatID, MessageID: g.nextMessageID()}, nil
}

func (g *fakeGateway) EditMessageText(ctx context.Context, cmd telegram.EditMessageText) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.TextEdits = append(g.TextEdits, cmd)
	return nil
}

func (g *fakeGateway) EditMessageCaption(ctx context.Context, cmd telegram.EditMessageCaption) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CapEdits = append(g.CapEdits, cmd)
	return nil
}

func (g *fakeGateway) EditMessageReplyMarkup(ctx context.Context, cmd telegram.EditMessageReplyMarkup) error {
	return nil
}

func (g *fakeGateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Deleted = append(g.Deleted, messageID)
	return nil
}

func (g *fakeGateway) AnswerCallback(ctx context.Context, cmd telegram.AnswerCallback) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Answers = append(g.Answers, cmd)
	return nil
}

func (g *fakeGateway) CreateForumTopic(ctx context.Context, chatID int64, name string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Topics = append(g.Topics, name)
	return 777, nil
}

func (g *fakeGateway) EditForumTopic(ctx context.Context, chatID int64, threadID int, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Topics = append(g.Topics, name)
	return nil
}

// fakeOrderService
type fakeOrderService struct {
	CreateOrderFunc       func(ctx context.Context, in service.CreateOrderInput) (*models.Order, error)
	ApproveFunc           func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	RejectFunc            func(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error)
	ShipFunc              func(ctx context.Context, id uuid.UUID, trackingNumber string) (*models.Order, error)
	FindByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByAdminThreadFunc func(ctx context.Context, chatID int64, threadID int) (*models.Order, error)
	ListOrdersFunc        func(ctx context.Context, f service.OrderListFilter) ([]models.Order, int64, error)
	DeleteOrderFunc       func(ctx context.Context, id uuid.UUID) error
}

func (s *fakeOrderService) CreateOrder(ctx context.Context, in service.CreateOrderInput) (*models.Order, error) {
	if s.CreateOrderFunc != nil {
		return s.CreateOrderFunc(ctx, in)
	}
	return nil, nil
}

func (s *fakeOrderService) Approve(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.ApproveFunc != nil {
		return s.ApproveFunc(ctx, id)
	}
	return nil, service.ErrOrderNotFound
}

func (s *fakeOrderService) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	if s.RejectFunc != nil {
		return s.RejectFunc(ctx, id, reason)
	}
	return nil, service.ErrOrderNotFound
}

func (s *fakeOrderService) Ship(ctx context.Context, id uuid.UUID, trackingNumber string) (*models.Order, error) {
	if s.ShipFunc != nil {
		return s.ShipFunc(ctx, id, trackingNumber)
	}
	return nil, service.ErrOrderNotFound
}

func (s *fakeOrderService) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.FindByIDFunc != nil {
		return s.FindByIDFunc(ctx, id)
	}
	return nil, service.ErrOrderNotFound
}

func (s *fakeOrderService) FindByAdminThread(ctx context.Context, chatID int64, threadID int) (*models.Order, error) {
	if s.FindByAdminThreadFunc != nil {
		return s.FindByAdminThreadFunc(ctx, chatID, threadID)
	}
	return nil, service.ErrOrderNotFound
}

func (s *fakeOrderService) ListOrders(ctx context.Context, f service.OrderListFilter) ([]models.Order, int64, error) {
	if s.ListOrdersFunc != nil {
		return s.ListOrdersFunc(ctx, f)
	}
	return nil, 0, nil
}

func (s *fakeOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if s.DeleteOrderFunc != nil {
		return s.DeleteOrderFunc(ctx, id)
	}
	return nil
}

// fakeSettingRepo
type fakeSettingRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{values: map[string]string{}}
}

func (r *fakeSettingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *fakeSettingRepo) Put(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}
