package telegram

import (
	"context"

	"go.uber.org/zap"
)

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
	WebAppURL    string `json:"-"`
}

type InlineKeyboardMarkup struct {
	Rows [][]InlineKeyboardButton
}

type SendMessage struct {
	ChatID           int64
	ThreadID         *int
	ReplyToMessageID *int
	Text             string
	ParseHTML        bool
	ForceReply       bool
	ReplyMarkup      *InlineKeyboardMarkup
}

type SendMedia struct {
	ChatID           int64
	ThreadID         *int
	ReplyToMessageID *int
	Kind             ContentKind
	FileID           string
	Caption          string
	Contact          *Contact
	Location         *Location
}

type EditMessageText struct {
	ChatID      int64
	MessageID   int
	Text        string
	ParseHTML   bool
	ReplyMarkup *InlineKeyboardMarkup
}

type EditMessageCaption struct {
	ChatID    int64
	MessageID int
	Caption   string
}

type EditMessageReplyMarkup struct {
	ChatID      int64
	MessageID   int
	ReplyMarkup *InlineKeyboardMarkup
}

type AnswerCallback struct {
	CallbackID string
	Text       string
	ShowAlert  bool
}

// Gateway — типизированные команды внешнего канала. Каждая может завершиться
// транспортной ошибкой; политика обработки остаётся за вызывающим.
type Gateway interface {
	SendMessage(ctx context.Context, cmd SendMessage) (*MessageRef, error)
	SendMedia(ctx context.Context, cmd SendMedia) (*MessageRef, error)
	EditMessageText(ctx context.Context, cmd EditMessageText) error
	EditMessageCaption(ctx context.Context, cmd EditMessageCaption) error
	EditMessageReplyMarkup(ctx context.Context, cmd EditMessageReplyMarkup) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, cmd AnswerCallback) error
	CreateForumTopic(ctx context.Context, chatID int64, name string) (int, error)
	EditForumTopic(ctx context.Context, chatID int64, threadID int, name string) error
}

// Safe оборачивает Gateway политикой best-effort: транспортная ошибка
// логируется и не прерывает обработчик. Где нужен id отправленного
// сообщения — возвращается nil, и связка просто не записывается.
type Safe struct {
	gw  Gateway
	log *zap.Logger
}

func NewSafe(gw Gateway, log *zap.Logger) *Safe {
	return &Safe{gw: gw, log: log}
}

func (s *Safe) SendMessage(ctx context.Context, cmd SendMessage) *MessageRef {
	ref, err := s.gw.SendMessage(ctx, cmd)
	if err != nil {
		s.log.Warn("Не удалось отправить сообщение", zap.Int64("chatId", cmd.ChatID), zap.Error(err))
		return nil
	}
	return ref
}

func (s *Safe) SendMedia(ctx context.Context, cmd SendMedia) *MessageRef {
	ref, err := s.gw.SendMedia(ctx, cmd)
	if err != nil {
		s.log.Warn("Не удалось отправить вложение",
			zap.Int64("chatId", cmd.ChatID), zap.String("kind", string(cmd.Kind)), zap.Error(err))
		return nil
	}
	return ref
}

func (s *Safe) EditMessageText(ctx context.Context, cmd EditMessageText) {
	if err := s.gw.EditMessageText(ctx, cmd); err != nil {
		s.log.Warn("Не удалось отредактировать текст сообщения",
			zap.Int64("chatId", cmd.ChatID), zap.Int("messageId", cmd.MessageID), zap.Error(err))
	}
}

func (s *Safe) EditMessageCaption(ctx context.Context, cmd EditMessageCaption) {
	if err := s.gw.EditMessageCaption(ctx, cmd); err != nil {
		s.log.Warn("Не удалось отредактировать подпись сообщения",
			zap.Int64("chatId", cmd.ChatID), zap.Int("messageId", cmd.MessageID), zap.Error(err))
	}
}

func (s *Safe) EditMessageReplyMarkup(ctx context.Context, cmd EditMessageReplyMarkup) {
	if err := s.gw.EditMessageReplyMarkup(ctx, cmd); err != nil {
		s.log.Warn("Не удалось обновить клавиатуру сообщения",
			zap.Int64("chatId", cmd.ChatID), zap.Int("messageId", cmd.MessageID), zap.Error(err))
	}
}

func (s *Safe) DeleteMessage(ctx context.Context, chatID int64, messageID int) {
	if err := s.gw.DeleteMessage(ctx, chatID, messageID); err != nil {
		s.log.Warn("Не удалось удалить сообщение",
			zap.Int64("chatId", chatID), zap.Int("messageId", messageID), zap.Error(err))
	}
}

func (s *Safe) AnswerCallback(ctx context.Context, cmd AnswerCallback) {
	if err := s.gw.AnswerCallback(ctx, cmd); err != nil {
		s.log.Warn("Не удалось ответить на callback", zap.Error(err))
	}
}

func (s *Safe) CreateForumTopic(ctx context.Context, chatID int64, name string) (int, bool) {
	threadID, err := s.gw.CreateForumTopic(ctx, chatID, name)
	if err != nil {
		s.log.Warn("Не удалось создать тему форума", zap.Int64("chatId", chatID), zap.Error(err))
		return 0, false
	}
	return threadID, true
}

func (s *Safe) EditForumTopic(ctx context.Context, chatID int64, threadID int, name string) {
	if err := s.gw.EditForumTopic(ctx, chatID, threadID, name); err != nil {
		s.log.Warn("Не удалось переименовать тему форума",
			zap.Int64("chatId", chatID), zap.Int("threadId", threadID), zap.Error(err))
	}
}
