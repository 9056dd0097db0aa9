package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/vladbogun1/tg-shop-miniapp/internal/repository"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"
	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"

	"go.uber.org/zap"
)

// CommandHandler обрабатывает slash-команды бота.
type CommandHandler struct {
	settings      repository.SettingRepo
	safe          *telegram.Safe
	admins        map[int64]bool
	webAppBaseURL string
	log           *zap.Logger
}

func NewCommandHandler(settings repository.SettingRepo, safe *telegram.Safe, adminIDs []int64, webAppBaseURL string, log *zap.Logger) *CommandHandler {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &CommandHandler{
		settings:      settings,
		safe:          safe,
		admins:        admins,
		webAppBaseURL: strings.TrimRight(webAppBaseURL, "/"),
		log:           log,
	}
}

// Handle возвращает true, если сообщение было известной командой.
func (h *CommandHandler) Handle(ctx context.Context, msg *telegram.Message) bool {
	if !msg.HasText() || !strings.HasPrefix(msg.Text, "/") {
		return false
	}
	cmd := strings.Fields(msg.Text)[0]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start", "/shop":
		h.sendShopButton(ctx, msg)
	case "/set_admin_chat":
		h.setAdminChat(ctx, msg)
	case "/help":
		h.sendHelp(ctx, msg)
	default:
		return false
	}
	return true
}

func (h *CommandHandler) sendShopButton(ctx context.Context, msg *telegram.Message) {
	h.safe.SendMessage(ctx, telegram.SendMessage{
		ChatID:   msg.ChatID,
		ThreadID: msg.ThreadID,
		Text:     "Открывай мини-приложение магазина 👇",
		ReplyMarkup: &telegram.InlineKeyboardMarkup{Rows: [][]telegram.InlineKeyboardButton{{
			{Text: "🛍️ Открыть магазин", WebAppURL: h.webAppBaseURL + "/app/index.html?mode=user"},
		}}},
	})
}

// setAdminChat привязывает текущий чат как получателя уведомлений о заказах.
func (h *CommandHandler) setAdminChat(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || !h.admins[msg.From.ID] {
		h.safe.SendMessage(ctx, telegram.SendMessage{
			ChatID:   msg.ChatID,
			ThreadID: msg.ThreadID,
			Text:     "⛔ Команда доступна только администраторам.",
		})
		return
	}
	if err := h.settings.Put(ctx, service.AdminChatIDKey, strconv.FormatInt(msg.ChatID, 10)); err != nil {
		h.log.Error("Не удалось сохранить админ-чат", zap.Error(err))
		h.safe.SendMessage(ctx, telegram.SendMessage{
			ChatID:   msg.ChatID,
			ThreadID: msg.ThreadID,
			Text:     "Не удалось сохранить настройку. Попробуйте позже.",
		})
		return
	}
	h.log.Info("Админ-чат обновлён", zap.Int64("chatId", msg.ChatID))
	h.safe.SendMessage(ctx, telegram.SendMessage{
		ChatID:   msg.ChatID,
		ThreadID: msg.ThreadID,
		Text:     "✅ Этот чат теперь будет получать уведомления о заказах.",
	})
}

func (h *CommandHandler) sendHelp(ctx context.Context, msg *telegram.Message) {
	text := "Доступные команды:\n" +
		"/shop — открыть мини-приложение магазина\n" +
		"/help — показать эту справку"
	if msg.From != nil && h.admins[msg.From.ID] {
		text += "\n/set_admin_chat — получать уведомления о заказах в этот чат"
	}
	h.safe.SendMessage(ctx, telegram.SendMessage{
		ChatID:   msg.ChatID,
		ThreadID: msg.ThreadID,
		Text:     text,
	})
}
