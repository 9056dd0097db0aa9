package bot

import (
	"context"

	"github.com/vladbogun1/tg-shop-miniapp/internal/telegram"

	"go.uber.org/zap"
)

// Bot — диспетчер обновлений. Порядок веток фиксирован: правки, callback,
// ответы на подсказки, сообщения в темах заказов, ответы покупателя,
// команды. Первая подошедшая ветка завершает обработку.
type Bot struct {
	decision *DecisionHandler
	bridge   *Bridge
	commands *CommandHandler
	log      *zap.Logger
}

func New(decision *DecisionHandler, bridge *Bridge, commands *CommandHandler, log *zap.Logger) *Bot {
	return &Bot{decision: decision, bridge: bridge, commands: commands, log: log}
}

func (b *Bot) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.EditedMessage != nil:
		b.bridge.HandleEditedMessage(ctx, u.EditedMessage)
	case u.Callback != nil:
		b.decision.HandleCallback(ctx, u.Callback)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	if b.decision.HandlePendingReply(ctx, msg) {
		return
	}
	if b.bridge.HandleOrderChatMessage(ctx, msg) {
		return
	}
	if b.bridge.HandleUserReply(ctx, msg) {
		return
	}
	if b.commands.Handle(ctx, msg) {
		return
	}
}

// Run крутит long-poll до отмены контекста.
func (b *Bot) Run(ctx context.Context, client *telegram.Client) {
	b.log.Info("Запуск обработчика обновлений Telegram")
	client.Poll(ctx, func(u telegram.Update) {
		b.HandleUpdate(ctx, u)
	})
}
