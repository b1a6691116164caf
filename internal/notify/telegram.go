package notify

import (
	"context"

	"cityvoice/backend/internal/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageSender is implemented by *tgbotapi.BotAPI.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier messages citizens who linked a Telegram chat.
type TelegramNotifier struct {
	bot MessageSender
	loc *localization.Localizer
}

func NewTelegramNotifier(bot MessageSender, loc *localization.Localizer) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, loc: loc}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

func (t *TelegramNotifier) Notify(ctx context.Context, n Notification) error {
	if n.Citizen == nil || n.Citizen.TelegramChatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, body := Compose(t.loc, n)
	_, err := t.bot.Send(tgbotapi.NewMessage(n.Citizen.TelegramChatID, body))
	return err
}
