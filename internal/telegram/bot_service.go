// Package telegram runs the citizen-facing Telegram bot: chat linking, trust status and
// language preference. Outbound report notifications live in the notify package.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"cityvoice/backend/internal/localization"
	"cityvoice/backend/internal/models"
	"cityvoice/backend/internal/storage"
	"cityvoice/backend/internal/triage"

	"github.com/apex/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const langCallbackPrefix = "set_lang_"

var languageNames = map[string]string{
	"en": "English",
	"uk": "Українська",
}

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// CitizenStore resolves the citizen behind a chat and persists preferences.
type CitizenStore interface {
	GetCitizenByTelegramChatID(ctx context.Context, chatID int64) (*models.Citizen, error)
	UpdateCitizenLanguage(ctx context.Context, id, lang string) error
}

// TrustReader is implemented by *triage.Router.
type TrustReader interface {
	TrustSummary(ctx context.Context, citizenID string) (*triage.TrustSummary, error)
}

// BotService answers bot commands.
type BotService struct {
	Bot       BotAPI
	Storage   CitizenStore
	Trust     TrustReader
	Localizer *localization.Localizer
}

func NewBotService(bot BotAPI, s CitizenStore, t TrustReader, loc *localization.Localizer) *BotService {
	return &BotService{Bot: bot, Storage: s, Trust: t, Localizer: loc}
}

// Run handles updates until ctx is done or the channel closes.
func (s *BotService) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single update.
func (s *BotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		s.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		s.handleMessage(ctx, update.Message)
	}
}

func (s *BotService) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	citizen, err := s.lookup(ctx, chatID)
	if err != nil {
		s.reply(chatID, s.Localizer.GetString(localization.DefaultLanguage, "bot_error"))
		return
	}
	lang := languageOf(citizen)

	if !msg.IsCommand() {
		s.reply(chatID, s.Localizer.GetString(lang, "bot_unknown_command"))
		return
	}

	switch msg.Command() {
	case "start":
		s.reply(chatID, s.Localizer.Format(lang, "bot_start", chatID))
	case "trust":
		s.handleTrustCommand(ctx, chatID, citizen)
	case "language":
		s.handleLanguageCommand(chatID, lang)
	default:
		s.reply(chatID, s.Localizer.GetString(lang, "bot_unknown_command"))
	}
}

func (s *BotService) handleTrustCommand(ctx context.Context, chatID int64, citizen *models.Citizen) {
	lang := languageOf(citizen)
	if citizen == nil {
		s.reply(chatID, s.Localizer.GetString(lang, "bot_not_linked"))
		return
	}

	summary, err := s.Trust.TrustSummary(ctx, citizen.ID)
	if err != nil {
		log.WithError(err).WithField("citizen_id", citizen.ID).Error("trust summary failed")
		s.reply(chatID, s.Localizer.GetString(lang, "bot_error"))
		return
	}

	limit := "∞"
	if summary.DailyLimit != nil {
		limit = strconv.Itoa(*summary.DailyLimit)
	}
	review := s.Localizer.GetString(lang, "bot_no")
	if summary.ManualReview {
		review = s.Localizer.GetString(lang, "bot_yes")
	}

	s.reply(chatID, s.Localizer.Format(lang, "bot_trust",
		summary.Level, summary.Score.StringFixed(2), summary.SubmittedToday, limit, review))
}

func (s *BotService) handleLanguageCommand(chatID int64, lang string) {
	var row []tgbotapi.InlineKeyboardButton
	for _, code := range s.Localizer.Languages() {
		name, ok := languageNames[code]
		if !ok {
			name = code
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(name, langCallbackPrefix+code))
	}

	msg := tgbotapi.NewMessage(chatID, s.Localizer.GetString(lang, "bot_choose_language"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	if _, err := s.Bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("failed to send language keyboard")
	}
}

func (s *BotService) handleCallbackQuery(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Respond to the callback query to remove the "loading" state
	if _, err := s.Bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.WithError(err).Warn("failed to answer callback query")
	}
	if cq.Message == nil || !strings.HasPrefix(cq.Data, langCallbackPrefix) {
		return
	}

	chatID := cq.Message.Chat.ID
	citizen, err := s.lookup(ctx, chatID)
	if err != nil {
		s.reply(chatID, s.Localizer.GetString(localization.DefaultLanguage, "bot_error"))
		return
	}
	if citizen == nil {
		s.reply(chatID, s.Localizer.GetString(localization.DefaultLanguage, "bot_not_linked"))
		return
	}

	lang := strings.TrimPrefix(cq.Data, langCallbackPrefix)
	if !s.Localizer.Has(lang) {
		return
	}
	if err := s.Storage.UpdateCitizenLanguage(ctx, citizen.ID, lang); err != nil {
		log.WithError(err).WithField("citizen_id", citizen.ID).Error("failed to update language")
		s.reply(chatID, s.Localizer.GetString(lang, "bot_error"))
		return
	}
	s.reply(chatID, s.Localizer.GetString(lang, "bot_language_changed"))
}

// lookup returns nil without error when the chat is not linked to a citizen.
func (s *BotService) lookup(ctx context.Context, chatID int64) (*models.Citizen, error) {
	citizen, err := s.Storage.GetCitizenByTelegramChatID(ctx, chatID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("citizen lookup failed")
		return nil, err
	}
	return citizen, nil
}

func (s *BotService) reply(chatID int64, text string) {
	if _, err := s.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("failed to send telegram reply")
	}
}

func languageOf(c *models.Citizen) string {
	if c == nil || c.Language == "" {
		return localization.DefaultLanguage
	}
	return c.Language
}
