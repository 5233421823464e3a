package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	logger      *zap.Logger
}

type CommandUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	Command  string
	Args     string
}

// MessageUpdate is any non-command message. MessageID lets the handler copy
// the original to another chat.
type MessageUpdate struct {
	ChatID    int64
	UserID    int64
	Username  string
	MessageID int
	Kind      enums.MediaKind
	Text      string
}

type CallbackUpdate struct {
	CallbackID string
	ChatID     int64
	MessageID  int
	UserID     int64
	Username   string
	Data       string
}

type Handlers struct {
	OnCommand  func(context.Context, CommandUpdate) error
	OnMessage  func(context.Context, MessageUpdate) error
	OnCallback func(context.Context, CallbackUpdate) error
}

func NewBot(token string, pollTimeout int, logger *zap.Logger) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollTimeout <= 0 {
		pollTimeout = 30
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Bot{api: api, pollTimeout: pollTimeout, logger: logger}, nil
}

// Listen long-polls until ctx is done. A failing handler is logged and the
// loop moves on to the next update.
func (b *Bot) Listen(ctx context.Context, handlers Handlers) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(updateCfg)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("telegram updates channel closed")
			}
			b.dispatch(ctx, handlers, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, handlers Handlers, update tgbotapi.Update) {
	if msg := update.Message; msg != nil && msg.From != nil {
		if msg.IsCommand() {
			if handlers.OnCommand == nil {
				return
			}
			b.report("command", msg.From.ID, handlers.OnCommand(ctx, CommandUpdate{
				ChatID:   msg.Chat.ID,
				UserID:   msg.From.ID,
				Username: msg.From.UserName,
				Command:  strings.ToLower(msg.Command()),
				Args:     strings.TrimSpace(msg.CommandArguments()),
			}))
			return
		}

		if handlers.OnMessage != nil {
			b.report("message", msg.From.ID, handlers.OnMessage(ctx, MessageUpdate{
				ChatID:    msg.Chat.ID,
				UserID:    msg.From.ID,
				Username:  msg.From.UserName,
				MessageID: msg.MessageID,
				Kind:      ClassifyMessage(msg),
				Text:      strings.TrimSpace(msg.Text),
			}))
		}
		return
	}

	if cb := update.CallbackQuery; cb != nil && cb.From != nil && handlers.OnCallback != nil {
		chatID, messageID := int64(0), 0
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
			messageID = cb.Message.MessageID
		}
		b.report("callback", cb.From.ID, handlers.OnCallback(ctx, CallbackUpdate{
			CallbackID: cb.ID,
			ChatID:     chatID,
			MessageID:  messageID,
			UserID:     cb.From.ID,
			Username:   cb.From.UserName,
			Data:       cb.Data,
		}))
	}
}

func (b *Bot) report(kind string, userID int64, err error) {
	if err != nil {
		b.logger.Error("telegram handler failed", zap.String("update", kind), zap.Int64("user_id", userID), zap.Error(err))
	}
}

// ClassifyMessage reports what a message carries, preferring media over text.
func ClassifyMessage(msg *tgbotapi.Message) enums.MediaKind {
	switch {
	case msg == nil:
		return enums.MediaKindOther
	case len(msg.Photo) > 0:
		return enums.MediaKindPhoto
	case msg.Animation != nil:
		return enums.MediaKindAnimation
	case msg.Video != nil:
		return enums.MediaKindVideo
	case msg.Voice != nil:
		return enums.MediaKindVoice
	case msg.Sticker != nil:
		return enums.MediaKindSticker
	case msg.Document != nil:
		return enums.MediaKindDocument
	case strings.TrimSpace(msg.Text) != "":
		return enums.MediaKindText
	default:
		return enums.MediaKindOther
	}
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, chatID, text, nil)
}

func (b *Bot) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error {
	return b.send(ctx, chatID, text, rows)
}

func (b *Bot) send(_ context.Context, chatID int64, text string, rows [][]InlineButton) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(rows) > 0 {
		msg.ReplyMarkup = BuildInlineKeyboard(rows)
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// EditText replaces the text of a message, keeping rows as its new keyboard.
func (b *Bot) EditText(_ context.Context, chatID int64, messageID int, text string, rows [][]InlineButton) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 || messageID == 0 {
		return fmt.Errorf("chat id and message id are required")
	}

	var edit tgbotapi.EditMessageTextConfig
	if len(rows) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, BuildInlineKeyboard(rows))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("edit telegram message: %w", err)
	}
	return nil
}

func (b *Bot) AnswerCallback(_ context.Context, callbackID, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(callbackID) == "" {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}

// CopyMessage relays a message without the "forwarded from" header, which
// keeps the sender anonymous.
func (b *Bot) CopyMessage(_ context.Context, toChatID, fromChatID int64, messageID int) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if toChatID == 0 || fromChatID == 0 || messageID == 0 {
		return fmt.Errorf("copy message target is incomplete")
	}

	if _, err := b.api.Request(tgbotapi.NewCopyMessage(toChatID, fromChatID, messageID)); err != nil {
		return fmt.Errorf("copy telegram message: %w", err)
	}
	return nil
}

func (b *Bot) SendPhoto(_ context.Context, chatID int64, png []byte, caption string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 || len(png) == 0 {
		return fmt.Errorf("chat id and photo bytes are required")
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "qris.png", Bytes: png})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		return fmt.Errorf("send telegram photo: %w", err)
	}
	return nil
}
