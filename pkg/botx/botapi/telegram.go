// Package botapi contains implementations of bot API interfaces.
package botapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Semior001/stockfeed/pkg/botx"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/exp/slog"
)

// maxMessageLen is the telegram limit for a single message text.
const maxMessageLen = 4096

// Telegram receives updates from and sends messages to telegram.
type Telegram struct {
	log     *slog.Logger
	api     *tgbotapi.BotAPI
	updates chan botx.Request
}

// NewTelegram returns a new telegram bot API.
func NewTelegram(lg *slog.Logger, token string, bufferSize int) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("make new api: %w", err)
	}

	stdlibLogger := slog.NewLogLogger(lg.Handler(), slog.LevelWarn)
	stdlibLogger.SetPrefix("telegram-bot-api: ")

	if err = tgbotapi.SetLogger(stdlibLogger); err != nil {
		return nil, fmt.Errorf("set logger: %w", err)
	}

	return &Telegram{
		log:     lg,
		api:     api,
		updates: make(chan botx.Request, bufferSize),
	}, nil
}

// Run listens for updates until the context is done.
// The updates channel is closed on return.
func (b *Telegram) Run(ctx context.Context) error {
	defer close(b.updates)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.InfoCtx(ctx, "listening for updates", slog.String("bot", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}

			msg := update.Message
			if msg == nil || msg.Chat == nil || msg.Text == "" {
				continue
			}

			req := botx.Request{
				MessageID: strconv.Itoa(msg.MessageID),
				Chat: botx.Chat{
					ID:       strconv.FormatInt(msg.Chat.ID, 10),
					Username: msg.Chat.UserName,
				},
				Text: msg.Text,
			}

			select {
			case b.updates <- req:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Updates returns updates channel.
func (b *Telegram) Updates() <-chan botx.Request {
	return b.updates
}

// SendMessage sends message to telegram chat, splitting texts that exceed
// the telegram limit by lines.
func (b *Telegram) SendMessage(ctx context.Context, resp botx.Response) error {
	chatID, err := strconv.ParseInt(resp.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id: %w", err)
	}

	for i, text := range splitMessage(resp.Text, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true

		if resp.ReplyToMessageID != "" && i == 0 {
			if msg.ReplyToMessageID, err = strconv.Atoi(resp.ReplyToMessageID); err != nil {
				return fmt.Errorf("parse reply to message id: %w", err)
			}
		}

		if _, err = b.api.Send(msg); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}

	return nil
}

// splitMessage splits text into parts of at most limit runes, preferring
// line boundaries and never cutting a rune.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		res  []string
		sb   strings.Builder
		size int // runes in sb
	)

	flush := func() {
		if sb.Len() > 0 {
			res = append(res, sb.String())
			sb.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			res = append(res, string(runes[:limit]))
			runes = runes[limit:]
		}

		if size+len(runes) > limit {
			flush()
		}
		sb.WriteString(string(runes))
		size += len(runes)
	}

	flush()
	return res
}
