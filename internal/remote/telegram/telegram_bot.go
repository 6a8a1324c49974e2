package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"strings"

	"github.com/fo76bot/fo76bot/internal/bot"
	"github.com/fo76bot/fo76bot/internal/event"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type StatusProvider interface {
	Status() bot.Status
}

type Bot struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	status StatusProvider
	logger *slog.Logger
}

func (b *Bot) Start(ctx context.Context) error {
	offset, err := b.getLatestOffset()
	if err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = 5
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			for range updates {
			}
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
				continue
			}
			if reply := b.reply(update.Message.Text); reply != "" {
				b.sendMessage(reply)
			}
		}
	}
}

func (b *Bot) reply(text string) string {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(text), "/")) {
	case "status":
		return b.status.Status().Summary()
	case "stats":
		return b.status.Status().Report()
	default:
		return ""
	}
}

// Handle posts restarts and stops. Per-decision chatter stays on Discord.
func (b *Bot) Handle(_ context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.GameRestartedEvent:
		return b.sendEvent(e, fmt.Sprintf("[%s] Game restarted (#%d): %s", evt.Supervisor(), evt.Restarts, evt.Reason))
	case event.FatalStopEvent:
		return b.sendEvent(e, fmt.Sprintf("[%s] Bot stopped: %v", evt.Supervisor(), evt.Err))
	case event.NgrokTunnelEvent, event.BotStartedEvent:
		return b.sendMessage(e.Message())
	default:
		return nil
	}
}

func (b *Bot) sendEvent(e event.Event, message string) error {
	if e.Image() == nil {
		return b.sendMessage(message)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, e.Image(), &jpeg.Options{Quality: 80}); err != nil {
		return err
	}

	photo := tgbotapi.NewPhoto(b.chatID, tgbotapi.FileBytes{Name: "screenshot.jpeg", Bytes: buf.Bytes()})
	photo.Caption = message
	_, err := b.bot.Send(photo)
	return err
}

func (b *Bot) sendMessage(message string) error {
	_, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, message))
	if err != nil {
		b.logger.Warn("Telegram message failed", slog.Any("error", err))
	}
	return err
}

func (b *Bot) getLatestOffset() (int, error) {
	upds, err := b.bot.GetUpdates(tgbotapi.NewUpdate(-1))
	if err != nil {
		return 0, err
	}
	offset := 0
	if len(upds) > 0 {
		offset = upds[0].UpdateID + 1
	}
	return offset, nil
}
