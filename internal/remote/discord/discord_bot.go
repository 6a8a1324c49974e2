package discord

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/fo76bot/fo76bot/internal/bot"
	"github.com/fo76bot/fo76bot/internal/config"
)

// StatusProvider exposes the supervisor state to chat commands.
type StatusProvider interface {
	Status() bot.Status
}

type Bot struct {
	discordSession *discordgo.Session
	channelID      string
	status         StatusProvider
	useWebhook     bool
	webhookClient  *webhookClient
}

func NewBot(token, channelID string, status StatusProvider, useWebhook bool, webhookURL string) (*Bot, error) {
	botInstance := &Bot{
		channelID:  channelID,
		status:     status,
		useWebhook: useWebhook,
	}

	if useWebhook {
		if webhookURL == "" {
			return nil, fmt.Errorf("webhook URL is required when using webhook mode")
		}
		botInstance.webhookClient = newWebhookClient(webhookURL)
		return botInstance, nil
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	botInstance.discordSession = dg

	return botInstance, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if b.useWebhook {
		<-ctx.Done()
		return nil
	}

	b.discordSession.AddHandler(b.onMessageCreated)
	// MESSAGE_CONTENT is required to read commands
	b.discordSession.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	err := b.discordSession.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	<-ctx.Done()

	return b.discordSession.Close()
}

func (b *Bot) onMessageCreated(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}

	if !slices.Contains(config.Current().Discord.BotAdmins, m.Author.ID) {
		return
	}

	if !strings.HasPrefix(m.Content, "!") {
		return
	}

	prefix := strings.Split(m.Content, " ")[0]
	if reply := b.reply(prefix); reply != "" {
		s.ChannelMessageSend(m.ChannelID, reply)
	}
}
