package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// secrets can be kept out of fo76bot.yaml and supplied through the environment.
type secrets struct {
	DiscordToken   string `env:"FO76BOT_DISCORD_TOKEN"`
	DiscordWebhook string `env:"FO76BOT_DISCORD_WEBHOOK"`
	TelegramToken  string `env:"FO76BOT_TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"FO76BOT_TELEGRAM_CHAT_ID"`
	NgrokAuthtoken string `env:"NGROK_AUTHTOKEN"`
}

func applyEnv(cfg *BotCfg) error {
	var s secrets
	if err := env.Parse(&s); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if s.DiscordToken != "" {
		cfg.Discord.Token = s.DiscordToken
	}
	if s.DiscordWebhook != "" {
		cfg.Discord.WebhookURL = s.DiscordWebhook
	}
	if s.TelegramToken != "" {
		cfg.Telegram.Token = s.TelegramToken
	}
	if s.TelegramChatID != 0 {
		cfg.Telegram.ChatID = s.TelegramChatID
	}
	if s.NgrokAuthtoken != "" {
		cfg.Ngrok.Authtoken = s.NgrokAuthtoken
	}

	return nil
}
