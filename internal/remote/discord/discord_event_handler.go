package discord

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/bwmarrin/discordgo"
	"github.com/fo76bot/fo76bot/internal/config"
	"github.com/fo76bot/fo76bot/internal/event"
)

const (
	colorRestart = 0xff8000
	colorFatal   = 0xff0000
)

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	if !b.shouldPublish(e) {
		return nil
	}

	switch evt := e.(type) {
	case event.BotStartedEvent:
		return b.sendEventMessage(ctx, fmt.Sprintf("**[%s]** %s", evt.Supervisor(), evt.Message()))
	case event.DecisionMadeEvent:
		message := fmt.Sprintf("**[%s]** %s (%s): %s", evt.Supervisor(), evt.Action, evt.State, evt.Reason)
		return b.sendEventMessage(ctx, message)
	case event.ActionFailedEvent:
		message := fmt.Sprintf("**[%s]** %s made no progress (%d in a row)", evt.Supervisor(), evt.Action, evt.Consecutive)
		return b.sendEventMessage(ctx, message)
	case event.GameRestartedEvent:
		if e.Image() == nil {
			return b.sendEmbed(ctx, restartEmbed(evt))
		}
	case event.FatalStopEvent:
		if e.Image() == nil {
			return b.sendEmbed(ctx, fatalEmbed(evt))
		}
	case event.NgrokTunnelEvent:
		return b.sendEventMessage(ctx, evt.Message())
	default:
		break
	}

	if e.Image() == nil {
		return nil
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, e.Image(), &jpeg.Options{Quality: 80}); err != nil {
		return err
	}

	message := fmt.Sprintf("**[%s]** %s", e.Supervisor(), e.Message())
	return b.sendScreenshot(ctx, message, buf.Bytes())
}

func restartEmbed(evt event.GameRestartedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Game restarted",
		Description: evt.Reason,
		Color:       colorRestart,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s | restart #%d | %s", evt.Supervisor(), evt.Restarts, evt.Session())},
		Timestamp:   evt.OccurredAt().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func fatalEmbed(evt event.FatalStopEvent) *discordgo.MessageEmbed {
	desc := evt.Message()
	if evt.Err != nil {
		desc = fmt.Sprintf("%s\n`%s`", desc, evt.Err)
	}
	return &discordgo.MessageEmbed{
		Title:       "Bot stopped",
		Description: desc,
		Color:       colorFatal,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%s | %s", evt.Supervisor(), evt.Session())},
		Timestamp:   evt.OccurredAt().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (b *Bot) sendEmbed(ctx context.Context, embed *discordgo.MessageEmbed) error {
	if b.useWebhook {
		return b.webhookClient.SendEmbed(ctx, embed)
	}

	_, err := b.discordSession.ChannelMessageSendEmbed(b.channelID, embed)
	return err
}

func (b *Bot) sendEventMessage(ctx context.Context, message string) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "", nil)
	}

	_, err := b.discordSession.ChannelMessageSend(b.channelID, message)
	return err
}

func (b *Bot) sendScreenshot(ctx context.Context, message string, image []byte) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "Screenshot.jpeg", image)
	}

	reader := bytes.NewReader(image)
	_, err := b.discordSession.ChannelMessageSendComplex(b.channelID, &discordgo.MessageSend{
		Files:   []*discordgo.File{{Name: "Screenshot.jpeg", ContentType: "image/jpeg", Reader: reader}},
		Content: message,
	})
	return err
}

func (b *Bot) shouldPublish(e event.Event) bool {
	cfg := config.Current()

	switch e.(type) {
	case event.GameRestartedEvent:
		return cfg.Discord.EnableRestartMessages
	case event.ActionFailedEvent:
		return cfg.Discord.EnableFailureMessages
	case event.DecisionMadeEvent:
		return cfg.Discord.EnableDecisionMessages
	case event.FatalStopEvent, event.BotStartedEvent, event.NgrokTunnelEvent:
		return true
	default:
		break
	}

	return e.Image() != nil
}
