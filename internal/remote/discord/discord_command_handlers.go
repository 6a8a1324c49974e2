package discord

import (
	"fmt"
)

const helpText = "Available commands:\n" +
	"`!status` - current state and last action\n" +
	"`!stats` - poll, restart and failure counters\n" +
	"`!help` - this message"

// reply answers one admin command. Unknown commands get a hint.
func (b *Bot) reply(command string) string {
	switch command {
	case "!status":
		return b.status.Status().Summary()
	case "!stats":
		return "```\n" + b.status.Status().Report() + "\n```"
	case "!help":
		return helpText
	default:
		return fmt.Sprintf("Unknown command: `%s`. Type `!help` for available commands.", command)
	}
}
