package telegram

import (
	"strings"
	"testing"

	"github.com/fo76bot/fo76bot/internal/bot"
)

type fixedStatus bot.Status

func (f fixedStatus) Status() bot.Status {
	return bot.Status(f)
}

func TestReply(t *testing.T) {
	b := &Bot{status: fixedStatus{Name: "fo76", State: bot.StateStopped, Bot: bot.Stats{Polls: 9}}}

	tests := []struct {
		text string
		want string
	}{
		{"status", "fo76 is Stopped"},
		{"/Status", "fo76 is Stopped"},
		{" stats ", "Polls: 9"},
		{"hello", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := b.reply(tt.text)
			if tt.want == "" {
				if got != "" {
					t.Errorf("reply(%q) = %q, want no reply", tt.text, got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("reply(%q) = %q, want it to contain %q", tt.text, got, tt.want)
			}
		})
	}
}
