package action

import (
	"context"
	"log/slog"
	"time"

	"github.com/fo76bot/fo76bot/internal/perception"
)

// AcknowledgePopup polls for the confirmation popup and dismisses the first one found.
func (h *Handlers) AcknowledgePopup(ctx context.Context) bool {
	for poll := 0; poll < h.cfg.PopupPolls; poll++ {
		popups := h.perceiver.Probe(ctx, perception.RolePopup).Detection(perception.RolePopup)
		if len(popups) > 0 {
			ok := popups[0]
			h.logger.Info("Dismissing confirmation popup", slog.Int("x", ok.X), slog.Int("y", ok.Y))
			h.input.MoveTo(ok.X, ok.Y)
			h.sleep(100 * time.Millisecond)
			h.press("enter", 200*time.Millisecond)
			return true
		}
		if poll < h.cfg.PopupPolls-1 {
			h.sleep(100 * time.Millisecond)
		}
	}

	return false
}
