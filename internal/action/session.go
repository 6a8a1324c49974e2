package action

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fo76bot/fo76bot/internal/perception"
	"github.com/fo76bot/fo76bot/internal/ui"
)

// joinBlockers are HUD fragments shown when the join lands on an info panel
// that has to be dismissed before the world loads.
var joinBlockers = []string{"tab)", "more info", "t)", "enter)"}

// JoinSession clicks the join entry on the main menu and confirms the
// dialogs. It only succeeds once the menu is gone and no blocking panel is up.
func (h *Handlers) JoinSession(ctx context.Context) bool {
	if !h.atMenu(ctx) {
		h.logger.Warn("Join requested but main menu is not visible")
		return false
	}

	for attempt := 0; attempt < h.cfg.JoinAttempts; attempt++ {
		h.logger.Info("Joining a session", slog.Int("attempt", attempt+1))
		h.clickAt(ui.JoinButton(), 400*time.Millisecond)
		h.press("enter", 400*time.Millisecond)
		h.press("enter", 2*time.Second)

		if h.atMenu(ctx) {
			continue
		}

		blocked := false
		text := h.perceiver.ReadText(ctx, perception.HUDBand, false)
		for _, fragment := range joinBlockers {
			if strings.Contains(text, fragment) {
				h.logger.Info("Dismissing panel shown after join", slog.String("match", fragment))
				h.press("tab", 200*time.Millisecond)
				blocked = true
				break
			}
		}

		if h.atMenu(ctx) {
			continue
		}

		return !blocked
	}

	if h.atMenu(ctx) {
		h.logger.Warn("Still at main menu after join attempts", slog.Int("attempts", h.cfg.JoinAttempts))
		return false
	}
	return true
}

// LeaveSession backs out of the current world to the main menu. A map that
// cannot be opened is treated as already out of the world, unless the player
// turned out to be dead and could not be revived.
func (h *Handlers) LeaveSession(ctx context.Context) (bool, error) {
	opened, err := h.OpenMap(ctx)
	if err != nil {
		return false, err
	}
	if !opened {
		h.logger.Warn("Couldn't open map to leave, assuming session is already gone")
		return true, nil
	}

	for attempt := 0; attempt < h.cfg.LeaveAttempts; attempt++ {
		if h.atMenu(ctx) {
			h.leaveFailures = 0
			return true, nil
		}

		h.logger.Info("Leaving session", slog.Int("attempt", attempt+1))
		h.press("c", 350*time.Millisecond)
		h.clickAt(ui.LeaveButton(), 500*time.Millisecond)
		h.press("enter", 250*time.Millisecond)
		h.press("enter", 2*time.Second)

		for poll := 0; poll < h.cfg.LeavePolls; poll++ {
			if h.atMenu(ctx) {
				h.logger.Info("Back at main menu")
				h.leaveFailures = 0
				return true, nil
			}
			h.sleep(time.Second)
		}
	}

	h.leaveFailures++
	h.logger.Error("Failed to leave session", slog.Int("consecutiveFailures", h.leaveFailures))
	h.capture(ctx, "leave")
	return false, nil
}

// LeaveFailures returns how many LeaveSession calls in a row have failed.
func (h *Handlers) LeaveFailures() int {
	return h.leaveFailures
}

// ResetLeaveFailures clears the streak after the game has been restarted.
func (h *Handlers) ResetLeaveFailures() {
	h.leaveFailures = 0
}
