package action

import (
	"context"
	"log/slog"
	"time"

	"github.com/fo76bot/fo76bot/internal/perception"
)

// Wait sits out a loading screen.
func (h *Handlers) Wait(ctx context.Context) bool {
	h.logger.Debug("Loading screen, waiting", slog.Int("seconds", h.cfg.LoadingWaitSeconds))
	h.sleep(seconds(h.cfg.LoadingWaitSeconds))
	return true
}

// AdvancePastIntro presses through the "press any button" screen.
func (h *Handlers) AdvancePastIntro(ctx context.Context) bool {
	h.logger.Info("Intro prompt, advancing to main menu")
	h.press("tab", 300*time.Millisecond)
	h.press("tab", seconds(h.cfg.IntroWaitSeconds))
	return true
}

// NudgeAndWait backs out of whatever is on screen when the text suggests a
// prompt, then waits. Tab in the open world raises the Pip-Boy, so it is only
// pressed when navigation hints were read.
func (h *Handlers) NudgeAndWait(ctx context.Context, navigationHints int) bool {
	if navigationHints > 0 {
		h.press("tab", 100*time.Millisecond)
	}
	h.sleep(seconds(h.cfg.NudgeWaitSeconds))
	return true
}

// WaitForPlayerLoad polls until the player is visibly in the world, clearing
// popups between checks.
func (h *Handlers) WaitForPlayerLoad(ctx context.Context) bool {
	for check := 0; check < h.cfg.LoadChecks; check++ {
		if ctx.Err() != nil {
			return false
		}

		view := h.perceiver.Probe(ctx, perception.RoleInWorld, perception.RoleStatus)
		if view.Has(perception.RoleInWorld) || view.Has(perception.RoleStatus) {
			h.logger.Info("Player loaded", slog.Int("checks", check+1))
			return true
		}

		h.logger.Debug("Player not loaded yet", slog.Int("check", check+1))
		h.sleep(seconds(h.cfg.LoadWaitSeconds))
		if h.AcknowledgePopup(ctx) {
			h.logger.Info("Popup dismissed while loading")
		}
	}

	h.logger.Error("Player did not load in time", slog.Int("checks", h.cfg.LoadChecks))
	h.capture(ctx, "load")
	return false
}
