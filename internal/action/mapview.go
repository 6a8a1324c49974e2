package action

import (
	"context"
	"log/slog"
	"time"

	"github.com/fo76bot/fo76bot/internal/perception"
)

func mapOpen(s perception.Snapshot) bool {
	return s.Has(perception.RoleStatus) && s.Has(perception.RoleObjective)
}

// deathScreen is the partial map signal: the status marker without the
// objective marker only shows on the respawn map.
func deathScreen(s perception.Snapshot) bool {
	return s.Has(perception.RoleStatus) && !s.Has(perception.RoleObjective)
}

func (h *Handlers) probeMap(ctx context.Context) perception.Snapshot {
	return h.perceiver.Probe(ctx, perception.RoleStatus, perception.RoleObjective)
}

// recoverOnMap hands a respawn map found while working the world map to
// RecoverFromDeath. The map itself is never usable afterwards.
func (h *Handlers) recoverOnMap(ctx context.Context) error {
	if !h.RecoverFromDeath(ctx) && ctx.Err() == nil {
		return ErrRespawnFailed
	}
	return nil
}

// OpenMap opens the world map. A respawn map found on the way is handed to
// RecoverFromDeath and reported as failure, or as ErrRespawnFailed when the
// player could not be revived.
func (h *Handlers) OpenMap(ctx context.Context) (bool, error) {
	h.AcknowledgePopup(ctx)

	for attempt := 0; attempt < h.cfg.MapAttempts; attempt++ {
		if mapOpen(h.probeMap(ctx)) {
			h.logger.Debug("Map already open")
			return true, nil
		}

		h.press("m", 3*time.Second)

		view := h.probeMap(ctx)
		if mapOpen(view) {
			h.logger.Debug("Map opened", slog.Int("attempt", attempt+1))
			h.AcknowledgePopup(ctx)
			return true, nil
		}
		if deathScreen(view) {
			h.logger.Info("Status marker without objective marker after opening map, player looks dead")
			return false, h.recoverOnMap(ctx)
		}
	}

	h.logger.Warn("Failed to open map", slog.Int("attempts", h.cfg.MapAttempts))
	return false, nil
}

// CloseMap closes the world map if it is open. A closed map counts as success.
func (h *Handlers) CloseMap(ctx context.Context) (bool, error) {
	h.sleep(300 * time.Millisecond)

	view := h.probeMap(ctx)
	switch {
	case mapOpen(view):
		for attempt := 0; attempt < h.cfg.MapAttempts; attempt++ {
			h.press("m", 2*time.Second)
			if !mapOpen(h.probeMap(ctx)) {
				h.logger.Debug("Map closed", slog.Int("attempt", attempt+1))
				return true, nil
			}
			h.press("tab", time.Second)
		}
		h.logger.Warn("Couldn't close map", slog.Int("attempts", h.cfg.MapAttempts))
		return false, nil
	case deathScreen(view):
		h.logger.Info("Status marker without objective marker while closing map, player looks dead")
		return false, h.recoverOnMap(ctx)
	default:
		return true, nil
	}
}
