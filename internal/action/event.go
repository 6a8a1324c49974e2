package action

import (
	"context"
	"log/slog"
	"time"

	"github.com/fo76bot/fo76bot/internal/perception"
)

// EventResult reports whether an event was reached and how many event
// markers the map showed while looking for it.
type EventResult struct {
	Found   bool
	Markers int
}

// FindEvent opens the map, reveals the event markers and fast travels to the
// first one. Overweight players cannot travel, which ends the run.
func (h *Handlers) FindEvent(ctx context.Context) (EventResult, error) {
	opened, err := h.OpenMap(ctx)
	if err != nil {
		return EventResult{}, err
	}
	if !opened {
		h.logger.Warn("Couldn't open map to look for events")
		return EventResult{}, nil
	}

	if !h.revealEvents(ctx) {
		h.logger.Warn("Objective marker not found on map")
		return EventResult{}, nil
	}

	var res EventResult
	for attempt := 0; attempt < h.cfg.EventAttempts; attempt++ {
		markers := h.perceiver.Probe(ctx, perception.RoleEvent).Detection(perception.RoleEvent)
		if len(markers) == 0 {
			h.logger.Info("No event on the map")
			h.press("tab", 100*time.Millisecond)
			return res, nil
		}

		res.Markers = len(markers)
		target := firstByPosition(markers)
		h.logger.Info("Fast travelling to event",
			slog.Int("markers", len(markers)),
			slog.Int("x", target.X),
			slog.Int("y", target.Y),
			slog.Int("attempt", attempt+1),
		)
		h.clickAt(target, 300*time.Millisecond)
		h.press("enter", 300*time.Millisecond)
		h.press("enter", 500*time.Millisecond)

		after := h.perceiver.Probe(ctx, perception.RoleOverweight, perception.RoleStatus)
		if after.Has(perception.RoleOverweight) {
			h.logger.Error("Player is overweight, can't fast travel")
			h.capture(ctx, "overweight")
			h.AcknowledgePopup(ctx)
			if _, err = h.LeaveSession(ctx); err != nil {
				h.logger.Warn("Leaving after overweight failed", slog.Any("error", err))
			}
			return res, ErrOverweight
		}

		if !after.Has(perception.RoleStatus) {
			h.logger.Info("Map closed, travelling to event")
			res.Found = true
			return res, nil
		}

		if attempt == h.cfg.EventAttempts-1 {
			h.logger.Warn("Map still open after last travel attempt, assuming travel started")
			res.Found = true
			return res, nil
		}

		h.sleep(100 * time.Millisecond)
		if _, err = h.OpenMap(ctx); err != nil {
			return res, err
		}
	}

	return res, nil
}

// revealEvents clicks the objective marker so the map lists the active events.
func (h *Handlers) revealEvents(ctx context.Context) bool {
	objectives := h.perceiver.Probe(ctx, perception.RoleObjective).Detection(perception.RoleObjective)
	if len(objectives) == 0 {
		return false
	}
	target := objectives[0]

	for attempt := 0; attempt < h.cfg.EventAttempts; attempt++ {
		h.clickAt(target, time.Second)
		if h.perceiver.Probe(ctx, perception.RoleObjective).Has(perception.RoleObjective) {
			return true
		}
		h.sleep(time.Second)
	}

	return true
}

// CheckEvent confirms that the event reached earlier is still running. Fewer
// markers than before means the event ended, so a new one is looked for.
func (h *Handlers) CheckEvent(ctx context.Context, previous int) (EventResult, error) {
	res := EventResult{}

	opened, err := h.OpenMap(ctx)
	if err != nil {
		return res, err
	}
	if opened {
		for check := 0; check < h.cfg.MapAttempts; check++ {
			markers := h.perceiver.Probe(ctx, perception.RoleEvent).Detection(perception.RoleEvent)
			if len(markers) > 0 {
				if len(markers) < previous {
					h.logger.Info("Fewer event markers than before, looking for a new event",
						slog.Int("previous", previous),
						slog.Int("current", len(markers)),
					)
					return h.FindEvent(ctx)
				}
				res = EventResult{Found: true, Markers: len(markers)}
				break
			}
			h.sleep(time.Second)
		}
		if _, err = h.CloseMap(ctx); err != nil {
			return EventResult{}, err
		}
	}

	if res.Found {
		return res, nil
	}

	for check := 0; check < h.cfg.EventAttempts; check++ {
		text := h.perceiver.ReadText(ctx, perception.PromptBand, true)
		if perception.CountKeywords(perception.Tokenize(text)).Get(perception.DictEvent) > 0 {
			h.logger.Info("Event text on screen")
			return EventResult{Found: true, Markers: previous}, nil
		}
		h.sleep(2 * time.Second)
	}

	h.logger.Info("Event not found")
	return res, nil
}
