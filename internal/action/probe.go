package action

import (
	"context"
	"time"

	"github.com/fo76bot/fo76bot/internal/decision"
	"github.com/fo76bot/fo76bot/internal/perception"
)

// ProbeResult tells the caller which concrete action ProbeWorld ended up running.
type ProbeResult struct {
	Resolved decision.Action
	Success  bool
	Markers  int
}

// ProbeWorld resolves a screen with no icons and no decisive text by opening
// the map: no event means look for one and leave if there is none, a map that
// won't open gets a nudge. The map is closed again afterwards.
func (h *Handlers) ProbeWorld(ctx context.Context, s perception.Snapshot) (ProbeResult, error) {
	var res ProbeResult

	opened, err := h.OpenMap(ctx)
	if err != nil {
		return ProbeResult{Resolved: decision.ActionRecoverFromDeath}, err
	}
	if opened {
		onMap := h.perceiver.Probe(ctx, perception.RoleEvent).Has(perception.RoleEvent)
		if s.Count(perception.DictEvent) == 0 && !onMap {
			ev, err := h.FindEvent(ctx)
			if err != nil {
				return ProbeResult{Resolved: decision.ActionFindEvent, Markers: ev.Markers}, err
			}
			if !ev.Found {
				h.logger.Info("No event to join, leaving session")
				left, err := h.LeaveSession(ctx)
				if err != nil {
					return ProbeResult{Resolved: decision.ActionRecoverFromDeath}, err
				}
				return ProbeResult{Resolved: decision.ActionLeaveSession, Success: left}, nil
			}
			res = ProbeResult{Resolved: decision.ActionFindEvent, Success: true, Markers: ev.Markers}
		} else {
			res = ProbeResult{Resolved: decision.ActionContinue, Success: true}
		}
	} else {
		h.logger.Info("Map didn't open, nudging")
		h.press("tab", 100*time.Millisecond)
		h.press("space", 100*time.Millisecond)
		res = ProbeResult{Resolved: decision.ActionNudgeAndWait}
	}

	if _, err = h.CloseMap(ctx); err != nil {
		return ProbeResult{Resolved: decision.ActionRecoverFromDeath}, err
	}
	if s.Count(perception.DictNavigation) > 0 {
		h.press("tab", 100*time.Millisecond)
	}
	if s.Count(perception.DictEvent) > 0 {
		h.sleep(seconds(h.cfg.EventWaitSeconds))
	}

	return res, nil
}
