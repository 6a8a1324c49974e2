package decision

import (
	"fmt"
	"log/slog"

	"github.com/fo76bot/fo76bot/internal/perception"
)

// Engine maps one snapshot to one action. It holds no per-poll state.
type Engine struct {
	badEvent *Rule
	logger   *slog.Logger
}

func NewEngine(badEventRule string, logger *slog.Logger) (*Engine, error) {
	rule, err := CompileRule(badEventRule)
	if err != nil {
		return nil, fmt.Errorf("bad event rule: %w", err)
	}
	return &Engine{badEvent: rule, logger: logger}, nil
}

// Decide applies the fixed priority order: popup first, keyword fallback when
// no icon was seen at all, then the icon transition table.
func (e *Engine) Decide(s perception.Snapshot) Decision {
	if s.Has(perception.RolePopup) {
		return Decision{Action: ActionAcknowledgePopup, State: StateAwaitingConfirmation, Reason: "confirmation popup visible"}
	}

	if s.IconCount() == 0 {
		return e.decideFromText(s)
	}

	v := s.Vector()
	action, state, ok := Lookup(v)
	reason := "icon vector " + v.String()
	if !ok {
		reason = "unrecognized icon vector " + v.String()
	}

	return Decision{Action: action, State: state, Reason: reason}
}

func (e *Engine) decideFromText(s perception.Snapshot) Decision {
	if s.Count(perception.DictLoading) > 0 {
		return Decision{Action: ActionWait, State: StateLoading, Reason: "loading text"}
	}

	// Re-checked against the icon count so a busy HUD is never taken for the intro prompt.
	if s.Count(perception.DictPreMain) > 1 && s.IconCount() == 0 {
		return Decision{Action: ActionAdvancePastIntro, State: StatePreMainMenuPrompt, Reason: "intro prompt text"}
	}

	if s.HasToken(perception.RespawnToken) {
		return Decision{Action: ActionRecoverFromDeath, State: StateDead, Reason: "respawn prompt"}
	}

	bad, err := e.badEvent.Match(s)
	if err != nil {
		e.logger.Warn("Bad event rule failed", slog.Any("error", err))
	}
	if bad {
		return Decision{Action: ActionLeaveSession, State: StateLoadedInWorld, Reason: "bad event text"}
	}

	return Decision{Action: ActionProbeWorld, State: StateIndeterminate, Reason: "no icons and no decisive text"}
}
