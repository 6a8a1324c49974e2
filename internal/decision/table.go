package decision

import "github.com/fo76bot/fo76bot/internal/perception"

type transition struct {
	Action Action
	State  State
}

// Transitions maps the canonical icon vectors to their action. Every vector
// not listed resolves to the default transition.
var Transitions = map[perception.IconVector]transition{
	perception.VectorOf(perception.RoleMenu): {
		Action: ActionJoinSession,
		State:  StateAtMainMenu,
	},
	perception.VectorOf(perception.RoleStatus, perception.RoleObjective): {
		Action: ActionLeaveSession,
		State:  StateMapOpenNoEvent,
	},
	perception.VectorOf(perception.RoleEvent, perception.RoleStatus, perception.RoleObjective): {
		Action: ActionFindEvent,
		State:  StateMapOpenWithEvent,
	},
	perception.VectorOf(perception.RoleInWorld): {
		Action: ActionContinue,
		State:  StateLoadedInWorld,
	},
}

// defaultTransition takes a reversible step and re-observes.
var defaultTransition = transition{Action: ActionNudgeAndWait, State: StateIndeterminate}

// Lookup resolves an icon vector through the transition table.
func Lookup(v perception.IconVector) (Action, State, bool) {
	if t, ok := Transitions[v]; ok {
		return t.Action, t.State, true
	}
	st := defaultTransition.State
	if v.Has(perception.RoleOverweight) {
		st = StateOverweightBlocked
	}
	return defaultTransition.Action, st, false
}
