package decision

// Action is the single handler selected for one poll.
type Action int

const (
	ActionNone Action = iota
	ActionAcknowledgePopup
	ActionWait
	ActionAdvancePastIntro
	ActionRecoverFromDeath
	ActionLeaveSession
	ActionProbeWorld
	ActionJoinSession
	ActionFindEvent
	ActionContinue
	ActionNudgeAndWait
)

var actionNames = map[Action]string{
	ActionNone:             "None",
	ActionAcknowledgePopup: "AcknowledgePopup",
	ActionWait:             "Wait",
	ActionAdvancePastIntro: "AdvancePastIntro",
	ActionRecoverFromDeath: "RecoverFromDeath",
	ActionLeaveSession:     "LeaveSession",
	ActionProbeWorld:       "ProbeWorld",
	ActionJoinSession:      "JoinSession",
	ActionFindEvent:        "FindEvent",
	ActionContinue:         "Continue",
	ActionNudgeAndWait:     "NudgeAndWait",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "Unknown"
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// State is the inferred game screen. It is derived per decision and never stored.
type State int

const (
	StateIndeterminate State = iota
	StateAtMainMenu
	StateLoading
	StatePreMainMenuPrompt
	StateMapOpenNoEvent
	StateMapOpenWithEvent
	StateLoadedInWorld
	StateAwaitingConfirmation
	StateDead
	StateOverweightBlocked
)

var stateNames = map[State]string{
	StateIndeterminate:        "Indeterminate",
	StateAtMainMenu:           "AtMainMenu",
	StateLoading:              "Loading",
	StatePreMainMenuPrompt:    "PreMainMenuPrompt",
	StateMapOpenNoEvent:       "MapOpenNoEvent",
	StateMapOpenWithEvent:     "MapOpenWithEvent",
	StateLoadedInWorld:        "LoadedInWorld",
	StateAwaitingConfirmation: "AwaitingConfirmation",
	StateDead:                 "Dead",
	StateOverweightBlocked:    "OverweightBlocked",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "Unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Decision struct {
	Action Action `json:"action"`
	State  State  `json:"state"`
	Reason string `json:"reason"`
}
