package bot

import (
	"fmt"
	"strings"
	"time"
)

type SupervisorState string

const (
	StateStarting   SupervisorState = "Starting"
	StateRunning    SupervisorState = "Running"
	StateRestarting SupervisorState = "Restarting"
	StateStopped    SupervisorState = "Stopped"
)

type Status struct {
	Name       string          `json:"name"`
	State      SupervisorState `json:"state"`
	StartedAt  time.Time       `json:"startedAt"`
	LastPollAt time.Time       `json:"lastPollAt"`
	Restarts   int             `json:"restarts"`
	LastError  string          `json:"lastError,omitempty"`
	Bot        Stats           `json:"bot"`
}

// Summary is the one line status used by chat commands.
func (st Status) Summary() string {
	if st.State == StateStopped || st.StartedAt.IsZero() {
		return fmt.Sprintf("%s is %s", st.Name, st.State)
	}
	last := st.Bot.LastDecision
	return fmt.Sprintf("%s is %s, last action %s (%s)", st.Name, st.State, last.Action, last.State)
}

// Report is the multi line status used by chat commands.
func (st Status) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", st.Name, st.State)
	if !st.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "Uptime: %s\n", time.Since(st.StartedAt).Round(time.Second))
	}
	fmt.Fprintf(&sb, "Polls: %d\n", st.Bot.Polls)
	fmt.Fprintf(&sb, "Restarts: %d\n", st.Restarts)
	fmt.Fprintf(&sb, "Failed polls in a row: %d\n", st.Bot.ConsecutiveFailures)
	fmt.Fprintf(&sb, "Failed leaves in a row: %d\n", st.Bot.LeaveFailures)
	fmt.Fprintf(&sb, "Event markers: %d\n", st.Bot.ObjectiveCount)
	if st.LastError != "" {
		fmt.Fprintf(&sb, "Last error: %s\n", st.LastError)
	}
	return strings.TrimSpace(sb.String())
}
