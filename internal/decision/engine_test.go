package decision

import (
	"image"
	"io"
	"log/slog"
	"testing"

	"github.com/fo76bot/fo76bot/internal/config"
	"github.com/fo76bot/fo76bot/internal/perception"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(config.DefaultBadEventRule, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func snapshot(text string, roles ...perception.IconRole) perception.Snapshot {
	icons := make(map[perception.IconRole]perception.Detection, len(roles))
	for i, r := range roles {
		icons[r] = perception.Detection{image.Pt(100+i, 100+i)}
	}
	return perception.NewSnapshot(icons, text)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		snap  perception.Snapshot
		want  Action
		state State
	}{
		{
			name:  "menu only joins",
			snap:  snapshot("", perception.RoleMenu),
			want:  ActionJoinSession,
			state: StateAtMainMenu,
		},
		{
			name:  "status and objective without event leaves",
			snap:  snapshot("", perception.RoleStatus, perception.RoleObjective),
			want:  ActionLeaveSession,
			state: StateMapOpenNoEvent,
		},
		{
			name:  "status objective and event finds event",
			snap:  snapshot("", perception.RoleEvent, perception.RoleStatus, perception.RoleObjective),
			want:  ActionFindEvent,
			state: StateMapOpenWithEvent,
		},
		{
			name:  "in-world marker only continues",
			snap:  snapshot("", perception.RoleInWorld),
			want:  ActionContinue,
			state: StateLoadedInWorld,
		},
		{
			name: "unrecognized vector nudges",
			snap: snapshot("", perception.RoleMenu, perception.RoleStatus),
			want: ActionNudgeAndWait,
		},
		{
			name:  "overweight composite nudges",
			snap:  snapshot("", perception.RoleOverweight, perception.RoleInWorld),
			want:  ActionNudgeAndWait,
			state: StateOverweightBlocked,
		},
		{
			name:  "no icons with loading text waits",
			snap:  snapshot("loading..."),
			want:  ActionWait,
			state: StateLoading,
		},
		{
			name:  "no icons with intro prompt advances",
			snap:  snapshot("press any button"),
			want:  ActionAdvancePastIntro,
			state: StatePreMainMenuPrompt,
		},
		{
			name: "single premain hit is not enough",
			snap: snapshot("continue"),
			want: ActionProbeWorld,
		},
		{
			name:  "respawn prompt recovers",
			snap:  snapshot("respawn"),
			want:  ActionRecoverFromDeath,
			state: StateDead,
		},
		{
			name:  "bad event text leaves",
			snap:  snapshot("event: distinguished guests"),
			want:  ActionLeaveSession,
			state: StateLoadedInWorld,
		},
		{
			name: "bad event words without event word probe",
			snap: snapshot("distinguished guests"),
			want: ActionProbeWorld,
		},
		{
			name: "nothing at all probes the world",
			snap: snapshot(""),
			want: ActionProbeWorld,
		},
		{
			name:  "icons suppress keyword fallback",
			snap:  snapshot("loading", perception.RoleMenu),
			want:  ActionJoinSession,
			state: StateAtMainMenu,
		},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Decide(tt.snap)
			if got.Action != tt.want {
				t.Errorf("Decide() action = %s, want %s (%s)", got.Action, tt.want, got.Reason)
			}
			if got.State != tt.state {
				t.Errorf("Decide() state = %s, want %s", got.State, tt.state)
			}
		})
	}
}

func TestDecidePopupAlwaysWins(t *testing.T) {
	e := newTestEngine(t)
	texts := []string{"", "loading", "press any button", "respawn", "event: free range guests"}
	roles := perception.Roles()

	// Every subset of the other icons, with the popup added, and every text.
	for mask := 0; mask < 1<<len(roles); mask++ {
		present := []perception.IconRole{perception.RolePopup}
		for i, r := range roles {
			if mask&(1<<i) != 0 && r != perception.RolePopup {
				present = append(present, r)
			}
		}
		for _, text := range texts {
			if got := e.Decide(snapshot(text, present...)); got.Action != ActionAcknowledgePopup {
				t.Fatalf("icons %v text %q: got %s, want AcknowledgePopup", present, text, got.Action)
			}
		}
	}
}

func TestDecideLoadingAlwaysWaitsWithoutIcons(t *testing.T) {
	e := newTestEngine(t)
	texts := []string{
		"loading",
		"loading press any button",
		"loading respawn",
		"loading. event: distinguished guests free",
	}
	for _, text := range texts {
		if got := e.Decide(snapshot(text)); got.Action != ActionWait {
			t.Errorf("text %q: got %s, want Wait", text, got.Action)
		}
	}
}

func TestDecideBadEventCounts(t *testing.T) {
	e := newTestEngine(t)
	s := snapshot("event free range")
	if s.Count(perception.DictBadEvent) != 2 || s.Count(perception.DictEvent) != 1 {
		t.Fatalf("unexpected counts %v", s.Keywords)
	}
	if got := e.Decide(s); got.Action != ActionLeaveSession {
		t.Errorf("got %s, want LeaveSession", got.Action)
	}
}

func TestLookupDefault(t *testing.T) {
	action, state, ok := Lookup(perception.VectorOf(perception.RoleEvent))
	if ok || action != ActionNudgeAndWait || state != StateIndeterminate {
		t.Errorf("Lookup(event only) = %s, %s, %v", action, state, ok)
	}
	if len(Transitions) != 4 {
		t.Errorf("transition table has %d entries, want 4", len(Transitions))
	}
}

func TestCustomBadEventRule(t *testing.T) {
	e, err := NewEngine("bad > 0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Decide(snapshot("free")); got.Action != ActionLeaveSession {
		t.Errorf("got %s, want LeaveSession", got.Action)
	}
}

func TestCompileRuleRejectsInvalid(t *testing.T) {
	tests := []string{"bad >", "bad + 1", "unknown > 1"}
	for _, src := range tests {
		if _, err := CompileRule(src); err == nil {
			t.Errorf("CompileRule(%q) expected error", src)
		}
	}
}
