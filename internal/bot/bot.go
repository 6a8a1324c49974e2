package bot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/fo76bot/fo76bot/internal/action"
	"github.com/fo76bot/fo76bot/internal/decision"
	"github.com/fo76bot/fo76bot/internal/event"
	"github.com/fo76bot/fo76bot/internal/health"
	"github.com/fo76bot/fo76bot/internal/perception"
)

// ErrEnvironmentLost means the game can't be driven any more and has to be restarted.
var ErrEnvironmentLost = errors.New("game environment lost")

// maxLeaveFailures is how many failed leaves in a row force a restart.
const maxLeaveFailures = 10

type Observer interface {
	Observe(ctx context.Context) perception.Snapshot
}

// Handlers is the set of routines a decision can be dispatched to.
type Handlers interface {
	AcknowledgePopup(ctx context.Context) bool
	Wait(ctx context.Context) bool
	AdvancePastIntro(ctx context.Context) bool
	RecoverFromDeath(ctx context.Context) bool
	JoinSession(ctx context.Context) bool
	WaitForPlayerLoad(ctx context.Context) bool
	LeaveSession(ctx context.Context) (bool, error)
	FindEvent(ctx context.Context) (action.EventResult, error)
	CheckEvent(ctx context.Context, previous int) (action.EventResult, error)
	ProbeWorld(ctx context.Context, s perception.Snapshot) (action.ProbeResult, error)
	NudgeAndWait(ctx context.Context, navigationHints int) bool
	LeaveFailures() int
	ResetLeaveFailures()
}

// FrameGrabber supplies a screenshot for notifications.
type FrameGrabber interface {
	Grab(ctx context.Context) image.Image
}

// Bot runs one perceive, decide, act cycle per Poll.
type Bot struct {
	name     string
	observer Observer
	engine   *decision.Engine
	handlers Handlers
	monitor  *health.FailureMonitor
	frames   FrameGrabber
	logger   *slog.Logger

	mu                 sync.Mutex
	lastDecision       decision.Decision
	lastObjectiveCount int
	polls              int
	failures           int
	leaveFailures      int
}

func NewBot(name string, observer Observer, engine *decision.Engine, handlers Handlers, monitor *health.FailureMonitor, frames FrameGrabber, logger *slog.Logger) *Bot {
	return &Bot{
		name:     name,
		observer: observer,
		engine:   engine,
		handlers: handlers,
		monitor:  monitor,
		frames:   frames,
		logger:   logger,
	}
}

// Poll observes the screen once, decides and runs the chosen handler to
// completion. ErrEnvironmentLost and action.ErrOverweight are returned to the
// supervisor; every other failure is absorbed here.
func (b *Bot) Poll(ctx context.Context) (decision.Decision, error) {
	s := b.observer.Observe(ctx)
	d := b.engine.Decide(s)
	b.noteDecision(d)

	progress, err := b.dispatch(ctx, d, s)
	if err != nil {
		b.mu.Lock()
		b.polls++
		b.mu.Unlock()
		if errors.Is(err, action.ErrRespawnFailed) {
			err = fmt.Errorf("%w: %w", ErrEnvironmentLost, err)
		}
		return d, err
	}

	leaveFailures := b.handlers.LeaveFailures()

	b.mu.Lock()
	b.polls++
	b.leaveFailures = leaveFailures
	if progress {
		b.failures = 0
	} else {
		b.failures++
	}
	failures := b.failures
	b.mu.Unlock()

	if !progress && d.Action != decision.ActionNudgeAndWait {
		b.logger.Warn("Action made no progress",
			slog.String("action", d.Action.String()),
			slog.Int("consecutive", failures))
		event.Send(event.ActionFailed(event.Text(b.name, fmt.Sprintf("%s failed", d.Action)), d.Action.String(), failures))
		b.handlers.NudgeAndWait(ctx, s.Count(perception.DictNavigation))
	}

	if b.monitor != nil && b.monitor.Record(progress) {
		return d, fmt.Errorf("%w: no progress for %d polls", ErrEnvironmentLost, failures)
	}
	if leaveFailures >= maxLeaveFailures {
		return d, fmt.Errorf("%w: failed to leave session %d times in a row", ErrEnvironmentLost, leaveFailures)
	}

	return d, nil
}

func (b *Bot) dispatch(ctx context.Context, d decision.Decision, s perception.Snapshot) (bool, error) {
	switch d.Action {
	case decision.ActionAcknowledgePopup:
		return b.handlers.AcknowledgePopup(ctx), nil
	case decision.ActionWait:
		return b.handlers.Wait(ctx), nil
	case decision.ActionAdvancePastIntro:
		return b.handlers.AdvancePastIntro(ctx), nil
	case decision.ActionRecoverFromDeath:
		if !b.handlers.RecoverFromDeath(ctx) {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, action.ErrRespawnFailed
		}
		return true, nil
	case decision.ActionJoinSession:
		if !b.handlers.JoinSession(ctx) {
			return false, nil
		}
		b.setObjectiveCount(0)
		if !b.handlers.WaitForPlayerLoad(ctx) {
			return false, fmt.Errorf("%w: player did not load after joining", ErrEnvironmentLost)
		}
		return true, nil
	case decision.ActionLeaveSession:
		ok, err := b.handlers.LeaveSession(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			b.setObjectiveCount(0)
		}
		return ok, nil
	case decision.ActionFindEvent:
		return b.findEvent(ctx)
	case decision.ActionProbeWorld:
		res, err := b.handlers.ProbeWorld(ctx, s)
		if err != nil {
			return false, err
		}
		switch {
		case res.Resolved == decision.ActionFindEvent && res.Success:
			b.setObjectiveCount(res.Markers)
		case res.Resolved == decision.ActionLeaveSession && res.Success:
			b.setObjectiveCount(0)
		}
		b.logger.Debug("World probe resolved", slog.String("action", res.Resolved.String()), slog.Bool("success", res.Success))
		return res.Success, nil
	case decision.ActionContinue:
		return true, nil
	case decision.ActionNudgeAndWait:
		b.handlers.NudgeAndWait(ctx, s.Count(perception.DictNavigation))
		return false, nil
	default:
		return false, nil
	}
}

// findEvent re-checks a remembered event before looking for a new one.
func (b *Bot) findEvent(ctx context.Context) (bool, error) {
	previous := b.ObjectiveCount()

	var (
		res action.EventResult
		err error
	)
	if previous > 0 {
		res, err = b.handlers.CheckEvent(ctx, previous)
	} else {
		res, err = b.handlers.FindEvent(ctx)
	}
	if err != nil {
		return false, err
	}

	if res.Found {
		b.setObjectiveCount(res.Markers)
	} else {
		b.setObjectiveCount(0)
	}
	return res.Found, nil
}

func (b *Bot) noteDecision(d decision.Decision) {
	b.mu.Lock()
	changed := d.Action != b.lastDecision.Action || d.State != b.lastDecision.State
	b.lastDecision = d
	b.mu.Unlock()

	if !changed {
		b.logger.Debug("Decision", slog.String("action", d.Action.String()), slog.String("reason", d.Reason))
		return
	}
	b.logger.Info("Decision",
		slog.String("action", d.Action.String()),
		slog.String("state", d.State.String()),
		slog.String("reason", d.Reason))
	event.Send(event.DecisionMade(event.Text(b.name, d.Action.String()), d.Action.String(), d.State.String(), d.Reason))
}

func (b *Bot) setObjectiveCount(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastObjectiveCount = n
}

// ObjectiveCount is the number of event markers seen when the current event was joined.
func (b *Bot) ObjectiveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastObjectiveCount
}

// Reset forgets per-session memory after a game restart.
func (b *Bot) Reset() {
	b.mu.Lock()
	b.lastObjectiveCount = 0
	b.failures = 0
	b.lastDecision = decision.Decision{}
	b.leaveFailures = 0
	b.mu.Unlock()

	b.handlers.ResetLeaveFailures()

	if b.monitor != nil {
		b.monitor.Reset()
	}
}

// Screenshot returns the current frame, or nil without a grabber.
func (b *Bot) Screenshot(ctx context.Context) image.Image {
	if b.frames == nil {
		return nil
	}
	return b.frames.Grab(ctx)
}

type Stats struct {
	Polls               int               `json:"polls"`
	ConsecutiveFailures int               `json:"consecutiveFailures"`
	ObjectiveCount      int               `json:"objectiveCount"`
	LeaveFailures       int               `json:"leaveFailures"`
	LastDecision        decision.Decision `json:"lastDecision"`
}

func (b *Bot) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Polls:               b.polls,
		ConsecutiveFailures: b.failures,
		ObjectiveCount:      b.lastObjectiveCount,
		LeaveFailures:       b.leaveFailures,
		LastDecision:        b.lastDecision,
	}
}
