package bot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/fo76bot/fo76bot/internal/action"
	"github.com/fo76bot/fo76bot/internal/config"
	"github.com/fo76bot/fo76bot/internal/decision"
	"github.com/fo76bot/fo76bot/internal/event"
)

const refocusAttempts = 3

type Process interface {
	Running() bool
	Launch(ctx context.Context) error
	Kill() error
}

type Window interface {
	Focus() error
}

// Poller is the per-poll cycle the supervisor drives.
type Poller interface {
	Poll(ctx context.Context) (decision.Decision, error)
	Reset()
	Stats() Stats
	Screenshot(ctx context.Context) image.Image
}

// Supervisor keeps the game running and the bot polling. It restarts the game
// whenever the bot reports the environment as lost.
type Supervisor struct {
	name    string
	bot     Poller
	process Process
	window  Window
	cfg     config.SupervisorCfg
	logger  *slog.Logger
	sleep   func(time.Duration)

	// fixDisplay rewrites the game's display prefs and reports whether they changed.
	fixDisplay func() (bool, error)

	mu     sync.RWMutex
	status Status
}

func NewSupervisor(name string, bot Poller, process Process, window Window, cfg config.SupervisorCfg, logger *slog.Logger, sleep func(time.Duration)) *Supervisor {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Supervisor{
		name:    name,
		bot:     bot,
		process: process,
		window:  window,
		cfg:     cfg,
		logger:  logger,
		sleep:   sleep,
		status:  Status{Name: name, State: StateStopped},
	}
}

func (s *Supervisor) SetDisplayFixer(fn func() (bool, error)) {
	s.fixDisplay = fn
}

// Start drives the bot until ctx is done or the run hits a fatal condition.
func (s *Supervisor) Start(ctx context.Context) error {
	s.update(func(st *Status) {
		st.State = StateStarting
		st.StartedAt = time.Now()
	})
	defer s.update(func(st *Status) { st.State = StateStopped })

	event.Send(event.BotStarted(event.Text(s.name, "Bot started")))

	if s.displayChanged() && s.process.Running() {
		s.logger.Info("Display settings changed, closing game so they apply")
		s.kill()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := s.ensureRunning(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.restart(ctx, err)
			continue
		}

		_, err := s.bot.Poll(ctx)
		s.update(func(st *Status) {
			st.LastPollAt = time.Now()
			if err != nil {
				st.LastError = err.Error()
			}
		})

		switch {
		case err == nil:
		case errors.Is(err, action.ErrOverweight):
			s.logger.Error("Player is overweight, stopping bot", slog.Any("error", err))
			event.Send(event.FatalStop(event.WithScreenshot(s.name, "Player is overweight, bot stopped", s.bot.Screenshot(ctx)), err))
			s.kill()
			return fmt.Errorf("bot stopped: %w", err)
		case errors.Is(err, ErrEnvironmentLost):
			s.restart(ctx, err)
			continue
		default:
			s.logger.Warn("Poll failed", slog.Any("error", err))
		}

		s.sleep(time.Duration(s.cfg.PollIntervalMs) * time.Millisecond)
	}
}

// ensureRunning launches the game when it isn't running and focuses its window.
func (s *Supervisor) ensureRunning(ctx context.Context) error {
	if s.process.Running() {
		if err := s.refocus(ctx); err != nil {
			return err
		}
		s.update(func(st *Status) { st.State = StateRunning })
		return nil
	}

	s.logger.Info("Game not running, launching")
	s.displayChanged()
	if err := s.process.Launch(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrEnvironmentLost, err)
	}

	started := false
	for check := 0; check < s.cfg.LaunchChecks; check++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.sleep(time.Duration(s.cfg.LaunchWaitSeconds) * time.Second)
		if s.process.Running() {
			started = true
			break
		}
		s.logger.Debug("Waiting for game process", slog.Int("check", check+1))
	}
	if !started {
		return fmt.Errorf("%w: game process did not start", ErrEnvironmentLost)
	}

	var focusErr error
	for attempt := 0; attempt < s.cfg.FocusAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.sleep(time.Duration(s.cfg.FocusWaitSeconds) * time.Second)
		if focusErr = s.window.Focus(); focusErr == nil {
			s.logger.Info("Game window focused", slog.Int("attempt", attempt+1))
			s.bot.Reset()
			s.update(func(st *Status) { st.State = StateRunning })
			return nil
		}
	}

	return fmt.Errorf("%w: couldn't focus game window: %w", ErrEnvironmentLost, focusErr)
}

// refocus brings the running game to the front before a poll. Input sent to
// an unfocused window goes elsewhere, so a window that stays lost means a restart.
func (s *Supervisor) refocus(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < refocusAttempts; attempt++ {
		if err = s.window.Focus(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Debug("Couldn't focus game window", slog.Any("error", err), slog.Int("attempt", attempt+1))
		s.sleep(time.Second)
	}
	return fmt.Errorf("%w: couldn't focus game window: %w", ErrEnvironmentLost, err)
}

func (s *Supervisor) restart(ctx context.Context, reason error) {
	var restarts int
	s.update(func(st *Status) {
		st.State = StateRestarting
		st.Restarts++
		st.LastError = reason.Error()
		restarts = st.Restarts
	})

	s.logger.Warn("Restarting game", slog.Any("error", reason), slog.Int("restarts", restarts))
	event.Send(event.GameRestarted(event.WithScreenshot(s.name, "Restarting game: "+reason.Error(), s.bot.Screenshot(ctx)), reason.Error(), restarts))

	s.kill()
	s.bot.Reset()
	s.sleep(time.Duration(s.cfg.RestartPauseSeconds) * time.Second)
}

// kill keeps killing the game until it is gone or KillAttempts run out.
func (s *Supervisor) kill() {
	for attempt := 0; attempt < s.cfg.KillAttempts; attempt++ {
		if !s.process.Running() {
			return
		}
		if err := s.process.Kill(); err != nil {
			s.logger.Warn("Error killing game", slog.Any("error", err), slog.Int("attempt", attempt+1))
		}
		s.sleep(time.Duration(s.cfg.KillGraceSeconds) * time.Second)
	}
	if s.process.Running() {
		s.logger.Error("Game is still running after kill", slog.Int("attempts", s.cfg.KillAttempts))
	}
}

func (s *Supervisor) displayChanged() bool {
	if s.fixDisplay == nil {
		return false
	}
	changed, err := s.fixDisplay()
	if err != nil {
		s.logger.Warn("Couldn't update game display settings", slog.Any("error", err))
		return false
	}
	if changed {
		s.logger.Info("Game display settings updated")
	}
	return changed
}

func (s *Supervisor) update(fn func(st *Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}

// Status returns a copy of the current supervisor and bot state.
func (s *Supervisor) Status() Status {
	s.mu.RLock()
	st := s.status
	s.mu.RUnlock()

	st.Bot = s.bot.Stats()
	return st
}
