package health

import (
	"log/slog"
	"time"
)

// FailureMonitor tracks polls that made no progress. A streak that is both
// long enough and old enough means the bot is stuck and the game needs a restart.
type FailureMonitor struct {
	FailureStart     time.Time
	Consecutive      int
	FailureThreshold int           // Consecutive failed polls before action
	FailureSustained time.Duration // How long the streak must persist before action
	Enabled          bool
	Logger           *slog.Logger
	now              func() time.Time
}

func NewFailureMonitor(logger *slog.Logger, threshold int, sustainedDuration time.Duration) *FailureMonitor {
	return &FailureMonitor{
		FailureThreshold: threshold,
		FailureSustained: sustainedDuration,
		Enabled:          true,
		Logger:           logger,
		now:              time.Now,
	}
}

// Record feeds the outcome of one poll. It returns true once the failure
// streak has reached the threshold and lasted for the sustained duration.
func (fm *FailureMonitor) Record(progress bool) bool {
	if !fm.Enabled {
		return false
	}

	now := fm.now()

	if progress {
		if fm.Consecutive > 0 {
			fm.Logger.Debug("Progress after failed polls",
				slog.Int("failures", fm.Consecutive),
				slog.Duration("duration", now.Sub(fm.FailureStart)))
		}
		fm.Reset()
		return false
	}

	fm.Consecutive++
	if fm.FailureStart.IsZero() {
		fm.FailureStart = now
		fm.Logger.Debug("Poll made no progress, starting monitor",
			slog.Int("threshold", fm.FailureThreshold),
			slog.Duration("sustainedDuration", fm.FailureSustained))
		return false
	}

	elapsed := now.Sub(fm.FailureStart)
	if fm.Consecutive >= fm.FailureThreshold && elapsed >= fm.FailureSustained {
		fm.Logger.Error("Bot made no progress for too long, triggering action",
			slog.Int("failures", fm.Consecutive),
			slog.Duration("duration", elapsed))
		return true
	}

	if fm.Consecutive%5 == 0 {
		fm.Logger.Warn("Bot still not making progress",
			slog.Int("failures", fm.Consecutive),
			slog.Duration("elapsed", elapsed))
	}

	return false
}

// Reset clears the failure streak.
func (fm *FailureMonitor) Reset() {
	fm.FailureStart = time.Time{}
	fm.Consecutive = 0
}

func (fm *FailureMonitor) Disable() {
	fm.Enabled = false
	fm.Reset()
	fm.Logger.Info("Failure monitoring disabled")
}
