package action

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sort"
	"time"

	"github.com/fo76bot/fo76bot/internal/config"
	"github.com/fo76bot/fo76bot/internal/perception"
)

// ErrOverweight means fast travel is blocked until the player drops items.
// Retrying cannot fix it, so the run must stop.
var ErrOverweight = errors.New("player is overweight")

// ErrRespawnFailed means the player is dead and no respawn point was found.
var ErrRespawnFailed = errors.New("no respawn point found")

// Perceiver is the slice of the aggregator that handlers verify against.
type Perceiver interface {
	Probe(ctx context.Context, roles ...perception.IconRole) perception.Snapshot
	ReadText(ctx context.Context, band perception.Band, motionCancel bool) string
}

// Input is the synthetic input dispatcher. Calls are fire and forget.
type Input interface {
	KeyTap(key string)
	MoveTo(x, y int)
	Click(x, y int)
}

// Handlers holds the bounded-retry routines. Each call owns its own retry
// budget; the only state kept across calls is the leave failure streak.
type Handlers struct {
	perceiver     Perceiver
	input         Input
	cfg           config.ActionCfg
	logger        *slog.Logger
	sleep         func(time.Duration)
	debugCapture  func(ctx context.Context, reason string)
	leaveFailures int
}

func New(p Perceiver, in Input, cfg config.ActionCfg, logger *slog.Logger, sleep func(time.Duration)) *Handlers {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Handlers{
		perceiver: p,
		input:     in,
		cfg:       cfg,
		logger:    logger,
		sleep:     sleep,
	}
}

// SetDebugCapture installs the hook used to save a frame when a handler gives up.
func (h *Handlers) SetDebugCapture(fn func(ctx context.Context, reason string)) {
	h.debugCapture = fn
}

func (h *Handlers) press(key string, after time.Duration) {
	h.input.KeyTap(key)
	h.sleep(after)
}

func (h *Handlers) clickAt(p image.Point, after time.Duration) {
	h.input.MoveTo(p.X, p.Y)
	h.input.Click(p.X, p.Y)
	h.sleep(after)
}

func (h *Handlers) atMenu(ctx context.Context) bool {
	return h.perceiver.Probe(ctx, perception.RoleMenu).Has(perception.RoleMenu)
}

func (h *Handlers) capture(ctx context.Context, reason string) {
	if h.debugCapture != nil {
		h.debugCapture(ctx, reason)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// firstByPosition picks the top-most, then left-most point.
func firstByPosition(points []image.Point) image.Point {
	sorted := append([]image.Point(nil), points...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})
	return sorted[0]
}
