package action

import (
	"context"
	"image"
	"log/slog"
	"math"
	"time"

	"github.com/fo76bot/fo76bot/internal/config"
	"github.com/fo76bot/fo76bot/internal/perception"
)

// Spiral walks the respawn map outwards from its origin in six legs per lap:
// up, left, down twice as far, right twice as far, up twice as far, then a
// left and up leg. Each lap makes the legs one step longer until the growth
// limit, where the multiplier shrinks and the limit grows. The walk stops
// after MaxIterations legs.
type Spiral struct {
	pos       image.Point
	step      int
	mult      int
	meta      int
	growth    int
	stage     int
	inStage   int
	legs      int
	maxLegs   int
	exhausted bool
}

func NewSpiral(cfg config.SpiralCfg) *Spiral {
	meta := cfg.MetaStart
	if meta < 1 {
		meta = 1
	}
	return &Spiral{
		pos:     image.Pt(cfg.OriginX, cfg.OriginY),
		step:    cfg.Step,
		mult:    1,
		meta:    meta,
		growth:  cfg.GrowthBase,
		stage:   1,
		maxLegs: cfg.MaxIterations,
	}
}

func (s *Spiral) legLength() int {
	if s.stage <= 2 {
		return s.mult
	}
	return 2 * s.mult
}

// Next moves one step along the current leg and returns the new point.
// ok is false once the leg cap has been reached.
func (s *Spiral) Next() (image.Point, bool) {
	if s.exhausted || s.legs >= s.maxLegs {
		s.exhausted = true
		return s.pos, false
	}

	switch s.stage {
	case 1, 5:
		s.pos.Y -= s.step
	case 2:
		s.pos.X -= s.step
	case 3:
		s.pos.Y += s.step
	case 4:
		s.pos.X += s.step
	case 6:
		if s.inStage < s.mult {
			s.pos.X -= s.step
		} else {
			s.pos.Y -= s.step
		}
	}

	s.inStage++
	if s.inStage >= s.legLength() {
		s.inStage = 0
		s.legs++
		s.stage++
		if s.stage > 6 {
			s.stage = 1
			s.mult++
			if s.mult >= s.growth+s.meta {
				s.mult = int(math.RoundToEven(float64(s.mult) / float64(s.meta)))
				s.meta++
				if s.mult < 1 {
					s.mult = 1
				}
			}
		}
	}

	return s.pos, true
}

// Legs returns how many legs have been completed.
func (s *Spiral) Legs() int {
	return s.legs
}

// SpiralSearch clicks along the spiral until stillDead reports false or the
// spiral runs out. It returns the number of clicks made.
func SpiralSearch(s *Spiral, stillDead func(image.Point) bool) (int, bool) {
	clicks := 0
	for {
		p, ok := s.Next()
		if !ok {
			return clicks, false
		}
		clicks++
		if !stillDead(p) {
			return clicks, true
		}
	}
}

// RecoverFromDeath dismisses the death prompt and clicks across the respawn
// map until a respawn point takes the player off it.
func (h *Handlers) RecoverFromDeath(ctx context.Context) bool {
	h.logger.Info("Player is dead, searching for a respawn point")
	h.press("space", 5*time.Second)

	spiral := NewSpiral(h.cfg.Spiral)
	clicks, found := SpiralSearch(spiral, func(p image.Point) bool {
		if ctx.Err() != nil {
			return false
		}
		return h.respawnClick(ctx, p)
	})
	if ctx.Err() != nil {
		return false
	}

	if !found {
		h.logger.Error("No respawn point found", slog.Int("clicks", clicks), slog.Int("legs", spiral.Legs()))
		h.capture(ctx, "respawn")
		return false
	}

	h.logger.Info("Respawned", slog.Int("clicks", clicks))
	return true
}

// respawnClick clicks p and confirms. It reports whether the respawn map is still up.
func (h *Handlers) respawnClick(ctx context.Context, p image.Point) bool {
	h.sleep(50 * time.Millisecond)
	h.clickAt(p, 200*time.Millisecond)
	h.press("enter", 200*time.Millisecond)
	h.press("enter", 300*time.Millisecond)

	return h.perceiver.Probe(ctx, perception.RoleStatus).Has(perception.RoleStatus)
}
