package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/go-vgo/robotgo"
)

// Screen captures regions of the game client.
type Screen struct {
	window *Window
}

func NewScreen(window *Window) *Screen {
	return &Screen{window: window}
}

// Capture returns region, in client coordinates, as an RGBA image with its
// origin at (0,0).
func (s *Screen) Capture(ctx context.Context, region image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.window.Grab()
	if err == nil {
		if !region.In(full.Bounds()) {
			region = region.Intersect(full.Bounds())
		}
		if region.Empty() {
			return nil, fmt.Errorf("capture region outside client area")
		}
		out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
		draw.Draw(out, out.Bounds(), full, region.Min, draw.Src)
		return out, nil
	}
	if !errors.Is(err, errors.ErrUnsupported) {
		return nil, fmt.Errorf("grabbing game window: %w", err)
	}

	origin := s.window.Origin()
	bitmap := robotgo.CaptureScreen(origin.X+region.Min.X, origin.Y+region.Min.Y, region.Dx(), region.Dy())
	if bitmap == nil {
		return nil, fmt.Errorf("screen capture failed")
	}
	defer robotgo.FreeBitmap(bitmap)

	return robotgo.ToImage(bitmap), nil
}
