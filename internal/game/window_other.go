//go:build !windows

package game

import (
	"errors"
	"image"
	"log/slog"

	"github.com/go-vgo/robotgo"
)

var ErrWindowNotFound = errors.New("game window not found")

// Window falls back to robotgo's window lookup outside Windows.
type Window struct {
	titles []string
	logger *slog.Logger
}

func NewWindow(logger *slog.Logger, titles ...string) *Window {
	return &Window{titles: titles, logger: logger}
}

func SetDPIAware() {}

func (w *Window) Focus() error {
	for _, title := range w.titles {
		if err := robotgo.ActiveName(title); err == nil {
			return nil
		}
	}
	return ErrWindowNotFound
}

func (w *Window) Origin() image.Point {
	return image.Point{}
}

// Grab is not supported here; callers fall back to a screen capture.
func (w *Window) Grab() (*image.RGBA, error) {
	return nil, errors.ErrUnsupported
}
