package game

import (
	"image"
	"log/slog"
	"time"

	"github.com/fo76bot/fo76bot/internal/utils"
	"github.com/go-vgo/robotgo"
)

const keyPressDelay = 50 * time.Millisecond

// HID sends synthetic keyboard and mouse input. Coordinates are relative to
// the game window's client area.
type HID struct {
	window *Window
	logger *slog.Logger
}

func NewHID(window *Window, logger *slog.Logger) *HID {
	return &HID{window: window, logger: logger}
}

func (hid *HID) abs(x, y int) image.Point {
	return hid.window.Origin().Add(image.Pt(x, y))
}

// KeyTap presses and releases key.
func (hid *HID) KeyTap(key string) {
	if err := robotgo.KeyTap(key); err != nil {
		hid.logger.Warn("Key press failed", slog.String("key", key), slog.Any("error", err))
	}
	utils.Sleep(keyPressDelay)
}

// MoveTo puts the cursor on (x, y).
func (hid *HID) MoveTo(x, y int) {
	p := hid.abs(x, y)
	robotgo.Move(p.X, p.Y)
}

// Click moves to (x, y) and left clicks.
func (hid *HID) Click(x, y int) {
	hid.MoveTo(x, y)
	utils.Sleep(keyPressDelay)
	robotgo.Click("left")
}

// MoveRelative shifts the cursor, used to nudge the camera between text reads.
func (hid *HID) MoveRelative(dx, dy int) {
	robotgo.MoveRelative(dx, dy)
}
