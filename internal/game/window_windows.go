//go:build windows

package game

import (
	"errors"
	"image"
	"log/slog"
	"sync"
	"syscall"

	"github.com/fo76bot/fo76bot/internal/utils/winproc"
	"github.com/lxn/win"
)

var ErrWindowNotFound = errors.New("game window not found")

// Window tracks the game's top level window.
type Window struct {
	titles []string
	logger *slog.Logger

	mu   sync.Mutex
	hwnd win.HWND
}

func NewWindow(logger *slog.Logger, titles ...string) *Window {
	return &Window{titles: titles, logger: logger}
}

// SetDPIAware makes window coordinates match physical pixels on scaled displays.
func SetDPIAware() {
	winproc.SetProcessDpiAware.Call()
}

func (w *Window) find() win.HWND {
	for _, title := range w.titles {
		ptr, err := syscall.UTF16PtrFromString(title)
		if err != nil {
			continue
		}
		if hwnd := win.FindWindow(nil, ptr); hwnd != 0 {
			return hwnd
		}
	}
	return 0
}

// Focus restores the game window and brings it to the foreground.
func (w *Window) Focus() error {
	hwnd := w.find()
	if hwnd == 0 {
		return ErrWindowNotFound
	}

	w.mu.Lock()
	w.hwnd = hwnd
	w.mu.Unlock()

	if win.GetForegroundWindow() == hwnd {
		return nil
	}
	win.ShowWindow(hwnd, win.SW_RESTORE)
	if !win.SetForegroundWindow(hwnd) {
		w.logger.Debug("SetForegroundWindow refused, window may stay behind")
	}
	return nil
}

func (w *Window) handle() win.HWND {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hwnd == 0 || !win.IsWindow(w.hwnd) {
		w.hwnd = w.find()
	}
	return w.hwnd
}

// Origin is the screen position of the client area's top-left corner.
func (w *Window) Origin() image.Point {
	hwnd := w.handle()
	if hwnd == 0 {
		return image.Point{}
	}
	point := win.POINT{}
	win.ClientToScreen(hwnd, &point)
	return image.Pt(int(point.X), int(point.Y))
}

// Grab captures the client area, or nil when the window is gone.
func (w *Window) Grab() (*image.RGBA, error) {
	hwnd := w.handle()
	if hwnd == 0 {
		return nil, ErrWindowNotFound
	}
	return printWindow(uintptr(hwnd))
}
