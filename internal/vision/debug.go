package vision

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fo76bot/fo76bot/internal/perception"
	"github.com/vcaesar/imgo"
)

// FrameSaver writes full client frames to disk when a handler gives up.
type FrameSaver struct {
	screen perception.Capturer
	region image.Rectangle
	dir    string
	logger *slog.Logger
}

func NewFrameSaver(screen perception.Capturer, region image.Rectangle, dir string, logger *slog.Logger) *FrameSaver {
	return &FrameSaver{screen: screen, region: region, dir: dir, logger: logger}
}

// Grab returns the current frame, or nil when capture fails.
func (f *FrameSaver) Grab(ctx context.Context) image.Image {
	img, err := f.screen.Capture(ctx, f.region)
	if err != nil {
		f.logger.Debug("Debug capture failed", slog.Any("error", err))
		return nil
	}
	return img
}

// Save stores the current frame as <dir>/<timestamp>_<reason>.png.
func (f *FrameSaver) Save(ctx context.Context, reason string) {
	img := f.Grab(ctx)
	if img == nil {
		return
	}

	if err := os.MkdirAll(f.dir, os.ModePerm); err != nil {
		f.logger.Warn("Couldn't create screenshot directory", slog.Any("error", err))
		return
	}

	path := filepath.Join(f.dir, fmt.Sprintf("%s_%s.png", time.Now().Format("2006-01-02_15-04-05"), reason))
	if err := imgo.Save(path, img); err != nil {
		f.logger.Warn("Couldn't save debug screenshot", slog.String("path", path), slog.Any("error", err))
		return
	}
	f.logger.Info("Debug screenshot saved", slog.String("path", path))
}
