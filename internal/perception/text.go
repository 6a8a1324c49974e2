package perception

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"
)

// Capturer grabs a screen region.
type Capturer interface {
	Capture(ctx context.Context, region image.Rectangle) (image.Image, error)
}

// Cursor parks and nudges the mouse around text reads.
type Cursor interface {
	MoveTo(x, y int)
	MoveRelative(dx, dy int)
}

// OCR recognizes text in a prepared white-on-black image.
type OCR interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

type TextReaderOptions struct {
	// Park is where the cursor waits during a read so it doesn't cover text.
	// The zero point leaves the cursor alone.
	Park       image.Point
	Tolerance  int
	NudgeCount int
	NudgeStep  int
	NudgeDelay time.Duration
}

// TextReader implements the motion-cancel read: two frames around a burst of
// cursor motion, changed pixels masked, one hue band kept, then binarized for OCR.
type TextReader struct {
	capturer Capturer
	cursor   Cursor
	prep     Preprocessor
	ocr      OCR
	opts     TextReaderOptions
	sleep    func(time.Duration)
}

func NewTextReader(c Capturer, cursor Cursor, prep Preprocessor, o OCR, opts TextReaderOptions, sleep func(time.Duration)) *TextReader {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &TextReader{capturer: c, cursor: cursor, prep: prep, ocr: o, opts: opts, sleep: sleep}
}

// Read returns the lowercase text found in region.
func (t *TextReader) Read(ctx context.Context, region image.Rectangle, band Band, motionCancel bool) (string, error) {
	if t.opts.Park != (image.Point{}) {
		t.cursor.MoveTo(t.opts.Park.X, t.opts.Park.Y)
	}

	first, err := t.capturer.Capture(ctx, region)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}

	var second image.Image
	if motionCancel {
		for i := 0; i < t.opts.NudgeCount; i++ {
			t.cursor.MoveRelative(t.opts.NudgeStep, t.opts.NudgeStep)
			t.sleep(t.opts.NudgeDelay)
		}
		if second, err = t.capturer.Capture(ctx, region); err != nil {
			return "", fmt.Errorf("capture after nudge: %w", err)
		}
	}

	prepared, err := t.prep.Prepare(first, second, band, t.opts.Tolerance)
	if err != nil {
		return "", fmt.Errorf("preparing text: %w", err)
	}
	text, err := t.ocr.Recognize(ctx, prepared)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}

	return strings.ToLower(text), nil
}
