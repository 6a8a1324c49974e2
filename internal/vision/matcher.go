package vision

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fo76bot/fo76bot/internal/perception"
	"gocv.io/x/gocv"
)

// maxMatchesPerTemplate bounds the peak search on noisy frames.
const maxMatchesPerTemplate = 16

// Matcher finds icon templates on screen with normalized cross-correlation.
type Matcher struct {
	screen perception.Capturer
	region image.Rectangle
	logger *slog.Logger

	mu        sync.Mutex
	templates map[string]gocv.Mat
}

func NewMatcher(screen perception.Capturer, region image.Rectangle, logger *slog.Logger) *Matcher {
	return &Matcher{
		screen:    screen,
		region:    region,
		logger:    logger,
		templates: make(map[string]gocv.Mat),
	}
}

// Find returns the centre of every match of any of tpl's files, in client
// coordinates. Missing template files are skipped with a warning.
func (m *Matcher) Find(ctx context.Context, tpl perception.IconTemplate) ([]image.Point, error) {
	img, err := m.screen.Capture(ctx, m.region)
	if err != nil {
		return nil, fmt.Errorf("capturing screen for %s: %w", tpl.Name, err)
	}

	frame, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	defer frame.Close()

	var points []image.Point
	for _, file := range tpl.Files {
		t, ok := m.template(file)
		if !ok {
			continue
		}
		if t.Cols() > frame.Cols() || t.Rows() > frame.Rows() {
			continue
		}
		for _, p := range matchAll(frame, t, tpl.Confidence) {
			p = p.Add(m.region.Min)
			if !near(points, p, t.Cols()/2) {
				points = append(points, p)
			}
		}
	}

	return points, nil
}

func (m *Matcher) template(file string) (gocv.Mat, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.templates[file]; ok {
		return t, !t.Empty()
	}

	t := gocv.IMRead(file, gocv.IMReadColor)
	if t.Empty() {
		m.logger.Warn("Icon template missing or unreadable", slog.String("file", filepath.ToSlash(file)))
	}
	m.templates[file] = t
	return t, !t.Empty()
}

// Close releases every loaded template.
func (m *Matcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.templates {
		t.Close()
		delete(m.templates, k)
	}
}

// matchAll repeatedly takes the best correlation peak and blanks a template
// sized area around it until no peak reaches confidence.
func matchAll(frame, tpl gocv.Mat, confidence float64) []image.Point {
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(frame, tpl, &result, gocv.TmCcoeffNormed, mask)

	bounds := image.Rect(0, 0, result.Cols(), result.Rows())
	var out []image.Point
	for len(out) < maxMatchesPerTemplate {
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
		if float64(maxVal) < confidence {
			break
		}
		out = append(out, image.Pt(maxLoc.X+tpl.Cols()/2, maxLoc.Y+tpl.Rows()/2))

		suppress := image.Rect(maxLoc.X-tpl.Cols()/2, maxLoc.Y-tpl.Rows()/2, maxLoc.X+tpl.Cols()/2+1, maxLoc.Y+tpl.Rows()/2+1).Intersect(bounds)
		roi := result.Region(suppress)
		roi.SetTo(gocv.NewScalar(-1, 0, 0, 0))
		roi.Close()
	}

	return out
}

func near(points []image.Point, p image.Point, radius int) bool {
	for _, q := range points {
		d := q.Sub(p)
		if d.X*d.X+d.Y*d.Y <= radius*radius {
			return true
		}
	}
	return false
}
