package perception

import (
	"context"
	"image"
	"log/slog"
	"strings"
)

// IconProbe finds every on-screen occurrence of a template. An empty result is
// the common case and must not be reported as an error.
type IconProbe interface {
	Find(ctx context.Context, tpl IconTemplate) ([]image.Point, error)
}

// TextProbe reads the lowercase text of a screen region.
type TextProbe interface {
	Read(ctx context.Context, region image.Rectangle, band Band, motionCancel bool) (string, error)
}

type Aggregator struct {
	registry     *Registry
	icons        IconProbe
	text         TextProbe
	region       image.Rectangle
	motionCancel bool
	logger       *slog.Logger
}

func NewAggregator(registry *Registry, icons IconProbe, text TextProbe, region image.Rectangle, motionCancel bool, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		registry:     registry,
		icons:        icons,
		text:         text,
		region:       region,
		motionCancel: motionCancel,
		logger:       logger,
	}
}

// Observe probes every registered icon and reads the screen text twice, once
// per colour band. Probe errors are logged and turned into empty evidence.
func (a *Aggregator) Observe(ctx context.Context) Snapshot {
	icons := a.detect(ctx, Roles())

	hud := a.ReadText(ctx, HUDBand, a.motionCancel)
	prompt := a.ReadText(ctx, PromptBand, a.motionCancel)

	s := NewSnapshot(icons, strings.TrimSpace(hud+" "+prompt))
	a.logger.Debug("Observed screen",
		slog.String("icons", s.Vector().String()),
		slog.Int("premain", s.Count(DictPreMain)),
		slog.Int("navigation", s.Count(DictNavigation)),
		slog.Int("event", s.Count(DictEvent)),
		slog.Int("loading", s.Count(DictLoading)),
		slog.Int("bad", s.Count(DictBadEvent)),
	)

	return s
}

// Probe is the cheap verification read used by handlers: only the given icons, no text.
func (a *Aggregator) Probe(ctx context.Context, roles ...IconRole) Snapshot {
	return NewSnapshot(a.detect(ctx, roles), "")
}

// ReadText reads the configured region. Errors yield an empty string.
func (a *Aggregator) ReadText(ctx context.Context, band Band, motionCancel bool) string {
	text, err := a.text.Read(ctx, a.region, band, motionCancel)
	if err != nil {
		a.logger.Debug("Text read failed", slog.Any("error", err))
		return ""
	}
	return text
}

func (a *Aggregator) detect(ctx context.Context, roles []IconRole) map[IconRole]Detection {
	out := make(map[IconRole]Detection, len(roles))
	for _, role := range roles {
		tpl := a.registry.Template(role)
		points, err := a.icons.Find(ctx, tpl)
		if err != nil {
			a.logger.Debug("Icon probe failed", slog.String("icon", tpl.Name), slog.Any("error", err))
			continue
		}
		if len(points) > 0 {
			out[role] = Detection(points)
		}
	}

	return out
}
