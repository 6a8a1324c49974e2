package event

import (
	"context"
	"log/slog"
	"time"
)

const (
	bufferSize     = 64
	handlerTimeout = 15 * time.Second
)

var events = make(chan Event, bufferSize)

type Handler func(ctx context.Context, e Event) error

type Listener struct {
	handlers []Handler
	logger   *slog.Logger
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{logger: logger}
}

// Register must be called before Listen.
func (l *Listener) Register(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Listen fans every sent event out to the registered handlers until ctx is done.
func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.drain()
			return nil
		case e := <-events:
			l.dispatch(ctx, e)
		}
	}
}

// drain delivers what was queued before shutdown, such as a fatal stop notice.
func (l *Listener) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	for {
		select {
		case e := <-events:
			l.dispatch(ctx, e)
		default:
			return
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, e Event) {
	for _, h := range l.handlers {
		hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
		if err := h(hctx, e); err != nil {
			l.logger.Error("Error sending event", slog.String("event", e.Message()), slog.Any("error", err))
		}
		cancel()
	}
}

// Send queues e for delivery. When the queue is full the event is dropped so
// the bot loop never blocks on a slow notifier.
func Send(e Event) bool {
	select {
	case events <- e:
		return true
	default:
		return false
	}
}
