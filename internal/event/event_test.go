package event

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func drain() {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

func TestBaseEvent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	a := WithScreenshot("fo76bot", "stuck", img)
	b := Text("fo76bot", "hello")

	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("event IDs not unique: %q %q", a.ID(), b.ID())
	}
	if a.Session() != b.Session() || a.Session() == "" {
		t.Errorf("sessions differ: %q %q", a.Session(), b.Session())
	}
	if a.Image() == nil || b.Image() != nil {
		t.Error("image not carried correctly")
	}
	if b.Supervisor() != "fo76bot" || b.Message() != "hello" {
		t.Errorf("got %q %q", b.Supervisor(), b.Message())
	}
	if time.Since(a.OccurredAt()) > time.Minute {
		t.Errorf("occurredAt %v", a.OccurredAt())
	}
}

func TestSendDropsWhenFull(t *testing.T) {
	drain()
	defer drain()

	for i := 0; i < bufferSize; i++ {
		if !Send(BotStarted(Text("fo76bot", "started"))) {
			t.Fatalf("Send() dropped event %d before the buffer was full", i)
		}
	}
	if Send(BotStarted(Text("fo76bot", "one too many"))) {
		t.Error("Send() = true with a full buffer")
	}
}

func TestListenerFansOut(t *testing.T) {
	drain()
	defer drain()

	l := NewListener(slog.New(slog.NewTextHandler(io.Discard, nil)))
	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	l.Register(func(_ context.Context, e Event) error {
		return errors.New("first handler always fails")
	})
	l.Register(func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Message())
		if len(got) == 2 {
			close(done)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Listen(ctx) }()

	Send(GameRestarted(Text("fo76bot", "restarted"), "environment lost", 1))
	Send(NgrokTunnel("https://example.ngrok.app"))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handlers not called")
	}
	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Listen() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "restarted" || got[1] != "Remote access available at https://example.ngrok.app" {
		t.Errorf("got %v", got)
	}
}

func TestListenerDeliversQueuedOnShutdown(t *testing.T) {
	drain()
	defer drain()

	l := NewListener(slog.New(slog.NewTextHandler(io.Discard, nil)))
	var got []string
	l.Register(func(_ context.Context, e Event) error {
		got = append(got, e.Message())
		return nil
	})

	Send(FatalStop(Text("fo76bot", "stopped"), errors.New("overweight")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Listen(ctx); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	if len(got) != 1 || got[0] != "stopped" {
		t.Errorf("got %v, want the queued fatal stop", got)
	}
}
