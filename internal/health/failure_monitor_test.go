package health

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestMonitor(threshold int, sustained time.Duration) (*FailureMonitor, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	fm := NewFailureMonitor(slog.New(slog.NewTextHandler(io.Discard, nil)), threshold, sustained)
	fm.now = clock.now
	return fm, clock
}

func TestFailureMonitorTrips(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		step     time.Duration
		want     bool
	}{
		{name: "enough failures and long enough", failures: 21, step: 30 * time.Second, want: true},
		{name: "enough failures too fast", failures: 25, step: time.Second, want: false},
		{name: "long enough too few failures", failures: 5, step: 5 * time.Minute, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, clock := newTestMonitor(20, 10*time.Minute)
			tripped := false
			for i := 0; i < tt.failures; i++ {
				tripped = fm.Record(false)
				clock.t = clock.t.Add(tt.step)
			}
			if tripped != tt.want {
				t.Errorf("Record() = %v, want %v (consecutive %d)", tripped, tt.want, fm.Consecutive)
			}
		})
	}
}

func TestFailureMonitorProgressResets(t *testing.T) {
	fm, clock := newTestMonitor(3, time.Minute)

	for i := 0; i < 2; i++ {
		fm.Record(false)
		clock.t = clock.t.Add(time.Minute)
	}
	if fm.Record(true) {
		t.Fatal("Record(true) tripped")
	}
	if fm.Consecutive != 0 || !fm.FailureStart.IsZero() {
		t.Errorf("streak not reset: %d %v", fm.Consecutive, fm.FailureStart)
	}

	tripped := 0
	for i := 0; i < 3; i++ {
		if fm.Record(false) {
			tripped++
		}
		clock.t = clock.t.Add(time.Minute)
	}
	if tripped != 1 {
		t.Errorf("fresh streak tripped %d times, want 1", tripped)
	}
}

func TestFailureMonitorDisabled(t *testing.T) {
	fm, clock := newTestMonitor(1, 0)
	fm.Disable()
	for i := 0; i < 10; i++ {
		if fm.Record(false) {
			t.Fatal("disabled monitor tripped")
		}
		clock.t = clock.t.Add(time.Hour)
	}
}
