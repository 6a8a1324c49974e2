package perception

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCountKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[Dictionary]int
	}{
		{
			name: "intro prompt",
			text: "Press any button to START",
			want: map[Dictionary]int{DictPreMain: 4},
		},
		{
			name: "token shared by two dictionaries",
			text: "back (tab)",
			want: map[Dictionary]int{DictNavigation: 1},
		},
		{
			name: "tab) counts in premain and navigation",
			text: "continue tab)",
			want: map[Dictionary]int{DictPreMain: 2, DictNavigation: 1},
		},
		{
			name: "loading variants",
			text: "loading... loading. loading by...",
			want: map[Dictionary]int{DictLoading: 4},
		},
		{
			name: "bad event repeated tokens",
			text: "event: distinguished guests event",
			want: map[Dictionary]int{DictEvent: 2, DictBadEvent: 2},
		},
		{
			name: "respawn",
			text: "RESPAWN   enter)",
			want: map[Dictionary]int{DictNavigation: 2},
		},
		{
			name: "empty",
			text: "",
			want: map[Dictionary]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountKeywords(Tokenize(tt.text))
			for d := Dictionary(0); d < dictCount; d++ {
				if got.Get(d) != tt.want[d] {
					t.Errorf("%s = %d, want %d", d, got.Get(d), tt.want[d])
				}
			}
		})
	}
}

func TestSnapshotVector(t *testing.T) {
	s := NewSnapshot(map[IconRole]Detection{
		RoleStatus:    {image.Pt(10, 10)},
		RoleObjective: {image.Pt(20, 20), image.Pt(30, 30)},
		RoleEvent:     {},
	}, "Respawn")

	if got, want := s.Vector(), VectorOf(RoleStatus, RoleObjective); got != want {
		t.Errorf("Vector() = %s, want %s", got, want)
	}
	if s.IconCount() != 2 {
		t.Errorf("IconCount() = %d, want 2", s.IconCount())
	}
	if !s.HasToken(RespawnToken) {
		t.Error("expected lowercase respawn token")
	}
	if len(s.Detection(RoleObjective)) != 2 {
		t.Errorf("objective detections = %d, want 2", len(s.Detection(RoleObjective)))
	}
}

func TestRegistryTemplates(t *testing.T) {
	r := NewRegistry("icons", 0.9)
	tpls := r.Templates()
	if len(tpls) != int(roleCount) {
		t.Fatalf("templates = %d, want %d", len(tpls), roleCount)
	}
	for i, tpl := range tpls {
		if tpl.Role != IconRole(i) {
			t.Errorf("template %d has role %s", i, tpl.Role)
		}
		if tpl.Confidence != 0.9 || len(tpl.Files) == 0 {
			t.Errorf("template %s misconfigured: %+v", tpl.Name, tpl)
		}
	}
	if got := len(r.Template(RoleObjective).Files); got != 3 {
		t.Errorf("objective variants = %d, want 3", got)
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

type fakeCapturer struct {
	frames []*image.RGBA
	calls  int
	err    error
}

func (f *fakeCapturer) Capture(_ context.Context, _ image.Rectangle) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	frame := f.frames[f.calls%len(f.frames)]
	f.calls++
	return frame, nil
}

type fakeCursor struct {
	moves  int
	parked []image.Point
}

func (f *fakeCursor) MoveTo(x, y int) { f.parked = append(f.parked, image.Pt(x, y)) }

func (f *fakeCursor) MoveRelative(_, _ int) { f.moves++ }

// fakePrep records what it was asked to prepare and hands back a marker image.
type fakePrep struct {
	first, second image.Image
	band          Band
	tolerance     int
	out           image.Image
	err           error
}

func (f *fakePrep) Prepare(first, second image.Image, band Band, tolerance int) (image.Image, error) {
	f.first, f.second, f.band, f.tolerance = first, second, band, tolerance
	return f.out, f.err
}

type fakeOCR struct {
	text string
	last image.Image
}

func (f *fakeOCR) Recognize(_ context.Context, img image.Image) (string, error) {
	f.last = img
	return f.text, nil
}

func TestTextReaderMotionCancel(t *testing.T) {
	yellow := color.RGBA{R: 200, G: 200, B: 50, A: 255}
	first := solid(2, 1, yellow)
	second := solid(2, 1, yellow)
	second.SetRGBA(1, 0, color.RGBA{R: 255, G: 255, B: 90, A: 255})

	capt := &fakeCapturer{frames: []*image.RGBA{first, second}}
	cursor := &fakeCursor{}
	prepared := image.NewGray(image.Rect(0, 0, 2, 1))
	prep := &fakePrep{out: prepared}
	ocr := &fakeOCR{text: "Event: Free Range"}
	var slept time.Duration
	r := NewTextReader(capt, cursor, prep, ocr, TextReaderOptions{Park: image.Pt(1000, 500), Tolerance: 15, NudgeCount: 30, NudgeStep: 10, NudgeDelay: 50 * time.Millisecond}, func(d time.Duration) { slept += d })

	text, err := r.Read(context.Background(), image.Rect(0, 0, 2, 1), PromptBand, true)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if text != "event: free range" {
		t.Errorf("Read() = %q", text)
	}
	if cursor.moves != 30 || capt.calls != 2 || slept != 1500*time.Millisecond {
		t.Errorf("moves=%d captures=%d slept=%s", cursor.moves, capt.calls, slept)
	}
	if len(cursor.parked) != 1 || cursor.parked[0] != image.Pt(1000, 500) {
		t.Errorf("parked = %v, want [(1000,500)]", cursor.parked)
	}
	if prep.first != image.Image(first) || prep.second != image.Image(second) {
		t.Error("frames reached the preprocessor out of order")
	}
	if prep.band != PromptBand || prep.tolerance != 15 {
		t.Errorf("Prepare() band %v tolerance %d", prep.band, prep.tolerance)
	}
	if ocr.last != image.Image(prepared) {
		t.Error("OCR did not get the prepared image")
	}
}

func TestTextReaderWithoutMotionCancel(t *testing.T) {
	capt := &fakeCapturer{frames: []*image.RGBA{solid(1, 1, color.RGBA{A: 255})}}
	cursor := &fakeCursor{}
	prep := &fakePrep{out: image.NewGray(image.Rect(0, 0, 1, 1))}
	r := NewTextReader(capt, cursor, prep, &fakeOCR{text: "LOADING"}, TextReaderOptions{NudgeCount: 30}, func(time.Duration) {})

	text, err := r.Read(context.Background(), image.Rect(0, 0, 1, 1), HUDBand, false)
	if err != nil || text != "loading" {
		t.Fatalf("Read() = %q, %v", text, err)
	}
	if cursor.moves != 0 || capt.calls != 1 {
		t.Errorf("moves=%d captures=%d, want 0 and 1", cursor.moves, capt.calls)
	}
	if len(cursor.parked) != 0 {
		t.Errorf("cursor parked at %v without a park point", cursor.parked)
	}
	if prep.second != nil || prep.band != HUDBand {
		t.Errorf("Prepare() second %v band %v, want nil and HUDBand", prep.second, prep.band)
	}
}

func TestTextReaderPrepareError(t *testing.T) {
	capt := &fakeCapturer{frames: []*image.RGBA{solid(1, 1, color.RGBA{A: 255})}}
	ocr := &fakeOCR{text: "never"}
	prepErr := errors.New("frame sizes differ")
	r := NewTextReader(capt, &fakeCursor{}, &fakePrep{err: prepErr}, ocr, TextReaderOptions{}, func(time.Duration) {})

	if _, err := r.Read(context.Background(), image.Rect(0, 0, 1, 1), HUDBand, false); !errors.Is(err, prepErr) {
		t.Errorf("Read() error = %v, want the preprocessor error", err)
	}
	if ocr.last != nil {
		t.Error("OCR ran on a failed preparation")
	}
}

type fakeIcons struct {
	hits map[IconRole][]image.Point
	fail map[IconRole]bool
}

func (f fakeIcons) Find(_ context.Context, tpl IconTemplate) ([]image.Point, error) {
	if f.fail[tpl.Role] {
		return nil, errors.New("matcher exploded")
	}
	return f.hits[tpl.Role], nil
}

type fakeText struct {
	byBand map[Band]string
	err    error
}

func (f fakeText) Read(_ context.Context, _ image.Rectangle, band Band, _ bool) (string, error) {
	return f.byBand[band], f.err
}

func TestAggregatorObserve(t *testing.T) {
	icons := fakeIcons{
		hits: map[IconRole][]image.Point{RoleMenu: {image.Pt(1, 1)}, RoleStatus: {image.Pt(2, 2)}},
		fail: map[IconRole]bool{RoleStatus: true},
	}
	text := fakeText{byBand: map[Band]string{HUDBand: "loading", PromptBand: "press any"}}
	a := NewAggregator(NewRegistry("icons", 0.9), icons, text, image.Rect(0, 0, 1280, 800), false, testLogger())

	s := a.Observe(context.Background())
	if got, want := s.Vector(), VectorOf(RoleMenu); got != want {
		t.Errorf("Vector() = %s, want %s (failed probe must read as absent)", got, want)
	}
	if s.Text != "loading press any" {
		t.Errorf("Text = %q", s.Text)
	}
	if s.Count(DictLoading) != 1 || s.Count(DictPreMain) != 2 {
		t.Errorf("keywords = %v", s.Keywords)
	}
}

func TestAggregatorNeverFailsOutward(t *testing.T) {
	icons := fakeIcons{fail: map[IconRole]bool{}}
	for _, r := range Roles() {
		icons.fail[r] = true
	}
	a := NewAggregator(NewRegistry("icons", 0.9), icons, fakeText{err: errors.New("no tesseract")}, image.Rect(0, 0, 1, 1), false, testLogger())

	s := a.Observe(context.Background())
	if s.IconCount() != 0 || s.Text != "" || len(s.Tokens) != 0 {
		t.Errorf("expected empty snapshot, got %+v", s)
	}

	p := a.Probe(context.Background(), RolePopup)
	if p.Has(RolePopup) {
		t.Error("Probe() reported a failed icon as present")
	}
}
