package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/fo76bot/fo76bot/internal/perception"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func grayRow(t *testing.T, img image.Image) []uint8 {
	t.Helper()
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("prepared image is %T, want *image.Gray", img)
	}
	row := make([]uint8, g.Rect.Dx())
	for x := range row {
		row[x] = g.GrayAt(g.Rect.Min.X+x, g.Rect.Min.Y).Y
	}
	return row
}

func TestTextFilterBands(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 200, G: 200, B: 50, A: 255})  // prompt yellow
	img.SetRGBA(1, 0, color.RGBA{R: 200, G: 200, B: 150, A: 255}) // hud pale
	img.SetRGBA(2, 0, color.RGBA{R: 20, G: 200, B: 50, A: 255})   // green

	tests := []struct {
		name string
		band perception.Band
		want []uint8
	}{
		{name: "prompt", band: perception.PromptBand, want: []uint8{255, 0, 0}},
		{name: "hud", band: perception.HUDBand, want: []uint8{0, 255, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewTextFilter().Prepare(img, nil, tt.band, 15)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			got := grayRow(t, out)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Prepare() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestTextFilterMotionMask(t *testing.T) {
	yellow := color.RGBA{R: 200, G: 200, B: 50, A: 255}
	first := solid(3, 1, yellow)
	second := solid(3, 1, yellow)
	// Distance 14 stays, distance 15 is masked.
	second.SetRGBA(0, 0, color.RGBA{R: 214, G: 200, B: 50, A: 255})
	second.SetRGBA(1, 0, color.RGBA{R: 215, G: 200, B: 50, A: 255})
	// The first frame decides the band: this pixel only leaves it in the second.
	first.SetRGBA(2, 0, color.RGBA{R: 200, G: 200, B: 95, A: 255})
	second.SetRGBA(2, 0, color.RGBA{R: 200, G: 200, B: 105, A: 255})

	out, err := NewTextFilter().Prepare(first, second, perception.PromptBand, 15)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	want := []uint8{255, 0, 255}
	got := grayRow(t, out)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Prepare() = %v, want %v", got, want)
			break
		}
	}
}

func TestTextFilterFrameSizeMismatch(t *testing.T) {
	yellow := color.RGBA{R: 200, G: 200, B: 50, A: 255}
	if _, err := NewTextFilter().Prepare(solid(2, 1, yellow), solid(3, 1, yellow), perception.PromptBand, 15); err == nil {
		t.Error("Prepare() accepted frames of different sizes")
	}
}
