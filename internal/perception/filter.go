package perception

import (
	"image"
	"image/color"
)

// Band is an inclusive RGB range.
type Band struct {
	Lower color.RGBA
	Upper color.RGBA
}

var (
	// PromptBand isolates the bright yellow of menu and intro prompts.
	PromptBand = Band{Lower: color.RGBA{R: 130, G: 130, B: 0}, Upper: color.RGBA{R: 255, G: 255, B: 100}}
	// HUDBand isolates the paler HUD and map overlay text.
	HUDBand = Band{Lower: color.RGBA{R: 130, G: 130, B: 100}, Upper: color.RGBA{R: 255, G: 255, B: 203}}
)

// Preprocessor turns raw captures into white text on black for OCR.
//
// Prepare keeps the pixels of first that fall inside band and, when second is
// not nil, are closer than tolerance (RGB distance) to the same pixel in
// second. Every kept pixel is white, the rest black.
type Preprocessor interface {
	Prepare(first, second image.Image, band Band, tolerance int) (image.Image, error)
}
