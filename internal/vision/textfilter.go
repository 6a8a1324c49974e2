package vision

import (
	"fmt"
	"image"

	"github.com/fo76bot/fo76bot/internal/perception"
	"gocv.io/x/gocv"
)

// TextFilter prepares captures for OCR with OpenCV.
type TextFilter struct{}

func NewTextFilter() TextFilter {
	return TextFilter{}
}

// Prepare keeps the pixels of first that sit inside band and, when second is
// set, moved by less than tolerance between the two frames. The result is a
// white on black *image.Gray.
func (TextFilter) Prepare(first, second image.Image, band perception.Band, tolerance int) (image.Image, error) {
	frame, err := gocv.ImageToMatRGB(first)
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	defer frame.Close()

	// ImageToMatRGB stores channels as BGR.
	lower := gocv.NewScalar(float64(band.Lower.B), float64(band.Lower.G), float64(band.Lower.R), 0)
	upper := gocv.NewScalar(float64(band.Upper.B), float64(band.Upper.G), float64(band.Upper.R), 0)
	keep := gocv.NewMat()
	defer keep.Close()
	gocv.InRangeWithScalar(frame, lower, upper, &keep)

	if second != nil {
		next, err := gocv.ImageToMatRGB(second)
		if err != nil {
			return nil, fmt.Errorf("converting second frame: %w", err)
		}
		defer next.Close()
		if next.Rows() != frame.Rows() || next.Cols() != frame.Cols() {
			return nil, fmt.Errorf("frame sizes differ: %dx%d and %dx%d", frame.Cols(), frame.Rows(), next.Cols(), next.Rows())
		}

		still := stillMask(frame, next, tolerance)
		defer still.Close()
		gocv.BitwiseAnd(keep, still, &keep)
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.Threshold(keep, &out, 127, 255, gocv.ThresholdBinary)

	img, err := out.ToImage()
	if err != nil {
		return nil, fmt.Errorf("converting prepared text: %w", err)
	}
	return img, nil
}

// stillMask is 255 where the RGB distance between a and b is below tolerance.
func stillMask(a, b gocv.Mat, tolerance int) gocv.Mat {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	diffF := gocv.NewMat()
	defer diffF.Close()
	diff.ConvertTo(&diffF, gocv.MatTypeCV32FC3)

	squared := gocv.NewMat()
	defer squared.Close()
	gocv.Multiply(diffF, diffF, &squared)

	channels := gocv.Split(squared)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()
	dist := gocv.NewMat()
	defer dist.Close()
	gocv.Add(channels[0], channels[1], &dist)
	gocv.Add(dist, channels[2], &dist)

	stillF := gocv.NewMat()
	defer stillF.Close()
	// Squared distances are whole numbers, so the half step makes the cut
	// exclusive of tolerance itself.
	limit := float32(tolerance*tolerance) - 0.5
	gocv.Threshold(dist, &stillF, limit, 255, gocv.ThresholdBinaryInv)

	still := gocv.NewMat()
	stillF.ConvertTo(&still, gocv.MatTypeCV8U)
	return still
}
