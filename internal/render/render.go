// Package render draws the calculator overlay onto camera frames.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcalc/internal/layout"
)

const (
	fontFace      = gocv.FontHersheyDuplex
	fontScale     = 1.4
	digitScale    = 1.8
	fontThickness = 3

	// FingertipRadius is the radius of the fingertip marker.
	FingertipRadius = 7
)

var (
	DigitColor     = color.RGBA{R: 219, G: 152, B: 52, A: 0}
	NextColor      = color.RGBA{R: 15, G: 196, B: 241, A: 0}
	OperatorColor  = color.RGBA{R: 113, G: 204, B: 46, A: 0}
	EqualsColor    = color.RGBA{R: 60, G: 76, B: 231, A: 0}
	TextColor      = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	FingertipColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// BubbleColor returns the fill color for a bubble label.
func BubbleColor(label string) color.RGBA {
	switch {
	case layout.IsDigit(label):
		return DigitColor
	case label == layout.LabelNext:
		return NextColor
	case label == layout.LabelEquals:
		return EqualsColor
	default:
		return OperatorColor
	}
}

// DrawLayout paints every bubble of l onto img as a filled circle with its
// caption centered on it.
func DrawLayout(img *gocv.Mat, l layout.Layout) {
	for _, b := range l {
		gocv.Circle(img, b.Center, b.Radius, BubbleColor(b.Label), -1)

		text := b.Caption()
		scale := fontScale
		if layout.IsDigit(b.Label) {
			scale = digitScale
		}
		// Centering uses the base scale so large digits sit slightly right
		// and low, as they always have.
		size := gocv.GetTextSize(text, fontFace, fontScale, fontThickness)
		org := image.Pt(b.Center.X-size.X/2, b.Center.Y+size.Y/2)
		gocv.PutText(img, text, org, fontFace, scale, TextColor, fontThickness)
	}
}

// DrawFingertip marks the fingertip position. A nil tip draws nothing.
func DrawFingertip(img *gocv.Mat, tip *image.Point) {
	if tip == nil {
		return
	}
	gocv.Circle(img, *tip, FingertipRadius, FingertipColor, -1)
}

// Overlay draws the layout and then the fingertip on top of it.
func Overlay(img *gocv.Mat, l layout.Layout, tip *image.Point) {
	DrawLayout(img, l)
	DrawFingertip(img, tip)
}
