package tracker

import "image"

// Landmark indices in the MediaPipe hand model.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleTip    = 12
	RingTip      = 16
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a landmark position. X and Y are normalized to [0,1] of the
// frame width and height; Z is relative depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is one tracked hand.
type Hand struct {
	Points     [NumLandmarks]Point `json:"points"`
	Handedness string              `json:"handedness"` // "Left" or "Right"
	Score      float64             `json:"score"`
}

// IndexTip returns the index fingertip landmark.
func (h Hand) IndexTip() Point {
	return h.Points[IndexTip]
}

// ToPixel converts a normalized point to pixel coordinates on a canvas of
// the given size, truncating toward zero.
func (p Point) ToPixel(width, height int) image.Point {
	return image.Point{
		X: int(p.X * float64(width)),
		Y: int(p.Y * float64(height)),
	}
}

// Fingertip returns the first hand's index fingertip in canvas pixels, or
// nil when hands is empty.
func Fingertip(hands []Hand, width, height int) *image.Point {
	if len(hands) == 0 {
		return nil
	}
	p := hands[0].IndexTip().ToPixel(width, height)
	return &p
}
