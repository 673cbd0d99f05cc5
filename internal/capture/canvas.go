package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Interaction canvas size. Bubble layouts are computed in this space, not in
// the camera's native resolution.
const (
	CanvasWidth  = 775
	CanvasHeight = 500
)

// PrepareCanvas returns a copy of frame resized to width x height, mirrored
// horizontally when mirror is set so the user sees themselves as in a mirror.
// The caller must Close the result; frame is left untouched.
func PrepareCanvas(frame *gocv.Mat, width, height int, mirror bool) (gocv.Mat, error) {
	if frame == nil || frame.Empty() {
		return gocv.NewMat(), ErrEmptyFrame
	}
	if width <= 0 || height <= 0 {
		return gocv.NewMat(), fmt.Errorf("invalid canvas size %dx%d", width, height)
	}

	src := *frame
	if mirror {
		flipped := gocv.NewMat()
		defer flipped.Close()
		gocv.Flip(*frame, &flipped, 1)
		src = flipped
	}

	canvas := gocv.NewMat()
	gocv.Resize(src, &canvas, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return canvas, nil
}

// EncodeJPEG encodes mat as JPEG bytes owned by the caller.
func EncodeJPEG(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
