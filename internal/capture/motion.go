package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection tuning.
const (
	blurKernel    = 21
	diffThreshold = 25
	// sampleWidth is the width frames are shrunk to before differencing.
	sampleWidth = 160
)

// MotionDetector compares consecutive frames and reports how much of the
// image changed. The sensor loop uses it to choose its frame rate.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	hasPrev   bool
}

// NewMotionDetector returns a detector that reports motion when more than
// threshold percent of the pixels changed.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect compares frame with the previous frame. The first frame only
// establishes a baseline and never reports motion.
func (m *MotionDetector) Detect(frame gocv.Mat) (moved bool, percent float64) {
	if frame.Empty() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()
	h := gray.Rows() * sampleWidth / max(gray.Cols(), 1)
	gocv.Resize(gray, &small, image.Pt(sampleWidth, max(h, 1)), 0, 0, gocv.InterpolationArea)
	gocv.GaussianBlur(small, &small, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)

	if !m.hasPrev {
		small.CopyTo(&m.prev)
		m.hasPrev = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(small, m.prev, &diff)
	gocv.Threshold(diff, &diff, diffThreshold, 255, gocv.ThresholdBinary)

	percent = float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	small.CopyTo(&m.prev)
	return percent > m.threshold, percent
}

// Reset forgets the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prev.Close()
	m.prev = gocv.NewMat()
	m.hasPrev = false
}

// Close releases the baseline frame. The detector can be used again afterwards.
func (m *MotionDetector) Close() {
	m.Reset()
}

// Threshold returns the change percentage that counts as motion.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
