// Package testdata provides cameras, scripted hands and clocks shared by
// tests that drive the calculator end to end.
package testdata

import (
	"image"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcalc/internal/capture"
	"github.com/ayusman/handcalc/internal/layout"
	"github.com/ayusman/handcalc/internal/tracker"
)

// BlackCamera returns an open-able camera that loops over one black
// 640x480 frame. The frame is released when the test ends.
func BlackCamera(tb testing.TB) *capture.MockCamera {
	tb.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	tb.Cleanup(func() { frame.Close() })
	return capture.NewMockCamera([]*gocv.Mat{&frame}, true)
}

// HandOn returns a single pointing hand whose index fingertip lands inside
// the bubble labeled label in the given phase.
func HandOn(tb testing.TB, phase layout.Phase, label string) []tracker.Hand {
	tb.Helper()
	for _, b := range layout.Compute(capture.CanvasWidth, capture.CanvasHeight, phase) {
		if b.Label == label {
			p := b.Center.Add(image.Pt(2, 2))
			x := float64(p.X) / capture.CanvasWidth
			y := float64(p.Y) / capture.CanvasHeight
			return []tracker.Hand{tracker.PointingHand(x, y)}
		}
	}
	tb.Fatalf("no bubble %q in phase %s", label, phase)
	return nil
}

// Taps converts tokens into one tracker result per selection. A number
// token taps each digit followed by next; an operator or "=" is tapped in
// the operator phase. A final empty result leaves the hand out of view.
//
//	Taps(t, "7", "+", "3", "=")
func Taps(tb testing.TB, tokens ...string) [][]tracker.Hand {
	tb.Helper()
	var script [][]tracker.Hand
	for _, tok := range tokens {
		if layout.IsOperator(tok) || tok == layout.LabelEquals {
			script = append(script, HandOn(tb, layout.SelectingOperator, tok))
			continue
		}
		for _, r := range tok {
			script = append(script, HandOn(tb, layout.SelectingNumber, string(r)))
		}
		script = append(script, HandOn(tb, layout.SelectingNumber, layout.LabelNext))
	}
	return append(script, nil)
}

// SteppingClock advances by Step on every reading so that consecutive
// observations fall outside the debounce window.
type SteppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewSteppingClock returns a clock starting now.
func NewSteppingClock(step time.Duration) *SteppingClock {
	return &SteppingClock{now: time.Now(), step: step}
}

// Now advances the clock and returns the new reading.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}
