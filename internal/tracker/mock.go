package tracker

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockTracker returns scripted results for tests. Each Track call consumes
// the next scripted result; once the script is exhausted the last result
// repeats.
type MockTracker struct {
	mu     sync.Mutex
	script [][]Hand
	err    error
	calls  int
	closed bool
}

// NewMockTracker returns a tracker that sees no hands.
func NewMockTracker() *MockTracker {
	return &MockTracker{}
}

// SetHands makes every Track call return hands.
func (m *MockTracker) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = [][]Hand{hands}
}

// SetScript makes successive Track calls return the given results in order.
func (m *MockTracker) SetScript(script ...[]Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = script
}

// SetError makes Track fail with err.
func (m *MockTracker) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Track returns the next scripted result.
func (m *MockTracker) Track(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) == 0 {
		return nil, nil
	}
	if i >= len(m.script) {
		i = len(m.script) - 1
	}
	return m.script[i], nil
}

// Calls returns how many times Track was called.
func (m *MockTracker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the tracker closed.
func (m *MockTracker) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockTracker) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PointingHand returns a right hand with the index finger extended and its
// tip at the normalized position (x, y). The remaining fingers are curled.
func PointingHand(x, y float64) Hand {
	h := Hand{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point{X: x + 0.02, Y: y + 0.35}
	h.Points[IndexMCP] = Point{X: x + 0.01, Y: y + 0.20, Z: -0.01}
	h.Points[IndexPIP] = Point{X: x + 0.005, Y: y + 0.12, Z: -0.02}
	h.Points[IndexDIP] = Point{X: x, Y: y + 0.05, Z: -0.02}
	h.Points[IndexTip] = Point{X: x, Y: y, Z: -0.03}

	curled := Point{X: x + 0.04, Y: y + 0.22, Z: -0.02}
	for _, i := range []int{ThumbTip, MiddleTip, RingTip, PinkyTip} {
		h.Points[i] = curled
	}
	return h
}
