// Package tracker finds hands in camera frames.
package tracker

import (
	"time"

	"gocv.io/x/gocv"
)

// DefaultResponseTimeout bounds how long one frame may wait for the helper.
const DefaultResponseTimeout = time.Second

// Tracker locates hands in a frame.
type Tracker interface {
	// Track returns the hands found in frame, best first. It returns an
	// empty slice, not an error, when no hand is visible.
	Track(frame *gocv.Mat) ([]Hand, error)

	// Close releases resources held by the tracker.
	Close() error
}

// Config holds hand tracking options.
type Config struct {
	// MaxHands is the most hands reported per frame.
	MaxHands int

	// MinConfidence is the minimum detection confidence (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence (0.0-1.0).
	MinTrackingConf float64

	// ResponseTimeout bounds one Track call. A helper that misses it is killed.
	ResponseTimeout time.Duration
}

// DefaultConfig tracks a single hand at 70% confidence.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.7,
		ResponseTimeout: DefaultResponseTimeout,
	}
}
