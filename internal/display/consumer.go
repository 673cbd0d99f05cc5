// Package display drains the app's event queue on a fixed cadence and hands
// the events to the things that show them.
package display

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/ayusman/handcalc/internal/event"
)

// DefaultPollInterval is how often the queue is drained.
const DefaultPollInterval = 100 * time.Millisecond

// Sink receives events in queue order.
type Sink interface {
	OnEvent(e event.Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e event.Event)

// OnEvent calls f(e).
func (f SinkFunc) OnEvent(e event.Event) { f(e) }

// Consumer polls a Queue and dispatches to sinks. Within one drain only the
// newest frame is dispatched; every command event is dispatched.
type Consumer struct {
	queue    *event.Queue
	interval time.Duration
	log      *slog.Logger

	mu    sync.RWMutex
	sinks []Sink
	text  string
	frame *event.Frame
}

// NewConsumer creates a Consumer for q. A non-positive interval selects
// DefaultPollInterval.
func NewConsumer(q *event.Queue, interval time.Duration, logger *slog.Logger) *Consumer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		queue:    q,
		interval: interval,
		log:      logger.With("component", "display.consumer"),
	}
}

// AddSink registers s. Sinks are called from the consumer goroutine.
func (c *Consumer) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Interval returns the poll interval.
func (c *Consumer) Interval() time.Duration {
	return c.interval
}

// Text returns the text currently on display: the latest expression,
// result or message.
func (c *Consumer) Text() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text
}

// Frame returns the latest dispatched frame, or nil.
func (c *Consumer) Frame() *event.Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// Run drains the queue every interval until ctx is done, then drains once
// more so nothing already queued is lost.
func (c *Consumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Tick()
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick drains the queue once and dispatches. It returns how many events
// were dispatched.
func (c *Consumer) Tick() int {
	events := c.queue.Drain()
	if len(events) == 0 {
		return 0
	}

	lastFrame := -1
	for i, e := range events {
		if e.Kind == event.KindFrameReady {
			lastFrame = i
		}
	}

	c.mu.RLock()
	sinks := append([]Sink(nil), c.sinks...)
	c.mu.RUnlock()

	n := 0
	for i, e := range events {
		if e.Kind == event.KindFrameReady && i != lastFrame {
			continue
		}
		c.record(e)
		for _, s := range sinks {
			c.deliver(s, e)
		}
		n++
	}
	return n
}

func (c *Consumer) record(e event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.IsCommand() {
		c.text = e.Text
		return
	}
	c.frame = e.Frame
}

// deliver calls s, logging instead of propagating a panic so one broken
// sink does not take down the others.
func (c *Consumer) deliver(s Sink, e event.Event) {
	var pc panics.Catcher
	pc.Try(func() { s.OnEvent(e) })
	if r := pc.Recovered(); r != nil {
		c.log.Error("sink panicked", "kind", e.Kind, "panic", r.String())
	}
}

// LogSink logs command events.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink returns a sink that logs every command event at info level.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{log: logger.With("component", "display")}
}

// OnEvent logs e unless it is a frame.
func (s *LogSink) OnEvent(e event.Event) {
	if !e.IsCommand() {
		return
	}
	s.log.Info("display", "kind", e.Kind, "text", e.Text)
}
