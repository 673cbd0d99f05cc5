package display

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/handcalc/internal/event"
)

// recorder is a Sink that keeps everything it sees.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) OnEvent(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func TestConsumer_Tick(t *testing.T) {
	q := event.NewQueue(0)
	c := NewConsumer(q, 0, nil)
	rec := &recorder{}
	c.AddSink(rec)

	if n := c.Tick(); n != 0 {
		t.Errorf("Tick() on empty queue = %d", n)
	}

	q.Push(event.FrameReady([]byte{1}, 1, 1))
	q.Push(event.ExpressionUpdated("7"))
	q.Push(event.FrameReady([]byte{2}, 1, 1))
	q.Push(event.EvaluationCompleted("7+3 = 10"))
	q.Push(event.FrameReady([]byte{3}, 1, 1))

	if n := c.Tick(); n != 3 {
		t.Errorf("Tick() = %d, want 3 (two commands and the newest frame)", n)
	}

	got := rec.snapshot()
	if len(got) != 3 {
		t.Fatalf("sink saw %d events", len(got))
	}
	if got[0].Text != "7" || got[1].Text != "7+3 = 10" {
		t.Errorf("commands out of order: %+v", got)
	}
	if got[2].Kind != event.KindFrameReady || got[2].Frame.Data[0] != 3 {
		t.Errorf("expected newest frame last, got %+v", got[2])
	}

	if c.Text() != "7+3 = 10" {
		t.Errorf("Text() = %q", c.Text())
	}
	if f := c.Frame(); f == nil || f.Data[0] != 3 {
		t.Errorf("Frame() = %+v", f)
	}
}

func TestConsumer_MessageReplacesText(t *testing.T) {
	q := event.NewQueue(0)
	c := NewConsumer(q, 0, nil)

	q.Push(event.ExpressionUpdated("12"))
	q.Push(event.Message("Error: Could not understand the audio."))
	c.Tick()

	if c.Text() != "Error: Could not understand the audio." {
		t.Errorf("Text() = %q", c.Text())
	}

	q.Push(event.ExpressionUpdated(""))
	c.Tick()
	if c.Text() != "" {
		t.Errorf("Text() after reset = %q", c.Text())
	}
}

func TestConsumer_SinkPanicIsolated(t *testing.T) {
	q := event.NewQueue(0)
	var logs bytes.Buffer
	c := NewConsumer(q, 0, slog.New(slog.NewTextHandler(&logs, nil)))

	c.AddSink(SinkFunc(func(event.Event) { panic("boom") }))
	rec := &recorder{}
	c.AddSink(rec)

	q.Push(event.ExpressionUpdated("1"))
	c.Tick()

	if len(rec.snapshot()) != 1 {
		t.Error("healthy sink should still receive the event")
	}
	if !strings.Contains(logs.String(), "sink panicked") {
		t.Errorf("expected panic to be logged, got %q", logs.String())
	}
}

func TestConsumer_Run(t *testing.T) {
	q := event.NewQueue(0)
	c := NewConsumer(q, 10*time.Millisecond, nil)
	rec := &recorder{}
	c.AddSink(rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	q.Push(event.ExpressionUpdated("4"))

	deadline := time.Now().Add(time.Second)
	for len(rec.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(rec.snapshot()) != 1 {
		t.Fatal("Run did not dispatch within a second")
	}

	// Pushed right before cancel: the final drain still delivers it.
	q.Push(event.EvaluationCompleted("4 = 4"))
	cancel()
	<-done

	got := rec.snapshot()
	if got[len(got)-1].Text != "4 = 4" {
		t.Errorf("final drain missed event: %+v", got)
	}
}

func TestNewConsumer_DefaultInterval(t *testing.T) {
	if got := NewConsumer(event.NewQueue(0), 0, nil).Interval(); got != DefaultPollInterval {
		t.Errorf("Interval() = %v, want %v", got, DefaultPollInterval)
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	s.OnEvent(event.FrameReady([]byte{1}, 1, 1))
	if buf.Len() != 0 {
		t.Errorf("frames should not be logged: %q", buf.String())
	}

	s.OnEvent(event.EvaluationCompleted("2*3+4 = 10"))
	if !strings.Contains(buf.String(), "2*3+4 = 10") {
		t.Errorf("expected result in log, got %q", buf.String())
	}
}
