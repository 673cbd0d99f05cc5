package event

import (
	"sync"
	"testing"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(4)

	q.Push(ExpressionUpdated("7"))
	q.Push(FrameReady([]byte{1}, 775, 500))
	q.Push(EvaluationCompleted("7+3 = 10"))
	q.Push(Message("Error: Could not understand the audio"))

	got := q.Drain()
	wantKinds := []Kind{KindExpressionUpdated, KindFrameReady, KindEvaluationCompleted, KindMessage}
	if len(got) != len(wantKinds) {
		t.Fatalf("expected %d events, got %d", len(wantKinds), len(got))
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("event %d: expected %s, got %s", i, k, got[i].Kind)
		}
	}

	if again := q.Drain(); again != nil {
		t.Errorf("expected empty drain, got %d events", len(again))
	}
}

func TestQueue_DropsOldestFrameOnly(t *testing.T) {
	q := NewQueue(2)

	q.Push(FrameReady([]byte{1}, 1, 1))
	q.Push(ExpressionUpdated("1"))
	q.Push(FrameReady([]byte{2}, 1, 1))
	q.Push(ExpressionUpdated("12"))
	q.Push(FrameReady([]byte{3}, 1, 1))

	got := q.Drain()
	if len(got) != 4 {
		t.Fatalf("expected 4 events, got %d", len(got))
	}

	want := []struct {
		kind  Kind
		text  string
		frame byte
	}{
		{KindExpressionUpdated, "1", 0},
		{KindFrameReady, "", 2},
		{KindExpressionUpdated, "12", 0},
		{KindFrameReady, "", 3},
	}
	for i, w := range want {
		if got[i].Kind != w.kind {
			t.Fatalf("event %d: expected %s, got %s", i, w.kind, got[i].Kind)
		}
		if w.kind == KindFrameReady && got[i].Frame.Data[0] != w.frame {
			t.Errorf("event %d: expected frame %d, got %d", i, w.frame, got[i].Frame.Data[0])
		}
		if w.kind != KindFrameReady && got[i].Text != w.text {
			t.Errorf("event %d: expected text %q, got %q", i, w.text, got[i].Text)
		}
	}

	if q.DroppedFrames() != 1 {
		t.Errorf("expected 1 dropped frame, got %d", q.DroppedFrames())
	}
}

func TestQueue_NeverDropsCommands(t *testing.T) {
	q := NewQueue(1)
	for i := 0; i < 1000; i++ {
		q.Push(ExpressionUpdated("x"))
		q.Push(FrameReady(nil, 0, 0))
	}

	commands := 0
	frames := 0
	for _, e := range q.Drain() {
		if e.IsCommand() {
			commands++
		} else {
			frames++
		}
	}
	if commands != 1000 {
		t.Errorf("expected 1000 command events, got %d", commands)
	}
	if frames != 1 {
		t.Errorf("expected 1 pending frame, got %d", frames)
	}
}

func TestQueue_Ready(t *testing.T) {
	q := NewQueue(0)

	select {
	case <-q.Ready():
		t.Fatal("ready should not fire before a push")
	default:
	}

	q.Push(Message("hi"))
	q.Push(Message("again"))

	select {
	case <-q.Ready():
	default:
		t.Fatal("ready should fire after a push")
	}
	if q.Len() != 2 {
		t.Errorf("expected 2 pending events, got %d", q.Len())
	}
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue(0)
	q.Push(Message("before"))
	q.Close()

	if q.Push(Message("after")) {
		t.Error("Push after Close should report false")
	}

	got := q.Drain()
	if len(got) != 1 || got[0].Text != "before" {
		t.Errorf("expected pending event to survive Close, got %v", got)
	}
}

func TestQueue_ConcurrentProducerConsumer(t *testing.T) {
	q := NewQueue(3)
	const n = 500

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(ExpressionUpdated(string(rune('a' + i%26))))
			q.Push(FrameReady(nil, 0, 0))
		}
	}()

	var received []Event
	for len(countCommands(received)) < n {
		<-q.Ready()
		received = append(received, q.Drain()...)
	}
	wg.Wait()

	commands := countCommands(received)
	for i, e := range commands {
		if want := string(rune('a' + i%26)); e.Text != want {
			t.Fatalf("command %d out of order: got %q, want %q", i, e.Text, want)
		}
	}
}

func countCommands(events []Event) []Event {
	var out []Event
	for _, e := range events {
		if e.IsCommand() {
			out = append(out, e)
		}
	}
	return out
}

func TestKind_String(t *testing.T) {
	if KindFrameReady.String() != "frame_ready" {
		t.Errorf("unexpected name %q", KindFrameReady.String())
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("unexpected name %q", Kind(99).String())
	}
}
