package tracker

import (
	"errors"
	"image"
	"strings"
	"testing"
)

func TestPoint_ToPixel(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want image.Point
	}{
		{"origin", Point{X: 0, Y: 0}, image.Pt(0, 0)},
		{"center", Point{X: 0.5, Y: 0.5}, image.Pt(387, 250)},
		{"far corner", Point{X: 1, Y: 1}, image.Pt(775, 500)},
		{"truncates", Point{X: 0.3, Y: 0.25}, image.Pt(232, 125)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.ToPixel(775, 500); got != tt.want {
				t.Errorf("ToPixel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFingertip(t *testing.T) {
	if tip := Fingertip(nil, 775, 500); tip != nil {
		t.Errorf("expected nil fingertip without hands, got %v", *tip)
	}

	hands := []Hand{PointingHand(0.5, 0.5), PointingHand(0.1, 0.1)}
	tip := Fingertip(hands, 775, 500)
	if tip == nil {
		t.Fatal("expected a fingertip")
	}
	if *tip != image.Pt(387, 250) {
		t.Errorf("expected first hand's fingertip at (387,250), got %v", *tip)
	}
}

func TestPointingHand(t *testing.T) {
	h := PointingHand(0.4, 0.3)

	if h.IndexTip() != (Point{X: 0.4, Y: 0.3, Z: -0.03}) {
		t.Errorf("unexpected index tip %+v", h.IndexTip())
	}
	if h.Points[IndexTip].Y >= h.Points[IndexMCP].Y {
		t.Error("index finger should point up (tip above knuckle)")
	}
	if h.Points[MiddleTip].Y <= h.Points[IndexTip].Y {
		t.Error("middle finger should be curled below the index tip")
	}
}

func TestMockTracker(t *testing.T) {
	t.Run("no hands by default", func(t *testing.T) {
		m := NewMockTracker()
		hands, err := m.Track(nil)
		if err != nil || hands != nil {
			t.Errorf("Track() = %v, %v; want nil, nil", hands, err)
		}
	})

	t.Run("script then repeat last", func(t *testing.T) {
		m := NewMockTracker()
		first := []Hand{PointingHand(0.1, 0.1)}
		m.SetScript(nil, first)

		if hands, _ := m.Track(nil); hands != nil {
			t.Errorf("call 1: expected no hands, got %d", len(hands))
		}
		for i := 0; i < 3; i++ {
			if hands, _ := m.Track(nil); len(hands) != 1 {
				t.Errorf("call %d: expected 1 hand, got %d", i+2, len(hands))
			}
		}
		if m.Calls() != 4 {
			t.Errorf("Calls() = %d, want 4", m.Calls())
		}
	})

	t.Run("error", func(t *testing.T) {
		m := NewMockTracker()
		want := errors.New("tracking failed")
		m.SetError(want)
		if _, err := m.Track(nil); !errors.Is(err, want) {
			t.Errorf("Track() error = %v, want %v", err, want)
		}
	})

	t.Run("close", func(t *testing.T) {
		m := NewMockTracker()
		if err := m.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
		if !m.Closed() {
			t.Error("Closed() should report true")
		}
	})

	t.Run("implements Tracker", func(t *testing.T) {
		var _ Tracker = (*MockTracker)(nil)
		var _ Tracker = (*MediaPipeTracker)(nil)
	})
}

func TestDecodeResponse(t *testing.T) {
	points := make([]string, NumLandmarks)
	for i := range points {
		points[i] = `{"x":0.25,"y":0.75,"z":0}`
	}
	line := `{"hands":[{"points":[` + strings.Join(points, ",") + `],"handedness":"Left","score":0.9}]}` + "\n"

	hands, err := decodeResponse([]byte(line))
	if err != nil {
		t.Fatalf("decodeResponse() error = %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("expected 1 hand, got %d", len(hands))
	}
	if hands[0].Handedness != "Left" || hands[0].IndexTip().X != 0.25 {
		t.Errorf("unexpected hand %+v", hands[0])
	}
}

func TestDecodeResponse_Errors(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		if _, err := decodeResponse([]byte("{not json")); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("helper error", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"error":"model failed"}`))
		if err == nil || !strings.Contains(err.Error(), "model failed") {
			t.Errorf("expected helper error to surface, got %v", err)
		}
	})

	t.Run("truncated hand skipped", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[{"points":[{"x":0.1,"y":0.1,"z":0}]}]}`))
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected hand without an index tip to be skipped, got %d", len(hands))
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}`))
		if err != nil || len(hands) != 0 {
			t.Errorf("decodeResponse() = %v, %v", hands, err)
		}
	})
}
