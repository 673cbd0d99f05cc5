package layout

import (
	"image"
	"math"
	"reflect"
	"testing"
)

func TestCompute_NumberPhase(t *testing.T) {
	l := Compute(775, 500, SelectingNumber)

	want := []struct {
		label string
		x, y  int
	}{
		{"1", 232, 150}, {"2", 387, 150}, {"3", 542, 150},
		{"4", 232, 250}, {"5", 387, 250}, {"6", 542, 250},
		{"7", 232, 350}, {"8", 387, 350}, {"9", 542, 350},
		{"0", 387, 450},
		{LabelNext, 697, 250},
	}

	if len(l) != len(want) {
		t.Fatalf("expected %d bubbles, got %d", len(want), len(l))
	}
	for i, w := range want {
		b := l[i]
		if b.Label != w.label {
			t.Errorf("bubble %d: expected label %q, got %q", i, w.label, b.Label)
		}
		if b.Center.X != w.x || b.Center.Y != w.y {
			t.Errorf("bubble %q: expected center (%d,%d), got (%d,%d)", w.label, w.x, w.y, b.Center.X, b.Center.Y)
		}
		if b.Radius != Radius {
			t.Errorf("bubble %q: expected radius %d, got %d", w.label, Radius, b.Radius)
		}
	}
}

func TestCompute_OperatorPhase(t *testing.T) {
	l := Compute(775, 500, SelectingOperator)

	want := []struct {
		label string
		x, y  int
	}{
		{"+", 312, 250},
		{"-", 462, 250},
		{"*", 387, 175},
		{"/", 387, 325},
		{LabelEquals, 387, 420},
	}

	if len(l) != len(want) {
		t.Fatalf("expected %d bubbles, got %d", len(want), len(l))
	}
	for i, w := range want {
		if l[i].Label != w.label || l[i].Center != image.Pt(w.x, w.y) {
			t.Errorf("bubble %d: expected %q at (%d,%d), got %q at %v", i, w.label, w.x, w.y, l[i].Label, l[i].Center)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	sizes := []image.Point{{775, 500}, {640, 480}, {1280, 720}, {333, 211}}
	for _, size := range sizes {
		for _, phase := range []Phase{SelectingNumber, SelectingOperator} {
			a := Compute(size.X, size.Y, phase)
			b := Compute(size.X, size.Y, phase)
			if !reflect.DeepEqual(a, b) {
				t.Errorf("layout for %v in %s differs between calls", size, phase)
			}
		}
	}
}

func TestCompute_NumberBubblesDisjoint(t *testing.T) {
	sizes := []image.Point{{775, 500}, {640, 480}, {1280, 720}, {1920, 1080}}
	for _, size := range sizes {
		l := Compute(size.X, size.Y, SelectingNumber)
		for i := 0; i < len(l); i++ {
			for j := i + 1; j < len(l); j++ {
				dx := float64(l[i].Center.X - l[j].Center.X)
				dy := float64(l[i].Center.Y - l[j].Center.Y)
				if d := math.Hypot(dx, dy); d < 2*Radius {
					t.Errorf("canvas %v: bubbles %q and %q are %.1fpx apart, want >= %d",
						size, l[i].Label, l[j].Label, d, 2*Radius)
				}
			}
		}
	}
}

func TestCompute_RadiusConstantAcrossPhases(t *testing.T) {
	for _, phase := range []Phase{SelectingNumber, SelectingOperator} {
		for _, b := range Compute(775, 500, phase) {
			if b.Radius != Radius {
				t.Errorf("%s bubble %q has radius %d, want %d", phase, b.Label, b.Radius, Radius)
			}
		}
	}
}

func TestLayout_HitTest(t *testing.T) {
	l := Compute(775, 500, SelectingNumber)

	tests := []struct {
		name  string
		point image.Point
		want  string
		hit   bool
	}{
		{"center of 5", image.Pt(387, 250), "5", true},
		{"inside 7", image.Pt(240, 340), "7", true},
		{"arrow", image.Pt(700, 255), LabelNext, true},
		{"square corner outside circle", image.Pt(387+40, 250+40), "5", true},
		{"edge is exclusive", image.Pt(387+45, 250), "", false},
		{"between bubbles", image.Pt(310, 200), "", false},
		{"off canvas", image.Pt(-100, -100), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := l.HitTest(tt.point)
			if ok != tt.hit {
				t.Fatalf("HitTest(%v) hit = %v, want %v", tt.point, ok, tt.hit)
			}
			if ok && b.Label != tt.want {
				t.Errorf("HitTest(%v) = %q, want %q", tt.point, b.Label, tt.want)
			}
		})
	}
}

func TestLayout_HitTest_FirstMatchWins(t *testing.T) {
	l := Layout{
		{Center: image.Pt(100, 100), Radius: Radius, Label: "first"},
		{Center: image.Pt(130, 100), Radius: Radius, Label: "second"},
	}

	// Closer to the second bubble, but both regions contain the point.
	b, ok := l.HitTest(image.Pt(128, 100))
	if !ok {
		t.Fatal("expected a hit")
	}
	if b.Label != "first" {
		t.Errorf("expected first bubble in order to win, got %q", b.Label)
	}
}

func TestBubble_Caption(t *testing.T) {
	if got := (Bubble{Label: LabelNext}).Caption(); got != "->" {
		t.Errorf("Caption() for next = %q, want %q", got, "->")
	}
	if got := (Bubble{Label: "7"}).Caption(); got != "7" {
		t.Errorf("Caption() for digit = %q, want %q", got, "7")
	}
}

func TestLabelClassification(t *testing.T) {
	for _, d := range []string{"0", "5", "9"} {
		if !IsDigit(d) {
			t.Errorf("IsDigit(%q) = false", d)
		}
	}
	for _, s := range []string{"", "10", "+", LabelNext} {
		if IsDigit(s) {
			t.Errorf("IsDigit(%q) = true", s)
		}
	}
	for _, op := range []string{"+", "-", "*", "/"} {
		if !IsOperator(op) {
			t.Errorf("IsOperator(%q) = false", op)
		}
	}
	if IsOperator(LabelEquals) {
		t.Error("equals must not count as an arithmetic operator")
	}
}
