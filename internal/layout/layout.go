// Package layout computes the on-screen bubbles a fingertip can select.
//
// Layouts are derived from the canvas size and the current interaction phase
// every frame; nothing is cached between frames.
package layout

import (
	"image"
	"strconv"
)

// Radius is the radius in canvas pixels shared by every bubble.
const Radius = 45

// Special labels that are not digits or arithmetic operators.
const (
	LabelNext   = "→"
	LabelEquals = "="
)

// Phase is the stage of the interaction, which decides the visible bubbles.
type Phase int

const (
	// SelectingNumber shows the digit grid and the transition bubble.
	SelectingNumber Phase = iota
	// SelectingOperator shows the four operators and the equals bubble.
	SelectingOperator
)

// String returns a readable name for the phase.
func (p Phase) String() string {
	switch p {
	case SelectingNumber:
		return "selecting_number"
	case SelectingOperator:
		return "selecting_operator"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// Bubble is a labeled selectable region in canvas pixel space.
type Bubble struct {
	Center image.Point
	Radius int
	Label  string
}

// Caption is the text drawn inside the bubble. The Hershey fonts have no
// arrow glyph, so the transition bubble is drawn as "->".
func (b Bubble) Caption() string {
	if b.Label == LabelNext {
		return "->"
	}
	return b.Label
}

// Contains reports whether p lies inside the bubble's hit region.
// The region is the axis-aligned square around the center, not the drawn
// circle, so points near the square's corners hit even though they are
// outside the circle.
func (b Bubble) Contains(p image.Point) bool {
	return abs(p.X-b.Center.X) < b.Radius && abs(p.Y-b.Center.Y) < b.Radius
}

// Layout is an ordered set of bubbles. Order decides which bubble wins when
// regions overlap.
type Layout []Bubble

// HitTest returns the first bubble, in layout order, containing p.
func (l Layout) HitTest(p image.Point) (Bubble, bool) {
	for _, b := range l {
		if b.Contains(p) {
			return b, true
		}
	}
	return Bubble{}, false
}

// Compute returns the layout for a canvas of the given size in phase p.
func Compute(width, height int, p Phase) Layout {
	if p == SelectingOperator {
		return operatorLayout(width, height)
	}
	return numberLayout(width, height)
}

// numberLayout places 1-9 on a 3x3 grid around the center, 0 below the grid
// and the transition bubble to the right of it.
func numberLayout(width, height int) Layout {
	cx, cy := float64(width/2), float64(height/2)
	ox := float64(width) * 0.20
	oy := float64(height) * 0.20

	l := make(Layout, 0, 11)
	digit := 1
	for row := -1; row <= 1; row++ {
		for col := -1; col <= 1; col++ {
			l = append(l, bubble(cx+float64(col)*ox, cy+float64(row)*oy, strconv.Itoa(digit)))
			digit++
		}
	}
	l = append(l, bubble(cx, cy+2*oy, "0"))
	l = append(l, bubble(cx+2*ox, cy, LabelNext))
	return l
}

// operatorLayout places the operators in a cross around the center with the
// equals bubble below it.
func operatorLayout(width, height int) Layout {
	cx, cy := float64(width/2), float64(height/2)
	off := float64(height) * 0.15

	return Layout{
		bubble(cx-off, cy, "+"),
		bubble(cx+off, cy, "-"),
		bubble(cx, cy-off, "*"),
		bubble(cx, cy+off, "/"),
		bubble(cx, cy+2*off+20, LabelEquals),
	}
}

func bubble(x, y float64, label string) Bubble {
	return Bubble{
		Center: image.Point{X: int(x), Y: int(y)},
		Radius: Radius,
		Label:  label,
	}
}

// IsDigit reports whether label is a single decimal digit.
func IsDigit(label string) bool {
	return len(label) == 1 && label[0] >= '0' && label[0] <= '9'
}

// IsOperator reports whether label is one of the four arithmetic operators.
func IsOperator(label string) bool {
	switch label {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
