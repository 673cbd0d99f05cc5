// Package calc implements the interaction state machine that turns fingertip
// observations into calculator commands.
//
// A Machine is not safe for concurrent use. The sensor loop owns it; other
// goroutines reach it only through the loop's control messages.
package calc

import (
	"image"
	"strings"
	"time"

	"github.com/ayusman/handcalc/internal/event"
	"github.com/ayusman/handcalc/internal/expr"
	"github.com/ayusman/handcalc/internal/layout"
)

// DefaultDebounce is the minimum gap between two accepted selections.
const DefaultDebounce = 2 * time.Second

// Machine holds the interaction phase, the expression being built and the
// time of the last accepted selection.
type Machine struct {
	phase    layout.Phase
	tokens   []string
	debounce time.Duration
	evaluate func(string) string

	lastSelection time.Time
	selected      bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithDebounce sets the debounce interval. Negative values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(m *Machine) {
		if d >= 0 {
			m.debounce = d
		}
	}
}

// WithEvaluator replaces the function used when "=" is selected. It must
// return display text for both results and errors.
func WithEvaluator(fn func(string) string) Option {
	return func(m *Machine) {
		if fn != nil {
			m.evaluate = fn
		}
	}
}

// NewMachine returns a Machine in the SelectingNumber phase with an empty
// expression.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		phase:    layout.SelectingNumber,
		debounce: DefaultDebounce,
		evaluate: expr.Result,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() layout.Phase {
	return m.phase
}

// Expression returns the expression text accumulated so far.
func (m *Machine) Expression() string {
	return strings.Join(m.tokens, "")
}

// Debounce returns the configured debounce interval.
func (m *Machine) Debounce() time.Duration {
	return m.debounce
}

// Layout returns the layout for the current phase on a canvas of the given size.
func (m *Machine) Layout(width, height int) layout.Layout {
	return layout.Compute(width, height, m.phase)
}

// Observe processes one fingertip observation taken at now against l.
// tip is nil when no fingertip was found in the frame. It returns the
// resulting event, if the observation produced a visible change.
//
// A hit is accepted only when more than the debounce interval has passed
// since the previous accepted hit. Hits on bubbles that mean nothing in the
// current phase are ignored and do not restart the interval.
func (m *Machine) Observe(tip *image.Point, now time.Time, l layout.Layout) (event.Event, bool) {
	if tip == nil {
		return event.Event{}, false
	}

	b, ok := l.HitTest(*tip)
	if !ok {
		return event.Event{}, false
	}

	if m.selected && now.Sub(m.lastSelection) <= m.debounce {
		return event.Event{}, false
	}

	ev, emitted, accepted := m.apply(b.Label)
	if !accepted {
		return event.Event{}, false
	}
	m.lastSelection = now
	m.selected = true
	return ev, emitted
}

// apply runs the transition for label. accepted is false when the label has
// no meaning in the current phase.
func (m *Machine) apply(label string) (ev event.Event, emitted, accepted bool) {
	switch m.phase {
	case layout.SelectingNumber:
		switch {
		case layout.IsDigit(label):
			m.tokens = append(m.tokens, label)
			return event.ExpressionUpdated(m.Expression()), true, true
		case label == layout.LabelNext:
			m.phase = layout.SelectingOperator
			return event.Event{}, false, true
		}

	case layout.SelectingOperator:
		switch {
		case layout.IsOperator(label):
			m.tokens = append(m.tokens, label)
			m.phase = layout.SelectingNumber
			return event.ExpressionUpdated(m.Expression()), true, true
		case label == layout.LabelEquals:
			result := m.evaluate(m.Expression())
			m.tokens = nil
			m.phase = layout.SelectingNumber
			return event.EvaluationCompleted(result), true, true
		}
	}
	return event.Event{}, false, false
}

// Reset clears the expression and returns to SelectingNumber. It is not
// subject to debouncing and leaves the debounce clock untouched.
func (m *Machine) Reset() event.Event {
	m.tokens = nil
	m.phase = layout.SelectingNumber
	return event.ExpressionUpdated("")
}

// Snapshot is a read-only copy of a Machine's visible state.
type Snapshot struct {
	Phase      layout.Phase
	Expression string
}

// Snapshot returns a copy of the current phase and expression.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{Phase: m.phase, Expression: m.Expression()}
}
