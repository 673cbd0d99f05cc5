// Package event defines the command events the sensor loop emits and the
// queue that carries them to consumers.
package event

import "strconv"

// Kind identifies the variant held by an Event.
type Kind int

const (
	// KindExpressionUpdated carries the expression text after a change.
	KindExpressionUpdated Kind = iota + 1
	// KindEvaluationCompleted carries an evaluation result or error text.
	KindEvaluationCompleted
	// KindFrameReady carries an encoded camera frame.
	KindFrameReady
	// KindMessage carries preformatted status or error text.
	KindMessage
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindExpressionUpdated:
		return "expression_updated"
	case KindEvaluationCompleted:
		return "evaluation_completed"
	case KindFrameReady:
		return "frame_ready"
	case KindMessage:
		return "message"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Frame is an encoded image ready for display.
type Frame struct {
	Data   []byte // JPEG bytes
	Width  int
	Height int
}

// Event is a one-shot notification for consumers. Text is set for every
// kind except KindFrameReady, which sets Frame instead.
type Event struct {
	Kind  Kind
	Text  string
	Frame *Frame
}

// ExpressionUpdated returns an event announcing the current expression.
func ExpressionUpdated(text string) Event {
	return Event{Kind: KindExpressionUpdated, Text: text}
}

// EvaluationCompleted returns an event carrying an evaluation outcome.
func EvaluationCompleted(text string) Event {
	return Event{Kind: KindEvaluationCompleted, Text: text}
}

// FrameReady returns an event carrying an encoded frame.
func FrameReady(data []byte, width, height int) Event {
	return Event{Kind: KindFrameReady, Frame: &Frame{Data: data, Width: width, Height: height}}
}

// Message returns an event carrying literal display text.
func Message(text string) Event {
	return Event{Kind: KindMessage, Text: text}
}

// IsCommand reports whether the event is anything other than a frame.
// Command events are never dropped by a Queue.
func (e Event) IsCommand() bool {
	return e.Kind != KindFrameReady
}
