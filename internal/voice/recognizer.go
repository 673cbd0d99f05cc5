package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/handcalc/internal/expr"
)

var (
	// ErrNotUnderstood is returned when speech was captured but could not
	// be transcribed.
	ErrNotUnderstood = errors.New("could not understand the audio")

	// ErrNoRecognizer is returned when no speech backend is configured.
	ErrNoRecognizer = errors.New("no speech recognizer configured")
)

// Recognizer captures one utterance and returns its transcript.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context) (string, error)

// Recognize calls f(ctx).
func (f RecognizerFunc) Recognize(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticRecognizer returns canned transcripts in order, then
// ErrNotUnderstood once they run out.
type StaticRecognizer struct {
	mu          sync.Mutex
	transcripts []string
}

// NewStaticRecognizer returns a recognizer that replays transcripts.
func NewStaticRecognizer(transcripts ...string) *StaticRecognizer {
	return &StaticRecognizer{transcripts: transcripts}
}

// Recognize returns the next transcript.
func (s *StaticRecognizer) Recognize(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.transcripts) == 0 {
		return "", ErrNotUnderstood
	}
	t := s.transcripts[0]
	s.transcripts = s.transcripts[1:]
	return t, nil
}

// Interpret parses a transcript and evaluates it. It returns the display
// text of the evaluation, or an error when the transcript names no
// operation. Evaluation failures are folded into the display text.
func Interpret(transcript string) (string, error) {
	expression, err := Parse(transcript)
	if err != nil {
		return "", err
	}
	return expr.Result(expression), nil
}

// Listen records one utterance with r and interprets it.
func Listen(ctx context.Context, r Recognizer) (string, error) {
	if r == nil {
		return "", ErrNoRecognizer
	}
	transcript, err := r.Recognize(ctx)
	if err != nil {
		return "", err
	}
	return Interpret(transcript)
}

// Describe converts a voice error into the text shown to the user.
func Describe(err error) string {
	var opErr *OperationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &opErr):
		return fmt.Sprintf("Error: Unrecognized operation in command: '%s'", opErr.Command)
	case errors.Is(err, ErrNotUnderstood):
		return "Error: Could not understand the audio."
	case errors.Is(err, ErrNoRecognizer):
		return "Error: Voice input is not configured."
	case errors.Is(err, context.Canceled):
		return "Error: Voice input canceled."
	default:
		return fmt.Sprintf("Error: Could not request results from speech service; %v", err)
	}
}
