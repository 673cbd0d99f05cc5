// Package voice turns spoken arithmetic into expressions.
package voice

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedOperation matches any *OperationError.
var ErrUnrecognizedOperation = errors.New("unrecognized operation")

// OperationError reports a transcript that names no known operation.
type OperationError struct {
	// Command is the normalized transcript.
	Command string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("unrecognized operation in command: %q", e.Command)
}

func (e *OperationError) Is(target error) bool {
	return target == ErrUnrecognizedOperation
}

var numberWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
}

// operations are checked in order; the first verb found anywhere in the
// normalized command wins.
var operations = []struct {
	verb string
	sep  string
}{
	{"add", " + "},
	{"subtract", " - "},
	{"multiply", " * "},
	{"divide", " / "},
}

// Parse maps a transcript such as "add two and 3" to an expression such as
// "2 + 3". Number words zero through nine become digits; every all-digit
// word is an operand. A transcript with an operation but no operands yields
// an empty expression, which the evaluator rejects.
func Parse(transcript string) (string, error) {
	words := strings.Fields(strings.ToLower(transcript))
	var numbers []string
	for i, w := range words {
		if d, ok := numberWords[w]; ok {
			words[i] = d
			w = d
		}
		if isNumber(w) {
			numbers = append(numbers, canonical(w))
		}
	}
	command := strings.Join(words, " ")

	for _, op := range operations {
		if strings.Contains(command, op.verb) {
			return strings.Join(numbers, op.sep), nil
		}
	}
	return "", &OperationError{Command: command}
}

func isNumber(w string) bool {
	if w == "" {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < '0' || w[i] > '9' {
			return false
		}
	}
	return true
}

// canonical drops leading zeros so "007" reads as 7.
func canonical(digits string) string {
	if s := strings.TrimLeft(digits, "0"); s != "" {
		return s
	}
	return "0"
}
