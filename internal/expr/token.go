package expr

import "fmt"

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenOp
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// tokenize splits text into tokens terminated by a tokenEOF token.
// Numbers are digit runs with at most one decimal point.
func tokenize(text string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isDigit(c) || c == '.':
			start := i
			dots := 0
			for i < len(text) && (isDigit(text[i]) || text[i] == '.') {
				if text[i] == '.' {
					dots++
				}
				i++
			}
			lit := text[start:i]
			if dots > 1 || lit == "." {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("bad number %q", lit)}
			}
			tokens = append(tokens, token{kind: tokenNumber, text: lit, pos: start})

		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{kind: tokenOp, text: string(c), pos: i})
			i++

		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++

		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++

		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", rune(c))}
		}
	}
	return append(tokens, token{kind: tokenEOF, pos: len(text)}), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
