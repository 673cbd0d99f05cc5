// Package expr evaluates infix arithmetic over decimal numbers.
//
// Expressions are tokenized and parsed with a small recursive-descent parser;
// input text is never executed. Arithmetic is exact (math/big rationals), so
// long digit chains keep every digit. Grammar:
//
//	expression = term { ("+" | "-") term } .
//	term       = factor { ("*" | "/") factor } .
//	factor     = [ "+" | "-" ] factor | number | "(" expression ")" .
package expr

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

var (
	// ErrDivisionByZero is returned when any divisor evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrParse is returned for empty, malformed or otherwise unevaluable input.
	ErrParse = errors.New("invalid expression")
)

// SyntaxError describes where parsing failed. It matches ErrParse with errors.Is.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid expression: %s at offset %d", e.Msg, e.Pos)
}

// Is reports ErrParse as the sentinel for every syntax error.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrParse
}

// Evaluate computes text and returns "<text> = <result>".
func Evaluate(text string) (string, error) {
	v, err := Value(text)
	if err != nil {
		return "", err
	}
	return text + " = " + FormatNumber(v), nil
}

// maxResult bounds results to what a float64 can hold.
var maxResult = new(big.Rat).SetFloat64(math.MaxFloat64)

// Value computes text and returns the exact result.
func Value(text string) (*big.Rat, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 {
		return nil, &SyntaxError{Pos: 0, Msg: "empty input"}
	}

	p := &parser{tokens: tokens}
	v, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
	if new(big.Rat).Abs(v).Cmp(maxResult) > 0 {
		return nil, fmt.Errorf("%w: result out of range", ErrParse)
	}
	return v, nil
}

var (
	two  = big.NewInt(2)
	five = big.NewInt(5)
)

// FormatNumber renders v without a trailing ".0". Integers print every
// digit and terminating fractions print exactly. Repeating fractions print
// the shortest decimal that round-trips through a float64.
func FormatNumber(v *big.Rat) string {
	if v.IsInt() {
		return v.Num().String()
	}
	if digits, ok := terminatingDigits(v.Denom()); ok {
		return v.FloatString(digits)
	}
	f, _ := v.Float64()
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// terminatingDigits reports how many fraction digits 1/denom needs when it
// has a finite decimal expansion.
func terminatingDigits(denom *big.Int) (int, bool) {
	d := new(big.Int).Set(denom)
	strip := func(f *big.Int) int {
		n := 0
		for {
			q, r := new(big.Int).QuoRem(d, f, new(big.Int))
			if r.Sign() != 0 {
				return n
			}
			d = q
			n++
		}
	}
	twos, fives := strip(two), strip(five)
	if d.Cmp(big.NewInt(1)) != 0 {
		return 0, false
	}
	return max(twos, fives), true
}

// parseNumber reads a decimal literal ("12", "1.5", ".5", "3.") exactly.
// Leading zeros are plain decimal digits.
func parseNumber(lit string) (*big.Rat, bool) {
	whole, frac, _ := strings.Cut(lit, ".")
	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		digits = "0"
	}
	num, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, false
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(frac))), nil)
	return new(big.Rat).SetFrac(num, den), true
}

// Describe converts an evaluation error into the text shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDivisionByZero):
		return "Error: Division by Zero"
	default:
		return "Error: Invalid expression"
	}
}

// Result evaluates text and always returns display text, folding errors
// through Describe.
func Result(text string) string {
	out, err := Evaluate(text)
	if err != nil {
		return Describe(err)
	}
	return out
}

// maxDepth bounds nesting of parentheses and unary signs.
const maxDepth = 256

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expression(depth int) (*big.Rat, error) {
	left, err := p.term(depth)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.term(depth)
		if err != nil {
			return nil, err
		}
		if tok.text == "+" {
			left.Add(left, right)
		} else {
			left.Sub(left, right)
		}
	}
}

func (p *parser) term(depth int) (*big.Rat, error) {
	left, err := p.factor(depth)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.factor(depth)
		if err != nil {
			return nil, err
		}
		if tok.text == "*" {
			left.Mul(left, right)
			continue
		}
		if right.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		left.Quo(left, right)
	}
}

func (p *parser) factor(depth int) (*big.Rat, error) {
	if depth > maxDepth {
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: "nesting too deep"}
	}

	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		v, ok := parseNumber(tok.text)
		if !ok {
			return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("bad number %q", tok.text)}
		}
		return v, nil

	case tokenOp:
		if tok.text != "+" && tok.text != "-" {
			return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
		}
		v, err := p.factor(depth + 1)
		if err != nil {
			return nil, err
		}
		if tok.text == "-" {
			return v.Neg(v), nil
		}
		return v, nil

	case tokenLParen:
		v, err := p.expression(depth + 1)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "missing )"}
		}
		return v, nil

	case tokenEOF:
		return nil, &SyntaxError{Pos: tok.pos, Msg: "unexpected end of input"}

	default:
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
}
