package calc

import (
	"math"
	"strings"

	"keycalc/internal/numeric"
)

// function is one entry of the fixed call vocabulary. name includes the
// opening parenthesis.
type function struct {
	name  string
	apply func(float64) (float64, error)
}

var functions = []function{
	{"sin(", func(v float64) (float64, error) { return numeric.Sine(v, numeric.Degrees) }},
	{"s_(", func(v float64) (float64, error) { return numeric.Sine(v, numeric.Radians) }},
	{"root(", numeric.Sqrt},
	{"ln(", numeric.NaturalLog},
}

// resolve rewrites expr until it is flat and evaluates it. depth counts the
// enclosing calls and groups.
func (e *Engine) resolve(expr string, depth int) (float64, error) {
	if depth > e.opt.MaxDepth {
		return 0, fail(TooDeep, expr)
	}
	s, err := e.substituteConstants(expr)
	if err != nil {
		return 0, err
	}

	for {
		at, fn := findFunction(s)
		if fn == nil {
			break
		}
		open := at + len(fn.name) - 1
		end, err := matchParen(s, open)
		if err != nil {
			return 0, err
		}
		v, err := e.resolve(s[open+1:end], depth+1)
		if err != nil {
			return 0, err
		}
		v, err = fn.apply(v)
		if err != nil {
			return 0, primitiveError(err, s[at:end+1])
		}
		if s, err = e.splice(s, at, end+1, v); err != nil {
			return 0, err
		}
	}

	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			break
		}
		end, err := matchParen(s, open)
		if err != nil {
			return 0, err
		}
		v, err := e.resolve(s[open+1:end], depth+1)
		if err != nil {
			return 0, err
		}
		if s, err = e.splice(s, open, end+1, v); err != nil {
			return 0, err
		}
	}

	if strings.IndexByte(s, ')') >= 0 {
		return 0, fail(MissingOpenParen, s)
	}
	return e.evalFlat(s)
}

// substituteConstants replaces pi everywhere and e wherever neither
// neighbour is a digit, so "1e5" and "2e" keep their e. The check is
// textual only: "pie" or "ee" are not treated as anything special.
func (e *Engine) substituteConstants(expr string) (string, error) {
	s := strings.ReplaceAll(expr, "pi", e.piText)
	if strings.IndexByte(s, 'e') >= 0 {
		var b strings.Builder
		b.Grow(len(s) + len(e.eText))
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c == 'e' && !(i > 0 && isDigit(s[i-1])) && !(i+1 < len(s) && isDigit(s[i+1])) {
				b.WriteString(e.eText)
				continue
			}
			b.WriteByte(c)
		}
		s = b.String()
	}
	if len(s) > e.opt.MaxBuffer {
		return "", fail(BufferFull, expr)
	}
	return s, nil
}

// findFunction returns the leftmost call in s.
func findFunction(s string) (int, *function) {
	at := -1
	var found *function
	for i := range functions {
		k := strings.Index(s, functions[i].name)
		if k >= 0 && (at < 0 || k < at) {
			at, found = k, &functions[i]
		}
	}
	return at, found
}

// matchParen returns the index of the ')' closing the '(' at open.
func matchParen(s string, open int) (int, error) {
	level := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			level++
		case ')':
			level--
			if level == 0 {
				return i, nil
			}
		}
	}
	return 0, fail(MissingCloseParen, s[open:])
}

// splice returns s with s[from:to] replaced by the formatted value.
func (e *Engine) splice(s string, from, to int, v float64) (string, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", fail(Overflow, s[from:to])
	}
	num := formatFixed(v, e.opt.SpliceDigits)
	n := from + len(num) + len(s) - to
	if n > e.opt.MaxBuffer {
		return "", fail(BufferFull, s)
	}
	var b strings.Builder
	b.Grow(n)
	b.WriteString(s[:from])
	b.WriteString(num)
	b.WriteString(s[to:])
	return b.String(), nil
}
