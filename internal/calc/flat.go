package calc

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"keycalc/internal/numeric"
)

// Operators is the closed set of binary operators.
const Operators = "+-*/^"

// signContext holds the characters after which '-' starts a literal
// instead of subtracting.
const signContext = "(" + Operators

// tokens is the output of the lexer: len(nums) == len(ops)+1 on success.
type tokens struct {
	nums []float64
	ops  []byte
}

// tokenize splits a flat expression into numbers and operators.
func (e *Engine) tokenize(s string) (tokens, error) {
	t := tokens{
		nums: make([]float64, 0, e.opt.MaxTokens),
		ops:  make([]byte, 0, e.opt.MaxTokens),
	}
	var prev byte // last non-space character, 0 at the start
	expectNum := true
	neg := false
	signed := false
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
			continue
		case c == '-' && expectNum && (prev == 0 || strings.IndexByte(signContext, prev) >= 0):
			neg = !neg
			signed = true
		case isDigit(c) || c == '.':
			if !expectNum {
				return t, fail(InvalidToken, s)
			}
			j := scanNumber(s, i)
			v, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				if errors.Is(err, strconv.ErrRange) && math.IsInf(v, 0) {
					return t, fail(Overflow, s)
				}
				return t, fail(InvalidNumber, s)
			}
			if neg {
				v = -v
			}
			if len(t.nums) == e.opt.MaxTokens {
				return t, fail(TooManyTokens, s)
			}
			t.nums = append(t.nums, v)
			neg, signed, expectNum = false, false, false
			prev = s[j-1]
			i = j
			continue
		case strings.IndexByte(Operators, c) >= 0:
			if expectNum {
				return t, fail(MissingOperand, s)
			}
			if len(t.ops) == e.opt.MaxTokens {
				return t, fail(TooManyTokens, s)
			}
			t.ops = append(t.ops, c)
			expectNum = true
		default:
			return t, fail(InvalidToken, s)
		}
		prev = c
		i++
	}
	switch {
	case len(t.nums) == 0 && !signed:
		return t, fail(EmptyExpression, s)
	case expectNum:
		return t, fail(MissingOperand, s)
	}
	return t, nil
}

// scanNumber returns the end of the numeral starting at i: digits and
// points, plus an exponent marker with its optional sign. ParseFloat
// rejects malformed runs such as "1.2.3" or "1e".
func scanNumber(s string, i int) int {
	j := i
	for j < len(s) {
		c := s[j]
		switch {
		case isDigit(c) || c == '.':
			j++
		case c == 'e' || c == 'E':
			j++
			if j < len(s) && (s[j] == '+' || s[j] == '-') {
				j++
			}
		default:
			return j
		}
	}
	return j
}

// evalFlat reduces a string holding only numbers and operators.
func (e *Engine) evalFlat(s string) (float64, error) {
	t, err := e.tokenize(s)
	if err != nil {
		return 0, err
	}
	nums, ops := t.nums, t.ops

	// ^ binds right to left: scan from the last operator.
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i] != '^' {
			continue
		}
		v, err := numeric.Power(nums[i], nums[i+1])
		if err != nil {
			return 0, primitiveError(err, s)
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fail(Overflow, s)
		}
		nums, ops = collapse(nums, ops, i, v)
	}

	for i := 0; i < len(ops); {
		var v float64
		switch ops[i] {
		case '*':
			v = nums[i] * nums[i+1]
		case '/':
			if nums[i+1] == 0 {
				return 0, fail(DivideByZero, s)
			}
			v = nums[i] / nums[i+1]
		default:
			i++
			continue
		}
		if math.IsInf(v, 0) {
			return 0, fail(Overflow, s)
		}
		nums, ops = collapse(nums, ops, i, v)
	}

	acc := nums[0]
	for i, op := range ops {
		if op == '+' {
			acc += nums[i+1]
		} else {
			acc -= nums[i+1]
		}
	}
	if math.IsInf(acc, 0) {
		return 0, fail(Overflow, s)
	}
	return acc, nil
}

// collapse replaces nums[i], ops[i], nums[i+1] with v, compacting in place.
func collapse(nums []float64, ops []byte, i int, v float64) ([]float64, []byte) {
	nums[i] = v
	nums = append(nums[:i+1], nums[i+2:]...)
	ops = append(ops[:i], ops[i+1:]...)
	return nums, ops
}

// primitiveError converts a numeric domain error to the engine's error.
func primitiveError(err error, text string) error {
	code := CodeNone
	switch {
	case errors.Is(err, numeric.ErrNegativeSqrt):
		code = NegativeSqrt
	case errors.Is(err, numeric.ErrInvalidLog):
		code = InvalidLog
	case errors.Is(err, numeric.ErrUndefinedPower):
		code = UndefinedPower
	case errors.Is(err, numeric.ErrAngleRange):
		code = AngleRange
	}
	return &Error{Code: code, Text: text, Cause: err}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
