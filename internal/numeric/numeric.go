// Package numeric holds the series and iteration based primitives the
// calculator evaluates with. Nothing here calls into package math.
package numeric

import "errors"

// Pi and E are the constants the primitives are built on.
const (
	Pi = 3.14159265358979323846
	E  = 2.71828182845904523536
)

// Terms is the iteration bound shared by every series and Newton loop.
const Terms = 20

const (
	twoPi = 2 * Pi
	// above this the repeated-multiplication loop switches to squaring
	linearPowLimit = 1024
	// largest angle (radians) that still reduces into [0, 2pi) meaningfully
	maxAngle = 1e15
)

// Domain errors returned by the primitives.
var (
	ErrUndefinedPower = errors.New("numeric: undefined power")
	ErrInvalidLog     = errors.New("numeric: logarithm of non-positive number")
	ErrNegativeSqrt   = errors.New("numeric: square root of negative number")
	ErrAngleRange     = errors.New("numeric: angle out of range")
)

// Unit selects how Sine interprets its argument.
type Unit uint8

const (
	Degrees Unit = iota
	Radians
)

func (u Unit) String() string {
	if u == Radians {
		return "rad"
	}
	return "deg"
}

// Abs returns |x|.
func Abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// isInteger reports whether x has no fractional part. Values too large to
// fit an int64 are always integral for a float64.
func isInteger(x float64) bool {
	if Abs(x) >= 1<<62 {
		return true
	}
	return float64(int64(x)) == x
}

// Power returns base raised to exponent.
//
// Integer exponents are computed by repeated multiplication, taking the
// reciprocal for negative exponents. Other exponents go through
// Exp(exponent * NaturalLog(base)) and need a positive base.
func Power(base, exponent float64) (float64, error) {
	if base == 0 {
		if exponent > 0 {
			return 0, nil
		}
		return 0, ErrUndefinedPower
	}
	if exponent == 0 {
		return 1, nil
	}
	if isInteger(exponent) {
		return intPower(base, exponent), nil
	}
	if base < 0 {
		return 0, ErrUndefinedPower
	}
	ln, err := NaturalLog(base)
	if err != nil {
		return 0, err
	}
	return Exp(exponent * ln), nil
}

// intPower expects an integral, non-zero exponent.
func intPower(base, exponent float64) float64 {
	neg := exponent < 0
	n := Abs(exponent)
	result := 1.0
	if n <= linearPowLimit {
		for i := 0; i < int(n); i++ {
			result *= base
		}
	} else {
		// square-and-multiply over the float exponent
		b := base
		for n >= 1 {
			half := n / 2
			if n < 1<<53 {
				half = float64(int64(half))
			}
			if n-2*half == 1 {
				result *= b
			}
			b *= b
			n = half
			if result == 0 {
				break
			}
		}
	}
	if neg {
		return 1 / result
	}
	return result
}

// Exp is the Taylor series of e^x around 0.
func Exp(x float64) float64 {
	sum := 1.0
	term := 1.0
	for n := 1; n < Terms; n++ {
		term *= x / float64(n)
		sum += term
	}
	return sum
}

// NaturalLog returns ln(x) using 2 * sum z^(2n+1)/(2n+1) with
// z = (x-1)/(x+1). Accuracy drops as x moves away from 1.
func NaturalLog(x float64) (float64, error) {
	if x <= 0 {
		return 0, ErrInvalidLog
	}
	z := (x - 1) / (x + 1)
	sum := 0.0
	for n := 0; n < Terms; n++ {
		k := float64(2*n + 1)
		sum += intPower(z, k) / k
	}
	return 2 * sum, nil
}

// Sqrt uses Newton-Raphson seeded with x itself.
func Sqrt(x float64) (float64, error) {
	if x < 0 {
		return 0, ErrNegativeSqrt
	}
	if x == 0 {
		return 0, nil
	}
	guess := x
	for i := 0; i < Terms; i++ {
		next := 0.5 * (guess + x/guess)
		if Abs(next-guess) < 1e-12 {
			break
		}
		guess = next
	}
	return guess, nil
}

// Factorial is the iterative product 1*2*...*n.
func Factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

// Sine evaluates a 20 term Maclaurin series after normalising the angle
// into [0, 2pi).
func Sine(x float64, unit Unit) (float64, error) {
	if unit == Degrees {
		x = x * Pi / 180
	}
	x, err := normalize(x)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for n := 0; n < Terms; n++ {
		k := 2*n + 1
		term := intPower(x, float64(k)) / Factorial(k)
		if n%2 == 1 {
			term = -term
		}
		sum += term
	}
	return sum, nil
}

func normalize(x float64) (float64, error) {
	if x != x || Abs(x) > maxAngle {
		return 0, ErrAngleRange
	}
	if Abs(x) >= twoPi {
		x -= twoPi * float64(int64(x/twoPi))
	}
	for x < 0 {
		x += twoPi
	}
	for x >= twoPi {
		x -= twoPi
	}
	return x, nil
}
