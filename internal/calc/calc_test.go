package calc_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"keycalc/internal/calc"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"precedence", "2+3*4", "14"},
		{"pow-right-assoc", "2^3^2", "512"},
		{"parens", "(2+3)*4", "20"},
		{"nested-parens", "2*(3+(4-1))", "12"},
		{"div", "10/4", "2.5"},
		{"sub-left-assoc", "10-4-3", "3"},
		{"double-minus", "5--3", "8"},
		{"sign-binds-literal", "-2^2", "4"},
		{"neg-exponent", "2^-1", "0.5"},
		{"neg-group", "-(2+3)", "-5"},
		{"spaces", " 2 + 2 ", "4"},
		{"sci", "1e3+1", "1001"},
		{"sci-neg-exp", "1.5e-1*2", "0.3"},
		{"pi", "pi", "3.1415927"},
		{"e", "2*e", "5.4365637"},
		{"sqrt", "root(16)", "4"},
		{"sqrt-nested", "root(root(16))", "2"},
		{"sin-deg", "sin(30)", "0.5"},
		{"sin-deg-90", "sin(90)", "1"},
		{"sin-deg-neg", "sin(-90)", "-1"},
		{"sin-rad", "s_(0)", "0"},
		{"sin-rad-pi", "s_(pi)", "0"},
		{"ln-1", "ln(1)", "0"},
		{"ln-e", "ln(e)", "1"},
		{"func-in-expr", "1+root(9)*2", "7"},
		{"clauses", "1+1:2+2", "2:4"},
		{"clauses-empty", "1::2", "1:2"},
		{"clauses-three", "1:2*3:root(4)", "1:6:2"},
	}
	eng := calc.New(calc.Options{})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := eng.Evaluate(c.src)
			if r.Err != nil {
				t.Fatalf("%q: unexpected error %v", c.src, r.Err)
			}
			if r.Text != c.want {
				t.Errorf("%q: want %q, got %q", c.src, c.want, r.Text)
			}
			if r.Estimate != "" || r.Integral {
				t.Errorf("%q: clause result carries integral data: %+v", c.src, r)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	long := strings.Repeat("1+", 40) + "1"
	tooMany := strings.Repeat("1+", 20) + "1"
	cases := []struct {
		name string
		src  string
		want *calc.Error
		kind calc.Kind
		text string
	}{
		{"div0", "1/0", calc.ErrDivideByZero, calc.Arithmetic, "Error: Div/0"},
		{"div0-zero", "0/0", calc.ErrDivideByZero, calc.Arithmetic, "Error: Div/0"},
		{"div0-group", "5/(2-2)", calc.ErrDivideByZero, calc.Arithmetic, "Error: Div/0"},
		{"div0-in-func", "root(1/0)", calc.ErrDivideByZero, calc.Arithmetic, "Error: Div/0"},
		{"neg-sqrt", "root(-1)", calc.ErrNegativeSqrt, calc.Domain, "Error: Neg sqrt"},
		{"ln-0", "ln(0)", calc.ErrInvalidLog, calc.Domain, "Error: Inv log"},
		{"ln-neg", "ln(-5)", calc.ErrInvalidLog, calc.Domain, "Error: Inv log"},
		{"zero-pow-zero", "0^0", calc.ErrUndefinedPower, calc.Domain, "Error: Undef pow"},
		{"zero-pow-neg", "0^-1", calc.ErrUndefinedPower, calc.Domain, "Error: Undef pow"},
		{"neg-base-frac", "(-8)^0.5", calc.ErrUndefinedPower, calc.Domain, "Error: Undef pow"},
		{"overflow-pow", "10^400", calc.ErrOverflow, calc.Arithmetic, "Error: Overflow"},
		{"overflow-literal", "1e400", calc.ErrOverflow, calc.Arithmetic, "Error: Overflow"},
		{"missing-close", "(1+2", calc.ErrMissingCloseParen, calc.Syntax, "Error: Missing )"},
		{"missing-close-func", "sin(30", calc.ErrMissingCloseParen, calc.Syntax, "Error: Missing )"},
		{"missing-open", "1+2)", calc.ErrMissingOpenParen, calc.Syntax, "Error: Missing ("},
		{"trailing-op", "2*", calc.ErrMissingOperand, calc.Syntax, "Error: Missing num"},
		{"leading-op", "*2", calc.ErrMissingOperand, calc.Syntax, "Error: Missing num"},
		{"double-op", "2*/3", calc.ErrMissingOperand, calc.Syntax, "Error: Missing num"},
		{"empty", "", calc.ErrEmptyExpression, calc.Syntax, "Error: Empty"},
		{"empty-group", "2*()", calc.ErrEmptyExpression, calc.Syntax, "Error: Empty"},
		{"letters", "abc", calc.ErrInvalidToken, calc.Syntax, "Error: Syntax"},
		{"unknown-func", "cos(0)", calc.ErrInvalidToken, calc.Syntax, "Error: Syntax"},
		{"bad-number", "1.2.3", calc.ErrInvalidNumber, calc.Syntax, "Error: Bad number"},
		{"dangling-e", "2e", calc.ErrInvalidNumber, calc.Syntax, "Error: Bad number"},
		{"clause-error", "1+1:1/0", calc.ErrDivideByZero, calc.Arithmetic, "Error: Div/0"},
		{"clause-error-first", "root(-4):2+2", calc.ErrNegativeSqrt, calc.Domain, "Error: Neg sqrt"},
		{"too-long", long, calc.ErrInputTooLong, calc.Capacity, "Error: Too long"},
		{"too-many-tokens", tooMany, calc.ErrTooManyTokens, calc.Capacity, "Error: Too many"},
	}
	eng := calc.New(calc.Options{})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := eng.Evaluate(c.src)
			if r.Err == nil {
				t.Fatalf("%q: expected error, got %q", c.src, r.Text)
			}
			if !errors.Is(r.Err, c.want) {
				t.Errorf("%q: want %v, got %v", c.src, c.want.Code, r.Err)
			}
			var ce *calc.Error
			if !errors.As(r.Err, &ce) {
				t.Fatalf("%q: error %T is not *calc.Error", c.src, r.Err)
			}
			if ce.Kind() != c.kind {
				t.Errorf("%q: want kind %v, got %v", c.src, c.kind, ce.Kind())
			}
			if r.Text != c.text {
				t.Errorf("%q: want text %q, got %q", c.src, c.text, r.Text)
			}
		})
	}
}

func TestLimits(t *testing.T) {
	t.Run("depth", func(t *testing.T) {
		eng := calc.New(calc.Options{MaxDepth: 3})
		if _, err := eng.Resolve("(((1)))"); err != nil {
			t.Errorf("three levels should fit: %v", err)
		}
		if _, err := eng.Resolve("((((1))))"); !errors.Is(err, calc.ErrTooDeep) {
			t.Errorf("want TooDeep, got %v", err)
		}
		if _, err := eng.Resolve("root(root(root(root(16))))"); !errors.Is(err, calc.ErrTooDeep) {
			t.Errorf("want TooDeep for nested calls, got %v", err)
		}
	})
	t.Run("buffer", func(t *testing.T) {
		eng := calc.New(calc.Options{MaxBuffer: 20})
		if _, err := eng.Resolve("pi*pi"); !errors.Is(err, calc.ErrBufferFull) {
			t.Errorf("want BufferFull, got %v", err)
		}
		if _, err := eng.Resolve("pi"); err != nil {
			t.Errorf("pi alone should fit: %v", err)
		}
	})
	t.Run("tokens", func(t *testing.T) {
		eng := calc.New(calc.Options{MaxTokens: 3})
		if v, err := eng.Resolve("1+2+3"); err != nil || v != 6 {
			t.Errorf("want 6, got %v, %v", v, err)
		}
		if _, err := eng.Resolve("1+2+3+4"); !errors.Is(err, calc.ErrTooManyTokens) {
			t.Errorf("want TooManyTokens, got %v", err)
		}
	})
}

func TestResolve(t *testing.T) {
	cases := []struct {
		src  string
		want float64
		tol  float64
	}{
		{"2^0.5", math.Sqrt2, 1e-6},
		{"2^1.5", 2 * math.Sqrt2, 1e-6},
		{"pi", math.Pi, 1e-9},
		{"e", math.E, 1e-9},
		{"ln(2)", math.Ln2, 1e-9},
		{"sin(45)", math.Sqrt2 / 2, 1e-9},
		{"s_(pi/6)", 0.5, 1e-9},
		{"s_(-pi/2)", -1, 1e-9},
		{"root(2)", math.Sqrt2, 1e-9},
		{"1/3", 1.0 / 3, 1e-12},
	}
	eng := calc.New(calc.Options{})
	for _, c := range cases {
		v, err := eng.Resolve(c.src)
		if err != nil {
			t.Errorf("%q: unexpected error %v", c.src, err)
			continue
		}
		if math.Abs(v-c.want) > c.tol {
			t.Errorf("%q: want %g within %g, got %g", c.src, c.want, c.tol, v)
		}
	}
}

func TestTrim(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2.5000000", "2.5"},
		{"3.0000000", "3"},
		{"3.1400000", "3.14"},
		{"100", "100"},
		{"100.000", "100"},
		{"0.0", "0"},
		{"-1.2500", "-1.25"},
	}
	for _, c := range cases {
		if got := calc.Trim(c.in); got != c.want {
			t.Errorf("Trim(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestFormat(t *testing.T) {
	eng := calc.New(calc.Options{})
	cases := []struct {
		v    float64
		want string
	}{
		{2.5, "2.5"},
		{3, "3"},
		{1.0 / 3, "0.3333333"},
		{-1e-9, "0"},
		{-0.5, "-0.5"},
		{12345678, "12345678"},
	}
	for _, c := range cases {
		if got := eng.Format(c.v); got != c.want {
			t.Errorf("Format(%g): want %q, got %q", c.v, c.want, got)
		}
	}
	if got := calc.FormatEstimate(1.25e-7); got != "R:1.2500e-07" {
		t.Errorf("FormatEstimate: got %q", got)
	}
}

func TestIntegrate(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want float64
		tol  float64
	}{
		{"identity", "[0,1](x)", 0.5, 1e-9},
		{"square", "[0,1](x^2)", 1.0 / 3, 1e-6},
		{"const", "[0,2](3)", 6, 1e-9},
		{"sine", "[0,pi](s_(x))", 2, 1e-5},
		{"expr-bounds", "[1-1,root(4)](2*x)", 4, 1e-6},
		{"reversed", "[1,0](x)", -0.5, 1e-9},
		{"empty-interval", "[2,2](x)", 0, 0},
		{"spaces", " [0, 1] (x) ", 0.5, 1e-9},
	}
	eng := calc.New(calc.Options{})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in, err := eng.Integrate(c.src)
			if err != nil {
				t.Fatalf("%q: unexpected error %v", c.src, err)
			}
			if math.Abs(in.Value-c.want) > c.tol {
				t.Errorf("%q: want %g within %g, got %.10f", c.src, c.want, c.tol, in.Value)
			}
			if in.Estimate > 1e-5 {
				t.Errorf("%q: estimate too large: %g", c.src, in.Estimate)
			}
		})
	}
}

func TestIntegrateDetails(t *testing.T) {
	eng := calc.New(calc.Options{})
	in, err := eng.Integrate("[0,1](x)")
	if err != nil {
		t.Fatal(err)
	}
	if in.Samples != 1001+2001 {
		t.Errorf("want %d samples, got %d", 1001+2001, in.Samples)
	}
	if in.Estimate > 1e-10 {
		t.Errorf("linear integrand should have a negligible estimate, got %g", in.Estimate)
	}

	sq, err := eng.Integrate("[0,1](x^2)")
	if err != nil {
		t.Fatal(err)
	}
	// trapezoid error for x^2 is h^2/6, so R(h)-R(h/2) = h^2/8
	if want := 0.001 * 0.001 / 8; math.Abs(sq.Estimate-want) > 1e-9 {
		t.Errorf("want estimate %g, got %g", want, sq.Estimate)
	}
}

func TestEvaluateIntegral(t *testing.T) {
	eng := calc.New(calc.Options{})
	r := eng.Evaluate("[0,1](x)")
	if r.Err != nil {
		t.Fatal(r.Err)
	}
	if !r.Integral || r.Text != "0.5" {
		t.Errorf("want integral result 0.5, got %+v", r)
	}
	if !strings.HasPrefix(r.Estimate, "R:") || !strings.Contains(r.Estimate, "e") {
		t.Errorf("estimate not in R:<mantissa>e<exponent> form: %q", r.Estimate)
	}

	r = eng.Evaluate("[0,1](x^2)")
	if r.Text != "0.3333335" || r.Estimate != "R:1.2500e-07" {
		t.Errorf("unexpected x^2 result %+v", r)
	}
}

func TestIntegrateErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want *calc.Error
	}{
		{"no-close-bracket", "[0,1(x)", calc.ErrMissingBrackets},
		{"no-comma", "[01](x)", calc.ErrMissingComma},
		{"no-open-paren", "[0,1]x", calc.ErrMissingOpenParen},
		{"no-close-paren", "[0,1](x", calc.ErrMissingCloseParen},
		{"bad-bound", "[0,1/0](x)", calc.ErrInvalidBound},
		{"empty-bound", "[,1](x)", calc.ErrInvalidBound},
		{"empty-integrand", "[0,1]()", calc.ErrInvalidIntegrand},
		{"trailing", "[0,1](x)+1", calc.ErrInvalidIntegrand},
		{"sample-error", "[0,1](1/(x-x))", calc.ErrDivideByZero},
		{"sample-domain", "[0,1](ln(x))", calc.ErrInvalidLog},
		{"too-wide", "[0,1e9](x)", calc.ErrTooManySamples},
	}
	eng := calc.New(calc.Options{})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := eng.Integrate(c.src)
			if !errors.Is(err, c.want) {
				t.Errorf("%q: want %v, got %v", c.src, c.want.Code, err)
			}
			r := eng.Evaluate(c.src)
			if r.Err == nil || r.Text != r.Err.Error() || r.Estimate != "" {
				t.Errorf("%q: bad error result %+v", c.src, r)
			}
		})
	}
}

func TestInvalidBoundKeepsCause(t *testing.T) {
	eng := calc.New(calc.Options{})
	_, err := eng.Integrate("[0,1/0](x)")
	if !errors.Is(err, calc.ErrInvalidBound) || !errors.Is(err, calc.ErrDivideByZero) {
		t.Errorf("want InvalidBound wrapping DivideByZero, got %v", err)
	}
}

func TestCodeKinds(t *testing.T) {
	cases := []struct {
		code calc.Code
		kind calc.Kind
	}{
		{calc.MissingCloseParen, calc.Syntax},
		{calc.EmptyExpression, calc.Syntax},
		{calc.NegativeSqrt, calc.Domain},
		{calc.AngleRange, calc.Domain},
		{calc.DivideByZero, calc.Arithmetic},
		{calc.Overflow, calc.Arithmetic},
		{calc.InputTooLong, calc.Capacity},
		{calc.TooManySamples, calc.Capacity},
		{calc.CodeNone, calc.KindNone},
	}
	for _, c := range cases {
		if got := c.code.Kind(); got != c.kind {
			t.Errorf("%v: want %v, got %v", c.code, c.kind, got)
		}
	}
}
