package calc

import (
	"strings"
)

// Placeholder is the bound variable of an integrand.
const Placeholder = "x"

// IntegralRequest is the parsed "[lower,upper](integrand)" form.
type IntegralRequest struct {
	Lower     string
	Upper     string
	Integrand string
}

// Integral is the outcome of a quadrature.
type Integral struct {
	Lower, Upper float64
	// Value is the trapezoid result at the nominal step.
	Value float64
	// Estimate is |Value - result at half the step|.
	Estimate float64
	// Samples counts integrand evaluations over both passes.
	Samples int
}

// ParseIntegral splits an integral expression into its parts without
// evaluating anything.
func ParseIntegral(expr string) (IntegralRequest, error) {
	var req IntegralRequest
	s := strings.TrimSpace(expr)
	lb := strings.IndexByte(s, '[')
	rb := strings.IndexByte(s, ']')
	if lb != 0 || rb < 0 {
		return req, fail(MissingBrackets, expr)
	}
	bounds := s[lb+1 : rb]
	comma := strings.IndexByte(bounds, ',')
	if comma < 0 {
		return req, fail(MissingComma, bounds)
	}
	req.Lower = bounds[:comma]
	req.Upper = bounds[comma+1:]

	rest := strings.TrimLeft(s[rb+1:], " \t")
	if !strings.HasPrefix(rest, "(") {
		return req, fail(MissingOpenParen, rest)
	}
	end, err := matchParen(rest, 0)
	if err != nil {
		return req, err
	}
	req.Integrand = rest[1:end]
	if strings.TrimSpace(req.Integrand) == "" || strings.TrimSpace(rest[end+1:]) != "" {
		return req, fail(InvalidIntegrand, rest)
	}
	return req, nil
}

// Integrate evaluates "[a,b](f)" with the composite trapezoid rule and
// estimates the error by repeating at half the step.
func (e *Engine) Integrate(expr string) (Integral, error) {
	if err := e.checkInput(expr); err != nil {
		return Integral{}, err
	}
	return e.integrate(expr)
}

func (e *Engine) integrate(expr string) (Integral, error) {
	var in Integral
	req, err := ParseIntegral(expr)
	if err != nil {
		return in, err
	}
	if in.Lower, err = e.resolve(req.Lower, 0); err != nil {
		return in, &Error{Code: InvalidBound, Text: req.Lower, Cause: err}
	}
	if in.Upper, err = e.resolve(req.Upper, 0); err != nil {
		return in, &Error{Code: InvalidBound, Text: req.Upper, Cause: err}
	}

	a, b, sign := in.Lower, in.Upper, 1.0
	if b < a {
		a, b, sign = b, a, -1
	}
	coarse, n1, err := e.trapezoid(req.Integrand, a, b, e.opt.Step)
	if err != nil {
		return in, err
	}
	fine, n2, err := e.trapezoid(req.Integrand, a, b, e.opt.Step/2)
	if err != nil {
		return in, err
	}
	in.Value = sign * coarse
	in.Estimate = coarse - fine
	if in.Estimate < 0 {
		in.Estimate = -in.Estimate
	}
	in.Samples = n1 + n2
	return in, nil
}

// trapezoid integrates f over [a, b], a <= b. The interval is cut into
// floor((b-a)/h) pieces (at least one) of equal width so the last sample
// lands on b. It returns the sum and the number of samples taken.
func (e *Engine) trapezoid(f string, a, b, h float64) (float64, int, error) {
	if a == b {
		return 0, 0, nil
	}
	// the fuzz keeps (1-0)/0.001 = 999.9999999999999 at 1000 pieces
	pieces := (b-a)/h + 1e-9
	if pieces+1 > float64(e.opt.MaxSamples) {
		return 0, 0, fail(TooManySamples, f)
	}
	n := int(pieces)
	if n < 1 {
		n = 1
	}
	step := (b - a) / float64(n)

	fa, err := e.sample(f, a)
	if err != nil {
		return 0, 0, err
	}
	fb, err := e.sample(f, b)
	if err != nil {
		return 0, 0, err
	}
	sum := fa + fb
	for i := 1; i < n; i++ {
		fx, err := e.sample(f, a+float64(i)*step)
		if err != nil {
			return 0, 0, err
		}
		sum += 2 * fx
	}
	return sum * step / 2, n + 1, nil
}

// sample evaluates the integrand with every placeholder replaced by x.
func (e *Engine) sample(f string, x float64) (float64, error) {
	s := strings.ReplaceAll(f, Placeholder, formatFixed(x, e.opt.SpliceDigits))
	if len(s) > e.opt.MaxBuffer {
		return 0, fail(BufferFull, s)
	}
	return e.resolve(s, 0)
}
