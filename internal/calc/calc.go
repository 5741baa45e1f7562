// Package calc evaluates calculator expressions by textual rewriting.
//
// Constants, function calls and parenthesised groups are replaced by their
// decimal values, innermost first, until only a flat string of numbers and
// the operators + - * / ^ is left; that string is then reduced by operator
// precedence. Several clauses can be joined with ':' and "[a,b](f)" computes
// a definite integral of f over x.
package calc

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"keycalc/internal/numeric"
)

// ClauseSep separates independent clauses in one input.
const ClauseSep = ":"

// Options bounds the engine. Zero fields take the DefaultOptions value.
type Options struct {
	// MaxInput is the longest accepted input, in runes.
	MaxInput int
	// MaxBuffer caps the working string after each rewrite, in bytes.
	MaxBuffer int
	// MaxDepth caps nesting of parentheses and function calls.
	MaxDepth int
	// MaxTokens is the number of number slots (and of operator slots) the
	// flat evaluator has.
	MaxTokens int
	// Digits is the number of fractional digits in results.
	Digits int
	// SpliceDigits is the number of fractional digits used for values
	// written back into an expression.
	SpliceDigits int
	// Step is the nominal trapezoid width for integrals.
	Step float64
	// MaxSamples caps the integrand evaluations of one quadrature pass.
	MaxSamples int
}

// DefaultOptions returns the limits of the original keypad calculator.
func DefaultOptions() Options {
	return Options{
		MaxInput:     79,
		MaxBuffer:    256,
		MaxDepth:     32,
		MaxTokens:    20,
		Digits:       7,
		SpliceDigits: 10,
		Step:         0.001,
		MaxSamples:   200000,
	}
}

// Engine evaluates expressions. It holds no mutable state, so one Engine can
// be shared freely.
type Engine struct {
	opt Options

	piText string
	eText  string
}

// New creates an engine, filling unset options from DefaultOptions.
func New(opt Options) *Engine {
	def := DefaultOptions()
	if opt.MaxInput <= 0 {
		opt.MaxInput = def.MaxInput
	}
	if opt.MaxBuffer <= 0 {
		opt.MaxBuffer = def.MaxBuffer
	}
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = def.MaxDepth
	}
	if opt.MaxTokens <= 0 {
		opt.MaxTokens = def.MaxTokens
	}
	if opt.Digits <= 0 {
		opt.Digits = def.Digits
	}
	if opt.SpliceDigits <= 0 {
		opt.SpliceDigits = def.SpliceDigits
	}
	if opt.Step <= 0 {
		opt.Step = def.Step
	}
	if opt.MaxSamples <= 0 {
		opt.MaxSamples = def.MaxSamples
	}
	return &Engine{
		opt:    opt,
		piText: strconv.FormatFloat(numeric.Pi, 'f', opt.SpliceDigits, 64),
		eText:  strconv.FormatFloat(numeric.E, 'f', opt.SpliceDigits, 64),
	}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opt
}

// Result is what the display shows for one evaluation. Text is either the
// formatted value(s) or the error string; Estimate is only set for integrals.
type Result struct {
	Text     string
	Estimate string
	Err      error
	Integral bool
}

// OK reports whether the evaluation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Evaluate runs one complete input: an integral if it starts with '[',
// otherwise one or more ':' separated clauses.
func (e *Engine) Evaluate(expr string) Result {
	if err := e.checkInput(expr); err != nil {
		return Result{Text: err.Error(), Err: err, Integral: IsIntegral(expr)}
	}
	if IsIntegral(expr) {
		in, err := e.integrate(expr)
		if err != nil {
			return Result{Text: err.Error(), Err: err, Integral: true}
		}
		return Result{
			Text:     e.Format(in.Value),
			Estimate: FormatEstimate(in.Estimate),
			Integral: true,
		}
	}
	text, err := e.clauses(expr)
	if err != nil {
		return Result{Text: err.Error(), Err: err}
	}
	return Result{Text: text}
}

// EvaluateClauses splits expr on ':' and evaluates every clause on its own.
// Empty clauses are skipped. The first failing clause fails the whole input.
func (e *Engine) EvaluateClauses(expr string) (string, error) {
	if err := e.checkInput(expr); err != nil {
		return "", err
	}
	return e.clauses(expr)
}

func (e *Engine) clauses(expr string) (string, error) {
	var out []string
	for _, part := range strings.Split(expr, ClauseSep) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := e.resolve(part, 0)
		if err != nil {
			return "", err
		}
		out = append(out, e.Format(v))
	}
	if len(out) == 0 {
		return "", fail(EmptyExpression, expr)
	}
	return strings.Join(out, ClauseSep), nil
}

// Resolve evaluates a single clause to a number.
func (e *Engine) Resolve(expr string) (float64, error) {
	if err := e.checkInput(expr); err != nil {
		return 0, err
	}
	return e.resolve(expr, 0)
}

func (e *Engine) checkInput(expr string) error {
	if utf8.RuneCountInString(expr) > e.opt.MaxInput {
		return fail(InputTooLong, expr)
	}
	return nil
}

// IsIntegral reports whether expr uses the "[a,b](f)" form.
func IsIntegral(expr string) bool {
	return strings.HasPrefix(strings.TrimSpace(expr), "[")
}
