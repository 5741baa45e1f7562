package calc

import "strconv"

// Kind is the broad class of an evaluation failure.
type Kind uint8

const (
	KindNone Kind = iota
	Syntax
	Domain
	Arithmetic
	Capacity
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Domain:
		return "domain"
	case Arithmetic:
		return "arithmetic"
	case Capacity:
		return "capacity"
	}
	return "none"
}

// Code identifies one specific failure. Each code belongs to exactly one Kind
// and has a fixed display text.
type Code uint8

const (
	CodeNone Code = iota

	// syntax
	MissingCloseParen
	MissingOpenParen
	MissingBrackets
	MissingComma
	InvalidBound
	InvalidIntegrand
	InvalidToken
	InvalidNumber
	MissingOperand
	EmptyExpression

	// domain
	NegativeSqrt
	InvalidLog
	UndefinedPower
	AngleRange

	// arithmetic
	DivideByZero
	Overflow

	// capacity
	InputTooLong
	BufferFull
	TooManyTokens
	TooDeep
	TooManySamples
)

var codeText = [...]string{
	CodeNone:          "Error",
	MissingCloseParen: "Missing )",
	MissingOpenParen:  "Missing (",
	MissingBrackets:   "Invalid [a,b]",
	MissingComma:      "Missing comma",
	InvalidBound:      "Invalid a/b",
	InvalidIntegrand:  "Invalid func",
	InvalidToken:      "Syntax",
	InvalidNumber:     "Bad number",
	MissingOperand:    "Missing num",
	EmptyExpression:   "Empty",
	NegativeSqrt:      "Neg sqrt",
	InvalidLog:        "Inv log",
	UndefinedPower:    "Undef pow",
	AngleRange:        "Big angle",
	DivideByZero:      "Div/0",
	Overflow:          "Overflow",
	InputTooLong:      "Too long",
	BufferFull:        "Buffer full",
	TooManyTokens:     "Too many",
	TooDeep:           "Too deep",
	TooManySamples:    "Too wide",
}

// Kind returns the class the code belongs to.
func (c Code) Kind() Kind {
	switch {
	case c == CodeNone:
		return KindNone
	case c <= EmptyExpression:
		return Syntax
	case c <= AngleRange:
		return Domain
	case c <= Overflow:
		return Arithmetic
	}
	return Capacity
}

func (c Code) String() string {
	if int(c) < len(codeText) {
		return codeText[c]
	}
	return "code " + strconv.Itoa(int(c))
}

// Error is the only error type the engine returns. Text holds the
// sub-expression being evaluated when the failure was detected and is not
// part of the displayed message. Cause is set when a failure was re-coded on
// its way up, e.g. a bound that failed to resolve becomes InvalidBound.
type Error struct {
	Code  Code
	Text  string
	Cause error
}

// Error returns the display string, e.g. "Error: Div/0".
func (err *Error) Error() string {
	return "Error: " + err.Code.String()
}

// Kind is a shortcut for err.Code.Kind().
func (err *Error) Kind() Kind {
	return err.Code.Kind()
}

// Is matches any *Error with the same code, so the Err variables below work
// with errors.Is regardless of Text.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == err.Code
}

func (err *Error) Unwrap() error {
	return err.Cause
}

func fail(code Code, text string) error {
	return &Error{Code: code, Text: text}
}

// Sentinels for errors.Is.
var (
	ErrMissingCloseParen = &Error{Code: MissingCloseParen}
	ErrMissingOpenParen  = &Error{Code: MissingOpenParen}
	ErrMissingBrackets   = &Error{Code: MissingBrackets}
	ErrMissingComma      = &Error{Code: MissingComma}
	ErrInvalidBound      = &Error{Code: InvalidBound}
	ErrInvalidIntegrand  = &Error{Code: InvalidIntegrand}
	ErrInvalidToken      = &Error{Code: InvalidToken}
	ErrInvalidNumber     = &Error{Code: InvalidNumber}
	ErrMissingOperand    = &Error{Code: MissingOperand}
	ErrEmptyExpression   = &Error{Code: EmptyExpression}
	ErrNegativeSqrt      = &Error{Code: NegativeSqrt}
	ErrInvalidLog        = &Error{Code: InvalidLog}
	ErrUndefinedPower    = &Error{Code: UndefinedPower}
	ErrAngleRange        = &Error{Code: AngleRange}
	ErrDivideByZero      = &Error{Code: DivideByZero}
	ErrOverflow          = &Error{Code: Overflow}
	ErrInputTooLong      = &Error{Code: InputTooLong}
	ErrBufferFull        = &Error{Code: BufferFull}
	ErrTooManyTokens     = &Error{Code: TooManyTokens}
	ErrTooDeep           = &Error{Code: TooDeep}
	ErrTooManySamples    = &Error{Code: TooManySamples}
)
