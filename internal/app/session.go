package app

import (
	"strings"
	"time"

	"keycalc/internal/calc"
	"keycalc/internal/keypad"
	"keycalc/internal/storage"
)

// Mode is the keypad layer that interprets the next key.
type Mode uint8

const (
	ModePrimary Mode = iota
	ModeSecondary
	ModeCursor
)

func (m Mode) String() string {
	switch m {
	case ModeSecondary:
		return "secondary"
	case ModeCursor:
		return "cursor"
	}
	return "primary"
}

// SecondaryBanner is shown on the second LCD line in secondary mode.
const SecondaryBanner = "Secondary Mode"

// Session is the calculator state behind one display: the edited
// expression, the last result and the keypad mode. It is not safe for
// concurrent use.
type Session struct {
	engine *calc.Engine
	width  int
	rows   int

	buf    []byte
	cursor int
	offset int

	mode    Mode
	lastKey byte
	// index of the byte the previous key inserted, or -1
	lastInsert int

	lastInput   string
	savedResult string
	result      calc.Result
	showing     bool

	history      []storage.Entry
	historyLimit int

	// OnEvaluate, if set, is called after every '=' with the evaluated
	// expression.
	OnEvaluate func(expr string, r calc.Result, elapsed time.Duration)

	now func() time.Time
}

// NewSession creates an empty session for a display width columns wide
// and rows lines high.
func NewSession(engine *calc.Engine, width, rows int) *Session {
	if width < 1 {
		width = 16
	}
	if rows < 2 {
		rows = 2
	}
	return &Session{
		engine:     engine,
		width:      width,
		rows:       rows,
		lastInsert: -1,
		now:        time.Now,
	}
}

// SetEngine swaps the evaluator, e.g. after a config reload. An input longer
// than the new limit is cut.
func (s *Session) SetEngine(engine *calc.Engine) {
	s.engine = engine
	if limit := s.capacity(); len(s.buf) > limit {
		s.buf = s.buf[:limit]
		if s.cursor > limit {
			s.cursor = limit
		}
	}
	s.scroll()
}

// SetDisplay changes the display geometry.
func (s *Session) SetDisplay(width, rows int) {
	if width >= 1 {
		s.width = width
	}
	if rows >= 2 {
		s.rows = rows
	}
	s.offset = 0
	s.scroll()
}

// SetHistoryLimit bounds the kept history; zero keeps everything.
func (s *Session) SetHistoryLimit(n int) {
	s.historyLimit = n
	s.history = storage.Trim(s.history, n)
}

// SetHistory replaces the history, e.g. after loading it from disk. The
// newest entry becomes the recallable last input.
func (s *Session) SetHistory(entries []storage.Entry) {
	s.history = storage.Trim(append([]storage.Entry(nil), entries...), s.historyLimit)
	if n := len(s.history); n > 0 {
		s.lastInput = s.history[n-1].Expr
	}
}

// History returns the evaluated inputs, oldest first.
func (s *Session) History() []storage.Entry {
	return s.history
}

// Buffer returns the expression being edited.
func (s *Session) Buffer() string { return string(s.buf) }

// Cursor returns the insertion point as an index into Buffer.
func (s *Session) Cursor() int { return s.cursor }

// Mode returns the active keypad layer.
func (s *Session) Mode() Mode { return s.mode }

// Showing reports whether the display holds a result.
func (s *Session) Showing() bool { return s.showing }

// Result returns the last evaluation.
func (s *Session) Result() calc.Result { return s.result }

// LastInput returns the last evaluated expression.
func (s *Session) LastInput() string { return s.lastInput }

// SavedResult returns the last successful result text.
func (s *Session) SavedResult() string { return s.savedResult }

func (s *Session) capacity() int {
	return s.engine.Options().MaxInput
}

// Press feeds one keypad key. Keys that are not on the keypad are ignored.
func (s *Session) Press(key byte) {
	if !keypad.Valid(key) {
		return
	}
	prev := s.lastKey
	inserted := s.lastInsert
	s.lastKey = key
	s.lastInsert = -1
	defer s.scroll()

	switch s.mode {
	case ModeCursor:
		s.pressCursor(key, prev)
		return
	case ModeSecondary:
		s.pressSecondary(key)
		return
	}

	switch {
	case key == '*' && prev == '*':
		s.undo(inserted)
		s.enter(ModeCursor)
	case key == '.' && prev == '.':
		s.undo(inserted)
		s.enter(ModeSecondary)
	case key == '/' && prev == '/':
		s.Clear()
	case key == '=':
		s.Evaluate()
	case key == '.':
		if s.showing {
			s.restart("")
		} else if s.inNumeralWithPoint() {
			return
		}
		s.insert(".")
	case keypad.IsDigit(key):
		if s.showing {
			s.restart("")
		}
		s.insert(string(key))
	case keypad.IsOperator(key):
		if s.showing {
			s.continueFromResult()
		}
		s.insert(string(key))
	}
}

func (s *Session) pressSecondary(key byte) {
	s.mode = ModePrimary
	tok, ok := keypad.SecondaryToken(key)
	if !ok {
		return
	}
	if s.showing {
		if tok == "^" || tok == calc.ClauseSep {
			s.continueFromResult()
		} else {
			s.restart("")
		}
	}
	s.insert(tok)
}

func (s *Session) pressCursor(key byte, prev byte) {
	switch {
	case key == '*' && prev == '*':
		s.enter(ModePrimary)
		return
	case key == '.' && prev == '.':
		s.enter(ModeSecondary)
		return
	case !keypad.IsDigit(key):
		return
	}
	s.showing = false
	switch key {
	case keypad.CursorLeft:
		s.MoveLeft()
	case keypad.CursorRight:
		s.MoveRight()
	case keypad.CursorDelete:
		s.Backspace()
	case keypad.CursorRecall:
		if s.lastInput != "" {
			s.restart(s.lastInput)
		}
	case keypad.CursorVariable:
		s.insert(calc.Placeholder)
	case keypad.CursorIntegral:
		at := s.cursor
		if s.insert(keypad.IntegralTemplate) {
			s.cursor = at + len(keypad.IntegralTemplate) - 1
		}
	case keypad.CursorResult:
		if s.savedResult != "" {
			s.insert(s.savedResult)
		}
	case keypad.CursorEstimate:
		if est := strings.TrimPrefix(s.result.Estimate, "R:"); est != "" {
			s.insert(est)
		}
	}
}

// enter switches layer and forgets the key so a third press starts over.
func (s *Session) enter(m Mode) {
	s.mode = m
	s.lastKey = 0
}

// undo removes the byte the previous key inserted.
func (s *Session) undo(at int) {
	if at < 0 || at >= len(s.buf) {
		return
	}
	s.buf = append(s.buf[:at], s.buf[at+1:]...)
	if s.cursor > at {
		s.cursor--
	}
}

// insert places text at the cursor. It refuses text that would overflow
// the input limit.
func (s *Session) insert(text string) bool {
	if len(s.buf)+len(text) > s.capacity() {
		return false
	}
	at := s.cursor
	s.buf = append(s.buf[:at], append([]byte(text), s.buf[at:]...)...)
	s.cursor += len(text)
	if len(text) == 1 {
		s.lastInsert = at
	}
	return true
}

func (s *Session) restart(text string) {
	if len(text) > s.capacity() {
		text = text[:s.capacity()]
	}
	s.buf = append(s.buf[:0], text...)
	s.cursor = len(s.buf)
	s.offset = 0
	s.showing = false
}

// continueFromResult makes the shown result the start of the next input.
// A failed evaluation leaves nothing to continue from.
func (s *Session) continueFromResult() {
	if s.result.OK() {
		s.restart(s.result.Text)
		return
	}
	s.restart("")
}

// inNumeralWithPoint reports whether the digit run around the cursor
// already has a decimal point.
func (s *Session) inNumeralWithPoint() bool {
	for i := s.cursor - 1; i >= 0; i-- {
		c := s.buf[i]
		if c == '.' {
			return true
		}
		if !keypad.IsDigit(c) {
			break
		}
	}
	for i := s.cursor; i < len(s.buf); i++ {
		c := s.buf[i]
		if c == '.' {
			return true
		}
		if !keypad.IsDigit(c) {
			break
		}
	}
	return false
}

// MoveLeft moves the cursor one position left.
func (s *Session) MoveLeft() {
	if s.cursor > 0 {
		s.cursor--
	}
	s.scroll()
}

// MoveRight moves the cursor one position right.
func (s *Session) MoveRight() {
	if s.cursor < len(s.buf) {
		s.cursor++
	}
	s.scroll()
}

// Backspace deletes the byte before the cursor.
func (s *Session) Backspace() {
	if s.cursor == 0 {
		return
	}
	s.showing = false
	s.buf = append(s.buf[:s.cursor-1], s.buf[s.cursor:]...)
	s.cursor--
	s.scroll()
}

// Clear empties the input and the shown result. The last input and the
// saved result stay recallable.
func (s *Session) Clear() {
	s.buf = s.buf[:0]
	s.cursor, s.offset = 0, 0
	s.result = calc.Result{}
	s.showing = false
	s.mode = ModePrimary
	s.lastKey = 0
	s.lastInsert = -1
}

// Evaluate runs the current input, as the '=' key does. An empty input is
// ignored.
func (s *Session) Evaluate() {
	if len(s.buf) == 0 {
		return
	}
	expr := string(s.buf)
	start := s.now()
	r := s.engine.Evaluate(expr)
	elapsed := s.now().Sub(start)

	s.lastInput = expr
	s.result = r
	if r.OK() {
		s.savedResult = r.Text
	}
	s.showing = true
	s.cursor = len(s.buf)
	s.history = storage.Trim(append(s.history, storage.Entry{
		Time:     start,
		Expr:     expr,
		Result:   r.Text,
		Estimate: r.Estimate,
	}), s.historyLimit)
	if s.OnEvaluate != nil {
		s.OnEvaluate(expr, r, elapsed)
	}
}

// scroll keeps the cursor inside the visible window of the first line.
func (s *Session) scroll() {
	if len(s.buf) <= s.width {
		s.offset = 0
		return
	}
	if s.cursor < s.offset {
		s.offset = s.cursor
	} else if s.cursor >= s.offset+s.width {
		s.offset = s.cursor - s.width + 1
	}
}

// Lines renders the display: the input window and the status line, then
// the newest history entries on any extra rows. Every line is exactly
// width characters.
func (s *Session) Lines() []string {
	lines := make([]string, s.rows)
	end := s.offset + s.width
	if end > len(s.buf) {
		end = len(s.buf)
	}
	lines[0] = string(s.buf[s.offset:end])

	switch {
	case s.mode == ModeCursor:
		lines[1] = s.marker('^')
	case s.mode == ModeSecondary:
		lines[1] = SecondaryBanner
	case s.showing && s.result.Integral && s.result.OK():
		lines[0] = s.result.Text
		lines[1] = s.result.Estimate
	case s.showing:
		lines[1] = s.result.Text
	default:
		lines[1] = s.marker('_')
	}

	for i, h := 2, len(s.history)-1; i < s.rows && h >= 0; i, h = i+1, h-1 {
		e := s.history[h]
		lines[i] = e.Expr + "=" + e.Result
	}
	for i := range lines {
		lines[i] = fit(lines[i], s.width)
	}
	return lines
}

func (s *Session) marker(c byte) string {
	line := []byte(strings.Repeat(" ", s.width))
	if p := s.cursor - s.offset; p >= 0 && p < s.width {
		line[p] = c
	}
	return string(line)
}

// fit pads or cuts str to exactly width runes.
func fit(str string, width int) string {
	r := []rune(str)
	if len(r) >= width {
		return string(r[:width])
	}
	return str + strings.Repeat(" ", width-len(r))
}
