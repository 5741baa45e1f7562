package app

import (
	"strings"
	"testing"
	"time"

	"keycalc/internal/calc"
)

func newTestSession(rows int) *Session {
	return NewSession(calc.New(calc.Options{}), 16, rows)
}

func typeKeys(s *Session, keys string) {
	for i := 0; i < len(keys); i++ {
		s.Press(keys[i])
	}
}

func pad(s string) string {
	return s + strings.Repeat(" ", 16-len(s))
}

func TestSessionEvaluate(t *testing.T) {
	cases := []struct {
		keys   string
		buffer string
		result string
	}{
		{"2+3*4=", "2+3*4", "14"},
		{"10/4=", "10/4", "2.5"},
		{"1.5.+.2=", "1.5+.2", "1.7"},
		{"2+2=*3=", "4*3", "12"},
		{"2+2=5", "5", ""},
		{"1/0=", "1/0", "Error: Div/0"},
		{"..1" + "30" + "..5=", "sin(30)", "0.5"},
		{"..6*2=", "pi*2", "6.2831853"},
		{"1..82=", "1:2", "1:2"},
	}
	for _, c := range cases {
		t.Run(c.keys, func(t *testing.T) {
			s := newTestSession(2)
			typeKeys(s, c.keys)
			if s.Buffer() != c.buffer {
				t.Errorf("buffer: want %q, got %q", c.buffer, s.Buffer())
			}
			if c.result == "" {
				if s.Showing() {
					t.Errorf("result still shown: %q", s.Result().Text)
				}
				return
			}
			if !s.Showing() || s.Result().Text != c.result {
				t.Errorf("result: want %q, got %q (showing %v)", c.result, s.Result().Text, s.Showing())
			}
		})
	}
}

func TestSessionLines(t *testing.T) {
	s := newTestSession(2)
	typeKeys(s, "12")
	want := []string{pad("12"), pad("  _")}
	if got := s.Lines(); got[0] != want[0] || got[1] != want[1] {
		t.Errorf("editing: want %q, got %q", want, got)
	}

	typeKeys(s, "=")
	want = []string{pad("12"), pad("12")}
	if got := s.Lines(); got[0] != want[0] || got[1] != want[1] {
		t.Errorf("result: want %q, got %q", want, got)
	}

	typeKeys(s, "..")
	if got := s.Lines(); got[1] != pad(SecondaryBanner) {
		t.Errorf("secondary: got %q", got[1])
	}
	// the first '.' after a result started a new input
	typeKeys(s, "+")
	if s.Mode() != ModePrimary || s.Buffer() != "" {
		t.Errorf("non-digit should leave secondary mode without inserting: %v %q", s.Mode(), s.Buffer())
	}
}

func TestSessionErrorLine(t *testing.T) {
	s := newTestSession(2)
	typeKeys(s, "1/0=")
	if got := s.Lines()[1]; got != pad("Error: Div/0") {
		t.Errorf("got %q", got)
	}
	typeKeys(s, "+")
	if s.Buffer() != "+" {
		t.Errorf("operator after an error should start over, got %q", s.Buffer())
	}
	if s.SavedResult() != "" {
		t.Errorf("failed result must not be saved, got %q", s.SavedResult())
	}
}

func TestSessionCursorMode(t *testing.T) {
	s := newTestSession(2)
	typeKeys(s, "12**")
	if s.Mode() != ModeCursor || s.Buffer() != "12" || s.Cursor() != 2 {
		t.Fatalf("want cursor mode over %q at 2, got %v %q at %d", "12", s.Mode(), s.Buffer(), s.Cursor())
	}
	if got := s.Lines()[1]; got != pad("  ^") {
		t.Errorf("cursor line: got %q", got)
	}
	typeKeys(s, "45")
	if s.Buffer() != "2" || s.Cursor() != 0 {
		t.Errorf("after left+delete: %q at %d", s.Buffer(), s.Cursor())
	}
	typeKeys(s, "**3")
	if s.Mode() != ModePrimary || s.Buffer() != "32" {
		t.Errorf("insert at cursor: %v %q", s.Mode(), s.Buffer())
	}
	typeKeys(s, "**..6")
	if s.Mode() != ModePrimary || s.Buffer() != "3pi2" {
		t.Errorf("cursor to secondary: %v %q", s.Mode(), s.Buffer())
	}
}

func TestSessionIntegralByKeys(t *testing.T) {
	s := newTestSession(2)
	typeKeys(s, "**2")
	if s.Buffer() != "[0,0](" || s.Cursor() != 5 {
		t.Fatalf("template: %q at %d", s.Buffer(), s.Cursor())
	}
	typeKeys(s, "45**1")
	if s.Buffer() != "[0,1](" {
		t.Fatalf("bounds: %q", s.Buffer())
	}
	typeKeys(s, "**663**..5")
	if s.Buffer() != "[0,1](x)" {
		t.Fatalf("integrand: %q", s.Buffer())
	}
	typeKeys(s, "=")
	lines := s.Lines()
	if lines[0] != pad("0.5") || !strings.HasPrefix(lines[1], "R:") {
		t.Errorf("integral display: %q", lines)
	}
}

func TestSessionRecallAndInsert(t *testing.T) {
	s := newTestSession(2)
	s.restart("[0,1](x^2)")
	typeKeys(s, "=")
	if s.Result().Estimate != "R:1.2500e-07" {
		t.Fatalf("estimate: %q", s.Result().Estimate)
	}
	typeKeys(s, "**8")
	if s.Buffer() != "0.33333351.2500e-07" {
		t.Errorf("estimate insert: %q", s.Buffer())
	}
	typeKeys(s, "1")
	if s.Buffer() != "[0,1](x^2)" || s.Showing() {
		t.Errorf("recall: %q showing=%v", s.Buffer(), s.Showing())
	}
	typeKeys(s, "**//")
	if s.Buffer() != "" || s.Result().Text != "" {
		t.Errorf("clear: %q %q", s.Buffer(), s.Result().Text)
	}
	typeKeys(s, "**7")
	if s.Buffer() != "0.3333335" {
		t.Errorf("saved result survives clear: %q", s.Buffer())
	}
}

func TestSessionClear(t *testing.T) {
	s := newTestSession(2)
	typeKeys(s, "12//")
	if s.Buffer() != "" || s.Cursor() != 0 || s.Mode() != ModePrimary {
		t.Errorf("clear: %q %d %v", s.Buffer(), s.Cursor(), s.Mode())
	}
	typeKeys(s, "=")
	if s.Showing() || len(s.History()) != 0 {
		t.Error("empty input must not evaluate")
	}
}

func TestSessionCapacity(t *testing.T) {
	s := newTestSession(2)
	typeKeys(s, strings.Repeat("1", 100))
	if n := len(s.Buffer()); n != 79 {
		t.Errorf("want 79 bytes, got %d", n)
	}
	s.SetEngine(calc.New(calc.Options{MaxInput: 10}))
	if n := len(s.Buffer()); n != 10 || s.Cursor() != 10 {
		t.Errorf("shrunk limit: %d bytes, cursor %d", n, s.Cursor())
	}
}

func TestSessionScroll(t *testing.T) {
	s := newTestSession(2)
	digits := "12345678901234567890"
	typeKeys(s, digits)
	lines := s.Lines()
	if lines[0] != digits[5:]+" " {
		t.Errorf("window: %q", lines[0])
	}
	if lines[1] != strings.Repeat(" ", 15)+"_" {
		t.Errorf("marker: %q", lines[1])
	}
	typeKeys(s, "**")
	for i := 0; i < 20; i++ {
		s.Press('4')
	}
	if got := s.Lines()[0]; got != digits[:16] {
		t.Errorf("scrolled back: %q", got)
	}
}

func TestSessionHistory(t *testing.T) {
	s := newTestSession(3)
	s.SetHistoryLimit(2)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	var seen []string
	s.OnEvaluate = func(expr string, r calc.Result, _ time.Duration) {
		seen = append(seen, expr+"="+r.Text)
	}
	typeKeys(s, "1+1=2+2=3+3=")
	h := s.History()
	if len(h) != 2 || h[0].Expr != "2+2" || h[1].Expr != "3+3" || h[1].Result != "6" {
		t.Errorf("history: %+v", h)
	}
	if !h[1].Time.Equal(clock) {
		t.Errorf("time: %v", h[1].Time)
	}
	if len(seen) != 3 || seen[2] != "3+3=6" {
		t.Errorf("hook calls: %v", seen)
	}
	if got := s.Lines()[2]; got != pad("3+3=6") {
		t.Errorf("history row: %q", got)
	}
}

func TestSessionSetHistory(t *testing.T) {
	s := newTestSession(2)
	s.SetHistory(nil)
	if s.LastInput() != "" {
		t.Errorf("empty history recalled %q", s.LastInput())
	}
	other := newTestSession(2)
	typeKeys(other, "7*6=")
	s.SetHistory(other.History())
	typeKeys(s, "**1")
	if s.Buffer() != "7*6" {
		t.Errorf("recall from loaded history: %q", s.Buffer())
	}
}
