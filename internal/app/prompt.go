package app

import (
	"github.com/gdamore/tcell/v2"
)

// maxLineInput caps the command line.
const maxLineInput = 256

// lineEditor is the text being typed on the command line.
type lineEditor struct {
	text []rune
	pos  int
}

// key applies one editing key and reports whether it was one.
func (e *lineEditor) key(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.pos > 0 {
			e.text = append(e.text[:e.pos-1], e.text[e.pos:]...)
			e.pos--
		}
	case tcell.KeyDelete:
		if e.pos < len(e.text) {
			e.text = append(e.text[:e.pos], e.text[e.pos+1:]...)
		}
	case tcell.KeyLeft:
		e.pos = maxInt(0, e.pos-1)
	case tcell.KeyRight:
		e.pos = minInt(len(e.text), e.pos+1)
	case tcell.KeyHome, tcell.KeyCtrlA:
		e.pos = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		e.pos = len(e.text)
	case tcell.KeyCtrlU:
		e.text, e.pos = e.text[:0], 0
	case tcell.KeyRune:
		if len(e.text) < maxLineInput {
			e.text = append(e.text[:e.pos], append([]rune{ev.Rune()}, e.text[e.pos:]...)...)
			e.pos++
		}
	default:
		return false
	}
	return true
}

// window returns the visible part of the text for a field of width cells
// and the cursor column inside it.
func (e *lineEditor) window(width int) (string, int) {
	width = maxInt(1, width)
	start := 0
	if e.pos >= width {
		start = e.pos - width + 1
	}
	end := minInt(len(e.text), start+width)
	return string(e.text[start:end]), e.pos - start
}

// PopupInput reads a line on the bottom row of the screen, after prompt.
// It returns the text and true on Enter, or "" and false on Esc.
func (a *App) PopupInput(s tcell.Screen, prompt, initial string) (string, bool) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorReset)
	ed := &lineEditor{text: []rune(initial)}
	ed.pos = len(ed.text)
	p := []rune(prompt)

	draw := func() {
		a.Draw(s)
		w, h := s.Size()
		field, col := ed.window(w - len(p))
		a.printTextFixedWidth(s, 0, h-1, prompt+field, style, w)
		s.ShowCursor(len(p)+col, h-1)
		s.Show()
	}
	done := func() {
		s.HideCursor()
		a.Draw(s)
	}

	draw()
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return "", false
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEsc, tcell.KeyCtrlC:
				done()
				return "", false
			case tcell.KeyEnter:
				done()
				return string(ed.text), true
			}
			if ed.key(ev) {
				draw()
			}
		case *tcell.EventResize:
			s.Sync()
			draw()
		}
	}
}
