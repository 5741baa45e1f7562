package app

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// Splash reveals text one character at a time on the first LCD line, then
// waits for any key.
func (a *App) Splash(s tcell.Screen, text string) {
	runes := []rune(text)
	width := a.Session.width
	if len(runes) > width {
		runes = runes[:width]
	}
	frame := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	lcd := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreenYellow).Bold(true)
	hint := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	rows := a.Session.rows

	for reveal := 1; reveal <= len(runes); reveal++ {
		s.Clear()
		a.drawBox(s, a.Left, a.Top, width+2, rows+2, frame)
		for y := 0; y < rows; y++ {
			a.printTextFixedWidth(s, a.Left+1, a.Top+1+y, "", lcd, width)
		}
		a.printTextFixedWidth(s, a.Left+1, a.Top+1, string(runes[:reveal]), lcd, width)
		a.printTextFixedWidth(s, a.Left, a.Top+rows+3, "Press any key", hint, width+2)
		s.Show()
		if a.SplashDelay > 0 {
			time.Sleep(a.SplashDelay)
		}
	}

	for {
		switch s.PollEvent().(type) {
		case nil, *tcell.EventKey, *tcell.EventInterrupt:
			return
		case *tcell.EventResize:
			s.Sync()
		}
	}
}
