// Package app is the keypad calculator: the Session state machine and the
// tcell front end that draws it as a character LCD.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"keycalc/internal/calc"
	"keycalc/internal/config"
	"keycalc/internal/keypad"
	"keycalc/internal/storage"
	"keycalc/internal/telemetry"
)

type App struct {
	Session *Session
	Config  *config.Config
	Log     zerolog.Logger
	Metrics *telemetry.Metrics

	// layout
	Left int
	Top  int

	// UI state
	Status      string
	HelpVisible bool
	Quit        bool

	// SplashDelay paces the splash animation; zero draws it at once.
	SplashDelay time.Duration
}

// NewApp builds an app from cfg. m may be nil.
func NewApp(cfg *config.Config, log zerolog.Logger, m *telemetry.Metrics) *App {
	a := &App{
		Config:      cfg,
		Log:         log,
		Metrics:     m,
		Left:        2,
		Top:         1,
		SplashDelay: 60 * time.Millisecond,
	}
	a.Session = NewSession(calc.New(cfg.EngineOptions()), cfg.Display.Width, cfg.Display.Rows)
	a.Session.SetHistoryLimit(cfg.History.Limit)
	a.Session.OnEvaluate = a.observe
	return a
}

func (a *App) observe(expr string, r calc.Result, elapsed time.Duration) {
	a.Metrics.Observe(r, elapsed)
	telemetry.LogEvaluation(a.Log, expr, r, elapsed)
}

// Apply switches to a reloaded configuration, keeping the current input.
func (a *App) Apply(cfg *config.Config) {
	a.Config = cfg
	a.Session.SetEngine(calc.New(cfg.EngineOptions()))
	a.Session.SetDisplay(cfg.Display.Width, cfg.Display.Rows)
	a.Session.SetHistoryLimit(cfg.History.Limit)
	a.Status = "config reloaded"
	a.Log.Info().Int("width", cfg.Display.Width).Int("rows", cfg.Display.Rows).Msg("config reloaded")
}

// ConfigEvent carries a reloaded configuration into the event loop.
type ConfigEvent struct {
	tcell.EventTime
	Config *config.Config
}

// PostConfig queues cfg for the event loop; safe to call from any goroutine.
func PostConfig(s tcell.Screen, cfg *config.Config) error {
	ev := &ConfigEvent{Config: cfg}
	ev.SetEventNow()
	return s.PostEvent(ev)
}

// Run shows the splash, then processes events until the user quits or ctx
// is done. The caller owns s and finalizes it.
func (a *App) Run(ctx context.Context, s tcell.Screen) error {
	if a.Config.Display.Splash != "" {
		a.Splash(s, a.Config.Display.Splash)
	}
	go func() {
		<-ctx.Done()
		_ = s.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for !a.Quit {
		a.Draw(s)
		ev := s.PollEvent()
		switch tev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			a.HandleKeyEvent(s, tev)
		case *tcell.EventResize:
			s.Sync()
		case *ConfigEvent:
			a.Apply(tev.Config)
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return nil
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	// help consumes everything until closed with Esc or '?'
	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	a.Status = ""
	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.Quit = true
	case tcell.KeyEnter:
		a.Session.Press('=')
	case tcell.KeyLeft:
		a.Session.MoveLeft()
	case tcell.KeyRight:
		a.Session.MoveRight()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.Session.Backspace()
	case tcell.KeyDelete:
		a.Session.Clear()
	case tcell.KeyRune:
		r := ev.Rune()
		switch r {
		case ':':
			if command, ok := a.PopupInput(s, ":", ""); ok {
				a.ExecuteCommand(command)
			}
		case '?':
			a.HelpVisible = true
		default:
			if key, ok := keypad.FromRune(r); ok {
				a.Session.Press(key)
			}
		}
	}
}

// ----------------------------- Drawing -----------------------------

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	lines := a.Session.Lines()
	width := a.Session.width

	frame := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	lcd := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreenYellow)
	a.drawBox(s, a.Left, a.Top, width+2, len(lines)+2, frame)
	for i, ln := range lines {
		a.printTextFixedWidth(s, a.Left+1, a.Top+1+i, ln, lcd, width)
	}

	y := a.Top + len(lines) + 3
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, row := range keypad.Layout() {
		a.printTextFixedWidth(s, a.Left+1, y+i, row, dim, len(row))
	}

	w, h := s.Size()
	status := fmt.Sprintf("mode: %s", a.Session.Mode())
	if a.Status != "" {
		status += "  " + a.Status
	}
	status += "  [? help  : command]"
	a.printTextFixedWidth(s, 0, h-1, status, tcell.StyleDefault.Foreground(tcell.ColorYellow), w)

	if a.HelpVisible {
		a.drawHelpPopup(s, helpText)
	}
	s.Show()
}

const helpText = `Keys: 0-9 . + - * / and = (Enter).
.. secondary layer, then a digit: 0 ^  1 sin(  2 root(  3 ln(  4 (  5 )  6 pi  7 e  8 :  9 s_(
** cursor layer: 4 left  6 right  5 delete  1 recall  2 integral [0,0](  3 x  7 last result  8 last estimate. ** leaves, .. jumps to secondary.
// clears. Arrows, Backspace and Delete edit directly.
Commands: :w [file] saves history, :o [file] loads it, :clear, :q quits.
Esc or ? closes this help.`

func (a *App) drawBox(s tcell.Screen, left, top, w, h int, style tcell.Style) {
	for x := left; x < left+w; x++ {
		s.SetContent(x, top, tcell.RuneHLine, nil, style)
		s.SetContent(x, top+h-1, tcell.RuneHLine, nil, style)
	}
	for y := top; y < top+h; y++ {
		s.SetContent(left, y, tcell.RuneVLine, nil, style)
		s.SetContent(left+w-1, y, tcell.RuneVLine, nil, style)
	}
	s.SetContent(left, top, tcell.RuneULCorner, nil, style)
	s.SetContent(left+w-1, top, tcell.RuneURCorner, nil, style)
	s.SetContent(left, top+h-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(left+w-1, top+h-1, tcell.RuneLRCorner, nil, style)
}

func (a *App) printTextFixedWidth(s tcell.Screen, x, y int, str string, style tcell.Style, width int) {
	runes := []rune(str)
	for i := 0; i < width; i++ {
		var ch rune = ' '
		if i < len(runes) {
			ch = runes[i]
		}
		if x+i >= 0 && y >= 0 {
			s.SetContent(x+i, y, ch, nil, style)
		}
	}
}

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	maxPW := w - 4
	maxPH := h - 4

	innerW := minInt(maxPW-padding*2, 60)
	if innerW < 20 {
		innerW = maxInt(20, maxPW-padding*2)
	}
	innerW = minInt(innerW, maxPW-padding*2)

	lines := wrapText(help, innerW)
	if len(lines) > maxPH-padding*2 {
		lines = lines[:maxInt(0, maxPH-padding*2)]
	}

	pw := innerW + padding*2
	ph := len(lines) + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	for yy := 0; yy < ph; yy++ {
		for xx := 0; xx < pw; xx++ {
			s.SetContent(left+xx, top+yy, ' ', nil, style)
		}
	}
	a.drawBox(s, left, top, pw, ph, style)
	for i, ln := range lines {
		a.printTextFixedWidth(s, left+padding, top+padding+i, ln, style, innerW)
	}
}

// wrapText breaks s into lines of at most max runes, keeping paragraphs.
func wrapText(s string, max int) []string {
	if max <= 2 {
		return []string{s}
	}

	var result []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			result = append(result, "")
			continue
		}
		cur := ""
		for _, w := range words {
			if runeLen(w) > max {
				if cur != "" {
					result = append(result, cur)
					cur = ""
				}
				chunks := chunkString(w, max)
				result = append(result, chunks[:len(chunks)-1]...)
				cur = chunks[len(chunks)-1]
				continue
			}
			switch {
			case cur == "":
				cur = w
			case runeLen(cur)+1+runeLen(w) <= max:
				cur += " " + w
			default:
				result = append(result, cur)
				cur = w
			}
		}
		result = append(result, cur)
	}
	return result
}

func runeLen(s string) int {
	return len([]rune(s))
}

func chunkString(s string, size int) []string {
	r := []rune(s)
	var out []string
	for i := 0; i < len(r); i += size {
		j := i + size
		if j > len(r) {
			j = len(r)
		}
		out = append(out, string(r[i:j]))
	}
	return out
}

// ----------------------------- Commands / Storage -----------------------------

func (a *App) ExecuteCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	filename := a.Config.History.Path
	if len(parts) >= 2 {
		filename = parts[1]
	}
	switch parts[0] {
	case "q", "quit":
		a.Quit = true
	case "clear":
		a.Session.Clear()
	case "help":
		a.HelpVisible = true
	case "w":
		if filename == "" {
			a.Status = "no file name"
			return
		}
		if err := storage.SaveCSV(filename, a.Session.History()); err != nil {
			a.Log.Error().Err(err).Str("file", filename).Msg("saving history failed")
			a.Status = "save failed"
			return
		}
		a.Status = fmt.Sprintf("saved %d to %s", len(a.Session.History()), filename)
	case "o":
		if filename == "" {
			a.Status = "no file name"
			return
		}
		entries, err := storage.LoadCSV(filename)
		if err != nil {
			a.Log.Error().Err(err).Str("file", filename).Msg("loading history failed")
			a.Status = "load failed"
			return
		}
		a.Session.SetHistory(entries)
		a.Status = fmt.Sprintf("loaded %d from %s", len(entries), filename)
	default:
		a.Status = "unknown command: " + parts[0]
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
