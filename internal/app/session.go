package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qrepl/internal/buffer"
	"github.com/kobzarvs/qrepl/internal/dispatch"
	"github.com/kobzarvs/qrepl/internal/logger"
	"github.com/kobzarvs/qrepl/internal/printer"
	"github.com/kobzarvs/qrepl/internal/render"
)

type SessionOptions struct {
	// Highlighter colors the echo once typing pauses. Nil keeps the echo
	// plain.
	Highlighter    render.Highlighter
	// HighlightDelay is the pause before the colored echo. Zero colors
	// right after every edit.
	HighlightDelay time.Duration
	TabWidth       int
}

// Session is one interactive REPL: the buffer being edited, the engine
// drawing it and the dispatcher behind Enter. All of it is owned by the
// goroutine calling Run.
type Session struct {
	engine *render.Engine
	disp   *dispatch.Dispatcher
	opts   SessionOptions
	buf    *buffer.Buffer
	hist   history

	hlTimer *time.Timer
	hlDue   <-chan time.Time
}

func NewSession(engine *render.Engine, disp *dispatch.Dispatcher, opts SessionOptions) *Session {
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	return &Session{
		engine: engine,
		disp:   disp,
		opts:   opts,
		buf:    buffer.New(engine.WrapWidth()),
		hist:   newHistory(),
	}
}

// Buffer exposes the input being edited.
func (s *Session) Buffer() *buffer.Buffer { return s.buf }

// Start clears the viewport and draws the first prompt.
func (s *Session) Start() error {
	if err := s.engine.ClearScreen(); err != nil {
		return err
	}
	return s.draw(nil)
}

// Run feeds events to the session until a quit key, a closed event stream
// or ctx ends it.
func (s *Session) Run(ctx context.Context, events <-chan tcell.Event) error {
	defer s.stopHighlight()
	for {
		select {
		case <-ctx.Done():
			s.finish()
			return nil
		case <-s.hlDue:
			s.hlDue = nil
			s.refreshHighlight()
		case ev, ok := <-events:
			if !ok {
				s.finish()
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if s.HandleKey(ctx, ev) {
					s.finish()
					return nil
				}
			case *tcell.EventResize:
				s.HandleResize()
			}
		}
	}
}

// HandleKey applies one key press. It reports true when the session should
// end.
func (s *Session) HandleKey(ctx context.Context, ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyUp && ev.Key() != tcell.KeyDown &&
		ev.Key() != tcell.KeyCtrlP && ev.Key() != tcell.KeyCtrlN {
		s.hist.reset()
	}

	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			return false
		}
		s.buf.Insert(ev.Rune())
	case tcell.KeyEnter:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			s.buf.Insert('\n')
			break
		}
		if s.continueLine() {
			break
		}
		return s.submit(ctx)
	case tcell.KeyCtrlJ:
		s.buf.Insert('\n')
	case tcell.KeyTab:
		s.indent()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if s.buf.IsAtStart() {
			return false
		}
		s.buf.MoveBackward()
		s.buf.RemoveCurrent()
	case tcell.KeyDelete:
		if _, ok := s.buf.RemoveCurrent(); !ok {
			return false
		}
	case tcell.KeyLeft, tcell.KeyCtrlB:
		s.buf.MoveBackward()
		s.place()
		return false
	case tcell.KeyRight, tcell.KeyCtrlF:
		s.buf.MoveForward()
		s.place()
		return false
	case tcell.KeyHome, tcell.KeyCtrlA:
		s.buf.GotoStart()
		s.place()
		return false
	case tcell.KeyEnd, tcell.KeyCtrlE:
		s.buf.GotoEnd()
		s.place()
		return false
	case tcell.KeyUp, tcell.KeyCtrlP:
		text, ok := s.hist.up(s.buf.String())
		if !ok {
			return false
		}
		s.replace(text)
	case tcell.KeyDown, tcell.KeyCtrlN:
		text, ok := s.hist.down()
		if !ok {
			return false
		}
		s.replace(text)
	case tcell.KeyCtrlK:
		for {
			if _, ok := s.buf.RemoveCurrent(); !ok {
				break
			}
		}
	case tcell.KeyCtrlU:
		s.buf.Clear()
	case tcell.KeyCtrlC:
		if s.buf.IsEmpty() {
			return true
		}
		s.buf.Clear()
	case tcell.KeyCtrlD:
		if s.buf.IsEmpty() {
			return true
		}
		if _, ok := s.buf.RemoveCurrent(); !ok {
			return false
		}
	case tcell.KeyCtrlL:
		if err := s.engine.ClearScreen(); err != nil {
			s.report(err)
			return false
		}
		if err := s.draw(nil); err != nil {
			s.report(err)
			return false
		}
		s.scheduleHighlight()
		return false
	default:
		return false
	}
	s.echo()
	return false
}

// HandleResize re-measures the viewport and rewraps the input to it.
func (s *Session) HandleResize() {
	if err := s.engine.Measure(); err != nil {
		s.report(err)
		return
	}
	s.buf = s.buf.Rewrap(s.engine.WrapWidth())
	s.echo()
}

// indent inserts a full tab width of spaces at the start of a line and pads
// to the next tab stop anywhere else.
func (s *Session) indent() {
	n := s.opts.TabWidth
	if !s.buf.IsAtLineStart() {
		runes := s.buf.Runes()[:s.buf.Cursor()]
		col := 0
		for i := len(runes) - 1; i >= 0 && runes[i] != '\n'; i-- {
			col++
		}
		n -= col % s.opts.TabWidth
	}
	s.buf.InsertString(strings.Repeat(" ", n))
}

// continueLine turns Enter into a line break while the input is visibly
// unfinished. A trailing backslash is consumed.
func (s *Session) continueLine() bool {
	text := s.buf.String()
	if strings.HasPrefix(strings.TrimSpace(text), ":") || !s.buf.IsAtEnd() {
		return false
	}
	if last, ok := s.buf.Last(); ok && last == '\\' {
		s.buf.MoveBackward()
		s.buf.RemoveCurrent()
		s.buf.Insert('\n')
		return true
	}
	if openBrackets(text) > 0 {
		s.buf.Insert('\n')
		return true
	}
	return false
}

// openBrackets counts brackets left open outside of string literals.
func openBrackets(text string) int {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range text {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'', '`':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth
}

func (s *Session) submit(ctx context.Context) bool {
	text := s.buf.String()
	s.hist.add(text)
	s.stopHighlight()

	if s.opts.Highlighter != nil && !s.engine.HighlightLocked() {
		if err := s.engine.RenderInput(s.buf, s.opts.Highlighter); err != nil {
			s.report(err)
		}
	}
	if err := s.engine.GotoInputEnd(s.buf); err != nil {
		s.report(err)
	}
	if err := s.engine.NewLine(); err != nil {
		s.report(err)
	}

	res, err := s.disp.Dispatch(ctx, text)
	if errors.Is(err, dispatch.ErrQuit) {
		return true
	}
	out := res.Output
	if err != nil {
		logger.Warn("dispatch failed", "err", err)
		out = printer.FromStringClass(err.Error(), printer.ClassError)
	}
	if out != nil && !out.IsEmpty() {
		out.Push(printer.NewLine())
		if err := s.engine.RenderOutput(out); err != nil {
			s.report(err)
		}
	}

	next := ""
	if err == nil && res.Edited {
		next = res.Input
	}
	s.buf = buffer.FromString(next, s.engine.WrapWidth())
	s.buf.GotoEnd()
	if err := s.draw(nil); err != nil {
		s.report(err)
		return false
	}
	if next != "" {
		s.scheduleHighlight()
	}
	return false
}

// replace swaps the buffer content, cursor at the end.
func (s *Session) replace(text string) {
	s.buf = buffer.FromString(text, s.engine.WrapWidth())
	s.buf.GotoEnd()
}

// echo redraws the input plainly and queues the colored redraw.
func (s *Session) echo() {
	if err := s.draw(nil); err != nil {
		s.report(err)
		return
	}
	s.scheduleHighlight()
}

func (s *Session) draw(hl render.Highlighter) error {
	if err := s.engine.RenderInput(s.buf, hl); err != nil {
		return err
	}
	if err := s.engine.SyncCursor(s.buf); err != nil {
		return err
	}
	return s.engine.Flush()
}

func (s *Session) place() {
	if err := s.engine.SyncCursor(s.buf); err != nil {
		s.report(err)
		return
	}
	if err := s.engine.Flush(); err != nil {
		s.report(err)
	}
}

func (s *Session) scheduleHighlight() {
	if s.opts.Highlighter == nil {
		return
	}
	if s.opts.HighlightDelay <= 0 {
		s.refreshHighlight()
		return
	}
	s.stopHighlight()
	s.hlTimer = time.NewTimer(s.opts.HighlightDelay)
	s.hlDue = s.hlTimer.C
}

func (s *Session) stopHighlight() {
	if s.hlTimer != nil {
		s.hlTimer.Stop()
		s.hlTimer = nil
	}
	s.hlDue = nil
}

// refreshHighlight swaps the plain echo for a colored one unless the
// colored echo is already on screen.
func (s *Session) refreshHighlight() {
	if s.opts.Highlighter == nil || s.engine.HighlightLocked() {
		return
	}
	if err := s.draw(s.opts.Highlighter); err != nil {
		s.report(err)
	}
}

// report logs err and prints it as one error line under the input. The
// session keeps going.
func (s *Session) report(err error) {
	logger.Error("render failed", "err", err)
	out := printer.FromStringClass(err.Error(), printer.ClassError)
	out.Push(printer.NewLine())
	if !s.engine.AtLineStart() {
		_ = s.engine.NewLine()
	}
	_ = s.engine.RenderOutput(out)
	_ = s.engine.Flush()
}

// finish leaves the terminal cursor on a fresh row below the input.
func (s *Session) finish() {
	if err := s.engine.GotoInputEnd(s.buf); err != nil {
		logger.Warn("finish: move cursor", "err", err)
		return
	}
	_ = s.engine.NewLine()
	_ = s.engine.Flush()
}
