// Package render binds the edit buffer and classified output to a bounded
// terminal viewport. It decides when to scroll and keeps the tracked cursor
// in step with what the terminal actually shows.
package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qrepl/internal/buffer"
	"github.com/kobzarvs/qrepl/internal/logger"
	"github.com/kobzarvs/qrepl/internal/printer"
	"github.com/kobzarvs/qrepl/internal/terminal"
)

type State int

const (
	StateIdle State = iota
	StateEchoingInput
	StatePrintingOutput
)

// Highlighter turns raw input text into a colored batch for live echo.
type Highlighter interface {
	Highlight(text string) *printer.Batch
}

type Options struct {
	InputPrompt        string
	ContinuationPrompt string
	PromptColor        tcell.Color
	Palette            printer.Palette
}

func DefaultOptions() Options {
	return Options{
		InputPrompt:        "In: ",
		ContinuationPrompt: "..: ",
		PromptColor:        tcell.ColorYellow,
		Palette:            printer.DefaultPalette(),
	}
}

type Engine struct {
	term   terminal.Terminal
	opts   Options
	cursor Cursor
	state  State

	promptWidth     int
	highlightLocked bool
}

// New creates an engine drawing on t and measures the viewport.
func New(t terminal.Terminal, opts Options) (*Engine, error) {
	e := &Engine{term: t, opts: opts}
	e.promptWidth = runewidth.StringWidth(opts.InputPrompt)
	if w := runewidth.StringWidth(opts.ContinuationPrompt); w > e.promptWidth {
		e.promptWidth = w
	}
	if err := e.Measure(); err != nil {
		return nil, err
	}
	return e, nil
}

// Measure re-reads the terminal size.
func (e *Engine) Measure() error {
	w, h, err := e.term.Size()
	if err != nil {
		return err
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	e.cursor.Bound = Bound{Width: w, Height: h}
	e.cursor.Clamp()
	return nil
}

func (e *Engine) Cursor() Cursor        { return e.cursor }
func (e *Engine) State() State          { return e.state }
func (e *Engine) HighlightLocked() bool { return e.highlightLocked }

// WrapWidth is the number of input columns left of the prompt on each row.
func (e *Engine) WrapWidth() int {
	w := e.cursor.Bound.Width - e.promptWidth
	if w < 1 {
		return 1
	}
	return w
}

// RenderInput redraws the whole input area from the starting row. With a
// nil highlighter the buffer is echoed uncolored.
func (e *Engine) RenderInput(buf *buffer.Buffer, hl Highlighter) (err error) {
	e.state = StateEchoingInput
	defer func() { e.state = StateIdle }()

	if err := e.term.HideCursor(); err != nil {
		return err
	}
	if err := e.ScrollUp(e.cursor.InputOverflow(buf.LastCoord().Row)); err != nil {
		return err
	}

	e.cursor.Save()
	defer func() {
		e.cursor.Restore()
		if merr := e.term.MoveTo(e.cursor.Pos.Col, e.cursor.Pos.Row); err == nil {
			err = merr
		}
		if serr := e.term.ShowCursor(); err == nil {
			err = serr
		}
	}()

	if err := e.moveTo(Pos{Col: 0, Row: e.cursor.StartingRow}); err != nil {
		return err
	}
	if err := e.term.Clear(terminal.ClearFromCursorDown); err != nil {
		return err
	}
	if err := e.writePrompt(e.opts.InputPrompt); err != nil {
		return err
	}

	var batch *printer.Batch
	if hl != nil {
		batch = hl.Highlight(buf.String())
	} else {
		batch = printer.FromString(buf.String())
	}
	if err := e.drawInput(batch, buf.WrapWidth()); err != nil {
		return err
	}
	e.highlightLocked = hl != nil
	return e.term.ResetStyle()
}

func (e *Engine) drawInput(batch *printer.Batch, wrap int) error {
	inputCol := 0
	for item, ok := batch.Next(); ok; item, ok = batch.Next() {
		if item.IsNewLine() {
			if err := e.continueInput(); err != nil {
				return err
			}
			inputCol = 0
			continue
		}
		color, _ := e.opts.Palette.Color(item)
		if err := e.term.SetForeground(color); err != nil {
			return err
		}
		for _, r := range item.Text {
			if r == '\n' {
				if err := e.continueInput(); err != nil {
					return err
				}
				inputCol = 0
				if err := e.term.SetForeground(color); err != nil {
					return err
				}
				continue
			}
			w := buffer.Width(r)
			if r == '\t' {
				r = ' '
			}
			if inputCol > 0 && inputCol+w > wrap {
				if err := e.continueInput(); err != nil {
					return err
				}
				inputCol = 0
				if err := e.term.SetForeground(color); err != nil {
					return err
				}
			}
			if err := e.term.Write(string(r)); err != nil {
				return err
			}
			e.cursor.Pos.Col += w
			inputCol += w
			if inputCol == wrap {
				if err := e.continueInput(); err != nil {
					return err
				}
				inputCol = 0
				if err := e.term.SetForeground(color); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// continueInput starts the next input row behind the continuation marker.
func (e *Engine) continueInput() error {
	if err := e.advanceRow(); err != nil {
		return err
	}
	return e.writePrompt(e.opts.ContinuationPrompt)
}

func (e *Engine) writePrompt(prompt string) error {
	if pad := e.promptWidth - runewidth.StringWidth(prompt); pad > 0 {
		prompt += strings.Repeat(" ", pad)
	}
	if err := e.term.SetForeground(e.opts.PromptColor); err != nil {
		return err
	}
	if err := e.term.Write(prompt); err != nil {
		return err
	}
	e.cursor.Pos.Col += e.promptWidth
	return nil
}

// RenderOutput drains batch onto the viewport below the current row.
func (e *Engine) RenderOutput(batch *printer.Batch) error {
	e.state = StatePrintingOutput
	defer func() { e.state = StateIdle }()

	if err := e.ScrollUp(e.cursor.OverflowByNewLines(batch.CountNewLines())); err != nil {
		return err
	}

	for item, ok := batch.Next(); ok; item, ok = batch.Next() {
		if item.IsNewLine() {
			if err := e.advanceRow(); err != nil {
				return err
			}
			e.cursor.UseCurrentRowAsStartingRow()
			continue
		}
		color, _ := e.opts.Palette.Color(item)
		if err := e.term.SetForeground(color); err != nil {
			return err
		}
		if err := e.writeFragment(item.Text); err != nil {
			return err
		}
	}
	return e.term.ResetStyle()
}

// writeFragment prints one text item. Multi-line text is written line by
// line, each line followed by a line advance.
func (e *Engine) writeFragment(text string) error {
	if !strings.Contains(text, "\n") {
		return e.writeText(text)
	}
	rowBefore := e.cursor.Pos.Row
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for _, line := range lines {
		if err := e.writeText(line); err != nil {
			return err
		}
		if err := e.advanceRow(); err != nil {
			return err
		}
	}
	// The terminal scrolled on its own while the lines went out. Scroll once
	// more for headroom and pin the cursor to the last row.
	if overflow(rowBefore+len(lines), e.cursor.LastRow()) > 0 {
		if err := e.term.ScrollUp(1); err != nil {
			return err
		}
		e.cursor.Shift(1)
		e.cursor.Pos.Row = e.cursor.LastRow()
		logger.Debug("output overflowed viewport", "lines", len(lines), "row", rowBefore)
	}
	return nil
}

// writeText writes a single line, following the terminal's own wrap at the
// right edge.
func (e *Engine) writeText(line string) error {
	var run strings.Builder
	flush := func() error {
		if run.Len() == 0 {
			return nil
		}
		err := e.term.Write(run.String())
		run.Reset()
		return err
	}
	for _, r := range line {
		switch r {
		case '\r':
			continue
		case '\t':
			r = ' '
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if e.cursor.Pos.Col+rw > e.cursor.Bound.Width {
			if err := flush(); err != nil {
				return err
			}
			if err := e.advanceRow(); err != nil {
				return err
			}
		}
		run.WriteRune(r)
		e.cursor.Pos.Col += rw
	}
	return flush()
}

// advanceRow moves to column 0 of the next row. On the last row the
// terminal scrolls by itself; the bookkeeping follows it.
func (e *Engine) advanceRow() error {
	if err := e.term.LineFeed(); err != nil {
		return err
	}
	e.cursor.Pos.Col = 0
	if e.cursor.Pos.Row < e.cursor.LastRow() {
		e.cursor.Pos.Row++
		return nil
	}
	e.cursor.StartingRow = satSub(e.cursor.StartingRow, 1)
	e.cursor.saved.Row = satSub(e.cursor.saved.Row, 1)
	return nil
}

// ScrollUp scrolls the viewport by n rows and shifts the row bookkeeping to
// match. n <= 0 does nothing.
func (e *Engine) ScrollUp(n int) error {
	if n <= 0 {
		return nil
	}
	if err := e.term.ScrollUp(n); err != nil {
		return err
	}
	e.cursor.Shift(n)
	logger.Debug("scrolled viewport", "rows", n, "startingRow", e.cursor.StartingRow)
	// The terminal leaves its cursor in place; the content under it moved.
	return e.term.MoveTo(e.cursor.Pos.Col, e.cursor.Pos.Row)
}

// NewLine ends the current row and makes the next one the starting row.
func (e *Engine) NewLine() error {
	if err := e.advanceRow(); err != nil {
		return err
	}
	e.cursor.UseCurrentRowAsStartingRow()
	return nil
}

// SyncCursor places the physical cursor on the buffer cursor.
func (e *Engine) SyncCursor(buf *buffer.Buffer) error {
	c := buf.CursorCoord()
	p := Pos{
		Col: e.promptWidth + c.Col,
		Row: clampInt(e.cursor.StartingRow+c.Row, 0, e.cursor.LastRow()),
	}
	return e.moveTo(p)
}

// GotoInputEnd places the physical cursor after the last input rune.
func (e *Engine) GotoInputEnd(buf *buffer.Buffer) error {
	c := buf.LastCoord()
	return e.moveTo(Pos{
		Col: e.promptWidth + c.Col,
		Row: clampInt(e.cursor.StartingRow+c.Row, 0, e.cursor.LastRow()),
	})
}

// ClearScreen wipes the viewport and puts the prompt on the first row.
func (e *Engine) ClearScreen() error {
	if err := e.term.Clear(terminal.ClearAll); err != nil {
		return err
	}
	e.cursor.Pos = Pos{}
	e.cursor.StartingRow = 0
	e.cursor.Save()
	return e.term.MoveTo(0, 0)
}

// AtLineStart reports whether the cursor sits in column 0.
func (e *Engine) AtLineStart() bool {
	return e.cursor.Pos.Col == 0
}

func (e *Engine) Flush() error {
	return e.term.Flush()
}

func (e *Engine) moveTo(p Pos) error {
	if err := e.term.MoveTo(p.Col, p.Row); err != nil {
		return err
	}
	e.cursor.Pos = p
	return nil
}
