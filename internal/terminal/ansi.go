package terminal

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// ANSI implements Terminal by writing VT100 escape sequences to an inline
// terminal. Scrollback above the viewport is left to the terminal itself.
type ANSI struct {
	out      *bufio.Writer
	fd       int
	width    int
	height   int
	oldState *term.State
}

// NewANSI writes to w and measures the terminal behind fd. When fd is not a
// terminal the size set with SetSize (80x24 by default) is reported.
func NewANSI(w io.Writer, fd int) *ANSI {
	return &ANSI{
		out:    bufio.NewWriter(w),
		fd:     fd,
		width:  defaultWidth,
		height: defaultHeight,
	}
}

// SetSize overrides the reported size for non-terminal outputs.
func (t *ANSI) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// MakeRaw puts the input terminal into raw mode. Restore undoes it.
func (t *ANSI) MakeRaw(inFd int) error {
	state, err := term.MakeRaw(inFd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	t.oldState = state
	return nil
}

func (t *ANSI) Restore(inFd int) error {
	if t.oldState == nil {
		return nil
	}
	state := t.oldState
	t.oldState = nil
	return term.Restore(inFd, state)
}

func (t *ANSI) Size() (int, int, error) {
	if !term.IsTerminal(t.fd) {
		return t.width, t.height, nil
	}
	w, h, err := term.GetSize(t.fd)
	if err != nil {
		return 0, 0, fmt.Errorf("terminal size: %w", err)
	}
	return w, h, nil
}

func (t *ANSI) Write(s string) error {
	_, err := t.out.WriteString(s)
	return err
}

func (t *ANSI) LineFeed() error {
	return t.Write("\r\n")
}

func (t *ANSI) MoveTo(col, row int) error {
	_, err := fmt.Fprintf(t.out, "\x1b[%d;%dH", row+1, col+1)
	return err
}

func (t *ANSI) Clear(ct ClearType) error {
	switch ct {
	case ClearFromCursorDown:
		return t.Write("\x1b[J")
	case ClearUntilNewLine:
		return t.Write("\x1b[K")
	default:
		return t.Write("\x1b[2J\x1b[H")
	}
}

func (t *ANSI) ScrollUp(n int) error {
	if n <= 0 {
		return nil
	}
	_, err := fmt.Fprintf(t.out, "\x1b[%dS", n)
	return err
}

func (t *ANSI) SetForeground(c tcell.Color) error {
	if c == tcell.ColorDefault {
		return t.Write("\x1b[39m")
	}
	r, g, b := c.RGB()
	if r < 0 {
		return t.Write("\x1b[39m")
	}
	_, err := fmt.Fprintf(t.out, "\x1b[38;2;%d;%d;%dm", r, g, b)
	return err
}

func (t *ANSI) ResetStyle() error {
	return t.Write("\x1b[0m")
}

func (t *ANSI) HideCursor() error {
	return t.Write("\x1b[?25l")
}

func (t *ANSI) ShowCursor() error {
	return t.Write("\x1b[?25h")
}

func (t *ANSI) Flush() error {
	return t.out.Flush()
}
