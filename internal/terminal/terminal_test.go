package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newSimScreen(t *testing.T, w, h int) (tcell.SimulationScreen, *Screen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)
	return s, NewScreen(s)
}

func rowText(t *testing.T, s tcell.SimulationScreen, row int) string {
	t.Helper()
	s.Show()
	cells, w, _ := s.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		c := cells[row*w+x]
		if len(c.Runes) == 0 {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestScreenWriteAndPendingWrap(t *testing.T) {
	s, term := newSimScreen(t, 5, 3)
	if err := term.Write("abcde"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if x, y := term.Position(); x != 5 || y != 0 {
		t.Fatalf("position = (%d,%d), want (5,0)", x, y)
	}
	if err := term.Write("f"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := rowText(t, s, 0); got != "abcde" {
		t.Fatalf("row0 = %q", got)
	}
	if got := rowText(t, s, 1); got != "f" {
		t.Fatalf("row1 = %q", got)
	}
}

func TestScreenLineFeedScrollsAtBottom(t *testing.T) {
	s, term := newSimScreen(t, 6, 3)
	for i, line := range []string{"one", "two", "three"} {
		if i > 0 {
			_ = term.LineFeed()
		}
		_ = term.Write(line)
	}
	_ = term.LineFeed()
	_ = term.Write("four")
	want := []string{"two", "three", "four"}
	for row, w := range want {
		if got := rowText(t, s, row); got != w {
			t.Fatalf("row%d = %q, want %q", row, got, w)
		}
	}
	if _, y := term.Position(); y != 2 {
		t.Fatalf("row = %d, want 2", y)
	}
}

func TestScreenScrollUpKeepsCursor(t *testing.T) {
	s, term := newSimScreen(t, 6, 4)
	for row, line := range []string{"a", "b", "c", "d"} {
		_ = term.MoveTo(0, row)
		_ = term.Write(line)
	}
	_ = term.MoveTo(2, 3)
	if err := term.ScrollUp(2); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	want := []string{"c", "d", "", ""}
	for row, w := range want {
		if got := rowText(t, s, row); got != w {
			t.Fatalf("row%d = %q, want %q", row, got, w)
		}
	}
	if x, y := term.Position(); x != 2 || y != 3 {
		t.Fatalf("cursor moved to (%d,%d)", x, y)
	}
}

func TestScreenClear(t *testing.T) {
	s, term := newSimScreen(t, 6, 3)
	for row, line := range []string{"aaaaaa", "bbbbbb", "cccccc"} {
		_ = term.MoveTo(0, row)
		_ = term.Write(line)
	}
	_ = term.MoveTo(3, 0)
	_ = term.Clear(ClearUntilNewLine)
	if got := rowText(t, s, 0); got != "aaa" {
		t.Fatalf("row0 = %q", got)
	}
	_ = term.MoveTo(2, 1)
	_ = term.Clear(ClearFromCursorDown)
	if got := rowText(t, s, 1); got != "bb" {
		t.Fatalf("row1 = %q", got)
	}
	if got := rowText(t, s, 2); got != "" {
		t.Fatalf("row2 = %q", got)
	}
}

func TestScreenForeground(t *testing.T) {
	s, term := newSimScreen(t, 4, 1)
	_ = term.SetForeground(tcell.ColorRed)
	_ = term.Write("x")
	_ = term.ResetStyle()
	_ = term.Write("y")
	_ = term.Flush()
	cells, _, _ := s.GetContents()
	fgX, _, _ := cells[0].Style.Decompose()
	fgY, _, _ := cells[1].Style.Decompose()
	if fgX != tcell.ColorRed {
		t.Fatalf("fg = %v, want red", fgX)
	}
	if fgY == tcell.ColorRed {
		t.Fatalf("style not reset")
	}
}

func TestANSISequences(t *testing.T) {
	var out bytes.Buffer
	term := NewANSI(&out, -1)
	term.SetSize(40, 10)
	w, h, err := term.Size()
	if err != nil || w != 40 || h != 10 {
		t.Fatalf("Size = %d,%d,%v", w, h, err)
	}
	_ = term.HideCursor()
	_ = term.MoveTo(4, 2)
	_ = term.Clear(ClearFromCursorDown)
	_ = term.SetForeground(tcell.NewRGBColor(1, 2, 3))
	_ = term.Write("hi")
	_ = term.LineFeed()
	_ = term.ScrollUp(0)
	_ = term.ScrollUp(3)
	_ = term.SetForeground(tcell.ColorDefault)
	_ = term.ShowCursor()
	if out.Len() != 0 {
		t.Fatalf("output not buffered until Flush")
	}
	if err := term.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	want := "\x1b[?25l\x1b[3;5H\x1b[J\x1b[38;2;1;2;3mhi\r\n\x1b[3S\x1b[39m\x1b[?25h"
	if got := out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
