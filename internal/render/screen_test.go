package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qrepl/internal/buffer"
	"github.com/kobzarvs/qrepl/internal/printer"
	"github.com/kobzarvs/qrepl/internal/terminal"
)

func newScreenEngine(t *testing.T, w, h int) (tcell.SimulationScreen, *Engine) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)
	return s, newTestEngine(t, terminal.NewScreen(s))
}

func screenRow(s tcell.SimulationScreen, row int) string {
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

func TestRenderInputWrapsWithContinuationMarker(t *testing.T) {
	s, e := newScreenEngine(t, 12, 4)
	buf := buffer.FromString("abcdefghij", e.WrapWidth())
	buf.GotoEnd()
	if err := e.RenderInput(buf, nil); err != nil {
		t.Fatalf("RenderInput: %v", err)
	}
	if err := e.SyncCursor(buf); err != nil {
		t.Fatalf("SyncCursor: %v", err)
	}
	if got := screenRow(s, 0); got != "In: abcdefgh" {
		t.Fatalf("row0 = %q", got)
	}
	if got := screenRow(s, 1); got != "..: ij" {
		t.Fatalf("row1 = %q", got)
	}
	x, y, visible := s.GetCursor()
	if !visible || x != 6 || y != 1 {
		t.Fatalf("cursor = (%d,%d,%v), want (6,1,true)", x, y, visible)
	}
}

func TestRenderInputExplicitNewline(t *testing.T) {
	s, e := newScreenEngine(t, 20, 4)
	buf := buffer.FromString("if x then\n  y\nend", e.WrapWidth())
	if err := e.RenderInput(buf, nil); err != nil {
		t.Fatalf("RenderInput: %v", err)
	}
	want := []string{"In: if x then", "..:   y", "..: end", ""}
	for row, w := range want {
		if got := screenRow(s, row); got != w {
			t.Fatalf("row%d = %q, want %q", row, got, w)
		}
	}
}

func TestRenderInputRedrawClearsStaleText(t *testing.T) {
	s, e := newScreenEngine(t, 20, 4)
	buf := buffer.FromString("long input", e.WrapWidth())
	if err := e.RenderInput(buf, nil); err != nil {
		t.Fatalf("RenderInput: %v", err)
	}
	buf = buffer.FromString("lo", e.WrapWidth())
	if err := e.RenderInput(buf, nil); err != nil {
		t.Fatalf("RenderInput: %v", err)
	}
	if got := screenRow(s, 0); got != "In: lo" {
		t.Fatalf("row0 = %q", got)
	}
}

func TestRenderInputAppliesHighlightColors(t *testing.T) {
	s, e := newScreenEngine(t, 20, 3)
	buf := buffer.FromString("ab", e.WrapWidth())
	if err := e.RenderInput(buf, upperHighlighter{}); err != nil {
		t.Fatalf("RenderInput: %v", err)
	}
	s.Show()
	cells, _, _ := s.GetContents()
	fg, _, _ := cells[4].Style.Decompose()
	if fg != tcell.ColorFuchsia {
		t.Fatalf("input fg = %v, want fuchsia", fg)
	}
	promptFg, _, _ := cells[0].Style.Decompose()
	if promptFg != tcell.ColorYellow {
		t.Fatalf("prompt fg = %v, want yellow", promptFg)
	}
}

func TestOutputThenPromptAtBottom(t *testing.T) {
	s, e := newScreenEngine(t, 20, 4)
	e.cursor.Pos.Row = 3
	e.cursor.StartingRow = 3

	out := printer.New(printer.NewItem("Out: ", printer.ClassOk))
	out.Push(printer.NewItem("42", printer.ClassEvaluation))
	out.AddNewLines(2)
	if err := e.RenderOutput(out); err != nil {
		t.Fatalf("RenderOutput: %v", err)
	}
	if err := e.RenderInput(buffer.New(e.WrapWidth()), nil); err != nil {
		t.Fatalf("RenderInput: %v", err)
	}
	if got := screenRow(s, 1); got != "Out: 42" {
		t.Fatalf("row1 = %q", got)
	}
	if got := screenRow(s, 3); got != "In:" {
		t.Fatalf("row3 = %q", got)
	}
	if c := e.Cursor(); c.StartingRow != 3 || c.Pos.Row != 3 {
		t.Fatalf("cursor = %+v", c)
	}
}
