package eval

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/kobzarvs/qrepl/internal/printer"
)

type rendered struct {
	text    string
	classes []printer.Class
}

func render(b *printer.Batch) rendered {
	var r rendered
	var sb strings.Builder
	for item, ok := b.Next(); ok; item, ok = b.Next() {
		r.classes = append(r.classes, item.Class)
		if item.IsNewLine() {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(item.Text)
	}
	r.text = sb.String()
	return r
}

func (r rendered) has(c printer.Class) bool {
	for _, got := range r.classes {
		if got == c {
			return true
		}
	}
	return false
}

func TestLuaExpressionValue(t *testing.T) {
	e := NewLua(Options{})
	defer e.Close()

	b, err := e.Eval(context.Background(), "1 + 2")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	r := render(b)
	if r.text != "Out: 3" {
		t.Fatalf("text = %q, want %q", r.text, "Out: 3")
	}
	if len(r.classes) != 2 || r.classes[0] != printer.ClassOk || r.classes[1] != printer.ClassEvaluation {
		t.Fatalf("classes = %v", r.classes)
	}
}

func TestLuaStatePersists(t *testing.T) {
	e := NewLua(Options{})
	defer e.Close()
	ctx := context.Background()

	b, err := e.Eval(ctx, "x = 20")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !b.IsEmpty() {
		t.Fatalf("assignment produced output %q", b.Text())
	}
	b, _ = e.Eval(ctx, "x * 2")
	if got := render(b).text; got != "Out: 40" {
		t.Fatalf("text = %q", got)
	}
	if got := len(e.Statements()); got != 2 {
		t.Fatalf("statements = %d, want 2", got)
	}
}

func TestLuaPrintIsCaptured(t *testing.T) {
	e := NewLua(Options{})
	defer e.Close()

	b, _ := e.Eval(context.Background(), "print('a', 1) print('b')")
	r := render(b)
	if r.text != "a\t1\nb" {
		t.Fatalf("text = %q", r.text)
	}
	if !r.has(printer.ClassRawOutput) || r.has(printer.ClassOk) {
		t.Fatalf("classes = %v", r.classes)
	}
}

func TestLuaErrorsAreClassified(t *testing.T) {
	e := NewLua(Options{})
	defer e.Close()

	b, err := e.Eval(context.Background(), "error('boom')")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	r := render(b)
	if !r.has(printer.ClassError) || !strings.Contains(r.text, "boom") {
		t.Fatalf("rendered = %+v", r)
	}
	if got := len(e.Statements()); got != 0 {
		t.Fatalf("failed statement kept, %d statements", got)
	}

	b, _ = e.Eval(context.Background(), "local = =")
	if r := render(b); !r.has(printer.ClassError) {
		t.Fatalf("syntax error not classified: %+v", r)
	}
}

func TestLuaEmptyInput(t *testing.T) {
	e := NewLua(Options{})
	defer e.Close()
	if _, err := e.Eval(context.Background(), "  \n"); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestLuaTimeout(t *testing.T) {
	e := NewLua(Options{Timeout: 50 * time.Millisecond})
	defer e.Close()
	b, err := e.Eval(context.Background(), "while true do end")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if r := render(b); !r.has(printer.ClassError) {
		t.Fatalf("runaway loop not reported: %+v", r)
	}
}

func TestLuaPopAndDeleteReplay(t *testing.T) {
	e := NewLua(Options{})
	defer e.Close()
	ctx := context.Background()
	for _, stmt := range []string{"a = 1", "b = 2", "a = 10"} {
		if _, err := e.Eval(ctx, stmt); err != nil {
			t.Fatalf("Eval(%q): %v", stmt, err)
		}
	}

	last, ok := e.Pop()
	if !ok || last != "a = 10" {
		t.Fatalf("Pop = %q, %v", last, ok)
	}
	b, _ := e.Eval(ctx, "a")
	if got := render(b).text; got != "Out: 1" {
		t.Fatalf("after pop a = %q", got)
	}

	if err := e.Delete(2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	b, _ = e.Eval(ctx, "b")
	if got := render(b).text; got != "Out: nil" {
		t.Fatalf("after delete b = %q", got)
	}
	if err := e.Delete(9); !errors.Is(err, ErrNoSuchStmt) {
		t.Fatalf("Delete(9) err = %v", err)
	}
}

func TestLuaReset(t *testing.T) {
	e := NewLua(Options{})
	defer e.Close()
	ctx := context.Background()
	_, _ = e.Eval(ctx, "x = 1")
	if err := e.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	b, _ := e.Eval(ctx, "x")
	if got := render(b).text; got != "Out: nil" {
		t.Fatalf("x after reset = %q", got)
	}
}

func TestSourceJoinsStatements(t *testing.T) {
	if got := Source(nil); got != "" {
		t.Fatalf("Source(nil) = %q", got)
	}
	if got := Source([]string{"a", "b"}); got != "a\nb\n" {
		t.Fatalf("Source = %q", got)
	}
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecShowsOnlyNewOutput(t *testing.T) {
	requireSh(t)
	e, err := NewExec([]string{"sh", "-s"}, Options{})
	if err != nil {
		t.Fatalf("NewExec: %v", err)
	}
	ctx := context.Background()

	b, _ := e.Eval(ctx, "echo one")
	if got := render(b).text; got != "Out: one" {
		t.Fatalf("first = %q", got)
	}
	b, _ = e.Eval(ctx, "echo two")
	if got := render(b).text; got != "Out: two" {
		t.Fatalf("second = %q", got)
	}
	b, _ = e.Eval(ctx, "X=3")
	if !b.IsEmpty() {
		t.Fatalf("silent statement printed %q", b.Text())
	}
	b, _ = e.Eval(ctx, "echo $X")
	if got := render(b).text; got != "Out: 3" {
		t.Fatalf("var = %q", got)
	}
}

func TestExecFailureIsNotKept(t *testing.T) {
	requireSh(t)
	e, err := NewExec([]string{"sh", "-s"}, Options{})
	if err != nil {
		t.Fatalf("NewExec: %v", err)
	}
	b, _ := e.Eval(context.Background(), "echo bad >&2; exit 3")
	r := render(b)
	if !r.has(printer.ClassError) || r.text != "bad" {
		t.Fatalf("rendered = %+v", r)
	}
	if len(e.Statements()) != 0 {
		t.Fatalf("failed snippet kept")
	}
}

func TestExecPopRebases(t *testing.T) {
	requireSh(t)
	e, err := NewExec([]string{"sh", "-s"}, Options{})
	if err != nil {
		t.Fatalf("NewExec: %v", err)
	}
	ctx := context.Background()
	_, _ = e.Eval(ctx, "echo a")
	_, _ = e.Eval(ctx, "echo b")
	if _, ok := e.Pop(); !ok {
		t.Fatalf("Pop failed")
	}
	b, _ := e.Eval(ctx, "echo c")
	if got := render(b).text; got != "Out: c" {
		t.Fatalf("after pop = %q", got)
	}
}

func TestNewExecRequiresCommand(t *testing.T) {
	if _, err := NewExec(nil, Options{}); !errors.Is(err, ErrNoCommand) {
		t.Fatalf("err = %v, want ErrNoCommand", err)
	}
	if _, err := NewExec([]string{"definitely-not-an-interpreter-qrepl"}, Options{}); err == nil {
		t.Fatalf("expected lookup error")
	}
}
