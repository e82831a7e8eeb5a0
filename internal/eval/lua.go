package eval

import (
	"context"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/kobzarvs/qrepl/internal/logger"
	"github.com/kobzarvs/qrepl/internal/printer"
)

// Lua evaluates in a persistent in-process Lua state. Expressions print
// their values; print output is captured instead of reaching the terminal.
type Lua struct {
	opts    Options
	L       *lua.LState
	out     strings.Builder
	session session
}

func NewLua(opts Options) *Lua {
	e := &Lua{opts: opts.withDefaults()}
	e.L = e.newState()
	return e
}

func (e *Lua) newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetGlobal("print", L.NewFunction(e.print))
	return L
}

func (e *Lua) print(L *lua.LState) int {
	n := L.GetTop()
	for i := 1; i <= n; i++ {
		if i > 1 {
			e.out.WriteByte('\t')
		}
		e.out.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
	e.out.WriteByte('\n')
	return 0
}

func (e *Lua) Eval(ctx context.Context, code string) (*printer.Batch, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyInput
	}
	values, err := e.run(ctx, code)
	side := e.out.String()
	e.out.Reset()
	if err != nil {
		logger.Debug("lua evaluation failed", "error", err)
		b := resultBatch(e.opts.OutputPrompt, side, "", printer.ClassRawOutput)
		if !b.IsEmpty() {
			b.Push(printer.NewLine())
		}
		b.Append(errorBatch(err.Error()))
		return b, nil
	}
	e.session.add(code)
	return resultBatch(e.opts.OutputPrompt, side, strings.Join(values, "\t"), printer.ClassRawOutput), nil
}

// run tries code as an expression first, then as a statement block.
func (e *Lua) run(ctx context.Context, code string) ([]string, error) {
	fn, err := e.L.LoadString("return " + code)
	if err != nil {
		fn, err = e.L.LoadString(code)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	base := e.L.GetTop()
	e.L.Push(fn)
	if err := e.L.PCall(0, lua.MultRet, nil); err != nil {
		e.L.SetTop(base)
		return nil, err
	}
	n := e.L.GetTop() - base
	values := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		values = append(values, e.L.ToStringMeta(e.L.Get(base+i)).String())
	}
	e.L.SetTop(base)
	return values, nil
}

func (e *Lua) Reset() error {
	e.L.Close()
	e.L = e.newState()
	e.session.reset()
	return nil
}

func (e *Lua) Pop() (string, bool) {
	stmt, ok := e.session.pop()
	if ok {
		e.replay()
	}
	return stmt, ok
}

func (e *Lua) Delete(n int) error {
	if err := e.session.delete(n); err != nil {
		return err
	}
	e.replay()
	return nil
}

func (e *Lua) Statements() []string {
	return e.session.list()
}

// replay rebuilds the state from the remaining statements. Their output
// was shown once already and is discarded.
func (e *Lua) replay() {
	e.L.Close()
	e.L = e.newState()
	for i, stmt := range e.session.stmts {
		if _, err := e.run(context.Background(), stmt); err != nil {
			logger.Warn("lua replay failed", "statement", i+1, "error", err)
		}
	}
	e.out.Reset()
}

func (e *Lua) Close() error {
	if e.L == nil {
		return fmt.Errorf("lua: already closed")
	}
	e.L.Close()
	e.L = nil
	return nil
}
