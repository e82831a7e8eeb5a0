// Package dispatch routes submitted input to meta-commands or to the
// evaluator.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kobzarvs/qrepl/internal/config"
	"github.com/kobzarvs/qrepl/internal/eval"
	"github.com/kobzarvs/qrepl/internal/highlight"
	"github.com/kobzarvs/qrepl/internal/logger"
	"github.com/kobzarvs/qrepl/internal/printer"
)

// ErrQuit asks the session to end.
var ErrQuit = errors.New("dispatch: quit")

const okMessage = "Ok!"

// EditorFunc opens initial in an external editor and returns the edited
// text. ext is the temp file extension.
type EditorFunc func(ctx context.Context, initial, ext string) (string, error)

type Options struct {
	Highlighter highlight.Highlighter
	Language    config.Language
	// Languages lets :load refuse scripts written in another language.
	Languages config.Languages
	Editor    EditorFunc
	Shell     []string
}

// Result is what a submission produced. When Edited is set the session
// loads Input into a fresh buffer instead of evaluating anything.
type Result struct {
	Output *printer.Batch
	Input  string
	Edited bool
}

type Dispatcher struct {
	eval eval.Evaluator
	opts Options
}

func New(ev eval.Evaluator, opts Options) *Dispatcher {
	if len(opts.Shell) == 0 {
		opts.Shell = []string{"sh", "-c"}
	}
	return &Dispatcher{eval: ev, opts: opts}
}

type command struct {
	name string
	args string
	help string
	run  func(d *Dispatcher, ctx context.Context, args string) (Result, error)
}

var commands []command

func init() {
	commands = []command{
		{name: "help", help: "show this help", run: (*Dispatcher).help},
		{name: "reset", help: "drop the whole session", run: (*Dispatcher).reset},
		{name: "show", help: "print the session source", run: (*Dispatcher).show},
		{name: "pop", help: "drop the last statement", run: (*Dispatcher).pop},
		{name: "del", args: "<n>", help: "drop statement n", run: (*Dispatcher).del},
		{name: "load", args: "<file>", help: "evaluate a script into the session", run: (*Dispatcher).load},
		{name: "edit", args: "[code]", help: "edit code (or the last statement) in $EDITOR", run: (*Dispatcher).edit},
		{name: "quit", help: "leave", run: (*Dispatcher).quit},
		{name: "exit", help: "leave", run: (*Dispatcher).quit},
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, text string) (Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Output: printer.Empty()}, nil
	}
	if strings.HasPrefix(trimmed, "::") {
		return d.shell(ctx, strings.TrimSpace(trimmed[2:]))
	}
	if strings.HasPrefix(trimmed, ":") {
		name, args, _ := strings.Cut(trimmed[1:], " ")
		for _, c := range commands {
			if c.name == name {
				logger.Debug("meta command", "name", name)
				return c.run(d, ctx, strings.TrimSpace(args))
			}
		}
		return errorResult(fmt.Sprintf("unknown command :%s, try :help", name)), nil
	}
	return d.evaluate(ctx, text)
}

func (d *Dispatcher) evaluate(ctx context.Context, code string) (Result, error) {
	out, err := d.eval.Eval(ctx, code)
	if errors.Is(err, eval.ErrEmptyInput) {
		return Result{Output: printer.Empty()}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out}, nil
}

func (d *Dispatcher) help(context.Context, string) (Result, error) {
	b := printer.Empty()
	for i, c := range commands {
		if i > 0 {
			b.Push(printer.NewLine())
		}
		usage := ":" + c.name
		if c.args != "" {
			usage += " " + c.args
		}
		b.Push(printer.NewItem(fmt.Sprintf("%-14s", usage), printer.ClassOk))
		b.Push(printer.NewItem(c.help, printer.ClassEvaluation))
	}
	b.Push(printer.NewLine())
	b.Push(printer.NewItem(fmt.Sprintf("%-14s", "::<cmd>"), printer.ClassOk))
	b.Push(printer.NewItem("run a shell command", printer.ClassEvaluation))
	return Result{Output: b}, nil
}

func (d *Dispatcher) reset(context.Context, string) (Result, error) {
	if err := d.eval.Reset(); err != nil {
		return errorResult(err.Error()), nil
	}
	return okResult(), nil
}

func (d *Dispatcher) show(context.Context, string) (Result, error) {
	src := strings.TrimRight(eval.Source(d.eval.Statements()), "\n")
	if src == "" {
		return Result{Output: printer.New(printer.NewItem("session is empty", printer.ClassWarning))}, nil
	}
	if d.opts.Highlighter != nil {
		return Result{Output: d.opts.Highlighter.Highlight(src)}, nil
	}
	return Result{Output: printer.FromString(src)}, nil
}

func (d *Dispatcher) pop(context.Context, string) (Result, error) {
	if _, ok := d.eval.Pop(); !ok {
		return Result{Output: printer.New(printer.NewItem("nothing to pop", printer.ClassWarning))}, nil
	}
	return okResult(), nil
}

func (d *Dispatcher) del(_ context.Context, args string) (Result, error) {
	n, err := strconv.Atoi(args)
	if err != nil {
		return errorResult(fmt.Sprintf(":del expects a statement number, got %q", args)), nil
	}
	if err := d.eval.Delete(n); err != nil {
		return errorResult(err.Error()), nil
	}
	return okResult(), nil
}

func (d *Dispatcher) load(ctx context.Context, args string) (Result, error) {
	if args == "" {
		return errorResult(":load expects a file"), nil
	}
	if lang := d.opts.Languages.Match(args); lang != nil && !strings.EqualFold(lang.Name, d.opts.Language.Name) {
		return errorResult(fmt.Sprintf("%s is %s, the session runs %s", args, lang.Name, d.opts.Language.Name)), nil
	}
	data, err := os.ReadFile(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	res, err := d.evaluate(ctx, string(data))
	if err != nil || res.Output == nil || !res.Output.IsEmpty() {
		return res, err
	}
	return okResult(), nil
}

func (d *Dispatcher) edit(ctx context.Context, args string) (Result, error) {
	if d.opts.Editor == nil {
		return errorResult("no editor configured"), nil
	}
	initial := args
	if initial == "" {
		if stmts := d.eval.Statements(); len(stmts) > 0 {
			initial = stmts[len(stmts)-1]
		}
	}
	edited, err := d.opts.Editor(ctx, initial, d.opts.Language.Extension())
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return Result{Output: printer.Empty(), Input: strings.TrimRight(edited, "\n"), Edited: true}, nil
}

func (d *Dispatcher) quit(context.Context, string) (Result, error) {
	return Result{}, ErrQuit
}

func (d *Dispatcher) shell(ctx context.Context, line string) (Result, error) {
	if line == "" {
		return errorResult("::<cmd> expects a command"), nil
	}
	args := append(append([]string{}, d.opts.Shell[1:]...), line)
	out, err := exec.CommandContext(ctx, d.opts.Shell[0], args...).CombinedOutput()
	text := strings.TrimRight(string(out), "\n")
	if err != nil {
		if text == "" {
			text = err.Error()
		}
		return errorResult(text), nil
	}
	if text == "" {
		return okResult(), nil
	}
	return Result{Output: printer.FromStringClass(text, printer.ClassShellOutput)}, nil
}

func okResult() Result {
	return Result{Output: printer.New(printer.NewItem(okMessage, printer.ClassOk))}
}

func errorResult(msg string) Result {
	return Result{Output: printer.FromStringClass(msg, printer.ClassError)}
}
