package eval

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kobzarvs/qrepl/internal/logger"
	"github.com/kobzarvs/qrepl/internal/printer"
)

var ErrNoCommand = errors.New("eval: no interpreter command")

// Exec runs the whole session plus the new snippet through an external
// interpreter reading its program on stdin. Only stdout the previous run
// did not already produce is shown.
type Exec struct {
	opts    Options
	command []string
	session session
	seen    string
}

func NewExec(command []string, opts Options) (*Exec, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, ErrNoCommand
	}
	if _, err := exec.LookPath(command[0]); err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	return &Exec{opts: opts.withDefaults(), command: command}, nil
}

func (e *Exec) Eval(ctx context.Context, code string) (*printer.Batch, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyInput
	}
	stmts := append(e.session.list(), code)
	stdout, stderr, err := e.run(ctx, Source(stmts))
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		logger.Debug("interpreter failed", "command", e.command[0], "error", err)
		return errorBatch(msg), nil
	}

	fresh := stdout
	if strings.HasPrefix(stdout, e.seen) {
		fresh = stdout[len(e.seen):]
	}
	e.session.add(code)
	e.seen = stdout

	b := resultBatch(e.opts.OutputPrompt, "", fresh, printer.ClassRawOutput)
	if warn := strings.TrimSpace(stderr); warn != "" {
		if !b.IsEmpty() {
			b.Push(printer.NewLine())
		}
		b.Append(printer.FromStringClass(warn, printer.ClassWarning))
	}
	return b, nil
}

func (e *Exec) run(ctx context.Context, program string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.command[0], e.command[1:]...)
	cmd.Stdin = strings.NewReader(program)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	return stdout.String(), stderr.String(), err
}

func (e *Exec) Reset() error {
	e.session.reset()
	e.seen = ""
	return nil
}

func (e *Exec) Pop() (string, bool) {
	stmt, ok := e.session.pop()
	if ok {
		e.rebase()
	}
	return stmt, ok
}

func (e *Exec) Delete(n int) error {
	if err := e.session.delete(n); err != nil {
		return err
	}
	e.rebase()
	return nil
}

func (e *Exec) Statements() []string {
	return e.session.list()
}

// rebase re-runs the shortened session so the next snippet is compared
// against what the remaining statements print.
func (e *Exec) rebase() {
	e.seen = ""
	if len(e.session.stmts) == 0 {
		return
	}
	stdout, _, err := e.run(context.Background(), Source(e.session.stmts))
	if err != nil {
		logger.Warn("interpreter rebase failed", "command", e.command[0], "error", err)
		return
	}
	e.seen = stdout
}

func (e *Exec) Close() error {
	return nil
}
