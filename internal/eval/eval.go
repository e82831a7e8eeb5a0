// Package eval holds the evaluation backends. An evaluator keeps the
// accumulated session of accepted statements and renders each result as a
// classified batch.
package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kobzarvs/qrepl/internal/printer"
)

var (
	ErrEmptyInput = errors.New("eval: empty input")
	ErrNoSuchStmt = errors.New("eval: no such statement")
)

type Evaluator interface {
	// Eval runs code against the session. Evaluation failures come back as
	// Error items in the batch; the returned error is for input the
	// evaluator refused to run.
	Eval(ctx context.Context, code string) (*printer.Batch, error)
	// Reset drops the whole session.
	Reset() error
	// Pop drops the last accepted statement and returns it.
	Pop() (string, bool)
	// Delete drops statement n, counted from 1.
	Delete(n int) error
	Statements() []string
	Close() error
}

type Options struct {
	OutputPrompt string
	Timeout      time.Duration
}

func (o Options) withDefaults() Options {
	if o.OutputPrompt == "" {
		o.OutputPrompt = "Out: "
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

// Source joins the statements into one program.
func Source(stmts []string) string {
	if len(stmts) == 0 {
		return ""
	}
	return strings.Join(stmts, "\n") + "\n"
}

// session is the ordered list of accepted statements.
type session struct {
	stmts []string
}

func (s *session) add(code string) {
	s.stmts = append(s.stmts, code)
}

func (s *session) pop() (string, bool) {
	if len(s.stmts) == 0 {
		return "", false
	}
	last := s.stmts[len(s.stmts)-1]
	s.stmts = s.stmts[:len(s.stmts)-1]
	return last, true
}

func (s *session) delete(n int) error {
	if n < 1 || n > len(s.stmts) {
		return fmt.Errorf("%w: %d of %d", ErrNoSuchStmt, n, len(s.stmts))
	}
	s.stmts = append(s.stmts[:n-1], s.stmts[n:]...)
	return nil
}

func (s *session) list() []string {
	out := make([]string, len(s.stmts))
	copy(out, s.stmts)
	return out
}

func (s *session) reset() {
	s.stmts = nil
}

// resultBatch lays out side output, then the value behind the output
// prompt. Trailing newlines are dropped; the caller ends the block.
func resultBatch(prompt, side, value string, sideClass printer.Class) *printer.Batch {
	b := printer.Empty()
	side = strings.TrimRight(side, "\n")
	if side != "" {
		b.Append(printer.FromStringClass(side, sideClass))
	}
	value = strings.TrimRight(value, "\n")
	if value != "" {
		if !b.IsEmpty() {
			b.Push(printer.NewLine())
		}
		b.Push(printer.NewItem(prompt, printer.ClassOk))
		b.Append(printer.FromStringClass(value, printer.ClassEvaluation))
	}
	return b
}

func errorBatch(msg string) *printer.Batch {
	return printer.FromStringClass(strings.TrimRight(msg, "\n"), printer.ClassError)
}
