// Package highlight turns live input text into colored batches for echo.
package highlight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qrepl/internal/config"
	"github.com/kobzarvs/qrepl/internal/printer"
)

var ErrUnsupported = errors.New("highlight: unsupported language")

type Highlighter interface {
	Highlight(text string) *printer.Batch
}

// Plain echoes the text uncolored.
type Plain struct{}

func (Plain) Highlight(text string) *printer.Batch {
	return printer.FromString(text)
}

// New builds the highlighter named by kind for lang. "none" yields nil.
func New(kind string, lang config.Language, syntax map[string]tcell.Color, chromaStyle string) (Highlighter, error) {
	switch kind {
	case config.HighlighterNone, "":
		return nil, nil
	case config.HighlighterTreeSitter:
		h, err := NewTreeSitter(lang.Grammar, syntax)
		if err != nil {
			return nil, err
		}
		return h, nil
	case config.HighlighterChroma:
		return NewChroma(lang.Lexer, chromaStyle), nil
	}
	return nil, fmt.Errorf("highlight: unknown highlighter %q", kind)
}

// colorFor resolves a capture kind such as "function.call", falling back
// through its dotted prefixes.
func colorFor(colors map[string]tcell.Color, kind string) tcell.Color {
	for kind != "" {
		if c, ok := colors[kind]; ok {
			return c
		}
		i := strings.LastIndexByte(kind, '.')
		if i < 0 {
			break
		}
		kind = kind[:i]
	}
	return tcell.ColorDefault
}

// builder groups runs of equally colored runes into Custom items and turns
// line breaks into NewLine items.
type builder struct {
	batch *printer.Batch
	run   strings.Builder
	color tcell.Color
}

func newBuilder() *builder {
	return &builder{batch: printer.Empty()}
}

func (b *builder) add(r rune, color tcell.Color) {
	if r == '\n' {
		b.flush()
		b.batch.Push(printer.NewLine())
		return
	}
	if b.run.Len() > 0 && color != b.color {
		b.flush()
	}
	b.color = color
	b.run.WriteRune(r)
}

func (b *builder) flush() {
	if b.run.Len() == 0 {
		return
	}
	if b.color == tcell.ColorDefault {
		// Uncaptured text keeps the palette's custom color.
		b.batch.Push(printer.NewItem(b.run.String(), printer.ClassCustom))
	} else {
		b.batch.Push(printer.Custom(b.run.String(), b.color))
	}
	b.run.Reset()
}

func (b *builder) done() *printer.Batch {
	b.flush()
	return b.batch
}
