package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qrepl/internal/printer"
)

const defaultChromaStyle = "monokai"

// Chroma colors input with a chroma lexer and style. Tokens in the style's
// base text color stay uncolored.
type Chroma struct {
	lexer chroma.Lexer
	style *chroma.Style
	base  chroma.Colour
}

func NewChroma(lexerName, styleName string) *Chroma {
	if styleName == "" {
		styleName = defaultChromaStyle
	}
	style := styles.Get(styleName)
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Chroma{
		lexer: chroma.Coalesce(lexer),
		style: style,
		base:  style.Get(chroma.Text).Colour,
	}
}

func (h *Chroma) Highlight(text string) *printer.Batch {
	if text == "" {
		return printer.Empty()
	}
	tokens, err := chroma.Tokenise(h.lexer, nil, text)
	if err != nil {
		return printer.FromString(text)
	}

	// Lexers may append a newline the input never had.
	remaining := len(text)
	b := newBuilder()
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType || remaining <= 0 {
			break
		}
		color := h.tokenColor(tok.Type)
		for _, r := range tok.Value {
			if remaining <= 0 {
				break
			}
			b.add(r, color)
			remaining -= len(string(r))
		}
	}
	return b.done()
}

func (h *Chroma) tokenColor(tt chroma.TokenType) tcell.Color {
	c := h.style.Get(tt).Colour
	if !c.IsSet() || c == h.base {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
}
