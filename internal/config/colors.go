package config

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qrepl/internal/printer"
)

// ParseColor accepts #RRGGBB or a tcell color name. Anything it cannot
// read yields fallback.
func ParseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}

// Palette builds the output class colors from the theme.
func (t Theme) Palette() printer.Palette {
	p := printer.DefaultPalette()
	set := func(class printer.Class, name string) {
		fallback, _ := p.Color(printer.NewItem("", class))
		p.Set(class, ParseColor(name, fallback))
	}
	set(printer.ClassEvaluation, t.Eval)
	set(printer.ClassOk, t.Ok)
	set(printer.ClassWarning, t.Warning)
	set(printer.ClassRawOutput, t.RawOutput)
	set(printer.ClassShellOutput, t.Shell)
	set(printer.ClassError, t.Error)
	set(printer.ClassCustom, t.Custom)
	return p
}

func (t Theme) PromptColor() tcell.Color {
	return ParseColor(t.Prompt, tcell.ColorYellow)
}

// Syntax maps highlight capture kinds to colors. Kinds that fail to parse
// are left out so highlighters fall back to the default input color.
func (t Theme) Syntax() map[string]tcell.Color {
	kinds := map[string]string{
		"keyword":     t.SyntaxKeyword,
		"string":      t.SyntaxString,
		"comment":     t.SyntaxComment,
		"type":        t.SyntaxType,
		"function":    t.SyntaxFunction,
		"number":      t.SyntaxNumber,
		"constant":    t.SyntaxConstant,
		"operator":    t.SyntaxOperator,
		"punctuation": t.SyntaxPunctuation,
		"field":       t.SyntaxField,
		"property":    t.SyntaxField,
		"builtin":     t.SyntaxBuiltin,
		"variable":    t.SyntaxVariable,
		"parameter":   t.SyntaxParameter,
	}
	out := make(map[string]tcell.Color, len(kinds))
	for kind, name := range kinds {
		if c := ParseColor(name, tcell.ColorDefault); c != tcell.ColorDefault {
			out[kind] = c
		}
	}
	return out
}
