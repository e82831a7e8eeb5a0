package highlight

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/lua"

	"github.com/kobzarvs/qrepl/internal/logger"
	"github.com/kobzarvs/qrepl/internal/printer"
)

// TreeSitter parses the whole input on every call and colors it from the
// grammar's highlight query. Input is small, so no incremental parsing.
type TreeSitter struct {
	grammar string
	parser  *sitter.Parser
	query   *sitter.Query
	colors  map[string]tcell.Color
}

type grammar struct {
	lang  *sitter.Language
	query string
}

func grammars(name string) (grammar, bool) {
	switch name {
	case "lua":
		return grammar{lua.GetLanguage(), luaHighlightQuery}, true
	case "bash", "sh":
		return grammar{bash.GetLanguage(), bashHighlightQuery}, true
	case "go", "golang":
		return grammar{golang.GetLanguage(), goHighlightQuery}, true
	}
	return grammar{}, false
}

func NewTreeSitter(name string, colors map[string]tcell.Color) (*TreeSitter, error) {
	g, ok := grammars(name)
	if !ok {
		return nil, fmt.Errorf("%w: tree-sitter grammar %q", ErrUnsupported, name)
	}
	p := sitter.NewParser()
	p.SetLanguage(g.lang)

	query, err := sitter.NewQuery([]byte(g.query), g.lang)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("tree-sitter %s highlight query: %w", name, err)
	}
	return &TreeSitter{grammar: name, parser: p, query: query, colors: colors}, nil
}

func (h *TreeSitter) Highlight(text string) *printer.Batch {
	if text == "" {
		return printer.FromString(text)
	}
	source := []byte(text)
	tree, err := h.parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		logger.Debug("highlight parse failed", "grammar", h.grammar, "error", err)
		return printer.FromString(text)
	}
	defer tree.Close()

	kinds := h.captureKinds(tree, source)
	b := newBuilder()
	for i := 0; i < len(source); {
		r, size := utf8.DecodeRune(source[i:])
		b.add(r, colorFor(h.colors, kinds[i]))
		i += size
	}
	return b.done()
}

// captureKinds assigns each source byte the first capture name that covers
// it.
func (h *TreeSitter) captureKinds(tree *sitter.Tree, source []byte) []string {
	kinds := make([]string, len(source))
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(h.query, tree.RootNode())

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			kind := h.query.CaptureNameForId(capture.Index)
			start := int(capture.Node.StartByte())
			end := int(capture.Node.EndByte())
			if end > len(source) {
				end = len(source)
			}
			for i := start; i < end; i++ {
				if kinds[i] == "" {
					kinds[i] = kind
				}
			}
		}
	}
	return kinds
}

func (h *TreeSitter) Close() {
	h.query.Close()
	h.parser.Close()
}

const luaHighlightQuery = `
((comment) @comment)
((string) @string)
((number) @number)
((nil) @constant)
[
  "and" "break" "do" "else" "elseif" "end" "for" "function" "if"
  "in" "local" "not" "or" "repeat" "return" "then" "until" "while"
] @keyword
[
  "=" "+" "-" "*" "/" "%" "^" "#" "==" "~=" "<=" ">=" "<" ">" ".."
] @operator
[
  "(" ")" "{" "}" "[" "]" "," ";"
] @punctuation
`

const bashHighlightQuery = `
((comment) @comment)
((string) @string)
((raw_string) @string)
((number) @number)
((variable_name) @variable)
((command_name) @function)
((function_definition name: (word) @function))
[
  "if" "then" "else" "elif" "fi" "case" "esac" "for" "while" "until"
  "do" "done" "in" "function" "local" "export" "unset"
] @keyword
["&&" "||" "|" "&" "<" ">" ">>" ";" ";;"] @operator
`

const goHighlightQuery = `
((comment) @comment)
((interpreted_string_literal) @string)
((raw_string_literal) @string)
((rune_literal) @string)
((int_literal) @number)
((float_literal) @number)
[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface"
  "map" "package" "range" "return" "select" "struct" "switch"
  "type" "var"
] @keyword
((nil) @constant)
((true) @constant)
((false) @constant)
((identifier) @builtin (#match? @builtin "^(append|cap|clear|close|copy|delete|len|make|max|min|new|panic|print|println|recover)$"))
((type_identifier) @type)
((function_declaration name: (identifier) @function))
((call_expression function: (identifier) @function))
((field_identifier) @field)
((identifier) @variable)
[
  "+" "-" "*" "/" "%" "==" "!=" "<=" ">=" "<" ">" "=" ":=" "&&" "||" "!"
] @operator
`
