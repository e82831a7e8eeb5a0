package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type ReplOptions struct {
	Backend            string   `toml:"backend"`
	Language           string   `toml:"language"`
	Evaluator          string   `toml:"evaluator"`
	ExecCommand        []string `toml:"exec-command"`
	EvalTimeout        int      `toml:"eval-timeout"`
	Highlighter        string   `toml:"highlighter"`
	HighlightDelay     int      `toml:"highlight-delay"`
	ChromaStyle        string   `toml:"chroma-style"`
	Editor             string   `toml:"editor"`
	InputPrompt        string   `toml:"input-prompt"`
	ContinuationPrompt string   `toml:"continuation-prompt"`
	OutputPrompt       string   `toml:"output-prompt"`
	TabWidth           int      `toml:"tab-width"`
}

type Theme struct {
	Theme             string `toml:"theme"`
	Eval              string `toml:"eval"`
	Ok                string `toml:"ok"`
	Warning           string `toml:"warning"`
	RawOutput         string `toml:"raw-output"`
	Shell             string `toml:"shell"`
	Error             string `toml:"error"`
	Custom            string `toml:"custom"`
	Prompt            string `toml:"prompt"`
	SyntaxKeyword     string `toml:"syntax-keyword"`
	SyntaxString      string `toml:"syntax-string"`
	SyntaxComment     string `toml:"syntax-comment"`
	SyntaxType        string `toml:"syntax-type"`
	SyntaxFunction    string `toml:"syntax-function"`
	SyntaxNumber      string `toml:"syntax-number"`
	SyntaxConstant    string `toml:"syntax-constant"`
	SyntaxOperator    string `toml:"syntax-operator"`
	SyntaxPunctuation string `toml:"syntax-punctuation"`
	SyntaxField       string `toml:"syntax-field"`
	SyntaxBuiltin     string `toml:"syntax-builtin"`
	SyntaxVariable    string `toml:"syntax-variable"`
	SyntaxParameter   string `toml:"syntax-parameter"`
}

type Config struct {
	Repl  ReplOptions `toml:"repl"`
	Theme Theme       `toml:"theme"`
}

const (
	BackendInline = "inline"
	BackendScreen = "screen"

	EvaluatorLua  = "lua"
	EvaluatorExec = "exec"

	HighlighterTreeSitter = "tree-sitter"
	HighlighterChroma     = "chroma"
	HighlighterNone       = "none"
)

func Default() Config {
	return Config{
		Repl: ReplOptions{
			Backend:            BackendInline,
			Language:           "lua",
			Evaluator:          EvaluatorLua,
			EvalTimeout:        10,
			Highlighter:        HighlighterTreeSitter,
			HighlightDelay:     150,
			ChromaStyle:        "monokai",
			InputPrompt:        "In: ",
			ContinuationPrompt: "..: ",
			OutputPrompt:       "Out: ",
			TabWidth:           4,
		},
		Theme: Theme{
			Eval:              "white",
			Ok:                "blue",
			Warning:           "yellow",
			RawOutput:         "green",
			Shell:             "green",
			Error:             "red",
			Custom:            "white",
			Prompt:            "yellow",
			SyntaxKeyword:     "#FFA759",
			SyntaxString:      "#BAE67E",
			SyntaxComment:     "#5C6773",
			SyntaxType:        "#5CCFE6",
			SyntaxFunction:    "#FFD173",
			SyntaxNumber:      "#D4BFFF",
			SyntaxConstant:    "#FFDD8E",
			SyntaxOperator:    "#F29668",
			SyntaxPunctuation: "#C0C0C0",
			SyntaxField:       "#E6B673",
			SyntaxBuiltin:     "#73D0FF",
			SyntaxVariable:    "#B3B1AD",
			SyntaxParameter:   "#B3B1AD",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	mergeRepl(&cfg.Repl, userCfg.Repl)

	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	return cfg, cfg.Repl.Validate()
}

func mergeRepl(dst *ReplOptions, src ReplOptions) {
	setString(&dst.Backend, src.Backend)
	setString(&dst.Language, src.Language)
	setString(&dst.Evaluator, src.Evaluator)
	if len(src.ExecCommand) > 0 {
		dst.ExecCommand = src.ExecCommand
	}
	if src.EvalTimeout > 0 {
		dst.EvalTimeout = src.EvalTimeout
	}
	setString(&dst.Highlighter, src.Highlighter)
	if src.HighlightDelay > 0 {
		dst.HighlightDelay = src.HighlightDelay
	}
	setString(&dst.ChromaStyle, src.ChromaStyle)
	setString(&dst.Editor, src.Editor)
	setString(&dst.InputPrompt, src.InputPrompt)
	setString(&dst.ContinuationPrompt, src.ContinuationPrompt)
	setString(&dst.OutputPrompt, src.OutputPrompt)
	if src.TabWidth > 0 {
		dst.TabWidth = src.TabWidth
	}
}

func mergeTheme(dst *Theme, src Theme) {
	setString(&dst.Eval, src.Eval)
	setString(&dst.Ok, src.Ok)
	setString(&dst.Warning, src.Warning)
	setString(&dst.RawOutput, src.RawOutput)
	setString(&dst.Shell, src.Shell)
	setString(&dst.Error, src.Error)
	setString(&dst.Custom, src.Custom)
	setString(&dst.Prompt, src.Prompt)
	setString(&dst.SyntaxKeyword, src.SyntaxKeyword)
	setString(&dst.SyntaxString, src.SyntaxString)
	setString(&dst.SyntaxComment, src.SyntaxComment)
	setString(&dst.SyntaxType, src.SyntaxType)
	setString(&dst.SyntaxFunction, src.SyntaxFunction)
	setString(&dst.SyntaxNumber, src.SyntaxNumber)
	setString(&dst.SyntaxConstant, src.SyntaxConstant)
	setString(&dst.SyntaxOperator, src.SyntaxOperator)
	setString(&dst.SyntaxPunctuation, src.SyntaxPunctuation)
	setString(&dst.SyntaxField, src.SyntaxField)
	setString(&dst.SyntaxBuiltin, src.SyntaxBuiltin)
	setString(&dst.SyntaxVariable, src.SyntaxVariable)
	setString(&dst.SyntaxParameter, src.SyntaxParameter)
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Validate rejects option values no component understands.
func (o ReplOptions) Validate() error {
	switch o.Backend {
	case BackendInline, BackendScreen:
	default:
		return fmt.Errorf("repl.backend: unknown backend %q", o.Backend)
	}
	switch o.Evaluator {
	case EvaluatorLua, EvaluatorExec:
	default:
		return fmt.Errorf("repl.evaluator: unknown evaluator %q", o.Evaluator)
	}
	switch o.Highlighter {
	case HighlighterTreeSitter, HighlighterChroma, HighlighterNone:
	default:
		return fmt.Errorf("repl.highlighter: unknown highlighter %q", o.Highlighter)
	}
	return nil
}

// EditorCommand is the external editor used by :edit.
func (o ReplOptions) EditorCommand() string {
	if o.Editor != "" {
		return o.Editor
	}
	if v := os.Getenv("EDITOR"); v != "" {
		return v
	}
	return "vi"
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", name, err)
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QREPL_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qrepl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qrepl"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
