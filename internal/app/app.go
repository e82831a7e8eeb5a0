package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qrepl/internal/config"
	"github.com/kobzarvs/qrepl/internal/dispatch"
	"github.com/kobzarvs/qrepl/internal/eval"
	"github.com/kobzarvs/qrepl/internal/highlight"
	"github.com/kobzarvs/qrepl/internal/logger"
	"github.com/kobzarvs/qrepl/internal/render"
)

// Options are the command line overrides. Empty fields keep the configured
// value.
type Options struct {
	ConfigHome string
	Debug      bool
	Backend    string
	Evaluator  string
	Language   string
}

// App is the top-level runtime for qrepl.
type App struct {
	opts Options
}

func New(opts Options) *App {
	return &App{opts: opts}
}

func (a *App) Run(ctx context.Context) error {
	if a.opts.ConfigHome != "" {
		if err := os.Setenv("QREPL_CONFIG_HOME", a.opts.ConfigHome); err != nil {
			return err
		}
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	logDir, _ := config.ConfigDir()
	if err := logger.Init(logger.Options{Dir: logDir, Debug: a.opts.Debug}); err != nil {
		logger.UseNop()
	}
	defer logger.Close()

	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	lang := langs.Lookup(cfg.Repl.Language)
	if lang == nil {
		return fmt.Errorf("unknown language %q", cfg.Repl.Language)
	}

	ev, err := newEvaluator(cfg.Repl, *lang)
	if err != nil {
		return err
	}
	defer func() { _ = ev.Close() }()

	hl := newHighlighter(cfg, *lang)

	backend, err := newBackend(cfg.Repl.Backend)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	engine, err := render.New(backend.Terminal(), render.Options{
		InputPrompt:        cfg.Repl.InputPrompt,
		ContinuationPrompt: cfg.Repl.ContinuationPrompt,
		PromptColor:        cfg.Theme.PromptColor(),
		Palette:            cfg.Theme.Palette(),
	})
	if err != nil {
		return err
	}

	dopts := dispatch.Options{
		Language:  *lang,
		Languages: langs,
		Editor:    dispatch.ExternalEditor(cfg.Repl.EditorCommand(), backend),
	}
	sopts := SessionOptions{
		HighlightDelay: time.Duration(cfg.Repl.HighlightDelay) * time.Millisecond,
		TabWidth:       cfg.Repl.TabWidth,
	}
	if hl != nil {
		dopts.Highlighter = hl
		sopts.Highlighter = hl
	}
	s := NewSession(engine, dispatch.New(ev, dopts), sopts)

	logger.Info("session started",
		"backend", cfg.Repl.Backend,
		"language", lang.Name,
		"evaluator", cfg.Repl.Evaluator,
		"highlighter", cfg.Repl.Highlighter,
	)
	if err := s.Start(); err != nil {
		return err
	}
	return s.Run(ctx, backend.Events())
}

func (a *App) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if a.opts.Backend != "" {
		cfg.Repl.Backend = a.opts.Backend
	}
	if a.opts.Evaluator != "" {
		cfg.Repl.Evaluator = a.opts.Evaluator
	}
	if a.opts.Language != "" {
		cfg.Repl.Language = a.opts.Language
	}
	return cfg, cfg.Repl.Validate()
}

func newEvaluator(opts config.ReplOptions, lang config.Language) (eval.Evaluator, error) {
	eopts := eval.Options{
		OutputPrompt: opts.OutputPrompt,
		Timeout:      time.Duration(opts.EvalTimeout) * time.Second,
	}
	switch opts.Evaluator {
	case config.EvaluatorLua:
		if !strings.EqualFold(lang.Name, "lua") {
			return nil, fmt.Errorf("the lua evaluator cannot run %s, use --evaluator exec", lang.Name)
		}
		return eval.NewLua(eopts), nil
	case config.EvaluatorExec:
		command := opts.ExecCommand
		if len(command) == 0 {
			command = lang.Command
		}
		ev, err := eval.NewExec(command, eopts)
		if err != nil {
			return nil, fmt.Errorf("%s evaluator: %w", lang.Name, err)
		}
		return ev, nil
	}
	return nil, fmt.Errorf("unknown evaluator %q", opts.Evaluator)
}

// newHighlighter builds the configured highlighter. Tree-sitter falls back
// to chroma when it has no grammar for the language or its query does not
// compile; any other failure leaves the echo plain.
func newHighlighter(cfg config.Config, lang config.Language) highlight.Highlighter {
	kind := cfg.Repl.Highlighter
	hl, err := highlight.New(kind, lang, cfg.Theme.Syntax(), cfg.Repl.ChromaStyle)
	if err != nil && kind == config.HighlighterTreeSitter {
		if errors.Is(err, highlight.ErrUnsupported) {
			logger.Info("no tree-sitter grammar, using chroma", "language", lang.Name)
		} else {
			logger.Warn("tree-sitter unavailable, using chroma", "language", lang.Name, "err", err)
		}
		hl, err = highlight.New(config.HighlighterChroma, lang, cfg.Theme.Syntax(), cfg.Repl.ChromaStyle)
	}
	if err != nil {
		logger.Warn("highlighting disabled", "err", err)
		return nil
	}
	return hl
}

func newBackend(kind string) (Backend, error) {
	if kind == config.BackendScreen {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		b, err := newScreenBackend(s)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return newInlineBackend()
}
