package config

import (
	"path/filepath"
	"testing"
)

func TestLanguagesMatch(t *testing.T) {
	cfg := DefaultLanguages()

	if got := cfg.Match("init.lua"); got == nil || got.Name != "lua" {
		t.Fatalf("Match init.lua = %#v, want lua", got)
	}
	if got := cfg.Match("script.PY"); got == nil || got.Name != "python" {
		t.Fatalf("Match script.PY = %#v, want python", got)
	}
	if got := cfg.Match("run.bash"); got == nil || got.Name != "sh" {
		t.Fatalf("Match run.bash = %#v, want sh", got)
	}
	if got := cfg.Match("unknown.txt"); got != nil {
		t.Fatalf("Match unknown.txt = %#v, want nil", got)
	}
}

func TestLanguagesLookupAndExtension(t *testing.T) {
	cfg := DefaultLanguages()
	lang := cfg.Lookup("LUA")
	if lang == nil {
		t.Fatalf("Lookup LUA = nil")
	}
	if ext := lang.Extension(); ext != ".lua" {
		t.Fatalf("Extension = %q, want .lua", ext)
	}
	if ext := (Language{}).Extension(); ext != ".txt" {
		t.Fatalf("Extension of bare language = %q", ext)
	}
}

func TestLoadLanguagesMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QREPL_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "languages.toml"), `
[[language]]
name = "python"
command = ["python3.12", "-u", "-"]

[[language]]
name = "ruby"
file-types = ["rb"]
command = ["ruby"]
lexer = "ruby"
`)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	py := cfg.Lookup("python")
	if py == nil || py.Command[0] != "python3.12" {
		t.Fatalf("python = %#v", py)
	}
	if len(py.FileTypes) != 1 || py.FileTypes[0] != "py" {
		t.Fatalf("python file types lost: %v", py.FileTypes)
	}
	if rb := cfg.Match("x.rb"); rb == nil || rb.Lexer != "ruby" {
		t.Fatalf("ruby = %#v", rb)
	}
}

func TestLoadLanguagesMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QREPL_CONFIG_HOME", dir)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if len(cfg.Languages) != len(DefaultLanguages().Languages) {
		t.Fatalf("Languages len = %d, want built-in table", len(cfg.Languages))
	}
}
