package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Language describes one REPL language: how to run it out of process, and
// which grammar and lexer color its input.
type Language struct {
	Name      string   `toml:"name"`
	FileTypes []string `toml:"file-types"`
	Command   []string `toml:"command"`
	Grammar   string   `toml:"grammar"`
	Lexer     string   `toml:"lexer"`
}

// Extension is the file extension used for temp files of this language.
func (l Language) Extension() string {
	for _, ft := range l.FileTypes {
		if !strings.Contains(strings.TrimPrefix(ft, "."), ".") {
			return "." + strings.TrimPrefix(ft, ".")
		}
	}
	return ".txt"
}

type Languages struct {
	Languages []Language `toml:"language"`
}

func DefaultLanguages() Languages {
	return Languages{Languages: []Language{
		{Name: "lua", FileTypes: []string{"lua"}, Command: []string{"lua", "-"}, Grammar: "lua", Lexer: "lua"},
		{Name: "python", FileTypes: []string{"py"}, Command: []string{"python3", "-"}, Lexer: "python"},
		{Name: "sh", FileTypes: []string{"sh", "bash"}, Command: []string{"sh", "-s"}, Grammar: "bash", Lexer: "bash"},
		{Name: "go", FileTypes: []string{"go"}, Grammar: "go", Lexer: "go"},
	}}
}

func (l Languages) Match(path string) *Language {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range l.Languages {
		lang := &l.Languages[i]
		for _, ft := range lang.FileTypes {
			ftLower := strings.ToLower(ft)
			if ftLower == ext || ftLower == baseLower {
				return lang
			}
			if strings.HasPrefix(ftLower, ".") && strings.TrimPrefix(ftLower, ".") == ext {
				return lang
			}
		}
	}
	return nil
}

func (l Languages) Lookup(name string) *Language {
	for i := range l.Languages {
		if strings.EqualFold(l.Languages[i].Name, name) {
			return &l.Languages[i]
		}
	}
	return nil
}

// LoadLanguages reads languages.toml on top of the built-in table. A user
// entry replaces the built-in one of the same name field by field.
func LoadLanguages() (Languages, error) {
	langs := DefaultLanguages()
	path, err := LanguagesPath()
	if err != nil {
		return langs, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return langs, nil
		}
		return langs, err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return langs, err
	}
	for _, user := range cfg.Languages {
		if user.Name == "" {
			continue
		}
		dst := langs.Lookup(user.Name)
		if dst == nil {
			langs.Languages = append(langs.Languages, user)
			continue
		}
		if len(user.FileTypes) > 0 {
			dst.FileTypes = user.FileTypes
		}
		if len(user.Command) > 0 {
			dst.Command = user.Command
		}
		setString(&dst.Grammar, user.Grammar)
		setString(&dst.Lexer, user.Lexer)
	}
	return langs, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
