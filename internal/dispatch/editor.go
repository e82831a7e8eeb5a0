package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Suspender hands the terminal to a child process and takes it back.
type Suspender interface {
	Suspend() error
	Resume() error
}

// ExternalEditor runs command on a temp file holding the initial text. The
// terminal is suspended for the editor's lifetime.
func ExternalEditor(command string, term Suspender) EditorFunc {
	return func(ctx context.Context, initial, ext string) (string, error) {
		argv := strings.Fields(command)
		if len(argv) == 0 {
			return "", errors.New("editor command is empty")
		}

		f, err := os.CreateTemp("", "qrepl-*"+ext)
		if err != nil {
			return "", err
		}
		path := f.Name()
		defer os.Remove(path)
		if _, err := f.WriteString(initial); err != nil {
			_ = f.Close()
			return "", err
		}
		if err := f.Close(); err != nil {
			return "", err
		}

		if term != nil {
			if err := term.Suspend(); err != nil {
				return "", fmt.Errorf("suspend terminal: %w", err)
			}
		}
		cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		runErr := cmd.Run()
		if term != nil {
			if err := term.Resume(); err != nil {
				return "", fmt.Errorf("resume terminal: %w", err)
			}
		}
		if runErr != nil {
			return "", fmt.Errorf("%s: %w", argv[0], runErr)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
