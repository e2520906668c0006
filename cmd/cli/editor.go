package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// stringFromEditor launches $VISUAL (or $EDITOR as fallback) on a temp
// file seeded with prepopulate and returns the saved content.
func stringFromEditor(prepopulate string) (string, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		return "", errors.New("no editor set, please set $VISUAL or $EDITOR")
	}

	tmp, err := os.CreateTemp("", "todust-*.adoc")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(prepopulate); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to seed temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.Command(editor, tmp.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	content, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read temp file back: %w", err)
	}

	return string(content), nil
}
