package voice

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Recognizer produces a final transcript from live microphone input.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// CommandRecognizer runs an external streaming recognizer and takes the last
// non-empty line it prints as the final transcript.
type CommandRecognizer struct {
	path string
	args []string
}

func NewCommandRecognizer(command string) (*CommandRecognizer, error) {
	fields := strings.Fields(command)

	if len(fields) == 0 {
		return nil, ErrRecognizerUnavailable
	}

	path, err := exec.LookPath(fields[0])

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecognizerUnavailable, err)
	}

	return &CommandRecognizer{
		path: path,
		args: fields[1:],
	}, nil
}

func (r *CommandRecognizer) Recognize(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.path, r.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("recognizer failed: %w: %s", err, msg)
		}

		return "", fmt.Errorf("recognizer failed: %w", err)
	}

	return lastLine(stdout.String())
}

func lastLine(output string) (string, error) {
	lines := strings.Split(output, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line, nil
		}
	}

	return "", ErrNoSpeech
}
