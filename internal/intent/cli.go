package intent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const disableExternalLLMEnv = "MENTAT_DISABLE_EXTERNAL_LLM"

const claudeHooklessSettingsJSON = `{"hooks":{}}`

const classifyPromptTemplate = `Classify the following request into exactly one of these intents: %s.
Respond with the single intent word only, nothing else.

Request:
%s`

// CLIClassifier shells out to a local LLM CLI for intent classification.
// "claude" agents use `claude -p`, "opencode" agents use `opencode run`.
// No API keys required — the CLIs handle their own auth.
type CLIClassifier struct {
	command string
	args    func(prompt string) []string
}

// NewCLIClassifier returns a classifier backed by the given agent's CLI.
// Returns error if external execution is disabled, the agent type is
// unknown, or the CLI binary is not in PATH. Callers fall back to the
// keyword classifier on any error.
func NewCLIClassifier(agentName string) (*CLIClassifier, error) {
	if strings.TrimSpace(os.Getenv(disableExternalLLMEnv)) != "" {
		return nil, fmt.Errorf("external LLM CLI execution disabled by %s", disableExternalLLMEnv)
	}

	c, err := resolveClassifier(agentName)
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(c.command); err != nil {
		return nil, fmt.Errorf("cli tool %q not found in PATH: %w", c.command, err)
	}
	return c, nil
}

// resolveClassifier maps agent name to CLI command + arg builder.
// Returns error for unknown agent types. Empty string defaults to claude.
func resolveClassifier(agentName string) (*CLIClassifier, error) {
	name := strings.ToLower(agentName)
	switch {
	case strings.HasPrefix(name, "opencode"):
		return &CLIClassifier{
			command: "opencode",
			args:    func(p string) []string { return []string{"run", p} },
		}, nil
	case strings.HasPrefix(name, "claude"), name == "":
		return &CLIClassifier{
			command: "claude",
			args: func(p string) []string {
				return []string{"-p", p, "--output-format", "text", "--settings", claudeHooklessSettingsJSON}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown agent type %q (supported: claude, opencode)", agentName)
	}
}

// validatePrompt checks for unsafe characters in prompts.
// While Go's exec avoids shell injection (no shell involved),
// external CLIs may be shell scripts.
func validatePrompt(s string) error {
	if len(s) == 0 {
		return errors.New("empty prompt")
	}
	if len(s) > 16000 {
		return fmt.Errorf("prompt exceeds 16000 byte limit (%d bytes)", len(s))
	}
	if strings.ContainsRune(s, 0) {
		return errors.New("prompt contains null byte")
	}
	return nil
}

// limitedWriter caps writes at maxBytes, silently discarding overflow, so a
// buggy CLI emitting unbounded stderr cannot exhaust memory.
type limitedWriter struct {
	buf      bytes.Buffer
	maxBytes int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	originalLen := len(p)
	remaining := w.maxBytes - w.buf.Len()
	if remaining <= 0 {
		return originalLen, nil // discard but report success
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	w.buf.Write(p)
	return originalLen, nil // always report original len to avoid short write errors
}

// Classify runs the CLI with a classification prompt and returns its answer.
func (c *CLIClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	full := fmt.Sprintf(classifyPromptTemplate, strings.Join(Known, ", "), prompt)
	if err := validatePrompt(full); err != nil {
		return "", fmt.Errorf("invalid prompt: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context expired before exec: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.command, c.args(full)...) //nolint:gosec // G204: command is a known LLM CLI binary, validated at construction
	cmd.Env = os.Environ()

	var stdout bytes.Buffer
	stderrW := &limitedWriter{maxBytes: 4096}
	cmd.Stdout = &stdout
	cmd.Stderr = stderrW

	if err := cmd.Run(); err != nil {
		stderrMsg := stderrW.buf.String()
		if stderrW.buf.Len() >= stderrW.maxBytes {
			stderrMsg += " (truncated)"
		}
		return "", fmt.Errorf("cli %s failed: %w (stderr: %s)", c.command, err, stderrMsg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Command returns the CLI command name for this classifier.
func (c *CLIClassifier) Command() string {
	return c.command
}
