// Package local wraps an offline translation binary (argos-translate style)
// so translation works with no network and no credentials. The binary reads
// one source line per input on stdin and writes one translated line per
// input, which gives this engine a native batch path.
package local

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const defaultBinary = "argos-translate"

type Engine struct {
	binary   string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, binary string, args []string, stdin string) (string, error)
}

var _ ports.TranslationProvider = (*Engine)(nil)

// Option overrides a collaborator, used by tests.
type Option func(*Engine)

func WithLookPath(fn func(string) (string, error)) Option {
	return func(e *Engine) { e.lookPath = fn }
}

func WithRunner(fn func(ctx context.Context, binary string, args []string, stdin string) (string, error)) Option {
	return func(e *Engine) { e.run = fn }
}

func New(binary string, opts ...Option) *Engine {
	if strings.TrimSpace(binary) == "" {
		binary = defaultBinary
	}
	e := &Engine{binary: binary, lookPath: exec.LookPath, run: runBinary}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) ID() domain.EngineType { return domain.EngineLocal }
func (e *Engine) Name() string          { return "Local engine" }

func (e *Engine) IsAvailable() bool {
	_, err := e.lookPath(e.binary)
	return err == nil
}

func (e *Engine) Translate(ctx context.Context, text, from, to string) (domain.TranslationResult, error) {
	res, err := e.TranslateBatch(ctx, []string{text}, from, to)
	if err != nil {
		return domain.TranslationResult{}, err
	}
	return res[0], nil
}

func (e *Engine) TranslateBatch(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
	if len(texts) == 0 {
		return nil, domain.ErrEmptyInput
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, domain.ErrEmptyInput
		}
	}
	if !e.IsAvailable() {
		return nil, &domain.InvalidConfigError{Reason: fmt.Sprintf("%s not found on PATH", e.binary)}
	}
	args := []string{"--to-lang", to}
	if from != "" {
		args = append([]string{"--from-lang", from}, args...)
	}
	// One line per segment; inner newlines would shift the line mapping.
	lines := make([]string, len(texts))
	for i, t := range texts {
		lines[i] = strings.Join(strings.Fields(t), " ")
	}
	out, err := e.run(ctx, e.binary, args, strings.Join(lines, "\n"))
	if err != nil {
		return nil, &domain.TranslationError{Reason: err.Error(), Err: err}
	}
	got := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(got) != len(texts) {
		return nil, &domain.TranslationError{
			Reason: fmt.Sprintf("expected %d output lines, got %d", len(texts), len(got)),
		}
	}
	results := make([]domain.TranslationResult, len(texts))
	for i, line := range got {
		results[i] = domain.TranslationResult{
			SourceText:     texts[i],
			TranslatedText: strings.TrimSpace(line),
			SourceLang:     from,
			TargetLang:     to,
		}
	}
	return results, nil
}

func (e *Engine) CheckConnection(ctx context.Context) bool {
	_, err := e.Translate(ctx, "Hello", "en", "es")
	return err == nil
}

func runBinary(ctx context.Context, binary string, args []string, stdin string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%s: %s", binary, msg)
	}
	return stdout.String(), nil
}
