package local_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/translate/local"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
)

func found(string) (string, error)   { return "/usr/bin/argos-translate", nil }
func missing(string) (string, error) { return "", errors.New("not found") }

func TestTranslateBatch(t *testing.T) {
	var gotArgs []string
	var gotStdin string
	e := local.New("", local.WithLookPath(found), local.WithRunner(
		func(ctx context.Context, binary string, args []string, stdin string) (string, error) {
			gotArgs = args
			gotStdin = stdin
			return "Hallo\nWelt\n", nil
		}))

	res, err := e.TranslateBatch(context.Background(), []string{"Hello", "World"}, "en", "de")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Hallo", res[0].TranslatedText)
	assert.Equal(t, "Welt", res[1].TranslatedText)
	assert.Equal(t, []string{"--from-lang", "en", "--to-lang", "de"}, gotArgs)
	assert.Equal(t, "Hello\nWorld", gotStdin)
}

func TestInnerNewlinesCollapsed(t *testing.T) {
	var gotStdin string
	e := local.New("", local.WithLookPath(found), local.WithRunner(
		func(ctx context.Context, binary string, args []string, stdin string) (string, error) {
			gotStdin = stdin
			return strings.Repeat("x\n", strings.Count(stdin, "\n")+1), nil
		}))

	_, err := e.TranslateBatch(context.Background(), []string{"Hello\nthere", "World"}, "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "Hello there\nWorld", gotStdin, "multi-line segments stay one line each")
}

func TestLineCountMismatch(t *testing.T) {
	e := local.New("", local.WithLookPath(found), local.WithRunner(
		func(ctx context.Context, binary string, args []string, stdin string) (string, error) {
			return "only one line\n", nil
		}))

	_, err := e.TranslateBatch(context.Background(), []string{"Hello", "World"}, "en", "de")
	var trErr *domain.TranslationError
	require.ErrorAs(t, err, &trErr)
	assert.Contains(t, trErr.Reason, "expected 2 output lines")
}

func TestBinaryMissing(t *testing.T) {
	e := local.New("", local.WithLookPath(missing))
	assert.False(t, e.IsAvailable())

	_, err := e.Translate(context.Background(), "Hello", "en", "de")
	var cfgErr *domain.InvalidConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "argos-translate")
}

func TestEmptyInput(t *testing.T) {
	e := local.New("", local.WithLookPath(found))
	_, err := e.TranslateBatch(context.Background(), nil, "en", "de")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = e.TranslateBatch(context.Background(), []string{"Hello", "  "}, "en", "de")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestRunnerFailure(t *testing.T) {
	e := local.New("", local.WithLookPath(found), local.WithRunner(
		func(ctx context.Context, binary string, args []string, stdin string) (string, error) {
			return "", errors.New("argos-translate: language pair not installed")
		}))

	_, err := e.Translate(context.Background(), "Hello", "en", "de")
	var trErr *domain.TranslationError
	require.ErrorAs(t, err, &trErr)
	assert.Contains(t, trErr.Reason, "language pair")
}
