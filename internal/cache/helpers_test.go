package cache_test

import (
	"context"
	"io"
	"log/slog"
)

type synthFunc func() []byte

func (f synthFunc) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	return f(), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
