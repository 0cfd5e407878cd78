package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencySweeper_RunsUntilCancelled(t *testing.T) {
	cleaner := &mockCleaner{n: 3}
	sweeper := NewIdempotencySweeper(cleaner, slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestIdempotencySweeper_SurvivesErrors(t *testing.T) {
	cleaner := &mockCleaner{err: errBoom}
	sweeper := NewIdempotencySweeper(cleaner, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)

	sweeper.sweep(context.Background())
	sweeper.sweep(context.Background())
	assert.Equal(t, int32(2), cleaner.calls.Load())
}
