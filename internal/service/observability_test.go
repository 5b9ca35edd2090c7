package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop([]UseCaseObserver{nil}))

	a, b := &recordingObserver{}, &recordingObserver{}
	assert.Same(t, a, useCaseObserverOrNoop([]UseCaseObserver{nil, a}))

	chain := useCaseObserverOrNoop([]UseCaseObserver{a, nil, b})
	chain.ObserveUseCase(context.Background(), UseCaseEvent{Name: "set-capacity"})
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestSlogUseCaseObserver_Levels(t *testing.T) {
	var buf bytes.Buffer
	obs := NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "inline-update", Duration: time.Millisecond, Success: true,
		Fields: map[string]any{"initiative_id": "i1"}})
	assert.Contains(t, buf.String(), "level=INFO msg=portfolio_use_case")
	assert.Contains(t, buf.String(), "initiative_id=i1")

	buf.Reset()
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "purge", Duration: time.Second, Success: true})
	assert.Contains(t, buf.String(), "portfolio_use_case_slow")

	buf.Reset()
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "purge", Err: errors.New("locked")})
	assert.Contains(t, buf.String(), "portfolio_use_case_failed")
	assert.Contains(t, buf.String(), "error=locked")
}

func TestNewLogUseCaseObserver_NilWriter(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}
