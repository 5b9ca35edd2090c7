package service

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// UseCaseEvent describes one finished service call: a mutation, a config
// edit or a user admin action.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
}

// UseCaseObserver is told about every finished use case.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// SlowUseCaseThreshold is the duration above which a successful use case is
// logged at warn instead of info.
const SlowUseCaseThreshold = 250 * time.Millisecond

type slogUseCaseObserver struct {
	logger *slog.Logger
	slow   time.Duration
}

// NewLogUseCaseObserver writes use-case events as text records to w.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(w, nil)))
}

// NewSlogUseCaseObserver reports use-case events through logger.
func NewSlogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &slogUseCaseObserver{logger: logger, slow: SlowUseCaseThreshold}
}

func (o *slogUseCaseObserver) ObserveUseCase(ctx context.Context, e UseCaseEvent) {
	attrs := []any{
		"use_case", e.Name,
		"duration_ms", e.Duration.Milliseconds(),
	}
	for k, v := range e.Fields {
		attrs = append(attrs, k, v)
	}

	switch {
	case e.Err != nil:
		attrs = append(attrs, "error", e.Err.Error())
		o.logger.WarnContext(ctx, "portfolio_use_case_failed", attrs...)
	case e.Duration > o.slow:
		o.logger.WarnContext(ctx, "portfolio_use_case_slow", attrs...)
	default:
		o.logger.InfoContext(ctx, "portfolio_use_case", attrs...)
	}
}

// observerChain forwards each event to every member in order.
type observerChain []UseCaseObserver

func (c observerChain) ObserveUseCase(ctx context.Context, e UseCaseEvent) {
	for _, obs := range c {
		obs.ObserveUseCase(ctx, e)
	}
}

// useCaseObserverOrNoop collapses the optional observer list services accept.
func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var live observerChain
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	}
	return live
}
