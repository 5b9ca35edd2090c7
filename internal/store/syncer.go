package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/alexanderramin/portfolio/internal/domain"
)

// Sink persists initiative snapshots. Upserts must be idempotent.
type Sink interface {
	Upsert(ctx context.Context, i *domain.Initiative) error
	Delete(ctx context.Context, id string) error
}

type pendingOp struct {
	snapshot *domain.Initiative // nil means delete
}

// Syncer persists committed snapshots in the background. Pending writes are
// coalesced per initiative so only the highest version reaches the sink,
// and Publish never blocks the writer. Failed writes are logged and retried
// on the next drain unless a newer snapshot superseded them.
type Syncer struct {
	sink   Sink
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]pendingOp

	drainMu sync.Mutex
	signal  chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	startOnce sync.Once
	started   atomic.Bool
}

func NewSyncer(sink Sink, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		sink:    sink,
		logger:  logger,
		pending: map[string]pendingOp{},
		signal:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the background writer. ctx scopes sink calls.
func (s *Syncer) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run(ctx)
	})
}

func (s *Syncer) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-s.signal:
			s.drain(ctx, true)
		case <-s.stop:
			s.drain(ctx, false)
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Syncer) Publish(snapshot *domain.Initiative) {
	s.mu.Lock()
	if prev, ok := s.pending[snapshot.ID]; !ok || prev.snapshot == nil || prev.snapshot.Version <= snapshot.Version {
		s.pending[snapshot.ID] = pendingOp{snapshot: snapshot.Clone()}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Syncer) PublishDelete(id string) {
	s.mu.Lock()
	s.pending[id] = pendingOp{}
	s.mu.Unlock()
	s.notify()
}

func (s *Syncer) notify() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Pending reports how many initiatives await persistence.
func (s *Syncer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush writes everything pending synchronously. Failed writes stay queued.
func (s *Syncer) Flush(ctx context.Context) {
	s.drain(ctx, true)
}

// Close stops the background writer after one final drain. A syncer that
// was never started drains synchronously.
func (s *Syncer) Close() {
	s.once.Do(func() {
		close(s.stop)
	})
	if !s.started.Load() {
		s.drain(context.Background(), false)
		return
	}
	<-s.done
}

func (s *Syncer) drain(ctx context.Context, requeue bool) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	s.mu.Lock()
	batch := s.pending
	s.pending = map[string]pendingOp{}
	s.mu.Unlock()

	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		op := batch[id]
		var err error
		if op.snapshot == nil {
			err = s.sink.Delete(ctx, id)
		} else {
			err = s.sink.Upsert(ctx, op.snapshot)
		}
		if err == nil {
			continue
		}
		s.logger.WarnContext(ctx, "snapshot_sync_failed", "initiative_id", id, "error", err)
		if requeue {
			s.mu.Lock()
			if _, superseded := s.pending[id]; !superseded {
				s.pending[id] = op
			}
			s.mu.Unlock()
		}
	}
}
