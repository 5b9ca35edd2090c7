package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	rows    map[string]*domain.Initiative
	fail    bool
	upserts int
	deletes int
}

func newMemorySink() *memorySink {
	return &memorySink{rows: map[string]*domain.Initiative{}}
}

func (m *memorySink) Upsert(_ context.Context, i *domain.Initiative) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("sink down")
	}
	m.upserts++
	m.rows[i.ID] = i.Clone()
	return nil
}

func (m *memorySink) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("sink down")
	}
	m.deletes++
	delete(m.rows, id)
	return nil
}

func (m *memorySink) version(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[id]; ok {
		return r.Version
	}
	return -1
}

func TestSyncer_CoalescesToLatestVersion(t *testing.T) {
	sink := newMemorySink()
	syncer := NewSyncer(sink, nil)

	syncer.Publish(&domain.Initiative{ID: "a", Version: 3})
	syncer.Publish(&domain.Initiative{ID: "a", Version: 2})
	syncer.Publish(&domain.Initiative{ID: "b", Version: 1})
	assert.Equal(t, 2, syncer.Pending())

	syncer.Flush(context.Background())
	assert.Equal(t, int64(3), sink.version("a"))
	assert.Equal(t, int64(1), sink.version("b"))
	assert.Equal(t, 2, sink.upserts)
	assert.Equal(t, 0, syncer.Pending())
}

func TestSyncer_FailedWritesStayQueued(t *testing.T) {
	sink := newMemorySink()
	sink.fail = true
	syncer := NewSyncer(sink, nil)

	syncer.Publish(&domain.Initiative{ID: "a", Version: 1})
	syncer.Flush(context.Background())
	assert.Equal(t, 1, syncer.Pending())

	sink.mu.Lock()
	sink.fail = false
	sink.mu.Unlock()
	syncer.Flush(context.Background())
	assert.Equal(t, int64(1), sink.version("a"))
}

func TestSyncer_BackgroundWithStore(t *testing.T) {
	sink := newMemorySink()
	syncer := NewSyncer(sink, nil)
	syncer.Start(context.Background())

	s := New(WithPublisher(syncer))
	seed(t, s, "a", 0)
	seed(t, s, "gone", 0)
	_, err := s.Update("a", func(i *domain.Initiative) error {
		i.Title = "renamed"
		return nil
	})
	require.NoError(t, err)
	s.Remove("gone")

	syncer.Close()
	assert.Equal(t, int64(2), sink.version("a"))
	assert.Equal(t, int64(-1), sink.version("gone"))
}

func TestSyncer_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	syncer := NewSyncer(newMemorySink(), nil)
	syncer.Start(ctx)
	cancel()

	select {
	case <-syncer.done:
	case <-time.After(time.Second):
		t.Fatal("syncer did not stop")
	}
}

func TestSyncer_CloseWithoutStartDrains(t *testing.T) {
	sink := newMemorySink()
	syncer := NewSyncer(sink, nil)
	syncer.Publish(&domain.Initiative{ID: "a", Version: 3})

	done := make(chan struct{})
	go func() {
		syncer.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on a syncer that was never started")
	}
	assert.Equal(t, int64(3), sink.version("a"))
	assert.Zero(t, syncer.Pending())
}
