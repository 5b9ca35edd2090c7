package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	versions []int64
	deleted  []string
}

func (p *recordingPublisher) Publish(i *domain.Initiative) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.versions = append(p.versions, i.Version)
}

func (p *recordingPublisher) PublishDelete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
}

func seed(t *testing.T, s *Store, id string, tasks int) {
	t.Helper()
	i := &domain.Initiative{ID: id, Title: id, Status: domain.StatusNotStarted, CreatedAt: time.Now()}
	for n := 0; n < tasks; n++ {
		i.Tasks = append(i.Tasks, domain.Task{ID: fmt.Sprintf("t%d", n)})
	}
	_, err := s.Insert(i)
	require.NoError(t, err)
}

func TestInsertGet(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(WithPublisher(pub))
	seed(t, s, "a", 1)

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, []int64{1}, pub.versions)

	_, err = s.Insert(&domain.Initiative{ID: "a"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	s := New()
	seed(t, s, "a", 1)

	got, err := s.Get("a")
	require.NoError(t, err)
	got.Title = "mutated"
	got.Tasks[0].ActualEffort = 99

	again, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Title)
	assert.Equal(t, 0.0, again.Tasks[0].ActualEffort)
}

func TestUpdate_CommitsAndBumpsVersion(t *testing.T) {
	s := New()
	seed(t, s, "a", 0)

	out, err := s.Update("a", func(i *domain.Initiative) error {
		i.EstimatedEffort = 3
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Version)
	assert.Equal(t, 3.0, out.EstimatedEffort)
}

func TestUpdate_ErrorLeavesStateUntouched(t *testing.T) {
	s := New()
	seed(t, s, "a", 1)
	boom := errors.New("boom")

	_, err := s.Update("a", func(i *domain.Initiative) error {
		i.Tasks[0].ActualEffort = 5
		i.Title = "half-written"
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, _ := s.Get("a")
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, 0.0, got.Tasks[0].ActualEffort)
	assert.Equal(t, int64(1), got.Version)
}

func TestUpdateAt_DetectsConflict(t *testing.T) {
	s := New()
	seed(t, s, "a", 0)
	_, err := s.UpdateAt("a", 1, func(*domain.Initiative) error { return nil })
	require.NoError(t, err)
	_, err = s.UpdateAt("a", 1, func(*domain.Initiative) error { return nil })
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestConcurrentRollUpIsAtomic(t *testing.T) {
	s := New()
	const tasks = 20
	const rounds = 50
	seed(t, s, "a", tasks)

	var wg sync.WaitGroup
	for n := 0; n < tasks; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_, err := s.Update("a", func(i *domain.Initiative) error {
					i.Tasks[n].ActualEffort += 0.5
					i.ActualEffort = i.RollUpActualEffort()
					return nil
				})
				assert.NoError(t, err)
			}
		}(n)
	}
	wg.Wait()

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.InDelta(t, float64(tasks*rounds)*0.5, got.ActualEffort, 1e-9)
	assert.Equal(t, got.RollUpActualEffort(), got.ActualEffort)
	assert.Equal(t, int64(1+tasks*rounds), got.Version)
}

func TestRemove(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(WithPublisher(pub))
	seed(t, s, "a", 0)
	seed(t, s, "b", 0)

	assert.Equal(t, 1, s.Remove("a", "missing"))
	assert.Equal(t, []string{"a"}, pub.deleted)
	_, err := s.Update("a", func(*domain.Initiative) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, s.List(nil), 1)
}

func TestListOrderAndFilter(t *testing.T) {
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Load([]*domain.Initiative{
		{ID: "late", CreatedAt: base.Add(time.Hour)},
		{ID: "b", CreatedAt: base},
		{ID: "a", CreatedAt: base, Status: domain.StatusDeleted},
	})

	all := s.List(nil)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "late"}, []string{all[0].ID, all[1].ID, all[2].ID})

	live := s.List(func(i *domain.Initiative) bool { return !i.IsDeleted() })
	assert.Len(t, live, 2)
}
