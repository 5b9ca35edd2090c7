package audit

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func rec(id, initiative string, field domain.Field, offset time.Duration) domain.ChangeRecord {
	return domain.ChangeRecord{ID: id, InitiativeID: initiative, Field: field, Timestamp: base.Add(offset)}
}

func TestQuery_SortsByTimestamp(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()
	log.Append(ctx, rec("late", "a", domain.FieldETA, 2*time.Minute))
	log.Append(ctx, rec("early", "a", domain.FieldETA, time.Minute))
	log.Append(ctx, rec("tie-1", "a", domain.FieldETA, 3*time.Minute))
	log.Append(ctx, rec("tie-2", "a", domain.FieldETA, 3*time.Minute))

	got := log.Query(Filter{InitiativeID: "a"})
	require.Len(t, got, 4)
	assert.Equal(t, []string{"early", "late", "tie-1", "tie-2"},
		[]string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
}

func TestQuery_Filters(t *testing.T) {
	log := NewMemoryLog(
		rec("1", "a", domain.FieldETA, 0),
		rec("2", "a", domain.FieldStatus, time.Second),
		rec("3", "b", domain.FieldETA, 2*time.Second),
	)
	task := rec("4", "a", domain.FieldActualEffort, 3*time.Second)
	task.TaskID = "t1"
	log.Append(context.Background(), task)

	assert.Len(t, log.Query(Filter{}), 4)
	assert.Len(t, log.Query(Filter{Field: domain.FieldETA}), 2)
	assert.Len(t, log.Query(Filter{InitiativeID: "a", Field: domain.FieldETA}), 1)
	assert.Len(t, log.Query(Filter{TaskID: "t1"}), 1)

	limited := log.Query(Filter{Limit: 2})
	require.Len(t, limited, 2)
	assert.Equal(t, "4", limited[1].ID)
}

func TestLatest(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()
	log.Append(ctx, rec("new", "a", domain.FieldETA, time.Hour))
	log.Append(ctx, rec("old", "a", domain.FieldETA, 0))

	got, ok := log.Latest("a", domain.FieldETA)
	require.True(t, ok)
	assert.Equal(t, "new", got.ID)

	_, ok = log.Latest("a", domain.FieldPriority)
	assert.False(t, ok)
}

func TestSubscribersSeeAppendsNotSeed(t *testing.T) {
	log := NewMemoryLog(rec("seed", "a", domain.FieldETA, 0))
	var seen []string
	log.Subscribe(func(_ context.Context, r domain.ChangeRecord) {
		seen = append(seen, r.ID)
	})
	log.Append(context.Background(), rec("x", "a", domain.FieldETA, time.Second))

	assert.Equal(t, []string{"x"}, seen)
	assert.Equal(t, 2, log.Len())
}

func TestQueryReturnsCopies(t *testing.T) {
	log := NewMemoryLog(rec("1", "a", domain.FieldETA, 0))
	got := log.Query(Filter{})
	got[0].NewValue = "tampered"
	assert.Equal(t, "", log.Query(Filter{})[0].NewValue)
}
