package outbox

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/notify"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOutbox(t *testing.T) (*RedisOutbox, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	o, err := New(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })
	return o, s
}

func note(id, user string) domain.Notification {
	return domain.Notification{
		ID:           id,
		Type:         domain.NotifyMention,
		UserID:       user,
		InitiativeID: "i1",
		Title:        "You were mentioned",
		Timestamp:    time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestDispatchAndPop_FIFO(t *testing.T) {
	o, _ := setupOutbox(t)
	ctx := context.Background()

	require.NoError(t, o.Dispatch(ctx, []domain.Notification{note("n1", "ann"), note("n2", "bob")}))
	pending, err := o.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	first, err := o.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "n1", first.ID)
	assert.Equal(t, domain.NotifyMention, first.Type)

	second, err := o.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "n2", second.ID)

	empty, err := o.Pop(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestRecent_NewestFirstAndCapped(t *testing.T) {
	o, _ := setupOutbox(t)
	ctx := context.Background()

	for i := 0; i < recentPerUser+5; i++ {
		require.NoError(t, o.Dispatch(ctx, []domain.Notification{note(fmt.Sprintf("n%d", i), "ann")}))
	}
	got, err := o.Recent(ctx, "ann", 0)
	require.NoError(t, err)
	require.Len(t, got, recentPerUser)
	assert.Equal(t, fmt.Sprintf("n%d", recentPerUser+4), got[0].ID)

	none, err := o.Recent(ctx, "bob", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDispatch_ServerDownReturnsError(t *testing.T) {
	o, s := setupOutbox(t)
	s.Close()

	err := notify.Multi(o).Dispatch(context.Background(), []domain.Notification{note("n1", "ann")})
	assert.Error(t, err)
}

func TestNew_BadURL(t *testing.T) {
	_, err := New(context.Background(), "://nope")
	assert.Error(t, err)
}
