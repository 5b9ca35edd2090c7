package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiativeRepo_UpsertRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteInitiativeRepo(db)
	ctx := context.Background()

	task := testutil.NewTestTask("spike", testutil.WithTaskEffort(1, 0.5), testutil.WithTags(domain.TagRiskItem))
	i := testutil.NewTestInitiative("Ledger", testutil.WithOwner("u1"), testutil.WithTasks(task))
	i.Version = 1
	require.NoError(t, repo.Upsert(ctx, i))

	got, err := repo.GetByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ledger", got.Title)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, []domain.TaskTag{domain.TagRiskItem}, got.Tasks[0].Tags)
	assert.Equal(t, 0.5, got.ActualEffort)
}

func TestInitiativeRepo_IgnoresStaleVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteInitiativeRepo(db)
	ctx := context.Background()

	i := testutil.NewTestInitiative("v")
	i.Version = 5
	i.Title = "newer"
	require.NoError(t, repo.Upsert(ctx, i))

	stale := i.Clone()
	stale.Version = 4
	stale.Title = "older"
	require.NoError(t, repo.Upsert(ctx, stale))

	// Duplicate delivery of the same version is harmless.
	require.NoError(t, repo.Upsert(ctx, i))

	got, err := repo.GetByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Title)
	assert.Equal(t, int64(5), got.Version)
}

func TestInitiativeRepo_ListAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteInitiativeRepo(db)
	ctx := context.Background()

	live := testutil.NewTestInitiative("live")
	gone := testutil.NewTestInitiative("gone", testutil.WithStatus(domain.StatusDeleted))
	now := time.Now()
	gone.DeletedAt = &now
	require.NoError(t, repo.Upsert(ctx, live))
	require.NoError(t, repo.Upsert(ctx, gone))

	visible, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, live.ID, visible[0].ID)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, gone.ID))
	_, err = repo.GetByID(ctx, gone.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
