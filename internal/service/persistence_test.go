package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/portfolio/internal/audit"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/permission"
	"github.com/alexanderramin/portfolio/internal/repository"
	"github.com/alexanderramin/portfolio/internal/store"
	"github.com/alexanderramin/portfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeInitiatives_RollsBackOnFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteInitiativeRepo(database)
	ctx := context.Background()

	a := testutil.NewTestInitiative("A", testutil.WithStatus(domain.StatusDeleted))
	b := testutil.NewTestInitiative("B", testutil.WithStatus(domain.StatusDeleted))
	for _, i := range []*domain.Initiative{a, b} {
		i.Version = 1
		require.NoError(t, repo.Upsert(ctx, i))
	}
	root := domain.Actor{Email: permission.RootIdentityEmail}

	diskFull := errors.New("disk full")
	failing := &testutil.FailingUoW{DB: database, FailOn: 2, Match: "DELETE FROM initiatives", Err: diskFull}
	f := newMutationFixture(t, []*domain.Initiative{a, b}, WithPurgeUnitOfWork(failing))

	_, err := f.svc.PurgeInitiatives(ctx, root, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, int32(2), failing.Attempts.Load())
	assert.Equal(t, 2, f.store.Len(), "memory untouched when the transaction fails")
	for _, id := range []string{a.ID, b.ID} {
		_, err := repo.GetByID(ctx, id)
		assert.NoError(t, err, "row %s rolled back", id)
	}

	f = newMutationFixture(t, []*domain.Initiative{a, b}, WithPurgeUnitOfWork(testutil.NewTestUoW(database)))
	n, err := f.svc.PurgeInitiatives(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService(t *testing.T) {
	database := testutil.NewTestDB(t)
	cfg := NewConfigService(domain.DefaultAppConfig(), nil, nil)
	svc := NewUserService(repository.NewSQLiteUserRepo(database), cfg, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, &domain.User{Name: "Ann", Email: "ann@example.com", Role: "Team Lead"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.RoleTeamLead, created.Role)

	t.Run("duplicate email returns the existing user", func(t *testing.T) {
		again, err := svc.Create(ctx, admin, &domain.User{Name: "Ann Two", Email: "ANN@example.com"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
		assert.Equal(t, "Ann", again.Name)
	})

	t.Run("resolve by id or email", func(t *testing.T) {
		byEmail, err := svc.Resolve(ctx, "Ann@Example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		byID, err := svc.Resolve(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", byID.Email)
	})

	t.Run("non-admins are rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, created.Actor(), &domain.User{Name: "Eve", Email: "eve@example.com"})
		assert.True(t, domain.IsPermissionDenied(err))
	})

	t.Run("unknown role is a validation error", func(t *testing.T) {
		_, err := svc.Create(ctx, admin, &domain.User{Name: "Eve", Email: "eve@example.com", Role: "intern"})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("cannot delete yourself", func(t *testing.T) {
		err := svc.Delete(ctx, domain.Actor{UserID: created.ID, Role: domain.RoleAdmin}, created.ID)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("update and delete", func(t *testing.T) {
		created.Role = domain.RoleDirector
		require.NoError(t, svc.Update(ctx, admin, created))
		got, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleDirector, got.Role)

		require.NoError(t, svc.Delete(ctx, admin, created.ID))
		require.NoError(t, svc.Delete(ctx, admin, created.ID), "missing user is ignored")
		users, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

type failingConfigRepo struct{ saves int }

func (r *failingConfigRepo) Get(context.Context) (domain.AppConfig, error) {
	return domain.AppConfig{}, domain.ErrNotFound
}

func (r *failingConfigRepo) Save(context.Context, domain.AppConfig) error {
	r.saves++
	return errors.New("read-only database")
}

func TestConfigService_CycleAndPersist(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteConfigRepo(database)
	svc := NewConfigService(domain.DefaultAppConfig(), repo, nil)
	ctx := context.Background()

	v, err := svc.CyclePermission(ctx, admin, domain.RoleTeamLead, domain.PermEditTasks)
	require.NoError(t, err)
	assert.Equal(t, domain.PermNo, v, "own cycles to no")

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PermNo, stored.RolePermissions[domain.RoleTeamLead][domain.PermEditTasks])

	_, err = svc.CyclePermission(ctx, leadU1, domain.RoleTeamLead, domain.PermEditTasks)
	assert.True(t, domain.IsPermissionDenied(err))

	err = svc.SetPermission(ctx, admin, domain.RoleTeamLead, domain.PermTabTimeline, domain.PermYes)
	assert.True(t, domain.IsValidation(err))
}

func TestConfigService_CurrentIsACopy(t *testing.T) {
	svc := NewConfigService(domain.DefaultAppConfig(), nil, nil)
	ctx := context.Background()
	require.NoError(t, svc.SetCapacity(ctx, admin, "U1", 1))

	snap := svc.Current()
	snap.TeamCapacities["U1"] = 99
	snap.RolePermissions[domain.RoleAdmin][domain.PermAccessAdmin] = domain.PermNo

	cur := svc.Current()
	assert.Equal(t, 1.0, cur.TeamCapacities["U1"])
	assert.True(t, permission.NewResolver(cur.RolePermissions).CanAccessAdmin(admin))
}

func TestConfigService_SaveFailureKeepsState(t *testing.T) {
	repo := &failingConfigRepo{}
	svc := NewConfigService(domain.DefaultAppConfig(), repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetBuffer(ctx, admin, "U1", 0.5))
	require.NoError(t, svc.SetAdjustment(ctx, admin, "U1", -0.25))
	require.NoError(t, svc.SetBAUBuffer(ctx, admin, 15))
	assert.Equal(t, 3, repo.saves)

	cur := svc.Current()
	assert.Equal(t, 0.5, cur.TeamBuffers["U1"])
	assert.Equal(t, -0.25, cur.TeamCapacityAdjustments["U1"])
	assert.Equal(t, 15.0, cur.BAUBufferSuggestion)

	assert.True(t, domain.IsValidation(svc.SetBAUBuffer(ctx, admin, 120)))
	assert.True(t, domain.IsValidation(svc.SetCapacity(ctx, admin, "U1", -1)))
}

func TestConfigService_ChangesReachMutations(t *testing.T) {
	x := testutil.NewTestInitiative("X", testutil.WithOwner("U2"))
	x.Version = 1
	st := newMutationFixture(t, []*domain.Initiative{x}).store
	cfg := NewConfigService(domain.DefaultAppConfig(), nil, nil)
	svc := NewMutationService(st, audit.NewMemoryLog(), cfg)
	ctx := context.Background()

	req := InlineUpdateRequest{InitiativeID: x.ID, Field: domain.FieldQuarter, Value: "Q2 2026"}
	_, err := svc.InlineUpdateInitiative(ctx, leadU1, req)
	require.True(t, domain.IsPermissionDenied(err))

	require.NoError(t, cfg.SetPermission(ctx, admin, domain.RoleTeamLead, domain.PermEditTasks, domain.PermYes))
	_, err = svc.InlineUpdateInitiative(ctx, leadU1, req)
	assert.NoError(t, err)
}

func TestNotificationService(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewNotificationService(repository.NewSQLiteNotificationRepo(database))
	ctx := context.Background()

	x := testutil.NewTestInitiative("X", testutil.WithOwner("U1"))
	notes := []domain.Notification{
		{ID: "n1", Type: domain.NotifyDelay, UserID: "U1", InitiativeID: x.ID, Title: "late", Timestamp: fixedNow},
		{ID: "n2", Type: domain.NotifyMention, UserID: "U1", InitiativeID: x.ID, Title: "hey", Timestamp: fixedNow.Add(1)},
		{ID: "n3", Type: domain.NotifyMention, UserID: "U2", InitiativeID: x.ID, Title: "hey", Timestamp: fixedNow},
	}
	require.NoError(t, svc.Dispatch(ctx, notes))
	require.NoError(t, svc.Dispatch(ctx, notes[:1]), "redelivery is harmless")

	got, err := svc.ListForUser(ctx, "U1", false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n2", got[0].ID)

	require.NoError(t, svc.MarkRead(ctx, "n2"))
	unread, err := svc.ListForUser(ctx, "U1", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n1", unread[0].ID)

	assert.ErrorIs(t, svc.MarkRead(ctx, "ghost"), domain.ErrNotFound)
}

func TestPersistChanges(t *testing.T) {
	database := testutil.NewTestDB(t)
	changes := repository.NewSQLiteChangeRepo(database)
	ctx := context.Background()

	log := audit.NewMemoryLog()
	log.Subscribe(PersistChanges(changes, nil))

	x := testutil.NewTestInitiative("X", testutil.WithETA("2025-08-01"))
	x.Version = 1
	f := newMutationFixture(t, []*domain.Initiative{x})
	svc := NewMutationService(f.store, log, NewConfigService(domain.DefaultAppConfig(), nil, nil))

	_, err := svc.InlineUpdateInitiative(ctx, admin, InlineUpdateRequest{InitiativeID: x.ID, Field: domain.FieldETA, Value: "2025-08-15"})
	require.NoError(t, err)

	stored, err := changes.List(ctx, repository.ChangeFilter{InitiativeID: x.ID})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "2025-08-15", stored[0].NewValue)

	reloaded, err := LoadChangeLog(ctx, changes)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func TestInlineUpdate_SurvivesRestart(t *testing.T) {
	database, path := testutil.NewFileTestDB(t)
	ctx := context.Background()

	syncer := store.NewSyncer(repository.NewSQLiteInitiativeRepo(database), nil)
	syncer.Start(ctx)
	st := store.New(store.WithPublisher(syncer))
	x := testutil.NewTestInitiative("X", testutil.WithETA("2025-08-01"))
	x.Version = 1
	st.Load([]*domain.Initiative{x})

	svc := NewMutationService(st, audit.NewMemoryLog(), NewConfigService(domain.DefaultAppConfig(), nil, nil))
	_, err := svc.InlineUpdateInitiative(ctx, admin, InlineUpdateRequest{InitiativeID: x.ID, Field: domain.FieldETA, Value: "2025-09-30"})
	require.NoError(t, err)
	syncer.Flush(ctx)
	syncer.Close()
	require.NoError(t, database.Close())

	reopened := testutil.ReopenTestDB(t, path)
	items, err := repository.NewSQLiteInitiativeRepo(reopened).List(ctx, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2025-09-30", items[0].ETA)
}
