package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/portfolio/internal/db"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/repository"
	"github.com/alexanderramin/portfolio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
	puts    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Put(_ context.Context, path string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.HasSuffix(path, m.failOn) {
		return fmt.Errorf("uploading %s: access denied", path)
	}
	m.puts++
	m.objects[path] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStore) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memoryStore) Exists(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok, nil
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

var backupDay = time.Date(2025, 6, 15, 0, 5, 0, 0, time.UTC)

func staticExporter(files ...File) Exporter {
	return ExporterFunc(func(context.Context) ([]File, error) { return files, nil })
}

func TestRun_WritesFilesThenManifest(t *testing.T) {
	store := newMemoryStore()
	r := NewRunner(store,
		staticExporter(File{Name: "a.json", ContentType: "application/json", Data: []byte(`{"a":1}`)}),
		"ops@example.com",
		WithClock(func() time.Time { return backupDay }),
	)

	m, created, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "2025-06-15", m.Date)
	assert.Equal(t, StatusCompleted, m.Status)
	assert.Equal(t, "ops@example.com", m.Reporter)
	require.Len(t, m.Files, 1)
	assert.Equal(t, "backups/2025-06-15/a.json", m.Files[0].Path)
	assert.Equal(t, int64(7), m.TotalSize)
	assert.Equal(t, md5Hex([]byte(`{"a":1}`)), m.Files[0].MD5Hash)

	raw, err := store.Get(context.Background(), "backups/2025-06-15/manifest.json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"id", "timestamp", "date", "files", "totalSize", "duration", "status", "errors", "reporter"} {
		assert.Contains(t, decoded, key)
	}
}

func TestRun_ExistingManifestIsNoop(t *testing.T) {
	store := newMemoryStore()
	r := NewRunner(store, staticExporter(File{Name: "a.json", Data: []byte("{}")}), "scheduler",
		WithClock(func() time.Time { return backupDay }))
	ctx := context.Background()

	first, _, err := r.Run(ctx)
	require.NoError(t, err)
	puts := store.puts

	second, created, err := r.Run(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, puts, store.puts)
}

func TestRun_PartialUpload(t *testing.T) {
	store := newMemoryStore()
	store.failOn = "b.json"
	r := NewRunner(store, staticExporter(
		File{Name: "a.json", Data: []byte("{}")},
		File{Name: "b.json", Data: []byte("{}")},
	), "scheduler", WithClock(func() time.Time { return backupDay }))

	m, created, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, StatusPartial, m.Status)
	assert.Len(t, m.Files, 1)
	require.Len(t, m.Errors, 1)
	assert.Contains(t, m.Errors[0], "access denied")
}

func TestRun_NothingUploadedLeavesNoManifest(t *testing.T) {
	store := newMemoryStore()
	store.failOn = ".json"
	r := NewRunner(store, staticExporter(File{Name: "a.json", Data: []byte("{}")}), "scheduler",
		WithClock(func() time.Time { return backupDay }))

	m, created, err := r.Run(context.Background())
	require.Error(t, err)
	assert.False(t, created)
	assert.Equal(t, StatusFailed, m.Status)
	ok, _ := store.Exists(context.Background(), manifestPath("2025-06-15"))
	assert.False(t, ok)
}

func TestDBExporter(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	i := testutil.NewTestInitiative("Ledger")
	i.Version = 1
	require.NoError(t, repository.NewSQLiteInitiativeRepo(database).Upsert(ctx, i))
	require.NoError(t, repository.NewSQLiteUserRepo(database).Create(ctx, testutil.NewTestUser("Ann")))

	files, err := NewDBExporter(db.NewSQLiteUnitOfWork(database)).Export(ctx)
	require.NoError(t, err)

	byName := map[string][]byte{}
	for _, f := range files {
		byName[f.Name] = f.Data
	}
	require.Contains(t, byName, "initiatives.json")
	require.Contains(t, byName, "change_records.json")
	require.Contains(t, byName, "users.json")
	assert.NotContains(t, byName, "app_config.json", "no config row saved yet")

	var initiatives []domain.Initiative
	require.NoError(t, json.Unmarshal(byName["initiatives.json"], &initiatives))
	require.Len(t, initiatives, 1)
	assert.Equal(t, "Ledger", initiatives[0].Title)
	assert.JSONEq(t, "[]", string(byName["change_records.json"]))
}

func TestScheduler(t *testing.T) {
	r := NewRunner(newMemoryStore(), staticExporter(), "scheduler")

	_, err := NewScheduler(r, "not a cron spec", nil)
	assert.Error(t, err)

	s, err := NewScheduler(r, "", nil)
	require.NoError(t, err)
	s.Start()
	defer s.Stop(context.Background())
	assert.False(t, s.Next().IsZero())
}
