package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/portfolio/internal/db"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/repository"
	"github.com/google/uuid"
)

// File is one export produced for a backup.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Exporter produces the files of one backup.
type Exporter interface {
	Export(ctx context.Context) ([]File, error)
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(ctx context.Context) ([]File, error)

func (f ExporterFunc) Export(ctx context.Context) ([]File, error) { return f(ctx) }

// DBExporter reads every table inside one read transaction and renders
// each as a JSON document.
type DBExporter struct {
	reader db.SnapshotReader
}

func NewDBExporter(reader db.SnapshotReader) *DBExporter {
	return &DBExporter{reader: reader}
}

func (e *DBExporter) Export(ctx context.Context) ([]File, error) {
	var (
		initiatives []*domain.Initiative
		changes     []domain.ChangeRecord
		users       []*domain.User
		cfg         *domain.AppConfig
	)
	err := e.reader.WithinReadTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		if initiatives, err = repository.NewSQLiteInitiativeRepo(tx).List(ctx, true); err != nil {
			return err
		}
		if changes, err = repository.NewSQLiteChangeRepo(tx).List(ctx, repository.ChangeFilter{}); err != nil {
			return err
		}
		if users, err = repository.NewSQLiteUserRepo(tx).List(ctx); err != nil {
			return err
		}
		c, err := repository.NewSQLiteConfigRepo(tx).Get(ctx)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err == nil {
			cfg = &c
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	docs := []struct {
		name string
		v    any
	}{
		{"initiatives.json", nonNil(initiatives)},
		{"change_records.json", nonNil(changes)},
		{"users.json", nonNil(users)},
	}
	if cfg != nil {
		docs = append(docs, struct {
			name string
			v    any
		}{"app_config.json", cfg})
	}

	files := make([]File, 0, len(docs))
	for _, d := range docs {
		data, err := json.MarshalIndent(d.v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", d.name, err)
		}
		files = append(files, File{Name: d.name, ContentType: "application/json", Data: data})
	}
	return files, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Runner performs at most one backup per calendar day.
type Runner struct {
	store    ObjectStore
	exporter Exporter
	reporter string
	clock    func() time.Time
	logger   *slog.Logger
}

type RunnerOption func(*Runner)

func WithClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) { r.clock = clock }
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner builds a runner; reporter names who triggered the backups
// (a user email or "scheduler").
func NewRunner(store ObjectStore, exporter Exporter, reporter string, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:    store,
		exporter: exporter,
		reporter: reporter,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run writes today's backup. When today's manifest already exists nothing
// is written and the stored manifest is returned with created=false.
// Individual upload failures are recorded in the manifest; the manifest
// itself is only written when at least one file made it.
func (r *Runner) Run(ctx context.Context) (m *Manifest, created bool, err error) {
	started := r.clock().UTC()
	date := started.Format(domain.DateLayout)

	exists, err := r.store.Exists(ctx, manifestPath(date))
	if err != nil {
		return nil, false, err
	}
	if exists {
		r.logger.InfoContext(ctx, "backup_already_exists", "date", date)
		existing, err := r.Manifest(ctx, date)
		return existing, false, err
	}

	files, err := r.exporter.Export(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("exporting backup: %w", err)
	}

	m = &Manifest{
		ID:        uuid.New().String(),
		Timestamp: started,
		Date:      date,
		Files:     []FileEntry{},
		Errors:    []string{},
		Reporter:  r.reporter,
	}
	for _, f := range files {
		path := DatePrefix(date) + f.Name
		if err := r.store.Put(ctx, path, f.Data, f.ContentType); err != nil {
			m.Errors = append(m.Errors, err.Error())
			r.logger.WarnContext(ctx, "backup_upload_failed", "path", path, "error", err)
			continue
		}
		m.Files = append(m.Files, FileEntry{
			Name:        f.Name,
			Path:        path,
			Size:        int64(len(f.Data)),
			ContentType: f.ContentType,
			MD5Hash:     md5Hex(f.Data),
		})
		m.TotalSize += int64(len(f.Data))
	}

	switch {
	case len(m.Files) == 0:
		m.Status = StatusFailed
	case len(m.Errors) > 0:
		m.Status = StatusPartial
	default:
		m.Status = StatusCompleted
	}
	m.Duration = r.clock().UTC().Sub(started).Milliseconds()

	if m.Status == StatusFailed {
		return m, false, fmt.Errorf("backup %s: no files uploaded", date)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return m, false, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := r.store.Put(ctx, manifestPath(date), data, "application/json"); err != nil {
		return m, false, err
	}
	r.logger.InfoContext(ctx, "backup_completed",
		"date", date,
		"files", len(m.Files),
		"total_size", m.TotalSize,
		"status", m.Status,
	)
	return m, true, nil
}

// Manifest loads the manifest stored for date.
func (r *Runner) Manifest(ctx context.Context, date string) (*Manifest, error) {
	data, err := r.store.Get(ctx, manifestPath(date))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", date, err)
	}
	return &m, nil
}
