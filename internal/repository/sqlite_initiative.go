package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/portfolio/internal/db"
	"github.com/alexanderramin/portfolio/internal/domain"
)

// SQLiteInitiativeRepo stores each initiative as a JSON snapshot plus a few
// indexed columns.
type SQLiteInitiativeRepo struct {
	db db.DBTX
}

func NewSQLiteInitiativeRepo(conn db.DBTX) *SQLiteInitiativeRepo {
	return &SQLiteInitiativeRepo{db: conn}
}

func (r *SQLiteInitiativeRepo) Upsert(ctx context.Context, i *domain.Initiative) error {
	data, err := json.Marshal(i)
	if err != nil {
		return fmt.Errorf("encoding initiative %s: %w", i.ID, err)
	}
	query := `INSERT INTO initiatives (id, title, owner_id, status, quarter, version, data, deleted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			owner_id = excluded.owner_id,
			status = excluded.status,
			quarter = excluded.quarter,
			version = excluded.version,
			data = excluded.data,
			deleted_at = excluded.deleted_at,
			updated_at = excluded.updated_at
		WHERE excluded.version >= initiatives.version`
	_, err = r.db.ExecContext(ctx, query,
		i.ID,
		i.Title,
		i.OwnerID,
		string(i.Status),
		i.Quarter,
		i.Version,
		string(data),
		nullableTimeToString(i.DeletedAt, time.RFC3339),
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting initiative %s: %w", i.ID, err)
	}
	return nil
}

func (r *SQLiteInitiativeRepo) GetByID(ctx context.Context, id string) (*domain.Initiative, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM initiatives WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("initiative %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading initiative %s: %w", id, err)
	}
	return decodeInitiative(data)
}

func (r *SQLiteInitiativeRepo) List(ctx context.Context, includeDeleted bool) ([]*domain.Initiative, error) {
	query := `SELECT data FROM initiatives WHERE status != 'deleted' ORDER BY id`
	if includeDeleted {
		query = `SELECT data FROM initiatives ORDER BY id`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing initiatives: %w", err)
	}
	defer rows.Close()

	var out []*domain.Initiative
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning initiative: %w", err)
		}
		i, err := decodeInitiative(data)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating initiatives: %w", err)
	}
	return out, nil
}

// Delete removes the row permanently. Soft deletes are ordinary upserts.
func (r *SQLiteInitiativeRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM initiatives WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting initiative %s: %w", id, err)
	}
	return nil
}

func decodeInitiative(data string) (*domain.Initiative, error) {
	var i domain.Initiative
	if err := json.Unmarshal([]byte(data), &i); err != nil {
		return nil, fmt.Errorf("decoding initiative: %w", err)
	}
	if s, err := domain.ParseStatus(string(i.Status)); err == nil {
		i.Status = s
	}
	return &i, nil
}
