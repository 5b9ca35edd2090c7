package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/portfolio/internal/db"
	"github.com/alexanderramin/portfolio/internal/domain"
)

// SQLiteChangeRepo persists change records. Records are never updated.
type SQLiteChangeRepo struct {
	db db.DBTX
}

func NewSQLiteChangeRepo(conn db.DBTX) *SQLiteChangeRepo {
	return &SQLiteChangeRepo{db: conn}
}

// Append is idempotent on record id.
func (r *SQLiteChangeRepo) Append(ctx context.Context, rec domain.ChangeRecord) error {
	query := `INSERT OR IGNORE INTO change_records (id, initiative_id, initiative_title, task_id, field,
		old_value, new_value, changed_by, trade_off_source_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.InitiativeID,
		rec.InitiativeTitle,
		rec.TaskID,
		string(rec.Field),
		rec.OldValue,
		rec.NewValue,
		rec.ChangedBy,
		rec.TradeOffSourceID,
		formatTimestamp(rec.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("inserting change record: %w", err)
	}
	return nil
}

func (r *SQLiteChangeRepo) List(ctx context.Context, f ChangeFilter) ([]domain.ChangeRecord, error) {
	var where []string
	var args []any
	if f.InitiativeID != "" {
		where = append(where, "initiative_id = ?")
		args = append(args, f.InitiativeID)
	}
	if f.Field != "" {
		where = append(where, "field = ?")
		args = append(args, string(f.Field))
	}
	query := `SELECT id, initiative_id, initiative_title, task_id, field, old_value, new_value,
		changed_by, trade_off_source_id, timestamp FROM change_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp, rowid"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing change records: %w", err)
	}
	defer rows.Close()

	var out []domain.ChangeRecord
	for rows.Next() {
		var rec domain.ChangeRecord
		var field, ts string
		if err := rows.Scan(&rec.ID, &rec.InitiativeID, &rec.InitiativeTitle, &rec.TaskID, &field,
			&rec.OldValue, &rec.NewValue, &rec.ChangedBy, &rec.TradeOffSourceID, &ts); err != nil {
			return nil, fmt.Errorf("scanning change record: %w", err)
		}
		rec.Field = domain.Field(field)
		rec.Timestamp = parseTimestamp(ts)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change records: %w", err)
	}
	return out, nil
}
