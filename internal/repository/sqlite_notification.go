package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/portfolio/internal/db"
	"github.com/alexanderramin/portfolio/internal/domain"
)

// SQLiteNotificationRepo stores produced notifications. The read flag is
// the only column updated after insert.
type SQLiteNotificationRepo struct {
	db db.DBTX
}

func NewSQLiteNotificationRepo(conn db.DBTX) *SQLiteNotificationRepo {
	return &SQLiteNotificationRepo{db: conn}
}

func (r *SQLiteNotificationRepo) Create(ctx context.Context, n domain.Notification) error {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("encoding notification metadata: %w", err)
	}
	query := `INSERT OR IGNORE INTO notifications (id, type, user_id, initiative_id, initiative_title,
		title, message, metadata, read, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		n.ID,
		string(n.Type),
		n.UserID,
		n.InitiativeID,
		n.InitiativeTitle,
		n.Title,
		n.Message,
		string(meta),
		boolToInt(n.Read),
		formatTimestamp(n.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *SQLiteNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT id, type, user_id, initiative_id, initiative_title, title, message, metadata, read, timestamp
		FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY timestamp DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ, meta, ts string
		var read int
		if err := rows.Scan(&n.ID, &typ, &n.UserID, &n.InitiativeID, &n.InitiativeTitle,
			&n.Title, &n.Message, &meta, &read, &ts); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Type = domain.NotificationType(typ)
		n.Read = intToBool(read)
		n.Timestamp = parseTimestamp(ts)
		if meta != "" && meta != "null" {
			if err := json.Unmarshal([]byte(meta), &n.Metadata); err != nil {
				return nil, fmt.Errorf("decoding notification metadata: %w", err)
			}
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}
	return out, nil
}

func (r *SQLiteNotificationRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
