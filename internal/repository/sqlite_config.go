package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/portfolio/internal/db"
	"github.com/alexanderramin/portfolio/internal/domain"
)

// SQLiteConfigRepo keeps the single AppConfig row as JSON.
type SQLiteConfigRepo struct {
	db db.DBTX
}

func NewSQLiteConfigRepo(conn db.DBTX) *SQLiteConfigRepo {
	return &SQLiteConfigRepo{db: conn}
}

func (r *SQLiteConfigRepo) Get(ctx context.Context) (domain.AppConfig, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM app_config WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AppConfig{}, fmt.Errorf("app config: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.AppConfig{}, fmt.Errorf("loading app config: %w", err)
	}
	var cfg domain.AppConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return domain.AppConfig{}, fmt.Errorf("decoding app config: %w", err)
	}
	return cfg, nil
}

func (r *SQLiteConfigRepo) Save(ctx context.Context, cfg domain.AppConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding app config: %w", err)
	}
	query := `INSERT INTO app_config (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, string(data), nowUTC()); err != nil {
		return fmt.Errorf("saving app config: %w", err)
	}
	return nil
}
