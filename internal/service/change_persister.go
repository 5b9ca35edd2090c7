package service

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/portfolio/internal/audit"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/repository"
)

// PersistChanges returns an audit subscriber that copies every appended
// record into repo. Write failures are logged and the in-memory log stays
// authoritative.
func PersistChanges(repo repository.ChangeRepo, logger *slog.Logger) audit.Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, rec domain.ChangeRecord) {
		if err := repo.Append(context.WithoutCancel(ctx), rec); err != nil {
			logger.WarnContext(ctx, "change_persist_failed",
				"change_id", rec.ID,
				"initiative_id", rec.InitiativeID,
				"error", err,
			)
		}
	}
}

// LoadChangeLog rebuilds the in-memory audit log from persisted records.
// Seeded records do not reach subscribers.
func LoadChangeLog(ctx context.Context, repo repository.ChangeRepo) (*audit.MemoryLog, error) {
	recs, err := repo.List(ctx, repository.ChangeFilter{})
	if err != nil {
		return nil, err
	}
	return audit.NewMemoryLog(recs...), nil
}
