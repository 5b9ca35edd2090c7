package repository

import (
	"context"

	"github.com/alexanderramin/portfolio/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

// InitiativeRepo stores whole-initiative snapshots keyed by id.
type InitiativeRepo interface {
	// Upsert ignores snapshots older than the stored version, so duplicate
	// or reordered delivery is harmless.
	Upsert(ctx context.Context, i *domain.Initiative) error
	GetByID(ctx context.Context, id string) (*domain.Initiative, error)
	List(ctx context.Context, includeDeleted bool) ([]*domain.Initiative, error)
	Delete(ctx context.Context, id string) error
}

// ChangeFilter narrows ChangeRepo.List. Empty fields match everything.
type ChangeFilter struct {
	InitiativeID string
	Field        domain.Field
}

type ChangeRepo interface {
	Append(ctx context.Context, rec domain.ChangeRecord) error
	List(ctx context.Context, f ChangeFilter) ([]domain.ChangeRecord, error)
}

type ConfigRepo interface {
	Get(ctx context.Context) (domain.AppConfig, error)
	Save(ctx context.Context, cfg domain.AppConfig) error
}

type NotificationRepo interface {
	Create(ctx context.Context, n domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}
