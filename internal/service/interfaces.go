package service

import (
	"context"

	"github.com/alexanderramin/portfolio/internal/domain"
)

// InlineUpdateRequest edits one initiative field. Value is parsed per field.
type InlineUpdateRequest struct {
	InitiativeID string
	Field        domain.Field
	Value        string

	// Audit forces a change record even for fields outside the audited set.
	Audit bool
	// SuppressNotification marks derived writes: no change record is kept.
	SuppressNotification bool
	// TradeOff applies a compensating change to another initiative.
	TradeOff *TradeOffAction
}

type TradeOffAction struct {
	TargetID string
	Field    domain.Field
	Value    string
}

type UpdateTaskRequest struct {
	InitiativeID string
	TaskID       string
	Field        domain.Field
	Value        string
}

type CreateInitiativeRequest struct {
	Title          string
	OwnerID        string
	SecondaryOwner string
	AssetClass     string
	Pillar         string
	Responsibility string
	Target         string
	Quarter        string
	Priority       string
	WorkType       string
	UnplannedTags  []string
	// EstimatedEffort in weeks; also frozen as the original estimate.
	EstimatedEffort float64
	// ETA is YYYY-MM-DD; also frozen as the original ETA.
	ETA            string
	CompletionRate int
}

type AddTaskRequest struct {
	Title           string
	Owner           string
	OwnerID         string
	EstimatedEffort float64
	ActualEffort    float64
	ETA             string
	Status          string
	Priority        string
	Tags            []domain.TaskTag
}

// ImportRow is one pre-validated row handed over by an import collaborator.
// Rows with IsValid false are skipped and counted.
type ImportRow struct {
	IsValid    bool
	Error      string
	Initiative CreateInitiativeRequest
}

type ImportResult struct {
	Created []*domain.Initiative
	Skipped int
	Errors  []string
}

// MutationService is the single write path for initiatives and tasks.
// Mutations on a missing initiative or task return (nil, nil).
type MutationService interface {
	Get(ctx context.Context, id string) (*domain.Initiative, error)
	List(ctx context.Context, includeDeleted bool) []*domain.Initiative

	InlineUpdateInitiative(ctx context.Context, actor domain.Actor, req InlineUpdateRequest) (*domain.Initiative, error)
	UpdateTask(ctx context.Context, actor domain.Actor, req UpdateTaskRequest) (*domain.Initiative, error)
	DeleteTask(ctx context.Context, actor domain.Actor, initiativeID, taskID string) (*domain.Initiative, error)
	AddTask(ctx context.Context, actor domain.Actor, initiativeID string, req AddTaskRequest) (*domain.Initiative, error)

	CreateInitiative(ctx context.Context, actor domain.Actor, req CreateInitiativeRequest) (*domain.Initiative, error)
	DeleteInitiative(ctx context.Context, actor domain.Actor, id string) (*domain.Initiative, error)
	RestoreInitiative(ctx context.Context, actor domain.Actor, id string) (*domain.Initiative, error)
	PurgeInitiatives(ctx context.Context, actor domain.Actor, ids []string) (int, error)
	Import(ctx context.Context, actor domain.Actor, rows []ImportRow) (*ImportResult, error)

	AddComment(ctx context.Context, actor domain.Actor, initiativeID, text string) (*domain.Comment, error)
	SweepOverdue(ctx context.Context) (int, error)
}

type UserService interface {
	Create(ctx context.Context, actor domain.Actor, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Resolve finds a user by id or email.
	Resolve(ctx context.Context, ident string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, actor domain.Actor, u *domain.User) error
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

// ConfigProvider exposes the current AppConfig snapshot.
type ConfigProvider interface {
	Current() domain.AppConfig
}

type ConfigService interface {
	ConfigProvider
	CyclePermission(ctx context.Context, actor domain.Actor, role domain.Role, key domain.PermissionKey) (domain.PermissionValue, error)
	SetPermission(ctx context.Context, actor domain.Actor, role domain.Role, key domain.PermissionKey, v domain.PermissionValue) error
	SetCapacity(ctx context.Context, actor domain.Actor, ownerID string, weekly float64) error
	SetAdjustment(ctx context.Context, actor domain.Actor, ownerID string, adj float64) error
	SetBuffer(ctx context.Context, actor domain.Actor, ownerID string, weeks float64) error
	SetBAUBuffer(ctx context.Context, actor domain.Actor, pct float64) error
	Replace(ctx context.Context, actor domain.Actor, cfg domain.AppConfig) error
}

type NotificationService interface {
	Dispatch(ctx context.Context, n []domain.Notification) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}
