package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/permission"
	"github.com/alexanderramin/portfolio/internal/repository"
	"github.com/google/uuid"
)

type userService struct {
	users    repository.UserRepo
	config   ConfigProvider
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewUserService(users repository.UserRepo, config ConfigProvider, logger *slog.Logger, observers ...UseCaseObserver) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		users:    users,
		config:   config,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *userService) requireAdmin(actor domain.Actor) error {
	return permission.NewResolver(s.config.Current().RolePermissions).AdminDecision(actor).Err()
}

// Create adds a user. An email that is already registered is not an error:
// the existing user is returned.
func (s *userService) Create(ctx context.Context, actor domain.Actor, u *domain.User) (result *domain.User, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create-user",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"email": u.Email},
		})
	}()

	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	u.Email = strings.TrimSpace(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	if u.Email == "" {
		return nil, &domain.ValidationError{Field: "email", Message: "email is required"}
	}
	if u.Role == "" {
		u.Role = domain.RoleTeamLead
	}
	role, ok := domain.ParseRole(string(u.Role))
	if !ok {
		return nil, &domain.ValidationError{Field: "role", Message: "unknown role " + string(u.Role)}
	}
	u.Role = role
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	err = s.users.Create(ctx, u)
	if errors.Is(err, domain.ErrDuplicate) {
		s.logger.InfoContext(ctx, "user_already_exists", "email", u.Email)
		return s.users.GetByEmail(ctx, u.Email)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) Resolve(ctx context.Context, ident string) (*domain.User, error) {
	ident = strings.TrimSpace(ident)
	if strings.Contains(ident, "@") {
		return s.users.GetByEmail(ctx, ident)
	}
	return s.users.GetByID(ctx, ident)
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *userService) Update(ctx context.Context, actor domain.Actor, u *domain.User) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	role, ok := domain.ParseRole(string(u.Role))
	if !ok {
		return &domain.ValidationError{Field: "role", Message: "unknown role " + string(u.Role)}
	}
	u.Role = role
	err := s.users.Update(ctx, u)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.DebugContext(ctx, "user_not_found", "user_id", u.ID)
		return nil
	}
	return err
}

// Delete removes a user. Admins cannot delete themselves and a missing
// user is ignored.
func (s *userService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID != "" && actor.UserID == id {
		return &domain.ValidationError{Field: "id", Message: "you cannot delete your own account"}
	}
	err := s.users.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.DebugContext(ctx, "user_not_found", "user_id", id)
		return nil
	}
	return err
}
