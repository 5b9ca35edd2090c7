package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/permission"
	"github.com/alexanderramin/portfolio/internal/repository"
)

// configService holds the current AppConfig behind an atomic pointer.
// Readers never lock; writers serialize on mu and swap in a new value.
type configService struct {
	mu       sync.Mutex
	current  atomic.Pointer[domain.AppConfig]
	repo     repository.ConfigRepo
	logger   *slog.Logger
	observer UseCaseObserver
}

// NewConfigService starts from initial. repo may be nil for a purely
// in-memory configuration.
func NewConfigService(initial domain.AppConfig, repo repository.ConfigRepo, logger *slog.Logger, observers ...UseCaseObserver) ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &configService{
		repo:     repo,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
	cfg := initial.Clone()
	s.current.Store(&cfg)
	return s
}

// Current returns a private copy of the live configuration.
func (s *configService) Current() domain.AppConfig {
	return s.current.Load().Clone()
}

// apply gates on admin access, computes the next value and persists it.
// A failed save is logged and the new value is kept.
func (s *configService) apply(ctx context.Context, name string, actor domain.Actor, next func(domain.AppConfig) domain.AppConfig) (err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"actor": actor.DisplayName()},
		})
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := *s.current.Load()
	if err := permission.NewResolver(cur.RolePermissions).AdminDecision(actor).Err(); err != nil {
		return err
	}
	updated := next(cur)
	s.current.Store(&updated)

	if s.repo != nil {
		if err := s.repo.Save(ctx, updated); err != nil {
			s.logger.WarnContext(ctx, "config_save_failed", "error", err)
		}
	}
	return nil
}

func (s *configService) CyclePermission(ctx context.Context, actor domain.Actor, role domain.Role, key domain.PermissionKey) (domain.PermissionValue, error) {
	if !key.Known() {
		return "", &domain.ValidationError{Field: string(key), Message: "unknown permission key"}
	}
	var result domain.PermissionValue
	err := s.apply(ctx, "cycle-permission", actor, func(cfg domain.AppConfig) domain.AppConfig {
		cur := permission.NewResolver(cfg.RolePermissions).Resolve(role, key)
		result = permission.Cycle(key, cur)
		return cfg.WithPermission(role, key, result)
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func (s *configService) SetPermission(ctx context.Context, actor domain.Actor, role domain.Role, key domain.PermissionKey, v domain.PermissionValue) error {
	if !key.Known() {
		return &domain.ValidationError{Field: string(key), Message: "unknown permission key"}
	}
	if !v.Valid(key) {
		return &domain.ValidationError{Field: string(key), Message: "invalid value " + string(v)}
	}
	return s.apply(ctx, "set-permission", actor, func(cfg domain.AppConfig) domain.AppConfig {
		return cfg.WithPermission(role, key, v)
	})
}

func (s *configService) SetCapacity(ctx context.Context, actor domain.Actor, ownerID string, weekly float64) error {
	if weekly < 0 {
		return &domain.ValidationError{Field: "capacity", Message: "capacity cannot be negative"}
	}
	return s.apply(ctx, "set-capacity", actor, func(cfg domain.AppConfig) domain.AppConfig {
		return cfg.WithCapacity(ownerID, weekly)
	})
}

// SetAdjustment is signed: positive values deduct capacity.
func (s *configService) SetAdjustment(ctx context.Context, actor domain.Actor, ownerID string, adj float64) error {
	return s.apply(ctx, "set-adjustment", actor, func(cfg domain.AppConfig) domain.AppConfig {
		return cfg.WithAdjustment(ownerID, adj)
	})
}

func (s *configService) SetBuffer(ctx context.Context, actor domain.Actor, ownerID string, weeks float64) error {
	if weeks < 0 {
		return &domain.ValidationError{Field: "buffer", Message: "buffer cannot be negative"}
	}
	return s.apply(ctx, "set-buffer", actor, func(cfg domain.AppConfig) domain.AppConfig {
		return cfg.WithBuffer(ownerID, weeks)
	})
}

func (s *configService) SetBAUBuffer(ctx context.Context, actor domain.Actor, pct float64) error {
	if pct < 0 || pct > 100 {
		return &domain.ValidationError{Field: "bau_buffer", Message: "must be between 0 and 100"}
	}
	return s.apply(ctx, "set-bau-buffer", actor, func(cfg domain.AppConfig) domain.AppConfig {
		return cfg.WithBAUBuffer(pct)
	})
}

func (s *configService) Replace(ctx context.Context, actor domain.Actor, replacement domain.AppConfig) error {
	return s.apply(ctx, "replace-config", actor, func(domain.AppConfig) domain.AppConfig {
		return replacement.Clone()
	})
}
