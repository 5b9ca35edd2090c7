package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/repository"
)

type notificationService struct {
	repo repository.NotificationRepo
}

// NewNotificationService stores notifications so users can list them.
// It also satisfies notify.Dispatcher.
func NewNotificationService(repo repository.NotificationRepo) NotificationService {
	return &notificationService{repo: repo}
}

// Dispatch stores every notification and keeps going past failures.
func (s *notificationService) Dispatch(ctx context.Context, notes []domain.Notification) error {
	var errs []error
	for _, n := range notes {
		if err := s.repo.Create(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("notification %s: %w", n.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}
