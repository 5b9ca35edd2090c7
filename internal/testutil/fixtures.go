package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/google/uuid"
)

var testEmailCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithRole(r domain.Role) UserOption {
	return func(u *domain.User) {
		u.Role = r
	}
}

func WithEmail(email string) UserOption {
	return func(u *domain.User) {
		u.Email = email
	}
}

func WithTeam(team string) UserOption {
	return func(u *domain.User) {
		u.Team = team
	}
}

func defaultEmail(name string) string {
	local := strings.ToLower(strings.Join(strings.Fields(name), "."))
	if local == "" {
		local = "user"
	}
	return fmt.Sprintf("%s.%d@example.com", local, testEmailCounter.Add(1))
}

func NewTestUser(name string, opts ...UserOption) *domain.User {
	u := &domain.User{
		ID:    uuid.New().String(),
		Name:  name,
		Email: defaultEmail(name),
		Role:  domain.RoleTeamLead,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Initiative options
type InitiativeOption func(*domain.Initiative)

func WithOwner(ownerID string) InitiativeOption {
	return func(i *domain.Initiative) {
		i.OwnerID = ownerID
	}
}

func WithStatus(s domain.Status) InitiativeOption {
	return func(i *domain.Initiative) {
		i.Status = s
	}
}

func WithETA(eta string) InitiativeOption {
	return func(i *domain.Initiative) {
		i.ETA = eta
	}
}

func WithEffort(estimated, actual float64) InitiativeOption {
	return func(i *domain.Initiative) {
		i.EstimatedEffort = estimated
		i.ActualEffort = actual
	}
}

func WithPriority(p domain.Priority) InitiativeOption {
	return func(i *domain.Initiative) {
		i.Priority = p
	}
}

func WithWorkType(wt domain.WorkType) InitiativeOption {
	return func(i *domain.Initiative) {
		i.WorkType = wt
	}
}

// WithTasks appends tasks and rolls their actual effort into the parent.
func WithTasks(tasks ...domain.Task) InitiativeOption {
	return func(i *domain.Initiative) {
		i.Tasks = append(i.Tasks, tasks...)
		i.ActualEffort = i.RollUpActualEffort()
	}
}

func NewTestInitiative(title string, opts ...InitiativeOption) *domain.Initiative {
	now := time.Now().UTC()
	i := &domain.Initiative{
		ID:              uuid.New().String(),
		AssetClass:      "Equities",
		Pillar:          "Platform",
		Responsibility:  "Data",
		Target:          "Q-target",
		Title:           title,
		Quarter:         "Q3 2025",
		Status:          domain.StatusNotStarted,
		Priority:        domain.PriorityP1,
		WorkType:        domain.WorkPlanned,
		EstimatedEffort: 1,
		ETA:             now.AddDate(0, 1, 0).Format(domain.DateLayout),
		LastUpdated:     now.Format(domain.DateLayout),
		CreatedAt:       now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.OriginalEstimatedEffort = i.EstimatedEffort
	i.OriginalETA = i.ETA
	return i
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskOwner(ownerID string) TaskOption {
	return func(t *domain.Task) {
		t.OwnerID = ownerID
	}
}

func WithTaskEffort(estimated, actual float64) TaskOption {
	return func(t *domain.Task) {
		t.EstimatedEffort = estimated
		t.ActualEffort = actual
	}
}

func WithTaskETA(eta string) TaskOption {
	return func(t *domain.Task) {
		t.ETA = eta
	}
}

func WithTaskStatus(s domain.Status) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithTags(tags ...domain.TaskTag) TaskOption {
	return func(t *domain.Task) {
		t.Tags = tags
	}
}

func NewTestTask(title string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    domain.StatusNotStarted,
		ETA:       time.Now().UTC().AddDate(0, 0, 14).Format(domain.DateLayout),
		CreatedAt: time.Now().UTC(),
		CreatedBy: "test",
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
