package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/portfolio/internal/audit"
	"github.com/alexanderramin/portfolio/internal/db"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/notify"
	"github.com/alexanderramin/portfolio/internal/permission"
	"github.com/alexanderramin/portfolio/internal/repository"
	"github.com/alexanderramin/portfolio/internal/store"
	"github.com/google/uuid"
)

// DefaultAuditedFields are recorded in the change log whenever they change.
var DefaultAuditedFields = []domain.Field{
	domain.FieldEstimatedEffort,
	domain.FieldETA,
	domain.FieldStatus,
	domain.FieldPriority,
}

// errNoop aborts a store update that turned out to have nothing to do.
var errNoop = errors.New("no-op")

// UserDirectory lists the users that mentions are resolved against.
type UserDirectory interface {
	List(ctx context.Context) ([]*domain.User, error)
}

type mutationService struct {
	store      *store.Store
	log        audit.Log
	config     ConfigProvider
	users      UserDirectory
	dispatcher notify.Dispatcher
	uow        db.UnitOfWork
	clock      func() time.Time
	audited    map[domain.Field]bool
	logger     *slog.Logger
	observer   UseCaseObserver
}

type MutationOption func(*mutationService)

func WithClock(clock func() time.Time) MutationOption {
	return func(s *mutationService) { s.clock = clock }
}

func WithDispatcher(d notify.Dispatcher) MutationOption {
	return func(s *mutationService) { s.dispatcher = d }
}

func WithUserDirectory(users UserDirectory) MutationOption {
	return func(s *mutationService) { s.users = users }
}

// WithPurgeUnitOfWork makes PurgeInitiatives delete rows synchronously in
// one transaction before touching memory.
func WithPurgeUnitOfWork(uow db.UnitOfWork) MutationOption {
	return func(s *mutationService) { s.uow = uow }
}

func WithAuditedFields(fields ...domain.Field) MutationOption {
	return func(s *mutationService) {
		s.audited = make(map[domain.Field]bool, len(fields))
		for _, f := range fields {
			s.audited[f] = true
		}
	}
}

func WithLogger(logger *slog.Logger) MutationOption {
	return func(s *mutationService) { s.logger = logger }
}

// WithObserver reports each mutation to all non-nil observers.
func WithObserver(observers ...UseCaseObserver) MutationOption {
	return func(s *mutationService) { s.observer = useCaseObserverOrNoop(observers) }
}

func NewMutationService(st *store.Store, log audit.Log, config ConfigProvider, opts ...MutationOption) MutationService {
	s := &mutationService{
		store:      st,
		log:        log,
		config:     config,
		dispatcher: notify.Discard,
		clock:      time.Now,
		logger:     slog.Default(),
		observer:   NoopUseCaseObserver{},
	}
	WithAuditedFields(DefaultAuditedFields...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *mutationService) now() time.Time { return s.clock().UTC() }

func (s *mutationService) today() string { return s.now().Format(domain.DateLayout) }

func (s *mutationService) resolver() permission.Resolver {
	return permission.NewResolver(s.config.Current().RolePermissions)
}

func (s *mutationService) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

// mutation collects what a committed write produced.
type mutation struct {
	records      []domain.ChangeRecord
	becameAtRisk bool
}

type writeOpts struct {
	audit    bool
	source   string // trade-off source initiative id
	taskID   string
	suppress bool
}

func (s *mutationService) newRecord(i *domain.Initiative, field domain.Field, oldV, newV string, actor domain.Actor, o writeOpts) domain.ChangeRecord {
	return domain.ChangeRecord{
		ID:               uuid.New().String(),
		InitiativeID:     i.ID,
		InitiativeTitle:  i.Title,
		TaskID:           o.taskID,
		Field:            field,
		OldValue:         oldV,
		NewValue:         newV,
		ChangedBy:        actor.DisplayName(),
		TradeOffSourceID: o.source,
		Timestamp:        s.now(),
	}
}

// write applies one field change to a working copy, records it when
// audited, then re-derives status and stamps LastUpdated.
func (s *mutationService) write(i *domain.Initiative, field domain.Field, value string, actor domain.Actor, o writeOpts, m *mutation) error {
	oldV, err := i.FieldValue(field)
	if err != nil {
		return err
	}
	if err := i.SetField(field, value); err != nil {
		return err
	}
	newV, _ := i.FieldValue(field)
	if oldV != newV && !o.suppress && (o.audit || s.audited[field]) {
		rec := s.newRecord(i, field, oldV, newV, actor, o)
		i.History = append(i.History, rec)
		m.records = append(m.records, rec)
	}
	s.finalize(i, m)
	return nil
}

func (s *mutationService) finalize(i *domain.Initiative, m *mutation) {
	wasAtRisk := i.Status == domain.StatusAtRisk
	i.ApplyDerivedStatus(s.today())
	if !wasAtRisk && i.Status == domain.StatusAtRisk && i.IsAtRisk {
		m.becameAtRisk = true
	}
	i.LastUpdated = s.today()
}

// crossesDeleted reports the parsed status when a status write would move
// i into or out of Deleted. Those transitions carry their own permission and
// bookkeeping, so they go through DeleteInitiative and RestoreInitiative.
func crossesDeleted(i *domain.Initiative, field domain.Field, value string) (domain.Status, bool) {
	if field != domain.FieldStatus {
		return "", false
	}
	st, err := domain.ParseStatus(value)
	if err != nil {
		return "", false
	}
	return st, (st == domain.StatusDeleted) != i.IsDeleted()
}

// guardRolledUp rejects direct actual effort writes on initiatives with
// tasks; their actual effort is always the roll-up of the live tasks.
func guardRolledUp(i *domain.Initiative, field domain.Field) error {
	if field == domain.FieldActualEffort && len(i.Tasks) > 0 {
		return &domain.ValidationError{
			Field:   string(field),
			Message: "actual effort is rolled up from tasks; edit the tasks instead",
		}
	}
	return nil
}

// rollUp overwrites actual effort with the sum over live tasks. It is a
// derived write and never audited.
func (s *mutationService) rollUp(i *domain.Initiative, actor domain.Actor, m *mutation) error {
	return s.write(i, domain.FieldActualEffort, domain.FormatEffort(i.RollUpActualEffort()), actor,
		writeOpts{suppress: true}, m)
}

// commit publishes the side effects of a committed mutation. Collaborator
// failures are logged and never undo the write.
func (s *mutationService) commit(ctx context.Context, committed *domain.Initiative, m *mutation) {
	for _, rec := range m.records {
		s.log.Append(ctx, rec)
	}
	if m.becameAtRisk {
		s.dispatch(ctx, notify.OnDelay(committed, s.now()))
	}
}

func (s *mutationService) dispatch(ctx context.Context, notes []domain.Notification) {
	if len(notes) == 0 {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, notes); err != nil {
		s.logger.WarnContext(ctx, "notification_dispatch_failed", "count", len(notes), "error", err)
	}
}

// lookup returns a snapshot or nil when the initiative is gone.
func (s *mutationService) lookup(ctx context.Context, id string) *domain.Initiative {
	i, err := s.store.Get(id)
	if err != nil {
		s.logger.DebugContext(ctx, "initiative_not_found", "initiative_id", id)
		return nil
	}
	return i
}

func (s *mutationService) Get(_ context.Context, id string) (*domain.Initiative, error) {
	return s.store.Get(id)
}

func (s *mutationService) List(_ context.Context, includeDeleted bool) []*domain.Initiative {
	if includeDeleted {
		return s.store.List(nil)
	}
	return s.store.List(func(i *domain.Initiative) bool { return !i.IsDeleted() })
}

func (s *mutationService) InlineUpdateInitiative(ctx context.Context, actor domain.Actor, req InlineUpdateRequest) (result *domain.Initiative, err error) {
	startedAt := time.Now()
	fields := map[string]any{"initiative_id": req.InitiativeID, "field": string(req.Field)}
	defer func() { s.observe(ctx, "inline-update-initiative", startedAt, fields, err) }()

	source := s.lookup(ctx, req.InitiativeID)
	if source == nil {
		return nil, nil
	}
	if st, ok := crossesDeleted(source, req.Field, req.Value); ok {
		return s.routeLifecycle(ctx, actor, source, st, req, fields)
	}

	resolver := s.resolver()
	if err := resolver.EditTask(actor, "", source.OwnerID).Err(); err != nil {
		return nil, err
	}
	if err := guardRolledUp(source, req.Field); err != nil {
		return nil, err
	}

	// Check the trade-off target up front so a rejected target blocks the
	// whole edit.
	var target *domain.Initiative
	if t := req.TradeOff; t != nil {
		fields["trade_off_target"] = t.TargetID
		target = s.lookup(ctx, t.TargetID)
		if target != nil {
			if err := resolver.EditTask(actor, "", target.OwnerID).Err(); err != nil {
				return nil, err
			}
			if err := checkTradeOffTarget(target, t); err != nil {
				return nil, err
			}
			if err := target.Clone().SetField(t.Field, t.Value); err != nil {
				return nil, err
			}
		}
	}

	var m mutation
	result, err = s.store.Update(req.InitiativeID, func(i *domain.Initiative) error {
		if err := resolver.EditTask(actor, "", i.OwnerID).Err(); err != nil {
			return err
		}
		// Deleted or restored since the lookup.
		if _, ok := crossesDeleted(i, req.Field, req.Value); ok {
			return errNoop
		}
		if err := guardRolledUp(i, req.Field); err != nil {
			return err
		}
		return s.write(i, req.Field, req.Value, actor,
			writeOpts{audit: req.Audit, suppress: req.SuppressNotification}, &m)
	})
	if errors.Is(err, errNoop) || errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.commit(ctx, result, &m)

	if target != nil {
		if err := s.applyTradeOff(ctx, actor, result, req.TradeOff); err != nil {
			return result, fmt.Errorf("applying trade-off to %s: %w", req.TradeOff.TargetID, err)
		}
	}
	fields["records"] = len(m.records)
	return result, nil
}

// routeLifecycle sends an inline status write that deletes or restores the
// initiative through the gated delete and restore paths. A restore to a
// status other than the remembered one is followed by a plain status write.
func (s *mutationService) routeLifecycle(ctx context.Context, actor domain.Actor, source *domain.Initiative, st domain.Status, req InlineUpdateRequest, fields map[string]any) (*domain.Initiative, error) {
	if req.TradeOff != nil {
		return nil, &domain.ValidationError{Field: string(domain.FieldStatus), Message: "a trade-off cannot accompany a delete or restore"}
	}
	if st == domain.StatusDeleted {
		fields["routed"] = "delete-initiative"
		return s.DeleteInitiative(ctx, actor, source.ID)
	}
	fields["routed"] = "restore-initiative"
	restored, err := s.RestoreInitiative(ctx, actor, source.ID)
	if err != nil || restored == nil || restored.Status == st {
		return restored, err
	}
	return s.InlineUpdateInitiative(ctx, actor, req)
}

func checkTradeOffTarget(target *domain.Initiative, t *TradeOffAction) error {
	if _, ok := crossesDeleted(target, t.Field, t.Value); ok {
		return &domain.ValidationError{Field: string(t.Field), Message: "a trade-off cannot delete or restore an initiative"}
	}
	return guardRolledUp(target, t.Field)
}

// applyTradeOff writes the compensating change. The target is locked only
// after the source lock is released. Any changed value is audited and
// attributed to the source initiative.
func (s *mutationService) applyTradeOff(ctx context.Context, actor domain.Actor, source *domain.Initiative, t *TradeOffAction) error {
	resolver := s.resolver()
	var m mutation
	target, err := s.store.Update(t.TargetID, func(i *domain.Initiative) error {
		if err := resolver.EditTask(actor, "", i.OwnerID).Err(); err != nil {
			return err
		}
		if err := checkTradeOffTarget(i, t); err != nil {
			return err
		}
		return s.write(i, t.Field, t.Value, actor, writeOpts{audit: true, source: source.ID}, &m)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.commit(ctx, target, &m)
	for _, rec := range m.records {
		s.dispatch(ctx, notify.OnTradeOff(source, target, rec, actor))
	}
	return nil
}

func (s *mutationService) UpdateTask(ctx context.Context, actor domain.Actor, req UpdateTaskRequest) (result *domain.Initiative, err error) {
	startedAt := time.Now()
	fields := map[string]any{"initiative_id": req.InitiativeID, "task_id": req.TaskID, "field": string(req.Field)}
	defer func() { s.observe(ctx, "update-task", startedAt, fields, err) }()

	if req.Field == domain.FieldStatus {
		if st, perr := domain.ParseStatus(req.Value); perr == nil && st == domain.StatusDeleted {
			fields["routed"] = "delete-task"
			return s.DeleteTask(ctx, actor, req.InitiativeID, req.TaskID)
		}
	}

	resolver := s.resolver()
	var m mutation
	result, err = s.store.Update(req.InitiativeID, func(i *domain.Initiative) error {
		idx := i.TaskIndex(req.TaskID)
		if idx < 0 {
			return errNoop
		}
		prev := &i.Tasks[idx]
		if err := resolver.EditTask(actor, prev.OwnerID, i.OwnerID).Err(); err != nil {
			return err
		}
		oldV, err := prev.FieldValue(req.Field)
		if err != nil {
			return err
		}

		next := prev.Clone()
		if err := next.SetField(req.Field, req.Value); err != nil {
			return err
		}
		// Leaving Deleted is a restore and needs delete permission.
		revived := prev.IsDeleted() && !next.IsDeleted()
		if revived {
			if err := resolver.DeleteTask(actor, prev.OwnerID, i.OwnerID).Err(); err != nil {
				return err
			}
			next.DeletedAt = nil
		}
		if req.Field == domain.FieldStatus && next.Status == domain.StatusInProgress && strings.TrimSpace(next.ETA) == "" {
			return &domain.ValidationError{Field: string(domain.FieldStatus), Message: "a task needs an ETA before it can be in progress"}
		}

		tasks := make([]domain.Task, len(i.Tasks))
		copy(tasks, i.Tasks)
		tasks[idx] = next
		i.Tasks = tasks

		newV, _ := next.FieldValue(req.Field)
		if oldV != newV && (s.audited[req.Field] || req.Field == domain.FieldActualEffort) {
			rec := s.newRecord(i, req.Field, oldV, newV, actor, writeOpts{taskID: next.ID})
			i.History = append(i.History, rec)
			m.records = append(m.records, rec)
		}

		if req.Field.IsEffort() || revived {
			return s.rollUp(i, actor, &m)
		}
		s.finalize(i, &m)
		return nil
	})
	if errors.Is(err, errNoop) || errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.commit(ctx, result, &m)
	return result, nil
}

func (s *mutationService) DeleteTask(ctx context.Context, actor domain.Actor, initiativeID, taskID string) (result *domain.Initiative, err error) {
	startedAt := time.Now()
	fields := map[string]any{"initiative_id": initiativeID, "task_id": taskID}
	defer func() { s.observe(ctx, "delete-task", startedAt, fields, err) }()

	resolver := s.resolver()
	var m mutation
	result, err = s.store.Update(initiativeID, func(i *domain.Initiative) error {
		idx := i.TaskIndex(taskID)
		if idx < 0 || i.Tasks[idx].IsDeleted() {
			return errNoop
		}
		prev := &i.Tasks[idx]
		if err := resolver.DeleteTask(actor, prev.OwnerID, i.OwnerID).Err(); err != nil {
			return err
		}

		now := s.now()
		next := prev.Clone()
		next.Status = domain.StatusDeleted
		next.DeletedAt = &now

		tasks := make([]domain.Task, len(i.Tasks))
		copy(tasks, i.Tasks)
		tasks[idx] = next
		i.Tasks = tasks

		rec := s.newRecord(i, domain.FieldStatus, string(prev.Status), string(domain.StatusDeleted), actor, writeOpts{taskID: taskID})
		i.History = append(i.History, rec)
		m.records = append(m.records, rec)
		return s.rollUp(i, actor, &m)
	})
	if errors.Is(err, errNoop) || errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.commit(ctx, result, &m)
	return result, nil
}

func (s *mutationService) AddTask(ctx context.Context, actor domain.Actor, initiativeID string, req AddTaskRequest) (result *domain.Initiative, err error) {
	startedAt := time.Now()
	fields := map[string]any{"initiative_id": initiativeID}
	defer func() { s.observe(ctx, "add-task", startedAt, fields, err) }()

	task, err := s.buildTask(actor, req)
	if err != nil {
		return nil, err
	}
	fields["task_id"] = task.ID

	resolver := s.resolver()
	var m mutation
	result, err = s.store.Update(initiativeID, func(i *domain.Initiative) error {
		if err := resolver.CreateTask(actor, task.PermissionOwner(i)).Err(); err != nil {
			return err
		}
		tasks := make([]domain.Task, len(i.Tasks), len(i.Tasks)+1)
		copy(tasks, i.Tasks)
		i.Tasks = append(tasks, task)
		return s.rollUp(i, actor, &m)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.commit(ctx, result, &m)
	return result, nil
}

func (s *mutationService) buildTask(actor domain.Actor, req AddTaskRequest) (domain.Task, error) {
	t := domain.Task{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		Owner:     req.Owner,
		OwnerID:   strings.TrimSpace(req.OwnerID),
		Status:    domain.StatusNotStarted,
		CreatedAt: s.now(),
		CreatedBy: actor.DisplayName(),
	}
	set := func(f domain.Field, v string) error {
		if v == "" {
			return nil
		}
		return t.SetField(f, v)
	}
	if req.EstimatedEffort < 0 || req.ActualEffort < 0 {
		return t, &domain.ValidationError{Field: "effort", Message: "effort cannot be negative"}
	}
	t.EstimatedEffort = req.EstimatedEffort
	t.ActualEffort = req.ActualEffort
	if err := set(domain.FieldETA, req.ETA); err != nil {
		return t, err
	}
	if err := set(domain.FieldStatus, req.Status); err != nil {
		return t, err
	}
	if err := set(domain.FieldPriority, req.Priority); err != nil {
		return t, err
	}
	for _, tag := range req.Tags {
		if !domain.ValidTaskTags[tag] {
			return t, &domain.ValidationError{Field: "tags", Message: fmt.Sprintf("unknown tag %q", tag)}
		}
	}
	t.Tags = append([]domain.TaskTag(nil), req.Tags...)
	if t.Status == domain.StatusInProgress && t.ETA == "" {
		return t, &domain.ValidationError{Field: string(domain.FieldStatus), Message: "a task needs an ETA before it can be in progress"}
	}
	if t.Status == domain.StatusDeleted {
		return t, &domain.ValidationError{Field: string(domain.FieldStatus), Message: "cannot create a deleted task"}
	}
	return t, nil
}

func (s *mutationService) CreateInitiative(ctx context.Context, actor domain.Actor, req CreateInitiativeRequest) (result *domain.Initiative, err error) {
	startedAt := time.Now()
	fields := map[string]any{"title": req.Title}
	defer func() { s.observe(ctx, "create-initiative", startedAt, fields, err) }()

	i, err := s.buildInitiative(actor, req)
	if err != nil {
		return nil, err
	}
	if err := s.resolver().CreateTask(actor, i.OwnerID).Err(); err != nil {
		return nil, err
	}
	var m mutation
	s.finalize(i, &m)

	result, err = s.store.Insert(i)
	if err != nil {
		return nil, err
	}
	fields["initiative_id"] = result.ID
	s.commit(ctx, result, &m)
	return result, nil
}

func (s *mutationService) buildInitiative(actor domain.Actor, req CreateInitiativeRequest) (*domain.Initiative, error) {
	now := s.now()
	i := &domain.Initiative{
		ID:             uuid.New().String(),
		AssetClass:     strings.TrimSpace(req.AssetClass),
		Pillar:         strings.TrimSpace(req.Pillar),
		Responsibility: strings.TrimSpace(req.Responsibility),
		Target:         strings.TrimSpace(req.Target),
		OwnerID:        domain.CoalesceStr(strings.TrimSpace(req.OwnerID), actor.UserID),
		SecondaryOwner: req.SecondaryOwner,
		Quarter:        strings.TrimSpace(req.Quarter),
		Status:         domain.StatusNotStarted,
		Priority:       domain.PriorityP1,
		WorkType:       domain.WorkPlanned,
		UnplannedTags:  append([]string(nil), req.UnplannedTags...),
		CreatedAt:      now,
	}
	if err := i.SetField(domain.FieldTitle, req.Title); err != nil {
		return nil, err
	}
	if req.Priority != "" {
		if err := i.SetField(domain.FieldPriority, req.Priority); err != nil {
			return nil, err
		}
	}
	if req.WorkType != "" {
		if err := i.SetField(domain.FieldWorkType, req.WorkType); err != nil {
			return nil, err
		}
	}
	if err := i.SetField(domain.FieldEstimatedEffort, domain.FormatEffort(req.EstimatedEffort)); err != nil {
		return nil, err
	}
	if err := i.SetField(domain.FieldETA, req.ETA); err != nil {
		return nil, err
	}
	if err := i.SetField(domain.FieldCompletionRate, fmt.Sprint(req.CompletionRate)); err != nil {
		return nil, err
	}
	i.OriginalEstimatedEffort = i.EstimatedEffort
	i.OriginalETA = i.ETA
	return i, nil
}

func (s *mutationService) DeleteInitiative(ctx context.Context, actor domain.Actor, id string) (result *domain.Initiative, err error) {
	startedAt := time.Now()
	fields := map[string]any{"initiative_id": id}
	defer func() { s.observe(ctx, "delete-initiative", startedAt, fields, err) }()

	resolver := s.resolver()
	var m mutation
	result, err = s.store.Update(id, func(i *domain.Initiative) error {
		if i.IsDeleted() {
			return errNoop
		}
		if err := resolver.DeleteTask(actor, "", i.OwnerID).Err(); err != nil {
			return err
		}
		now := s.now()
		rec := s.newRecord(i, domain.FieldStatus, string(i.Status), string(domain.StatusDeleted), actor, writeOpts{})
		i.History = append(i.History, rec)
		m.records = append(m.records, rec)
		i.RestoreStatus = i.Status
		i.Status = domain.StatusDeleted
		i.DeletedAt = &now
		i.LastUpdated = s.today()
		return nil
	})
	if errors.Is(err, errNoop) || errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.commit(ctx, result, &m)
	return result, nil
}

// RestoreInitiative undoes a soft delete, returning to the status held
// before deletion (NotStarted when unknown).
func (s *mutationService) RestoreInitiative(ctx context.Context, actor domain.Actor, id string) (result *domain.Initiative, err error) {
	startedAt := time.Now()
	fields := map[string]any{"initiative_id": id}
	defer func() { s.observe(ctx, "restore-initiative", startedAt, fields, err) }()

	resolver := s.resolver()
	var m mutation
	result, err = s.store.Update(id, func(i *domain.Initiative) error {
		if !i.IsDeleted() {
			return errNoop
		}
		if err := resolver.DeleteTask(actor, "", i.OwnerID).Err(); err != nil {
			return err
		}
		restored := i.RestoreStatus
		if restored == "" || restored == domain.StatusDeleted {
			restored = domain.StatusNotStarted
		}
		rec := s.newRecord(i, domain.FieldStatus, string(i.Status), string(restored), actor, writeOpts{})
		i.History = append(i.History, rec)
		m.records = append(m.records, rec)
		i.Status = restored
		i.RestoreStatus = ""
		i.DeletedAt = nil
		s.finalize(i, &m)
		return nil
	})
	if errors.Is(err, errNoop) || errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.commit(ctx, result, &m)
	return result, nil
}

// PurgeInitiatives hard-deletes soft-deleted initiatives. Only admins may
// purge. With no ids every soft-deleted initiative is purged. Live
// initiatives named in ids are skipped. Change records are kept.
func (s *mutationService) PurgeInitiatives(ctx context.Context, actor domain.Actor, ids []string) (n int, err error) {
	startedAt := time.Now()
	fields := map[string]any{"requested": len(ids)}
	defer func() { s.observe(ctx, "purge-initiatives", startedAt, fields, err) }()

	if err := s.resolver().AdminDecision(actor).Err(); err != nil {
		return 0, err
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	victims := s.store.List(func(i *domain.Initiative) bool {
		return i.IsDeleted() && (len(ids) == 0 || want[i.ID])
	})
	purge := make([]string, 0, len(victims))
	for _, v := range victims {
		purge = append(purge, v.ID)
	}
	if len(purge) == 0 {
		return 0, nil
	}

	if s.uow != nil {
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			repo := repository.NewSQLiteInitiativeRepo(tx)
			for _, id := range purge {
				if err := repo.Delete(ctx, id); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("purging initiatives: %w", err)
		}
	}

	n = s.store.Remove(purge...)
	fields["purged"] = n
	s.logger.InfoContext(ctx, "initiatives_purged", "count", n, "actor", actor.DisplayName())
	return n, nil
}

// Import creates initiatives from pre-validated rows. Invalid rows are
// skipped; rows rejected by permission or validation are reported and do
// not stop the rest.
func (s *mutationService) Import(ctx context.Context, actor domain.Actor, rows []ImportRow) (*ImportResult, error) {
	res := &ImportResult{}
	for n, row := range rows {
		if !row.IsValid {
			res.Skipped++
			if row.Error != "" {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %s", n+1, row.Error))
			}
			continue
		}
		created, err := s.CreateInitiative(ctx, actor, row.Initiative)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", n+1, err))
			continue
		}
		res.Created = append(res.Created, created)
	}
	return res, nil
}

func (s *mutationService) AddComment(ctx context.Context, actor domain.Actor, initiativeID, text string) (result *domain.Comment, err error) {
	startedAt := time.Now()
	fields := map[string]any{"initiative_id": initiativeID}
	defer func() { s.observe(ctx, "add-comment", startedAt, fields, err) }()

	if strings.TrimSpace(text) == "" {
		return nil, &domain.ValidationError{Field: "text", Message: "comment is empty"}
	}
	var users []*domain.User
	if s.users != nil {
		users, err = s.users.List(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "mention_directory_unavailable", "error", err)
			users, err = nil, nil
		}
	}
	comment := notify.NewComment(text, actor.UserID, users, s.now())

	updated, err := s.store.Update(initiativeID, func(i *domain.Initiative) error {
		comments := make([]domain.Comment, len(i.Comments), len(i.Comments)+1)
		copy(comments, i.Comments)
		i.Comments = append(comments, comment)
		i.LastUpdated = s.today()
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fields["mentions"] = len(comment.MentionedUserIDs)
	s.dispatch(ctx, notify.OnCommentAdded(updated, comment, users))
	return &comment, nil
}

// SweepOverdue re-runs the derived status rules for every live initiative
// and notifies owners of items that just became at risk.
func (s *mutationService) SweepOverdue(ctx context.Context) (n int, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { s.observe(ctx, "sweep-overdue", startedAt, fields, err) }()

	today := s.today()
	candidates := s.store.List(func(i *domain.Initiative) bool {
		return !i.Status.IsTerminal() && i.Status != domain.StatusAtRisk && i.ETA != "" && i.ETA < today
	})
	for _, c := range candidates {
		var m mutation
		updated, err := s.store.Update(c.ID, func(i *domain.Initiative) error {
			before := i.Status
			s.finalize(i, &m)
			if i.Status == before {
				return errNoop
			}
			return nil
		})
		if err != nil {
			continue
		}
		s.commit(ctx, updated, &m)
		if m.becameAtRisk {
			n++
		}
	}
	fields["flagged"] = n
	return n, nil
}
