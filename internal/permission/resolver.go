// Package permission resolves role capabilities from the permission matrix.
package permission

import (
	"strings"

	"github.com/alexanderramin/portfolio/internal/domain"
)

// RootIdentityEmail always passes the admin-panel gate, whatever the matrix
// says for its role. The exception applies to CanAccessAdmin only.
const RootIdentityEmail = "root@portfolio.internal"

// Resolver answers capability questions against one snapshot of the matrix.
// The zero value denies everything.
type Resolver struct {
	matrix domain.RolePermissions
}

func NewResolver(matrix domain.RolePermissions) Resolver {
	return Resolver{matrix: matrix}
}

// Resolve returns the configured value for (role, key), falling back to the
// most restrictive value of the key's family.
func (r Resolver) Resolve(role domain.Role, key domain.PermissionKey) domain.PermissionValue {
	if v, ok := r.matrix[role][key]; ok && v.Valid(key) {
		return v
	}
	return key.Default()
}

// Cycle returns the value following current in the fixed order for key:
// none -> view -> edit -> none for tabs, no -> yes -> own -> no otherwise.
// A value outside the family restarts from the family default.
func Cycle(key domain.PermissionKey, current domain.PermissionValue) domain.PermissionValue {
	order := []domain.PermissionValue{domain.PermNo, domain.PermYes, domain.PermOwn}
	if key.IsTab() {
		order = []domain.PermissionValue{domain.PermNone, domain.PermView, domain.PermEdit}
	}
	for i, v := range order {
		if v == current {
			return order[(i+1)%len(order)]
		}
	}
	return key.Default()
}

// Decision is the outcome of a scoped check. Scope is the value the role
// resolved to; Reason is user-facing and empty when Allowed.
type Decision struct {
	Allowed bool
	Action  domain.PermissionKey
	Scope   domain.PermissionValue
	Reason  string
}

// Err converts a denied decision into a *domain.PermissionDeniedError.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	required := domain.PermOwn
	switch {
	case d.Action.IsTab():
		required = domain.PermView
	case d.Scope == domain.PermOwn:
		required = domain.PermYes
	}
	return &domain.PermissionDeniedError{
		Action:   d.Action,
		Required: required,
		Granted:  d.Scope,
		Message:  d.Reason,
	}
}

var verbs = map[domain.PermissionKey]string{
	domain.PermCreateTasks: "create",
	domain.PermEditTasks:   "edit",
	domain.PermDeleteTasks: "delete",
}

// scoped evaluates a yes/own/no key against the effective owner.
func (r Resolver) scoped(key domain.PermissionKey, a domain.Actor, ownerID string) Decision {
	scope := r.Resolve(a.Role, key)
	d := Decision{Action: key, Scope: scope}
	switch scope {
	case domain.PermYes:
		d.Allowed = true
	case domain.PermOwn:
		if a.Is(ownerID) {
			d.Allowed = true
		} else {
			d.Reason = "you can only " + verbs[key] + " tasks you own"
		}
	default:
		d.Reason = "you do not have permission to " + verbs[key] + " tasks"
	}
	return d
}

func effectiveOwner(taskOwnerID, initiativeOwnerID string) string {
	if strings.TrimSpace(taskOwnerID) != "" {
		return taskOwnerID
	}
	return initiativeOwnerID
}

func (r Resolver) CanEditAllTasks(role domain.Role) bool {
	return r.Resolve(role, domain.PermEditTasks) == domain.PermYes
}

func (r Resolver) CanEditOwn(role domain.Role) bool {
	return r.Resolve(role, domain.PermEditTasks) == domain.PermOwn
}

// EditTask decides whether a may edit a task. Ownership is the task's owner
// when set, otherwise the parent initiative's owner. For initiative-level
// edits pass an empty taskOwnerID.
func (r Resolver) EditTask(a domain.Actor, taskOwnerID, initiativeOwnerID string) Decision {
	return r.scoped(domain.PermEditTasks, a, effectiveOwner(taskOwnerID, initiativeOwnerID))
}

func (r Resolver) CanEditTask(a domain.Actor, taskOwnerID, initiativeOwnerID string) bool {
	return r.EditTask(a, taskOwnerID, initiativeOwnerID).Allowed
}

func (r Resolver) CanDeleteAllTasks(role domain.Role) bool {
	return r.Resolve(role, domain.PermDeleteTasks) == domain.PermYes
}

func (r Resolver) CanDeleteOwn(role domain.Role) bool {
	return r.Resolve(role, domain.PermDeleteTasks) == domain.PermOwn
}

func (r Resolver) DeleteTask(a domain.Actor, taskOwnerID, initiativeOwnerID string) Decision {
	return r.scoped(domain.PermDeleteTasks, a, effectiveOwner(taskOwnerID, initiativeOwnerID))
}

func (r Resolver) CanDeleteTask(a domain.Actor, taskOwnerID, initiativeOwnerID string) bool {
	return r.DeleteTask(a, taskOwnerID, initiativeOwnerID).Allowed
}

func (r Resolver) CanCreateAll(role domain.Role) bool {
	return r.Resolve(role, domain.PermCreateTasks) == domain.PermYes
}

func (r Resolver) CanCreateOwn(role domain.Role) bool {
	return r.Resolve(role, domain.PermCreateTasks) == domain.PermOwn
}

// CreateTask decides whether a may create work owned by ownerID. With
// "own" scope the new item must be owned by the actor.
func (r Resolver) CreateTask(a domain.Actor, ownerID string) Decision {
	return r.scoped(domain.PermCreateTasks, a, ownerID)
}

func (r Resolver) CanCreateTask(a domain.Actor, ownerID string) bool {
	return r.CreateTask(a, ownerID).Allowed
}

// ViewTab decides whether a may read the data behind tab.
func (r Resolver) ViewTab(a domain.Actor, tab domain.PermissionKey) Decision {
	d := Decision{Action: tab, Scope: r.Resolve(a.Role, tab)}
	if r.CanViewTab(a.Role, tab) {
		d.Allowed = true
	} else {
		d.Reason = "you do not have access to " + strings.TrimPrefix(string(tab), "tab_") + " views"
	}
	return d
}

func (r Resolver) CanViewTab(role domain.Role, tab domain.PermissionKey) bool {
	if !tab.IsTab() {
		return false
	}
	v := r.Resolve(role, tab)
	return v == domain.PermView || v == domain.PermEdit
}

func (r Resolver) CanEditTab(role domain.Role, tab domain.PermissionKey) bool {
	return tab.IsTab() && r.Resolve(role, tab) == domain.PermEdit
}

// IsRootIdentity reports whether a is the hardcoded super-admin.
func IsRootIdentity(a domain.Actor) bool {
	return strings.EqualFold(strings.TrimSpace(a.Email), RootIdentityEmail)
}

// CanAccessAdmin gates the admin panel. The root identity is checked before
// the matrix and passes unconditionally.
func (r Resolver) CanAccessAdmin(a domain.Actor) bool {
	if IsRootIdentity(a) {
		return true
	}
	return r.Resolve(a.Role, domain.PermAccessAdmin) == domain.PermYes
}

func (r Resolver) CanManageWorkflows(role domain.Role) bool {
	return r.Resolve(role, domain.PermManageWorkflows) == domain.PermYes
}

// AdminDecision wraps CanAccessAdmin for callers that need an error value.
func (r Resolver) AdminDecision(a domain.Actor) Decision {
	d := Decision{Action: domain.PermAccessAdmin, Scope: r.Resolve(a.Role, domain.PermAccessAdmin)}
	if r.CanAccessAdmin(a) {
		d.Allowed = true
		return d
	}
	d.Reason = "admin access required"
	return d
}
