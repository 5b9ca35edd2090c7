package domain

type PermissionKey string

const (
	PermTabAllTasks       PermissionKey = "tab_all_tasks"
	PermTabDependencies   PermissionKey = "tab_dependencies"
	PermTabTimeline       PermissionKey = "tab_timeline"
	PermTabWorkflows      PermissionKey = "tab_workflows"
	PermTabWorkplanHealth PermissionKey = "tab_workplan_health"

	PermCreateTasks PermissionKey = "create_tasks"
	PermEditTasks   PermissionKey = "edit_tasks"
	PermDeleteTasks PermissionKey = "delete_tasks"

	PermAccessAdmin     PermissionKey = "access_admin"
	PermManageWorkflows PermissionKey = "manage_workflows"
)

// PermissionKeys lists every capability in matrix column order.
var PermissionKeys = []PermissionKey{
	PermTabAllTasks,
	PermTabDependencies,
	PermTabTimeline,
	PermTabWorkflows,
	PermTabWorkplanHealth,
	PermCreateTasks,
	PermEditTasks,
	PermDeleteTasks,
	PermAccessAdmin,
	PermManageWorkflows,
}

// IsTab reports whether the key takes none/view/edit values.
// All other keys take no/yes/own.
func (k PermissionKey) IsTab() bool {
	switch k {
	case PermTabAllTasks, PermTabDependencies, PermTabTimeline, PermTabWorkflows, PermTabWorkplanHealth:
		return true
	}
	return false
}

func (k PermissionKey) Known() bool {
	for _, known := range PermissionKeys {
		if k == known {
			return true
		}
	}
	return false
}

type PermissionValue string

const (
	PermNone PermissionValue = "none"
	PermView PermissionValue = "view"
	PermEdit PermissionValue = "edit"

	PermNo  PermissionValue = "no"
	PermYes PermissionValue = "yes"
	PermOwn PermissionValue = "own"
)

// Default returns the most restrictive value for the key's family.
func (k PermissionKey) Default() PermissionValue {
	if k.IsTab() {
		return PermNone
	}
	return PermNo
}

// Valid reports whether v belongs to the value family of key.
func (v PermissionValue) Valid(key PermissionKey) bool {
	if key.IsTab() {
		return v == PermNone || v == PermView || v == PermEdit
	}
	return v == PermNo || v == PermYes || v == PermOwn
}

// RolePermissions maps each role to its explicitly set capabilities.
// Missing pairs resolve to the key's Default.
type RolePermissions map[Role]map[PermissionKey]PermissionValue

func (rp RolePermissions) Clone() RolePermissions {
	if rp == nil {
		return nil
	}
	out := make(RolePermissions, len(rp))
	for role, perms := range rp {
		inner := make(map[PermissionKey]PermissionValue, len(perms))
		for k, v := range perms {
			inner[k] = v
		}
		out[role] = inner
	}
	return out
}
