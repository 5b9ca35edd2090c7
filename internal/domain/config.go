package domain

// AppConfig is the process-wide admin configuration. It is treated as an
// immutable value: the With* methods return an updated copy and never
// touch the receiver.
type AppConfig struct {
	// BAUBufferSuggestion is the percentage of capacity suggested as buffer
	// for unplanned work.
	BAUBufferSuggestion float64 `json:"bauBufferSuggestion" yaml:"bauBufferSuggestion"`

	// TeamCapacities maps owner id to weekly capacity in weeks of effort.
	TeamCapacities map[string]float64 `json:"teamCapacities" yaml:"teamCapacities"`

	// TeamCapacityAdjustments is signed: positive deducts, negative adds.
	TeamCapacityAdjustments map[string]float64 `json:"teamCapacityAdjustments" yaml:"teamCapacityAdjustments"`

	// TeamBuffers maps owner id to reserved weeks.
	TeamBuffers map[string]float64 `json:"teamBuffers" yaml:"teamBuffers"`

	RolePermissions RolePermissions `json:"rolePermissions" yaml:"-"`
}

func (c AppConfig) Clone() AppConfig {
	out := c
	out.TeamCapacities = cloneFloatMap(c.TeamCapacities)
	out.TeamCapacityAdjustments = cloneFloatMap(c.TeamCapacityAdjustments)
	out.TeamBuffers = cloneFloatMap(c.TeamBuffers)
	out.RolePermissions = c.RolePermissions.Clone()
	return out
}

func (c AppConfig) WithPermission(role Role, key PermissionKey, v PermissionValue) AppConfig {
	out := c.Clone()
	if out.RolePermissions == nil {
		out.RolePermissions = RolePermissions{}
	}
	if out.RolePermissions[role] == nil {
		out.RolePermissions[role] = map[PermissionKey]PermissionValue{}
	}
	out.RolePermissions[role][key] = v
	return out
}

func (c AppConfig) WithCapacity(ownerID string, weekly float64) AppConfig {
	out := c.Clone()
	out.TeamCapacities = setFloat(out.TeamCapacities, ownerID, weekly)
	return out
}

func (c AppConfig) WithAdjustment(ownerID string, adj float64) AppConfig {
	out := c.Clone()
	out.TeamCapacityAdjustments = setFloat(out.TeamCapacityAdjustments, ownerID, adj)
	return out
}

func (c AppConfig) WithBuffer(ownerID string, weeks float64) AppConfig {
	out := c.Clone()
	out.TeamBuffers = setFloat(out.TeamBuffers, ownerID, weeks)
	return out
}

func (c AppConfig) WithBAUBuffer(pct float64) AppConfig {
	out := c.Clone()
	out.BAUBufferSuggestion = pct
	return out
}

// DefaultAppConfig seeds the matrix for a fresh install: admins and
// portfolio operations manage everything, leadership edits, team leads
// edit their own work.
func DefaultAppConfig() AppConfig {
	all := func(tab, scope, admin PermissionValue) map[PermissionKey]PermissionValue {
		m := map[PermissionKey]PermissionValue{}
		for _, k := range PermissionKeys {
			if k.IsTab() {
				m[k] = tab
			} else {
				m[k] = scope
			}
		}
		m[PermAccessAdmin] = admin
		m[PermManageWorkflows] = admin
		return m
	}
	return AppConfig{
		BAUBufferSuggestion:     20,
		TeamCapacities:          map[string]float64{},
		TeamCapacityAdjustments: map[string]float64{},
		TeamBuffers:             map[string]float64{},
		RolePermissions: RolePermissions{
			RoleAdmin:               all(PermEdit, PermYes, PermYes),
			RolePortfolioOperations: all(PermEdit, PermYes, PermYes),
			RoleSVP:                 all(PermEdit, PermYes, PermNo),
			RoleVP:                  all(PermEdit, PermYes, PermNo),
			RoleSeniorDirector:      all(PermEdit, PermOwn, PermNo),
			RoleDirector:            all(PermView, PermOwn, PermNo),
			RoleTeamLead:            all(PermView, PermOwn, PermNo),
		},
	}
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func setFloat(m map[string]float64, k string, v float64) map[string]float64 {
	if m == nil {
		m = map[string]float64{}
	}
	m[k] = v
	return m
}
