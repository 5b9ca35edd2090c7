package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppConfig_WithPermissionDoesNotMutateReceiver(t *testing.T) {
	base := DefaultAppConfig()
	before := base.RolePermissions[RoleTeamLead][PermEditTasks]

	updated := base.WithPermission(RoleTeamLead, PermEditTasks, PermYes)

	assert.Equal(t, before, base.RolePermissions[RoleTeamLead][PermEditTasks])
	assert.Equal(t, PermYes, updated.RolePermissions[RoleTeamLead][PermEditTasks])
}

func TestAppConfig_WithPermissionOnEmptyConfig(t *testing.T) {
	var cfg AppConfig
	updated := cfg.WithPermission(RoleVP, PermTabTimeline, PermView)
	assert.Nil(t, cfg.RolePermissions)
	assert.Equal(t, PermView, updated.RolePermissions[RoleVP][PermTabTimeline])
}

func TestAppConfig_CapacityUpdatersCopy(t *testing.T) {
	base := AppConfig{TeamCapacities: map[string]float64{"u1": 1}}
	next := base.WithCapacity("u1", 0.8).WithAdjustment("u1", 0.1).WithBuffer("u1", 0.2).WithBAUBuffer(15)

	assert.Equal(t, 1.0, base.TeamCapacities["u1"])
	assert.Nil(t, base.TeamBuffers)
	assert.Equal(t, 0.8, next.TeamCapacities["u1"])
	assert.Equal(t, 0.1, next.TeamCapacityAdjustments["u1"])
	assert.Equal(t, 0.2, next.TeamBuffers["u1"])
	assert.Equal(t, 15.0, next.BAUBufferSuggestion)
}

func TestDefaultAppConfig_ValuesMatchKeyFamilies(t *testing.T) {
	cfg := DefaultAppConfig()
	for role, perms := range cfg.RolePermissions {
		for key, v := range perms {
			assert.True(t, v.Valid(key), "role=%s key=%s value=%s", role, key, v)
		}
	}
}
