package permission

import (
	"testing"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	for raw, want := range map[string]domain.PermissionKey{
		"editTasks":         domain.PermEditTasks,
		"edit-tasks":        domain.PermEditTasks,
		"EDIT_TASKS":        domain.PermEditTasks,
		" tab_all_tasks ":   domain.PermTabAllTasks,
		"tabWorkplanHealth": domain.PermTabWorkplanHealth,
		"accessAdmin":       domain.PermAccessAdmin,
	} {
		got, ok := ParseKey(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseKey("fly")
	assert.False(t, ok)
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name   string
		key    domain.PermissionKey
		raw    any
		want   domain.PermissionValue
		wantOK bool
	}{
		{"bool true scope", domain.PermEditTasks, true, domain.PermYes, true},
		{"bool false scope", domain.PermEditTasks, false, domain.PermNo, true},
		{"bool true tab", domain.PermTabTimeline, true, domain.PermEdit, true},
		{"bool false tab", domain.PermTabTimeline, false, domain.PermNone, true},
		{"string trimmed", domain.PermDeleteTasks, "  OWN ", domain.PermOwn, true},
		{"string bool", domain.PermCreateTasks, "true", domain.PermYes, true},
		{"wrong family", domain.PermEditTasks, "view", domain.PermNo, false},
		{"number", domain.PermTabTimeline, 3, domain.PermNone, false},
		{"missing", domain.PermAccessAdmin, nil, domain.PermNo, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeValue(tc.key, tc.raw)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantOK, ok)
		})
	}
}

func TestNormalize(t *testing.T) {
	matrix, warnings := Normalize(map[string]map[string]any{
		"Team Lead": {"editTasks": "own", "tab_timeline": true, "bogus": "yes"},
		"intern":    {"editTasks": "yes"},
		"vp":        {"delete_tasks": 1},
	})

	assert.Equal(t, domain.PermOwn, matrix[domain.RoleTeamLead][domain.PermEditTasks])
	assert.Equal(t, domain.PermEdit, matrix[domain.RoleTeamLead][domain.PermTabTimeline])
	assert.Equal(t, domain.PermNo, matrix[domain.RoleVP][domain.PermDeleteTasks])
	assert.NotContains(t, matrix, domain.Role("intern"))
	assert.Len(t, warnings, 3)
}
