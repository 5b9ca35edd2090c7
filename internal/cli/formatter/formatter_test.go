package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/portfolio/internal/capacity"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/effort"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	DisableColor()
}

var today = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestTable_AlignsColumns(t *testing.T) {
	out := Table{
		Headers: []string{"NAME", "EST"},
		Rows:    [][]string{{"a", "1"}, {"longer", "12.5"}},
		Right:   []int{1},
	}.Render()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[2]))
	assert.True(t, strings.HasSuffix(lines[2], "   1"), "numbers are right-aligned: %q", lines[2])
	assert.Empty(t, RenderTable(nil, nil))
}

func TestRenderUtilization(t *testing.T) {
	tests := []struct {
		name   string
		pct    capacity.Percent
		filled int
		label  string
	}{
		{"empty", 0, 0, "0%"},
		{"half", 50, 5, "50%"},
		{"over clamps the bar but keeps the label", 130, 10, "130%"},
		{"negative clamps", -20, 0, "-20%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderUtilization(tt.pct, 10)
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.Equal(t, 10-tt.filled, strings.Count(got, emptyBlock))
			assert.Contains(t, got, tt.label)
		})
	}
}

func TestRenderCompletion(t *testing.T) {
	assert.Equal(t, 5, strings.Count(RenderCompletion(50, 10), filledBlock))
	assert.Equal(t, 10, strings.Count(RenderCompletion(150, 10), filledBlock))
	assert.Equal(t, 2, strings.Count(RenderCompletion(0, 1), emptyBlock))
}

func TestRelativeETA(t *testing.T) {
	assert.Equal(t, "today", RelativeETA("2025-06-15", today))
	assert.Equal(t, "in 3d", RelativeETA("2025-06-18", today))
	assert.Equal(t, "5d overdue", RelativeETA("2025-06-10", today))
	assert.Equal(t, "-", RelativeETA("", today))
	assert.Equal(t, "-", RelativeETA("soon", today))
}

func TestFormatEffort(t *testing.T) {
	assert.Equal(t, "2w (10.0d / 80h)", FormatEffort(2, effort.Default))
	assert.Equal(t, "1w (4.0d / 32h)", FormatEffort(1, effort.Converter{DaysPerWeek: 4}))
}

func TestFormatInitiative_HidesDeletedTasks(t *testing.T) {
	gone := time.Now()
	i := &domain.Initiative{
		ID:      "init-1",
		Title:   "Ledger",
		OwnerID: "U1",
		Status:  domain.StatusInProgress,
		ETA:     "2025-06-20",
		Tasks: []domain.Task{
			{ID: "t-live", Title: "keep me", Status: domain.StatusInProgress},
			{ID: "t-gone", Title: "drop me", Status: domain.StatusDeleted, DeletedAt: &gone},
		},
		Comments: []domain.Comment{{AuthorID: "U2", Text: "ping @Uma", Timestamp: today}},
	}

	out := FormatInitiative(i, effort.Default, today)
	assert.Contains(t, out, "keep me")
	assert.NotContains(t, out, "drop me")
	assert.Contains(t, out, "ping @Uma")
	assert.Contains(t, out, "in 5d")
}

func TestFormatPermissionMatrix_ShowsResolvedDefaults(t *testing.T) {
	out := FormatPermissionMatrix(domain.RolePermissions{
		domain.RoleAdmin: {domain.PermEditTasks: domain.PermYes},
	})
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 2+len(domain.Roles)-1)
	assert.Contains(t, lines[2], "yes")
	assert.Contains(t, lines[2], "none", "unset tab falls back to none")
}

func TestFormatCapacityReport(t *testing.T) {
	cfg := domain.DefaultAppConfig().WithCapacity("U1", 4)
	items := []*domain.Initiative{{OwnerID: "U1", Status: domain.StatusInProgress, EstimatedEffort: 3, ActualEffort: 2}}
	out := FormatCapacityReport(capacity.TeamReport([]string{"U1"}, items, cfg))
	assert.Contains(t, out, "U1")
	assert.Contains(t, out, "Efficiency")
}
