package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.DaysPerWeek)
	assert.Equal(t, "5 0 * * *", s.Backup.Schedule)
	assert.False(t, s.Backup.Enabled())
	assert.Empty(t, s.Redis.URL)
}

func TestLoadSettings_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /tmp/p.db
log_level: debug
days_per_week: 4
backup:
  endpoint: s3.local:9000
  bucket: portfolio
`), 0o600))
	t.Setenv("PORTFOLIO_BACKUP_BUCKET", "override")
	t.Setenv("PORTFOLIO_REDIS_URL", "redis://localhost:6379/0")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/p.db", s.DBPath)
	assert.Equal(t, 4.0, s.DaysPerWeek)
	assert.Equal(t, "override", s.Backup.Bucket)
	assert.True(t, s.Backup.Enabled())
	assert.Equal(t, "redis://localhost:6379/0", s.Redis.URL)
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", Settings{LogLevel: "debug"}.SlogLevel().String())
	assert.Equal(t, "WARN", Settings{LogLevel: "loud"}.SlogLevel().String())
}

func TestParseAppConfig_NormalizesPermissions(t *testing.T) {
	cfg, warnings, err := ParseAppConfig([]byte(`
bauBufferSuggestion: 15
teamCapacities:
  U1: 1.5
rolePermissions:
  Team Lead:
    editTasks: OWN
    tab_timeline: true
    delete-tasks: false
    fly: yes
  intern:
    editTasks: yes
`))
	require.NoError(t, err)
	assert.Equal(t, 15.0, cfg.BAUBufferSuggestion)
	assert.Equal(t, 1.5, cfg.TeamCapacities["U1"])

	lead := cfg.RolePermissions[domain.RoleTeamLead]
	assert.Equal(t, domain.PermOwn, lead[domain.PermEditTasks])
	assert.Equal(t, domain.PermEdit, lead[domain.PermTabTimeline])
	assert.Equal(t, domain.PermNo, lead[domain.PermDeleteTasks])
	_, hasCreate := lead[domain.PermCreateTasks]
	assert.False(t, hasCreate, "file row replaces the default row")

	assert.Equal(t, domain.PermYes, cfg.RolePermissions[domain.RoleAdmin][domain.PermAccessAdmin], "untouched roles keep defaults")
	assert.Len(t, warnings, 2)
}

func TestAppConfigRoundTrip(t *testing.T) {
	orig := domain.DefaultAppConfig().WithCapacity("U1", 2).WithBAUBuffer(30)
	data, err := MarshalAppConfig(orig)
	require.NoError(t, err)

	parsed, warnings, err := ParseAppConfig(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, orig.TeamCapacities, parsed.TeamCapacities)
	assert.Equal(t, orig.RolePermissions, parsed.RolePermissions)
	assert.Equal(t, 30.0, parsed.BAUBufferSuggestion)
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	_, _, err := LoadAppConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
