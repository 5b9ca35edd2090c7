// Package config loads process settings and the admin AppConfig file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. PORTFOLIO_DB_PATH
// or PORTFOLIO_BACKUP_BUCKET.
const EnvPrefix = "PORTFOLIO"

type RedisSettings struct {
	// URL enables the notification outbox when set.
	URL string `mapstructure:"url"`
}

type BackupSettings struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseTLS    bool   `mapstructure:"use_tls"`
	Schedule  string `mapstructure:"schedule"`
}

// Enabled reports whether enough is configured to reach a bucket.
func (b BackupSettings) Enabled() bool {
	return b.Endpoint != "" && b.Bucket != ""
}

// Settings holds everything the process needs at startup. Collaborator
// credentials stay here and are handed only to the adapters that use them.
type Settings struct {
	DBPath        string         `mapstructure:"db_path"`
	AppConfigFile string         `mapstructure:"app_config"`
	LogLevel      string         `mapstructure:"log_level"`
	LogUseCases   bool           `mapstructure:"log_use_cases"`
	DaysPerWeek   float64        `mapstructure:"days_per_week"`
	Actor         string         `mapstructure:"actor"`
	Redis         RedisSettings  `mapstructure:"redis"`
	Backup        BackupSettings `mapstructure:"backup"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portfolio"
	}
	return filepath.Join(home, ".portfolio")
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		DBPath:      filepath.Join(defaultDataDir(), "portfolio.db"),
		LogLevel:    "warn",
		DaysPerWeek: 5,
		Backup:      BackupSettings{Schedule: "5 0 * * *", UseTLS: true},
	}
}

func newViper(defaults Settings) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("app_config", defaults.AppConfigFile)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_use_cases", defaults.LogUseCases)
	v.SetDefault("days_per_week", defaults.DaysPerWeek)
	v.SetDefault("actor", defaults.Actor)
	v.SetDefault("redis.url", defaults.Redis.URL)
	v.SetDefault("backup.endpoint", defaults.Backup.Endpoint)
	v.SetDefault("backup.access_key", defaults.Backup.AccessKey)
	v.SetDefault("backup.secret_key", defaults.Backup.SecretKey)
	v.SetDefault("backup.bucket", defaults.Backup.Bucket)
	v.SetDefault("backup.use_tls", defaults.Backup.UseTLS)
	v.SetDefault("backup.schedule", defaults.Backup.Schedule)
	return v
}

// LoadSettings reads an optional settings file and applies PORTFOLIO_*
// environment overrides on top of the defaults. With an empty path it
// looks for settings.yaml in the data directory and tolerates its absence.
func LoadSettings(path string) (Settings, error) {
	v := newViper(DefaultSettings())
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultDataDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if s.DaysPerWeek <= 0 {
		s.DaysPerWeek = DefaultSettings().DaysPerWeek
	}
	return s, nil
}

// SlogLevel maps LogLevel onto slog, defaulting to warn.
func (s Settings) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}
