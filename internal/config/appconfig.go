package config

import (
	"fmt"
	"os"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/permission"
	"gopkg.in/yaml.v3"
)

// appConfigFile mirrors the YAML layout. Permission values stay untyped
// until Normalize has folded booleans and legacy spellings.
type appConfigFile struct {
	BAUBufferSuggestion     *float64                  `yaml:"bauBufferSuggestion"`
	TeamCapacities          map[string]float64        `yaml:"teamCapacities"`
	TeamCapacityAdjustments map[string]float64        `yaml:"teamCapacityAdjustments"`
	TeamBuffers             map[string]float64        `yaml:"teamBuffers"`
	RolePermissions         map[string]map[string]any `yaml:"rolePermissions"`
}

// ParseAppConfig decodes a YAML AppConfig on top of the defaults. Sections
// present in the file replace the default section entirely; roles missing
// from rolePermissions keep their default rows. Warnings list dropped or
// corrected permission entries.
func ParseAppConfig(data []byte) (domain.AppConfig, []string, error) {
	var raw appConfigFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.AppConfig{}, nil, fmt.Errorf("decoding app config: %w", err)
	}

	cfg := domain.DefaultAppConfig()
	if raw.BAUBufferSuggestion != nil {
		cfg.BAUBufferSuggestion = *raw.BAUBufferSuggestion
	}
	if raw.TeamCapacities != nil {
		cfg.TeamCapacities = raw.TeamCapacities
	}
	if raw.TeamCapacityAdjustments != nil {
		cfg.TeamCapacityAdjustments = raw.TeamCapacityAdjustments
	}
	if raw.TeamBuffers != nil {
		cfg.TeamBuffers = raw.TeamBuffers
	}

	var warnings []string
	if raw.RolePermissions != nil {
		matrix, w := permission.Normalize(raw.RolePermissions)
		warnings = w
		for role, perms := range matrix {
			cfg.RolePermissions[role] = perms
		}
	}
	return cfg, warnings, nil
}

// LoadAppConfig reads and parses the YAML file at path.
func LoadAppConfig(path string) (domain.AppConfig, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.AppConfig{}, nil, fmt.Errorf("reading app config: %w", err)
	}
	return ParseAppConfig(data)
}

// MarshalAppConfig renders cfg in the same layout ParseAppConfig reads.
func MarshalAppConfig(cfg domain.AppConfig) ([]byte, error) {
	perms := make(map[string]map[string]any, len(cfg.RolePermissions))
	for role, row := range cfg.RolePermissions {
		out := make(map[string]any, len(row))
		for k, v := range row {
			out[string(k)] = string(v)
		}
		perms[string(role)] = out
	}
	bau := cfg.BAUBufferSuggestion
	data, err := yaml.Marshal(appConfigFile{
		BAUBufferSuggestion:     &bau,
		TeamCapacities:          cfg.TeamCapacities,
		TeamCapacityAdjustments: cfg.TeamCapacityAdjustments,
		TeamBuffers:             cfg.TeamBuffers,
		RolePermissions:         perms,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding app config: %w", err)
	}
	return data, nil
}
