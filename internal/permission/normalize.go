package permission

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/alexanderramin/portfolio/internal/domain"
)

// ParseKey accepts snake_case, kebab-case and camelCase spellings
// ("editTasks", "edit-tasks", "EDIT_TASKS").
func ParseKey(raw string) (domain.PermissionKey, bool) {
	raw = strings.TrimSpace(raw)
	var norm string
	if strings.ContainsAny(raw, "_- ") || raw == strings.ToUpper(raw) {
		norm = strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(raw))
	} else {
		var b strings.Builder
		for i, r := range raw {
			if unicode.IsUpper(r) {
				if i > 0 {
					b.WriteRune('_')
				}
				r = unicode.ToLower(r)
			}
			b.WriteRune(r)
		}
		norm = b.String()
	}
	key := domain.PermissionKey(norm)
	return key, key.Known()
}

// NormalizeValue maps a loosely typed config value onto the closed enum.
// Booleans become yes/no (edit/none for tabs); strings are trimmed and
// lower-cased; anything else resolves to the key's default. The second
// result is false when the input had to be replaced by the default.
func NormalizeValue(key domain.PermissionKey, raw any) (domain.PermissionValue, bool) {
	switch v := raw.(type) {
	case bool:
		return boolValue(key, v), true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		switch s {
		case "true":
			return boolValue(key, true), true
		case "false":
			return boolValue(key, false), true
		}
		pv := domain.PermissionValue(s)
		if pv.Valid(key) {
			return pv, true
		}
	case domain.PermissionValue:
		if v.Valid(key) {
			return v, true
		}
	}
	return key.Default(), false
}

func boolValue(key domain.PermissionKey, b bool) domain.PermissionValue {
	switch {
	case key.IsTab() && b:
		return domain.PermEdit
	case key.IsTab():
		return domain.PermNone
	case b:
		return domain.PermYes
	default:
		return domain.PermNo
	}
}

// Normalize converts a raw role -> key -> value tree, as decoded from YAML
// or JSON, into a RolePermissions matrix. Unknown roles and keys are dropped
// and reported in warnings.
func Normalize(raw map[string]map[string]any) (domain.RolePermissions, []string) {
	out := domain.RolePermissions{}
	var warnings []string
	for rawRole, perms := range raw {
		role, ok := domain.ParseRole(rawRole)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown role %q dropped", rawRole))
			continue
		}
		if out[role] == nil {
			out[role] = map[domain.PermissionKey]domain.PermissionValue{}
		}
		for rawKey, rawVal := range perms {
			key, ok := ParseKey(rawKey)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("unknown permission %q for role %s dropped", rawKey, role))
				continue
			}
			v, ok := NormalizeValue(key, rawVal)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("invalid value %v for %s.%s, using %s", rawVal, role, key, v))
			}
			out[role][key] = v
		}
	}
	return out, warnings
}
