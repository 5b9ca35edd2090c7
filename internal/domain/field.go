package domain

import (
	"strconv"
	"strings"
	"time"
)

// Field names an editable attribute of an initiative or task.
type Field string

const (
	FieldTitle           Field = "title"
	FieldOwnerID         Field = "owner_id"
	FieldOwner           Field = "owner"
	FieldSecondaryOwner  Field = "secondary_owner"
	FieldQuarter         Field = "quarter"
	FieldStatus          Field = "status"
	FieldPriority        Field = "priority"
	FieldWorkType        Field = "work_type"
	FieldEstimatedEffort Field = "estimated_effort"
	FieldActualEffort    Field = "actual_effort"
	FieldETA             Field = "eta"
	FieldCompletionRate  Field = "completion_rate"
	FieldAssetClass      Field = "asset_class"
	FieldPillar          Field = "pillar"
	FieldResponsibility  Field = "responsibility"
	FieldTarget          Field = "target"

	FieldOriginalEstimatedEffort Field = "original_estimated_effort"
	FieldOriginalETA             Field = "original_eta"
)

// IsEffort reports whether a task edit on this field requires a roll-up.
func (f Field) IsEffort() bool {
	return f == FieldEstimatedEffort || f == FieldActualEffort
}

// FormatEffort renders weeks without trailing zeros.
func FormatEffort(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseEffort(field Field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, validationErrorf(string(field), "%q is not a number", raw)
	}
	if v < 0 {
		return 0, validationErrorf(string(field), "effort cannot be negative")
	}
	return v, nil
}

// ParseDate accepts an empty string (cleared) or a DateLayout date.
func ParseDate(field Field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, raw); err != nil {
		return "", validationErrorf(string(field), "%q is not a YYYY-MM-DD date", raw)
	}
	return raw, nil
}

// FieldValue returns the current value of f in its canonical string form.
func (i *Initiative) FieldValue(f Field) (string, error) {
	switch f {
	case FieldTitle:
		return i.Title, nil
	case FieldOwnerID:
		return i.OwnerID, nil
	case FieldSecondaryOwner:
		return i.SecondaryOwner, nil
	case FieldQuarter:
		return i.Quarter, nil
	case FieldStatus:
		return string(i.Status), nil
	case FieldPriority:
		return string(i.Priority), nil
	case FieldWorkType:
		return string(i.WorkType), nil
	case FieldEstimatedEffort:
		return FormatEffort(i.EstimatedEffort), nil
	case FieldActualEffort:
		return FormatEffort(i.ActualEffort), nil
	case FieldETA:
		return i.ETA, nil
	case FieldCompletionRate:
		return strconv.Itoa(i.CompletionRate), nil
	case FieldAssetClass:
		return i.AssetClass, nil
	case FieldPillar:
		return i.Pillar, nil
	case FieldResponsibility:
		return i.Responsibility, nil
	case FieldTarget:
		return i.Target, nil
	case FieldOriginalEstimatedEffort:
		return FormatEffort(i.OriginalEstimatedEffort), nil
	case FieldOriginalETA:
		return i.OriginalETA, nil
	}
	return "", validationErrorf(string(f), "unknown initiative field")
}

// SetField parses raw and writes it to f. Nothing is written on error.
func (i *Initiative) SetField(f Field, raw string) error {
	switch f {
	case FieldTitle:
		if strings.TrimSpace(raw) == "" {
			return validationErrorf(string(f), "title is required")
		}
		i.Title = strings.TrimSpace(raw)
	case FieldOwnerID:
		i.OwnerID = strings.TrimSpace(raw)
	case FieldSecondaryOwner:
		i.SecondaryOwner = raw
	case FieldQuarter:
		i.Quarter = strings.TrimSpace(raw)
	case FieldStatus:
		s, err := ParseStatus(raw)
		if err != nil {
			return validationErrorf(string(f), "%v", err)
		}
		i.Status = s
	case FieldPriority:
		p, err := ParsePriority(raw)
		if err != nil {
			return validationErrorf(string(f), "%v", err)
		}
		i.Priority = p
	case FieldWorkType:
		wt, err := ParseWorkType(raw)
		if err != nil {
			return validationErrorf(string(f), "%v", err)
		}
		i.WorkType = wt
	case FieldEstimatedEffort:
		v, err := parseEffort(f, raw)
		if err != nil {
			return err
		}
		i.EstimatedEffort = v
	case FieldActualEffort:
		v, err := parseEffort(f, raw)
		if err != nil {
			return err
		}
		i.ActualEffort = v
	case FieldETA:
		d, err := ParseDate(f, raw)
		if err != nil {
			return err
		}
		i.ETA = d
	case FieldCompletionRate:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return validationErrorf(string(f), "%q is not an integer", raw)
		}
		if n < 0 || n > 100 {
			return validationErrorf(string(f), "must be between 0 and 100")
		}
		i.CompletionRate = n
	case FieldAssetClass:
		i.AssetClass = strings.TrimSpace(raw)
	case FieldPillar:
		i.Pillar = strings.TrimSpace(raw)
	case FieldResponsibility:
		i.Responsibility = strings.TrimSpace(raw)
	case FieldTarget:
		i.Target = strings.TrimSpace(raw)
	case FieldOriginalEstimatedEffort, FieldOriginalETA:
		return validationErrorf(string(f), "baseline fields are set once at creation")
	default:
		return validationErrorf(string(f), "unknown initiative field")
	}
	return nil
}

func (t *Task) FieldValue(f Field) (string, error) {
	switch f {
	case FieldTitle:
		return t.Title, nil
	case FieldOwner:
		return t.Owner, nil
	case FieldOwnerID:
		return t.OwnerID, nil
	case FieldStatus:
		return string(t.Status), nil
	case FieldPriority:
		return string(t.Priority), nil
	case FieldEstimatedEffort:
		return FormatEffort(t.EstimatedEffort), nil
	case FieldActualEffort:
		return FormatEffort(t.ActualEffort), nil
	case FieldETA:
		return t.ETA, nil
	}
	return "", validationErrorf(string(f), "unknown task field")
}

func (t *Task) SetField(f Field, raw string) error {
	switch f {
	case FieldTitle:
		t.Title = strings.TrimSpace(raw)
	case FieldOwner:
		t.Owner = raw
	case FieldOwnerID:
		t.OwnerID = strings.TrimSpace(raw)
	case FieldStatus:
		s, err := ParseStatus(raw)
		if err != nil {
			return validationErrorf(string(f), "%v", err)
		}
		t.Status = s
	case FieldPriority:
		p, err := ParsePriority(raw)
		if err != nil {
			return validationErrorf(string(f), "%v", err)
		}
		t.Priority = p
	case FieldEstimatedEffort:
		v, err := parseEffort(f, raw)
		if err != nil {
			return err
		}
		t.EstimatedEffort = v
	case FieldActualEffort:
		v, err := parseEffort(f, raw)
		if err != nil {
			return err
		}
		t.ActualEffort = v
	case FieldETA:
		d, err := ParseDate(f, raw)
		if err != nil {
			return err
		}
		t.ETA = d
	default:
		return validationErrorf(string(f), "unknown task field")
	}
	return nil
}
