package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/effort"
)

// ValidateInitiative checks one row after defaults have been applied.
// Returns every problem found, not just the first.
func ValidateInitiative(in InitiativeImport) []error {
	var errs []error

	if in.Title == "" {
		errs = append(errs, fmt.Errorf("title is required"))
	}
	if in.OwnerID == "" {
		errs = append(errs, fmt.Errorf("owner_id is required"))
	}
	if in.Priority != "" {
		if _, err := domain.ParsePriority(in.Priority); err != nil {
			errs = append(errs, fmt.Errorf("priority: %w", err))
		}
	}
	if in.WorkType != "" {
		if _, err := domain.ParseWorkType(in.WorkType); err != nil {
			errs = append(errs, fmt.Errorf("work_type: %w", err))
		}
	}
	if in.Effort != nil && *in.Effort < 0 {
		errs = append(errs, fmt.Errorf("effort must be >= 0, got %g", *in.Effort))
	}
	if in.EffortUnit != "" {
		if _, err := effort.ParseUnit(in.EffortUnit); err != nil {
			errs = append(errs, fmt.Errorf("effort_unit: %w", err))
		}
	}
	if in.ETA != "" {
		if _, err := time.Parse(domain.DateLayout, in.ETA); err != nil {
			errs = append(errs, fmt.Errorf("eta: invalid date format %q (expected YYYY-MM-DD)", in.ETA))
		}
	}
	if in.CompletionRate != nil && (*in.CompletionRate < 0 || *in.CompletionRate > 100) {
		errs = append(errs, fmt.Errorf("completion_rate must be between 0 and 100, got %d", *in.CompletionRate))
	}

	return errs
}
