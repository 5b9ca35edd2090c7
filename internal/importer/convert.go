package importer

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/portfolio/internal/effort"
	"github.com/alexanderramin/portfolio/internal/service"
)

// Convert applies defaults, validates each initiative and converts effort to
// weeks. Invalid rows are returned with IsValid false so the mutation
// service can count them; the file as a whole never fails.
func Convert(f *ImportFile, conv effort.Converter) []service.ImportRow {
	rows := make([]service.ImportRow, 0, len(f.Initiatives))
	for idx, in := range f.Initiatives {
		in = withDefaults(in, f.Defaults)
		if errs := ValidateInitiative(in); len(errs) > 0 {
			rows = append(rows, service.ImportRow{
				Error: fmt.Sprintf("initiatives[%d]: %v", idx, errors.Join(errs...)),
			})
			continue
		}

		weeks, err := toWeeks(in, conv)
		if err != nil {
			rows = append(rows, service.ImportRow{Error: fmt.Sprintf("initiatives[%d]: %v", idx, err)})
			continue
		}

		req := service.CreateInitiativeRequest{
			Title:           in.Title,
			OwnerID:         in.OwnerID,
			SecondaryOwner:  in.SecondaryOwner,
			AssetClass:      in.AssetClass,
			Pillar:          in.Pillar,
			Responsibility:  in.Responsibility,
			Target:          in.Target,
			Quarter:         in.Quarter,
			Priority:        in.Priority,
			WorkType:        in.WorkType,
			UnplannedTags:   in.UnplannedTags,
			EstimatedEffort: weeks,
			ETA:             in.ETA,
		}
		if in.CompletionRate != nil {
			req.CompletionRate = *in.CompletionRate
		}
		rows = append(rows, service.ImportRow{IsValid: true, Initiative: req})
	}
	return rows
}

func withDefaults(in InitiativeImport, d *DefaultsImport) InitiativeImport {
	if d == nil {
		return in
	}
	if in.Quarter == "" {
		in.Quarter = d.Quarter
	}
	if in.AssetClass == "" {
		in.AssetClass = d.AssetClass
	}
	if in.EffortUnit == "" {
		in.EffortUnit = d.EffortUnit
	}
	return in
}

func toWeeks(in InitiativeImport, conv effort.Converter) (float64, error) {
	if in.Effort == nil {
		return 0, nil
	}
	if in.EffortUnit == "" {
		return *in.Effort, nil
	}
	unit, err := effort.ParseUnit(in.EffortUnit)
	if err != nil {
		return 0, err
	}
	return conv.Convert(*in.Effort, unit, effort.Weeks)
}
