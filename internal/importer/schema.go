package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportFile is the top-level JSON structure for initiative import.
type ImportFile struct {
	Defaults    *DefaultsImport    `json:"defaults,omitempty"`
	Initiatives []InitiativeImport `json:"initiatives"`
}

// DefaultsImport cascades to every initiative that leaves the field empty.
type DefaultsImport struct {
	Quarter    string `json:"quarter,omitempty"`
	AssetClass string `json:"asset_class,omitempty"`
	EffortUnit string `json:"effort_unit,omitempty"`
}

// InitiativeImport is one row of the import file. Effort is expressed in
// EffortUnit and converted to weeks.
type InitiativeImport struct {
	Title          string   `json:"title"`
	OwnerID        string   `json:"owner_id"`
	SecondaryOwner string   `json:"secondary_owner,omitempty"`
	AssetClass     string   `json:"asset_class,omitempty"`
	Pillar         string   `json:"pillar,omitempty"`
	Responsibility string   `json:"responsibility,omitempty"`
	Target         string   `json:"target,omitempty"`
	Quarter        string   `json:"quarter,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	WorkType       string   `json:"work_type,omitempty"`
	UnplannedTags  []string `json:"unplanned_tags,omitempty"`
	Effort         *float64 `json:"effort,omitempty"`
	EffortUnit     string   `json:"effort_unit,omitempty"`
	ETA            string   `json:"eta,omitempty"`
	CompletionRate *int     `json:"completion_rate,omitempty"`
}

// LoadImportFile reads and parses an initiative import JSON file.
func LoadImportFile(path string) (*ImportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportFile(data)
}

func ParseImportFile(data []byte) (*ImportFile, error) {
	var f ImportFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &f, nil
}
