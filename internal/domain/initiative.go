package domain

import "time"

// DateLayout is the layout of every ETA and LastUpdated value.
const DateLayout = "2006-01-02"

type Initiative struct {
	ID string `json:"id"`

	// Hierarchy
	AssetClass     string `json:"assetClass"`
	Pillar         string `json:"pillar"`
	Responsibility string `json:"responsibility"`
	Target         string `json:"target"`

	Title          string   `json:"title"`
	OwnerID        string   `json:"ownerId"`
	SecondaryOwner string   `json:"secondaryOwner,omitempty"`
	Quarter        string   `json:"quarter"`
	Status         Status   `json:"status"`
	Priority       Priority `json:"priority"`
	WorkType       WorkType `json:"workType"`
	UnplannedTags  []string `json:"unplannedTags,omitempty"`

	// Effort in weeks
	EstimatedEffort         float64 `json:"estimatedEffort"`
	ActualEffort            float64 `json:"actualEffort"`
	OriginalEstimatedEffort float64 `json:"originalEstimatedEffort"`

	ETA            string `json:"eta"`
	OriginalETA    string `json:"originalEta"`
	CompletionRate int    `json:"completionRate"`
	LastUpdated    string `json:"lastUpdated"`
	IsAtRisk       bool   `json:"isAtRisk"`

	Tasks    []Task         `json:"tasks,omitempty"`
	Comments []Comment      `json:"comments,omitempty"`
	History  []ChangeRecord `json:"history,omitempty"`

	// RestoreStatus remembers the status held before a soft delete.
	RestoreStatus Status     `json:"restoreStatus,omitempty"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	Version       int64      `json:"version"`
}

type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title,omitempty"`
	EstimatedEffort float64    `json:"estimatedEffort"`
	ActualEffort    float64    `json:"actualEffort"`
	ETA             string     `json:"eta"`
	Owner           string     `json:"owner,omitempty"`
	OwnerID         string     `json:"ownerId,omitempty"`
	Status          Status     `json:"status"`
	Priority        Priority   `json:"priority,omitempty"`
	Tags            []TaskTag  `json:"tags,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	CreatedBy       string     `json:"createdBy"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

func (t *Task) IsDeleted() bool {
	return t.Status == StatusDeleted
}

// PermissionOwner returns the id that owns the task for authorization:
// the task's own owner id, falling back to the parent initiative owner.
func (t *Task) PermissionOwner(parent *Initiative) string {
	if t.OwnerID != "" {
		return t.OwnerID
	}
	if parent == nil {
		return ""
	}
	return parent.OwnerID
}

func (i *Initiative) IsDeleted() bool {
	return i.Status == StatusDeleted
}

// TaskIndex returns the position of the task with the given id, or -1.
func (i *Initiative) TaskIndex(taskID string) int {
	for idx := range i.Tasks {
		if i.Tasks[idx].ID == taskID {
			return idx
		}
	}
	return -1
}

// RollUpActualEffort sums ActualEffort over non-deleted tasks.
func (i *Initiative) RollUpActualEffort() float64 {
	var total float64
	for idx := range i.Tasks {
		if i.Tasks[idx].IsDeleted() {
			continue
		}
		total += i.Tasks[idx].ActualEffort
	}
	return total
}

// ApplyDerivedStatus runs the automatic transitions in fixed order:
// first NotStarted -> InProgress once effort is logged, then overdue
// items move to AtRisk. Terminal and already at-risk items are left alone.
// today is a DateLayout string. Returns true when the status changed.
func (i *Initiative) ApplyDerivedStatus(today string) bool {
	before := i.Status
	if i.ActualEffort > 0 && i.Status == StatusNotStarted {
		i.Status = StatusInProgress
	}
	if i.ETA != "" && i.ETA < today && !i.Status.IsTerminal() && i.Status != StatusAtRisk {
		i.Status = StatusAtRisk
		i.IsAtRisk = true
	}
	return i.Status != before
}

// Clone returns a deep copy so store readers never share slices with writers.
func (i *Initiative) Clone() *Initiative {
	if i == nil {
		return nil
	}
	c := *i
	if i.UnplannedTags != nil {
		c.UnplannedTags = append([]string(nil), i.UnplannedTags...)
	}
	if i.Tasks != nil {
		c.Tasks = make([]Task, len(i.Tasks))
		for idx := range i.Tasks {
			c.Tasks[idx] = i.Tasks[idx].Clone()
		}
	}
	if i.Comments != nil {
		c.Comments = make([]Comment, len(i.Comments))
		for idx := range i.Comments {
			c.Comments[idx] = i.Comments[idx].Clone()
		}
	}
	if i.History != nil {
		c.History = append([]ChangeRecord(nil), i.History...)
	}
	c.DeletedAt = cloneTime(i.DeletedAt)
	return &c
}

func (t Task) Clone() Task {
	if t.Tags != nil {
		t.Tags = append([]TaskTag(nil), t.Tags...)
	}
	t.DeletedAt = cloneTime(t.DeletedAt)
	return t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
