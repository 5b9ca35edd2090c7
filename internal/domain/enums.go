package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin               Role = "admin"
	RoleTeamLead            Role = "team_lead"
	RoleDirector            Role = "director"
	RoleSeniorDirector      Role = "senior_director"
	RoleVP                  Role = "vp"
	RoleSVP                 Role = "svp"
	RolePortfolioOperations Role = "portfolio_operations"
)

// Roles lists every known role in display order.
var Roles = []Role{
	RoleAdmin,
	RoleTeamLead,
	RoleDirector,
	RoleSeniorDirector,
	RoleVP,
	RoleSVP,
	RolePortfolioOperations,
}

// ParseRole accepts the canonical role names plus the human labels used in
// spreadsheets ("Team Lead", "Portfolio Operations").
func ParseRole(s string) (Role, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, r := range Roles {
		if string(r) == norm {
			return r, true
		}
	}
	return "", false
}

// Status is the canonical six-state lifecycle shared by initiatives and tasks.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusAtRisk     Status = "at_risk"
	StatusDone       Status = "done"
	StatusObsolete   Status = "obsolete"
	StatusDeleted    Status = "deleted"
)

// ParseStatus normalizes status strings, folding the legacy four-state
// values ("planned", "delayed") into the canonical model.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "not_started", "notstarted", "planned":
		return StatusNotStarted, nil
	case "in_progress", "inprogress":
		return StatusInProgress, nil
	case "at_risk", "atrisk", "delayed":
		return StatusAtRisk, nil
	case "done", "completed":
		return StatusDone, nil
	case "obsolete":
		return StatusObsolete, nil
	case "deleted":
		return StatusDeleted, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// IsTerminal reports whether automatic rules must leave the status alone.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusDeleted || s == StatusObsolete
}

type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "P0":
		return PriorityP0, nil
	case "P1":
		return PriorityP1, nil
	case "P2":
		return PriorityP2, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

type WorkType string

const (
	WorkPlanned   WorkType = "Planned"
	WorkUnplanned WorkType = "Unplanned"
)

func ParseWorkType(s string) (WorkType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planned":
		return WorkPlanned, nil
	case "unplanned":
		return WorkUnplanned, nil
	}
	return "", fmt.Errorf("unknown work type %q", s)
}

type TaskTag string

const (
	TagUnplanned TaskTag = "Unplanned"
	TagPMItem    TaskTag = "PMItem"
	TagRiskItem  TaskTag = "RiskItem"
)

// ValidTaskTags is the canonical set of accepted task tags.
var ValidTaskTags = map[TaskTag]bool{
	TagUnplanned: true,
	TagPMItem:    true,
	TagRiskItem:  true,
}

type NotificationType string

const (
	NotifyDelay      NotificationType = "delay"
	NotifyNewComment NotificationType = "new_comment"
	NotifyMention    NotificationType = "mention"
	NotifyTradeOff   NotificationType = "trade_off"
)
