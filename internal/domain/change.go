package domain

import "time"

// ChangeRecord is an immutable audit entry for one detected field change.
type ChangeRecord struct {
	ID              string `json:"id"`
	InitiativeID    string `json:"initiativeId"`
	InitiativeTitle string `json:"initiativeTitle"`
	TaskID          string `json:"taskId,omitempty"`
	Field           Field  `json:"field"`
	OldValue        string `json:"oldValue"`
	NewValue        string `json:"newValue"`
	ChangedBy       string `json:"changedBy"`

	// TradeOffSourceID names the initiative whose edit forced this change.
	TradeOffSourceID string `json:"tradeOffSourceId,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
