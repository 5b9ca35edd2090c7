package domain

import "time"

type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"authorId"`
	Timestamp time.Time `json:"timestamp"`

	// MentionedUserIDs is resolved once when the comment is created.
	MentionedUserIDs []string `json:"mentionedUserIds,omitempty"`
}

func (c Comment) Clone() Comment {
	if c.MentionedUserIDs != nil {
		c.MentionedUserIDs = append([]string(nil), c.MentionedUserIDs...)
	}
	return c
}

type Notification struct {
	ID              string            `json:"id"`
	Type            NotificationType  `json:"type"`
	Title           string            `json:"title"`
	Message         string            `json:"message"`
	UserID          string            `json:"userId"`
	InitiativeID    string            `json:"initiativeId"`
	InitiativeTitle string            `json:"initiativeTitle"`
	Timestamp       time.Time         `json:"timestamp"`
	Read            bool              `json:"read"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
