// Package notify turns comments, delays and trade-offs into notifications.
// It builds notification values only; delivery goes through a Dispatcher.
package notify

import (
	"regexp"
	"strings"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/google/uuid"
)

var mentionRe = regexp.MustCompile(`@([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)

// ParseMentions returns the ids of users whose email appears as an @email
// token in text, in order of first appearance and without duplicates.
// Tokens that match no known user are ignored.
func ParseMentions(text string, users []*domain.User) []string {
	byEmail := make(map[string]string, len(users))
	for _, u := range users {
		if u.Email != "" {
			byEmail[strings.ToLower(u.Email)] = u.ID
		}
	}
	var ids []string
	seen := map[string]bool{}
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		email := strings.ToLower(strings.TrimRight(m[1], "."))
		id, ok := byEmail[email]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// NewComment builds a comment with its mentions resolved against users now.
// Later changes to the user list do not affect MentionedUserIDs.
func NewComment(text, authorID string, users []*domain.User, now time.Time) domain.Comment {
	return domain.Comment{
		ID:               uuid.New().String(),
		Text:             text,
		AuthorID:         authorID,
		Timestamp:        now.UTC(),
		MentionedUserIDs: ParseMentions(text, users),
	}
}
