package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/google/uuid"
)

// Dispatcher delivers notifications. Failures are reported, never rolled
// back into state.
type Dispatcher interface {
	Dispatch(ctx context.Context, n []domain.Notification) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, n []domain.Notification) error

func (f DispatcherFunc) Dispatch(ctx context.Context, n []domain.Notification) error {
	return f(ctx, n)
}

// Discard drops every notification.
var Discard Dispatcher = DispatcherFunc(func(context.Context, []domain.Notification) error { return nil })

// Multi fans out to every dispatcher and joins their errors. A failing
// dispatcher does not stop the others.
func Multi(ds ...Dispatcher) Dispatcher {
	return DispatcherFunc(func(ctx context.Context, n []domain.Notification) error {
		var errs []error
		for _, d := range ds {
			if d == nil {
				continue
			}
			if err := d.Dispatch(ctx, n); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

func newNotification(typ domain.NotificationType, userID string, i *domain.Initiative, title, msg string, now time.Time) domain.Notification {
	return domain.Notification{
		ID:              uuid.New().String(),
		Type:            typ,
		Title:           title,
		Message:         msg,
		UserID:          userID,
		InitiativeID:    i.ID,
		InitiativeTitle: i.Title,
		Timestamp:       now.UTC(),
	}
}

func userName(users []*domain.User, id string) string {
	for _, u := range users {
		if u.ID == id {
			return domain.CoalesceStr(u.Name, u.Email, u.ID)
		}
	}
	return id
}

// OnCommentAdded notifies the initiative owner of a comment by someone
// else, and every mentioned user. The owner is not mentioned twice.
func OnCommentAdded(i *domain.Initiative, c domain.Comment, users []*domain.User) []domain.Notification {
	author := userName(users, c.AuthorID)
	var out []domain.Notification
	ownerNotified := false
	if i.OwnerID != "" && c.AuthorID != i.OwnerID {
		n := newNotification(domain.NotifyNewComment, i.OwnerID, i,
			"New comment",
			fmt.Sprintf("%s commented on %q", author, i.Title), c.Timestamp)
		n.Metadata = map[string]string{"commentId": c.ID, "authorId": c.AuthorID}
		out = append(out, n)
		ownerNotified = true
	}
	for _, id := range c.MentionedUserIDs {
		if ownerNotified && id == i.OwnerID {
			continue
		}
		n := newNotification(domain.NotifyMention, id, i,
			"You were mentioned",
			fmt.Sprintf("%s mentioned you on %q", author, i.Title), c.Timestamp)
		n.Metadata = map[string]string{"commentId": c.ID, "authorId": c.AuthorID}
		out = append(out, n)
	}
	return out
}

// OnDelay notifies the owner that an initiative has slipped past its ETA.
func OnDelay(i *domain.Initiative, now time.Time) []domain.Notification {
	if i.OwnerID == "" {
		return nil
	}
	n := newNotification(domain.NotifyDelay, i.OwnerID, i,
		"Initiative at risk",
		fmt.Sprintf("%q passed its ETA of %s", i.Title, i.ETA), now)
	n.Metadata = map[string]string{"eta": i.ETA, "status": string(i.Status)}
	return []domain.Notification{n}
}

// OnTradeOff tells the target's owner that an edit on source forced a
// change to their initiative. Nothing is sent when the actor owns the
// target.
func OnTradeOff(source, target *domain.Initiative, rec domain.ChangeRecord, actor domain.Actor) []domain.Notification {
	if target.OwnerID == "" || actor.Is(target.OwnerID) {
		return nil
	}
	n := newNotification(domain.NotifyTradeOff, target.OwnerID, target,
		"Trade-off applied",
		fmt.Sprintf("%s changed %s on %q from %q to %q to accommodate %q",
			actor.DisplayName(), rec.Field, target.Title, rec.OldValue, rec.NewValue, source.Title),
		rec.Timestamp)
	n.Metadata = map[string]string{
		"sourceInitiativeId": source.ID,
		"field":              string(rec.Field),
		"changeId":           rec.ID,
	}
	return []domain.Notification{n}
}
