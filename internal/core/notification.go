package core

import (
	"context"
	"fmt"
	"time"

	"engagehub/internal/repository"
	"engagehub/pkg/models"
)

// NotificationService stores per-recipient comment notifications
type NotificationService interface {
	Notify(ctx context.Context, recipientID string, event models.NotificationEvent) (*models.CommentNotification, error)
	// List returns the recipient's notifications, newest first
	List(ctx context.Context, userID string) ([]models.CommentNotification, error)
	// MarkRead reports whether the notification flipped from unread
	MarkRead(ctx context.Context, notificationID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type notificationService struct {
	store repository.Store
	settings
}

// NewNotificationService creates a new notification service
func NewNotificationService(store repository.Store, opts ...Option) NotificationService {
	return &notificationService{store: store, settings: newSettings(opts)}
}

func (s *notificationService) Notify(ctx context.Context, recipientID string, event models.NotificationEvent) (*models.CommentNotification, error) {
	if _, err := newNotification(s.now(), recipientID, event); err != nil {
		return nil, err
	}

	var notification *models.CommentNotification
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		var err error
		notification, err = dispatch(ctx, tx, s.now(), recipientID, event)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to notify: %w", err)
	}
	return notification, nil
}

func (s *notificationService) List(ctx context.Context, userID string) ([]models.CommentNotification, error) {
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}

	var out []models.CommentNotification
	err := s.store.View(ctx, func(tx repository.Tx) error {
		notifications, err := tx.ListNotifications(ctx, userID)
		if err != nil {
			return err
		}
		out = make([]models.CommentNotification, 0, len(notifications))
		for _, n := range notifications {
			out = append(out, *n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID string) (bool, error) {
	changed := false
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		n, err := tx.GetNotification(ctx, notificationID)
		if err != nil {
			return err
		}
		if n.IsRead {
			return nil
		}
		n.IsRead = true
		changed = true
		return tx.UpdateNotification(ctx, n)
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return changed, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if err := requireField("user_id", userID); err != nil {
		return 0, err
	}

	var updated int
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		var err error
		updated, err = tx.MarkAllNotificationsRead(ctx, userID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return updated, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	notifications, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	return unread, nil
}

// dispatch builds and stores one notification inside tx. The comment
// service emits replies and moderation decisions through it.
func dispatch(ctx context.Context, tx repository.Tx, now time.Time, recipientID string, event models.NotificationEvent) (*models.CommentNotification, error) {
	n, err := newNotification(now, recipientID, event)
	if err != nil {
		return nil, err
	}
	if err := tx.InsertNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func newNotification(now time.Time, recipientID string, event models.NotificationEvent) (*models.CommentNotification, error) {
	required := []struct{ field, value string }{
		{"user_id", recipientID},
		{"comment_id", event.CommentID},
		{"post_id", event.PostID},
		{"actor_id", event.Actor.ID},
		{"message", event.Message},
	}
	for _, r := range required {
		if err := requireField(r.field, r.value); err != nil {
			return nil, err
		}
	}
	if !event.Type.Valid() {
		return nil, models.NewValidationError("type", fmt.Sprintf("unknown notification type %q", event.Type))
	}

	n := &models.CommentNotification{
		ID:        repository.NewID(repository.PrefixNotification),
		UserID:    recipientID,
		CommentID: event.CommentID,
		PostID:    event.PostID,
		PostTitle: event.PostTitle,
		ActorID:   event.Actor.ID,
		ActorName: event.Actor.DisplayName,
		Type:      event.Type,
		Message:   event.Message,
		CreatedAt: now,
	}
	if event.ParentCommentID != nil {
		parentID := *event.ParentCommentID
		n.ParentCommentID = &parentID
	}
	return n, nil
}
