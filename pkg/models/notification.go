package models

import (
	"time"
)

// NotificationType is the event that produced a notification
type NotificationType string

const (
	NotificationReply      NotificationType = "reply"
	NotificationMention    NotificationType = "mention"
	NotificationModeration NotificationType = "moderation"
)

// Valid reports whether t is a known notification type
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationReply, NotificationMention, NotificationModeration:
		return true
	}
	return false
}

// CommentNotification is a per-recipient record about one comment event.
// Only IsRead changes after creation.
type CommentNotification struct {
	ID              string           `json:"id" db:"id"`
	UserID          string           `json:"user_id" db:"user_id"`
	CommentID       string           `json:"comment_id" db:"comment_id"`
	ParentCommentID *string          `json:"parent_comment_id,omitempty" db:"parent_comment_id"`
	PostID          string           `json:"post_id" db:"post_id"`
	PostTitle       string           `json:"post_title" db:"post_title"`
	ActorID         string           `json:"actor_id" db:"actor_id"`
	ActorName       string           `json:"actor_name" db:"actor_name"`
	Type            NotificationType `json:"type" db:"type"`
	Message         string           `json:"message" db:"message"`
	IsRead          bool             `json:"is_read" db:"is_read"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// Clone returns a deep copy
func (n *CommentNotification) Clone() *CommentNotification {
	if n == nil {
		return nil
	}
	out := *n
	out.ParentCommentID = cloneString(n.ParentCommentID)
	return &out
}

// References reports whether the notification points at any of the ids
func (n *CommentNotification) References(ids map[string]struct{}) bool {
	if _, ok := ids[n.CommentID]; ok {
		return true
	}
	if n.ParentCommentID != nil {
		if _, ok := ids[*n.ParentCommentID]; ok {
			return true
		}
	}
	return false
}

// NotificationEvent carries everything needed to build a notification
type NotificationEvent struct {
	Type            NotificationType
	CommentID       string
	ParentCommentID *string
	PostID          string
	PostTitle       string
	Actor           Actor
	Message         string
}

// UnreadCountResponse is returned by the unread counter endpoint
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// MarkAllReadResponse reports how many notifications flipped to read
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
