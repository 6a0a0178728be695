// Package repository - Engagement Store
// Storage contract shared by every engagement service, with an in-memory
// backend for tests and development and a PostgreSQL backend for production.
package repository

import (
	"context"

	"engagehub/pkg/models"
)

// Store owns the atomicity of multi-record mutations. Every service
// operation runs inside exactly one WithTransaction or View call.
type Store interface {
	// WithTransaction runs fn in a read-write transaction. If fn returns an
	// error or panics, every change made through tx is discarded.
	WithTransaction(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn in a read-only transaction
	View(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close()
}

// CommentFilter selects comments of one post
type CommentFilter struct {
	PostID string

	// ParentID restricts to direct children of a comment. When nil, only
	// top-level comments match unless AnyParent is set.
	ParentID  *string
	AnyParent bool

	// Statuses restricts by moderation status; empty matches all
	Statuses []models.ModerationStatus
}

func (f CommentFilter) matches(c *models.Comment) bool {
	if c.PostID != f.PostID {
		return false
	}
	if !f.AnyParent {
		switch {
		case f.ParentID == nil && c.ParentID != nil:
			return false
		case f.ParentID != nil && (c.ParentID == nil || *c.ParentID != *f.ParentID):
			return false
		}
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if c.ModerationStatus == s {
			return true
		}
	}
	return false
}

// Tx is the set of record operations available inside a transaction.
// Getters return copies; callers write changes back explicitly.
type Tx interface {
	// LockPost serializes mutations touching the same post
	LockPost(ctx context.Context, postID string) error

	InsertComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComments(ctx context.Context, ids []string) error
	// ListComments returns matches ordered by creation time, oldest first
	ListComments(ctx context.Context, filter CommentFilter) ([]*models.Comment, error)
	ChildCommentIDs(ctx context.Context, parentID string) ([]string, error)

	GetReaction(ctx context.Context, target models.ReactionTarget, userID string) (*models.Reaction, error)
	InsertReaction(ctx context.Context, reaction *models.Reaction) error
	UpdateReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, id string) error
	ListReactions(ctx context.Context, targets ...models.ReactionTarget) ([]*models.Reaction, error)
	DeleteCommentReactions(ctx context.Context, commentIDs []string) (int, error)

	InsertHighlight(ctx context.Context, highlight *models.Highlight) error
	GetHighlight(ctx context.Context, id string) (*models.Highlight, error)
	UpdateHighlight(ctx context.Context, highlight *models.Highlight) error
	ListHighlights(ctx context.Context, postID string) ([]*models.Highlight, error)
	UnlinkHighlights(ctx context.Context, commentIDs []string) (int, error)

	GetFeedback(ctx context.Context, postID, userID string) (*models.ContentFeedback, error)
	InsertFeedback(ctx context.Context, feedback *models.ContentFeedback) error
	UpdateFeedback(ctx context.Context, feedback *models.ContentFeedback) error
	ListFeedback(ctx context.Context, postID string) ([]*models.ContentFeedback, error)

	InsertNotification(ctx context.Context, notification *models.CommentNotification) error
	GetNotification(ctx context.Context, id string) (*models.CommentNotification, error)
	UpdateNotification(ctx context.Context, notification *models.CommentNotification) error
	// ListNotifications returns a recipient's notifications, newest first
	ListNotifications(ctx context.Context, userID string) ([]*models.CommentNotification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
	DeleteCommentNotifications(ctx context.Context, commentIDs []string) (int, error)

	GetMetrics(ctx context.Context, postID string) (*models.EngagementMetrics, error)
	SaveMetrics(ctx context.Context, metrics *models.EngagementMetrics) error

	AppendEngagement(ctx context.Context, engagement *models.UserEngagement) error
	HasEngagement(ctx context.Context, userID, postID string, kind models.EngagementType) (bool, error)
}
