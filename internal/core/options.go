// Package core - Engagement Business Logic
// Protocol-agnostic comment, reaction, highlight, feedback, notification and
// metrics services over a shared repository.Store.
package core

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"engagehub/internal/events"
	"engagehub/internal/repository"
	"engagehub/pkg/logger"
	"engagehub/pkg/models"
)

// PostDirectory resolves post titles from the external content store
type PostDirectory interface {
	PostTitle(ctx context.Context, postID string) (string, error)
}

// StaticPostDirectory maps post IDs to titles, falling back to the ID
type StaticPostDirectory map[string]string

func (d StaticPostDirectory) PostTitle(_ context.Context, postID string) (string, error) {
	if title, ok := d[postID]; ok && title != "" {
		return title, nil
	}
	return postID, nil
}

// Option configures a service
type Option func(*settings)

// WithClock overrides time.Now, mainly for tests
func WithClock(clock func() time.Time) Option {
	return func(s *settings) { s.clock = clock }
}

// WithPublisher exports engagement events after commit
func WithPublisher(p events.Publisher) Option {
	return func(s *settings) { s.publisher = p }
}

// WithPostDirectory sets the source of post titles for notifications
func WithPostDirectory(d PostDirectory) Option {
	return func(s *settings) { s.posts = d }
}

// WithMaxCommentLength bounds comment content in characters
func WithMaxCommentLength(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxCommentLength = n
		}
	}
}

type settings struct {
	clock            func() time.Time
	publisher        events.Publisher
	posts            PostDirectory
	maxCommentLength int
}

func newSettings(opts []Option) settings {
	s := settings{
		clock:            time.Now,
		publisher:        events.NoopPublisher{},
		posts:            StaticPostDirectory{},
		maxCommentLength: models.DefaultMaxCommentLength,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) now() time.Time {
	return s.clock().UTC()
}

func (s settings) postTitle(ctx context.Context, postID string) string {
	title, err := s.posts.PostTitle(ctx, postID)
	if err != nil || title == "" {
		logger.WithFields(map[string]interface{}{"post_id": postID}).Debug("post title unavailable, using id")
		return postID
	}
	return title
}

// publish hands committed engagements to the publisher. Failures are logged
// and never surface to the caller: the transaction has already committed.
func (s settings) publish(ctx context.Context, engagements []models.UserEngagement) {
	if len(engagements) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, engagements...); err != nil {
		logger.WithFields(map[string]interface{}{
			"count": len(engagements),
			"error": err.Error(),
		}).Warn("failed to publish engagement events")
	}
}

func (s settings) validateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", models.NewValidationError("content", "content is required")
	}
	if utf8.RuneCountInString(trimmed) > s.maxCommentLength {
		return "", models.NewValidationError("content", "content exceeds maximum length")
	}
	return trimmed, nil
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return models.NewValidationError(field, field+" is required")
	}
	return nil
}

// appendEngagement writes one engagement log entry through tx
func appendEngagement(ctx context.Context, tx repository.Tx, e models.UserEngagement) (models.UserEngagement, error) {
	if e.ID == "" {
		e.ID = repository.NewID(repository.PrefixEngagement)
	}
	if err := tx.AppendEngagement(ctx, &e); err != nil {
		return e, err
	}
	return e, nil
}
