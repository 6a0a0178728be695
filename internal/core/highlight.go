package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"engagehub/internal/repository"
	"engagehub/pkg/models"
)

// CreateHighlightInput describes a quoted span of post text
type CreateHighlightInput struct {
	PostID      string
	User        models.Actor
	Text        string
	StartOffset int
	EndOffset   int
}

// HighlightService records highlights. A user may hold many per post.
type HighlightService interface {
	Create(ctx context.Context, in CreateHighlightInput) (*models.Highlight, error)
	List(ctx context.Context, postID string) ([]models.Highlight, error)
}

type highlightService struct {
	store repository.Store
	settings
}

// NewHighlightService creates a new highlight service
func NewHighlightService(store repository.Store, opts ...Option) HighlightService {
	return &highlightService{store: store, settings: newSettings(opts)}
}

func (s *highlightService) Create(ctx context.Context, in CreateHighlightInput) (*models.Highlight, error) {
	if err := requireField("post_id", in.PostID); err != nil {
		return nil, err
	}
	if err := requireField("user_id", in.User.ID); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("text", "text is required")
	}
	if in.StartOffset < 0 {
		return nil, models.NewValidationError("start_offset", "start offset must not be negative")
	}
	if in.StartOffset >= in.EndOffset {
		return nil, models.NewValidationError("end_offset", "end offset must be greater than start offset")
	}

	highlight := &models.Highlight{
		ID:          repository.NewID(repository.PrefixHighlight),
		PostID:      in.PostID,
		UserID:      in.User.ID,
		UserName:    in.User.DisplayName,
		Text:        text,
		StartOffset: in.StartOffset,
		EndOffset:   in.EndOffset,
		CreatedAt:   s.now(),
	}

	var logged []models.UserEngagement
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.LockPost(ctx, in.PostID); err != nil {
			return err
		}
		if err := tx.InsertHighlight(ctx, highlight); err != nil {
			return err
		}

		e, err := appendEngagement(ctx, tx, models.UserEngagement{
			UserID:    in.User.ID,
			PostID:    in.PostID,
			Type:      models.EngagementHighlight,
			Timestamp: highlight.CreatedAt,
			Details: map[string]string{
				"highlight_id": highlight.ID,
				"length":       strconv.Itoa(in.EndOffset - in.StartOffset),
			},
		})
		if err != nil {
			return err
		}
		logged = append(logged, e)

		_, err = refreshMetrics(ctx, tx, in.PostID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight: %w", err)
	}

	s.publish(ctx, logged)
	return highlight, nil
}

func (s *highlightService) List(ctx context.Context, postID string) ([]models.Highlight, error) {
	if err := requireField("post_id", postID); err != nil {
		return nil, err
	}

	var out []models.Highlight
	err := s.store.View(ctx, func(tx repository.Tx) error {
		highlights, err := tx.ListHighlights(ctx, postID)
		if err != nil {
			return err
		}
		out = make([]models.Highlight, 0, len(highlights))
		for _, h := range highlights {
			out = append(out, *h)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	return out, nil
}
