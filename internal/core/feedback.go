package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"engagehub/internal/repository"
	"engagehub/pkg/models"
)

// SubmitFeedbackInput is a rating with optional free text
type SubmitFeedbackInput struct {
	PostID   string
	User     models.Actor
	Rating   int
	Feedback *string
}

// FeedbackService keeps one rating per user per post
type FeedbackService interface {
	// Submit upserts by (post, user)
	Submit(ctx context.Context, in SubmitFeedbackInput) (*models.ContentFeedback, error)
	Get(ctx context.Context, postID, userID string) (*models.ContentFeedback, error)
}

type feedbackService struct {
	store repository.Store
	settings
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(store repository.Store, opts ...Option) FeedbackService {
	return &feedbackService{store: store, settings: newSettings(opts)}
}

func (s *feedbackService) Submit(ctx context.Context, in SubmitFeedbackInput) (*models.ContentFeedback, error) {
	if err := requireField("post_id", in.PostID); err != nil {
		return nil, err
	}
	if err := requireField("user_id", in.User.ID); err != nil {
		return nil, err
	}
	if in.Rating < models.MinRating || in.Rating > models.MaxRating {
		return nil, models.NewValidationError("rating", fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating))
	}

	var text *string
	if in.Feedback != nil {
		if t := strings.TrimSpace(*in.Feedback); t != "" {
			text = &t
		}
	}

	var (
		feedback *models.ContentFeedback
		logged   []models.UserEngagement
	)
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.LockPost(ctx, in.PostID); err != nil {
			return err
		}

		now := s.now()
		existing, err := tx.GetFeedback(ctx, in.PostID, in.User.ID)
		switch {
		case err == nil:
			existing.Rating = in.Rating
			existing.Feedback = text
			existing.UserName = in.User.DisplayName
			existing.UpdatedAt = &now
			if err := tx.UpdateFeedback(ctx, existing); err != nil {
				return err
			}
			feedback = existing
		case errors.Is(err, models.ErrNotFound):
			feedback = &models.ContentFeedback{
				ID:        repository.NewID(repository.PrefixFeedback),
				PostID:    in.PostID,
				UserID:    in.User.ID,
				UserName:  in.User.DisplayName,
				Rating:    in.Rating,
				Feedback:  text,
				CreatedAt: now,
			}
			if err := tx.InsertFeedback(ctx, feedback); err != nil {
				return err
			}
		default:
			return err
		}

		e, err := appendEngagement(ctx, tx, models.UserEngagement{
			UserID:    in.User.ID,
			PostID:    in.PostID,
			Type:      models.EngagementRating,
			Timestamp: now,
			Details:   map[string]string{"rating": strconv.Itoa(in.Rating)},
		})
		if err != nil {
			return err
		}
		logged = append(logged, e)

		_, err = refreshMetrics(ctx, tx, in.PostID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit feedback: %w", err)
	}

	s.publish(ctx, logged)
	return feedback, nil
}

func (s *feedbackService) Get(ctx context.Context, postID, userID string) (*models.ContentFeedback, error) {
	var feedback *models.ContentFeedback
	err := s.store.View(ctx, func(tx repository.Tx) error {
		var err error
		feedback, err = tx.GetFeedback(ctx, postID, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return feedback, nil
}
