package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"engagehub/internal/repository"
	"engagehub/pkg/models"
)

// MetricsService maintains the derived per-post engagement summary
type MetricsService interface {
	// Refresh recomputes the derived counters from current data
	Refresh(ctx context.Context, postID string) (*models.EngagementMetrics, error)
	RecordView(ctx context.Context, postID, userID string, duration *time.Duration) (*models.EngagementMetrics, error)
	RecordShare(ctx context.Context, postID, userID, channel string) (*models.EngagementMetrics, error)
	// Get returns the cached row, creating a zero row on first access
	Get(ctx context.Context, postID string) (*models.EngagementMetrics, error)
}

type metricsService struct {
	store repository.Store
	settings
}

// NewMetricsService creates a new metrics service
func NewMetricsService(store repository.Store, opts ...Option) MetricsService {
	return &metricsService{store: store, settings: newSettings(opts)}
}

func (s *metricsService) Refresh(ctx context.Context, postID string) (*models.EngagementMetrics, error) {
	if err := requireField("post_id", postID); err != nil {
		return nil, err
	}

	var metrics *models.EngagementMetrics
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.LockPost(ctx, postID); err != nil {
			return err
		}
		var err error
		metrics, err = refreshMetrics(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh metrics: %w", err)
	}
	return metrics, nil
}

func (s *metricsService) RecordView(ctx context.Context, postID, userID string, duration *time.Duration) (*models.EngagementMetrics, error) {
	if err := requireField("post_id", postID); err != nil {
		return nil, err
	}
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}
	if duration != nil && *duration < 0 {
		return nil, models.NewValidationError("duration", "duration must not be negative")
	}

	var (
		metrics *models.EngagementMetrics
		logged  []models.UserEngagement
	)
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.LockPost(ctx, postID); err != nil {
			return err
		}

		seen, err := tx.HasEngagement(ctx, userID, postID, models.EngagementView)
		if err != nil {
			return err
		}

		metrics, err = loadMetrics(ctx, tx, postID)
		if err != nil {
			return err
		}
		metrics.ViewCount++
		if !seen {
			metrics.UniqueViewCount++
		}
		if err := tx.SaveMetrics(ctx, metrics); err != nil {
			return err
		}

		e, err := appendEngagement(ctx, tx, models.UserEngagement{
			UserID:    userID,
			PostID:    postID,
			Type:      models.EngagementView,
			Timestamp: s.now(),
			Duration:  duration,
		})
		if err != nil {
			return err
		}
		logged = append(logged, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record view: %w", err)
	}

	s.publish(ctx, logged)
	return metrics, nil
}

func (s *metricsService) RecordShare(ctx context.Context, postID, userID, channel string) (*models.EngagementMetrics, error) {
	if err := requireField("post_id", postID); err != nil {
		return nil, err
	}
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}

	var (
		metrics *models.EngagementMetrics
		logged  []models.UserEngagement
	)
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.LockPost(ctx, postID); err != nil {
			return err
		}

		var err error
		metrics, err = loadMetrics(ctx, tx, postID)
		if err != nil {
			return err
		}
		metrics.ShareCount++
		if err := tx.SaveMetrics(ctx, metrics); err != nil {
			return err
		}

		share := models.UserEngagement{
			UserID:    userID,
			PostID:    postID,
			Type:      models.EngagementShare,
			Timestamp: s.now(),
		}
		if channel != "" {
			share.Details = map[string]string{"channel": channel}
		}
		e, err := appendEngagement(ctx, tx, share)
		if err != nil {
			return err
		}
		logged = append(logged, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record share: %w", err)
	}

	s.publish(ctx, logged)
	return metrics, nil
}

func (s *metricsService) Get(ctx context.Context, postID string) (*models.EngagementMetrics, error) {
	if err := requireField("post_id", postID); err != nil {
		return nil, err
	}

	var metrics *models.EngagementMetrics
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		existing, err := tx.GetMetrics(ctx, postID)
		if err == nil {
			metrics = existing
			return nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		if err := tx.LockPost(ctx, postID); err != nil {
			return err
		}
		metrics, err = loadMetrics(ctx, tx, postID)
		if err != nil {
			return err
		}
		return tx.SaveMetrics(ctx, metrics)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	return metrics, nil
}

// loadMetrics returns the cached row or a zero row when none exists
func loadMetrics(ctx context.Context, tx repository.Tx, postID string) (*models.EngagementMetrics, error) {
	metrics, err := tx.GetMetrics(ctx, postID)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewEngagementMetrics(postID), nil
	}
	if err != nil {
		return nil, err
	}
	if metrics.ReactionCounts == nil {
		metrics.ReactionCounts = models.EmptyReactionCounts()
	}
	return metrics, nil
}

// refreshMetrics recomputes every derived counter of postID and saves the
// row. View, unique view and share counters are carried over unchanged.
// The caller must hold the post lock.
func refreshMetrics(ctx context.Context, tx repository.Tx, postID string) (*models.EngagementMetrics, error) {
	metrics, err := loadMetrics(ctx, tx, postID)
	if err != nil {
		return nil, err
	}

	approved, err := tx.ListComments(ctx, repository.CommentFilter{
		PostID:    postID,
		AnyParent: true,
		Statuses:  []models.ModerationStatus{models.ModerationApproved},
	})
	if err != nil {
		return nil, err
	}
	metrics.CommentCount = len(approved)

	reactions, err := tx.ListReactions(ctx, models.PostTarget(postID))
	if err != nil {
		return nil, err
	}
	metrics.ReactionCounts = models.EmptyReactionCounts()
	for _, r := range reactions {
		metrics.ReactionCounts[r.Type]++
	}

	feedback, err := tx.ListFeedback(ctx, postID)
	if err != nil {
		return nil, err
	}
	metrics.RatingCount = len(feedback)
	metrics.AverageRating = 0
	if len(feedback) > 0 {
		sum := 0
		for _, f := range feedback {
			sum += f.Rating
		}
		metrics.AverageRating = float64(sum) / float64(len(feedback))
	}

	highlights, err := tx.ListHighlights(ctx, postID)
	if err != nil {
		return nil, err
	}
	metrics.HighlightCount = len(highlights)

	if err := tx.SaveMetrics(ctx, metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}
