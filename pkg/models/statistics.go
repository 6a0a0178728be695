package models

// EngagementMetrics is the derived per-post summary. Everything except the
// view and share counters can be recomputed from comments, reactions,
// feedback and highlights.
type EngagementMetrics struct {
	PostID          string               `json:"post_id" db:"post_id"`
	ViewCount       int                  `json:"view_count" db:"view_count"`
	UniqueViewCount int                  `json:"unique_view_count" db:"unique_view_count"`
	CommentCount    int                  `json:"comment_count" db:"comment_count"`
	ReactionCounts  map[ReactionType]int `json:"reaction_counts" db:"reaction_counts"`
	AverageRating   float64              `json:"average_rating" db:"average_rating"`
	RatingCount     int                  `json:"rating_count" db:"rating_count"`
	HighlightCount  int                  `json:"highlight_count" db:"highlight_count"`
	ShareCount      int                  `json:"share_count" db:"share_count"`
}

// NewEngagementMetrics returns a zero row with every reaction type present
func NewEngagementMetrics(postID string) *EngagementMetrics {
	return &EngagementMetrics{
		PostID:         postID,
		ReactionCounts: EmptyReactionCounts(),
	}
}

// EmptyReactionCounts returns a map holding zero for each reaction type
func EmptyReactionCounts() map[ReactionType]int {
	counts := make(map[ReactionType]int, len(ReactionTypes))
	for _, t := range ReactionTypes {
		counts[t] = 0
	}
	return counts
}

// TotalReactions sums the per-type counters
func (m *EngagementMetrics) TotalReactions() int {
	total := 0
	for _, n := range m.ReactionCounts {
		total += n
	}
	return total
}

// Clone returns a deep copy
func (m *EngagementMetrics) Clone() *EngagementMetrics {
	if m == nil {
		return nil
	}
	out := *m
	out.ReactionCounts = make(map[ReactionType]int, len(m.ReactionCounts))
	for k, v := range m.ReactionCounts {
		out.ReactionCounts[k] = v
	}
	return &out
}

// ShareRequest is the HTTP body for recording a share
type ShareRequest struct {
	Channel string `json:"channel,omitempty"`
}
