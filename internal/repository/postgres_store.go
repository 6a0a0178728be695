package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"engagehub/pkg/models"
)

// PostgresStore persists engagement records in PostgreSQL through pgx
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// WithTransaction executes fn within a database transaction
func (s *PostgresStore) WithTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, pgx.TxOptions{}, fn)
}

// View executes fn within a read-only transaction
func (s *PostgresStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (s *PostgresStore) run(ctx context.Context, opts pgx.TxOptions, fn func(tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return mapDBError(err, "begin_transaction", "")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&pgTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapDBError(err, "commit_transaction", "")
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

type pgTx struct {
	tx pgx.Tx
}

// LockPost takes a transaction-scoped advisory lock keyed by the post
func (t *pgTx) LockPost(ctx context.Context, postID string) error {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, postID); err != nil {
		return mapDBError(err, "lock_post", "post")
	}
	return nil
}

// ==== comments ====

const commentColumns = `id, post_id, content, author_id, author_name, author_avatar, parent_id,
	created_at, updated_at, moderation_status, is_edited, highlight_id, highlight_text, reply_count`

func scanComment(row pgx.Row) (*models.Comment, error) {
	c := &models.Comment{}
	var status string
	err := row.Scan(
		&c.ID,
		&c.PostID,
		&c.Content,
		&c.Author.ID,
		&c.Author.DisplayName,
		&c.Author.AvatarURL,
		&c.ParentID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&status,
		&c.IsEdited,
		&c.HighlightID,
		&c.HighlightText,
		&c.ReplyCount,
	)
	if err != nil {
		return nil, err
	}
	c.ModerationStatus = models.ModerationStatus(status)
	return c, nil
}

func (t *pgTx) InsertComment(ctx context.Context, c *models.Comment) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO comments (`+commentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		c.ID, c.PostID, c.Content, c.Author.ID, c.Author.DisplayName, c.Author.AvatarURL, c.ParentID,
		c.CreatedAt, c.UpdatedAt, string(c.ModerationStatus), c.IsEdited, c.HighlightID, c.HighlightText, c.ReplyCount,
	)
	if err != nil {
		return mapDBError(err, "insert_comment", "comment")
	}
	return nil
}

func (t *pgTx) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	c, err := scanComment(t.tx.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return nil, mapDBError(err, "get_comment", "comment", id)
	}
	return c, nil
}

func (t *pgTx) UpdateComment(ctx context.Context, c *models.Comment) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE comments
		SET content = $2, updated_at = $3, moderation_status = $4, is_edited = $5,
			highlight_id = $6, highlight_text = $7, reply_count = $8
		WHERE id = $1
	`, c.ID, c.Content, c.UpdatedAt, string(c.ModerationStatus), c.IsEdited, c.HighlightID, c.HighlightText, c.ReplyCount)
	if err != nil {
		return mapDBError(err, "update_comment", "comment")
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("comment", c.ID)
	}
	return nil
}

func (t *pgTx) DeleteComments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM comments WHERE id = ANY($1)`, ids); err != nil {
		return mapDBError(err, "delete_comments", "comment")
	}
	return nil
}

func (t *pgTx) ListComments(ctx context.Context, f CommentFilter) ([]*models.Comment, error) {
	var (
		where = []string{"post_id = $1"}
		args  = []any{f.PostID}
	)
	if !f.AnyParent {
		if f.ParentID == nil {
			where = append(where, "parent_id IS NULL")
		} else {
			args = append(args, *f.ParentID)
			where = append(where, fmt.Sprintf("parent_id = $%d", len(args)))
		}
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("moderation_status = ANY($%d)", len(args)))
	}

	query := `SELECT ` + commentColumns + ` FROM comments WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at ASC, id ASC`

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "list_comments", "comment")
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_comment", "comment")
		}
		out = append(out, c)
	}
	return out, mapDBError(rows.Err(), "list_comments", "comment")
}

func (t *pgTx) ChildCommentIDs(ctx context.Context, parentID string) ([]string, error) {
	rows, err := t.tx.Query(ctx, `SELECT id FROM comments WHERE parent_id = $1 ORDER BY id`, parentID)
	if err != nil {
		return nil, mapDBError(err, "child_comment_ids", "comment")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapDBError(err, "child_comment_ids", "comment")
	}
	return ids, nil
}

// ==== reactions ====

const reactionColumns = `id, target_kind, target_id, post_id, user_id, user_name, type, created_at`

func scanReaction(row pgx.Row) (*models.Reaction, error) {
	r := &models.Reaction{}
	var kind, targetID, reactionType string
	if err := row.Scan(&r.ID, &kind, &targetID, &r.PostID, &r.UserID, &r.UserName, &reactionType, &r.CreatedAt); err != nil {
		return nil, err
	}
	target, err := models.ParseTarget(kind, targetID)
	if err != nil {
		return nil, err
	}
	r.Target = target
	r.Type = models.ReactionType(reactionType)
	return r, nil
}

func (t *pgTx) GetReaction(ctx context.Context, target models.ReactionTarget, userID string) (*models.Reaction, error) {
	r, err := scanReaction(t.tx.QueryRow(ctx, `
		SELECT `+reactionColumns+` FROM reactions
		WHERE user_id = $1 AND target_kind = $2 AND target_id = $3
	`, userID, string(target.Kind()), target.ID()))
	if err != nil {
		return nil, mapDBError(err, "get_reaction", "reaction", target.Key())
	}
	return r, nil
}

func (t *pgTx) InsertReaction(ctx context.Context, r *models.Reaction) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO reactions (`+reactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.ID, string(r.Target.Kind()), r.Target.ID(), r.PostID, r.UserID, r.UserName, string(r.Type), r.CreatedAt)
	if err != nil {
		return mapDBError(err, "insert_reaction", "reaction")
	}
	return nil
}

func (t *pgTx) UpdateReaction(ctx context.Context, r *models.Reaction) error {
	tag, err := t.tx.Exec(ctx, `UPDATE reactions SET type = $2, user_name = $3 WHERE id = $1`,
		r.ID, string(r.Type), r.UserName)
	if err != nil {
		return mapDBError(err, "update_reaction", "reaction")
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("reaction", r.ID)
	}
	return nil
}

func (t *pgTx) DeleteReaction(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM reactions WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err, "delete_reaction", "reaction")
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("reaction", id)
	}
	return nil
}

func (t *pgTx) ListReactions(ctx context.Context, targets ...models.ReactionTarget) ([]*models.Reaction, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	keys := make([]string, len(targets))
	for i, target := range targets {
		keys[i] = target.Key()
	}

	rows, err := t.tx.Query(ctx, `
		SELECT `+reactionColumns+` FROM reactions
		WHERE target_kind || ':' || target_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, keys)
	if err != nil {
		return nil, mapDBError(err, "list_reactions", "reaction")
	}
	defer rows.Close()

	var out []*models.Reaction
	for rows.Next() {
		r, err := scanReaction(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_reaction", "reaction")
		}
		out = append(out, r)
	}
	return out, mapDBError(rows.Err(), "list_reactions", "reaction")
}

func (t *pgTx) DeleteCommentReactions(ctx context.Context, commentIDs []string) (int, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM reactions WHERE target_kind = 'comment' AND target_id = ANY($1)`, commentIDs)
	if err != nil {
		return 0, mapDBError(err, "delete_comment_reactions", "reaction")
	}
	return int(tag.RowsAffected()), nil
}

// ==== highlights ====

const highlightColumns = `id, post_id, user_id, user_name, text, start_offset, end_offset, created_at, comment_id`

func scanHighlight(row pgx.Row) (*models.Highlight, error) {
	h := &models.Highlight{}
	err := row.Scan(&h.ID, &h.PostID, &h.UserID, &h.UserName, &h.Text, &h.StartOffset, &h.EndOffset, &h.CreatedAt, &h.CommentID)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (t *pgTx) InsertHighlight(ctx context.Context, h *models.Highlight) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO highlights (`+highlightColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, h.ID, h.PostID, h.UserID, h.UserName, h.Text, h.StartOffset, h.EndOffset, h.CreatedAt, h.CommentID)
	if err != nil {
		return mapDBError(err, "insert_highlight", "highlight")
	}
	return nil
}

func (t *pgTx) GetHighlight(ctx context.Context, id string) (*models.Highlight, error) {
	h, err := scanHighlight(t.tx.QueryRow(ctx, `SELECT `+highlightColumns+` FROM highlights WHERE id = $1`, id))
	if err != nil {
		return nil, mapDBError(err, "get_highlight", "highlight", id)
	}
	return h, nil
}

func (t *pgTx) UpdateHighlight(ctx context.Context, h *models.Highlight) error {
	tag, err := t.tx.Exec(ctx, `UPDATE highlights SET comment_id = $2 WHERE id = $1`, h.ID, h.CommentID)
	if err != nil {
		return mapDBError(err, "update_highlight", "highlight")
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("highlight", h.ID)
	}
	return nil
}

func (t *pgTx) ListHighlights(ctx context.Context, postID string) ([]*models.Highlight, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+highlightColumns+` FROM highlights
		WHERE post_id = $1 ORDER BY created_at ASC, id ASC
	`, postID)
	if err != nil {
		return nil, mapDBError(err, "list_highlights", "highlight")
	}
	defer rows.Close()

	var out []*models.Highlight
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_highlight", "highlight")
		}
		out = append(out, h)
	}
	return out, mapDBError(rows.Err(), "list_highlights", "highlight")
}

func (t *pgTx) UnlinkHighlights(ctx context.Context, commentIDs []string) (int, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}
	tag, err := t.tx.Exec(ctx, `UPDATE highlights SET comment_id = NULL WHERE comment_id = ANY($1)`, commentIDs)
	if err != nil {
		return 0, mapDBError(err, "unlink_highlights", "highlight")
	}
	return int(tag.RowsAffected()), nil
}

// ==== feedback ====

const feedbackColumns = `id, post_id, user_id, user_name, rating, feedback, created_at, updated_at`

func (t *pgTx) GetFeedback(ctx context.Context, postID, userID string) (*models.ContentFeedback, error) {
	f := &models.ContentFeedback{}
	err := t.tx.QueryRow(ctx, `
		SELECT `+feedbackColumns+` FROM content_feedback WHERE post_id = $1 AND user_id = $2
	`, postID, userID).Scan(&f.ID, &f.PostID, &f.UserID, &f.UserName, &f.Rating, &f.Feedback, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, mapDBError(err, "get_feedback", "feedback", postID+"/"+userID)
	}
	return f, nil
}

func (t *pgTx) InsertFeedback(ctx context.Context, f *models.ContentFeedback) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO content_feedback (`+feedbackColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, f.ID, f.PostID, f.UserID, f.UserName, f.Rating, f.Feedback, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return mapDBError(err, "insert_feedback", "feedback")
	}
	return nil
}

func (t *pgTx) UpdateFeedback(ctx context.Context, f *models.ContentFeedback) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE content_feedback SET rating = $3, feedback = $4, user_name = $5, updated_at = $6
		WHERE post_id = $1 AND user_id = $2
	`, f.PostID, f.UserID, f.Rating, f.Feedback, f.UserName, f.UpdatedAt)
	if err != nil {
		return mapDBError(err, "update_feedback", "feedback")
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("feedback", f.PostID+"/"+f.UserID)
	}
	return nil
}

func (t *pgTx) ListFeedback(ctx context.Context, postID string) ([]*models.ContentFeedback, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+feedbackColumns+` FROM content_feedback WHERE post_id = $1 ORDER BY user_id
	`, postID)
	if err != nil {
		return nil, mapDBError(err, "list_feedback", "feedback")
	}
	defer rows.Close()

	var out []*models.ContentFeedback
	for rows.Next() {
		f := &models.ContentFeedback{}
		if err := rows.Scan(&f.ID, &f.PostID, &f.UserID, &f.UserName, &f.Rating, &f.Feedback, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, mapDBError(err, "scan_feedback", "feedback")
		}
		out = append(out, f)
	}
	return out, mapDBError(rows.Err(), "list_feedback", "feedback")
}

// ==== notifications ====

const notificationColumns = `id, user_id, comment_id, parent_comment_id, post_id, post_title,
	actor_id, actor_name, type, message, is_read, created_at`

func scanNotification(row pgx.Row) (*models.CommentNotification, error) {
	n := &models.CommentNotification{}
	var kind string
	err := row.Scan(&n.ID, &n.UserID, &n.CommentID, &n.ParentCommentID, &n.PostID, &n.PostTitle,
		&n.ActorID, &n.ActorName, &kind, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = models.NotificationType(kind)
	return n, nil
}

func (t *pgTx) InsertNotification(ctx context.Context, n *models.CommentNotification) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO comment_notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, n.ID, n.UserID, n.CommentID, n.ParentCommentID, n.PostID, n.PostTitle,
		n.ActorID, n.ActorName, string(n.Type), n.Message, n.IsRead, n.CreatedAt)
	if err != nil {
		return mapDBError(err, "insert_notification", "notification")
	}
	return nil
}

func (t *pgTx) GetNotification(ctx context.Context, id string) (*models.CommentNotification, error) {
	n, err := scanNotification(t.tx.QueryRow(ctx, `SELECT `+notificationColumns+` FROM comment_notifications WHERE id = $1`, id))
	if err != nil {
		return nil, mapDBError(err, "get_notification", "notification", id)
	}
	return n, nil
}

func (t *pgTx) UpdateNotification(ctx context.Context, n *models.CommentNotification) error {
	tag, err := t.tx.Exec(ctx, `UPDATE comment_notifications SET is_read = $2 WHERE id = $1`, n.ID, n.IsRead)
	if err != nil {
		return mapDBError(err, "update_notification", "notification")
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("notification", n.ID)
	}
	return nil
}

func (t *pgTx) ListNotifications(ctx context.Context, userID string) ([]*models.CommentNotification, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+notificationColumns+` FROM comment_notifications
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, mapDBError(err, "list_notifications", "notification")
	}
	defer rows.Close()

	var out []*models.CommentNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_notification", "notification")
		}
		out = append(out, n)
	}
	return out, mapDBError(rows.Err(), "list_notifications", "notification")
}

func (t *pgTx) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE comment_notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, mapDBError(err, "mark_all_read", "notification")
	}
	return int(tag.RowsAffected()), nil
}

func (t *pgTx) DeleteCommentNotifications(ctx context.Context, commentIDs []string) (int, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}
	tag, err := t.tx.Exec(ctx, `
		DELETE FROM comment_notifications
		WHERE comment_id = ANY($1) OR parent_comment_id = ANY($1)
	`, commentIDs)
	if err != nil {
		return 0, mapDBError(err, "delete_comment_notifications", "notification")
	}
	return int(tag.RowsAffected()), nil
}

// ==== metrics & engagement log ====

func (t *pgTx) GetMetrics(ctx context.Context, postID string) (*models.EngagementMetrics, error) {
	m := &models.EngagementMetrics{}
	var counts []byte
	err := t.tx.QueryRow(ctx, `
		SELECT post_id, view_count, unique_view_count, comment_count, reaction_counts,
			average_rating, rating_count, highlight_count, share_count
		FROM engagement_metrics WHERE post_id = $1
	`, postID).Scan(&m.PostID, &m.ViewCount, &m.UniqueViewCount, &m.CommentCount, &counts,
		&m.AverageRating, &m.RatingCount, &m.HighlightCount, &m.ShareCount)
	if err != nil {
		return nil, mapDBError(err, "get_metrics", "metrics", postID)
	}

	m.ReactionCounts = models.EmptyReactionCounts()
	if len(counts) > 0 {
		if err := json.Unmarshal(counts, &m.ReactionCounts); err != nil {
			return nil, fmt.Errorf("decode reaction counts for %s: %w", postID, err)
		}
	}
	return m, nil
}

func (t *pgTx) SaveMetrics(ctx context.Context, m *models.EngagementMetrics) error {
	counts, err := json.Marshal(m.ReactionCounts)
	if err != nil {
		return fmt.Errorf("encode reaction counts for %s: %w", m.PostID, err)
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO engagement_metrics (post_id, view_count, unique_view_count, comment_count,
			reaction_counts, average_rating, rating_count, highlight_count, share_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (post_id) DO UPDATE
		SET view_count = EXCLUDED.view_count,
			unique_view_count = EXCLUDED.unique_view_count,
			comment_count = EXCLUDED.comment_count,
			reaction_counts = EXCLUDED.reaction_counts,
			average_rating = EXCLUDED.average_rating,
			rating_count = EXCLUDED.rating_count,
			highlight_count = EXCLUDED.highlight_count,
			share_count = EXCLUDED.share_count
	`, m.PostID, m.ViewCount, m.UniqueViewCount, m.CommentCount, counts,
		m.AverageRating, m.RatingCount, m.HighlightCount, m.ShareCount)
	if err != nil {
		return mapDBError(err, "save_metrics", "metrics")
	}
	return nil
}

func (t *pgTx) AppendEngagement(ctx context.Context, e *models.UserEngagement) error {
	var durationMs *int64
	if e.Duration != nil {
		ms := e.Duration.Milliseconds()
		durationMs = &ms
	}
	var details []byte
	if len(e.Details) > 0 {
		encoded, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("encode engagement details: %w", err)
		}
		details = encoded
	}

	_, err := t.tx.Exec(ctx, `
		INSERT INTO user_engagements (id, user_id, post_id, engagement_type, created_at, duration_ms, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.UserID, e.PostID, string(e.Type), e.Timestamp, durationMs, details)
	if err != nil {
		return mapDBError(err, "append_engagement", "engagement")
	}
	return nil
}

func (t *pgTx) HasEngagement(ctx context.Context, userID, postID string, kind models.EngagementType) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_engagements
			WHERE user_id = $1 AND post_id = $2 AND engagement_type = $3
		)
	`, userID, postID, string(kind)).Scan(&exists)
	if err != nil {
		return false, mapDBError(err, "has_engagement", "engagement")
	}
	return exists, nil
}

// mapDBError maps database errors to the engagement error kinds. The
// optional id names the missing record for not-found errors.
func mapDBError(err error, operation, resource string, id ...string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		key := ""
		if len(id) > 0 {
			key = id[0]
		}
		return models.NewNotFoundError(resource, key)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", // unique_violation
			"40001", // serialization_failure
			"40P01": // deadlock_detected
			return models.NewConflictError(operation, err)
		case "23503": // foreign_key_violation
			return models.NewNotFoundError(resource, pgErr.Detail)
		case "23514", // check_violation
			"22001": // string_data_right_truncation
			return models.NewValidationError(resource, pgErr.Message)
		}
	}

	return fmt.Errorf("database error during %s: %w", operation, err)
}
