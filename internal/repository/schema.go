package repository

// Schema is the PostgreSQL DDL for the engagement store. It is idempotent
// and applied by `engagehub migrate`.
const Schema = `
CREATE TABLE IF NOT EXISTS comments (
	id                TEXT PRIMARY KEY,
	post_id           TEXT NOT NULL,
	content           TEXT NOT NULL,
	author_id         TEXT NOT NULL,
	author_name       TEXT NOT NULL DEFAULT '',
	author_avatar     TEXT NOT NULL DEFAULT '',
	parent_id         TEXT REFERENCES comments(id),
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ,
	moderation_status TEXT NOT NULL DEFAULT 'pending'
		CHECK (moderation_status IN ('pending', 'approved', 'rejected', 'spam')),
	is_edited         BOOLEAN NOT NULL DEFAULT FALSE,
	highlight_id      TEXT,
	highlight_text    TEXT,
	reply_count       INTEGER NOT NULL DEFAULT 0 CHECK (reply_count >= 0)
);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id, created_at);
CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id);

CREATE TABLE IF NOT EXISTS reactions (
	id          TEXT PRIMARY KEY,
	target_kind TEXT NOT NULL CHECK (target_kind IN ('comment', 'post')),
	target_id   TEXT NOT NULL,
	post_id     TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	user_name   TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL CHECK (type IN ('like', 'love', 'haha', 'wow', 'sad', 'angry')),
	created_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, target_kind, target_id)
);
CREATE INDEX IF NOT EXISTS idx_reactions_target ON reactions (target_kind, target_id);

CREATE TABLE IF NOT EXISTS highlights (
	id           TEXT PRIMARY KEY,
	post_id      TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	user_name    TEXT NOT NULL DEFAULT '',
	text         TEXT NOT NULL,
	start_offset INTEGER NOT NULL CHECK (start_offset >= 0),
	end_offset   INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	comment_id   TEXT,
	CHECK (start_offset < end_offset)
);
CREATE INDEX IF NOT EXISTS idx_highlights_post ON highlights (post_id, created_at);

CREATE TABLE IF NOT EXISTS content_feedback (
	id         TEXT PRIMARY KEY,
	post_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	user_name  TEXT NOT NULL DEFAULT '',
	rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	feedback   TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ,
	UNIQUE (post_id, user_id)
);

CREATE TABLE IF NOT EXISTS comment_notifications (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	comment_id        TEXT NOT NULL,
	parent_comment_id TEXT,
	post_id           TEXT NOT NULL,
	post_title        TEXT NOT NULL DEFAULT '',
	actor_id          TEXT NOT NULL,
	actor_name        TEXT NOT NULL DEFAULT '',
	type              TEXT NOT NULL CHECK (type IN ('reply', 'mention', 'moderation')),
	message           TEXT NOT NULL,
	is_read           BOOLEAN NOT NULL DEFAULT FALSE,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON comment_notifications (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS engagement_metrics (
	post_id           TEXT PRIMARY KEY,
	view_count        INTEGER NOT NULL DEFAULT 0,
	unique_view_count INTEGER NOT NULL DEFAULT 0,
	comment_count     INTEGER NOT NULL DEFAULT 0,
	reaction_counts   JSONB NOT NULL DEFAULT '{}'::jsonb,
	average_rating    DOUBLE PRECISION NOT NULL DEFAULT 0,
	rating_count      INTEGER NOT NULL DEFAULT 0,
	highlight_count   INTEGER NOT NULL DEFAULT 0,
	share_count       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user_engagements (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	post_id         TEXT NOT NULL,
	engagement_type TEXT NOT NULL
		CHECK (engagement_type IN ('view', 'comment', 'reaction', 'rating', 'highlight', 'share')),
	created_at      TIMESTAMPTZ NOT NULL,
	duration_ms     BIGINT,
	details         JSONB
);
CREATE INDEX IF NOT EXISTS idx_engagements_lookup ON user_engagements (user_id, post_id, engagement_type);
`
