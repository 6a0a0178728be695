// Package events exports committed engagement events to downstream
// analytics consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"engagehub/pkg/models"
)

// Publisher receives engagement events after their transaction commits
type Publisher interface {
	Publish(ctx context.Context, engagements ...models.UserEngagement) error
	Close() error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...models.UserEngagement) error { return nil }
func (NoopPublisher) Close() error                                           { return nil }

// DefaultStream is the Redis stream engagement events are appended to
const DefaultStream = "engagehub:engagements"

// RedisPublisher appends events to a capped Redis stream
type RedisPublisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisPublisher creates a publisher writing to stream. maxLen caps the
// stream approximately; zero leaves it unbounded.
func NewRedisPublisher(client redis.UniversalClient, stream string, maxLen int64) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish writes all events in one pipeline
func (p *RedisPublisher) Publish(ctx context.Context, engagements ...models.UserEngagement) error {
	if len(engagements) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, e := range engagements {
		values, err := streamValues(e)
		if err != nil {
			return err
		}
		args := &redis.XAddArgs{
			Stream: p.stream,
			Values: values,
		}
		if p.maxLen > 0 {
			args.MaxLen = p.maxLen
			args.Approx = true
		}
		pipe.XAdd(ctx, args)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %d engagement events: %w", len(engagements), err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func streamValues(e models.UserEngagement) (map[string]interface{}, error) {
	values := map[string]interface{}{
		"id":        e.ID,
		"user_id":   e.UserID,
		"post_id":   e.PostID,
		"type":      string(e.Type),
		"weight":    strconv.Itoa(e.Weight()),
		"timestamp": e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if e.Duration != nil {
		values["duration_ms"] = strconv.FormatInt(e.Duration.Milliseconds(), 10)
	}
	if len(e.Details) > 0 {
		details, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("encode details of %s: %w", e.ID, err)
		}
		values["details"] = string(details)
	}
	return values, nil
}

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []models.UserEngagement
	Err    error
}

func (r *Recorder) Publish(_ context.Context, engagements ...models.UserEngagement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, engagements...)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far
func (r *Recorder) Events() []models.UserEngagement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.UserEngagement(nil), r.events...)
}
