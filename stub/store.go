// Package stub is a development backend for the talklens client: it
// implements the session/artifact API surface locally, stores blobs in S3 (or
// any S3-compatible store) behind presigned URLs, keeps session records in
// Redis, and fabricates transcript/emotion/summary payloads on a timer so the
// full readiness protocol can be exercised without the real pipeline.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"talklens/types"
)

const (
	sessionKeyPrefix = "talklens:session:"
	sessionIndexKey  = "talklens:sessions"
)

// Record is the stub backend's full state for one session.
type Record struct {
	Session  types.Session      `json:"session"`
	Preset   string             `json:"preset"`
	Speakers types.SpeakerNames `json:"speakers"`

	// Blob keys per derived artifact, set once the payload is stored.
	AudioKey      string `json:"audio_key,omitempty"`
	TranscriptKey string `json:"transcript_key,omitempty"`
	EmotionsKey   string `json:"emotions_key,omitempty"`
	SummaryKey    string `json:"summary_key,omitempty"`
}

// Registry persists session records in Redis.
type Registry struct {
	client *redis.Client
}

// NewRegistryFromEnv creates a Registry using REDIS_ADDR, REDIS_PASS and
// (optionally) REDIS_DB, mirroring the usual local defaults.
func NewRegistryFromEnv(ctx context.Context) (*Registry, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Registry{client: client}, nil
}

// Save writes a session record and indexes its id.
func (r *Registry) Save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+rec.Session.ID, data, 0)
	pipe.SAdd(ctx, sessionIndexKey, rec.Session.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// Get loads one session record. Returns (nil, nil) when the id is unknown.
func (r *Registry) Get(ctx context.Context, id string) (*Record, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session record: %w", err)
	}
	return &rec, nil
}

// List loads all known session records.
func (r *Registry) List(ctx context.Context) ([]*Record, error) {
	ids, err := r.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Delete removes a session record and its index entry.
func (r *Registry) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+id)
	pipe.SRem(ctx, sessionIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// Update applies fn to the stored record under a read-modify-write. Lost
// updates are acceptable for a dev stub; the real backend owns consistency.
func (r *Registry) Update(ctx context.Context, id string, fn func(*Record)) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("unknown session %s", id)
	}
	fn(rec)
	return r.Save(ctx, rec)
}
