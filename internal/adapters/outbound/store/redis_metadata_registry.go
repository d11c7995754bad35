package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

// DefaultHashName is the hash all metadata records live in unless configured
// otherwise.
const DefaultHashName = "redis_video_list"

// redisMetadataRegistry stores metadata records as JSON values in a single
// hash keyed by video id.
type redisMetadataRegistry struct {
	client   *redis.Client
	hashName string
}

var _ ports.MetadataRegistry = (*redisMetadataRegistry)(nil)

func NewRedisMetadataRegistry(client *redis.Client, hashName string) ports.MetadataRegistry {
	if hashName == "" {
		hashName = DefaultHashName
	}
	return &redisMetadataRegistry{client: client, hashName: hashName}
}

func (r *redisMetadataRegistry) Put(ctx context.Context, md domain.VideoMetadata) error {
	payload, err := json.Marshal(md)
	if err != nil {
		return &domain.StoreError{Op: "put metadata", Err: err}
	}
	if err := r.client.HSet(ctx, r.hashName, md.VideoID, payload).Err(); err != nil {
		return &domain.StoreError{Op: "put metadata", Err: err}
	}
	return nil
}

func (r *redisMetadataRegistry) Get(ctx context.Context, videoID string) (*domain.VideoMetadata, error) {
	payload, err := r.client.HGet(ctx, r.hashName, videoID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "get metadata", Err: err}
	}

	var md domain.VideoMetadata
	if err := json.Unmarshal(payload, &md); err != nil {
		return nil, &domain.StoreError{Op: "get metadata", Err: err}
	}
	return &md, nil
}

func (r *redisMetadataRegistry) Exists(ctx context.Context, videoID string) (bool, error) {
	exists, err := r.client.HExists(ctx, r.hashName, videoID).Result()
	if err != nil {
		return false, &domain.StoreError{Op: "metadata exists", Err: err}
	}
	return exists, nil
}

func (r *redisMetadataRegistry) ListAll(ctx context.Context) (map[string]domain.VideoMetadata, error) {
	entries, err := r.client.HGetAll(ctx, r.hashName).Result()
	if err != nil {
		return nil, &domain.StoreError{Op: "list metadata", Err: err}
	}

	records := make(map[string]domain.VideoMetadata, len(entries))
	for videoID, payload := range entries {
		var md domain.VideoMetadata
		if err := json.Unmarshal([]byte(payload), &md); err != nil {
			return nil, &domain.StoreError{Op: "list metadata", Err: err}
		}
		records[videoID] = md
	}
	return records, nil
}

func (r *redisMetadataRegistry) Delete(ctx context.Context, videoID string) (bool, error) {
	removed, err := r.client.HDel(ctx, r.hashName, videoID).Result()
	if err != nil {
		return false, &domain.StoreError{Op: "delete metadata", Err: err}
	}
	return removed > 0, nil
}
