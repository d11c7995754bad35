package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

// redisChunkStore keeps one stream per video holding the ordered segments
// (field chunk_<index>) and one string key per video for the whole audio
// track.
type redisChunkStore struct {
	client *redis.Client
}

var _ ports.ChunkStore = (*redisChunkStore)(nil)

func NewRedisChunkStore(client *redis.Client) ports.ChunkStore {
	return &redisChunkStore{client: client}
}

func segmentStream(videoID string) string {
	return "video_" + videoID
}

func audioKey(videoID string) string {
	return "audio_" + videoID
}

func (s *redisChunkStore) PutVideoSegments(ctx context.Context, videoID string, segments [][]byte) error {
	stream := segmentStream(videoID)
	for i, segment := range segments {
		err := s.client.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: map[string]interface{}{
				fmt.Sprintf("chunk_%d", i): segment,
			},
		}).Err()
		if err != nil {
			return &domain.StoreError{Op: "put video segments", Err: err}
		}
	}
	return nil
}

func (s *redisChunkStore) GetVideoSegments(ctx context.Context, videoID string) ([]domain.SegmentChunk, error) {
	messages, err := s.client.XRange(ctx, segmentStream(videoID), "-", "+").Result()
	if err != nil {
		return nil, &domain.StoreError{Op: "get video segments", Err: err}
	}

	segments := make([]domain.SegmentChunk, 0, len(messages))
	for _, message := range messages {
		for field, value := range message.Values {
			index, ok := chunkIndex(field)
			if !ok {
				continue
			}
			data, ok := value.(string)
			if !ok {
				return nil, &domain.StoreError{
					Op:  "get video segments",
					Err: fmt.Errorf("unexpected payload type %T for %s", value, field),
				}
			}
			segments = append(segments, domain.SegmentChunk{Index: index, Data: []byte(data)})
		}
	}
	return segments, nil
}

func (s *redisChunkStore) PutAudio(ctx context.Context, videoID string, audio []byte) error {
	if err := s.client.Set(ctx, audioKey(videoID), audio, 0).Err(); err != nil {
		return &domain.StoreError{Op: "put audio", Err: err}
	}
	return nil
}

func (s *redisChunkStore) GetAudio(ctx context.Context, videoID string) ([]byte, error) {
	data, err := s.client.Get(ctx, audioKey(videoID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "get audio", Err: err}
	}
	return data, nil
}

func (s *redisChunkStore) DeleteVideoSegments(ctx context.Context, videoID string) error {
	if err := s.client.Del(ctx, segmentStream(videoID)).Err(); err != nil {
		return &domain.StoreError{Op: "delete video segments", Err: err}
	}
	return nil
}

func (s *redisChunkStore) DeleteAudio(ctx context.Context, videoID string) error {
	if err := s.client.Del(ctx, audioKey(videoID)).Err(); err != nil {
		return &domain.StoreError{Op: "delete audio", Err: err}
	}
	return nil
}

func chunkIndex(field string) (int, bool) {
	suffix, found := strings.CutPrefix(field, "chunk_")
	if !found {
		return 0, false
	}
	index, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return index, true
}
