package services

import (
	"context"
	"log"
	"sort"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

// ListAll returns every stored metadata record, newest first.
func (s *videoService) ListAll(ctx context.Context) ([]domain.VideoMetadata, error) {
	records, err := s.registry.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	videos := make([]domain.VideoMetadata, 0, len(records))
	for _, md := range records {
		videos = append(videos, md)
	}
	sort.Slice(videos, func(i, j int) bool {
		if videos[i].Timestamp != videos[j].Timestamp {
			return videos[i].Timestamp > videos[j].Timestamp
		}
		return videos[i].VideoID < videos[j].VideoID
	})
	return videos, nil
}

// GetMetadata returns the metadata record for one video.
func (s *videoService) GetMetadata(ctx context.Context, videoID string) (*domain.VideoMetadata, error) {
	md, err := s.registry.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, domain.ErrNotFound
	}
	return md, nil
}

// Delete removes the metadata record, the segment set, the audio blob and
// the per-video cache directory. When only some sub-deletions succeed the
// caller gets a PartialDeleteError naming the failed parts.
func (s *videoService) Delete(ctx context.Context, videoID string) error {
	exists, err := s.registry.Exists(ctx, videoID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	var failed []string
	if _, err := s.registry.Delete(ctx, videoID); err != nil {
		log.Printf("❌ Metadata delete failed for %s: %v", videoID, err)
		failed = append(failed, "metadata")
	}
	if err := s.chunks.DeleteVideoSegments(ctx, videoID); err != nil {
		log.Printf("❌ Segment delete failed for %s: %v", videoID, err)
		failed = append(failed, "video segments")
	}
	if err := s.chunks.DeleteAudio(ctx, videoID); err != nil {
		log.Printf("❌ Audio delete failed for %s: %v", videoID, err)
		failed = append(failed, "audio")
	}
	if err := s.cache.PurgeVideo(videoID); err != nil {
		log.Printf("❌ Cache purge failed for %s: %v", videoID, err)
		failed = append(failed, "cache")
	}

	if len(failed) > 0 {
		return &domain.PartialDeleteError{VideoID: videoID, Failed: failed}
	}

	if s.events != nil {
		if err := s.events.VideoDeleted(ctx, videoID); err != nil {
			log.Printf("⚠️ Could not publish deleted event for %s: %v", videoID, err)
		}
	}

	log.Printf("🗑️ Video %s deleted", videoID)
	return nil
}
