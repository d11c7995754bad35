package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

// FetchRange reconstructs the inclusive [start, end] second range of a video
// and returns the path of the cached artifact. end == -1 means "through end
// of video". Identical concurrent requests share one reconstruction.
func (s *videoService) FetchRange(ctx context.Context, videoID string, start, end int) (string, error) {
	md, err := s.registry.Get(ctx, videoID)
	if err != nil {
		return "", err
	}
	if md == nil {
		return "", domain.ErrNotFound
	}

	if err := validateRange(start, end, md.Duration); err != nil {
		return "", err
	}

	key := s.cache.CanonicalPath(videoID, start, end, md.Duration)
	if s.cache.Exists(key) {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		rangesServedTotal.WithLabelValues("cached").Inc()
		return key, nil
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()

	// Check-then-compute is racy on its own: two identical cache misses
	// must not both invoke the transcoder. All callers for one canonical
	// key await a single shared reconstruction. The computation runs
	// detached from the leading request's cancellation: joined callers
	// must not fail because the leader went away, and a finished artifact
	// lands in the cache either way.
	flightCtx := context.WithoutCancel(ctx)
	path, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		if s.cache.Exists(key) {
			return key, nil
		}
		return s.reconstruct(flightCtx, *md, start, end, key)
	})
	if err != nil {
		rangesServedTotal.WithLabelValues("error").Inc()
		return "", err
	}
	rangesServedTotal.WithLabelValues("reconstructed").Inc()
	return path.(string), nil
}

// reconstruct times one reconstruction run. Request counting lives in
// FetchRange so every caller is counted exactly once, whether it led the
// computation, joined it in flight, or hit the cache.
func (s *videoService) reconstruct(ctx context.Context, md domain.VideoMetadata, start, end int, canonicalPath string) (string, error) {
	began := time.Now()
	status := "success"
	defer func() {
		egressDuration.WithLabelValues(status).Observe(time.Since(began).Seconds())
	}()

	path, err := s.assembleRange(ctx, md, start, end, canonicalPath)
	if err != nil {
		status = "error"
		return "", err
	}
	return path, nil
}

func (s *videoService) assembleRange(ctx context.Context, md domain.VideoMetadata, start, end int, canonicalPath string) (string, error) {
	fetchID := domain.NewFetchID()
	log.Printf("🎬 Reconstructing video %s range [%d, %d] (fetch %s)", md.VideoID, start, end, fetchID)

	dir, err := s.workspace.NewEgressDir(fetchID)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := s.workspace.Remove(dir); err != nil {
			log.Printf("⚠️ Could not clean egress workspace %s: %v", dir, err)
		}
	}()

	chunkDir := filepath.Join(dir, "chunks", "video")
	assembledDir := filepath.Join(dir, "assembled")
	containerDir := filepath.Join(dir, "containerized")
	for _, d := range []string{chunkDir, assembledDir, containerDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return "", fmt.Errorf("failed to create egress directory: %w", err)
		}
	}

	resolved := resolveEnd(end, md.Duration)

	chunkFiles, err := s.materializeSegments(ctx, md.VideoID, chunkDir, start, resolved)
	if err != nil {
		return "", err
	}

	assembledVideo := filepath.Join(assembledDir, "video.mkv")
	if err := s.transcoder.Concatenate(ctx, chunkFiles, assembledVideo); err != nil {
		return "", err
	}

	cutAudio := ""
	if md.HasAudio() {
		cutAudio, err = s.trimAudio(ctx, md, assembledDir, start, resolved)
		if err != nil {
			return "", err
		}
	}

	container := filepath.Join(containerDir, "video.webm")
	if err := s.transcoder.Mux(ctx, cutAudio, assembledVideo, container); err != nil {
		return "", err
	}

	if err := s.cache.Publish(container, canonicalPath); err != nil {
		return "", err
	}
	return canonicalPath, nil
}

// materializeSegments pulls the full segment set, keeps the indices inside
// [start, end], and writes them to chunkDir in ascending index order. The
// store does not filter server-side and does not guarantee read order.
func (s *videoService) materializeSegments(ctx context.Context, videoID, chunkDir string, start, end int) ([]string, error) {
	all, err := s.chunks.GetVideoSegments(ctx, videoID)
	if err != nil {
		return nil, err
	}

	wanted := make([]domain.SegmentChunk, 0, end-start+1)
	for _, seg := range all {
		if seg.Index < start || seg.Index > end {
			continue
		}
		wanted = append(wanted, seg)
	}
	sort.Slice(wanted, func(i, j int) bool { return wanted[i].Index < wanted[j].Index })

	files := make([]string, 0, len(wanted))
	for _, seg := range wanted {
		path := filepath.Join(chunkDir, fmt.Sprintf("chunk_%d.mkv", seg.Index))
		if err := os.WriteFile(path, seg.Data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write segment file: %w", err)
		}
		files = append(files, path)
	}
	return files, nil
}

// trimAudio fetches the whole audio blob and cuts it down to the requested
// range. Audio is stored whole, never segmented; trimming happens here per
// request.
func (s *videoService) trimAudio(ctx context.Context, md domain.VideoMetadata, assembledDir string, start, end int) (string, error) {
	audio, err := s.chunks.GetAudio(ctx, md.VideoID)
	if err != nil {
		return "", err
	}
	if audio == nil {
		return "", &domain.StoreError{
			Op:  "get audio",
			Err: fmt.Errorf("video %s has audio codec %s but no stored audio blob", md.VideoID, md.AudioCodec),
		}
	}

	fullAudio := filepath.Join(assembledDir, "full_audio.mkv")
	if err := os.WriteFile(fullAudio, audio, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio blob: %w", err)
	}

	cutAudio := filepath.Join(assembledDir, "cut_audio.webm")
	if err := s.transcoder.CutAudioRange(ctx, fullAudio, cutAudio, start, end, md.Duration); err != nil {
		return "", err
	}
	return cutAudio, nil
}
