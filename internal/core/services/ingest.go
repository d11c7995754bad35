package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

// Ingest runs the full ingestion pipeline for one uploaded file: probe,
// extract the elementary streams, transcode audio when needed, segment the
// video into one-second chunks and persist everything. The scratch directory
// is removed on success and failure.
func (s *videoService) Ingest(ctx context.Context, source io.Reader, fileName string) (*domain.VideoMetadata, error) {
	start := time.Now()
	status := "success"
	defer func() {
		ingestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		videosIngestedTotal.WithLabelValues(status).Inc()
	}()

	md, err := s.ingest(ctx, source, fileName)
	if err != nil {
		status = "error"
		return nil, err
	}
	return md, nil
}

func (s *videoService) ingest(ctx context.Context, source io.Reader, fileName string) (*domain.VideoMetadata, error) {
	videoID := domain.NewVideoID()
	log.Printf("📥 Ingesting %q as video %s", fileName, videoID)

	dir, err := s.workspace.NewIngestDir(videoID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.workspace.Remove(dir); err != nil {
			log.Printf("⚠️ Could not clean ingest workspace %s: %v", dir, err)
		}
	}()

	inputPath, err := s.workspace.SaveUpload(dir, source)
	if err != nil {
		return nil, err
	}

	// Probe before anything else: a file we cannot probe never reaches the
	// stores, so no half-empty metadata record is ever committed.
	probe, err := s.transcoder.Probe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	md := domain.VideoMetadata{
		VideoID:    videoID,
		Duration:   probe.Duration,
		VideoCodec: probe.VideoCodec,
		AudioCodec: probe.AudioCodec,
		Resolution: probe.Resolution,
		FPS:        probe.FPS,
		Timestamp:  domain.NewTimestamp(time.Now()),
		URL:        fmt.Sprintf("/video/%s.webm", videoID),
		FileName:   fileName,
	}

	extractedDir := filepath.Join(dir, "extracted")
	if err := os.MkdirAll(extractedDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}

	videoStream := filepath.Join(extractedDir, "video.mkv")
	if err := s.transcoder.ExtractVideo(ctx, inputPath, videoStream); err != nil {
		return nil, err
	}

	audioPath, err := s.prepareAudio(ctx, dir, inputPath, probe)
	if err != nil {
		return nil, err
	}

	// The video is always re-segmented through the target codec, even when
	// the source already is vp9: segmentation is what guarantees every
	// chunk starts on its own keyframe and decodes independently.
	segmentDir := filepath.Join(dir, "disassembled", "video")
	if err := os.MkdirAll(segmentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create segmentation directory: %w", err)
	}

	chunkFiles, err := s.transcoder.SegmentVideo(ctx, videoStream, segmentDir)
	if err != nil {
		return nil, err
	}

	segments := make([][]byte, 0, len(chunkFiles))
	for _, chunkFile := range chunkFiles {
		data, err := os.ReadFile(chunkFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read segment file: %w", err)
		}
		segments = append(segments, data)
	}

	if err := s.persist(ctx, md, segments, audioPath); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.VideoIngested(ctx, md); err != nil {
			log.Printf("⚠️ Could not publish ingested event for %s: %v", videoID, err)
		}
	}

	log.Printf("✅ Video %s ingested: %d segments, duration %ds", videoID, len(segments), md.Duration)
	return &md, nil
}

// prepareAudio extracts the audio stream and brings it to the target codec.
// It returns "" when the source has no audio. A source already in the target
// codec is stream-copied instead of re-encoded.
func (s *videoService) prepareAudio(ctx context.Context, dir, inputPath string, probe domain.ProbeResult) (string, error) {
	if probe.AudioCodec == "" {
		return "", nil
	}

	extracted := filepath.Join(dir, "extracted", "audio.mkv")
	if err := s.transcoder.ExtractAudio(ctx, inputPath, extracted); err != nil {
		return "", err
	}

	transcodedDir := filepath.Join(dir, "transcoded")
	if err := os.MkdirAll(transcodedDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create transcode directory: %w", err)
	}
	transcoded := filepath.Join(transcodedDir, "audio.mkv")

	if probe.AudioCodec == domain.TargetAudioCodec {
		data, err := os.ReadFile(extracted)
		if err != nil {
			return "", fmt.Errorf("failed to read extracted audio: %w", err)
		}
		if err := os.WriteFile(transcoded, data, 0644); err != nil {
			return "", fmt.Errorf("failed to copy compliant audio: %w", err)
		}
		return transcoded, nil
	}

	if err := s.transcoder.TranscodeAudio(ctx, extracted, transcoded); err != nil {
		return "", err
	}
	return transcoded, nil
}

// persist writes segments, audio and finally the metadata record. A failure
// after partial writes triggers compensating deletes so no orphaned chunks
// survive a failed ingestion.
func (s *videoService) persist(ctx context.Context, md domain.VideoMetadata, segments [][]byte, audioPath string) error {
	if err := s.chunks.PutVideoSegments(ctx, md.VideoID, segments); err != nil {
		// Segments are appended one by one, so a mid-write failure can
		// leave a partial stream behind.
		s.compensate(ctx, md.VideoID, false)
		return err
	}

	if audioPath != "" {
		audio, err := os.ReadFile(audioPath)
		if err != nil {
			s.compensate(ctx, md.VideoID, false)
			return fmt.Errorf("failed to read transcoded audio: %w", err)
		}
		if err := s.chunks.PutAudio(ctx, md.VideoID, audio); err != nil {
			s.compensate(ctx, md.VideoID, false)
			return err
		}
	}

	if err := s.registry.Put(ctx, md); err != nil {
		s.compensate(ctx, md.VideoID, audioPath != "")
		return err
	}
	return nil
}

func (s *videoService) compensate(ctx context.Context, videoID string, audioWritten bool) {
	log.Printf("↩️ Rolling back partial persistence for video %s", videoID)
	if err := s.chunks.DeleteVideoSegments(ctx, videoID); err != nil {
		log.Printf("⚠️ Compensating segment delete failed for %s: %v", videoID, err)
	}
	if audioWritten {
		if err := s.chunks.DeleteAudio(ctx, videoID); err != nil {
			log.Printf("⚠️ Compensating audio delete failed for %s: %v", videoID, err)
		}
	}
}
