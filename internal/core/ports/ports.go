package ports

import (
	"context"
	"io"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

// VideoUseCase is the Inbound Port consumed by the API layer.
type VideoUseCase interface {
	Ingest(ctx context.Context, source io.Reader, fileName string) (*domain.VideoMetadata, error)
	ListAll(ctx context.Context) ([]domain.VideoMetadata, error)
	GetMetadata(ctx context.Context, videoID string) (*domain.VideoMetadata, error)
	FetchRange(ctx context.Context, videoID string, start, end int) (string, error)
	Delete(ctx context.Context, videoID string) error
}

// MetadataRegistry is the Outbound Port for the durable video_id -> metadata
// mapping. Records are replaced wholesale, never patched. Get returns
// (nil, nil) when the id is unknown; an error always means backend failure.
type MetadataRegistry interface {
	Put(ctx context.Context, md domain.VideoMetadata) error
	Get(ctx context.Context, videoID string) (*domain.VideoMetadata, error)
	Exists(ctx context.Context, videoID string) (bool, error)
	ListAll(ctx context.Context) (map[string]domain.VideoMetadata, error)
	Delete(ctx context.Context, videoID string) (bool, error)
}

// ChunkStore is the Outbound Port for per-video ordered segments and the
// optional whole-track audio blob. GetVideoSegments returns the full segment
// set in unspecified order; callers filter and sort by index. GetAudio
// returns (nil, nil) when the video has no stored audio.
type ChunkStore interface {
	PutVideoSegments(ctx context.Context, videoID string, segments [][]byte) error
	GetVideoSegments(ctx context.Context, videoID string) ([]domain.SegmentChunk, error)
	PutAudio(ctx context.Context, videoID string, audio []byte) error
	GetAudio(ctx context.Context, videoID string) ([]byte, error)
	DeleteVideoSegments(ctx context.Context, videoID string) error
	DeleteAudio(ctx context.Context, videoID string) error
}

// ArtifactCache is the Outbound Port for reconstructed range artifacts.
// CanonicalPath must be deterministic for a (videoID, start, end, duration)
// tuple and Publish must be atomic so concurrent publishers cannot produce a
// torn file.
type ArtifactCache interface {
	CanonicalPath(videoID string, start, end, duration int) string
	Exists(path string) bool
	Publish(tempPath, canonicalPath string) error
	PurgeVideo(videoID string) error
}

// Workspace is the Outbound Port for per-request scratch directories. Every
// directory handed out must be removed by the caller on success and failure.
type Workspace interface {
	NewIngestDir(videoID string) (string, error)
	NewEgressDir(fetchID string) (string, error)
	SaveUpload(dir string, source io.Reader) (string, error)
	Remove(dir string) error
}
