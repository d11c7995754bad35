package ports

import (
	"context"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

// EventPublisher is the Outbound Port for lifecycle notifications. The
// service treats it as best-effort: publish failures are logged, never
// propagated to the caller.
type EventPublisher interface {
	VideoIngested(ctx context.Context, md domain.VideoMetadata) error
	VideoDeleted(ctx context.Context, videoID string) error
}
