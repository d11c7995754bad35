package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

const (
	streamName      = "VIDEOS"
	subjectIngested = "video.ingested"
	subjectDeleted  = "video.deleted"
)

type NatsPublisherAdapter struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

var _ ports.EventPublisher = (*NatsPublisherAdapter)(nil)

type videoEvent struct {
	VideoID  string `json:"video_id"`
	FileName string `json:"file_name,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

func NewNatsPublisherAdapter(url string) (*NatsPublisherAdapter, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("error getting JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"video.>"},
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, fmt.Errorf("error ensuring NATS stream: %w", err)
	}

	return &NatsPublisherAdapter{nc: nc, js: js}, nil
}

func (a *NatsPublisherAdapter) VideoIngested(ctx context.Context, md domain.VideoMetadata) error {
	return a.publish(ctx, subjectIngested, videoEvent{
		VideoID:  md.VideoID,
		FileName: md.FileName,
		Duration: md.Duration,
	})
}

func (a *NatsPublisherAdapter) VideoDeleted(ctx context.Context, videoID string) error {
	return a.publish(ctx, subjectDeleted, videoEvent{VideoID: videoID})
}

func (a *NatsPublisherAdapter) publish(ctx context.Context, subject string, event videoEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}
	if _, err := a.js.Publish(subject, payload, nats.Context(ctx)); err != nil {
		return fmt.Errorf("error publishing to %s: %w", subject, err)
	}
	return nil
}

func (a *NatsPublisherAdapter) Close() {
	a.nc.Close()
}
