package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

var (
	ingestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chunkstore_ingest_duration_seconds",
		Help:    "Duration of video ingestion in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	videosIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chunkstore_videos_ingested_total",
		Help: "Total number of videos ingested",
	}, []string{"status"})

	egressDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chunkstore_egress_duration_seconds",
		Help:    "Duration of range reconstruction in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	rangesServedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chunkstore_ranges_served_total",
		Help: "Total number of range requests served",
	}, []string{"status"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chunkstore_cache_lookups_total",
		Help: "Total number of artifact cache lookups",
	}, []string{"result"})
)

type videoService struct {
	registry   ports.MetadataRegistry
	chunks     ports.ChunkStore
	cache      ports.ArtifactCache
	workspace  ports.Workspace
	transcoder ports.Transcoder
	events     ports.EventPublisher // optional, may be nil

	// inflight deduplicates concurrent reconstructions of the same
	// canonical cache key.
	inflight singleflight.Group
}

var _ ports.VideoUseCase = (*videoService)(nil)

func NewVideoService(
	registry ports.MetadataRegistry,
	chunks ports.ChunkStore,
	cache ports.ArtifactCache,
	workspace ports.Workspace,
	transcoder ports.Transcoder,
	events ports.EventPublisher,
) *videoService {
	return &videoService{
		registry:   registry,
		chunks:     chunks,
		cache:      cache,
		workspace:  workspace,
		transcoder: transcoder,
		events:     events,
	}
}
