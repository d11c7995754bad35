package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

type postgresMetadataRegistry struct {
	db *pgxpool.Pool
}

var _ ports.MetadataRegistry = (*postgresMetadataRegistry)(nil)

func NewPostgresMetadataRegistry(ctx context.Context, db *pgxpool.Pool) (ports.MetadataRegistry, error) {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS video_metadata (
			video_id TEXT PRIMARY KEY,
			duration INT NOT NULL,
			video_codec TEXT NOT NULL,
			audio_codec TEXT,
			resolution TEXT NOT NULL,
			fps INT NOT NULL,
			ingested_at TEXT NOT NULL,
			url TEXT NOT NULL,
			file_name TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, &domain.StoreError{Op: "create metadata table", Err: err}
	}
	return &postgresMetadataRegistry{db: db}, nil
}

func (r *postgresMetadataRegistry) Put(ctx context.Context, md domain.VideoMetadata) error {
	query := `
		INSERT INTO video_metadata (video_id, duration, video_codec, audio_codec, resolution, fps, ingested_at, url, file_name)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
		ON CONFLICT (video_id) DO UPDATE
		SET duration = EXCLUDED.duration,
			video_codec = EXCLUDED.video_codec,
			audio_codec = EXCLUDED.audio_codec,
			resolution = EXCLUDED.resolution,
			fps = EXCLUDED.fps,
			ingested_at = EXCLUDED.ingested_at,
			url = EXCLUDED.url,
			file_name = EXCLUDED.file_name
	`
	_, err := r.db.Exec(ctx, query,
		md.VideoID, md.Duration, md.VideoCodec, md.AudioCodec,
		md.Resolution, md.FPS, md.Timestamp, md.URL, md.FileName)
	if err != nil {
		return &domain.StoreError{Op: "put metadata", Err: err}
	}
	return nil
}

func (r *postgresMetadataRegistry) Get(ctx context.Context, videoID string) (*domain.VideoMetadata, error) {
	query := `SELECT video_id, duration, video_codec, COALESCE(audio_codec, ''), resolution, fps, ingested_at, url, file_name FROM video_metadata WHERE video_id = $1`
	md := &domain.VideoMetadata{}
	err := r.db.QueryRow(ctx, query, videoID).
		Scan(&md.VideoID, &md.Duration, &md.VideoCodec, &md.AudioCodec, &md.Resolution, &md.FPS, &md.Timestamp, &md.URL, &md.FileName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "get metadata", Err: err}
	}
	return md, nil
}

func (r *postgresMetadataRegistry) Exists(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM video_metadata WHERE video_id = $1)`, videoID).Scan(&exists)
	if err != nil {
		return false, &domain.StoreError{Op: "metadata exists", Err: err}
	}
	return exists, nil
}

func (r *postgresMetadataRegistry) ListAll(ctx context.Context) (map[string]domain.VideoMetadata, error) {
	query := `SELECT video_id, duration, video_codec, COALESCE(audio_codec, ''), resolution, fps, ingested_at, url, file_name FROM video_metadata`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, &domain.StoreError{Op: "list metadata", Err: err}
	}
	defer rows.Close()

	records := make(map[string]domain.VideoMetadata)
	for rows.Next() {
		var md domain.VideoMetadata
		err := rows.Scan(&md.VideoID, &md.Duration, &md.VideoCodec, &md.AudioCodec, &md.Resolution, &md.FPS, &md.Timestamp, &md.URL, &md.FileName)
		if err != nil {
			return nil, &domain.StoreError{Op: "list metadata", Err: err}
		}
		records[md.VideoID] = md
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list metadata", Err: err}
	}
	return records, nil
}

func (r *postgresMetadataRegistry) Delete(ctx context.Context, videoID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM video_metadata WHERE video_id = $1`, videoID)
	if err != nil {
		return false, &domain.StoreError{Op: "delete metadata", Err: err}
	}
	return tag.RowsAffected() > 0, nil
}
