package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Target codecs every stored video conforms to. Video is always re-encoded
// into one-second vp9 chunks at ingestion; audio is only re-encoded when the
// source codec differs.
const (
	TargetVideoCodec = "vp9"
	TargetAudioCodec = "opus"
)

// VideoMetadata is the durable record for one ingested video. It is written
// once at the end of ingestion and never patched afterwards.
type VideoMetadata struct {
	VideoID    string `json:"video_id"`
	Duration   int    `json:"duration"` // floor of the probed duration, in seconds
	VideoCodec string `json:"video_codec"`
	AudioCodec string `json:"audio_codec,omitempty"` // empty means silent video
	Resolution string `json:"resolution"`
	FPS        int    `json:"fps"`
	Timestamp  string `json:"timestamp"`
	URL        string `json:"url"`
	FileName   string `json:"file_name"`
}

// HasAudio reports whether the source carried an audio stream.
func (m VideoMetadata) HasAudio() bool {
	return m.AudioCodec != ""
}

// SegmentChunk is one fixed-duration slice of a video's elementary stream.
// Indices for a video are contiguous from 0; chunk i covers second i to i+1,
// except the last chunk which covers the fractional remainder.
type SegmentChunk struct {
	Index int
	Data  []byte
}

// ProbeResult is what the transcoder reports about a media file.
type ProbeResult struct {
	Duration   int // floored seconds
	VideoCodec string
	AudioCodec string // empty when no audio stream
	Resolution string
	FPS        int
}

// MetadataTimeFormat is the layout used for VideoMetadata.Timestamp.
const MetadataTimeFormat = "2006-01-02 15:04:05"

// NewTimestamp formats t for storage in VideoMetadata.
func NewTimestamp(t time.Time) string {
	return t.UTC().Format(MetadataTimeFormat)
}

// NewVideoID generates a new video id, a UUID without '-' characters.
func NewVideoID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewFetchID generates a scratch-directory id for one egress request.
func NewFetchID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
