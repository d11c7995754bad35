package ports

import (
	"context"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

// Transcoder is the Outbound Port for external media computation. It is an
// opaque capability: every method is a blocking, CPU-bound subprocess chain
// and must honor ctx cancellation. Failures come back as
// *domain.TranscoderError naming the stage.
type Transcoder interface {
	// Probe inspects a media file. The reported duration is floored to
	// whole seconds.
	Probe(ctx context.Context, file string) (domain.ProbeResult, error)

	// ExtractAudio stream-copies the audio track into output. Callers must
	// only invoke it when a probe reported an audio stream.
	ExtractAudio(ctx context.Context, input, output string) error

	// ExtractVideo stream-copies the video track into output.
	ExtractVideo(ctx context.Context, input, output string) error

	// TranscodeAudio re-encodes input to the target audio codec.
	TranscodeAudio(ctx context.Context, input, output string) error

	// SegmentVideo splits input into one-second chunks in the target video
	// codec under outputDir and returns the chunk files in index order.
	// Chunk i covers [i, i+1) seconds except the last, which covers the
	// fractional remainder.
	SegmentVideo(ctx context.Context, input, outputDir string) ([]string, error)

	// Concatenate stream-copies the given video files, in order, into one
	// elementary stream. No re-encode.
	Concatenate(ctx context.Context, inputs []string, output string) error

	// CutAudioRange trims input to the inclusive [start, end] seconds.
	// When end equals the stored duration the trailing bound is left open
	// so the full remainder of the track is kept.
	CutAudioRange(ctx context.Context, input, output string, start, end, duration int) error

	// Mux combines one video stream and an optional audio stream
	// (audio == "" means silent video) into a playable container.
	Mux(ctx context.Context, audio, video, output string) error
}
