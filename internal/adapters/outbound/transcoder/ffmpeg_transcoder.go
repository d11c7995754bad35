package transcoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

// ffmpegTranscoder shells out to ffmpeg/ffprobe with argument vectors. Paths
// are never interpolated into a shell string.
type ffmpegTranscoder struct{}

func NewFFmpegTranscoder() ports.Transcoder {
	return &ffmpegTranscoder{}
}

func (t *ffmpegTranscoder) Probe(ctx context.Context, file string) (domain.ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		file,
	)
	out, err := cmd.Output()
	if err != nil {
		return domain.ProbeResult{}, &domain.TranscoderError{
			Stage: domain.StageProbe,
			Err:   fmt.Errorf("ffprobe error: %w", err),
		}
	}

	result, err := parseProbeOutput(out)
	if err != nil {
		return domain.ProbeResult{}, &domain.TranscoderError{Stage: domain.StageProbe, Err: err}
	}
	return result, nil
}

func (t *ffmpegTranscoder) ExtractAudio(ctx context.Context, input, output string) error {
	return t.run(ctx, domain.StageExtract,
		"-i", input,
		"-vn",
		"-acodec", "copy",
		output,
	)
}

func (t *ffmpegTranscoder) ExtractVideo(ctx context.Context, input, output string) error {
	return t.run(ctx, domain.StageExtract,
		"-i", input,
		"-an",
		"-vcodec", "copy",
		output,
	)
}

func (t *ffmpegTranscoder) TranscodeAudio(ctx context.Context, input, output string) error {
	return t.run(ctx, domain.StageTranscode,
		"-i", input,
		"-c:a", "libopus",
		"-b:a", "64k",
		"-vbr", "on",
		"-compression_level", "10",
		output,
	)
}

// SegmentVideo cuts input into one-second vp9 chunks. The trailing chunk
// covers the fractional remainder when the duration is not a whole number of
// seconds.
func (t *ffmpegTranscoder) SegmentVideo(ctx context.Context, input, outputDir string) ([]string, error) {
	duration, err := t.probeDuration(ctx, input)
	if err != nil {
		return nil, err
	}

	whole := int(duration)
	chunks := make([]string, 0, whole+1)
	for i := 0; i < whole; i++ {
		output := filepath.Join(outputDir, fmt.Sprintf("chunk_%d.mkv", i))
		err := t.run(ctx, domain.StageSegment,
			"-i", input,
			"-ss", strconv.Itoa(i),
			"-t", "1",
			"-c:v", "libvpx-vp9",
			output,
		)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, output)
	}

	if remainder := duration - float64(whole); remainder > 0 {
		output := filepath.Join(outputDir, fmt.Sprintf("chunk_%d.mkv", whole))
		err := t.run(ctx, domain.StageSegment,
			"-i", input,
			"-ss", strconv.Itoa(whole),
			"-t", strconv.FormatFloat(remainder, 'f', -1, 64),
			"-c:v", "libvpx-vp9",
			output,
		)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, output)
	}
	return chunks, nil
}

// Concatenate joins the chunk files with the concat demuxer, stream copy
// only. The list file lives next to the output so workspace cleanup removes
// it with everything else.
func (t *ffmpegTranscoder) Concatenate(ctx context.Context, inputs []string, output string) error {
	var list strings.Builder
	for _, input := range inputs {
		fmt.Fprintf(&list, "file '%s'\n", input)
	}

	listPath := filepath.Join(filepath.Dir(output), "video_input.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return &domain.TranscoderError{
			Stage: domain.StageConcat,
			Err:   fmt.Errorf("failed to write concat list: %w", err),
		}
	}

	return t.run(ctx, domain.StageConcat,
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		output,
	)
}

func (t *ffmpegTranscoder) CutAudioRange(ctx context.Context, input, output string, start, end, duration int) error {
	return t.run(ctx, domain.StageCut, cutAudioArgs(input, output, start, end, duration)...)
}

func (t *ffmpegTranscoder) Mux(ctx context.Context, audio, video, output string) error {
	return t.run(ctx, domain.StageMux, muxArgs(audio, video, output)...)
}

// cutAudioArgs trims to [start, end] inclusive. When end is the stored
// duration the -t bound is omitted so the whole remainder of the track is
// kept, matching how the last partial video segment is handled.
func cutAudioArgs(input, output string, start, end, duration int) []string {
	args := []string{"-i", input, "-ss", strconv.Itoa(start)}
	if end != duration {
		args = append(args, "-t", strconv.Itoa(end-start+1))
	}
	return append(args, "-c", "copy", output)
}

func muxArgs(audio, video, output string) []string {
	if audio == "" {
		return []string{"-i", video, "-c:v", "copy", "-y", output}
	}
	return []string{
		"-i", audio,
		"-i", video,
		"-c:v", "copy",
		"-c:a", "copy",
		"-y", output,
	}
}

func (t *ffmpegTranscoder) probeDuration(ctx context.Context, input string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, &domain.TranscoderError{
			Stage: domain.StageSegment,
			Err:   fmt.Errorf("ffprobe duration error: %w", err),
		}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, &domain.TranscoderError{
			Stage: domain.StageSegment,
			Err:   fmt.Errorf("unparseable duration %q: %w", strings.TrimSpace(string(out)), err),
		}
	}
	return duration, nil
}

func (t *ffmpegTranscoder) run(ctx context.Context, stage string, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return &domain.TranscoderError{Stage: stage, Err: ctx.Err()}
		}
		return &domain.TranscoderError{
			Stage: stage,
			Err:   fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output)),
		}
	}
	return nil
}
