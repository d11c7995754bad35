package transcoder

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbeOutput(raw []byte) (domain.ProbeResult, error) {
	var probe probeOutput
	if err := json.Unmarshal(raw, &probe); err != nil {
		return domain.ProbeResult{}, fmt.Errorf("unparseable ffprobe output: %w", err)
	}

	var result domain.ProbeResult
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			result.VideoCodec = stream.CodecName
			result.Resolution = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
			result.FPS = parseFrameRate(stream.AvgFrameRate)
		case "audio":
			result.AudioCodec = stream.CodecName
		}
	}

	if probe.Format.Duration == "" {
		return domain.ProbeResult{}, fmt.Errorf("ffprobe output has no duration")
	}
	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return domain.ProbeResult{}, fmt.Errorf("unparseable duration %q: %w", probe.Format.Duration, err)
	}
	result.Duration = int(duration)

	return result, nil
}

// parseFrameRate floors an ffprobe rational like "30000/1001" to whole
// frames per second.
func parseFrameRate(rate string) int {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		if n, err := strconv.Atoi(strings.TrimSpace(rate)); err == nil {
			return n
		}
		return 0
	}

	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
