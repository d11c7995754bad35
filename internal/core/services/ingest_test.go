package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

type ingestFixture struct {
	registry *MockMetadataRegistry
	chunks   *MockChunkStore
	cache    *MockArtifactCache
	ws       *MockWorkspace
	tc       *MockTranscoder
	events   *MockEventPublisher
	svc      *videoService

	dir    string
	upload string
}

func newIngestFixture(t *testing.T) *ingestFixture {
	f := &ingestFixture{
		registry: new(MockMetadataRegistry),
		chunks:   new(MockChunkStore),
		cache:    new(MockArtifactCache),
		ws:       new(MockWorkspace),
		tc:       new(MockTranscoder),
		events:   new(MockEventPublisher),
	}
	f.svc = NewVideoService(f.registry, f.chunks, f.cache, f.ws, f.tc, f.events)

	f.dir = t.TempDir()
	f.upload = filepath.Join(f.dir, "video.mkv")
	f.ws.On("NewIngestDir", mock.AnythingOfType("string")).Return(f.dir, nil)
	f.ws.On("SaveUpload", f.dir, mock.Anything).Return(f.upload, nil)
	f.ws.On("Remove", f.dir).Return(nil)
	return f
}

// expectSegmentation makes the transcoder mock produce real chunk files, the
// way ffmpeg would, so the service can read them back for persistence.
func (f *ingestFixture) expectSegmentation(t *testing.T, ctx context.Context, payloads ...string) {
	segmentDir := filepath.Join(f.dir, "disassembled", "video")
	videoStream := filepath.Join(f.dir, "extracted", "video.mkv")

	files := make([]string, len(payloads))
	for i := range payloads {
		files[i] = filepath.Join(segmentDir, fmt.Sprintf("chunk_%d.mkv", i))
	}

	f.tc.On("ExtractVideo", ctx, f.upload, videoStream).Return(nil)
	f.tc.On("SegmentVideo", ctx, videoStream, segmentDir).Return(files, nil).
		Run(func(mock.Arguments) {
			for i, payload := range payloads {
				assert.NoError(t, os.WriteFile(files[i], []byte(payload), 0644))
			}
		})
}

func TestVideoService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("success with non-compliant audio", func(t *testing.T) {
		f := newIngestFixture(t)

		f.tc.On("Probe", ctx, f.upload).Return(domain.ProbeResult{
			Duration: 2, VideoCodec: "h264", AudioCodec: "aac", Resolution: "1280x720", FPS: 30,
		}, nil)
		f.expectSegmentation(t, ctx, "seg0", "seg1", "seg2")

		extractedAudio := filepath.Join(f.dir, "extracted", "audio.mkv")
		transcodedAudio := filepath.Join(f.dir, "transcoded", "audio.mkv")
		f.tc.On("ExtractAudio", ctx, f.upload, extractedAudio).Return(nil).
			Run(func(mock.Arguments) {
				assert.NoError(t, os.WriteFile(extractedAudio, []byte("raw audio"), 0644))
			})
		f.tc.On("TranscodeAudio", ctx, extractedAudio, transcodedAudio).Return(nil).
			Run(func(mock.Arguments) {
				assert.NoError(t, os.WriteFile(transcodedAudio, []byte("opus audio"), 0644))
			})

		f.chunks.On("PutVideoSegments", ctx, mock.AnythingOfType("string"),
			[][]byte{[]byte("seg0"), []byte("seg1"), []byte("seg2")}).Return(nil)
		f.chunks.On("PutAudio", ctx, mock.AnythingOfType("string"), []byte("opus audio")).Return(nil)
		f.registry.On("Put", ctx, mock.MatchedBy(func(md domain.VideoMetadata) bool {
			return md.Duration == 2 && md.AudioCodec == "aac" && md.FileName == "clip.mp4" &&
				md.URL == "/video/"+md.VideoID+".webm"
		})).Return(nil)
		f.events.On("VideoIngested", ctx, mock.AnythingOfType("domain.VideoMetadata")).Return(nil)

		md, err := f.svc.Ingest(ctx, strings.NewReader("upload"), "clip.mp4")

		assert.NoError(t, err)
		assert.Equal(t, 2, md.Duration)
		assert.Equal(t, "aac", md.AudioCodec)
		assert.NotEmpty(t, md.VideoID)
		f.registry.AssertExpectations(t)
		f.chunks.AssertExpectations(t)
		f.tc.AssertExpectations(t)
		f.ws.AssertCalled(t, "Remove", f.dir)
	})

	t.Run("compliant audio is copied without re-encoding", func(t *testing.T) {
		f := newIngestFixture(t)

		f.tc.On("Probe", ctx, f.upload).Return(domain.ProbeResult{
			Duration: 1, VideoCodec: "h264", AudioCodec: domain.TargetAudioCodec, Resolution: "640x480", FPS: 24,
		}, nil)
		f.expectSegmentation(t, ctx, "seg0")

		extractedAudio := filepath.Join(f.dir, "extracted", "audio.mkv")
		f.tc.On("ExtractAudio", ctx, f.upload, extractedAudio).Return(nil).
			Run(func(mock.Arguments) {
				assert.NoError(t, os.WriteFile(extractedAudio, []byte("already opus"), 0644))
			})

		f.chunks.On("PutVideoSegments", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		f.chunks.On("PutAudio", ctx, mock.AnythingOfType("string"), []byte("already opus")).Return(nil)
		f.registry.On("Put", ctx, mock.AnythingOfType("domain.VideoMetadata")).Return(nil)
		f.events.On("VideoIngested", ctx, mock.Anything).Return(nil)

		_, err := f.svc.Ingest(ctx, strings.NewReader("upload"), "clip.mkv")

		assert.NoError(t, err)
		f.tc.AssertNotCalled(t, "TranscodeAudio", mock.Anything, mock.Anything, mock.Anything)
		f.chunks.AssertExpectations(t)
	})

	t.Run("video already in target codec is still re-segmented", func(t *testing.T) {
		f := newIngestFixture(t)

		f.tc.On("Probe", ctx, f.upload).Return(domain.ProbeResult{
			Duration: 1, VideoCodec: domain.TargetVideoCodec, Resolution: "640x480", FPS: 24,
		}, nil)
		f.expectSegmentation(t, ctx, "seg0")

		f.chunks.On("PutVideoSegments", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		f.registry.On("Put", ctx, mock.AnythingOfType("domain.VideoMetadata")).Return(nil)
		f.events.On("VideoIngested", ctx, mock.Anything).Return(nil)

		_, err := f.svc.Ingest(ctx, strings.NewReader("upload"), "clip.webm")

		assert.NoError(t, err)
		f.tc.AssertCalled(t, "SegmentVideo", ctx, mock.Anything, mock.Anything)
	})

	t.Run("silent video skips the audio path entirely", func(t *testing.T) {
		f := newIngestFixture(t)

		f.tc.On("Probe", ctx, f.upload).Return(domain.ProbeResult{
			Duration: 1, VideoCodec: "h264", Resolution: "640x480", FPS: 24,
		}, nil)
		f.expectSegmentation(t, ctx, "seg0")

		f.chunks.On("PutVideoSegments", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		f.registry.On("Put", ctx, mock.MatchedBy(func(md domain.VideoMetadata) bool {
			return !md.HasAudio()
		})).Return(nil)
		f.events.On("VideoIngested", ctx, mock.Anything).Return(nil)

		_, err := f.svc.Ingest(ctx, strings.NewReader("upload"), "silent.mp4")

		assert.NoError(t, err)
		f.tc.AssertNotCalled(t, "ExtractAudio", mock.Anything, mock.Anything, mock.Anything)
		f.chunks.AssertNotCalled(t, "PutAudio", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("probe failure aborts before any persistence", func(t *testing.T) {
		f := newIngestFixture(t)

		f.tc.On("Probe", ctx, f.upload).Return(domain.ProbeResult{},
			&domain.TranscoderError{Stage: domain.StageProbe, Err: errors.New("moov atom not found")})

		_, err := f.svc.Ingest(ctx, strings.NewReader("garbage"), "broken.mp4")

		var tcErr *domain.TranscoderError
		assert.ErrorAs(t, err, &tcErr)
		assert.Equal(t, domain.StageProbe, tcErr.Stage)
		f.chunks.AssertNotCalled(t, "PutVideoSegments", mock.Anything, mock.Anything, mock.Anything)
		f.registry.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		f.ws.AssertCalled(t, "Remove", f.dir)
	})

	t.Run("metadata write failure rolls back segments and audio", func(t *testing.T) {
		f := newIngestFixture(t)

		f.tc.On("Probe", ctx, f.upload).Return(domain.ProbeResult{
			Duration: 1, VideoCodec: "h264", AudioCodec: "aac", Resolution: "640x480", FPS: 24,
		}, nil)
		f.expectSegmentation(t, ctx, "seg0")

		extractedAudio := filepath.Join(f.dir, "extracted", "audio.mkv")
		transcodedAudio := filepath.Join(f.dir, "transcoded", "audio.mkv")
		f.tc.On("ExtractAudio", ctx, f.upload, extractedAudio).Return(nil).
			Run(func(mock.Arguments) {
				assert.NoError(t, os.WriteFile(extractedAudio, []byte("raw"), 0644))
			})
		f.tc.On("TranscodeAudio", ctx, extractedAudio, transcodedAudio).Return(nil).
			Run(func(mock.Arguments) {
				assert.NoError(t, os.WriteFile(transcodedAudio, []byte("opus"), 0644))
			})

		f.chunks.On("PutVideoSegments", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		f.chunks.On("PutAudio", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		f.registry.On("Put", ctx, mock.Anything).
			Return(&domain.StoreError{Op: "put metadata", Err: errors.New("connection reset")})
		f.chunks.On("DeleteVideoSegments", ctx, mock.AnythingOfType("string")).Return(nil)
		f.chunks.On("DeleteAudio", ctx, mock.AnythingOfType("string")).Return(nil)

		_, err := f.svc.Ingest(ctx, strings.NewReader("upload"), "clip.mp4")

		var storeErr *domain.StoreError
		assert.ErrorAs(t, err, &storeErr)
		f.chunks.AssertCalled(t, "DeleteVideoSegments", ctx, mock.AnythingOfType("string"))
		f.chunks.AssertCalled(t, "DeleteAudio", ctx, mock.AnythingOfType("string"))
		f.events.AssertNotCalled(t, "VideoIngested", mock.Anything, mock.Anything)
	})

	t.Run("segment write failure rolls back the partial stream", func(t *testing.T) {
		f := newIngestFixture(t)

		f.tc.On("Probe", ctx, f.upload).Return(domain.ProbeResult{
			Duration: 1, VideoCodec: "h264", Resolution: "640x480", FPS: 24,
		}, nil)
		f.expectSegmentation(t, ctx, "seg0")

		f.chunks.On("PutVideoSegments", ctx, mock.AnythingOfType("string"), mock.Anything).
			Return(&domain.StoreError{Op: "put video segments", Err: errors.New("connection reset")})
		f.chunks.On("DeleteVideoSegments", ctx, mock.AnythingOfType("string")).Return(nil)

		_, err := f.svc.Ingest(ctx, strings.NewReader("upload"), "clip.mp4")

		var storeErr *domain.StoreError
		assert.ErrorAs(t, err, &storeErr)
		f.chunks.AssertCalled(t, "DeleteVideoSegments", ctx, mock.AnythingOfType("string"))
		f.chunks.AssertNotCalled(t, "DeleteAudio", mock.Anything, mock.Anything)
		f.registry.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("audio write failure rolls back segments", func(t *testing.T) {
		f := newIngestFixture(t)

		f.tc.On("Probe", ctx, f.upload).Return(domain.ProbeResult{
			Duration: 1, VideoCodec: "h264", AudioCodec: domain.TargetAudioCodec, Resolution: "640x480", FPS: 24,
		}, nil)
		f.expectSegmentation(t, ctx, "seg0")

		extractedAudio := filepath.Join(f.dir, "extracted", "audio.mkv")
		f.tc.On("ExtractAudio", ctx, f.upload, extractedAudio).Return(nil).
			Run(func(mock.Arguments) {
				assert.NoError(t, os.WriteFile(extractedAudio, []byte("opus"), 0644))
			})

		f.chunks.On("PutVideoSegments", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		f.chunks.On("PutAudio", ctx, mock.AnythingOfType("string"), mock.Anything).
			Return(&domain.StoreError{Op: "put audio", Err: errors.New("oom")})
		f.chunks.On("DeleteVideoSegments", ctx, mock.AnythingOfType("string")).Return(nil)

		_, err := f.svc.Ingest(ctx, strings.NewReader("upload"), "clip.mp4")

		assert.Error(t, err)
		f.chunks.AssertCalled(t, "DeleteVideoSegments", ctx, mock.AnythingOfType("string"))
		f.chunks.AssertNotCalled(t, "DeleteAudio", mock.Anything, mock.Anything)
		f.registry.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})
}
