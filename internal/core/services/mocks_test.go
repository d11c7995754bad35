package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

type MockMetadataRegistry struct {
	mock.Mock
}

func (m *MockMetadataRegistry) Put(ctx context.Context, md domain.VideoMetadata) error {
	args := m.Called(ctx, md)
	return args.Error(0)
}

func (m *MockMetadataRegistry) Get(ctx context.Context, videoID string) (*domain.VideoMetadata, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VideoMetadata), args.Error(1)
}

func (m *MockMetadataRegistry) Exists(ctx context.Context, videoID string) (bool, error) {
	args := m.Called(ctx, videoID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMetadataRegistry) ListAll(ctx context.Context) (map[string]domain.VideoMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.VideoMetadata), args.Error(1)
}

func (m *MockMetadataRegistry) Delete(ctx context.Context, videoID string) (bool, error) {
	args := m.Called(ctx, videoID)
	return args.Bool(0), args.Error(1)
}

type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) PutVideoSegments(ctx context.Context, videoID string, segments [][]byte) error {
	args := m.Called(ctx, videoID, segments)
	return args.Error(0)
}

func (m *MockChunkStore) GetVideoSegments(ctx context.Context, videoID string) ([]domain.SegmentChunk, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SegmentChunk), args.Error(1)
}

func (m *MockChunkStore) PutAudio(ctx context.Context, videoID string, audio []byte) error {
	args := m.Called(ctx, videoID, audio)
	return args.Error(0)
}

func (m *MockChunkStore) GetAudio(ctx context.Context, videoID string) ([]byte, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockChunkStore) DeleteVideoSegments(ctx context.Context, videoID string) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

func (m *MockChunkStore) DeleteAudio(ctx context.Context, videoID string) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

type MockArtifactCache struct {
	mock.Mock
}

func (m *MockArtifactCache) CanonicalPath(videoID string, start, end, duration int) string {
	args := m.Called(videoID, start, end, duration)
	return args.String(0)
}

func (m *MockArtifactCache) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockArtifactCache) Publish(tempPath, canonicalPath string) error {
	args := m.Called(tempPath, canonicalPath)
	return args.Error(0)
}

func (m *MockArtifactCache) PurgeVideo(videoID string) error {
	args := m.Called(videoID)
	return args.Error(0)
}

type MockWorkspace struct {
	mock.Mock
}

func (m *MockWorkspace) NewIngestDir(videoID string) (string, error) {
	args := m.Called(videoID)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspace) NewEgressDir(fetchID string) (string, error) {
	args := m.Called(fetchID)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspace) SaveUpload(dir string, source io.Reader) (string, error) {
	args := m.Called(dir, source)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspace) Remove(dir string) error {
	args := m.Called(dir)
	return args.Error(0)
}

type MockTranscoder struct {
	mock.Mock
}

func (m *MockTranscoder) Probe(ctx context.Context, file string) (domain.ProbeResult, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(domain.ProbeResult), args.Error(1)
}

func (m *MockTranscoder) ExtractAudio(ctx context.Context, input, output string) error {
	args := m.Called(ctx, input, output)
	return args.Error(0)
}

func (m *MockTranscoder) ExtractVideo(ctx context.Context, input, output string) error {
	args := m.Called(ctx, input, output)
	return args.Error(0)
}

func (m *MockTranscoder) TranscodeAudio(ctx context.Context, input, output string) error {
	args := m.Called(ctx, input, output)
	return args.Error(0)
}

func (m *MockTranscoder) SegmentVideo(ctx context.Context, input, outputDir string) ([]string, error) {
	args := m.Called(ctx, input, outputDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTranscoder) Concatenate(ctx context.Context, inputs []string, output string) error {
	args := m.Called(ctx, inputs, output)
	return args.Error(0)
}

func (m *MockTranscoder) CutAudioRange(ctx context.Context, input, output string, start, end, duration int) error {
	args := m.Called(ctx, input, output, start, end, duration)
	return args.Error(0)
}

func (m *MockTranscoder) Mux(ctx context.Context, audio, video, output string) error {
	args := m.Called(ctx, audio, video, output)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) VideoIngested(ctx context.Context, md domain.VideoMetadata) error {
	args := m.Called(ctx, md)
	return args.Error(0)
}

func (m *MockEventPublisher) VideoDeleted(ctx context.Context, videoID string) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}
