package transcoder

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

// pooledTranscoder bounds how many ffmpeg/ffprobe subprocesses run at once.
// Every invocation is CPU-bound; under load an unbounded fan-out would
// exhaust the host, so callers block on a semaphore sized to the core count.
type pooledTranscoder struct {
	inner ports.Transcoder
	sem   *semaphore.Weighted
}

func NewPooledTranscoder(inner ports.Transcoder, size int64) ports.Transcoder {
	return &pooledTranscoder{
		inner: inner,
		sem:   semaphore.NewWeighted(size),
	}
}

func (p *pooledTranscoder) Probe(ctx context.Context, file string) (domain.ProbeResult, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return domain.ProbeResult{}, err
	}
	defer p.sem.Release(1)
	return p.inner.Probe(ctx, file)
}

func (p *pooledTranscoder) ExtractAudio(ctx context.Context, input, output string) error {
	return p.dispatch(ctx, func() error { return p.inner.ExtractAudio(ctx, input, output) })
}

func (p *pooledTranscoder) ExtractVideo(ctx context.Context, input, output string) error {
	return p.dispatch(ctx, func() error { return p.inner.ExtractVideo(ctx, input, output) })
}

func (p *pooledTranscoder) TranscodeAudio(ctx context.Context, input, output string) error {
	return p.dispatch(ctx, func() error { return p.inner.TranscodeAudio(ctx, input, output) })
}

func (p *pooledTranscoder) SegmentVideo(ctx context.Context, input, outputDir string) ([]string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)
	return p.inner.SegmentVideo(ctx, input, outputDir)
}

func (p *pooledTranscoder) Concatenate(ctx context.Context, inputs []string, output string) error {
	return p.dispatch(ctx, func() error { return p.inner.Concatenate(ctx, inputs, output) })
}

func (p *pooledTranscoder) CutAudioRange(ctx context.Context, input, output string, start, end, duration int) error {
	return p.dispatch(ctx, func() error { return p.inner.CutAudioRange(ctx, input, output, start, end, duration) })
}

func (p *pooledTranscoder) Mux(ctx context.Context, audio, video, output string) error {
	return p.dispatch(ctx, func() error { return p.inner.Mux(ctx, audio, video, output) })
}

func (p *pooledTranscoder) dispatch(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
