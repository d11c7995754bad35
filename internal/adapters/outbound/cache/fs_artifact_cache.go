package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

// fsArtifactCache keeps reconstructed artifacts under one directory per
// video. Artifact names encode the canonical (start, end) bounds:
//
//	<id>.webm              start=0, end=-1 (whole video)
//	<id>_<start>_<end>.webm  everything else; end=-1 with start!=0 is
//	                         resolved to the stored duration first.
//
// Requesting end=duration explicitly and end=-1 therefore produce two
// distinct entries for the same trailing range when start=0. That asymmetry
// is part of the naming contract and is kept as-is.
type fsArtifactCache struct {
	baseDir string
}

var _ ports.ArtifactCache = (*fsArtifactCache)(nil)

func NewFSArtifactCache(baseDir string) (ports.ArtifactCache, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &fsArtifactCache{baseDir: baseDir}, nil
}

func (c *fsArtifactCache) CanonicalPath(videoID string, start, end, duration int) string {
	dir := filepath.Join(c.baseDir, videoID)

	switch {
	case start == 0 && end == -1:
		return filepath.Join(dir, videoID+".webm")
	case start == 0:
		return filepath.Join(dir, fmt.Sprintf("%s_%d_%d.webm", videoID, start, end))
	case end == -1:
		return filepath.Join(dir, fmt.Sprintf("%s_%d_%d.webm", videoID, start, duration))
	default:
		return filepath.Join(dir, fmt.Sprintf("%s_%d_%d.webm", videoID, start, end))
	}
}

func (c *fsArtifactCache) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Publish moves a finished artifact to its canonical path. The final step is
// always a rename on the cache filesystem, so readers never observe a torn
// file and the last concurrent publisher wins.
func (c *fsArtifactCache) Publish(tempPath, canonicalPath string) error {
	if err := os.MkdirAll(filepath.Dir(canonicalPath), 0755); err != nil {
		return fmt.Errorf("failed to create video cache directory: %w", err)
	}

	if err := os.Rename(tempPath, canonicalPath); err == nil {
		return nil
	}

	// The scratch directory may live on a different filesystem than the
	// cache. Stage a copy next to the destination, then rename.
	staging := canonicalPath + ".publish"
	if err := copyFile(tempPath, staging); err != nil {
		return err
	}
	if err := os.Rename(staging, canonicalPath); err != nil {
		os.Remove(staging)
		return fmt.Errorf("failed to publish artifact: %w", err)
	}
	return os.Remove(tempPath)
}

func (c *fsArtifactCache) PurgeVideo(videoID string) error {
	if err := os.RemoveAll(filepath.Join(c.baseDir, videoID)); err != nil {
		return fmt.Errorf("failed to purge video cache: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to stage artifact: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to stage artifact: %w", err)
	}
	return out.Close()
}
