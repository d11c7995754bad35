package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

// fsWorkspace hands out per-request scratch directories under a tmpfs base:
// ingress/<video_id> for uploads being chunked, egress/<fetch_id> for ranges
// being reassembled.
type fsWorkspace struct {
	ingressDir string
	egressDir  string
}

var _ ports.Workspace = (*fsWorkspace)(nil)

func NewFSWorkspace(baseDir string) (ports.Workspace, error) {
	ws := &fsWorkspace{
		ingressDir: filepath.Join(baseDir, "ingress"),
		egressDir:  filepath.Join(baseDir, "egress"),
	}
	for _, dir := range []string{ws.ingressDir, ws.egressDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}
	return ws, nil
}

func (w *fsWorkspace) NewIngestDir(videoID string) (string, error) {
	dir := filepath.Join(w.ingressDir, videoID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ingest directory: %w", err)
	}
	return dir, nil
}

func (w *fsWorkspace) NewEgressDir(fetchID string) (string, error) {
	dir := filepath.Join(w.egressDir, fetchID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create egress directory: %w", err)
	}
	return dir, nil
}

func (w *fsWorkspace) SaveUpload(dir string, source io.Reader) (string, error) {
	path := filepath.Join(dir, "video.mkv")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, source); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path, nil
}

func (w *fsWorkspace) Remove(dir string) error {
	return os.RemoveAll(dir)
}
