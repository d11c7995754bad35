package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
)

const maxUploadBytes = 512 << 20

// Server is the thin HTTP surface over the video use case. It only parses
// requests, calls the core and maps typed errors to status codes.
type Server struct {
	videos ports.VideoUseCase
}

func NewServer(videos ports.VideoUseCase) *Server {
	return &Server{videos: videos}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /video/ingest", s.handleIngest)
	mux.HandleFunc("GET /video/all", s.handleListAll)
	mux.HandleFunc("GET /video/{file}", s.handleFetch)
	mux.HandleFunc("GET /video/{id}/information", s.handleInformation)
	mux.HandleFunc("DELETE /video/{id}", s.handleDelete)
	return mux
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("video")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "missing video file in form field 'video'")
		return
	}
	defer file.Close()

	md, err := s.videos.Ingest(r.Context(), file, header.Filename)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	videos, err := s.videos.ListAll(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	videoID := strings.TrimSuffix(file, ".webm")
	if videoID == file || videoID == "" {
		writeMessage(w, http.StatusNotFound, "unknown resource")
		return
	}

	start, err := queryInt(r, "start", 0)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "start must be an integer")
		return
	}
	end, err := queryInt(r, "end", -1)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "end must be an integer")
		return
	}

	path, err := s.videos.FetchRange(r.Context(), videoID, start, end)
	if err != nil {
		writeErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "video/webm")
	http.ServeFile(w, r, path)
}

func (s *Server) handleInformation(w http.ResponseWriter, r *http.Request) {
	md, err := s.videos.GetMetadata(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.videos.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeErr(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Video deleted")
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeErr(w http.ResponseWriter, err error) {
	var rangeErr *domain.InvalidRangeError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Video not found")
	case errors.As(err, &rangeErr):
		writeMessage(w, http.StatusBadRequest, rangeErr.Error())
	default:
		log.Printf("❌ Request failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️ Could not encode response: %v", err)
	}
}
