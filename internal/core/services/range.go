package services

import (
	"github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/domain"
)

// resolveEnd maps the end=-1 sentinel ("through end of video") to the stored
// duration. The segment index set and the audio cut both use this single
// resolution so the last partial segment and the audio trim agree on the
// boundary.
func resolveEnd(end, duration int) int {
	if end == -1 {
		return duration
	}
	return end
}

// validateRange checks a fetch request against the stored duration. Checks
// run in a fixed order and each violation is rejected with its own reason.
func validateRange(start, end, duration int) error {
	if start < 0 {
		return &domain.InvalidRangeError{Start: start, End: end, Reason: "start must be >= 0"}
	}
	if end < -1 {
		return &domain.InvalidRangeError{Start: start, End: end, Reason: "end must be >= -1"}
	}
	if end != -1 && start > end {
		return &domain.InvalidRangeError{Start: start, End: end, Reason: "start must be <= end"}
	}
	if start > duration {
		return &domain.InvalidRangeError{Start: start, End: end, Reason: "start must be <= video duration"}
	}
	if end != -1 && end > duration {
		return &domain.InvalidRangeError{Start: start, End: end, Reason: "end must be <= video duration"}
	}
	return nil
}
