package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a video id has no metadata record.
var ErrNotFound = errors.New("video not found")

// Transcoder pipeline stages, used to name the failing step in a
// TranscoderError.
const (
	StageProbe     = "probe"
	StageExtract   = "extract"
	StageTranscode = "transcode"
	StageSegment   = "segment"
	StageConcat    = "concat"
	StageCut       = "cut"
	StageMux       = "mux"
)

// InvalidRangeError rejects a fetch request whose start/end violate the
// range rules. It is returned before any work begins.
type InvalidRangeError struct {
	Start  int
	End    int
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range [%d, %d]: %s", e.Start, e.End, e.Reason)
}

// TranscoderError wraps a failed external media computation with the
// pipeline stage it happened in.
type TranscoderError struct {
	Stage string
	Err   error
}

func (e *TranscoderError) Error() string {
	return fmt.Sprintf("transcoder %s failed: %v", e.Stage, e.Err)
}

func (e *TranscoderError) Unwrap() error {
	return e.Err
}

// StoreError wraps a chunk store or metadata registry backend failure. It is
// distinct from ErrNotFound: a missing record is not a backend failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// PartialDeleteError reports a deletion where at least one of the
// metadata/segments/audio/cache sub-deletions failed.
type PartialDeleteError struct {
	VideoID string
	Failed  []string
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("delete of video %s incomplete, failed parts: %s",
		e.VideoID, strings.Join(e.Failed, ", "))
}
