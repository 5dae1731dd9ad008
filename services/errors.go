package services

import "fmt"

// ValidationError rejects a request before any extraction work starts.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ExtractionError wraps any failure surfaced by the yt-dlp invocation:
// network failures, geo blocks, removed videos, unsupported URLs, timeouts.
// RawMessage carries the tool's stderr and is truncated before it reaches a
// client.
type ExtractionError struct {
	Reason     string
	RawMessage string
}

func (e *ExtractionError) Error() string {
	if e.RawMessage == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.RawMessage)
}

// FetchError is a thumbnail fetch or decode failure. Fatal for single-video
// requests, skipped-and-logged for playlist entries.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("thumbnail fetch failed for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MissingFileError means the expected output was absent after a download run,
// which signals a silent failure in extraction or transcoding.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("expected file missing after download: %s", e.Path)
}

// NotFoundError covers unknown thumbnail identifiers.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}
