package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Upstream thumbnails are small; anything past this is not an image we want.
const maxThumbnailBytes = 5 * 1024 * 1024

// ThumbnailService fetches remote thumbnails once, normalizes them to JPEG and
// keeps one file per video id on disk. Serving is a pure filesystem lookup.
type ThumbnailService struct {
	dir       string
	client    *http.Client
	userAgent string
	group     singleflight.Group
}

func NewThumbnailService(dir string, timeout time.Duration, userAgent string) *ThumbnailService {
	return &ThumbnailService{
		dir:       dir,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (s *ThumbnailService) pathFor(videoID string) string {
	return filepath.Join(s.dir, videoID+".jpg")
}

// EnsureCached makes {dir}/{id}.jpg exist, fetching and decoding the remote
// image on first use. Concurrent calls for the same id share one fetch.
func (s *ThumbnailService) EnsureCached(ctx context.Context, videoID, thumbURL string) (string, error) {
	path := s.pathFor(videoID)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	// The flight is shared across callers, so it must not die with whichever
	// request happened to start it. The client timeout still bounds the fetch.
	fetchCtx := context.WithoutCancel(ctx)
	_, err, _ := s.group.Do(videoID, func() (interface{}, error) {
		return nil, s.fetch(fetchCtx, videoID, thumbURL)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// Path looks up a cached thumbnail. No network access on this path.
func (s *ThumbnailService) Path(videoID string) (string, bool) {
	path := s.pathFor(videoID)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func (s *ThumbnailService) fetch(ctx context.Context, videoID, thumbURL string) error {
	if thumbURL == "" {
		return &FetchError{URL: thumbURL, Err: fmt.Errorf("no thumbnail URL")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbURL, nil)
	if err != nil {
		return &FetchError{URL: thumbURL, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return &FetchError{URL: thumbURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{URL: thumbURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailBytes))
	if err != nil {
		return &FetchError{URL: thumbURL, Err: err}
	}

	// Decoding both verifies the bytes are a real image and lets us persist a
	// uniform JPEG regardless of the upstream encoding (often webp).
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return &FetchError{URL: thumbURL, Err: fmt.Errorf("image decode: %w", err)}
	}

	return s.write(videoID, img)
}

// write goes through a temp file and a rename so a concurrent reader never
// sees a partially written thumbnail.
func (s *ThumbnailService) write(videoID string, img image.Image) error {
	tmp, err := os.CreateTemp(s.dir, videoID+".*.tmp")
	if err != nil {
		return &FetchError{URL: videoID, Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, img, nil); err != nil {
		tmp.Close()
		return &FetchError{URL: videoID, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FetchError{URL: videoID, Err: err}
	}

	if err := os.Rename(tmp.Name(), s.pathFor(videoID)); err != nil {
		return &FetchError{URL: videoID, Err: err}
	}
	return nil
}
