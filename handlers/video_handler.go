package handlers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"api-yt/metrics"
	"api-yt/models"
	"api-yt/services"
)

// maxErrorDetail bounds how much of an internal error message reaches a
// client; the full text stays in the server log.
const maxErrorDetail = 200

var allowedFormats = map[string]bool{
	"mp4":  true,
	"webm": true,
	"mp3":  true,
	"wav":  true,
}

type VideoHandler struct {
	extractor  *services.Extractor
	thumbnails *services.ThumbnailService
	packager   *services.Packager
	limiter    *services.Limiter
	archive    *services.ArchiveService // nil in local mode
}

func NewVideoHandler(
	extractor *services.Extractor,
	thumbnails *services.ThumbnailService,
	packager *services.Packager,
	limiter *services.Limiter,
	archive *services.ArchiveService,
) *VideoHandler {
	return &VideoHandler{
		extractor:  extractor,
		thumbnails: thumbnails,
		packager:   packager,
		limiter:    limiter,
		archive:    archive,
	}
}

// GetInfo handles POST /api/info: full metadata for a video or a playlist,
// with thumbnails cached as a side effect.
func (h *VideoHandler) GetInfo(c *gin.Context) {
	var req models.InfoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "URL is required"})
		return
	}
	if !services.ValidateURL(req.URL) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid YouTube URL"})
		return
	}

	ctx := c.Request.Context()
	metrics.Extractions.WithLabelValues("inspect").Inc()

	video, playlist, err := h.extractor.Inspect(ctx, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	if playlist != nil {
		// Per-item failures skip the entry instead of failing the request.
		kept := make([]models.PlaylistEntry, 0, len(playlist.Videos))
		for _, entry := range playlist.Videos {
			if _, err := h.thumbnails.EnsureCached(ctx, entry.ID, entry.RemoteThumbnail); err != nil {
				log.Printf("Skipping playlist entry %s: %v", entry.ID, err)
				continue
			}
			entry.Thumbnail = thumbnailRef(entry.ID)
			kept = append(kept, entry)
		}
		playlist.Videos = kept
		playlist.VideoCount = len(kept)

		c.JSON(http.StatusOK, models.PlaylistResponse{Type: "playlist", PlaylistInfo: *playlist})
		return
	}

	if _, err := h.thumbnails.EnsureCached(ctx, video.ID, video.RemoteThumbnail); err != nil {
		respondError(c, err)
		return
	}
	video.Thumbnail = thumbnailRef(video.ID)

	c.JSON(http.StatusOK, models.VideoResponse{Type: "video", VideoInfo: *video})
}

// GetThumbnail handles GET /api/thumbnail/:video_id: a pure cache lookup.
func (h *VideoHandler) GetThumbnail(c *gin.Context) {
	videoID := c.Param("video_id")
	path, ok := h.thumbnails.Path(videoID)
	if !ok {
		metrics.ThumbnailCache.WithLabelValues("miss").Inc()
		respondError(c, &services.NotFoundError{Resource: "Thumbnail"})
		return
	}
	metrics.ThumbnailCache.WithLabelValues("hit").Inc()
	c.Header("Content-Type", "image/jpeg")
	c.File(path)
}

// Download handles POST /api/download: runs the extraction/transcode pipeline
// under the concurrency cap and streams the artifact as an attachment.
func (h *VideoHandler) Download(c *gin.Context) {
	var req models.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Format == "" {
		req.Format = "mp4"
	}
	if req.Quality == "" {
		req.Quality = "1080p"
	}
	if req.URL == "" || !services.ValidateURL(req.URL) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid YouTube URL"})
		return
	}
	if !allowedFormats[req.Format] {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Unsupported format: %s", req.Format)})
		return
	}

	ctx := c.Request.Context()
	if err := h.limiter.Acquire(ctx); err != nil {
		// Client went away while queued.
		c.Abort()
		return
	}
	defer h.limiter.Release()

	metrics.Extractions.WithLabelValues("download").Inc()

	workdir, err := h.extractor.Download(ctx, req.URL, req.Format, req.Quality)
	if err != nil {
		respondError(c, err)
		return
	}

	var artifact, name string
	if services.IsPlaylist(req.URL) {
		artifact, name, err = h.packager.PackagePlaylist(workdir)
	} else {
		artifact, name, err = h.packager.PackageVideo(workdir, req.Format)
	}
	if err != nil {
		os.RemoveAll(workdir)
		respondError(c, err)
		return
	}

	metrics.Downloads.WithLabelValues(req.Format).Inc()
	c.FileAttachment(artifact, name)
	h.finish(workdir, artifact, name)
}

// finish disposes of a served working directory, routing the artifact through
// the S3 archive first when one is configured.
func (h *VideoHandler) finish(workdir, artifact, name string) {
	cleanup := func() {
		if err := os.RemoveAll(workdir); err != nil {
			log.Printf("Failed to remove working directory %s: %v", workdir, err)
		}
	}
	if h.archive == nil {
		cleanup()
		return
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	h.archive.StoreArtifactAsync(artifact, name, services.ContentTypeFor(ext), cleanup)
}

// DetectPlaylist handles GET /api/detect_playlist: a fast flat probe that
// tells a client whether a URL is a playlist before it commits to anything.
func (h *VideoHandler) DetectPlaylist(c *gin.Context) {
	var req models.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "URL is required"})
		return
	}
	if !services.ValidateURL(req.URL) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid YouTube URL"})
		return
	}

	ctx := c.Request.Context()
	metrics.Extractions.WithLabelValues("probe").Inc()

	start := time.Now()
	probe, err := h.extractor.Probe(ctx, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	elapsed := math.Round(time.Since(start).Seconds()*1000) / 1000

	resp := models.DetectResponse{
		Success:        true,
		IsPlaylist:     probe.IsPlaylist,
		ID:             probe.ID,
		Title:          probe.Title,
		ProcessingTime: elapsed,
	}
	if probe.IsPlaylist {
		count := probe.VideoCount
		resp.VideoCount = &count
	} else if _, err := h.thumbnails.EnsureCached(ctx, probe.ID, probe.Thumbnail); err == nil {
		// Best effort only; detection stays useful without an image.
		resp.Thumbnail = thumbnailRef(probe.ID)
	}

	c.JSON(http.StatusOK, resp)
}

func thumbnailRef(videoID string) string {
	return "/api/thumbnail/" + videoID
}

// respondError maps the service error taxonomy onto HTTP statuses and the
// JSON error envelope. Raw internal messages are logged in full but truncated
// on the wire.
func respondError(c *gin.Context, err error) {
	log.Printf("Request failed: %v", err)

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: validationErr.Message})
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: notFoundErr.Error()})
		return
	}

	var extractionErr *services.ExtractionError
	if errors.As(err, &extractionErr) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Extraction failed",
			Details: truncate(extractionErr.RawMessage),
		})
		return
	}

	var fetchErr *services.FetchError
	if errors.As(err, &fetchErr) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to fetch thumbnail",
			Details: truncate(fetchErr.Error()),
		})
		return
	}

	var missingErr *services.MissingFileError
	if errors.As(err, &missingErr) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Download failed or file missing",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "Internal server error",
		Details: truncate(err.Error()),
	})
}

// RecoveryHandler converts a panic into the standard 500 envelope. Plugged
// into gin.CustomRecovery by the router.
func RecoveryHandler(c *gin.Context, recovered interface{}) {
	log.Printf("Panic recovered: %v", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "Internal server error",
		Details: truncate(fmt.Sprint(recovered)),
	})
}

// truncate cuts on a rune boundary so non-ASCII tool output never turns into
// invalid UTF-8 on the wire.
func truncate(s string) string {
	if len(s) <= maxErrorDetail {
		return s
	}
	cut := maxErrorDetail
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
