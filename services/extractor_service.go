package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"

	"api-yt/config"
	"api-yt/models"
)

const (
	// Caps on metadata responses, to bound payload size and fetch latency.
	maxPlaylistEntries = 20
	maxFormats         = 10

	defaultHeight = 1080
	audioQuality  = "192"
)

// Extractor is the single gateway to yt-dlp. It owns option selection for the
// three extraction modes (flat probe, full inspect, download) and normalizes
// the tool's JSON output into the API's own types.
type Extractor struct {
	ytdlpPath     string
	ffmpegPath    string
	socketTimeout float64
	retries       int
	userAgent     string
	downloadRoot  string
}

func NewExtractor(cfg *config.Config) *Extractor {
	return &Extractor{
		ytdlpPath:     cfg.YtdlpPath,
		ffmpegPath:    cfg.FFmpegPath,
		socketTimeout: float64(cfg.SocketTimeoutSeconds),
		retries:       cfg.RetryCount,
		userAgent:     cfg.UserAgent,
		downloadRoot:  cfg.DownloadDir,
	}
}

// ProbeResult is the trimmed outcome of a flat (no per-item formats) listing.
type ProbeResult struct {
	IsPlaylist bool
	ID         string
	Title      string
	VideoCount int
	Thumbnail  string
	Duration   *float64
	Views      *int64
}

// yt-dlp JSON output, limited to the fields this API reads.
type ytdlpJSON struct {
	Type      string        `json:"_type"`
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Uploader  string        `json:"uploader"`
	Duration  *float64      `json:"duration"`
	ViewCount *int64        `json:"view_count"`
	Thumbnail string        `json:"thumbnail"`
	Formats   []ytdlpFormat `json:"formats"`
	Entries   []ytdlpJSON   `json:"entries"`
}

type ytdlpFormat struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Filesize int64  `json:"filesize"`
}

func (e *Extractor) base() *ytdlp.Command {
	dl := ytdlp.New().
		SocketTimeout(e.socketTimeout).
		UserAgent(e.userAgent)
	if e.ytdlpPath != "" {
		dl = dl.SetExecutable(e.ytdlpPath)
	}
	if e.ffmpegPath != "" {
		dl = dl.FFmpegLocation(e.ffmpegPath)
	}
	return dl
}

func (e *Extractor) run(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
	res, err := dl.Run(ctx, url)
	if err != nil {
		raw := err.Error()
		if res != nil && strings.TrimSpace(res.Stderr) != "" {
			raw = strings.TrimSpace(res.Stderr)
		}
		return nil, &ExtractionError{Reason: "extraction failed", RawMessage: raw}
	}
	return res, nil
}

func (e *Extractor) dumpJSON(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlpJSON, error) {
	res, err := e.run(ctx, dl, url)
	if err != nil {
		return nil, err
	}
	var info ytdlpJSON
	if err := json.Unmarshal([]byte(res.Stdout), &info); err != nil {
		return nil, &ExtractionError{Reason: "unparseable extraction output", RawMessage: err.Error()}
	}
	return &info, nil
}

// Probe runs a flat listing: fast playlist/video detection without resolving
// any per-item format ladder.
func (e *Extractor) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	dl := e.base().
		Quiet().
		NoWarnings().
		SkipDownload().
		DumpSingleJSON().
		FlatPlaylist()
	if IsPlaylist(url) {
		dl = dl.YesPlaylist()
	} else {
		dl = dl.NoPlaylist()
	}

	info, err := e.dumpJSON(ctx, dl, url)
	if err != nil {
		return nil, err
	}

	out := &ProbeResult{
		ID:        info.ID,
		Title:     info.Title,
		Thumbnail: thumbnailURL(info),
	}
	if info.Type == "playlist" {
		out.IsPlaylist = true
		out.VideoCount = len(info.Entries)
	} else {
		out.Duration = info.Duration
		out.Views = info.ViewCount
	}
	return out, nil
}

// Inspect runs a full metadata extraction. Exactly one of the two results is
// non-nil on success.
func (e *Extractor) Inspect(ctx context.Context, url string) (*models.VideoInfo, *models.PlaylistInfo, error) {
	dl := e.base().
		Quiet().
		NoWarnings().
		SkipDownload().
		DumpSingleJSON()
	if IsPlaylist(url) {
		dl = dl.YesPlaylist()
	} else {
		dl = dl.NoPlaylist()
	}

	info, err := e.dumpJSON(ctx, dl, url)
	if err != nil {
		return nil, nil, err
	}

	if info.Type == "playlist" {
		return nil, buildPlaylistInfo(info), nil
	}
	return buildVideoInfo(info), nil, nil
}

func buildVideoInfo(info *ytdlpJSON) *models.VideoInfo {
	return &models.VideoInfo{
		ID:              info.ID,
		Title:           info.Title,
		Duration:        info.Duration,
		Views:           info.ViewCount,
		Uploader:        info.Uploader,
		Formats:         filterFormats(info.Formats),
		RemoteThumbnail: thumbnailURL(info),
	}
}

func buildPlaylistInfo(info *ytdlpJSON) *models.PlaylistInfo {
	entries := info.Entries
	if len(entries) > maxPlaylistEntries {
		entries = entries[:maxPlaylistEntries]
	}

	pl := &models.PlaylistInfo{
		ID:    info.ID,
		Title: info.Title,
	}
	for i := range entries {
		entry := &entries[i]
		pl.Videos = append(pl.Videos, models.PlaylistEntry{
			ID:              entry.ID,
			Title:           entry.Title,
			Duration:        entry.Duration,
			RemoteThumbnail: thumbnailURL(entry),
		})
	}
	pl.VideoCount = len(pl.Videos)
	return pl
}

// filterFormats drops entries without a vertical resolution and caps the list.
func filterFormats(raw []ytdlpFormat) []models.Format {
	out := []models.Format{}
	for _, f := range raw {
		if f.Height <= 0 {
			continue
		}
		out = append(out, models.Format{
			FormatID: f.FormatID,
			Ext:      f.Ext,
			Width:    f.Width,
			Height:   f.Height,
			Filesize: f.Filesize,
		})
		if len(out) == maxFormats {
			break
		}
	}
	return out
}

func thumbnailURL(info *ytdlpJSON) string {
	if info.Thumbnail != "" {
		return info.Thumbnail
	}
	if info.ID != "" {
		return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", info.ID)
	}
	return ""
}

// Download runs yt-dlp in download mode into a fresh working directory under
// the download root and returns that directory. The caller owns cleanup.
// Playlist downloads nest files under a %(playlist_title)s directory so the
// packager can derive the archive layout from the filesystem.
func (e *Extractor) Download(ctx context.Context, url, format, quality string) (string, error) {
	selector, err := formatSelector(format, quality)
	if err != nil {
		return "", err
	}

	workdir := filepath.Join(e.downloadRoot, uuid.New().String())
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create working directory: %w", err)
	}

	dl := e.base().
		Quiet().
		NoWarnings().
		NoProgress().
		Continue().
		Retries(strconv.Itoa(e.retries)).
		NoCheckCertificates().
		Format(selector)

	switch format {
	case "mp4", "webm":
		dl = dl.MergeOutputFormat(format)
	case "mp3", "wav":
		dl = dl.ExtractAudio().AudioFormat(format).AudioQuality(audioQuality)
	}

	if IsPlaylist(url) {
		dl = dl.YesPlaylist().Output(filepath.Join(workdir, "%(playlist_title)s", "%(title)s.%(ext)s"))
	} else {
		dl = dl.NoPlaylist().Output(filepath.Join(workdir, "%(title)s.%(ext)s"))
	}

	if _, err := e.run(ctx, dl, url); err != nil {
		os.RemoveAll(workdir)
		return "", err
	}
	return workdir, nil
}

// formatSelector builds the yt-dlp format expression: best video at or below
// the requested height plus best audio for video containers (with a combined
// single-stream fallback), best audio alone for audio containers.
func formatSelector(format, quality string) (string, error) {
	switch format {
	case "mp4", "webm":
		h := parseQuality(quality)
		return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", h, h), nil
	case "mp3", "wav":
		return "bestaudio", nil
	default:
		return "", &ValidationError{Message: fmt.Sprintf("unsupported format: %q", format)}
	}
}

// parseQuality pulls the digits out of a label like "1080p"; anything
// unparseable falls back to 1080.
func parseQuality(label string) int {
	digits := strings.Builder{}
	for _, r := range label {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	h, err := strconv.Atoi(digits.String())
	if err != nil || h <= 0 {
		return defaultHeight
	}
	return h
}
