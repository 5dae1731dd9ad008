package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api-yt/config"
)

func TestBaseAppliesToolPaths(t *testing.T) {
	e := NewExtractor(&config.Config{
		YtdlpPath:            "/opt/bin/yt-dlp",
		FFmpegPath:           "/opt/bin/ffmpeg",
		SocketTimeoutSeconds: 5,
		UserAgent:            "test-agent",
	})
	assert.NotNil(t, e.base())

	// Empty paths mean "resolve from PATH" and must also build cleanly.
	e = NewExtractor(&config.Config{SocketTimeoutSeconds: 5, UserAgent: "test-agent"})
	assert.NotNil(t, e.base())
}

func TestFormatSelectorVideo(t *testing.T) {
	sel, err := formatSelector("mp4", "720p")
	require.NoError(t, err)
	assert.Equal(t, "bestvideo[height<=720]+bestaudio/best[height<=720]", sel)

	sel, err = formatSelector("webm", "2160p")
	require.NoError(t, err)
	assert.Equal(t, "bestvideo[height<=2160]+bestaudio/best[height<=2160]", sel)
}

func TestFormatSelectorAudio(t *testing.T) {
	for _, format := range []string{"mp3", "wav"} {
		sel, err := formatSelector(format, "1080p")
		require.NoError(t, err)
		assert.Equal(t, "bestaudio", sel)
	}
}

func TestFormatSelectorUnsupported(t *testing.T) {
	_, err := formatSelector("flac", "1080p")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestParseQuality(t *testing.T) {
	cases := map[string]int{
		"1080p":    1080,
		"720p":     720,
		"480":      480,
		"4320p60":  432060, // every digit in the label is kept
		"best":     1080,
		"":         1080,
		"p":        1080,
		"0p":       1080,
	}
	for label, want := range cases {
		assert.Equal(t, want, parseQuality(label), "label %q", label)
	}
}

func TestFilterFormatsDropsHeightless(t *testing.T) {
	raw := []ytdlpFormat{
		{FormatID: "sb0", Ext: "mhtml"},                             // storyboard, no height
		{FormatID: "140", Ext: "m4a"},                               // audio only
		{FormatID: "137", Ext: "mp4", Width: 1920, Height: 1080},
		{FormatID: "136", Ext: "mp4", Width: 1280, Height: 720, Filesize: 1024},
	}

	got := filterFormats(raw)
	require.Len(t, got, 2)
	for _, f := range got {
		assert.Greater(t, f.Height, 0)
	}
	assert.Equal(t, "137", got[0].FormatID)
	assert.Equal(t, int64(1024), got[1].Filesize)
}

func TestFilterFormatsCap(t *testing.T) {
	raw := make([]ytdlpFormat, 0, 25)
	for i := 0; i < 25; i++ {
		raw = append(raw, ytdlpFormat{FormatID: fmt.Sprintf("f%d", i), Ext: "mp4", Height: 144 + i})
	}
	assert.Len(t, filterFormats(raw), maxFormats)
}

func TestBuildPlaylistInfoCapsAndCounts(t *testing.T) {
	info := &ytdlpJSON{Type: "playlist", ID: "PL1", Title: "Mix"}
	for i := 0; i < 30; i++ {
		info.Entries = append(info.Entries, ytdlpJSON{ID: fmt.Sprintf("v%02d", i), Title: fmt.Sprintf("Video %d", i)})
	}

	pl := buildPlaylistInfo(info)
	assert.Equal(t, "PL1", pl.ID)
	assert.Len(t, pl.Videos, maxPlaylistEntries)
	assert.Equal(t, len(pl.Videos), pl.VideoCount)
	// Source enumeration order is preserved.
	assert.Equal(t, "v00", pl.Videos[0].ID)
	assert.Equal(t, "v19", pl.Videos[len(pl.Videos)-1].ID)
}

func TestBuildVideoInfo(t *testing.T) {
	duration := 212.0
	views := int64(1000000)
	info := &ytdlpJSON{
		ID:        "dQw4w9WgXcQ",
		Title:     "Some Video",
		Uploader:  "Some Channel",
		Duration:  &duration,
		ViewCount: &views,
		Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		Formats: []ytdlpFormat{
			{FormatID: "137", Ext: "mp4", Width: 1920, Height: 1080},
		},
	}

	v := buildVideoInfo(info)
	assert.Equal(t, "dQw4w9WgXcQ", v.ID)
	assert.Equal(t, "Some Channel", v.Uploader)
	require.NotNil(t, v.Duration)
	assert.Equal(t, 212.0, *v.Duration)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", v.RemoteThumbnail)
	assert.Empty(t, v.Thumbnail, "API reference is filled in by the handler after caching")
}

func TestThumbnailURLFallback(t *testing.T) {
	assert.Equal(t, "https://example.com/t.jpg", thumbnailURL(&ytdlpJSON{ID: "abc", Thumbnail: "https://example.com/t.jpg"}))
	assert.Equal(t, "https://i.ytimg.com/vi/abc/hqdefault.jpg", thumbnailURL(&ytdlpJSON{ID: "abc"}))
	assert.Empty(t, thumbnailURL(&ytdlpJSON{}))
}
