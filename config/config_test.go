package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	// Neutralize any ambient environment these assertions depend on.
	for _, key := range []string{"PORT", "DOWNLOAD_DIR", "THUMBNAIL_DIR", "SOCKET_TIMEOUT_SECONDS", "RETRY_COUNT", "MAX_CONCURRENT_DOWNLOADS", "REQUESTS_PER_SECOND", "AWS_S3_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "downloads", cfg.DownloadDir)
	assert.Equal(t, "thumbnails", cfg.ThumbnailDir)
	assert.Equal(t, 15, cfg.SocketTimeoutSeconds)
	assert.Equal(t, 5, cfg.RetryCount)
	assert.Equal(t, 4, cfg.MaxConcurrentDownloads)
	assert.Equal(t, 0, cfg.RequestsPerSecond)
	assert.NotEmpty(t, cfg.UserAgent)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DOWNLOAD_DIR", "/tmp/dl")
	t.Setenv("RETRY_COUNT", "2")
	t.Setenv("MAX_CONCURRENT_DOWNLOADS", "8")

	cfg := Load()
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "/tmp/dl", cfg.DownloadDir)
	assert.Equal(t, 2, cfg.RetryCount)
	assert.Equal(t, 8, cfg.MaxConcurrentDownloads)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("RETRY_COUNT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 5, cfg.RetryCount)
}

func TestArchiveEnabled(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_S3_BUCKET", "bucket")

	cfg := Load()
	assert.True(t, cfg.ArchiveEnabled())
}
