package services

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPackageVideoFindsMatchingExtension(t *testing.T) {
	workdir := t.TempDir()
	writeFile(t, filepath.Join(workdir, "Some Video.mp3"), "audio bytes")

	p := NewPackager()
	path, name, err := p.PackageVideo(workdir, "mp3")
	require.NoError(t, err)
	assert.Equal(t, "Some Video.mp3", name)
	assert.FileExists(t, path)
}

func TestPackageVideoAudioMissingTranscode(t *testing.T) {
	// The downloaded source is there but the mp3 never appeared: the
	// transcode failed silently and the caller must hear about it.
	workdir := t.TempDir()
	writeFile(t, filepath.Join(workdir, "Some Video.webm"), "source bytes")

	p := NewPackager()
	_, _, err := p.PackageVideo(workdir, "mp3")
	var missingErr *MissingFileError
	assert.ErrorAs(t, err, &missingErr)
}

func TestPackageVideoFallbackForMergedContainer(t *testing.T) {
	workdir := t.TempDir()
	writeFile(t, filepath.Join(workdir, "Some Video.mkv"), "merged bytes")

	p := NewPackager()
	path, name, err := p.PackageVideo(workdir, "mp4")
	require.NoError(t, err)
	assert.Equal(t, "Some Video.mkv", name)
	assert.FileExists(t, path)
}

func TestPackageVideoEmptyWorkdir(t *testing.T) {
	p := NewPackager()
	_, _, err := p.PackageVideo(t.TempDir(), "mp4")
	var missingErr *MissingFileError
	assert.ErrorAs(t, err, &missingErr)
}

func TestPackagePlaylistZipLayout(t *testing.T) {
	workdir := t.TempDir()
	playlistDir := filepath.Join(workdir, "My Mix: vol 2")
	writeFile(t, filepath.Join(playlistDir, "First Song.mp4"), "one")
	writeFile(t, filepath.Join(playlistDir, "Second Song.mp4"), "two")

	p := NewPackager()
	zipPath, zipName, err := p.PackagePlaylist(workdir)
	require.NoError(t, err)
	assert.Equal(t, "My_Mix_vol_2.zip", zipName)
	assert.True(t, strings.HasSuffix(zipPath, ".zip"))

	reader, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 2)
	for _, f := range reader.File {
		assert.True(t, strings.HasPrefix(f.Name, "My_Mix_vol_2/"), "entry %q not nested under the sanitized folder", f.Name)
		assert.Equal(t, zip.Deflate, f.Method)
	}
}

func TestPackagePlaylistNoDirectory(t *testing.T) {
	p := NewPackager()
	_, _, err := p.PackagePlaylist(t.TempDir())
	var missingErr *MissingFileError
	assert.ErrorAs(t, err, &missingErr)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"My Mix: vol 2":      "My_Mix_vol_2",
		"plain":              "plain",
		"../../etc/passwd":   "etcpasswd",
		"  padded  ":         "padded",
		"..hidden..":         "hidden",
		"über cool / playlist": "ber_cool_playlist",
		"???":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "video/mp4", ContentTypeFor("mp4"))
	assert.Equal(t, "video/webm", ContentTypeFor("webm"))
	assert.Equal(t, "audio/mpeg", ContentTypeFor("mp3"))
	assert.Equal(t, "audio/wav", ContentTypeFor("wav"))
	assert.Equal(t, "application/zip", ContentTypeFor("zip"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("mystery"))
}
