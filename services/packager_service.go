package services

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Packager turns a finished download working directory into a servable
// artifact: the single media file for a video, a deflate-compressed zip for a
// playlist.
type Packager struct{}

func NewPackager() *Packager {
	return &Packager{}
}

// PackageVideo locates the media file yt-dlp produced in workdir. Audio
// targets must carry the transcoded extension; a missing file here means the
// extraction or the transcode silently failed.
func (p *Packager) PackageVideo(workdir, format string) (string, string, error) {
	entries, err := os.ReadDir(workdir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read working directory: %w", err)
	}

	wantExt := "." + format
	var fallback string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.EqualFold(filepath.Ext(name), wantExt) {
			return filepath.Join(workdir, name), name, nil
		}
		if fallback == "" {
			fallback = name
		}
	}

	// Merged video containers occasionally keep the source extension; the
	// transcoded audio extension is non-negotiable.
	if (format == "mp4" || format == "webm") && fallback != "" {
		return filepath.Join(workdir, fallback), fallback, nil
	}
	return "", "", &MissingFileError{Path: filepath.Join(workdir, "*"+wantExt)}
}

// PackagePlaylist zips everything yt-dlp placed under the playlist directory
// inside workdir. All entries are nested under one sanitized top-level folder
// named after the playlist title, and the archive itself sits in workdir so it
// is removed together with the rest of the request's files.
func (p *Packager) PackagePlaylist(workdir string) (string, string, error) {
	playlistDir, title, err := findPlaylistDir(workdir)
	if err != nil {
		return "", "", err
	}

	safe := SanitizeFilename(title)
	if safe == "" {
		safe = "playlist"
	}
	zipName := safe + ".zip"
	zipPath := filepath.Join(workdir, zipName)

	out, err := os.Create(zipPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(playlistDir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(playlistDir, file)
		if err != nil {
			return err
		}

		header := &zip.FileHeader{
			Name:   path.Join(safe, filepath.ToSlash(rel)),
			Method: zip.Deflate,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(file)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if walkErr != nil {
		zw.Close()
		return "", "", fmt.Errorf("failed to build archive: %w", walkErr)
	}
	if err := zw.Close(); err != nil {
		return "", "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	return zipPath, zipName, nil
}

// findPlaylistDir returns the single %(playlist_title)s directory the download
// step created, whose name is the playlist title.
func findPlaylistDir(workdir string) (string, string, error) {
	entries, err := os.ReadDir(workdir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read working directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(workdir, entry.Name()), entry.Name(), nil
		}
	}
	return "", "", &MissingFileError{Path: filepath.Join(workdir, "<playlist dir>")}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9 _.-]`)

// SanitizeFilename strips characters unsafe for filenames: anything outside
// [A-Za-z0-9 _.-] is dropped, runs of whitespace collapse to a single
// underscore, leading/trailing dots and dashes are trimmed.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), "_")
	return strings.Trim(name, "._-")
}

// ContentTypeFor maps a requested container to the response content type.
func ContentTypeFor(format string) string {
	switch format {
	case "mp4":
		return "video/mp4"
	case "webm":
		return "video/webm"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
