package services

import (
	"regexp"
	"strings"
)

// Accepted URL shapes: watch links, youtu.be short links, playlist links, and
// the m./music. subdomains of either. Matching is purely syntactic; nothing
// here checks that the resource exists.
var (
	videoURLRegex    = regexp.MustCompile(`(?i)^(https?://)?(www\.|m\.|music\.)?(youtube\.com/watch\?v=|youtu\.be/)[A-Za-z0-9_-]{11}.*$`)
	playlistURLRegex = regexp.MustCompile(`(?i)^(https?://)?(www\.|m\.|music\.)?(youtube\.com/playlist\?list=)[A-Za-z0-9_-]+.*$`)
)

// ValidateURL reports whether url looks like a supported YouTube video or
// playlist link.
func ValidateURL(url string) bool {
	if url == "" {
		return false
	}
	return videoURLRegex.MatchString(url) || playlistURLRegex.MatchString(url)
}

// IsPlaylist reports whether url carries a playlist path marker. Independent
// of ValidateURL; callers run it after basic validation to pick the
// extraction mode.
func IsPlaylist(url string) bool {
	return strings.Contains(url, "playlist?list=") || strings.Contains(url, "/playlist/")
}
