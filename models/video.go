package models

// Format is a single entry of a video's format ladder, taken verbatim from the
// extraction result. Only entries with a usable vertical resolution are kept.
type Format struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height"`
	Filesize int64  `json:"filesize,omitempty"`
}

type VideoInfo struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Duration *float64 `json:"duration"`
	Views    *int64   `json:"views"`
	Uploader string   `json:"uploader,omitempty"`
	Formats  []Format `json:"formats"`
	// Thumbnail is the API-relative reference (/api/thumbnail/{id}), filled in
	// once the image has been cached locally.
	Thumbnail string `json:"thumbnail"`
	// RemoteThumbnail is the upstream image URL, never exposed to clients.
	RemoteThumbnail string `json:"-"`
}

type PlaylistEntry struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Duration        *float64 `json:"duration"`
	Thumbnail       string   `json:"thumbnail"`
	RemoteThumbnail string   `json:"-"`
}

type PlaylistInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// VideoCount always equals len(Videos); entries that fail per-item
	// processing are dropped before the count is taken.
	VideoCount int             `json:"video_count"`
	Videos     []PlaylistEntry `json:"videos"`
}

type InfoRequest struct {
	URL string `json:"url"`
}

type DownloadRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

type DetectRequest struct {
	URL string `json:"url"`
}

type VideoResponse struct {
	Type string `json:"type"`
	VideoInfo
}

type PlaylistResponse struct {
	Type string `json:"type"`
	PlaylistInfo
}

type DetectResponse struct {
	Success        bool    `json:"success"`
	IsPlaylist     bool    `json:"is_playlist"`
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	ProcessingTime float64 `json:"processing_time"`
	VideoCount     *int    `json:"video_count,omitempty"`
	Thumbnail      string  `json:"thumbnail,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
