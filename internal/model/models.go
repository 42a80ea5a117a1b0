package model

// FormatDescriptor is one rendition reported by the extractor for a video.
// Codec fields use the extractor's "none" sentinel when a stream is absent.
type FormatDescriptor struct {
	FormatID   string  `json:"format_id"`
	URL        string  `json:"url"`
	Ext        string  `json:"ext"`
	Protocol   string  `json:"protocol"`
	Height     int     `json:"height"`
	Width      int     `json:"width"`
	VideoCodec string  `json:"vcodec"`
	AudioCodec string  `json:"acodec"`
	AudioBR    float64 `json:"abr"`
	TotalBR    float64 `json:"tbr"`
	Filesize   int64   `json:"filesize"`
	Fps        float64 `json:"fps"`
}

// VideoInfo contains metadata about a video, returned by the info endpoint.
type VideoInfo struct {
	URL          string          `json:"url"`
	Title        string          `json:"title"`
	Platform     string          `json:"platform"`
	Duration     int             `json:"duration"`
	ThumbnailURL string          `json:"thumbnail_url"`
	Uploader     string          `json:"uploader"`
	ViewCount    int64           `json:"view_count"`
	Formats      []DisplayFormat `json:"formats"`
}

// DisplayFormat is a deduplicated per-height entry shown in the quality picker.
type DisplayFormat struct {
	Quality  string `json:"quality"` // e.g. "1080p"
	Height   int    `json:"height"`
	Ext      string `json:"ext"`
	Filesize int64  `json:"filesize"`
}

// InfoRequest is the body of POST /api/video-info.
type InfoRequest struct {
	URL string `json:"url" binding:"required"`
}

// DownloadRequest is the body of POST /api/download.
type DownloadRequest struct {
	URL     string `json:"url" binding:"required"`
	Quality string `json:"quality"` // best, 2160..240, audio
}

// DownloadResponse is returned once a download record exists.
type DownloadResponse struct {
	ID                string `json:"download_id"`
	Title             string `json:"title"`
	FileSize          int64  `json:"file_size"`
	FileSizeFormatted string `json:"file_size_formatted"`
	Duration          int    `json:"duration"`
	DurationFormatted string `json:"duration_formatted"`
	Platform          string `json:"platform"`
	Thumbnail         string `json:"thumbnail"`
	Ext               string `json:"ext"`
	Mode              string `json:"mode"` // direct or merged
}

// StatusResponse is returned by GET /api/check-status/:id.
type StatusResponse struct {
	Status            string `json:"status"`
	Title             string `json:"title"`
	FileSize          int64  `json:"file_size,omitempty"`
	FileSizeFormatted string `json:"file_size_formatted,omitempty"`
	Error             string `json:"error,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
