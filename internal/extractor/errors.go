package extractor

import (
	"errors"
	"fmt"
	"strings"
)

// Extraction failures the handlers translate into API error codes. Everything
// the resolver can express as data stays out of this list; these originate in
// yt-dlp itself.
var (
	ErrInvalidURL          = errors.New("invalid url")
	ErrUnsupportedPlatform = errors.New("unsupported platform or url")
	ErrUnavailable         = errors.New("video is unavailable or has been removed")
	ErrPrivate             = errors.New("video is private")
	ErrAgeRestricted       = errors.New("video is age-restricted")
	ErrAuthRequired        = errors.New("video requires authentication")
	ErrDownloadFailed      = errors.New("download failed")
)

// classify maps yt-dlp's stderr text onto the error taxonomy.
func classify(output string, err error) error {
	switch {
	case strings.Contains(output, "Unsupported URL"):
		return ErrUnsupportedPlatform
	case strings.Contains(output, "Video unavailable"):
		return ErrUnavailable
	case strings.Contains(output, "Private video"):
		return ErrPrivate
	case strings.Contains(strings.ToLower(output), "age-restricted"):
		return ErrAgeRestricted
	case strings.Contains(output, "Sign in") || strings.Contains(strings.ToLower(output), "login"):
		return ErrAuthRequired
	default:
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
}
