package validator

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// dangerousPrefixes are URL schemes that must never reach the extractor.
var dangerousPrefixes = []string{"javascript:", "data:", "file://"}

// ValidateURL checks that a submitted video URL is http(s) with a host and
// carries no dangerous scheme smuggled inside.
func ValidateURL(videoURL string, maxLength int) bool {
	if videoURL == "" || (maxLength > 0 && len(videoURL) > maxLength) {
		return false
	}

	lower := strings.ToLower(videoURL)
	for _, p := range dangerousPrefixes {
		if strings.Contains(lower, p) {
			return false
		}
	}

	u, err := url.Parse(videoURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SanitizeFilename replaces characters invalid on common filesystems.
func SanitizeFilename(filename string) string {
	var b strings.Builder
	b.Grow(len(filename))
	for _, r := range filename {
		switch {
		case r < 0x20, strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// TruncateFilename limits a filename to maxLen runes, preserving the
// extension when possible.
func TruncateFilename(filename string, maxLen int) string {
	runes := []rune(filename)
	if len(runes) <= maxLen {
		return filename
	}

	lastDot := strings.LastIndex(filename, ".")
	if lastDot == -1 {
		return string(runes[:maxLen])
	}

	extRunes := []rune(filename[lastDot:])
	available := maxLen - len(extRunes)
	if available <= 0 {
		return string(runes[:maxLen])
	}
	return string(runes[:available]) + string(extRunes)
}

// UniqueFilename builds a collision-resistant filename from a title: the
// sanitized title, a short hash of title+timestamp, and the extension.
func UniqueFilename(title, ext string) string {
	ts := time.Now().Unix()
	sum := md5.Sum([]byte(fmt.Sprintf("%s%d", title, ts)))
	base := TruncateFilename(SanitizeFilename(title), 200)
	if base == "" {
		base = "video"
	}
	return fmt.Sprintf("%s_%x.%s", base, sum[:4], ext)
}
