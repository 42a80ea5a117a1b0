package extractor

// formatSelectors maps quality tiers to yt-dlp format selector strings.
// Each selector prefers a pre-merged mp4+m4a pair and degrades through
// arbitrary codecs down to the best single file.
var formatSelectors = map[string]string{
	"best":  "bestvideo[ext=mp4]+bestaudio[ext=m4a]/bestvideo+bestaudio/best[ext=mp4]/best",
	"2160":  "bestvideo[height<=2160][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=2160]+bestaudio/best[height<=2160]",
	"1440":  "bestvideo[height<=1440][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=1440]+bestaudio/best[height<=1440]",
	"1080":  "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=1080]+bestaudio/best[height<=1080]",
	"720":   "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=720]+bestaudio/best[height<=720]",
	"480":   "bestvideo[height<=480][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=480]+bestaudio/best[height<=480]",
	"360":   "bestvideo[height<=360][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=360]+bestaudio/best[height<=360]",
	"240":   "bestvideo[height<=240][ext=mp4]+bestaudio[ext=m4a]/bestvideo[height<=240]+bestaudio/best[height<=240]",
	"audio": "bestaudio[ext=m4a]/bestaudio/best",
}

// SelectorFor returns the yt-dlp format selector for a quality tier.
// Unknown tiers fall back to "best".
func SelectorFor(quality string) string {
	if s, ok := formatSelectors[quality]; ok {
		return s
	}
	return formatSelectors["best"]
}

// ValidQuality reports whether the tier is one the service accepts.
func ValidQuality(quality string) bool {
	_, ok := formatSelectors[quality]
	return ok
}
