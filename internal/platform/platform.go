package platform

import (
	"regexp"
	"strings"
)

// pattern tables for the platforms we label in history; anything else the
// extractor can handle is recorded as "other".
var patterns = []struct {
	name string
	res  []*regexp.Regexp
}{
	{"youtube", compile(`(youtube\.com|youtu\.be)`, `youtube\.com/watch`, `youtube\.com/shorts`, `youtube\.com/embed`)},
	{"facebook", compile(`facebook\.com`, `fb\.watch`, `fb\.com`)},
	{"tiktok", compile(`tiktok\.com`, `vm\.tiktok\.com`)},
	{"instagram", compile(`instagram\.com`, `instagr\.am`)},
	{"twitter", compile(`twitter\.com`, `x\.com`)},
	{"vimeo", compile(`vimeo\.com`)},
	{"dailymotion", compile(`dailymotion\.com`, `dai\.ly`)},
	{"reddit", compile(`reddit\.com`, `v\.redd\.it`)},
	{"twitch", compile(`twitch\.tv`, `clips\.twitch\.tv`)},
}

func compile(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		res = append(res, regexp.MustCompile(e))
	}
	return res
}

// Detect returns the platform name for a video URL, or "other" when no
// pattern matches.
func Detect(url string) string {
	lower := strings.ToLower(url)
	for _, p := range patterns {
		for _, re := range p.res {
			if re.MatchString(lower) {
				return p.name
			}
		}
	}
	return "other"
}
