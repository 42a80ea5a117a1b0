package resolver

import (
	"strings"

	"anydl/internal/model"
)

// Mode classifies the outcome of a resolution pass.
type Mode int

const (
	// ModeDirect means the chosen format is a single continuous stream the
	// client can be redirected to.
	ModeDirect Mode = iota
	// ModeNone means no direct candidate exists; the caller must download
	// and remux through the extractor.
	ModeNone
	// ModeInvalidURL means a candidate survived filtering but its URL turned
	// out to be a segmented playlist. The source cannot be served without
	// the merge tool.
	ModeInvalidURL
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeNone:
		return "none"
	case ModeInvalidURL:
		return "invalid_url"
	}
	return "unknown"
}

// HeightUnbounded is the ceiling used for the "best" quality tier.
const HeightUnbounded = 9999

// qualityHeights maps quality tiers to height ceilings.
var qualityHeights = map[string]int{
	"best": HeightUnbounded,
	"2160": 2160,
	"1440": 1440,
	"1080": 1080,
	"720":  720,
	"480":  480,
	"360":  360,
	"240":  240,
}

// CeilingFor returns the height ceiling for a quality tier.
// Unknown tiers default to 720.
func CeilingFor(quality string) int {
	if h, ok := qualityHeights[quality]; ok {
		return h
	}
	return 720
}

// Resolution is the result of resolving a descriptor list.
type Resolution struct {
	Mode   Mode
	Format model.FormatDescriptor
	Ext    string // container to report to the client
}

// segmentedProtocols are transports delivered as fragments; they can never be
// redirected to directly.
var segmentedProtocols = map[string]bool{
	"m3u8":               true,
	"m3u8_native":        true,
	"http_dash_segments": true,
}

// premergedExts are containers accepted for the pre-merged tier.
var premergedExts = map[string]bool{
	"mp4": true, "webm": true, "mov": true, "3gp": true,
}

// directExts widens premergedExts for the any-direct fallback tier.
var directExts = map[string]bool{
	"mp4": true, "webm": true, "mov": true, "3gp": true, "mkv": true,
}

func segmented(f model.FormatDescriptor) bool {
	return f.URL == "" || strings.Contains(f.URL, "m3u8") || segmentedProtocols[f.Protocol]
}

// ResolveVideo selects the best directly fetchable video format under the
// given height ceiling.
//
// Tier 1 scans for pre-merged formats (both codecs present, common container)
// and keeps the greatest height at or below the ceiling; equal heights keep
// the first found. Tier 2 relaxes codec and height constraints and takes the
// first direct format in list order. If both tiers come up empty the caller
// has to remux.
func ResolveVideo(formats []model.FormatDescriptor, ceiling int) Resolution {
	var best *model.FormatDescriptor
	bestHeight := 0

	for i := range formats {
		f := &formats[i]
		if segmented(*f) {
			continue
		}
		if f.VideoCodec == "none" || f.AudioCodec == "none" {
			continue
		}
		if !premergedExts[f.Ext] {
			continue
		}
		if f.Height > ceiling && ceiling != HeightUnbounded {
			continue
		}
		if best == nil || f.Height > bestHeight {
			best = f
			bestHeight = f.Height
		}
	}

	if best == nil {
		for i := range formats {
			f := &formats[i]
			if segmented(*f) {
				continue
			}
			if !directExts[f.Ext] {
				continue
			}
			best = f
			break
		}
	}

	if best == nil {
		return Resolution{Mode: ModeNone}
	}

	// The extractor occasionally reports a playlist URL under a plain
	// protocol tag; catch it here rather than hand out a broken link.
	if best.URL == "" || strings.Contains(strings.ToLower(best.URL), "m3u8") {
		return Resolution{Mode: ModeInvalidURL}
	}

	ext := best.Ext
	if ext == "" {
		ext = "mp4"
	}
	return Resolution{Mode: ModeDirect, Format: *best, Ext: ext}
}

// ResolveAudio selects the best directly fetchable audio-only format.
//
// Muxed formats are skipped outright: serving video bytes for an audio
// request wastes bandwidth. Among audio-only candidates the greatest bitrate
// wins (abr, falling back to tbr), equal bitrates keep the first found.
// Returns ModeNone when nothing qualifies, in which case the caller extracts
// audio through the merge tool.
func ResolveAudio(formats []model.FormatDescriptor) Resolution {
	var best *model.FormatDescriptor
	bestBitrate := 0.0

	for i := range formats {
		f := &formats[i]
		if segmented(*f) {
			continue
		}
		if f.AudioCodec == "none" {
			continue
		}
		if f.VideoCodec != "none" {
			continue
		}
		br := f.AudioBR
		if br == 0 {
			br = f.TotalBR
		}
		if best == nil || br > bestBitrate {
			best = f
			bestBitrate = br
		}
	}

	if best == nil {
		return Resolution{Mode: ModeNone}
	}
	if best.URL == "" || strings.Contains(strings.ToLower(best.URL), "m3u8") {
		return Resolution{Mode: ModeNone}
	}

	return Resolution{Mode: ModeDirect, Format: *best, Ext: NormalizeAudioExt(best.Ext)}
}

// NormalizeAudioExt collapses audio containers to the three the front-end
// advertises: webm-family stays webm, mp3 stays mp3, everything else is m4a.
func NormalizeAudioExt(ext string) string {
	switch ext {
	case "webm", "opus", "ogg":
		return "webm"
	case "mp3":
		return "mp3"
	default:
		return "m4a"
	}
}
