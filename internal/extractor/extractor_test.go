package extractor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"http://vimeo.com/123", true},
		{"ftp://example.com/video", false},
		{"javascript:alert(1)", false},
		{"not a url", false},
		{"", false},
		{"https://", false}, // no host
	}

	for _, tt := range tests {
		if got := ValidateURL(tt.url); got != tt.want {
			t.Errorf("ValidateURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	base := errors.New("exit status 1")

	tests := []struct {
		name   string
		output string
		want   error
	}{
		{"unsupported", "ERROR: Unsupported URL: https://example.com", ErrUnsupportedPlatform},
		{"unavailable", "ERROR: Video unavailable", ErrUnavailable},
		{"private", "ERROR: Private video. Sign in if you've been granted access", ErrPrivate},
		{"age restricted", "ERROR: this video is age-restricted", ErrAgeRestricted},
		{"auth", "ERROR: Sign in to confirm your age", ErrAuthRequired},
		{"generic", "ERROR: something else entirely", ErrDownloadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.output, base)
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestSelectorFor(t *testing.T) {
	if s := SelectorFor("720"); !strings.Contains(s, "height<=720") {
		t.Errorf("SelectorFor(720) = %q, missing height bound", s)
	}
	if s := SelectorFor("audio"); !strings.Contains(s, "bestaudio") {
		t.Errorf("SelectorFor(audio) = %q, missing bestaudio", s)
	}
	if s := SelectorFor("bogus"); s != formatSelectors["best"] {
		t.Errorf("SelectorFor(bogus) = %q, want best selector", s)
	}
}

func TestValidQuality(t *testing.T) {
	for _, q := range []string{"best", "2160", "1440", "1080", "720", "480", "360", "240", "audio"} {
		if !ValidQuality(q) {
			t.Errorf("ValidQuality(%q) = false, want true", q)
		}
	}
	if ValidQuality("4k") {
		t.Error("ValidQuality(4k) = true, want false")
	}
}

func TestFindOutput(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		want      string
		wantError bool
	}{
		{
			name:  "prefers mp4 over webm",
			files: []string{"clip.webm", "clip.mp4"},
			want:  "clip.mp4",
		},
		{
			name:  "mkv when no mp4",
			files: []string{"clip.webm", "clip.mkv"},
			want:  "clip.mkv",
		},
		{
			name:  "audio output",
			files: []string{"clip.mp3"},
			want:  "clip.mp3",
		},
		{
			name:  "unexpected container found via glob",
			files: []string{"clip.flv"},
			want:  "clip.flv",
		},
		{
			name:      "error when nothing produced",
			files:     nil,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
					t.Fatalf("write fixture: %v", err)
				}
			}

			got, err := findOutput(filepath.Join(dir, "clip"))
			if tt.wantError {
				if err == nil {
					t.Fatal("findOutput() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("findOutput() unexpected error: %v", err)
			}
			if filepath.Base(got) != tt.want {
				t.Errorf("findOutput() = %q, want %q", filepath.Base(got), tt.want)
			}
		})
	}
}

// Video titles flow into the output base, so bracketed or starred names must
// resolve as literal paths rather than glob patterns.
func TestFindOutputWithGlobMetacharacters(t *testing.T) {
	tests := []string{
		"Clip [HD]_ab12",
		"Mix [Live] (Part 1)_cd34",
	}

	for _, base := range tests {
		t.Run(base, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, base+".mp4")
			if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			got, err := findOutput(filepath.Join(dir, base))
			if err != nil {
				t.Fatalf("findOutput() error: %v", err)
			}
			if got != path {
				t.Errorf("findOutput() = %q, want %q", got, path)
			}
		})
	}
}

func TestRawFormatDescriptor(t *testing.T) {
	payload := `{
		"format_id": "22",
		"url": "https://cdn/video.mp4",
		"ext": "mp4",
		"protocol": "https",
		"height": 720,
		"vcodec": "avc1.64001F",
		"acodec": "mp4a.40.2",
		"tbr": 1200.5,
		"filesize_approx": 1048576.0
	}`

	var raw rawFormat
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	d := raw.descriptor()
	if d.Height != 720 || d.VideoCodec != "avc1.64001F" || d.AudioCodec != "mp4a.40.2" {
		t.Errorf("descriptor() = %+v", d)
	}
	if d.Filesize != 1048576 {
		t.Errorf("descriptor() filesize = %d, want approx fallback 1048576", d.Filesize)
	}

	// Absent codec fields collapse to the sentinel.
	var bare rawFormat
	if err := json.Unmarshal([]byte(`{"url":"https://cdn/a","ext":"m4a"}`), &bare); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	bd := bare.descriptor()
	if bd.VideoCodec != "none" || bd.AudioCodec != "none" {
		t.Errorf("descriptor() codecs = %q/%q, want none/none", bd.VideoCodec, bd.AudioCodec)
	}
}
