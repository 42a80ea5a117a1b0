package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"anydl/internal/model"
	"anydl/pkg/logger"

	"go.uber.org/zap"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client wraps the yt-dlp binary. It is the only component that talks to
// third-party video platforms.
type Client struct {
	cfg *model.ExtractorConfig
}

// New creates an extractor client.
func New(cfg *model.ExtractorConfig) *Client {
	return &Client{cfg: cfg}
}

// ValidateURL checks scheme and host before anything is handed to yt-dlp.
func ValidateURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Extract fetches metadata and the format descriptor list for a URL without
// downloading anything.
func (c *Client) Extract(ctx context.Context, videoURL string) (*Metadata, error) {
	if !ValidateURL(videoURL) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, videoURL)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
	defer cancel()

	args := []string{
		"-J",
		"--no-playlist",
		"--no-warnings",
		"--socket-timeout", strconv.Itoa(c.cfg.SocketTimeout),
		"--user-agent", browserUserAgent,
		videoURL,
	}

	cmd := exec.CommandContext(ctx, c.cfg.BinaryPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		logger.Logger.Error("Metadata extraction failed",
			zap.String("url", videoURL),
			zap.String("stderr", stderr.String()),
			zap.Error(err))
		return nil, classify(stderr.String(), err)
	}

	var raw rawInfo
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	meta := raw.metadata()
	logger.Logger.Info("Metadata extracted",
		zap.String("url", videoURL),
		zap.String("title", meta.Title),
		zap.Int("formats", len(meta.Formats)))
	return meta, nil
}

// DownloadAndRemux downloads the requested quality and merges separate video
// and audio streams into one container via FFmpeg. outBase is a path without
// extension; the produced file path is returned.
func (c *Client) DownloadAndRemux(ctx context.Context, videoURL, quality, outBase string) (string, error) {
	if !ValidateURL(videoURL) {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, videoURL)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
	defer cancel()

	args := []string{
		"-f", SelectorFor(quality),
		"-o", outBase + ".%(ext)s",
		"--no-playlist",
		"--no-warnings",
		"--restrict-filenames",
		"--socket-timeout", strconv.Itoa(c.cfg.SocketTimeout),
		"--retries", strconv.Itoa(c.cfg.Retries),
		"--fragment-retries", strconv.Itoa(c.cfg.Retries),
		"--user-agent", browserUserAgent,
	}
	if c.cfg.FFmpegPath != "" {
		args = append(args, "--ffmpeg-location", c.cfg.FFmpegPath)
	}
	if quality == "audio" {
		args = append(args, "-x", "--audio-format", "mp3", "--audio-quality", "192K")
	} else {
		args = append(args, "--merge-output-format", "mp4")
	}
	args = append(args, videoURL)

	cmd := exec.CommandContext(ctx, c.cfg.BinaryPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Logger.Error("Download failed",
			zap.String("url", videoURL),
			zap.String("quality", quality),
			zap.String("output", string(out)),
			zap.Error(err))
		return "", classify(string(out), err)
	}

	path, err := findOutput(outBase)
	if err != nil {
		return "", err
	}

	logger.Logger.Info("Download finished",
		zap.String("url", videoURL),
		zap.String("path", path))
	return path, nil
}

// outputExts are the containers yt-dlp can produce, in preference order.
var outputExts = []string{"mp4", "mkv", "webm", "mov", "mp3", "m4a"}

// findOutput locates the file yt-dlp produced for outBase. Known containers
// are checked as literal paths because the base carries the video title,
// which may contain characters Glob treats as pattern syntax. A glob over
// the escaped base catches any unexpected container.
func findOutput(outBase string) (string, error) {
	for _, ext := range outputExts {
		path := outBase + "." + ext
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	candidates, err := filepath.Glob(globEscape(outBase) + ".*")
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", errors.New("download completed but file not found")
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

// globEscape quotes the metacharacters filepath.Glob recognizes.
func globEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '*' || r == '?' || r == '[' {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
