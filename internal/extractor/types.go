package extractor

import "anydl/internal/model"

// Metadata is the extracted information for one video.
type Metadata struct {
	ID        string
	Title     string
	Duration  int
	Thumbnail string
	Uploader  string
	ViewCount int64
	Ext       string
	URL       string // top-level media URL, present for some single-format sites
	Formats   []model.FormatDescriptor
}

// rawInfo mirrors the yt-dlp -J output shape.
type rawInfo struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Duration  float64     `json:"duration"`
	Thumbnail string      `json:"thumbnail"`
	Uploader  string      `json:"uploader"`
	ViewCount int64       `json:"view_count"`
	Ext       string      `json:"ext"`
	URL       string      `json:"url"`
	Formats   []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID       string   `json:"format_id"`
	URL            string   `json:"url"`
	Ext            string   `json:"ext"`
	Protocol       string   `json:"protocol"`
	Height         *int     `json:"height"`
	Width          *int     `json:"width"`
	VCodec         *string  `json:"vcodec"`
	ACodec         *string  `json:"acodec"`
	ABR            *float64 `json:"abr"`
	TBR            *float64 `json:"tbr"`
	Filesize       *int64   `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	Fps            *float64 `json:"fps"`
}

// descriptor converts a raw yt-dlp format entry into the domain model.
// Absent codec fields collapse to the "none" sentinel the resolver expects.
func (r rawFormat) descriptor() model.FormatDescriptor {
	d := model.FormatDescriptor{
		FormatID:   r.FormatID,
		URL:        r.URL,
		Ext:        r.Ext,
		Protocol:   r.Protocol,
		VideoCodec: "none",
		AudioCodec: "none",
	}
	if r.Height != nil {
		d.Height = *r.Height
	}
	if r.Width != nil {
		d.Width = *r.Width
	}
	if r.VCodec != nil && *r.VCodec != "" {
		d.VideoCodec = *r.VCodec
	}
	if r.ACodec != nil && *r.ACodec != "" {
		d.AudioCodec = *r.ACodec
	}
	if r.ABR != nil {
		d.AudioBR = *r.ABR
	}
	if r.TBR != nil {
		d.TotalBR = *r.TBR
	}
	if r.Filesize != nil {
		d.Filesize = *r.Filesize
	} else if r.FilesizeApprox != nil {
		d.Filesize = int64(*r.FilesizeApprox)
	}
	if r.Fps != nil {
		d.Fps = *r.Fps
	}
	return d
}

func (r rawInfo) metadata() *Metadata {
	m := &Metadata{
		ID:        r.ID,
		Title:     r.Title,
		Duration:  int(r.Duration),
		Thumbnail: r.Thumbnail,
		Uploader:  r.Uploader,
		ViewCount: r.ViewCount,
		Ext:       r.Ext,
		URL:       r.URL,
		Formats:   make([]model.FormatDescriptor, 0, len(r.Formats)),
	}
	if m.Title == "" {
		m.Title = "video"
	}
	for _, f := range r.Formats {
		m.Formats = append(m.Formats, f.descriptor())
	}
	return m
}
