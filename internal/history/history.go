package history

import (
	"errors"
	"time"
)

// Record statuses. Records are written once the outcome is known, so there
// are no in-flight states.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Serving modes. A direct record points at a source URL the client is
// redirected to; a merged record points at a local file produced by the
// remux fallback.
const (
	ModeDirect = "direct"
	ModeMerged = "merged"
)

// ErrNotFound is returned when a record id is unknown.
var ErrNotFound = errors.New("download record not found")

// Record is one download history entry. Target and ClientIP stay out of API
// responses; one is a local path or signed URL, the other is private.
type Record struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	URL       string    `gorm:"size:2048" json:"url"`
	Title     string    `gorm:"size:500" json:"title"`
	Platform  string    `gorm:"size:50;index" json:"platform"`
	Quality   string    `gorm:"size:20" json:"quality"`
	Status    string    `gorm:"size:20;index" json:"status"`
	Mode      string    `gorm:"size:20" json:"mode"`
	Target    string    `gorm:"size:2048" json:"-"` // direct URL or local file path
	Ext       string    `gorm:"size:10" json:"ext"`
	FileSize  int64     `json:"file_size"`
	Duration  int       `json:"duration"`
	Thumbnail string    `gorm:"size:2048" json:"thumbnail"`
	ClientIP  string    `gorm:"size:64" json:"-"`
	ErrorMsg  string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// Filter narrows List results.
type Filter struct {
	Platform string
	Status   string
	Limit    int
}

// Repository persists download records.
type Repository interface {
	Create(rec *Record) error
	Get(id string) (*Record, error)
	List(f Filter) ([]Record, error)
}
