// Package backup writes date-keyed exports of the portfolio database to
// object storage.
package backup

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"

	manifestName = "manifest.json"
	rootPrefix   = "backups"
)

// FileEntry describes one uploaded object.
type FileEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	MD5Hash     string `json:"md5Hash"`
}

// Manifest is written last; its presence marks the day's backup as done.
type Manifest struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Date      string      `json:"date"`
	Files     []FileEntry `json:"files"`
	TotalSize int64       `json:"totalSize"`
	Duration  int64       `json:"duration"` // milliseconds
	Status    string      `json:"status"`
	Errors    []string    `json:"errors"`
	Reporter  string      `json:"reporter"`
}

// DatePrefix returns the object prefix for a backup date (YYYY-MM-DD).
func DatePrefix(date string) string {
	return rootPrefix + "/" + date + "/"
}

func manifestPath(date string) string {
	return DatePrefix(date) + manifestName
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
