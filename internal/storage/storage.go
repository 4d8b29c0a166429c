package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations used to archive exports.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// ArchivePrefix is the folder holding every archived export of a plan,
// e.g. financial/42/.
func ArchivePrefix(prefix string, planID int64) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("%d/", planID)
	}
	return fmt.Sprintf("%s/%d/", prefix, planID)
}

// ArchiveKey builds the object key for an exported projection,
// e.g. financial/42/20260101T120000Z.csv.
func ArchiveKey(prefix string, planID int64, at time.Time, extension string) string {
	return ArchivePrefix(prefix, planID) + at.UTC().Format("20060102T150405Z") + "." + strings.TrimPrefix(extension, ".")
}
