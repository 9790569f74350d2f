// Package storage reads inputs from and writes artifacts to the local
// filesystem or S3, addressed by plain paths or s3://bucket/key URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned when the addressed object does not exist.
var ErrNotFound = errors.New("object not found")

// BlobStore is a flat key/value object store.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Location is a parsed artifact address.
type Location struct {
	// Bucket is empty for local paths.
	Bucket string
	Key    string
}

// IsRemote reports whether the location names an S3 object.
func (l Location) IsRemote() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.IsRemote() {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// IsRemote reports whether raw is an s3:// URL.
func IsRemote(raw string) bool {
	return strings.HasPrefix(raw, "s3://")
}

// ParseLocation splits an s3://bucket/key URL. Anything else is a local
// path.
func ParseLocation(raw string) (Location, error) {
	if !IsRemote(raw) {
		if raw == "" {
			return Location{}, errors.New("empty path")
		}
		return Location{Key: raw}, nil
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(raw, "s3://"), "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, fmt.Errorf("invalid s3 url %q, expected s3://bucket/key", raw)
	}
	return Location{Bucket: bucket, Key: key}, nil
}
