// Package storage contains the object storage abstraction that holds uploaded study files.
// Implementations stream content and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadPrefix is the root of every stored object key. Keys double as the public file path
// served back under /uploads/*.
const UploadPrefix = "uploads"

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectKey builds a collision-free key for an upload of the given collection,
// keeping the original file extension: uploads/<collection>/<uuid><ext>.
func ObjectKey(collection, filename string) string {
	ext := strings.ToLower(path.Ext(NormalizePath(filename)))
	return path.Join(UploadPrefix, collection, uuid.NewString()+ext)
}

// NormalizePath converts a client-supplied or OS-specific path into the forward-slash form
// that is persisted and served. Leading slashes and dot segments are removed.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if p == "" {
		return ""
	}
	cleaned := path.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/")
}

// KeyFromPath maps a persisted file path to its object key. Paths outside the upload
// prefix are not managed by this package and yield "".
func KeyFromPath(filePath string) string {
	p := NormalizePath(filePath)
	if !strings.HasPrefix(p, UploadPrefix+"/") {
		return ""
	}
	return p
}
