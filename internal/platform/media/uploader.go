// Package media offloads inline data-URL images to Cloud Storage. Panels
// submit images as base64 data URLs; when a bucket is configured the raw
// bytes land in the bucket and the stored record keeps only the object URL.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrNotDataURL reports a payload that is not a base64 data URL.
	ErrNotDataURL = errors.New("media: value is not a data url")

	errInvalidBucket = errors.New("media: bucket name is required")
	errNoClient      = errors.New("media: storage client is required")
)

var contentTypeExtensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// BucketWriter is the slice of the Cloud Storage API the uploader needs.
type BucketWriter interface {
	NewWriter(ctx context.Context, object, contentType string) io.WriteCloser
	ObjectURL(object string) string
}

// Uploader stores decoded data-URL payloads as bucket objects.
type Uploader struct {
	bucket BucketWriter
	prefix string
	now    func() time.Time
}

// UploaderOption customises uploader behaviour.
type UploaderOption func(*Uploader)

// WithObjectPrefix places all objects under prefix.
func WithObjectPrefix(prefix string) UploaderOption {
	return func(u *Uploader) {
		u.prefix = strings.Trim(prefix, "/")
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) UploaderOption {
	return func(u *Uploader) {
		if clock != nil {
			u.now = clock
		}
	}
}

// NewUploader constructs an uploader over bucket.
func NewUploader(bucket BucketWriter, opts ...UploaderOption) (*Uploader, error) {
	if bucket == nil {
		return nil, errNoClient
	}
	u := &Uploader{bucket: bucket, prefix: "media", now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u, nil
}

// DataURL holds a parsed data URL.
type DataURL struct {
	ContentType string
	Data        []byte
}

// ParseDataURL splits a `data:<type>;base64,<payload>` string. Anything else
// returns ErrNotDataURL so callers can pass plain URLs through untouched.
func ParseDataURL(value string) (DataURL, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "data:") {
		return DataURL{}, ErrNotDataURL
	}
	meta, payload, found := strings.Cut(value[len("data:"):], ",")
	if !found {
		return DataURL{}, ErrNotDataURL
	}
	if !strings.HasSuffix(meta, ";base64") {
		return DataURL{}, ErrNotDataURL
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return DataURL{}, fmt.Errorf("media: decode payload: %w", err)
	}
	return DataURL{ContentType: contentType, Data: data}, nil
}

// Store writes the data URL's payload as a new object under kind and returns
// the object's URL. Non-data-URL values come back unchanged so records keep
// externally hosted images as-is.
func (u *Uploader) Store(ctx context.Context, kind, value string) (string, error) {
	parsed, err := ParseDataURL(value)
	if errors.Is(err, ErrNotDataURL) {
		return value, nil
	}
	if err != nil {
		return "", err
	}

	object := u.objectName(kind, parsed.ContentType)
	w := u.bucket.NewWriter(ctx, object, parsed.ContentType)
	if _, err := w.Write(parsed.Data); err != nil {
		w.Close()
		return "", fmt.Errorf("media: write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("media: finalize object %s: %w", object, err)
	}
	return u.bucket.ObjectURL(object), nil
}

func (u *Uploader) objectName(kind, contentType string) string {
	ext, ok := contentTypeExtensions[strings.ToLower(contentType)]
	if !ok {
		ext = "bin"
	}
	id := strings.ToLower(ulid.MustNew(ulid.Timestamp(u.now()), ulid.DefaultEntropy()).String())
	kind = strings.Trim(kind, "/")
	if kind == "" {
		kind = "misc"
	}
	if u.prefix == "" {
		return fmt.Sprintf("%s/%s.%s", kind, id, ext)
	}
	return fmt.Sprintf("%s/%s/%s.%s", u.prefix, kind, id, ext)
}

// GCSBucket adapts a Cloud Storage bucket handle to BucketWriter.
type GCSBucket struct {
	name   string
	handle *storage.BucketHandle
}

// NewGCSBucket wraps the named bucket of client.
func NewGCSBucket(client *storage.Client, name string) (*GCSBucket, error) {
	if client == nil {
		return nil, errNoClient
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errInvalidBucket
	}
	return &GCSBucket{name: name, handle: client.Bucket(name)}, nil
}

// NewWriter opens an object writer with the given content type.
func (b *GCSBucket) NewWriter(ctx context.Context, object, contentType string) io.WriteCloser {
	w := b.handle.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	return w
}

// ObjectURL returns the public URL of object.
func (b *GCSBucket) ObjectURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.name, object)
}
