package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryBucket struct {
	objects map[string]*memoryObject
}

type memoryObject struct {
	contentType string
	buf         bytes.Buffer
	closed      bool
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: make(map[string]*memoryObject)}
}

func (b *memoryBucket) NewWriter(_ context.Context, object, contentType string) io.WriteCloser {
	obj := &memoryObject{contentType: contentType}
	b.objects[object] = obj
	return obj
}

func (b *memoryBucket) ObjectURL(object string) string {
	return "https://cdn.example.com/" + object
}

func (o *memoryObject) Write(p []byte) (int, error) { return o.buf.Write(p) }
func (o *memoryObject) Close() error                { o.closed = true; return nil }

func dataURL(contentType string, payload []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(payload))
}

func TestParseDataURL(t *testing.T) {
	parsed, err := ParseDataURL(dataURL("image/png", []byte{0x89, 0x50}))
	require.NoError(t, err)
	require.Equal(t, "image/png", parsed.ContentType)
	require.Equal(t, []byte{0x89, 0x50}, parsed.Data)
}

func TestParseDataURLRejectsPlainURL(t *testing.T) {
	_, err := ParseDataURL("https://example.com/pic.png")
	require.ErrorIs(t, err, ErrNotDataURL)
}

func TestParseDataURLRejectsBadPayload(t *testing.T) {
	_, err := ParseDataURL("data:image/png;base64,not-base64!!")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotDataURL)
}

func TestUploaderStoresDataURL(t *testing.T) {
	bucket := newMemoryBucket()
	uploader, err := NewUploader(bucket, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)

	url, err := uploader.Store(context.Background(), "gallery", dataURL("image/jpeg", []byte("jpeg-bytes")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.example.com/media/gallery/"))
	require.True(t, strings.HasSuffix(url, ".jpg"))

	require.Len(t, bucket.objects, 1)
	for _, obj := range bucket.objects {
		require.Equal(t, "image/jpeg", obj.contentType)
		require.Equal(t, "jpeg-bytes", obj.buf.String())
		require.True(t, obj.closed)
	}
}

func TestUploaderPassesThroughExternalURL(t *testing.T) {
	bucket := newMemoryBucket()
	uploader, err := NewUploader(bucket)
	require.NoError(t, err)

	url, err := uploader.Store(context.Background(), "gallery", "https://example.com/pic.png")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/pic.png", url)
	require.Empty(t, bucket.objects)
}

func TestNewUploaderRequiresBucket(t *testing.T) {
	_, err := NewUploader(nil)
	require.Error(t, err)
}
