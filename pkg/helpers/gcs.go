package helpers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

var (
	ErrBadDataURI = errors.New("malformed data uri")
	ErrNotAnImage = errors.New("data uri is not an image")
)

// MaxPhotoBytes bounds a decoded upload.
const MaxPhotoBytes = 5 << 20

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// PhotoBucket stores profile and listing photos in one bucket under
// <folder>/<owner>/<random><ext>.
type PhotoBucket struct {
	client *storage.Client
	bucket string
}

func NewPhotoBucket(client *storage.Client, bucket string) *PhotoBucket {
	return &PhotoBucket{client: client, bucket: bucket}
}

// Upload decodes dataURI and writes it to the bucket, returning its public URL.
func (b *PhotoBucket) Upload(ctx context.Context, folder, ownerID, dataURI string) (string, error) {
	data, contentType, ext, err := DecodeImageDataURI(dataURI)
	if err != nil {
		return "", err
	}
	objectPath := path.Join(folder, ownerID, uuid.NewString()+ext)
	return UploadObject(ctx, b.client, b.bucket, objectPath, contentType, bytes.NewReader(data))
}

// DecodeImageDataURI parses a base64 data URI. The content type is sniffed
// from the bytes; the declared one is ignored.
func DecodeImageDataURI(dataURI string) (data []byte, contentType, ext string, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURI), "data:")
	if !ok {
		return nil, "", "", ErrBadDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", "", ErrBadDataURI
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxPhotoBytes {
		return nil, "", "", fmt.Errorf("%w: larger than %d bytes", ErrBadDataURI, MaxPhotoBytes)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrBadDataURI, err)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", "", ErrNotAnImage
	}
	return data, mt.String(), mt.Extension(), nil
}

// UploadObject uploads bytes from r into bucket/objectPath with the provided contentType
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("gcs write %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", objectPath, err)
	}
	return PublicURL(bucket, objectPath), nil
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
