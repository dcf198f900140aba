package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/proofgrid/publisher-api/lib/logc"

	"golang.org/x/xerrors"
)

var logger = logc.Logger("storage")

const (
	BucketImages = "images"
	BucketInputs = "inputs"
)

// Uploader publishes artifacts and returns a fetchable url for each.
// The url is an opaque reference to the rest of the system.
type Uploader interface {
	UploadImage(ctx context.Context, data []byte) (string, error)
	UploadInput(ctx context.Context, data []byte) (string, error)
}

// ContentAddress names an artifact by its blake3 digest
func ContentAddress(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HTTPUploader puts content-addressed blobs to a storage provider
type HTTPUploader struct {
	base string
	cli  *http.Client
}

func NewHTTPUploader(base string) *HTTPUploader {
	return &HTTPUploader{
		base: strings.TrimRight(base, "/"),
		cli: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (u *HTTPUploader) UploadImage(ctx context.Context, data []byte) (string, error) {
	return u.upload(ctx, BucketImages, data)
}

func (u *HTTPUploader) UploadInput(ctx context.Context, data []byte) (string, error) {
	return u.upload(ctx, BucketInputs, data)
}

func (u *HTTPUploader) upload(ctx context.Context, bucket string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/%s/%s", u.base, bucket, ContentAddress(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", xerrors.Errorf("upload to %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := u.cli.Do(req)
	if err != nil {
		return "", xerrors.Errorf("upload to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", xerrors.Errorf("upload to %s: status %d: %s", url, resp.StatusCode, body)
	}

	logger.Debugf("uploaded %d bytes to %s", len(data), url)

	return url, nil
}
