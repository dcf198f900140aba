package storage

import (
	"context"
	"fmt"
)

var _ Uploader = (*FakeUploader)(nil)

// FakeUploader keeps blobs in memory, for tests
type FakeUploader struct {
	Blobs map[string][]byte
	Err   error
}

func NewFakeUploader() *FakeUploader {
	return &FakeUploader{
		Blobs: make(map[string][]byte),
	}
}

func (f *FakeUploader) UploadImage(_ context.Context, data []byte) (string, error) {
	return f.put(BucketImages, data)
}

func (f *FakeUploader) UploadInput(_ context.Context, data []byte) (string, error) {
	return f.put(BucketInputs, data)
}

func (f *FakeUploader) put(bucket string, data []byte) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	url := fmt.Sprintf("fake://%s/%s", bucket, ContentAddress(data))
	f.Blobs[url] = data
	return url, nil
}
