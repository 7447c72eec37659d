package storage

import "context"

// Uploader is the media storage interface consumed by the upload handler.
// The production implementation is S3; tests substitute an in-memory fake.
type Uploader interface {
	UploadMedia(ctx context.Context, data []byte, userID, originalFilename string) (*UploadResult, error)
	DeleteFile(ctx context.Context, key string) error
}

// UploadResult contains the result of a media upload
type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Size   int64  `json:"size"`
}
