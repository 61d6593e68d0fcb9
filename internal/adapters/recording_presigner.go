package adapters

import (
	"context"
	"time"

	"dialer_portal_backend/internal/adapters/storage"
	"dialer_portal_backend/internal/webhook"
)

// RecordingPresigner adapts object storage for recording downloads.
type RecordingPresigner struct {
	storage storage.StorageService
	bucket  string
}

func NewRecordingPresigner(storageSvc storage.StorageService, bucket string) *RecordingPresigner {
	return &RecordingPresigner{storage: storageSvc, bucket: bucket}
}

func (a *RecordingPresigner) PresignRecording(ctx context.Context, key string) (string, time.Time, error) {
	presigned, err := a.storage.GenerateDownloadURL(ctx, a.bucket, key)
	if err != nil {
		return "", time.Time{}, err
	}
	return presigned.URL, presigned.ExpiresAt, nil
}

var _ webhook.RecordingPresigner = (*RecordingPresigner)(nil)
