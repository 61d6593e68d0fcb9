// Package recordings archives provider call recordings into object
// storage. It subscribes to RecordingAvailable events published by the
// webhook module, downloads the recording from the provider URL and
// stores it under the recordings bucket.
package recordings

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dialer_portal_backend/internal/adapters/storage"
	"dialer_portal_backend/internal/events"
	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/logger"
)

// RecordingKeyWriter persists the archived object key against the call
// log. Implemented by the webhook repository.
type RecordingKeyWriter interface {
	SetRecordingKey(ctx context.Context, callSID, key string) error
}

// Archiver downloads finished recordings and stores them durably.
type Archiver struct {
	storage  storage.StorageService
	bucket   string
	calls    RecordingKeyWriter
	log      *logger.Logger
	client   *http.Client
	authUser string
	authPass string
}

// New creates an archiver. Provider recording URLs require basic auth
// with the account credentials; providers that serve unauthenticated
// URLs leave the credentials empty.
func New(storageSvc storage.StorageService, bucket string, calls RecordingKeyWriter, log *logger.Logger, cfg config.WebhookConfig) *Archiver {
	return &Archiver{
		storage:  storageSvc,
		bucket:   bucket,
		calls:    calls,
		log:      log,
		client:   &http.Client{Timeout: 60 * time.Second},
		authUser: cfg.GetProviderAccountSID(),
		authPass: cfg.GetProviderAuthToken(),
	}
}

// RegisterHandlers subscribes the archiver to recording events.
func (a *Archiver) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.RecordingAvailable{}.EventName(), events.HandlerFunc(a.handleRecordingAvailable))
}

func (a *Archiver) handleRecordingAvailable(ctx context.Context, event events.Event) error {
	recording, ok := event.(events.RecordingAvailable)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	key, err := a.Archive(ctx, recording.CallSID, recording.RecordingSID, recording.RecordingURL)
	if err != nil {
		a.log.Error("failed to archive recording", "callSid", recording.CallSID, "error", err)
		return err
	}

	a.log.Info("recording archived", "callSid", recording.CallSID, "key", key)
	return nil
}

// Archive downloads one recording and uploads it to the bucket, then
// stores the object key on the call log. Returns the object key.
func (a *Archiver) Archive(ctx context.Context, callSID, recordingSID, recordingURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return "", fmt.Errorf("build recording request: %w", err)
	}
	if a.authUser != "" {
		req.SetBasicAuth(a.authUser, a.authPass)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download recording: provider returned %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	fileName := recordingSID + ".mp3"
	if recordingSID == "" {
		fileName = callSID + ".mp3"
	}

	key, err := a.storage.UploadFile(ctx, a.bucket, callSID, fileName, contentType, resp.Body, resp.ContentLength)
	if err != nil {
		return "", fmt.Errorf("store recording: %w", err)
	}

	if err := a.calls.SetRecordingKey(ctx, callSID, key); err != nil {
		// Unlinked objects are unreachable, so clean up the upload.
		if delErr := a.storage.DeleteObject(ctx, a.bucket, key); delErr != nil {
			a.log.Error("failed to delete orphaned recording", "key", key, "error", delErr)
		}
		return "", fmt.Errorf("link recording to call log: %w", err)
	}

	return key, nil
}
