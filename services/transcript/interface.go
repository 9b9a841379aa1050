package transcript

import (
	"context"
	"time"

	"github.com/nijaru/yt-transcript/models"
)

type Service interface {
	// GetTranscript resolves a video id to its transcript, trying the
	// primary library path before the timed-text cascade.
	GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error)

	// Recent lists the latest resolution outcomes, newest first.
	Recent(ctx context.Context, limit int) ([]*models.Resolution, error)
}

// Fetcher is the HTTP surface the resolver needs.
type Fetcher interface {
	JSON(ctx context.Context, rawURL string, dst any) error
	Text(ctx context.Context, rawURL string) (string, error)
}

// HistoryRecorder receives the outcome of every resolution.
type HistoryRecorder interface {
	Save(ctx context.Context, resolution *models.Resolution) error
	Recent(ctx context.Context, limit int) ([]*models.Resolution, error)
}

type Config struct {
	// Attempts and RetryDelay bound the fetches made against one URL.
	Attempts   int
	RetryDelay time.Duration

	// LanguagePause separates consecutive cascade plans.
	LanguagePause time.Duration

	// ResolveTimeout caps a whole resolution. Zero means no cap.
	ResolveTimeout time.Duration

	PrimaryEnabled bool
}
