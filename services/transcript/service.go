package transcript

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/sirupsen/logrus"
)

type service struct {
	primary *Primary
	cascade *Cascade
	history HistoryRecorder
	config  Config
	logger  *logrus.Logger
}

type Option func(*service)

// WithHistory records every resolution outcome.
func WithHistory(h HistoryRecorder) Option {
	return func(s *service) { s.history = h }
}

// WithSleep replaces the sleep used between retries and languages.
func WithSleep(sleep utils.SleepFunc) Option {
	return func(s *service) {
		s.primary.prober.backoff.Sleep = sleep
		s.cascade.prober.backoff.Sleep = sleep
		s.cascade.pause.Sleep = sleep
	}
}

// NewService wires the primary path and the cascade. A nil library
// disables the primary path.
func NewService(fetcher Fetcher, library CaptionLibrary, config Config, logger *logrus.Logger, opts ...Option) Service {
	prober := NewProber(fetcher, utils.Backoff{
		Attempts: config.Attempts,
		Delay:    config.RetryDelay,
	}, logger)

	s := &service{
		cascade: NewCascade(fetcher, prober, utils.Backoff{Delay: config.LanguagePause}, logger),
		primary: NewPrimary(library, fetcher, prober, logger),
		config:  config,
		logger:  logger,
	}
	if library == nil {
		s.config.PrimaryEnabled = false
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "TranscriptService.GetTranscript"

	if s.config.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ResolveTimeout)
		defer cancel()
	}

	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"video_id":  videoID,
	})
	logger.Info("Resolving transcript")

	start := time.Now()
	tr, attempts, err := s.resolve(ctx, videoID)
	s.record(videoID, tr, attempts, err, time.Since(start))

	switch {
	case err == nil:
		logger.WithFields(logrus.Fields{
			"source":   tr.Source,
			"segments": len(tr.Segments),
			"duration": time.Since(start),
		}).Info("Transcript resolved")
		return tr, nil
	case stderrors.Is(err, ErrTranscriptUnavailable), stderrors.Is(err, context.DeadlineExceeded):
		logger.WithError(err).Info("Transcript unavailable")
		return nil, errors.NotFound(op, err, "Transcript unavailable")
	default:
		logger.WithError(err).Error("Transcript resolution failed")
		return nil, errors.Internal(op, err, err.Error())
	}
}

// resolve runs the primary path then the cascade, counting the branches and
// caption URLs tried.
func (s *service) resolve(ctx context.Context, videoID string) (*models.Transcript, int, error) {
	attempts := 0

	if s.config.PrimaryEnabled {
		tr, err := s.primary.Try(ctx, videoID)
		attempts++
		if err == nil {
			return tr, attempts, nil
		}
		if !stderrors.Is(err, ErrPrimaryExhausted) {
			return nil, attempts, err
		}
	}

	tr, probed, err := s.cascade.resolve(ctx, videoID)
	return tr, attempts + probed, err
}

func (s *service) record(videoID string, tr *models.Transcript, attempts int, err error, elapsed time.Duration) {
	if s.history == nil {
		return
	}

	res := &models.Resolution{
		VideoID:  videoID,
		Attempts: attempts,
		Duration: elapsed,
	}
	switch {
	case err == nil:
		res.Status = models.ResolutionResolved
		res.Source = tr.Source
	case stderrors.Is(err, ErrTranscriptUnavailable), stderrors.Is(err, context.DeadlineExceeded):
		res.Status = models.ResolutionUnavailable
		res.Error = err.Error()
	default:
		res.Status = models.ResolutionFailed
		res.Error = err.Error()
	}

	// The request context may already be done; the record outlives it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Save(ctx, res); err != nil {
		s.logger.WithError(err).WithField("video_id", videoID).Warn("Failed to record resolution")
	}
}

func (s *service) Recent(ctx context.Context, limit int) ([]*models.Resolution, error) {
	if s.history == nil {
		return []*models.Resolution{}, nil
	}
	return s.history.Recent(ctx, limit)
}
