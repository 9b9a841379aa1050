package transcript

import (
	"context"

	"github.com/nijaru/yt-transcript/captions"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/sirupsen/logrus"
)

type Outcome int

const (
	OutcomeAccepted Outcome = iota
	// OutcomeEmpty means the endpoint answered but never with enough text.
	OutcomeEmpty
	// OutcomeTransientFailure means no attempt got a decodable body.
	OutcomeTransientFailure
	// OutcomePermanentFailure means the context ended; nothing further
	// should be tried.
	OutcomePermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTransientFailure:
		return "transient_failure"
	case OutcomePermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

// Prober fetches one json3 caption URL with bounded retries.
type Prober struct {
	fetcher Fetcher
	backoff utils.Backoff
	logger  *logrus.Logger
}

func NewProber(fetcher Fetcher, backoff utils.Backoff, logger *logrus.Logger) *Prober {
	return &Prober{fetcher: fetcher, backoff: backoff, logger: logger}
}

// Probe returns the first accepted transcript served by rawURL. Fetch
// errors, bad statuses, malformed JSON and short transcripts are all
// retried the same way until the attempts run out.
func (p *Prober) Probe(ctx context.Context, rawURL string) (*models.Transcript, Outcome) {
	var (
		result  *models.Transcript
		decoded bool
	)

	ok, attempts, err := p.backoff.Retry(ctx, func(attempt int) bool {
		var doc captions.Document
		if err := p.fetcher.JSON(ctx, rawURL, &doc); err != nil {
			p.logger.WithFields(logrus.Fields{
				"url":     rawURL,
				"attempt": attempt,
				"error":   err,
			}).Debug("Caption fetch failed")
			return false
		}
		decoded = true

		if len(doc.Events) == 0 {
			return false
		}
		tr := captions.Normalize(doc.Events)
		if !tr.Accepted() {
			return false
		}
		result = &tr
		return true
	})

	switch {
	case ok:
		p.logger.WithFields(logrus.Fields{
			"url":      rawURL,
			"attempts": attempts,
			"segments": len(result.Segments),
		}).Debug("Caption probe accepted")
		return result, OutcomeAccepted
	case err != nil:
		return nil, OutcomePermanentFailure
	case decoded:
		return nil, OutcomeEmpty
	default:
		return nil, OutcomeTransientFailure
	}
}
