package transcript

import (
	"context"

	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// Cascade walks the timed-text endpoints in a fixed priority order: ranked
// languages first, then language-agnostic generated captions. Candidates are
// tried one at a time and the first accepted transcript ends the walk.
//
// Without a deadline the worst case is
//
//	L*6*A*(T+D) + L*P + 2*A*(T+D)
//
// for L languages, A attempts per URL, fetch timeout T, retry delay D and
// language pause P. With the defaults (A=3, T=8s, D=350ms, P=250ms) and
// eight languages that is over twenty minutes. Config.ResolveTimeout caps it.
type Cascade struct {
	fetcher Fetcher
	prober  *Prober
	pause   utils.Backoff
	logger  *logrus.Logger
}

func NewCascade(fetcher Fetcher, prober *Prober, pause utils.Backoff, logger *logrus.Logger) *Cascade {
	return &Cascade{
		fetcher: fetcher,
		prober:  prober,
		pause:   pause,
		logger:  logger,
	}
}

// Resolve returns the first accepted transcript or ErrTranscriptUnavailable.
// A context error is returned as is.
func (c *Cascade) Resolve(ctx context.Context, videoID string) (*models.Transcript, error) {
	tr, _, err := c.resolve(ctx, videoID)
	return tr, err
}

func (c *Cascade) resolve(ctx context.Context, videoID string) (*models.Transcript, int, error) {
	languages := RankLanguages(c.discoverLanguages(ctx, videoID))

	logger := c.logger.WithFields(logrus.Fields{
		"video_id":  videoID,
		"languages": languages,
	})
	logger.Debug("Starting caption cascade")

	probed := 0
	for i, plan := range CascadePlans(videoID, languages) {
		if i > 0 {
			if err := c.pause.Pause(ctx); err != nil {
				return nil, probed, err
			}
		}

		tr, n, err := c.trial(ctx, plan)
		probed += n
		if err != nil {
			return nil, probed, err
		}
		if tr != nil {
			logger.WithFields(logrus.Fields{
				"source": tr.Source,
				"probed": probed,
			}).Info("Caption cascade resolved transcript")
			return tr, probed, nil
		}
	}

	logger.WithField("probed", probed).Info("Caption cascade exhausted")
	return nil, probed, ErrTranscriptUnavailable
}

// Trial probes each attempt in order and stops at the first acceptance. A
// nil transcript with a nil error means the plan was exhausted.
func (c *Cascade) Trial(ctx context.Context, plan []Attempt) (*models.Transcript, error) {
	tr, _, err := c.trial(ctx, plan)
	return tr, err
}

func (c *Cascade) trial(ctx context.Context, plan []Attempt) (*models.Transcript, int, error) {
	for i, attempt := range plan {
		tr, outcome := c.prober.Probe(ctx, attempt.URL())
		switch outcome {
		case OutcomeAccepted:
			tr.Source = attempt.Label()
			return tr, i + 1, nil
		case OutcomePermanentFailure:
			return nil, i + 1, ctx.Err()
		}
		c.logger.WithFields(logrus.Fields{
			"attempt": attempt.Label(),
			"outcome": outcome.String(),
		}).Debug("Caption candidate rejected")
	}
	return nil, len(plan), nil
}
