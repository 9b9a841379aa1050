package transcript

import (
	"context"
	"strings"

	"github.com/nijaru/yt-transcript/captions"
	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrPrimaryExhausted = errors.New("primary caption path exhausted")

var preferredLanguages = []string{"en", "en-US", "en-GB"}

// Track is a caption track advertised for a video.
type Track struct {
	LanguageCode string
	Name         string
	Kind         string
	BaseURL      string
}

func (t Track) Generated() bool { return t.Kind == "asr" }

// CaptionLibrary is the well-supported transcript capability tried before
// the timed-text cascade.
type CaptionLibrary interface {
	// Transcript returns the segments of the first available track among
	// languages.
	Transcript(ctx context.Context, videoID string, languages []string) ([]models.Segment, error)
	Tracks(ctx context.Context, videoID string) ([]Track, error)
}

type branchResult struct {
	transcript *models.Transcript
	err        error
}

type branch struct {
	name string
	run  func(ctx context.Context, videoID string, tracks *trackList) branchResult
}

// Primary tries the caption library in a fixed order: a direct transcript
// fetch with English preference, then the best manual English track, then
// the best generated English track.
type Primary struct {
	library CaptionLibrary
	fetcher Fetcher
	prober  *Prober
	logger  *logrus.Logger
}

func NewPrimary(library CaptionLibrary, fetcher Fetcher, prober *Prober, logger *logrus.Logger) *Primary {
	return &Primary{
		library: library,
		fetcher: fetcher,
		prober:  prober,
		logger:  logger,
	}
}

func (p *Primary) branches() []branch {
	return []branch{
		{name: "primary/transcript", run: p.fetchPreferred},
		{name: "primary/manual-track", run: func(ctx context.Context, id string, tl *trackList) branchResult {
			return p.fetchTrack(ctx, id, tl, false)
		}},
		{name: "primary/asr-track", run: func(ctx context.Context, id string, tl *trackList) branchResult {
			return p.fetchTrack(ctx, id, tl, true)
		}},
	}
}

// Try returns the first accepted transcript or ErrPrimaryExhausted.
func (p *Primary) Try(ctx context.Context, videoID string) (*models.Transcript, error) {
	tracks := &trackList{library: p.library}
	logger := p.logger.WithField("video_id", videoID)

	for _, b := range p.branches() {
		res := b.run(ctx, videoID, tracks)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.err != nil {
			logger.WithFields(logrus.Fields{
				"branch": b.name,
				"error":  res.err,
			}).Debug("Primary branch failed")
			continue
		}
		if res.transcript.Accepted() {
			res.transcript.Source = b.name
			logger.WithField("branch", b.name).Info("Primary path resolved transcript")
			return res.transcript, nil
		}
		logger.WithField("branch", b.name).Debug("Primary branch below acceptance threshold")
	}

	return nil, ErrPrimaryExhausted
}

func (p *Primary) fetchPreferred(ctx context.Context, videoID string, _ *trackList) branchResult {
	segments, err := p.library.Transcript(ctx, videoID, preferredLanguages)
	if err != nil {
		return branchResult{err: err}
	}
	tr := captions.FromSegments(segments)
	return branchResult{transcript: &tr}
}

func (p *Primary) fetchTrack(ctx context.Context, videoID string, tl *trackList, generated bool) branchResult {
	tracks, err := tl.get(ctx, videoID)
	if err != nil {
		return branchResult{err: err}
	}
	track, ok := PickEnglishTrack(tracks, generated)
	if !ok {
		return branchResult{err: errors.Errorf("no english track (generated=%t)", generated)}
	}

	if tr, outcome := p.prober.Probe(ctx, json3URL(track.BaseURL)); outcome == OutcomeAccepted {
		return branchResult{transcript: tr}
	}
	if ctx.Err() != nil {
		return branchResult{err: ctx.Err()}
	}

	body, err := p.fetcher.Text(ctx, track.BaseURL)
	if err != nil {
		return branchResult{err: errors.Wrap(err, "failed to fetch caption track")}
	}
	segments, err := captions.ParseXML([]byte(body))
	if err != nil {
		return branchResult{err: err}
	}
	tr := captions.FromSegments(segments)
	return branchResult{transcript: &tr}
}

// PickEnglishTrack selects the best English track of the requested kind:
// an exact preferred language code first, then any "en" variant.
func PickEnglishTrack(tracks []Track, generated bool) (Track, bool) {
	for _, lang := range preferredLanguages {
		for _, t := range tracks {
			if t.Generated() == generated && strings.EqualFold(t.LanguageCode, lang) {
				return t, true
			}
		}
	}
	for _, t := range tracks {
		if t.Generated() == generated && strings.HasPrefix(strings.ToLower(t.LanguageCode), "en") {
			return t, true
		}
	}
	return Track{}, false
}

func json3URL(baseURL string) string {
	if strings.Contains(baseURL, "fmt=") {
		return baseURL
	}
	if strings.Contains(baseURL, "?") {
		return baseURL + "&fmt=json3"
	}
	return baseURL + "?fmt=json3"
}

// trackList lists tracks at most once per Try.
type trackList struct {
	library CaptionLibrary
	done    bool
	tracks  []Track
	err     error
}

func (tl *trackList) get(ctx context.Context, videoID string) ([]Track, error) {
	if !tl.done {
		tl.tracks, tl.err = tl.library.Tracks(ctx, videoID)
		tl.done = true
	}
	return tl.tracks, tl.err
}
