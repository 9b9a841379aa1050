package transcript

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/nijaru/yt-transcript/fetch"
	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"
)

// YouTubeLibrary adapts github.com/kkdai/youtube to CaptionLibrary. Every
// library call is bounded by timeout.
type YouTubeLibrary struct {
	client  *youtube.Client
	timeout time.Duration
}

// NewYouTubeLibrary uses the fetch timeout for each call; a non-positive
// timeout falls back to the fetch default.
func NewYouTubeLibrary(httpClient *http.Client, timeout time.Duration) *YouTubeLibrary {
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	return &YouTubeLibrary{
		client:  &youtube.Client{HTTPClient: httpClient},
		timeout: timeout,
	}
}

func (l *YouTubeLibrary) video(ctx context.Context, videoID string) (*youtube.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	video, err := l.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load video")
	}
	return video, nil
}

func (l *YouTubeLibrary) transcript(ctx context.Context, video *youtube.Video, lang string) (youtube.VideoTranscript, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.client.GetTranscriptCtx(ctx, video, lang)
}

func (l *YouTubeLibrary) Transcript(ctx context.Context, videoID string, languages []string) ([]models.Segment, error) {
	video, err := l.video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, lang := range languages {
		segments, err := l.transcript(ctx, video, lang)
		if err != nil {
			lastErr = err
			if errors.Is(err, youtube.ErrTranscriptDisabled) {
				break
			}
			continue
		}
		if len(segments) > 0 {
			return convertSegments(segments), nil
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no transcript in preferred languages")
	}
	return nil, lastErr
}

func (l *YouTubeLibrary) Tracks(ctx context.Context, videoID string) ([]Track, error) {
	video, err := l.video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(video.CaptionTracks))
	for _, ct := range video.CaptionTracks {
		tracks = append(tracks, Track{
			LanguageCode: ct.LanguageCode,
			Name:         ct.Name.SimpleText,
			Kind:         ct.Kind,
			BaseURL:      ct.BaseURL,
		})
	}
	return tracks, nil
}

func convertSegments(in youtube.VideoTranscript) []models.Segment {
	out := make([]models.Segment, 0, len(in))
	for _, s := range in {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		out = append(out, models.Segment{
			Text:     text,
			Start:    float64(s.StartMs) / 1000,
			Duration: float64(s.Duration) / 1000,
		})
	}
	return out
}
