package transcript

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nijaru/yt-transcript/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	retryDelay    = 350 * time.Millisecond
	languagePause = 250 * time.Millisecond
)

func noPause() utils.Backoff {
	return utils.Backoff{Sleep: func(ctx context.Context, _ time.Duration) error { return ctx.Err() }}
}

func newTestCascade(f *fakeFetcher, s *recordingSleeper) *Cascade {
	prober := NewProber(f, utils.Backoff{Attempts: 3, Delay: retryDelay, Sleep: s.Sleep}, testLogger())
	return NewCascade(f, prober, utils.Backoff{Delay: languagePause, Sleep: s.Sleep}, testLogger())
}

func TestCascadeAgnosticFallbackSucceeds(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	agnostic := AgnosticPlan(id)
	youtubeAny := agnostic[1].URL()

	f := &fakeFetcher{
		textFn: func(string) (string, error) { return languageList("fr", "en-US"), nil },
		jsonFn: func(url string, n int) (string, error) {
			// Fails throughout both language plans, then answers in the
			// final agnostic plan.
			if url == youtubeAny && n >= 6 {
				return goodEvents, nil
			}
			return "", fmt.Errorf("unexpected http status 404")
		},
	}
	s := &recordingSleeper{}

	tr, err := newTestCascade(f, s).Resolve(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, goodText, tr.FullText)
	assert.Equal(t, "timedtext/www.youtube.com/asr-any", tr.Source)

	calls := f.jsonCalls()
	require.Len(t, calls, 2*6*3+3+1)
	assert.Equal(t, youtubeAny, calls[len(calls)-1], "nothing may be fetched after acceptance")

	// en-US is ranked ahead of fr.
	assert.Equal(t, LanguagePlan(id, "en-US")[0].URL(), calls[0])
	assert.Equal(t, LanguagePlan(id, "fr")[0].URL(), calls[18])
	assert.Equal(t, agnostic[0].URL(), calls[36])

	assert.Equal(t, 2, s.count(languagePause))
	assert.Equal(t, 2*6*2+2, s.count(retryDelay))
}

func TestCascadeStopsAtFirstAcceptance(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	f := &fakeFetcher{
		textFn: func(string) (string, error) { return languageList("en"), nil },
		jsonFn: func(string, int) (string, error) { return goodEvents, nil },
	}
	s := &recordingSleeper{}

	tr, err := newTestCascade(f, s).Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "timedtext/video.google.com/en/manual", tr.Source)
	assert.Equal(t, []string{LanguagePlan(id, "en")[0].URL()}, f.jsonCalls())
	assert.Empty(t, s.calls)
}

func TestCascadeExhaustedUsesFallbackLanguages(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	f := &fakeFetcher{
		textFn: func(string) (string, error) { return "", fmt.Errorf("unexpected http status 429") },
		jsonFn: func(string, int) (string, error) { return shortEvents, nil },
	}
	s := &recordingSleeper{}

	tr, err := newTestCascade(f, s).Resolve(context.Background(), id)
	assert.Nil(t, tr)
	assert.ErrorIs(t, err, ErrTranscriptUnavailable)

	calls := f.jsonCalls()
	require.Len(t, calls, 3*6*3+2*3)
	assert.Equal(t, LanguagePlan(id, "en")[0].URL(), calls[0])
	assert.Equal(t, LanguagePlan(id, "en-US")[0].URL(), calls[18])
	assert.Equal(t, LanguagePlan(id, "en-GB")[0].URL(), calls[36])
	assert.Equal(t, 3, s.count(languagePause))
}

func TestCascadeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeFetcher{
		textFn: func(string) (string, error) { return languageList("en", "fr"), nil },
		jsonFn: func(_ string, n int) (string, error) {
			cancel()
			return "", fmt.Errorf("unexpected http status 503")
		},
	}

	tr, err := newTestCascade(f, &recordingSleeper{}).Resolve(ctx, "dQw4w9WgXcQ")
	assert.Nil(t, tr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.jsonCalls(), 1)
}

func TestTrial(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	plan := LanguagePlan(id, "en")
	target := plan[3].URL()

	f := &fakeFetcher{jsonFn: func(url string, _ int) (string, error) {
		if url == target {
			return goodEvents, nil
		}
		return `{"events":[]}`, nil
	}}

	tr, err := newTestCascade(f, &recordingSleeper{}).Trial(context.Background(), plan)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, plan[3].Label(), tr.Source)
	assert.Len(t, f.jsonCalls(), 3*3+1)

	f2 := &fakeFetcher{}
	tr, err = newTestCascade(f2, &recordingSleeper{}).Trial(context.Background(), AgnosticPlan(id))
	assert.NoError(t, err)
	assert.Nil(t, tr)
	assert.Len(t, f2.jsonCalls(), 6)
}

func TestResolveIsRepeatable(t *testing.T) {
	f := &fakeFetcher{
		textFn: func(string) (string, error) { return languageList("en"), nil },
		jsonFn: func(url string, _ int) (string, error) { return goodEvents, nil },
	}
	c := newTestCascade(f, &recordingSleeper{})

	first, err := c.Resolve(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	second, err := c.Resolve(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, first.FullText, second.FullText)
}
