package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/nijaru/yt-transcript/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

const goodEvents = `{"events":[
	{"segs":[{"utf8":"Never gonna give "},{"utf8":"you up"}],"tStartMs":0,"dDurationMs":1500},
	{"segs":[{"utf8":"\n"}]},
	{"segs":[{"utf8":"never gonna let you down"}],"tStartMs":1500,"dDurationMs":2000}
]}`

const goodText = "Never gonna give you up never gonna let you down"

const shortEvents = `{"events":[{"segs":[{"utf8":"[Music]"}],"tStartMs":0,"dDurationMs":1000}]}`

// fakeFetcher answers by URL. n counts earlier calls for the same URL.
type fakeFetcher struct {
	mu     sync.Mutex
	jsonFn func(url string, n int) (string, error)
	textFn func(url string) (string, error)
	counts map[string]int
	calls  []string
}

func (f *fakeFetcher) JSON(ctx context.Context, rawURL string, dst any) error {
	f.mu.Lock()
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	n := f.counts[rawURL]
	f.counts[rawURL]++
	f.calls = append(f.calls, rawURL)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f.jsonFn == nil {
		return fmt.Errorf("unexpected status 404")
	}
	body, err := f.jsonFn(rawURL, n)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(body), dst)
}

func (f *fakeFetcher) Text(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.textFn == nil {
		return "", fmt.Errorf("unexpected status 404")
	}
	return f.textFn(rawURL)
}

func (f *fakeFetcher) jsonCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recordingSleeper struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.calls = append(r.calls, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordingSleeper) count(d time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == d {
			n++
		}
	}
	return n
}

type mockLibrary struct {
	mock.Mock
}

func (m *mockLibrary) Transcript(ctx context.Context, videoID string, languages []string) ([]models.Segment, error) {
	args := m.Called(ctx, videoID, languages)
	segs, _ := args.Get(0).([]models.Segment)
	return segs, args.Error(1)
}

func (m *mockLibrary) Tracks(ctx context.Context, videoID string) ([]Track, error) {
	args := m.Called(ctx, videoID)
	tracks, _ := args.Get(0).([]Track)
	return tracks, args.Error(1)
}

type fakeHistory struct {
	mu      sync.Mutex
	records []*models.Resolution
}

func (h *fakeHistory) Save(_ context.Context, r *models.Resolution) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *fakeHistory) Recent(_ context.Context, limit int) ([]*models.Resolution, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*models.Resolution, 0, len(h.records))
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func languageList(codes ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8" ?><transcript_list docid="1">`)
	for i, c := range codes {
		fmt.Fprintf(&b, `<track id="%d" name="" lang_code="%s" lang_original="x" lang_translated="x"/>`, i, c)
	}
	b.WriteString(`</transcript_list>`)
	return b.String()
}
