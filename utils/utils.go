package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nijaru/yt-transcript/models"
)

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff is a fixed-delay retry policy.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Sleep    SleepFunc
}

// Retry calls fn until it reports done, the attempts run out, or ctx ends.
// The delay is applied between attempts only. It returns whether fn
// succeeded and the number of attempts made; err is non-nil only when ctx
// ended the loop.
func (b Backoff) Retry(ctx context.Context, fn func(attempt int) bool) (bool, int, error) {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, attempt - 1, err
		}
		if fn(attempt) {
			return true, attempt, nil
		}
		if attempt < attempts {
			if err := b.Pause(ctx); err != nil {
				return false, attempt, err
			}
		}
	}
	return false, attempts, nil
}

// Pause waits for one delay period.
func (b Backoff) Pause(ctx context.Context) error {
	sleep := b.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	return sleep(ctx, b.Delay)
}

// FormatTimestamped renders segments as "[mm:ss] text" lines.
func FormatTimestamped(segments []models.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		secs := int(s.Start)
		fmt.Fprintf(&b, "[%02d:%02d] %s", secs/60, secs%60, s.Text)
	}
	return b.String()
}
