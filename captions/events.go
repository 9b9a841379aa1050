package captions

import (
	"strings"

	"github.com/nijaru/yt-transcript/models"
)

// Document is the json3 timed-text payload.
type Document struct {
	Events []RawEvent `json:"events"`
}

// RawEvent is one json3 timed event. Every field is optional.
type RawEvent struct {
	Segs        []RawSeg `json:"segs,omitempty"`
	TStartMs    *float64 `json:"tStartMs,omitempty"`
	DDurationMs *float64 `json:"dDurationMs,omitempty"`
}

type RawSeg struct {
	UTF8 *string `json:"utf8,omitempty"`
}

// Text concatenates the event's fragments and trims the result.
func (e RawEvent) Text() string {
	var b strings.Builder
	for _, seg := range e.Segs {
		if seg.UTF8 != nil {
			b.WriteString(*seg.UTF8)
		}
	}
	return strings.TrimSpace(b.String())
}

// Normalize converts raw events into a transcript. Blank events are dropped
// and arrival order is kept.
func Normalize(events []RawEvent) models.Transcript {
	segments := make([]models.Segment, 0, len(events))
	for _, ev := range events {
		text := ev.Text()
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:     text,
			Start:    millisToSeconds(ev.TStartMs),
			Duration: millisToSeconds(ev.DDurationMs),
		})
	}
	return FromSegments(segments)
}

// FromSegments wraps an already-normalized segment list.
func FromSegments(segments []models.Segment) models.Transcript {
	if segments == nil {
		segments = []models.Segment{}
	}
	return models.Transcript{
		FullText: models.JoinSegments(segments),
		Segments: segments,
	}
}

func millisToSeconds(ms *float64) float64 {
	if ms == nil {
		return 0
	}
	return *ms / 1000
}
