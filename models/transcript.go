package models

import (
	"strings"
	"unicode/utf8"
)

// AcceptanceThreshold is the character count a transcript must exceed before it
// is treated as a real result rather than noise.
const AcceptanceThreshold = 20

// Segment is one timed caption line. Start and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type Transcript struct {
	FullText string    `json:"transcript"`
	Segments []Segment `json:"segments"`

	// Source names the access path that produced the transcript.
	Source string `json:"-"`
}

// Accepted reports whether the transcript clears the acceptance threshold,
// counted in characters.
func (t *Transcript) Accepted() bool {
	return t != nil && utf8.RuneCountInString(t.FullText) > AcceptanceThreshold
}

// JoinSegments builds the flattened text of a segment list.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text == "" {
			continue
		}
		parts = append(parts, s.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
