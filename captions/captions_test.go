package captions

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nijaru/yt-transcript/models"
)

func decodeEvents(t *testing.T, raw string) []RawEvent {
	t.Helper()
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return doc.Events
}

func TestNormalize(t *testing.T) {
	events := decodeEvents(t, `{"events":[
		{"segs":[{"utf8":"Hello "},{"utf8":"world"}],"tStartMs":1000,"dDurationMs":2000},
		{"segs":[{"utf8":"  "}]}
	]}`)

	got := Normalize(events)
	want := models.Transcript{
		FullText: "Hello world",
		Segments: []models.Segment{{Text: "Hello world", Start: 1.0, Duration: 2.0}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeDefaultsAndOrder(t *testing.T) {
	events := decodeEvents(t, `{"events":[
		{"tStartMs":0,"dDurationMs":500},
		{"segs":[{"utf8":"third"}],"tStartMs":3000},
		{"segs":[{},{"utf8":"\n"}],"tStartMs":3500},
		{"segs":[{"utf8":"first"},{}]},
		{"segs":[{"utf8":"half"}],"tStartMs":1500,"dDurationMs":250}
	]}`)

	got := Normalize(events)
	want := models.Transcript{
		FullText: "third first half",
		Segments: []models.Segment{
			{Text: "third", Start: 3.0, Duration: 0},
			{Text: "first", Start: 0, Duration: 0},
			{Text: "half", Start: 1.5, Duration: 0.25},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeThresholdCountsCharacters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"short japanese", "こんにちは世界", false},
		{"short cyrillic", "Привет, мир!", false},
		{"twenty one characters", "это двадцать один сим", true},
		{"ascii", "Never gonna give you up", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tt.text
			tr := Normalize([]RawEvent{{Segs: []RawSeg{{UTF8: &text}}}})
			if got := tr.Accepted(); got != tt.want {
				t.Errorf("Accepted() for %q = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize(nil)
	if got.FullText != "" {
		t.Errorf("expected empty text, got %q", got.FullText)
	}
	if got.Segments == nil || len(got.Segments) != 0 {
		t.Errorf("expected empty non-nil segments, got %#v", got.Segments)
	}
}

func TestParseXML(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="1.25">Hey there</text>
<text start="2" dur="3">it&amp;#39;s &lt;font color=&quot;#fff&quot;&gt;bold&lt;/font&gt;
text</text>
<text start="5" dur="1"></text>
<text start="x" dur="y">bad numbers</text>
</transcript>`)

	got, err := ParseXML(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.Segment{
		{Text: "Hey there", Start: 0.5, Duration: 1.25},
		{Text: "it's bold text", Start: 2, Duration: 3},
		{Text: "bad numbers", Start: 0, Duration: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseXML() mismatch (-want +got):\n%s", diff)
	}

	tr := FromSegments(got)
	if tr.FullText != "Hey there it's bold text bad numbers" {
		t.Errorf("unexpected full text %q", tr.FullText)
	}
}

func TestParseXMLInvalid(t *testing.T) {
	if _, err := ParseXML([]byte(`{"events":[]}`)); err == nil {
		t.Error("expected error for non-xml body")
	}
}
