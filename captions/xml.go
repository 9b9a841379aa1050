package captions

import (
	"encoding/xml"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/nijaru/yt-transcript/models"
	"github.com/pkg/errors"
)

var tagPattern = regexp.MustCompile(`(?i)<[^>]*>`)

type xmlTranscript struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Text     string `xml:",chardata"`
		Start    string `xml:"start,attr"`
		Duration string `xml:"dur,attr"`
	} `xml:"text"`
}

// ParseXML reads the legacy <transcript><text start dur> caption format.
// Markup inside lines is stripped and entities are unescaped; blank lines
// are dropped.
func ParseXML(body []byte) ([]models.Segment, error) {
	var doc xmlTranscript
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse caption xml")
	}

	segments := make([]models.Segment, 0, len(doc.Texts))
	for _, entry := range doc.Texts {
		text := html.UnescapeString(tagPattern.ReplaceAllString(entry.Text, ""))
		text = strings.TrimSpace(strings.Join(strings.Fields(text), " "))
		if text == "" {
			continue
		}

		start, err := strconv.ParseFloat(entry.Start, 64)
		if err != nil {
			start = 0
		}
		duration, err := strconv.ParseFloat(entry.Duration, 64)
		if err != nil {
			duration = 0
		}

		segments = append(segments, models.Segment{
			Text:     text,
			Start:    start,
			Duration: duration,
		})
	}
	return segments, nil
}
