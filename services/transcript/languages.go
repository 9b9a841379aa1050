package transcript

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const languageListURL = "https://video.google.com/timedtext?type=list&v=%s"

var langCodePattern = regexp.MustCompile(`lang_code="([^"]+)"`)

// FallbackLanguages is used when discovery finds nothing.
var FallbackLanguages = []string{"en", "en-US", "en-GB"}

// ParseLanguageList extracts every advertised language code, in document
// order.
func ParseLanguageList(body string) []string {
	matches := langCodePattern.FindAllStringSubmatch(body, -1)
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, m[1])
	}
	return codes
}

// RankLanguages puts English variants first. Both groups keep discovery
// order. An empty input yields FallbackLanguages.
func RankLanguages(codes []string) []string {
	if len(codes) == 0 {
		return append([]string(nil), FallbackLanguages...)
	}

	ranked := make([]string, 0, len(codes))
	var others []string
	for _, code := range codes {
		if strings.HasPrefix(strings.ToLower(code), "en") {
			ranked = append(ranked, code)
		} else {
			others = append(others, code)
		}
	}
	return append(ranked, others...)
}

// discoverLanguages is best effort: any failure means no languages.
func (c *Cascade) discoverLanguages(ctx context.Context, videoID string) []string {
	body, err := c.fetcher.Text(ctx, fmt.Sprintf(languageListURL, url.QueryEscape(videoID)))
	if err != nil {
		c.logger.WithField("video_id", videoID).WithError(err).Debug("Language listing failed")
		return nil
	}
	return ParseLanguageList(body)
}
