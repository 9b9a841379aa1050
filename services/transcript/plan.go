package transcript

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	HostGoogle  = "https://video.google.com/timedtext"
	HostYouTube = "https://www.youtube.com/api/timedtext"
)

type Kind int

const (
	// KindManual asks for human-authored captions in one language.
	KindManual Kind = iota
	// KindASR asks for auto-generated captions in one language.
	KindASR
	// KindASRAny asks for auto-generated captions in whatever language the
	// service has.
	KindASRAny
)

func (k Kind) String() string {
	switch k {
	case KindManual:
		return "manual"
	case KindASR:
		return "asr"
	case KindASRAny:
		return "asr-any"
	default:
		return "unknown"
	}
}

// Attempt describes one candidate caption URL.
type Attempt struct {
	VideoID  string
	Host     string
	Language string
	Kind     Kind
}

func (a Attempt) URL() string {
	base := fmt.Sprintf("%s?v=%s", a.Host, url.QueryEscape(a.VideoID))
	switch a.Kind {
	case KindManual:
		return fmt.Sprintf("%s&lang=%s&fmt=json3", base, url.QueryEscape(a.Language))
	case KindASR:
		return fmt.Sprintf("%s&lang=%s&fmt=json3&kind=asr", base, url.QueryEscape(a.Language))
	default:
		return base + "&fmt=json3&kind=asr&caps=asr"
	}
}

// Label names the attempt for logs and the response source header.
func (a Attempt) Label() string {
	host := strings.TrimPrefix(a.Host, "https://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if a.Kind == KindASRAny {
		return fmt.Sprintf("timedtext/%s/%s", host, a.Kind)
	}
	return fmt.Sprintf("timedtext/%s/%s/%s", host, a.Language, a.Kind)
}

// LanguagePlan lists the candidates tried for one language: manual before
// generated, the google host before the youtube host, and the two
// language-agnostic URLs last.
func LanguagePlan(videoID, language string) []Attempt {
	return append([]Attempt{
		{VideoID: videoID, Host: HostGoogle, Language: language, Kind: KindManual},
		{VideoID: videoID, Host: HostGoogle, Language: language, Kind: KindASR},
		{VideoID: videoID, Host: HostYouTube, Language: language, Kind: KindManual},
		{VideoID: videoID, Host: HostYouTube, Language: language, Kind: KindASR},
	}, AgnosticPlan(videoID)...)
}

func AgnosticPlan(videoID string) []Attempt {
	return []Attempt{
		{VideoID: videoID, Host: HostGoogle, Kind: KindASRAny},
		{VideoID: videoID, Host: HostYouTube, Kind: KindASRAny},
	}
}

// CascadePlans returns the per-language plans in rank order followed by the
// final language-agnostic plan.
func CascadePlans(videoID string, languages []string) [][]Attempt {
	plans := make([][]Attempt, 0, len(languages)+1)
	for _, lang := range languages {
		plans = append(plans, LanguagePlan(videoID, lang))
	}
	return append(plans, AgnosticPlan(videoID))
}
