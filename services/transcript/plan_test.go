package transcript

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func urls(plan []Attempt) []string {
	out := make([]string, 0, len(plan))
	for _, a := range plan {
		out = append(out, a.URL())
	}
	return out
}

func TestLanguagePlan(t *testing.T) {
	want := []string{
		"https://video.google.com/timedtext?v=dQw4w9WgXcQ&lang=en-US&fmt=json3",
		"https://video.google.com/timedtext?v=dQw4w9WgXcQ&lang=en-US&fmt=json3&kind=asr",
		"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en-US&fmt=json3",
		"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en-US&fmt=json3&kind=asr",
		"https://video.google.com/timedtext?v=dQw4w9WgXcQ&fmt=json3&kind=asr&caps=asr",
		"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&fmt=json3&kind=asr&caps=asr",
	}
	if diff := cmp.Diff(want, urls(LanguagePlan("dQw4w9WgXcQ", "en-US"))); diff != "" {
		t.Errorf("LanguagePlan() mismatch (-want +got):\n%s", diff)
	}
}

func TestAgnosticPlan(t *testing.T) {
	want := []string{
		"https://video.google.com/timedtext?v=abc_-1234&fmt=json3&kind=asr&caps=asr",
		"https://www.youtube.com/api/timedtext?v=abc_-1234&fmt=json3&kind=asr&caps=asr",
	}
	if diff := cmp.Diff(want, urls(AgnosticPlan("abc_-1234"))); diff != "" {
		t.Errorf("AgnosticPlan() mismatch (-want +got):\n%s", diff)
	}
}

func TestCascadePlans(t *testing.T) {
	plans := CascadePlans("vid12345", []string{"en", "fr"})
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	if plans[0][0].Language != "en" || plans[1][0].Language != "fr" {
		t.Errorf("plans out of language order: %+v", plans)
	}
	if diff := cmp.Diff(AgnosticPlan("vid12345"), plans[2]); diff != "" {
		t.Errorf("last plan should be agnostic (-want +got):\n%s", diff)
	}

	if got := CascadePlans("vid12345", nil); len(got) != 1 {
		t.Errorf("expected only the agnostic plan, got %d plans", len(got))
	}
}

func TestAttemptLabel(t *testing.T) {
	tests := []struct {
		attempt Attempt
		want    string
	}{
		{Attempt{Host: HostGoogle, Language: "en", Kind: KindManual}, "timedtext/video.google.com/en/manual"},
		{Attempt{Host: HostYouTube, Language: "fr", Kind: KindASR}, "timedtext/www.youtube.com/fr/asr"},
		{Attempt{Host: HostYouTube, Kind: KindASRAny}, "timedtext/www.youtube.com/asr-any"},
	}
	for _, tt := range tests {
		if got := tt.attempt.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}
