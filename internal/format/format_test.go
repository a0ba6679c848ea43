package format

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{name: "seconds", ago: 20 * time.Second, want: "just now"},
		{name: "ninety seconds rounds up", ago: 90 * time.Second, want: "2 minutes ago"},
		{name: "one minute", ago: 65 * time.Second, want: "1 minute ago"},
		{name: "hours", ago: 3*time.Hour + 10*time.Minute, want: "3 hours ago"},
		{name: "fifty nine and a half minutes", ago: 59*time.Minute + 40*time.Second, want: "1 hour ago"},
		{name: "one day", ago: 25 * time.Hour, want: "1 day ago"},
		{name: "two days", ago: 48 * time.Hour, want: "2 days ago"},
		{name: "ten days is a date", ago: 10 * 24 * time.Hour, want: "October 9, 2026"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TimeAgo(now.Add(-tc.ago), now); got != tc.want {
				t.Fatalf("TimeAgo(-%s) = %q, want %q", tc.ago, got, tc.want)
			}
		})
	}
}

func TestTimeAgoFuture(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	if got := TimeAgo(now.Add(48*time.Hour), now); got != "October 21, 2026" {
		t.Fatalf("TimeAgo(future) = %q", got)
	}
}

func TestCountVerbose(t *testing.T) {
	tests := map[int]string{
		0:  "0 Jacksons",
		1:  "1 Jackson",
		2:  "2 Jacksons",
		42: "42 Jacksons",
	}
	for n, want := range tests {
		if got := CountVerbose(n); got != want {
			t.Fatalf("CountVerbose(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestMoney(t *testing.T) {
	en := Money(2000, "usd", language.AmericanEnglish)
	if !strings.HasSuffix(en, "20.00") || !strings.Contains(en, "$") {
		t.Fatalf("Money(en) = %q", en)
	}
	de := Money(2000, "usd", language.German)
	if !strings.HasSuffix(de, "20,00") {
		t.Fatalf("Money(de) = %q", de)
	}
	if got := Money(2000, "zz!", language.English); got != "2000 ZZ!" {
		t.Fatalf("Money(invalid) = %q", got)
	}
}
