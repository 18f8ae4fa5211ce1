package career

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestURL(t *testing.T) {
	b := Default()
	tests := []struct {
		name     string
		platform Platform
		region   Region
		handle   string
		want     string
	}{
		{"pc us", PC, US, "Name-1234", "https://playoverwatch.com/en-us/career/pc/us/Name-1234"},
		{"pc kr", PC, KR, "Name-12345", "https://playoverwatch.com/en-us/career/pc/kr/Name-12345"},
		{"psn", PSN, RegionNone, "console_guy", "https://playoverwatch.com/en-us/career/psn/console_guy"},
		{"xbl ignores region", XBL, EU, "Gamer%20Tag", "https://playoverwatch.com/en-us/career/xbl/Gamer%20Tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.URL(tt.platform, tt.region, tt.handle); got != tt.want {
				t.Errorf("URL(%s, %s, %q) = %q, want %q", tt.platform, tt.region, tt.handle, got, tt.want)
			}
		})
	}
}

func TestURLPanicsWithoutPlatform(t *testing.T) {
	for _, tc := range []struct {
		platform Platform
		region   Region
	}{{PlatformNone, US}, {PC, RegionNone}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("URL(%s, %s) did not panic", tc.platform, tc.region)
				}
			}()
			Default().URL(tc.platform, tc.region, "x")
		}()
	}
}

func TestNewLocale(t *testing.T) {
	b, err := New(WithLocale("EN-gb"), WithBaseURL("http://127.0.0.1:8080/"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.Locale() != "en-gb" {
		t.Errorf("Locale() = %q, want %q", b.Locale(), "en-gb")
	}
	want := "http://127.0.0.1:8080/en-gb/career/psn/abc"
	if got := b.URL(PSN, RegionNone, "abc"); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}

	if _, err := New(WithLocale("not a locale!")); err == nil {
		t.Error("New() with invalid locale succeeded, want error")
	}
}

func TestRoundTrip(t *testing.T) {
	b := Default()
	tests := []struct {
		platform Platform
		region   Region
		handle   string
	}{
		{PC, US, "Name-1234"},
		{PC, EU, "J%C3%BCrgen-21345"},
		{PSN, RegionNone, "someone"},
		{XBL, RegionNone, "Gamer%20Tag"},
	}

	for _, tt := range tests {
		u := b.URL(tt.platform, tt.region, tt.handle)
		if again := b.URL(tt.platform, tt.region, tt.handle); again != u {
			t.Errorf("URL is not deterministic: %q != %q", u, again)
		}
		p, r, h, err := b.Parse(u)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", u, err)
		}
		got := []string{p.String(), r.String(), h}
		want := []string{tt.platform.String(), tt.region.String(), tt.handle}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Parse(URL(...)) mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, u := range []string{
		"https://playoverwatch.com/en-us/",
		"https://playoverwatch.com/en-us/career/pc/Name-1234",
		"https://playoverwatch.com/en-us/career/pc/mars/Name-1234",
		"https://playoverwatch.com/en-us/career/switch/Name",
		"https://playoverwatch.com/en-us/career/psn/a/b",
	} {
		if _, _, _, err := Default().Parse(u); !errors.Is(err, ErrNotCareerURL) {
			t.Errorf("Parse(%q) error = %v, want ErrNotCareerURL", u, err)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://playoverwatch.com/en-us/career/pc/eu/Name-1234", true},
		{"https://playoverwatch.com/ko-kr/career/xbl/someone", true},
		{"https://steamcommunity.com/id/someone", false},
		{"Name#1234", false},
	}
	for _, tt := range tests {
		if got := Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestParsePlatformAndRegion(t *testing.T) {
	if p, err := ParsePlatform("XBOX"); err != nil || p != XBL {
		t.Errorf("ParsePlatform(XBOX) = %v, %v", p, err)
	}
	if p, err := ParsePlatform("none"); err != nil || p != PlatformNone {
		t.Errorf("ParsePlatform(none) = %v, %v", p, err)
	}
	if _, err := ParsePlatform("switch"); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("ParsePlatform(switch) error = %v, want ErrUnknownPlatform", err)
	}

	got, err := ParseRegions("eu, kr,,us")
	if err != nil {
		t.Fatalf("ParseRegions() error = %v", err)
	}
	if diff := cmp.Diff([]Region{EU, KR, US}, got); diff != "" {
		t.Errorf("ParseRegions() mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseRegions("us,mars"); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("ParseRegions(us,mars) error = %v, want ErrUnknownRegion", err)
	}
}
