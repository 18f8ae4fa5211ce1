// Package career builds and parses career profile URLs on playoverwatch.com.
package career

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// DefaultBaseURL is the stats site hosting career profiles.
const DefaultBaseURL = "https://playoverwatch.com"

// DefaultLocale is the locale segment used when none is configured.
const DefaultLocale = "en-us"

// Platform is the gaming platform a profile lives on.
type Platform string

// Known platforms. PlatformNone is the zero value.
const (
	PlatformNone Platform = ""
	PC           Platform = "pc"
	PSN          Platform = "psn"
	XBL          Platform = "xbl"
)

// String returns the URL segment for p, or "none".
func (p Platform) String() string {
	if p == PlatformNone {
		return "none"
	}
	return string(p)
}

// Console reports whether p is a console platform.
func (p Platform) Console() bool { return p == PSN || p == XBL }

// Region is a pc region. Regions are meaningless for console platforms.
type Region string

// Known regions. RegionNone is the zero value.
const (
	RegionNone Region = ""
	US         Region = "us"
	EU         Region = "eu"
	KR         Region = "kr"
)

// String returns the URL segment for r, or "none".
func (r Region) String() string {
	if r == RegionNone {
		return "none"
	}
	return string(r)
}

// DefaultRegionOrder is the order regions are probed in when the caller gives none.
var DefaultRegionOrder = []Region{US, EU, KR}

// ErrUnknownPlatform is returned when a platform name is not recognized.
var ErrUnknownPlatform = errors.New("unknown platform")

// ErrUnknownRegion is returned when a region name is not recognized.
var ErrUnknownRegion = errors.New("unknown region")

// ErrNotCareerURL is returned by Parse for URLs that are not career profiles.
var ErrNotCareerURL = errors.New("not a career profile URL")

// ParsePlatform converts a platform name into a Platform.
// The empty string and "none" map to PlatformNone.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PlatformNone, nil
	case "pc", "battlenet", "bnet":
		return PC, nil
	case "psn", "ps4", "playstation":
		return PSN, nil
	case "xbl", "xbox", "xbox-live":
		return XBL, nil
	default:
		return PlatformNone, fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
}

// ParseRegion converts a region name into a Region.
// The empty string and "none" map to RegionNone.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RegionNone, nil
	case "us", "na", "americas":
		return US, nil
	case "eu", "europe":
		return EU, nil
	case "kr", "asia":
		return KR, nil
	default:
		return RegionNone, fmt.Errorf("%w: %q", ErrUnknownRegion, s)
	}
}

// ParseRegions parses a comma-separated region list such as "us,eu,kr".
func ParseRegions(s string) ([]Region, error) {
	var out []Region
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, err := ParseRegion(part)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Builder maps (platform, region, handle) to canonical career URLs.
// A Builder is immutable and safe for concurrent use.
type Builder struct {
	base   string
	locale string
}

// Option configures a Builder.
type Option func(*Builder)

// WithBaseURL overrides the site base URL (scheme and host, optional path prefix).
func WithBaseURL(base string) Option {
	return func(b *Builder) { b.base = strings.TrimRight(base, "/") }
}

// WithLocale sets the locale segment, e.g. "en-gb" or "ko-kr".
func WithLocale(locale string) Option {
	return func(b *Builder) { b.locale = locale }
}

// New creates a Builder. The locale must be a valid BCP 47 tag.
func New(opts ...Option) (*Builder, error) {
	b := &Builder{base: DefaultBaseURL, locale: DefaultLocale}
	for _, opt := range opts {
		opt(b)
	}

	tag, err := language.Parse(b.locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", b.locale, err)
	}
	b.locale = strings.ToLower(tag.String())

	if _, err := url.Parse(b.base); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", b.base, err)
	}
	return b, nil
}

// Default returns a Builder for the public site with the default locale.
func Default() *Builder {
	return &Builder{base: DefaultBaseURL, locale: DefaultLocale}
}

// Locale returns the normalized locale segment.
func (b *Builder) Locale() string { return b.locale }

// URL returns the canonical career URL. The handle must already be URL-safe.
//
// Calling URL with PlatformNone, or with PC and RegionNone, is a programming
// error and panics.
func (b *Builder) URL(platform Platform, region Region, handle string) string {
	switch platform {
	case PC:
		if region == RegionNone {
			panic("career: URL called for pc without a region")
		}
		return fmt.Sprintf("%s/%s/career/pc/%s/%s", b.base, b.locale, region, handle)
	case PSN, XBL:
		return fmt.Sprintf("%s/%s/career/%s/%s", b.base, b.locale, platform, handle)
	default:
		panic(fmt.Sprintf("career: URL called with platform %s", platform))
	}
}

// Parse is the inverse of URL. It accepts any URL whose path ends in a
// career segment, regardless of host or locale.
func (*Builder) Parse(rawURL string) (Platform, Region, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PlatformNone, RegionNone, "", fmt.Errorf("parse %q: %w", rawURL, err)
	}

	segs := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	idx := -1
	for i, s := range segs {
		if s == "career" {
			idx = i
		}
	}
	if idx < 0 || idx+2 >= len(segs) {
		return PlatformNone, RegionNone, "", fmt.Errorf("%w: %s", ErrNotCareerURL, rawURL)
	}
	rest := segs[idx+1:]

	platform, err := ParsePlatform(rest[0])
	if err != nil || platform == PlatformNone {
		return PlatformNone, RegionNone, "", fmt.Errorf("%w: %s", ErrNotCareerURL, rawURL)
	}

	switch {
	case platform == PC && len(rest) == 3:
		region, err := ParseRegion(rest[1])
		if err != nil || region == RegionNone {
			return PlatformNone, RegionNone, "", fmt.Errorf("%w: %s", ErrNotCareerURL, rawURL)
		}
		return PC, region, rest[2], nil
	case platform.Console() && len(rest) == 2:
		return platform, RegionNone, rest[1], nil
	default:
		return PlatformNone, RegionNone, "", fmt.Errorf("%w: %s", ErrNotCareerURL, rawURL)
	}
}

// Match reports whether rawURL looks like a career profile URL.
func Match(rawURL string) bool {
	_, _, _, err := Default().Parse(rawURL)
	return err == nil && strings.Contains(rawURL, "://")
}
