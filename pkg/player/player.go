// Package player looks up a career profile for a BattleTag or console handle.
//
// Basic usage:
//
//	p, err := player.New("Name#1234")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//	if err := p.Update(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(p.Profile().Level)
//
// A Player is single-owner state and must not be used from several
// goroutines at once.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/owcareer/pkg/battletag"
	"github.com/codeGROOVE-dev/owcareer/pkg/career"
	"github.com/codeGROOVE-dev/owcareer/pkg/document"
	"github.com/codeGROOVE-dev/owcareer/pkg/extract"
	"github.com/codeGROOVE-dev/owcareer/pkg/httpcache"
	"github.com/codeGROOVE-dev/owcareer/pkg/resolve"
	"github.com/codeGROOVE-dev/owcareer/pkg/stats"
)

// Re-export errors callers are expected to match on.
var (
	ErrInvalidIdentity        = battletag.ErrInvalidIdentity
	ErrUserRegionNotDefined   = resolve.ErrUserRegionNotDefined
	ErrUserPlatformNotDefined = resolve.ErrUserPlatformNotDefined
	ErrStructure              = document.ErrStructure
	ErrClosed                 = errors.New("player closed")
)

// Profile is everything extracted from the resolved career page.
type Profile struct {
	extract.Fields `yaml:",inline"`

	Platform     string                         `json:"platform" yaml:"platform"`
	Region       string                         `json:"region,omitempty" yaml:"region,omitempty"`
	URL          string                         `json:"url" yaml:"url"`
	QuickPlay    stats.Career                   `json:"quickplay,omitempty" yaml:"quickplay,omitempty"`
	Competitive  stats.Career                   `json:"competitive,omitempty" yaml:"competitive,omitempty"`
	Achievements map[string][]stats.Achievement `json:"achievements,omitempty" yaml:"achievements,omitempty"`
}

// Player is a classified identity plus whatever has been resolved about it.
type Player struct {
	logger   *slog.Logger
	fetcher  httpcache.Fetcher
	builder  *career.Builder
	resolver *resolve.Resolver
	now      func() time.Time

	doc     *document.Document
	profile *Profile

	id     battletag.Identity
	state  resolve.State
	url    string
	closed bool
}

// Option configures a Player.
type Option func(*config)

type config struct {
	fetcher  httpcache.Fetcher
	builder  *career.Builder
	logger   *slog.Logger
	now      func() time.Time
	platform career.Platform
	region   career.Region
}

// WithPlatform sets a known platform. BattleTags always resolve to pc.
func WithPlatform(p career.Platform) Option {
	return func(c *config) { c.platform = p }
}

// WithRegion sets a known pc region.
func WithRegion(r career.Region) Option {
	return func(c *config) { c.region = r }
}

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f httpcache.Fetcher) Option {
	return func(c *config) { c.fetcher = f }
}

// WithBuilder replaces the default URL builder (site and locale).
func WithBuilder(b *career.Builder) Option {
	return func(c *config) { c.builder = b }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithClock sets the time source used for Profile.LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New classifies raw and prepares a Player. No network access happens here.
func New(raw string, opts ...Option) (*Player, error) {
	cfg := &config{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.builder == nil {
		cfg.builder = career.Default()
	}
	if cfg.fetcher == nil {
		cfg.fetcher = httpcache.New(httpcache.WithLogger(cfg.logger))
	}

	id, platform, err := battletag.Classify(raw, cfg.platform)
	if err != nil {
		return nil, err
	}

	p := &Player{
		logger:   cfg.logger,
		fetcher:  cfg.fetcher,
		builder:  cfg.builder,
		resolver: resolve.New(cfg.builder, cfg.fetcher, cfg.logger),
		now:      cfg.now,
		id:       id,
		state:    resolve.State{Platform: platform, Region: cfg.region},
	}
	if platform.Console() {
		p.state.Region = career.RegionNone
	}
	if p.state.Resolved() {
		p.url = p.builder.URL(p.state.Platform, p.state.Region, id.Handle)
	}
	return p, nil
}

// FromURL creates a Player from a career URL, with platform and region taken
// from the URL.
func FromURL(rawURL string, opts ...Option) (*Player, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	b := cfg.builder
	if b == nil {
		b = career.Default()
	}
	platform, region, handle, err := b.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithPlatform(platform), WithRegion(region))
	return New(battletag.FromHandle(handle, platform), opts...)
}

// Identity returns the classified identity.
func (p *Player) Identity() battletag.Identity { return p.id }

// Platform returns the current platform, PlatformNone until resolved.
func (p *Player) Platform() career.Platform { return p.state.Platform }

// Region returns the current region, RegionNone until resolved or on consoles.
func (p *Player) Region() career.Region { return p.state.Region }

// URL returns the canonical career URL, or "" while unresolved.
func (p *Player) URL() string { return p.url }

// Resolved reports whether the last Update located a career page.
func (p *Player) Resolved() bool { return p.state.Resolved() && p.profile != nil }

// Profile returns the most recent extraction, or nil.
func (p *Player) Profile() *Profile { return p.profile }

// UpdateOption configures one Update call.
type UpdateOption func(*updateConfig)

type updateConfig struct {
	regions        []career.Region
	autoDetect     bool
	strictPlatform bool
	stats          bool
	achievements   bool
}

// WithRegionOrder sets the order pc regions are probed in.
func WithRegionOrder(regions ...career.Region) UpdateOption {
	return func(c *updateConfig) { c.regions = regions }
}

// WithoutAutoDetect disables probing; platform (and region for pc) must be known.
func WithoutAutoDetect() UpdateOption {
	return func(c *updateConfig) { c.autoDetect = false }
}

// WithStrictPlatformMatch requires a 200 response when probing console platforms.
func WithStrictPlatformMatch() UpdateOption {
	return func(c *updateConfig) { c.strictPlatform = true }
}

// WithStats also extracts quick play and competitive career stats.
func WithStats() UpdateOption {
	return func(c *updateConfig) { c.stats = true }
}

// WithAchievements also extracts achievements.
func WithAchievements() UpdateOption {
	return func(c *updateConfig) { c.achievements = true }
}

// Update resolves the player's career page if needed, fetches it and
// extracts the profile. Once platform and region are known, Update only
// re-fetches and re-extracts.
//
// A player that cannot be located is not an error: Update returns nil and
// Resolved reports false.
func (p *Player) Update(ctx context.Context, opts ...UpdateOption) error {
	if p.closed {
		return ErrClosed
	}
	cfg := &updateConfig{autoDetect: true}
	for _, opt := range opts {
		opt(cfg)
	}

	p.releaseDocument()
	p.profile = nil

	res, err := p.resolver.Resolve(ctx, resolve.Request{
		Handle:         p.id.Handle,
		State:          p.state,
		RegionOrder:    cfg.regions,
		IsTag:          p.id.IsTag,
		AutoDetect:     cfg.autoDetect,
		StrictPlatform: cfg.strictPlatform,
	})
	if err != nil {
		return fmt.Errorf("resolve %s: %w", p.id.Raw, err)
	}

	p.state = res.State
	p.url = res.URL
	p.doc = res.Doc
	if res.Phase != resolve.Resolved {
		return nil
	}

	prof, err := p.extract(cfg)
	if err != nil {
		p.releaseDocument()
		return fmt.Errorf("extract %s: %w", p.url, err)
	}
	p.profile = prof
	p.logger.DebugContext(ctx, "profile extracted", "url", p.url, "level", prof.Level, "rank", prof.CompetitiveRank)
	return nil
}

func (p *Player) extract(cfg *updateConfig) (*Profile, error) {
	fields, err := extract.Extract(p.doc, p.now())
	if err != nil {
		return nil, err
	}

	prof := &Profile{
		Fields:   *fields,
		Platform: p.state.Platform.String(),
		URL:      p.url,
	}
	if p.state.Region != career.RegionNone {
		prof.Region = p.state.Region.String()
	}

	if cfg.stats {
		prof.QuickPlay = nonEmpty(stats.ExtractCareer(p.doc, stats.QuickPlay))
		prof.Competitive = nonEmpty(stats.ExtractCareer(p.doc, stats.Competitive))
	}
	if cfg.achievements {
		if a := stats.ExtractAchievements(p.doc); len(a) > 0 {
			prof.Achievements = a
		}
	}
	return prof, nil
}

// nonEmpty drops a Career with no entries so callers see "unavailable"
// rather than an empty table.
func nonEmpty(c stats.Career) stats.Career {
	if c.Len() == 0 {
		return nil
	}
	return c
}

func (p *Player) releaseDocument() {
	p.doc.Release()
	p.doc = nil
}

// Close releases the fetched career page. It is safe to call more than once
// and before any Update.
func (p *Player) Close() error {
	p.releaseDocument()
	p.closed = true
	return nil
}
