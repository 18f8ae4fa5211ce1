package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/owcareer/pkg/career"
	"github.com/codeGROOVE-dev/owcareer/pkg/config"
	"github.com/codeGROOVE-dev/owcareer/pkg/httpcache"
	"github.com/codeGROOVE-dev/owcareer/pkg/player"
)

var errLookupsFailed = errors.New("lookups failed")

// result is one printed lookup outcome, in argument order.
type result struct {
	Input   string          `json:"input" yaml:"input"`
	Found   bool            `json:"found" yaml:"found"`
	Profile *player.Profile `json:"profile,omitempty" yaml:"profile,omitempty"`
	Error   string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type lookup struct {
	logger   *slog.Logger
	fetcher  httpcache.Fetcher
	builder  *career.Builder
	platform career.Platform
	region   career.Region
	update   []player.UpdateOption
}

func run(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, fl *flags, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	encode, err := encoder(fl.output)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if fl.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	l, err := newLookup(cfg, fl, logger)
	if err != nil {
		return err
	}

	results := make([]*result, len(args))
	var g errgroup.Group
	g.SetLimit(cfg.Parallel)
	for i, input := range args {
		g.Go(func() error {
			results[i] = l.one(ctx, input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := encode(stdout, results); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d %w", failed, len(results), errLookupsFailed)
	}
	return nil
}

func newLookup(cfg *config.Config, fl *flags, logger *slog.Logger) (*lookup, error) {
	platform, err := career.ParsePlatform(fl.platform)
	if err != nil {
		return nil, err
	}
	region, err := career.ParseRegion(fl.region)
	if err != nil {
		return nil, err
	}
	builder, err := cfg.Builder()
	if err != nil {
		return nil, err
	}
	regions, err := cfg.RegionOrder()
	if err != nil {
		return nil, err
	}
	fopts, err := cfg.FetcherOptions(logger)
	if err != nil {
		return nil, err
	}
	if cfg.CacheTTL > 0 {
		logger.Debug("HTTP cache initialized", "ttl", cfg.CacheTTL.String())
	}

	update := []player.UpdateOption{player.WithRegionOrder(regions...)}
	if fl.noAutoDetect {
		update = append(update, player.WithoutAutoDetect())
	}
	if fl.strictPlatform {
		update = append(update, player.WithStrictPlatformMatch())
	}
	if fl.stats {
		update = append(update, player.WithStats())
	}
	if fl.achievements {
		update = append(update, player.WithAchievements())
	}

	return &lookup{
		logger:   logger,
		fetcher:  httpcache.New(fopts...),
		builder:  builder,
		platform: platform,
		region:   region,
		update:   update,
	}, nil
}

// one resolves and extracts a single input. Failures are reported in the
// result so the other lookups still print.
func (l *lookup) one(ctx context.Context, input string) *result {
	r := &result{Input: input}
	opts := []player.Option{
		player.WithLogger(l.logger.With("input", input)),
		player.WithFetcher(l.fetcher),
		player.WithBuilder(l.builder),
	}

	var p *player.Player
	var err error
	if career.Match(input) {
		p, err = player.FromURL(input, opts...)
	} else {
		p, err = player.New(input, append(opts, player.WithPlatform(l.platform), player.WithRegion(l.region))...)
	}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	defer p.Close() //nolint:errcheck // Close never fails

	if err := p.Update(ctx, l.update...); err != nil {
		l.logger.Warn("lookup failed", "input", input, "error", err)
		r.Error = err.Error()
		return r
	}
	r.Found = p.Resolved()
	r.Profile = p.Profile()
	return r
}

type encodeFunc func(io.Writer, any) error

func encoder(format string) (encodeFunc, error) {
	switch format {
	case "json", "":
		return outputJSON, nil
	case "yaml", "yml":
		return outputYAML, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputYAML(w io.Writer, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
