// Command owcareer looks up Overwatch career profiles.
//
// Usage:
//
//	owcareer 'Name#1234'                          # probes us, eu, kr
//	owcareer --region eu 'Name#1234'
//	owcareer someone                              # probes psn, then xbl
//	owcareer --platform xbl --stats someone
//	owcareer https://playoverwatch.com/en-us/career/pc/kr/Name-1234
//
// Settings can also come from OWCAREER_* environment variables; flags win.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/owcareer/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = newRootCmd(cfg).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errLookupsFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// flags holds per-run switches that have no environment equivalent.
type flags struct {
	platform       string
	region         string
	output         string
	noAutoDetect   bool
	strictPlatform bool
	stats          bool
	achievements   bool
	debug          bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	fl := &flags{output: "json"}

	cmd := &cobra.Command{
		Use:   "owcareer [flags] <battletag|handle|url>...",
		Short: "Look up Overwatch career profiles",
		Long: `owcareer resolves BattleTags, console handles and career URLs to their
playoverwatch.com career page and prints level, prestige, competitive rank
and portrait.

BattleTags (Name#1234) are pc players; their region is probed in order
unless --region is given. Other handles are console players; psn is probed
before xbl unless --platform is given.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, fl, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.platform, "platform", "", "known platform: pc, psn, xbl")
	f.StringVar(&fl.region, "region", "", "known pc region: us, eu, kr")
	f.BoolVar(&fl.noAutoDetect, "no-autodetect", false, "fail instead of probing when platform or region is unknown")
	f.BoolVar(&fl.strictPlatform, "strict-platform", false, "require HTTP 200 when probing console platforms")
	f.BoolVar(&fl.stats, "stats", false, "include quick play and competitive career stats")
	f.BoolVar(&fl.achievements, "achievements", false, "include achievements")
	f.StringVarP(&fl.output, "output", "o", fl.output, "output format: json, yaml")
	f.BoolVarP(&fl.debug, "debug", "v", false, "enable debug logging")

	f.StringVar(&cfg.Regions, "regions", cfg.Regions, "pc region probe order (env: OWCAREER_REGIONS)")
	f.StringVar(&cfg.Locale, "locale", cfg.Locale, "site locale (env: OWCAREER_LOCALE)")
	f.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "site base URL (env: OWCAREER_BASE_URL)")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (env: OWCAREER_TIMEOUT)")
	f.DurationVar(&cfg.MinDelay, "min-delay", cfg.MinDelay, "minimum delay between requests (env: OWCAREER_MIN_DELAY)")
	f.UintVar(&cfg.Retries, "retries", cfg.Retries, "retries for transient failures (env: OWCAREER_RETRIES)")
	f.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "in-memory response cache TTL, 0 disables (env: OWCAREER_CACHE_TTL)")
	f.IntVarP(&cfg.Parallel, "parallel", "p", cfg.Parallel, "players looked up at once (env: OWCAREER_PARALLEL)")

	return cmd
}
