// Package resolve finds which career URL hosts a player's profile.
//
// Probing is strictly sequential: candidates are fetched one at a time in a
// fixed order and the first match wins. The HTTP status of each probe is the
// only signal used.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/codeGROOVE-dev/owcareer/pkg/career"
	"github.com/codeGROOVE-dev/owcareer/pkg/document"
	"github.com/codeGROOVE-dev/owcareer/pkg/httpcache"
)

// Errors returned when auto-detection is disabled and the caller left a
// required field unset.
var (
	ErrUserRegionNotDefined   = errors.New("region not defined for pc player")
	ErrUserPlatformNotDefined = errors.New("platform not defined")
)

// Phase is a resolver state.
type Phase int

// Resolver phases.
const (
	Unresolved Phase = iota
	ProbingRegion
	ProbingPlatform
	Resolved
	Failed
)

func (p Phase) String() string {
	switch p {
	case Unresolved:
		return "unresolved"
	case ProbingRegion:
		return "probing-region"
	case ProbingPlatform:
		return "probing-platform"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the platform/region pair being resolved.
type State struct {
	Platform career.Platform
	Region   career.Region
}

// Resolved reports whether s identifies a single career URL. Consoles have
// no regions, so a console platform alone is enough.
func (s State) Resolved() bool {
	switch s.Platform {
	case career.PC:
		return s.Region != career.RegionNone
	case career.PSN, career.XBL:
		return true
	default:
		return false
	}
}

// consoleOrder is the fixed platform probe order for non-tag identities.
var consoleOrder = [2]career.Platform{career.PSN, career.XBL}

// Request describes one resolution run.
type Request struct {
	Handle      string
	State       State
	RegionOrder []career.Region // nil means career.DefaultRegionOrder
	IsTag       bool
	AutoDetect  bool
	// StrictPlatform makes platform probing require a 200 response, like
	// region probing, instead of accepting any status other than 404.
	StrictPlatform bool
}

// Result is the outcome of a run. Doc is owned by the caller and is nil when
// the profile could not be located.
type Result struct {
	Doc    *document.Document
	URL    string
	State  State
	Phase  Phase
	Probes int
}

// Resolver drives the URL builder and fetcher.
type Resolver struct {
	builder *career.Builder
	fetcher httpcache.Fetcher
	logger  *slog.Logger
}

// New creates a Resolver.
func New(builder *career.Builder, fetcher httpcache.Fetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{builder: builder, fetcher: fetcher, logger: logger}
}

// Resolve locates the player's career page.
//
// An exhausted search is not an error: the returned Result has Phase Failed,
// an unresolved State and no document. Transport failures abort the run and
// are returned as *httpcache.FetchError.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	res := &Result{State: req.State, Phase: Unresolved}
	if req.IsTag {
		res.State.Platform = career.PC
	}

	if !req.AutoDetect {
		switch {
		case res.State.Platform == career.PlatformNone:
			return nil, ErrUserPlatformNotDefined
		case res.State.Platform == career.PC && res.State.Region == career.RegionNone:
			return nil, ErrUserRegionNotDefined
		}
	}

	var err error
	switch {
	case res.State.Resolved():
		// Nothing to probe.
	case res.State.Platform == career.PC:
		err = r.probeRegions(ctx, req, res)
	default:
		err = r.probePlatforms(ctx, req, res)
	}
	if err != nil {
		res.Doc.Release()
		return nil, err
	}

	if !res.State.Resolved() {
		res.Phase = Failed
		res.URL = ""
		r.logger.InfoContext(ctx, "career profile not found", "handle", req.Handle, "probes", res.Probes)
		return res, nil
	}

	res.Phase = Resolved
	res.URL = r.builder.URL(res.State.Platform, res.State.Region, req.Handle)

	if res.Doc == nil {
		doc, err := r.fetch(ctx, res, res.URL)
		if err != nil {
			return nil, err
		}
		res.Doc = doc
	}

	r.logger.InfoContext(ctx, "career profile resolved",
		"handle", req.Handle, "platform", res.State.Platform, "region", res.State.Region, "probes", res.Probes)
	return res, nil
}

func (r *Resolver) probeRegions(ctx context.Context, req Request, res *Result) error {
	res.Phase = ProbingRegion
	order := req.RegionOrder
	if order == nil {
		order = career.DefaultRegionOrder
	}

	for _, region := range order {
		if region == career.RegionNone {
			continue
		}
		url := r.builder.URL(career.PC, region, req.Handle)
		doc, err := r.fetch(ctx, res, url)
		switch {
		case err == nil:
			res.State.Region = region
			res.Doc = doc
			res.URL = url
			return nil
		case httpcache.IsTransport(err):
			return err
		default:
			r.logger.DebugContext(ctx, "region probe missed", "region", region, "status", httpcache.StatusCode(err))
		}
	}
	return nil
}

func (r *Resolver) probePlatforms(ctx context.Context, req Request, res *Result) error {
	res.Phase = ProbingPlatform

	for _, platform := range consoleOrder {
		url := r.builder.URL(platform, career.RegionNone, req.Handle)
		doc, err := r.fetch(ctx, res, url)
		if httpcache.IsTransport(err) {
			return err
		}
		status := httpcache.StatusCode(err)
		matched := status != http.StatusNotFound
		if req.StrictPlatform {
			matched = status == http.StatusOK
		}
		if matched {
			res.State.Platform = platform
			res.Doc = doc
			res.URL = url
			if status != http.StatusOK {
				r.logger.WarnContext(ctx, "platform matched on non-200 status", "platform", platform, "status", status)
			}
			return nil
		}
		r.logger.DebugContext(ctx, "platform probe missed", "platform", platform, "status", status)
	}

	res.State.Platform = career.PlatformNone
	return nil
}

func (r *Resolver) fetch(ctx context.Context, res *Result, url string) (*document.Document, error) {
	res.Probes++
	r.logger.DebugContext(ctx, "fetching career page", "url", url, "phase", res.Phase)
	doc, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch career page: %w", err)
	}
	return doc, nil
}
