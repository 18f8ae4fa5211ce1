package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/owcareer/internal/careertest"
	"github.com/codeGROOVE-dev/owcareer/pkg/career"
	"github.com/codeGROOVE-dev/owcareer/pkg/httpcache"
	"github.com/codeGROOVE-dev/owcareer/pkg/prestige"
	"github.com/codeGROOVE-dev/owcareer/pkg/stats"
	"github.com/google/go-cmp/cmp"
)

var (
	builder = career.Default()
	quiet   = slog.New(slog.NewTextHandler(io.Discard, nil))
	fixed   = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
)

func newPlayer(t *testing.T, raw string, f httpcache.Fetcher, opts ...Option) *Player {
	t.Helper()
	opts = append([]Option{WithFetcher(f), WithLogger(quiet), WithClock(func() time.Time { return fixed })}, opts...)
	p, err := New(raw, opts...)
	if err != nil {
		t.Fatalf("New(%q) error = %v", raw, err)
	}
	t.Cleanup(func() { _ = p.Close() }) //nolint:errcheck // test cleanup
	return p
}

func TestNew(t *testing.T) {
	f := &careertest.Fetcher{}

	p := newPlayer(t, "Name#1234", f, WithPlatform(career.XBL))
	if p.Platform() != career.PC {
		t.Errorf("Platform() = %s, want pc", p.Platform())
	}
	if id := p.Identity(); !id.IsTag || id.Handle != "Name-1234" {
		t.Errorf("Identity() = %+v", id)
	}
	if p.URL() != "" {
		t.Errorf("URL() = %q before region is known", p.URL())
	}

	known := newPlayer(t, "Name#1234", f, WithRegion(career.EU))
	if want := builder.URL(career.PC, career.EU, "Name-1234"); known.URL() != want {
		t.Errorf("URL() = %q, want %q", known.URL(), want)
	}

	console := newPlayer(t, "someone", f, WithPlatform(career.PSN), WithRegion(career.KR))
	if console.Region() != career.RegionNone {
		t.Errorf("console Region() = %s, want none", console.Region())
	}
	if want := builder.URL(career.PSN, career.RegionNone, "someone"); console.URL() != want {
		t.Errorf("console URL() = %q, want %q", console.URL(), want)
	}

	if len(f.Calls()) != 0 {
		t.Errorf("New made %d fetches, want 0", len(f.Calls()))
	}
}

func TestNewRejectsNonTagOnPC(t *testing.T) {
	_, err := New("someone", WithPlatform(career.PC), WithFetcher(&careertest.Fetcher{}))
	if !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("New() error = %v, want ErrInvalidIdentity", err)
	}
}

func TestUpdate(t *testing.T) {
	page := careertest.Profile()
	euURL := builder.URL(career.PC, career.EU, "Name-1234")
	f := &careertest.Fetcher{Responses: map[string]careertest.Response{euURL: {Page: &page}}}
	p := newPlayer(t, "Name#1234", f)

	if err := p.Update(context.Background(), WithRegionOrder(career.US, career.EU, career.KR), WithStats(), WithAchievements()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !p.Resolved() || p.Region() != career.EU || p.URL() != euURL {
		t.Fatalf("after Update: resolved=%v region=%s url=%q", p.Resolved(), p.Region(), p.URL())
	}
	if len(f.Calls()) != 2 {
		t.Errorf("first Update made %d fetches, want 2", len(f.Calls()))
	}

	prof := p.Profile()
	if prof.Level != 625 || prof.BaseLevel != 25 || prof.PrestigeOffset != 600 {
		t.Errorf("Level = %d (base %d + %d), want 625", prof.Level, prof.BaseLevel, prof.PrestigeOffset)
	}
	if prof.Platform != "pc" || prof.Region != "eu" || prof.URL != euURL {
		t.Errorf("Profile location = %s/%s %s", prof.Platform, prof.Region, prof.URL)
	}
	if !prof.LastUpdated.Equal(fixed) {
		t.Errorf("LastUpdated = %v, want %v", prof.LastUpdated, fixed)
	}
	if prof.QuickPlay == nil || prof.Competitive == nil || len(prof.Achievements) != 2 {
		t.Errorf("stats missing: qp=%v comp=%v achievements=%d", prof.QuickPlay != nil, prof.Competitive != nil, len(prof.Achievements))
	}

	f.Reset()
	if err := p.Update(context.Background()); err != nil {
		t.Fatalf("second Update() error = %v", err)
	}
	if diff := cmp.Diff([]string{euURL}, f.Calls()); diff != "" {
		t.Errorf("second Update fetches mismatch (-want +got):\n%s", diff)
	}
	if p.Profile().QuickPlay != nil {
		t.Error("QuickPlay populated without WithStats")
	}
}

func TestUpdateReleasesPreviousDocument(t *testing.T) {
	page := careertest.Profile()
	u := builder.URL(career.XBL, career.RegionNone, "someone")
	f := &careertest.Fetcher{Responses: map[string]careertest.Response{u: {Page: &page}}}
	p := newPlayer(t, "someone", f, WithPlatform(career.XBL))

	for range 3 {
		if err := p.Update(context.Background()); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}
	docs := f.Documents()
	if len(docs) != 3 {
		t.Fatalf("fetched %d documents, want 3", len(docs))
	}
	for i, d := range docs[:2] {
		if !d.Released() {
			t.Errorf("document %d not released by later Update", i)
		}
	}
	if docs[2].Released() {
		t.Error("current document released before Close")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if !docs[2].Released() {
		t.Error("Close did not release the current document")
	}
	if err := p.Update(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Update after Close error = %v, want ErrClosed", err)
	}
}

func TestCloseWithoutUpdate(t *testing.T) {
	p := newPlayer(t, "Name#1234", &careertest.Fetcher{})
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	f := &careertest.Fetcher{}
	p := newPlayer(t, "someone", f)

	if err := p.Update(context.Background()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if p.Resolved() || p.Platform() != career.PlatformNone || p.Profile() != nil || p.URL() != "" {
		t.Errorf("Update() left resolved=%v platform=%s profile=%v url=%q", p.Resolved(), p.Platform(), p.Profile(), p.URL())
	}
	if len(f.Calls()) != 2 {
		t.Errorf("fetches = %d, want 2", len(f.Calls()))
	}
}

func TestCompetitiveFactsAreIndependent(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*careertest.Page)
		wantRank    uint16
		wantCompNil bool
	}{
		{"no rank container, competitive stats present", func(p *careertest.Page) { p.Rank = "" }, 0, false},
		{"ranked, no competitive stats", func(p *careertest.Page) { p.Competitive = false }, 2750, true},
		{"neither", func(p *careertest.Page) { p.Rank = ""; p.Competitive = false }, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := careertest.Profile()
			tt.mutate(&page)
			u := builder.URL(career.PSN, career.RegionNone, "someone")
			f := &careertest.Fetcher{Responses: map[string]careertest.Response{u: {Page: &page}}}
			p := newPlayer(t, "someone", f, WithPlatform(career.PSN))

			if err := p.Update(context.Background(), WithStats()); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			prof := p.Profile()
			if prof.CompetitiveRank != tt.wantRank {
				t.Errorf("CompetitiveRank = %d, want %d", prof.CompetitiveRank, tt.wantRank)
			}
			if (prof.Competitive == nil) != tt.wantCompNil {
				t.Errorf("Competitive == nil is %v, want %v", prof.Competitive == nil, tt.wantCompNil)
			}
			if prof.QuickPlay == nil {
				t.Error("QuickPlay = nil")
			}
		})
	}
}

func TestUpdateExtractionFailureReleasesDocument(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*careertest.Page)
		want   error
	}{
		{"missing portrait", func(p *careertest.Page) { p.Portrait = "" }, ErrStructure},
		{"unknown border", func(p *careertest.Page) { p.Border = "0x0250000000FFFFFF" }, prestige.ErrUnknownIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := careertest.Profile()
			tt.mutate(&page)
			u := builder.URL(career.PC, career.US, "Name-1234")
			f := &careertest.Fetcher{Responses: map[string]careertest.Response{u: {Page: &page}}}
			p := newPlayer(t, "Name#1234", f, WithRegion(career.US))

			err := p.Update(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Update() error = %v, want %v", err, tt.want)
			}
			for _, d := range f.Documents() {
				if !d.Released() {
					t.Error("document not released after failed extraction")
				}
			}
			if p.Profile() != nil {
				t.Error("Profile() != nil after failed extraction")
			}
		})
	}
}

func TestUpdateWithoutAutoDetect(t *testing.T) {
	f := &careertest.Fetcher{}

	pc := newPlayer(t, "Name#1234", f)
	if err := pc.Update(context.Background(), WithoutAutoDetect()); !errors.Is(err, ErrUserRegionNotDefined) {
		t.Errorf("Update(pc) error = %v, want ErrUserRegionNotDefined", err)
	}

	console := newPlayer(t, "someone", f)
	if err := console.Update(context.Background(), WithoutAutoDetect()); !errors.Is(err, ErrUserPlatformNotDefined) {
		t.Errorf("Update(console) error = %v, want ErrUserPlatformNotDefined", err)
	}

	if len(f.Calls()) != 0 {
		t.Errorf("fetches = %d, want 0", len(f.Calls()))
	}
}

func TestFromURL(t *testing.T) {
	p, err := FromURL("https://playoverwatch.com/en-us/career/pc/kr/Name-1234", WithFetcher(&careertest.Fetcher{}))
	if err != nil {
		t.Fatalf("FromURL() error = %v", err)
	}
	if p.Identity().Raw != "Name#1234" || p.Platform() != career.PC || p.Region() != career.KR {
		t.Errorf("FromURL() = %+v %s/%s", p.Identity(), p.Platform(), p.Region())
	}

	const psnURL = "https://playoverwatch.com/en-us/career/psn/Player-1234"
	page := careertest.Profile()
	f := &careertest.Fetcher{Responses: map[string]careertest.Response{psnURL: {Page: &page}}}
	console, err := FromURL(psnURL, WithFetcher(f), WithLogger(quiet))
	if err != nil {
		t.Fatalf("FromURL(psn) error = %v", err)
	}
	defer console.Close() //nolint:errcheck // test cleanup
	if id := console.Identity(); id.IsTag || id.Raw != "Player-1234" || console.Platform() != career.PSN {
		t.Errorf("FromURL(psn) = %+v %s", id, console.Platform())
	}
	if err := console.Update(context.Background()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if diff := cmp.Diff([]string{psnURL}, f.Calls()); diff != "" {
		t.Errorf("fetches mismatch (-want +got):\n%s", diff)
	}

	if _, err := FromURL("https://example.com/nope"); !errors.Is(err, career.ErrNotCareerURL) {
		t.Errorf("FromURL(bad) error = %v, want ErrNotCareerURL", err)
	}
}

// TestUpdateOverHTTP runs the real fetcher against a local server.
func TestUpdateOverHTTP(t *testing.T) {
	page := careertest.Profile()
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.EscapedPath() != "/en-gb/career/xbl/Gamer%20Tag" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page.HTML())) //nolint:errcheck // test helper
	}))
	defer server.Close()

	b, err := career.New(career.WithBaseURL(server.URL), career.WithLocale("en-GB"))
	if err != nil {
		t.Fatalf("career.New() error = %v", err)
	}
	fetcher := httpcache.New(httpcache.WithHTTPClient(server.Client()), httpcache.WithLogger(quiet))
	p := newPlayer(t, "Gamer Tag", fetcher, WithBuilder(b))

	if err := p.Update(context.Background(), WithStats()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if p.Platform() != career.XBL {
		t.Errorf("Platform() = %s, want xbl", p.Platform())
	}
	want := []string{"/en-gb/career/psn/Gamer Tag", "/en-gb/career/xbl/Gamer Tag"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if v, ok := p.Profile().QuickPlay.Value(stats.AllHeroes, "Combat", "Eliminations"); !ok || v != 1234 {
		t.Errorf("QuickPlay Eliminations = %v, %v", v, ok)
	}
}
