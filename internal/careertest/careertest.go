// Package careertest builds career page fixtures and fake fetchers for tests.
package careertest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/codeGROOVE-dev/owcareer/pkg/document"
	"github.com/codeGROOVE-dev/owcareer/pkg/httpcache"
)

// Border600 is a level border identifier worth a prestige offset of 600.
const Border600 = "0x0250000000000954"

// Page describes a career page. Empty fields leave the matching node out.
type Page struct {
	Name        string
	Level       string
	Border      string // level border identifier; "" omits the level widget
	Rank        string // competitive rank text; "" omits the rank container
	Badge       string
	Portrait    string // "" omits the portrait, making the page malformed
	Endorsement string
	GamesWon    string

	QuickPlay    bool
	Competitive  bool
	Achievements bool
}

// Profile returns a complete page for a prestige 6 player at base level 25.
func Profile() Page {
	return Page{
		Name:         "Name",
		Level:        "25",
		Border:       Border600,
		Rank:         "2750",
		Badge:        "https://d1u1mce87gyfbn.cloudfront.net/game/rank-icons/season-2/rank-5.png",
		Portrait:     "https://d1u1mce87gyfbn.cloudfront.net/game/unlocks/0x0250000000000EF7.png",
		Endorsement:  "3",
		GamesWon:     "1,024 games won",
		QuickPlay:    true,
		Competitive:  true,
		Achievements: true,
	}
}

// HTML renders the page.
func (p Page) HTML() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>Overwatch Career Profile</title></head><body>\n")
	b.WriteString(`<div class="masthead">` + "\n")
	if p.Portrait != "" {
		fmt.Fprintf(&b, `<img class="player-portrait" src="%s">`+"\n", p.Portrait)
	}
	if p.Border != "" {
		fmt.Fprintf(&b, `<div class="player-level" style="background-image:url(https://d1u1mce87gyfbn.cloudfront.net/game/playerlevelrewards/%s_Border.png)">`, p.Border)
		fmt.Fprintf(&b, `<div class="u-vertical-center">%s</div></div>`+"\n", p.Level)
	}
	if p.Name != "" {
		fmt.Fprintf(&b, `<h1 class="header-masthead">%s</h1>`+"\n", p.Name)
	}
	if p.Endorsement != "" {
		fmt.Fprintf(&b, `<div class="endorsement-level"><div class="u-center">%s</div></div>`+"\n", p.Endorsement)
	}
	if p.GamesWon != "" {
		fmt.Fprintf(&b, `<p class="masthead-detail h4"><span>%s</span></p>`+"\n", p.GamesWon)
	}
	if p.Rank != "" {
		b.WriteString(`<div class="competitive-rank">`)
		if p.Badge != "" {
			fmt.Fprintf(&b, `<img src="%s">`, p.Badge)
		}
		fmt.Fprintf(&b, `<div class="u-align-center h5">%s</div></div>`+"\n", p.Rank)
	}
	b.WriteString("</div>\n")
	if p.QuickPlay {
		b.WriteString(modeSection("quickplay", "1,234", "12:34:56"))
	}
	if p.Competitive {
		b.WriteString(modeSection("competitive", "321", "01:02:03"))
	}
	if p.Achievements {
		b.WriteString(achievements)
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func modeSection(mode, elims, played string) string {
	return fmt.Sprintf(`<div id="%[1]s" data-js="career-category" data-mode="%[1]s">
<select data-group-id="stats"><option value="0x02E00000FFFFFFFF">ALL HEROES</option><option value="0x02E0000000000002">Reaper</option></select>
<div data-group-id="stats" data-category-id="0x02E00000FFFFFFFF">
<div class="card-stat-block"><table class="DataTable"><thead><tr><th colspan="2"><span class="stat-title">Combat</span></th></tr></thead>
<tbody><tr class="DataTable-tableRow"><td>Eliminations</td><td>%[2]s</td></tr><tr class="DataTable-tableRow"><td>Deaths</td><td>567</td></tr></tbody></table></div>
<div class="card-stat-block"><table class="DataTable"><thead><tr><th colspan="2"><span class="stat-title">Game</span></th></tr></thead>
<tbody><tr class="DataTable-tableRow"><td>Time Played</td><td>%[3]s</td></tr><tr class="DataTable-tableRow"><td>Win Percentage</td><td>52%%</td></tr></tbody></table></div>
</div>
<div data-group-id="stats" data-category-id="0x02E0000000000002">
<div class="card-stat-block"><table class="DataTable"><thead><tr><th colspan="2"><span class="stat-title">Hero Specific</span></th></tr></thead>
<tbody><tr class="DataTable-tableRow"><td>Souls Consumed</td><td>88</td></tr></tbody></table></div>
</div>
</div>
`, mode, elims, played)
}

const achievements = `<div id="achievements-section">
<select data-group-id="achievements"><option value="0x0860000000000033">General</option><option value="0x0860000000000034">Offense</option></select>
<div data-group-id="achievements" data-category-id="0x0860000000000033">
<div class="achievement-card"><div class="media-card-title">Level 10</div></div>
<div class="achievement-card m-disabled"><div class="media-card-title">Level 25</div></div>
</div>
<div data-group-id="achievements" data-category-id="0x0860000000000034">
<div class="achievement-card"><div class="media-card-title">Decorated</div></div>
</div>
</div>
`

// Document parses the page as though it had been fetched from url.
func (p Page) Document(url string) *document.Document {
	doc, err := document.ParseBytes([]byte(p.HTML()), url)
	if err != nil {
		panic(err)
	}
	return doc
}

// Response is what the fake fetcher returns for a URL.
type Response struct {
	Page   *Page // served with status 200 when Status is 0 or 200
	Status int
	Err    error // transport failure, takes precedence over Status
}

// Fetcher is an in-memory httpcache.Fetcher. URLs without a response get a 404.
type Fetcher struct {
	Responses map[string]Response

	mu    sync.Mutex
	calls []string
	docs  []*document.Document
}

// Fetch records the call and serves the configured response.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*document.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)

	if err := ctx.Err(); err != nil {
		return nil, &httpcache.FetchError{URL: url, Err: err}
	}

	r, ok := f.Responses[url]
	switch {
	case !ok:
		return nil, &httpcache.FetchError{URL: url, StatusCode: http.StatusNotFound}
	case r.Err != nil:
		return nil, &httpcache.FetchError{URL: url, Err: r.Err}
	case r.Status != 0 && r.Status != http.StatusOK:
		return nil, &httpcache.FetchError{URL: url, StatusCode: r.Status}
	case r.Page == nil:
		return nil, &httpcache.FetchError{URL: url, StatusCode: http.StatusNotFound}
	}
	doc := r.Page.Document(url)
	f.docs = append(f.docs, doc)
	return doc, nil
}

// Calls returns the URLs fetched so far, in order.
func (f *Fetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Reset forgets recorded calls.
func (f *Fetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Documents returns every document handed out so far.
func (f *Fetcher) Documents() []*document.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*document.Document(nil), f.docs...)
}
