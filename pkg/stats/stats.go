// Package stats extracts career statistics and achievements from a career page.
package stats

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/owcareer/pkg/document"
)

// Mode selects a game mode section of the career page.
type Mode string

// Game modes with their own statistics section.
const (
	QuickPlay   Mode = "quickplay"
	Competitive Mode = "competitive"
)

// AllHeroes is the hero key under which account-wide totals are stored.
const AllHeroes = "ALL HEROES"

// Category maps a stat name ("Eliminations") to its display value ("1,234").
type Category map[string]string

// Hero maps a category title ("Combat") to its stats.
type Hero map[string]Category

// Career maps hero names to their stats for one game mode.
type Career map[string]Hero

// Len returns the total number of stat entries across all heroes.
func (c Career) Len() int {
	n := 0
	for _, hero := range c {
		for _, cat := range hero {
			n += len(cat)
		}
	}
	return n
}

// Value returns a stat for hero and category, parsed as a number.
func (c Career) Value(hero, category, stat string) (float64, bool) {
	raw, ok := c[hero][category][stat]
	if !ok {
		return 0, false
	}
	v, err := ParseValue(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractCareer reads the stats section for mode. A page without that
// section yields an empty, non-nil Career.
func ExtractCareer(doc *document.Document, mode Mode) Career {
	out := Career{}
	section := doc.FindOptional("div#" + string(mode))
	if section == nil {
		return out
	}

	names := optionNames(section.FindAll(`select[data-group-id="stats"] option`))
	for _, group := range section.FindAll(`div[data-group-id="stats"]`) {
		id, _ := group.Attr("data-category-id")
		name := names[id]
		if name == "" {
			name = id
		}

		hero := Hero{}
		for _, table := range group.FindAll("table.DataTable") {
			title := table.FindOptional(".stat-title")
			if title == nil {
				continue
			}
			cat := Category{}
			for _, row := range table.FindAll("tbody tr") {
				cells := row.FindAll("td")
				if len(cells) < 2 {
					continue
				}
				if key := cells[0].Text(); key != "" {
					cat[key] = cells[1].Text()
				}
			}
			if len(cat) > 0 {
				hero[title.Text()] = cat
			}
		}
		if len(hero) > 0 {
			out[name] = hero
		}
	}
	return out
}

// Achievement is a single achievement card.
type Achievement struct {
	Name   string `json:"name" yaml:"name"`
	Earned bool   `json:"earned" yaml:"earned"`
}

// ExtractAchievements returns achievements grouped by category name.
func ExtractAchievements(doc *document.Document) map[string][]Achievement {
	out := map[string][]Achievement{}
	section := doc.FindOptional("#achievements-section")
	if section == nil {
		return out
	}

	names := optionNames(section.FindAll(`select[data-group-id="achievements"] option`))
	for _, group := range section.FindAll(`div[data-group-id="achievements"]`) {
		id, _ := group.Attr("data-category-id")
		name := names[id]
		if name == "" {
			name = id
		}
		for _, card := range group.FindAll("div.achievement-card") {
			title := card.FindOptional(".media-card-title")
			if title == nil {
				continue
			}
			out[name] = append(out[name], Achievement{
				Name:   title.Text(),
				Earned: !card.HasClass("m-disabled"),
			})
		}
	}
	return out
}

func optionNames(options []*document.Node) map[string]string {
	m := make(map[string]string, len(options))
	for _, o := range options {
		if v, ok := o.Attr("value"); ok {
			m[v] = o.Text()
		}
	}
	return m
}

// ErrNotNumeric is returned by ParseValue for values with no numeric form.
var ErrNotNumeric = errors.New("not a numeric stat")

// ParseValue converts a displayed stat into a number. Thousands separators
// are dropped, percentages lose their sign, and clock values ("12:34" or
// "01:02:03") become seconds. NaN, infinities and hex floats are rejected.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimSuffix(s, "%")
	if s == "" || s == "--" {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}

	if strings.Contains(s, ":") {
		var total float64
		for part := range strings.SplitSeq(s, ":") {
			n, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
			}
			total = total*60 + float64(n)
		}
		return total, nil
	}

	if strings.ContainsAny(s, "xX") {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return v, nil
}
