// Package extract derives the headline profile fields from a career page.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/owcareer/pkg/document"
	"github.com/codeGROOVE-dev/owcareer/pkg/prestige"
)

// Locators the career page must expose.
const (
	LevelWidget     = "div.player-level"
	LevelText       = "div.player-level div.u-vertical-center"
	RankText        = "div.competitive-rank div.u-align-center"
	RankBadge       = "div.competitive-rank img"
	Portrait        = "img.player-portrait"
	DisplayName     = "h1.header-masthead"
	EndorsementText = "div.endorsement-level div.u-center"
	GamesWonText    = "p.masthead-detail span"
)

// MaxBaseLevel is the highest level the site displays before the border
// takes over. Larger values are treated as unparsable.
const MaxBaseLevel = 100

var gamesWonPattern = regexp.MustCompile(`([\d,.]+)\s+games?\s+won`)

// Fields is the typed result of a single extraction pass.
type Fields struct {
	LastUpdated     time.Time `json:"last_updated" yaml:"last_updated"`
	DisplayName     string    `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	PortraitURL     string    `json:"portrait_url" yaml:"portrait_url"`
	RankBadgeURL    string    `json:"rank_badge_url,omitempty" yaml:"rank_badge_url,omitempty"`
	GamesWon        uint32    `json:"games_won,omitempty" yaml:"games_won,omitempty"`
	Level           uint16    `json:"level" yaml:"level"`
	BaseLevel       uint16    `json:"base_level" yaml:"base_level"`
	PrestigeOffset  uint16    `json:"prestige_offset" yaml:"prestige_offset"`
	CompetitiveRank uint16    `json:"competitive_rank,omitempty" yaml:"competitive_rank,omitempty"`
	Endorsement     uint16    `json:"endorsement,omitempty" yaml:"endorsement,omitempty"`
}

// Ranked reports whether a competitive skill rating was found.
func (f *Fields) Ranked() bool { return f.CompetitiveRank > 0 }

// Extract reads every field from doc. Optional numeric fields fall back to
// zero; a missing portrait or an unknown level border is an error.
func Extract(doc *document.Document, now time.Time) (*Fields, error) {
	portrait, err := doc.FindRequired(Portrait)
	if err != nil {
		return nil, err
	}

	f := &Fields{
		BaseLevel:       baseLevel(doc.FindOptional(LevelText)),
		CompetitiveRank: parseUint16(doc.FindOptional(RankText)),
		Endorsement:     parseUint16(doc.FindOptional(EndorsementText)),
		GamesWon:        gamesWon(doc.FindOptional(GamesWonText)),
	}
	f.PortraitURL, _ = portrait.Attr("src")

	if widget := doc.FindOptional(LevelWidget); widget != nil {
		style, _ := widget.Attr("style")
		offset, err := prestige.FromStyle(style)
		if err != nil {
			return nil, fmt.Errorf("level border in %s: %w", doc.URL(), err)
		}
		f.PrestigeOffset = offset
	}
	f.Level = f.BaseLevel + f.PrestigeOffset

	if badge := doc.FindOptional(RankBadge); badge != nil {
		f.RankBadgeURL, _ = badge.Attr("src")
	}
	if name := doc.FindOptional(DisplayName); name != nil {
		f.DisplayName = name.Text()
	}

	f.LastUpdated = now
	return f, nil
}

func baseLevel(n *document.Node) uint16 {
	if v := parseUint16(n); v <= MaxBaseLevel {
		return v
	}
	return 0
}

func parseUint16(n *document.Node) uint16 {
	if n == nil {
		return 0
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(n.Text(), ",", ""), 10, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

func gamesWon(n *document.Node) uint32 {
	if n == nil {
		return 0
	}
	m := gamesWonPattern.FindStringSubmatch(strings.ToLower(n.Text()))
	if len(m) < 2 {
		return 0
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
	v, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}
