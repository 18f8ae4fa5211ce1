// Package prestige maps level border image identifiers to prestige offsets.
//
// Career pages show a player's level modulo 100; the border drawn around it
// encodes how many hundreds to add. The table below must cover every border
// the site can serve, otherwise extraction fails loudly.
package prestige

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownIdentifier is returned for border identifiers missing from the table.
var ErrUnknownIdentifier = errors.New("unknown prestige identifier")

// UnknownError carries the identifier that failed to resolve.
type UnknownError struct {
	ID    string
	Style string
}

func (e *UnknownError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%v: no border identifier in style %q", ErrUnknownIdentifier, e.Style)
	}
	return fmt.Sprintf("%v: %s", ErrUnknownIdentifier, e.ID)
}

// Unwrap returns ErrUnknownIdentifier.
func (*UnknownError) Unwrap() error { return ErrUnknownIdentifier }

// borderPattern isolates the identifier in
// background-image:url(https://.../playerlevelrewards/0x0250000000000918_Border.png).
var borderPattern = regexp.MustCompile(`playerlevelrewards/([0-9A-Za-z]+)_Border`)

// tiers lists border identifiers per prestige offset, ten borders per hundred levels.
var tiers = []struct {
	offset  uint16
	borders []string
}{
	{0, []string{"0x0250000000000918", "0x0250000000000919", "0x025000000000091A", "0x025000000000091B", "0x025000000000091C", "0x025000000000091D", "0x025000000000091E", "0x025000000000091F", "0x0250000000000920", "0x0250000000000921"}},
	{100, []string{"0x0250000000000922", "0x0250000000000923", "0x0250000000000924", "0x0250000000000925", "0x0250000000000926", "0x0250000000000927", "0x0250000000000928", "0x0250000000000929", "0x025000000000092A", "0x025000000000092B"}},
	{200, []string{"0x025000000000092C", "0x025000000000092D", "0x025000000000092E", "0x025000000000092F", "0x0250000000000930", "0x0250000000000931", "0x0250000000000932", "0x0250000000000933", "0x0250000000000934", "0x0250000000000935"}},
	{300, []string{"0x0250000000000936", "0x0250000000000937", "0x0250000000000938", "0x0250000000000939", "0x025000000000093A", "0x025000000000093B", "0x025000000000093C", "0x025000000000093D", "0x025000000000093E", "0x025000000000093F"}},
	{400, []string{"0x0250000000000940", "0x0250000000000941", "0x0250000000000942", "0x0250000000000943", "0x0250000000000944", "0x0250000000000945", "0x0250000000000946", "0x0250000000000947", "0x0250000000000948", "0x0250000000000949"}},
	{500, []string{"0x025000000000094A", "0x025000000000094B", "0x025000000000094C", "0x025000000000094D", "0x025000000000094E", "0x025000000000094F", "0x0250000000000950", "0x0250000000000951", "0x0250000000000952", "0x0250000000000953"}},
	{600, []string{"0x0250000000000954", "0x0250000000000955", "0x0250000000000956", "0x0250000000000957", "0x0250000000000958", "0x0250000000000959", "0x025000000000095A", "0x025000000000095B", "0x025000000000095C", "0x025000000000095D"}},
	{700, []string{"0x025000000000095E", "0x025000000000095F", "0x0250000000000960", "0x0250000000000961", "0x0250000000000962", "0x0250000000000963", "0x0250000000000964", "0x0250000000000965", "0x0250000000000966", "0x0250000000000967"}},
	{800, []string{"0x0250000000000968", "0x0250000000000969", "0x025000000000096A", "0x025000000000096B", "0x025000000000096C", "0x025000000000096D", "0x025000000000096E", "0x025000000000096F", "0x0250000000000970", "0x0250000000000971"}},
	{900, []string{"0x0250000000000972", "0x0250000000000973", "0x0250000000000974", "0x0250000000000975", "0x0250000000000976", "0x0250000000000977", "0x0250000000000978", "0x0250000000000979", "0x025000000000097A", "0x025000000000097B"}},
	{1000, []string{"0x025000000000097C", "0x025000000000097D", "0x025000000000097E", "0x025000000000097F", "0x0250000000000980", "0x0250000000000981", "0x0250000000000982", "0x0250000000000983", "0x0250000000000984", "0x0250000000000985"}},
	{1100, []string{"0x0250000000000986", "0x0250000000000987", "0x0250000000000988", "0x0250000000000989", "0x025000000000098A", "0x025000000000098B", "0x025000000000098C", "0x025000000000098D", "0x025000000000098E", "0x025000000000098F"}},
	{1200, []string{"0x0250000000000990", "0x0250000000000991", "0x0250000000000992", "0x0250000000000993", "0x0250000000000994", "0x0250000000000995", "0x0250000000000996", "0x0250000000000997", "0x0250000000000998", "0x0250000000000999"}},
	{1300, []string{"0x025000000000099A", "0x025000000000099B", "0x025000000000099C", "0x025000000000099D", "0x025000000000099E", "0x025000000000099F", "0x02500000000009A0", "0x02500000000009A1", "0x02500000000009A2", "0x02500000000009A3"}},
	{1400, []string{"0x02500000000009A4", "0x02500000000009A5", "0x02500000000009A6", "0x02500000000009A7", "0x02500000000009A8", "0x02500000000009A9", "0x02500000000009AA", "0x02500000000009AB", "0x02500000000009AC", "0x02500000000009AD"}},
	{1500, []string{"0x02500000000009AE", "0x02500000000009AF", "0x02500000000009B0", "0x02500000000009B1", "0x02500000000009B2", "0x02500000000009B3", "0x02500000000009B4", "0x02500000000009B5", "0x02500000000009B6", "0x02500000000009B7"}},
	{1600, []string{"0x02500000000009B8", "0x02500000000009B9", "0x02500000000009BA", "0x02500000000009BB", "0x02500000000009BC", "0x02500000000009BD", "0x02500000000009BE", "0x02500000000009BF", "0x02500000000009C0", "0x02500000000009C1"}},
	{1700, []string{"0x02500000000009C2", "0x02500000000009C3", "0x02500000000009C4", "0x02500000000009C5", "0x02500000000009C6", "0x02500000000009C7", "0x02500000000009C8", "0x02500000000009C9", "0x02500000000009CA", "0x02500000000009CB"}},
}

// table is built once from tiers and never written afterwards.
var table = func() map[string]uint16 {
	m := make(map[string]uint16, len(tiers)*10)
	for _, t := range tiers {
		for _, id := range t.borders {
			key := normalize(id)
			if _, dup := m[key]; dup {
				panic("prestige: duplicate border identifier " + id)
			}
			m[key] = t.offset
		}
	}
	return m
}()

func normalize(id string) string {
	lower := strings.ToLower(strings.TrimSpace(id))
	if hex, ok := strings.CutPrefix(lower, "0x"); ok {
		return "0x" + strings.ToUpper(hex)
	}
	return lower
}

// Len returns the number of known border identifiers.
func Len() int { return len(table) }

// Lookup returns the prestige offset for a border identifier.
func Lookup(id string) (uint16, error) {
	if offset, ok := table[normalize(id)]; ok {
		return offset, nil
	}
	return 0, &UnknownError{ID: id}
}

// Identifier extracts the border identifier from an inline style attribute.
// It returns "" when the style does not reference a level border.
func Identifier(style string) string {
	if m := borderPattern.FindStringSubmatch(style); len(m) > 1 {
		return m[1]
	}
	return ""
}

// FromStyle isolates the border identifier in style and looks it up.
func FromStyle(style string) (uint16, error) {
	id := Identifier(style)
	if id == "" {
		return 0, &UnknownError{Style: style}
	}
	offset, err := Lookup(id)
	if err != nil {
		return 0, &UnknownError{ID: id, Style: style}
	}
	return offset, nil
}
