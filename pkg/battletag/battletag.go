// Package battletag classifies player identity strings.
//
// A BattleTag ("Name#1234") identifies a pc player. Anything else is treated
// as an opaque console handle.
package battletag

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/owcareer/pkg/career"
)

// Separator joins the display name and the discriminator in a BattleTag.
const Separator = "#"

// urlSeparator replaces Separator in career URLs.
const urlSeparator = "-"

// tagPattern matches a 3-12 character display name and a 4-5 digit discriminator.
var tagPattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}]{3,12}#[0-9]{4,5}$`)

// ErrInvalidIdentity is returned when a pc identity is not a BattleTag.
var ErrInvalidIdentity = errors.New("invalid identity")

// InvalidIdentityError describes a rejected identity string.
type InvalidIdentityError struct {
	Raw    string
	Reason string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("invalid identity %q: %s", e.Raw, e.Reason)
}

// Unwrap returns ErrInvalidIdentity.
func (*InvalidIdentityError) Unwrap() error { return ErrInvalidIdentity }

// Identity is a classified, immutable player identity.
type Identity struct {
	Raw    string // as supplied by the caller
	Handle string // URL-safe form used in career URLs
	IsTag  bool
}

// IsTag reports whether s is a well-formed BattleTag.
func IsTag(s string) bool {
	return tagPattern.MatchString(s)
}

// Classify validates raw against the requested platform and returns the
// identity together with the effective platform. A BattleTag always yields
// career.PC, overriding a console platform.
func Classify(raw string, platform career.Platform) (Identity, career.Platform, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, platform, &InvalidIdentityError{Raw: raw, Reason: "empty"}
	}

	if IsTag(raw) {
		handle := strings.Replace(raw, Separator, urlSeparator, 1)
		return Identity{Raw: raw, Handle: url.PathEscape(handle), IsTag: true}, career.PC, nil
	}

	if platform == career.PC {
		return Identity{}, platform, &InvalidIdentityError{Raw: raw, Reason: "pc players must be given as Name#1234"}
	}

	return Identity{Raw: raw, Handle: url.PathEscape(raw)}, platform, nil
}

// FromHandle reverses the URL form of a handle back into a display identity.
// On pc a handle of the form "Name-1234" becomes the BattleTag "Name#1234";
// console handles are only unescaped, since "-" and digits are legal in them.
func FromHandle(handle string, platform career.Platform) string {
	h, err := url.PathUnescape(handle)
	if err != nil {
		h = handle
	}
	if platform != career.PC {
		return h
	}
	if i := strings.LastIndex(h, urlSeparator); i > 0 {
		if candidate := h[:i] + Separator + h[i+1:]; IsTag(candidate) {
			return candidate
		}
	}
	return h
}
