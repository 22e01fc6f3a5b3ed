// Package identity canonicalizes business identity fields (domains, phones,
// names) and decides fuzzy identity equivalence between businesses.
package identity

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// hostPattern is the permissive fallback for inputs the URL parser rejects:
// anything that looks like a dotted hostname with an alphabetic TLD.
var hostPattern = regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9.-]*\.[a-zA-Z]{2,}`)

// NormalizeDomain canonicalizes a URL or bare hostname into a lower-cased,
// www-stripped domain suitable as a dedup key. Returns "" for empty input,
// localhost, or anything no hostname can be extracted from. Idempotent:
// NormalizeDomain(NormalizeDomain(x)) == NormalizeDomain(x).
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	candidate := s
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}

	var host string
	if u, err := url.Parse(candidate); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		host = hostPattern.FindString(s)
	}

	host = strings.ToLower(strings.Trim(host, "."))
	host = strings.TrimPrefix(host, "www.")
	if host == "" || host == "localhost" {
		return ""
	}
	return host
}

// NormalizePhone reduces a phone number to a +-prefixed digit string.
// Ten digits are assumed NANP and get a +1 prefix; 11 digits starting with 1
// and any 10-15 digit string get a bare + prefix. Anything else returns "".
// No dialability validation is attempted.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits
	case len(digits) >= 10 && len(digits) <= 15:
		return "+" + digits
	default:
		return ""
	}
}

// diacriticStripper folds accented characters to their base form so that
// "Café" and "Cafe" normalize identically.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lower-cases a business name, strips punctuation and
// diacritics, and collapses runs of whitespace to single spaces.
func NormalizeName(raw string) string {
	folded, _, err := transform.String(diacriticStripper, raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSpace = true
		}
	}
	return b.String()
}
