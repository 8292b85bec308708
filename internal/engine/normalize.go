package engine

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Normalization step notes, recorded for the audit trail. These are
// cleanup observations, not risk flags.
const (
	NoteAngleBrackets = "angle_brackets_stripped"
	NoteFullwidthAt   = "fullwidth_at_replaced"
	NoteWhitespace    = "whitespace_removed"
	NoteTrailingDot   = "trailing_dot_stripped"
	NoteDoubleDot     = "double_dot_domain_collapsed"
	NoteDomainLowered = "domain_lowercased"
	NoteSmartQuotes   = "smart_quotes_replaced"
)

// zeroWidth matches the zero-width characters stripped during cleanup.
var zeroWidth = runes.Remove(runes.Predicate(func(r rune) bool {
	switch r {
	case '​', '‌', '‍', '⁠':
		return true
	}
	return false
}))

var smartQuotes = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
)

// Normalize applies the ordered, deterministic cleanup steps to a raw
// cell value. It is pure and idempotent: Normalize(Normalize(x)) ==
// Normalize(x). The steps are not reorderable. If the input does not
// contain exactly one "@" the domain steps are skipped and syntax
// validation reports the defect; Normalize never invents an "@".
func Normalize(raw string) (string, []string) {
	var notes []string

	s, _, _ := transform.String(zeroWidth, raw)
	s = strings.TrimSpace(s)

	if q := smartQuotes.Replace(s); q != s {
		s = q
		notes = append(notes, NoteSmartQuotes)
	}

	// Enclosing angle brackets, e.g. "Anna <anna@co.com>" already split
	// upstream; matched pairs are stripped until none remain so the
	// function stays idempotent.
	for strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) >= 2 {
		s = strings.TrimSpace(s[1 : len(s)-1])
		if !slices.Contains(notes, NoteAngleBrackets) {
			notes = append(notes, NoteAngleBrackets)
		}
	}

	if strings.ContainsRune(s, '＠') {
		s = strings.ReplaceAll(s, "＠", "@")
		notes = append(notes, NoteFullwidthAt)
	}

	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		s = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
		notes = append(notes, NoteWhitespace)
	}

	if strings.Count(s, "@") != 1 {
		return s, notes
	}

	local, domain, _ := strings.Cut(s, "@")

	if trimmed := strings.TrimRight(domain, "."); trimmed != domain {
		domain = trimmed
		notes = append(notes, NoteTrailingDot)
	}

	if strings.Contains(domain, "..") {
		domain = collapseDots(domain)
		notes = append(notes, NoteDoubleDot)
	}

	if lower := strings.ToLower(domain); lower != domain {
		domain = lower
		notes = append(notes, NoteDomainLowered)
	}

	return local + "@" + domain, notes
}

// collapseDots reduces runs of two or more dots to a single dot.
func collapseDots(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevDot := false
	for _, r := range s {
		if r == '.' {
			if prevDot {
				continue
			}
			prevDot = true
		} else {
			prevDot = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitAddress returns the local and domain segments of an address with
// exactly one "@". ok is false otherwise.
func splitAddress(email string) (local, domain string, ok bool) {
	if strings.Count(email, "@") != 1 {
		return "", "", false
	}
	local, domain, _ = strings.Cut(email, "@")
	return local, domain, true
}
