package engine

import (
	"strings"
)

// CanonicalKey builds the equivalence-class key for deduplication. It
// is distinct from the display-normalized address: a freemail-provider
// key strips dots or plus-tags per provider rule, while the displayed
// email never does. Returns "" when the address does not parse into
// exactly local+domain.
func (e *Engine) CanonicalKey(email string) string {
	norm, _ := Normalize(email)
	local, domain, ok := splitAddress(norm)
	if !ok {
		return ""
	}

	ascii, _ := DomainToASCII(domain)
	d := strings.ToLower(ascii)
	l := strings.ToLower(local)

	if e.opts.ProviderAware {
		if _, gmail := e.refs.GmailLike[d]; gmail {
			// Gmail ignores dots and treats anything after '+' as a tag.
			l, _, _ = strings.Cut(l, "+")
			l = strings.ReplaceAll(l, ".", "")
		} else if _, outlook := e.refs.OutlookLike[d]; outlook {
			// Outlook-family addresses keep dots but ignore plus-tags.
			l, _, _ = strings.Cut(l, "+")
		}
	}

	return l + "@" + d
}
