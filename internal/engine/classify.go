package engine

import (
	"strings"

	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/model"
)

// testPrefixes mark throwaway or placeholder locals.
var testPrefixes = []string{"test", "temp", "example", "sample"}

// Classify raises the policy and heuristic risk flags for a parsed
// address. Membership tests run against the immutable reference sets;
// absence of a domain from the disposable set is never proof of
// legitimacy.
func Classify(local, domainASCII string, refs *config.RefSets) model.FlagSet {
	var flags model.FlagSet
	lowerLocal := strings.ToLower(local)
	lowerDomain := strings.ToLower(domainASCII)

	if _, ok := refs.Roles[lowerLocal]; ok {
		flags.Add(model.FlagRoleAccount)
	}
	if _, ok := refs.FreeMail[lowerDomain]; ok {
		flags.Add(model.FlagFreeMailDomain)
	}
	if _, ok := refs.Disposable[lowerDomain]; ok {
		flags.Add(model.FlagDisposableDomain)
	}

	for _, p := range testPrefixes {
		if strings.HasPrefix(lowerLocal, p) {
			flags.Add(model.FlagTestEmail)
			break
		}
	}

	if distinctRunes(lowerLocal) < 3 {
		flags.Add(model.FlagLowDiversity)
	}

	return flags
}

func distinctRunes(s string) int {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}
