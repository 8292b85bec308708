package engine

import (
	"strings"
	"unicode"

	"golang.org/x/net/idna"

	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/model"
)

// spoofedScripts are the scripts commonly used for homoglyph spoofing
// of Latin-looking domains.
var spoofedScripts = []*unicode.RangeTable{
	unicode.Cyrillic,
	unicode.Greek,
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
	unicode.Arabic,
	unicode.Hebrew,
}

// DomainToASCII converts a potentially-unicode domain to ASCII punycode
// per IDNA (UTS-46). Pure-ASCII input is returned unchanged with no
// flags. On encoding failure the domain is returned unmodified with
// idna_error set; structural validation downstream reports it invalid.
func DomainToASCII(domain string) (string, model.FlagSet) {
	var flags model.FlagSet
	if domain == "" || isASCII(domain) {
		return domain, flags
	}

	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		flags.Add(model.FlagIDNAError)
		return domain, flags
	}
	flags.Add(model.FlagNonASCIIDomain)

	// Confusability is judged on the original unicode form, before
	// punycode hides the script mix.
	if hasConfusableMix(domain) {
		flags.Add(model.FlagUnicodeConfusable)
	}

	return ascii, flags
}

// hasConfusableMix reports whether s mixes Latin letters with a
// commonly-spoofed script, or contains an unprintable/unassigned code
// point.
func hasConfusableMix(s string) bool {
	hasLatin := false
	hasSpoofed := false
	for _, r := range s {
		if r < 128 {
			if unicode.IsLetter(r) {
				hasLatin = true
			}
			continue
		}
		if !unicode.IsGraphic(r) || unicode.Is(unicode.Co, r) {
			return true
		}
		if unicode.Is(unicode.Latin, r) {
			hasLatin = true
			continue
		}
		for _, script := range spoofedScripts {
			if unicode.Is(script, r) {
				hasSpoofed = true
				break
			}
		}
	}
	return hasLatin && hasSpoofed
}

// ValidateDomainStructure checks the ASCII (punycode if needed) domain:
// labels 1-63 chars, alphanumerics and internal hyphens only, no empty
// labels. Normalization collapses dot runs, so an empty label here means
// the defect survived cleanup.
func ValidateDomainStructure(domainASCII string) model.FlagSet {
	var flags model.FlagSet
	if domainASCII == "" {
		flags.Add(model.FlagEmptyDomain)
		return flags
	}

	for _, label := range strings.Split(domainASCII, ".") {
		if label == "" {
			flags.Add(model.FlagDomainConsecutiveDots)
			continue
		}
		if !validLabel(label) {
			flags.Add(model.FlagInvalidDomainLabel)
		}
	}
	return flags
}

// validLabel checks one dot-delimited label: 1-63 chars, starts and
// ends with an alphanumeric, hyphens only internally. Internal runs of
// hyphens are allowed since punycode labels start with "xn--".
func validLabel(label string) bool {
	if len(label) > 63 {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-':
			if i == 0 || i == len(label)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// CheckTLD tests the final label against the configured allow-list.
func CheckTLD(domainASCII string, refs *config.RefSets) model.FlagSet {
	var flags model.FlagSet
	idx := strings.LastIndexByte(domainASCII, '.')
	if idx < 0 || idx == len(domainASCII)-1 {
		flags.Add(model.FlagInvalidTLD)
		return flags
	}
	tld := strings.ToLower(domainASCII[idx+1:])
	if _, ok := refs.TLDs[tld]; !ok {
		flags.Add(model.FlagInvalidTLD)
	}
	return flags
}

// localSafe reports whether c is in the pragmatic RFC 5322 unquoted
// local-part character set.
func localSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte(".!#$%&'*+/=?^_`{|}~-", c) >= 0
}

// ValidateLocal checks the local part structurally: length, dot
// placement, and, for unquoted locals, the allowed character class. A
// fully quoted local part is accepted without character-class checks.
func ValidateLocal(local string) model.FlagSet {
	var flags model.FlagSet
	if local == "" {
		flags.Add(model.FlagEmptyLocal)
		return flags
	}
	if len(local) > 64 {
		flags.Add(model.FlagLocalTooLong)
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		flags.Add(model.FlagLeadingTrailingDot)
	}
	if strings.Contains(local, "..") {
		flags.Add(model.FlagDoubleDotLocal)
	}
	if len(local) >= 2 && strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`) {
		return flags
	}
	for i := 0; i < len(local); i++ {
		if !localSafe(local[i]) {
			flags.Add(model.FlagInvalidSyntax)
			break
		}
	}
	return flags
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			return false
		}
	}
	return true
}
