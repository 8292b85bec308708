package model

import "strings"

// RiskFlag is a single named defect or policy signal on an address.
// The set is closed: every flag the engine can raise is declared here,
// and flagNames must cover all of them.
type RiskFlag uint32

const (
	FlagMissingAt RiskFlag = 1 << iota
	FlagMultipleAt
	FlagEmptyLocal
	FlagEmptyDomain
	FlagLocalTooLong
	FlagLeadingTrailingDot
	FlagDoubleDotLocal
	FlagDomainConsecutiveDots
	FlagInvalidSyntax
	FlagInvalidDomainLabel
	FlagInvalidTLD
	FlagIDNAError
	FlagNonASCIIDomain
	FlagUnicodeConfusable
	FlagDisposableDomain
	FlagFreeMailDomain
	FlagRoleAccount
	FlagTestEmail
	FlagLowDiversity

	flagSentinel
)

// NumFlags is the number of declared risk flags.
const NumFlags = 19

var flagNames = map[RiskFlag]string{
	FlagMissingAt:             "missing_at",
	FlagMultipleAt:            "multiple_at",
	FlagEmptyLocal:            "empty_local",
	FlagEmptyDomain:           "empty_domain",
	FlagLocalTooLong:          "local_too_long",
	FlagLeadingTrailingDot:    "leading_trailing_dot",
	FlagDoubleDotLocal:        "double_dot_local",
	FlagDomainConsecutiveDots: "domain_consecutive_dots",
	FlagInvalidSyntax:         "invalid_syntax",
	FlagInvalidDomainLabel:    "invalid_domain_label",
	FlagInvalidTLD:            "invalid_tld",
	FlagIDNAError:             "idna_error",
	FlagNonASCIIDomain:        "non_ascii_domain",
	FlagUnicodeConfusable:     "unicode_confusable",
	FlagDisposableDomain:      "disposable_domain",
	FlagFreeMailDomain:        "free_mail_domain",
	FlagRoleAccount:           "role_account",
	FlagTestEmail:             "test_email",
	FlagLowDiversity:          "low_diversity",
}

// String returns the canonical snake_case name of the flag.
func (f RiskFlag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return "unknown"
}

// FlagSet is a bitset of risk flags. Flags are only ever added within a
// single evaluation pass, never removed.
type FlagSet uint32

// Add sets the given flags.
func (s *FlagSet) Add(flags ...RiskFlag) {
	for _, f := range flags {
		*s |= FlagSet(f)
	}
}

// Merge sets every flag present in o.
func (s *FlagSet) Merge(o FlagSet) {
	*s |= o
}

// Has reports whether the flag is set.
func (s FlagSet) Has(f RiskFlag) bool {
	return s&FlagSet(f) != 0
}

// HasAny reports whether any of the given flags is set.
func (s FlagSet) HasAny(flags ...RiskFlag) bool {
	for _, f := range flags {
		if s.Has(f) {
			return true
		}
	}
	return false
}

// Count returns the number of set flags.
func (s FlagSet) Count() int {
	n := 0
	for f := RiskFlag(1); f < flagSentinel; f <<= 1 {
		if s.Has(f) {
			n++
		}
	}
	return n
}

// Names returns the sorted-by-declaration names of all set flags.
func (s FlagSet) Names() []string {
	var names []string
	for f := RiskFlag(1); f < flagSentinel; f <<= 1 {
		if s.Has(f) {
			names = append(names, f.String())
		}
	}
	return names
}

// String joins the set flag names with commas.
func (s FlagSet) String() string {
	return strings.Join(s.Names(), ",")
}
