// Package detect locates the email-bearing columns of a sheet. Header
// names are checked first; columns with unhelpful headers fall back to
// content sampling.
package detect

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/mailclean/internal/table"
)

const (
	// contentSampleSize caps how many non-blank cells are inspected per
	// column during the content fallback.
	contentSampleSize = 200

	// contentRatio is the share of sampled cells that must look like an
	// address for a column to qualify without a matching header.
	contentRatio = 0.30
)

// headerNames are exact matches after normalization (lowercase, spaces
// and separators removed).
var headerNames = map[string]struct{}{
	"email":        {},
	"emails":       {},
	"emailaddress": {},
	"emailaddr":    {},
	"mail":         {},
	"contactemail": {},
	"workemail":    {},
	"primaryemail": {},
}

// EmailColumns returns the 1-based indices of every column in s that
// holds email addresses, in column order. A header match wins outright;
// otherwise the column qualifies if enough of its sampled content is
// address-shaped.
func EmailColumns(s *table.Sheet) []int {
	var cols []int
	for col := 1; col <= s.NumCols(); col++ {
		byHeader := headerMatch(s.Header[col-1])
		if byHeader || contentMatch(s, col) {
			cols = append(cols, col)
			zap.L().Debug("detect: email column",
				zap.String("sheet", s.Name),
				zap.Int("col", col),
				zap.Bool("by_header", byHeader))
		}
	}
	return cols
}

// headerMatch normalizes the header name and checks it against the
// known email header set. "E-Mail Address" and "email_address" both
// normalize to "emailaddress".
func headerMatch(header string) bool {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		switch r {
		case ' ', '-', '_', '.', ':':
			continue
		}
		b.WriteRune(r)
	}
	_, ok := headerNames[b.String()]
	return ok
}

// contentMatch samples the column's non-blank cells and reports whether
// the address-shaped share clears the ratio threshold. An empty column
// never matches.
func contentMatch(s *table.Sheet, col int) bool {
	sampled, hits := 0, 0
	for row := 1; row <= s.NumRows() && sampled < contentSampleSize; row++ {
		v, err := s.Cell(row, col)
		if err != nil {
			return false
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		sampled++
		if addressShaped(v) {
			hits++
		}
	}
	if sampled == 0 {
		return false
	}
	return float64(hits)/float64(sampled) >= contentRatio
}

// addressShaped is a cheap shape test, not validation: exactly one '@'
// with a dotted, non-empty domain after it. The engine decides what the
// value actually is.
func addressShaped(v string) bool {
	if strings.ContainsAny(v, " \t") {
		return false
	}
	at := strings.IndexByte(v, '@')
	if at <= 0 || at != strings.LastIndexByte(v, '@') {
		return false
	}
	domain := v[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
