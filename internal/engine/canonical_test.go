package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalKey_Gmail(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())

	key := e.CanonicalKey("Sarah.Winter+events@Gmail.com")
	assert.Equal(t, "sarahwinter@gmail.com", key)

	// dot and tag variants collapse to the same key
	assert.Equal(t, key, e.CanonicalKey("sarahwinter@gmail.com"))
	assert.Equal(t, key, e.CanonicalKey("sarah.winter@gmail.com"))

	// googlemail is gmail-like but keeps its own domain in the key
	assert.Equal(t, "sarahwinter@googlemail.com", e.CanonicalKey("s.a.r.a.h.winter+x@googlemail.com"))
}

func TestCanonicalKey_Outlook(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())

	// plus-tags stripped, dots kept
	assert.Equal(t, "john.doe@outlook.com", e.CanonicalKey("John.Doe+work@Outlook.com"))
	assert.NotEqual(t, e.CanonicalKey("john.doe@outlook.com"), e.CanonicalKey("johndoe@outlook.com"))
}

func TestCanonicalKey_OtherDomain(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())

	// non-freemail providers only lowercase; plus and dots are
	// significant
	assert.Equal(t, "anna.berg+x@acme.com", e.CanonicalKey("Anna.Berg+x@ACME.com"))
}

func TestCanonicalKey_ProviderAwareOff(t *testing.T) {
	opts := defaultOpts()
	opts.ProviderAware = false
	e := newTestEngine(t, nil, opts)

	assert.Equal(t, "sarah.winter+events@gmail.com", e.CanonicalKey("Sarah.Winter+events@Gmail.com"))
}

func TestCanonicalKey_UnicodeDomain(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())

	assert.Equal(t, "anna@xn--bcher-kva.com", e.CanonicalKey("Anna@bücher.com"))
}

func TestCanonicalKey_Unparseable(t *testing.T) {
	e := newTestEngine(t, nil, defaultOpts())

	assert.Empty(t, e.CanonicalKey("no-at-sign"))
	assert.Empty(t, e.CanonicalKey("two@@ats.com"))
	assert.Empty(t, e.CanonicalKey(""))
}
