package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mailclean/internal/config"
	"github.com/sells-group/mailclean/internal/model"
)

func defaultRefs(t *testing.T) *config.RefSets {
	t.Helper()
	rs, err := config.LoadRefSets(config.RefSetsConfig{})
	require.NoError(t, err)
	return rs
}

func TestDomainToASCII_PureASCII(t *testing.T) {
	ascii, flags := DomainToASCII("example.com")
	assert.Equal(t, "example.com", ascii)
	assert.Equal(t, model.FlagSet(0), flags)
}

func TestDomainToASCII_Unicode(t *testing.T) {
	ascii, flags := DomainToASCII("exámple.com")
	assert.True(t, strings.HasPrefix(ascii, "xn--"), "got %q", ascii)
	assert.True(t, flags.Has(model.FlagNonASCIIDomain))
	assert.False(t, flags.Has(model.FlagIDNAError))
}

func TestDomainToASCII_ConfusableMix(t *testing.T) {
	// Cyrillic 'а' (U+0430) among Latin letters.
	_, flags := DomainToASCII("pаypal.com")
	assert.True(t, flags.Has(model.FlagUnicodeConfusable))
}

func TestDomainToASCII_NoConfusableForAccents(t *testing.T) {
	_, flags := DomainToASCII("exámple.com")
	assert.False(t, flags.Has(model.FlagUnicodeConfusable))
}

func TestValidateDomainStructure(t *testing.T) {
	assert.Equal(t, model.FlagSet(0), ValidateDomainStructure("example.com"))
	assert.Equal(t, model.FlagSet(0), ValidateDomainStructure("xn--e1afmkfd.ru"))

	flags := ValidateDomainStructure("")
	assert.True(t, flags.Has(model.FlagEmptyDomain))

	flags = ValidateDomainStructure("bad..domain.com")
	assert.True(t, flags.Has(model.FlagDomainConsecutiveDots))

	flags = ValidateDomainStructure("-bad.com")
	assert.True(t, flags.Has(model.FlagInvalidDomainLabel))

	flags = ValidateDomainStructure("bad-.com")
	assert.True(t, flags.Has(model.FlagInvalidDomainLabel))

	flags = ValidateDomainStructure("ba_d.com")
	assert.True(t, flags.Has(model.FlagInvalidDomainLabel))

	long := strings.Repeat("a", 64)
	flags = ValidateDomainStructure(long + ".com")
	assert.True(t, flags.Has(model.FlagInvalidDomainLabel))
}

func TestCheckTLD(t *testing.T) {
	refs := defaultRefs(t)
	assert.Equal(t, model.FlagSet(0), CheckTLD("example.com", refs))
	assert.True(t, CheckTLD("example.con", refs).Has(model.FlagInvalidTLD))
	assert.True(t, CheckTLD("nodots", refs).Has(model.FlagInvalidTLD))
}

func TestValidateLocal(t *testing.T) {
	assert.Equal(t, model.FlagSet(0), ValidateLocal("anna.b"))
	assert.Equal(t, model.FlagSet(0), ValidateLocal("user+tag"))

	assert.True(t, ValidateLocal("").Has(model.FlagEmptyLocal))
	assert.True(t, ValidateLocal(".anna").Has(model.FlagLeadingTrailingDot))
	assert.True(t, ValidateLocal("anna.").Has(model.FlagLeadingTrailingDot))
	assert.True(t, ValidateLocal("john..doe").Has(model.FlagDoubleDotLocal))
	assert.True(t, ValidateLocal("an na").Has(model.FlagInvalidSyntax))
	assert.True(t, ValidateLocal(strings.Repeat("a", 65)).Has(model.FlagLocalTooLong))
}

func TestValidateLocal_QuotedSkipsCharClass(t *testing.T) {
	flags := ValidateLocal(`"john smith"`)
	assert.False(t, flags.Has(model.FlagInvalidSyntax))
}

func TestClassify(t *testing.T) {
	refs := defaultRefs(t)
	refs.Disposable["mailinator.com"] = struct{}{}

	flags := Classify("sales", "acme.com", refs)
	assert.True(t, flags.Has(model.FlagRoleAccount))

	flags = Classify("anna", "gmail.com", refs)
	assert.True(t, flags.Has(model.FlagFreeMailDomain))

	flags = Classify("anna", "mailinator.com", refs)
	assert.True(t, flags.Has(model.FlagDisposableDomain))

	flags = Classify("testuser", "acme.com", refs)
	assert.True(t, flags.Has(model.FlagTestEmail))

	flags = Classify("aaa", "acme.com", refs)
	assert.True(t, flags.Has(model.FlagLowDiversity))

	flags = Classify("anna.berg", "acme.com", refs)
	assert.Equal(t, model.FlagSet(0), flags)
}
