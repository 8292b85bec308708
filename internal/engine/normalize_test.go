package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Whitespace(t *testing.T) {
	got, notes := Normalize("  anna@company.com  ")
	assert.Equal(t, "anna@company.com", got)
	assert.Empty(t, notes)
}

func TestNormalize_ZeroWidth(t *testing.T) {
	got, _ := Normalize("an​na@comp⁠any.com")
	assert.Equal(t, "anna@company.com", got)
}

func TestNormalize_SmartQuotes(t *testing.T) {
	got, notes := Normalize("“bob”@example.com")
	assert.Equal(t, `"bob"@example.com`, got)
	assert.Contains(t, notes, NoteSmartQuotes)
}

func TestNormalize_AngleBrackets(t *testing.T) {
	got, notes := Normalize("<anna@company.com>")
	assert.Equal(t, "anna@company.com", got)
	assert.Contains(t, notes, NoteAngleBrackets)
}

func TestNormalize_FullwidthAt(t *testing.T) {
	got, notes := Normalize("anna＠company.com")
	assert.Equal(t, "anna@company.com", got)
	assert.Contains(t, notes, NoteFullwidthAt)
}

func TestNormalize_InternalWhitespace(t *testing.T) {
	got, notes := Normalize("anna @ company.com")
	assert.Equal(t, "anna@company.com", got)
	assert.Contains(t, notes, NoteWhitespace)
}

func TestNormalize_DomainOnly(t *testing.T) {
	// Domain lowercased and cleaned; local case preserved.
	got, notes := Normalize("Anna.B@COMPANY.COM.")
	assert.Equal(t, "Anna.B@company.com", got)
	assert.Contains(t, notes, NoteTrailingDot)
	assert.Contains(t, notes, NoteDomainLowered)
}

func TestNormalize_DomainDoubleDot(t *testing.T) {
	got, notes := Normalize("anna@company..com")
	assert.Equal(t, "anna@company.com", got)
	assert.Contains(t, notes, NoteDoubleDot)
}

func TestNormalize_LocalDotsUntouched(t *testing.T) {
	// Local double dots are a validation concern, not normalization.
	got, _ := Normalize("john..doe@example.com")
	assert.Equal(t, "john..doe@example.com", got)
}

func TestNormalize_NoAtSkipsDomainSteps(t *testing.T) {
	// The normalizer never invents an '@'.
	got, _ := Normalize("  NotAnEmail.COM  ")
	assert.Equal(t, "NotAnEmail.COM", got)
}

func TestNormalize_MultipleAtSkipsDomainSteps(t *testing.T) {
	got, _ := Normalize("a@b@C.COM")
	assert.Equal(t, "a@b@C.COM", got)
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		" anna@company.con ",
		"<anna@company.com>",
		"<<wrapped@example.com>>",
		"an na@COMPANY.com.",
		"anna＠comp​any..com",
		"“weird”@example.com",
		"nope@@domain.com",
		"no-at-sign",
		"",
		"sarah+events@gmail.com",
	}
	for _, s := range samples {
		once, _ := Normalize(s)
		twice, _ := Normalize(once)
		assert.Equal(t, once, twice, "not idempotent for %q", s)
	}
}

func TestCollapseDots(t *testing.T) {
	assert.Equal(t, "a.b.c", collapseDots("a..b...c"))
	assert.Equal(t, "abc", collapseDots("abc"))
	assert.Equal(t, ".", collapseDots(".."))
}
