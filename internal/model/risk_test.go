package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagNames_Exhaustive(t *testing.T) {
	// Every declared flag must have a name; catches a new flag added
	// without a flagNames entry.
	n := 0
	for f := RiskFlag(1); f < flagSentinel; f <<= 1 {
		name, ok := flagNames[f]
		assert.True(t, ok, "flag %b has no name", f)
		assert.NotEmpty(t, name)
		n++
	}
	assert.Equal(t, NumFlags, n)
	assert.Equal(t, NumFlags, len(flagNames))
}

func TestFlagSet_AddHas(t *testing.T) {
	var s FlagSet
	s.Add(FlagInvalidTLD, FlagRoleAccount)
	assert.True(t, s.Has(FlagInvalidTLD))
	assert.True(t, s.Has(FlagRoleAccount))
	assert.False(t, s.Has(FlagMissingAt))
	assert.True(t, s.HasAny(FlagMissingAt, FlagRoleAccount))
	assert.False(t, s.HasAny(FlagMissingAt, FlagMultipleAt))
	assert.Equal(t, 2, s.Count())
}

func TestFlagSet_Names(t *testing.T) {
	var s FlagSet
	s.Add(FlagRoleAccount, FlagInvalidTLD)
	// Declaration order, not insertion order.
	assert.Equal(t, []string{"invalid_tld", "role_account"}, s.Names())
	assert.Equal(t, "invalid_tld,role_account", s.String())
}

func TestPosition_Less(t *testing.T) {
	a := Position{Sheet: "A", Row: 1, Col: 1}
	b := Position{Sheet: "A", Row: 1, Col: 2}
	c := Position{Sheet: "A", Row: 2, Col: 1}
	d := Position{Sheet: "B", Row: 1, Col: 1}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.True(t, c.Less(d))
	assert.False(t, d.Less(a))
	assert.False(t, a.Less(a))
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(ActionAccept))
	assert.True(t, ValidAction(ActionSuppress))
	assert.False(t, ValidAction(ActionDuplicate))
	assert.False(t, ValidAction(Action("remove")))
}
