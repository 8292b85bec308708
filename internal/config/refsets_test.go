package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRefSets_Defaults(t *testing.T) {
	rs, err := LoadRefSets(RefSetsConfig{})
	require.NoError(t, err)

	assert.Contains(t, rs.FreeMail, "gmail.com")
	assert.Contains(t, rs.Roles, "noreply")
	assert.Contains(t, rs.TLDs, "com")
	assert.Equal(t, ".com", rs.TLDTypos[".con"])
	assert.Equal(t, "gmail.com", rs.DomainTypos["gmial.com"])
	// No safe default for disposable domains.
	assert.Empty(t, rs.Disposable)
	assert.Contains(t, rs.GmailLike, "googlemail.com")
	assert.Contains(t, rs.OutlookLike, "hotmail.com")
}

func TestLoadRefSets_ListFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disposable.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nMailinator.com\n\ntrashmail.com\n"), 0o644))

	rs, err := LoadRefSets(RefSetsConfig{DisposablePath: path})
	require.NoError(t, err)
	assert.Contains(t, rs.Disposable, "mailinator.com")
	assert.Contains(t, rs.Disposable, "trashmail.com")
	assert.Len(t, rs.Disposable, 2)
}

func TestLoadRefSets_TypoTableYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "typos.yaml")
	content := "tld_typos:\n  \".comx\": \".com\"\ndomain_typos:\n  \"Gmaill.com\": \"gmail.com\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rs, err := LoadRefSets(RefSetsConfig{TypoTablePath: path})
	require.NoError(t, err)
	assert.Equal(t, ".com", rs.TLDTypos[".comx"])
	assert.Equal(t, "gmail.com", rs.DomainTypos["gmaill.com"])
	// Replacing the table drops the embedded entries.
	_, ok := rs.TLDTypos[".con"]
	assert.False(t, ok)
}

func TestLoadRefSets_MissingConfiguredPath(t *testing.T) {
	_, err := LoadRefSets(RefSetsConfig{RolePath: "/nonexistent/roles.txt"})
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.True(t, cfg.Engine.ExcludeRoleAccounts)
	assert.True(t, cfg.Engine.ProviderAwareDedup)
	assert.InDelta(t, 0.85, cfg.Engine.ConfidenceThreshold, 0.001)
	assert.Equal(t, 1000, cfg.Engine.NearDupeCeiling)
	assert.Equal(t, "levenshtein", cfg.Engine.Fuzzy.Provider)
	assert.Equal(t, 90, cfg.Engine.Fuzzy.MinScore)
	assert.False(t, cfg.Reviewer.Enabled)
}
