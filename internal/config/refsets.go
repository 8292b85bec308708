package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RefSets holds the reference datasets the engine consults. It is built
// once at startup and passed by pointer into every component; nothing
// mutates it afterwards, so tests can substitute arbitrary sets without
// touching shared state.
type RefSets struct {
	Disposable map[string]struct{}
	Roles      map[string]struct{}
	FreeMail   map[string]struct{}
	TLDs       map[string]struct{}
	TopDomains []string

	TLDTypos    map[string]string // ".con" -> ".com", suffix match
	DomainTypos map[string]string // "gmial.com" -> "gmail.com", whole domain

	GmailLike   map[string]struct{} // dots and plus-tags ignored
	OutlookLike map[string]struct{} // plus-tags ignored, dots kept
}

// Embedded minimal defaults. Production deployments extend these via the
// refsets.* config paths. The disposable list deliberately has no
// default: absence from the set is never proof of legitimacy.
var (
	defaultFreeMail = []string{
		"gmail.com", "googlemail.com", "outlook.com", "hotmail.com", "live.com",
		"yahoo.com", "yahoo.co.uk", "icloud.com", "me.com", "proton.me",
		"protonmail.com", "aol.com", "gmx.com", "pm.me",
	}

	defaultRoles = []string{
		"admin", "root", "info", "sales", "support", "help", "contact", "hello",
		"noreply", "no-reply", "donotreply", "billing", "accounts", "careers",
		"jobs", "press", "marketing", "newsletter", "devnull", "abuse", "postmaster",
	}

	defaultTLDs = []string{
		"com", "net", "org", "io", "co", "ai", "gov", "edu", "us", "uk", "de",
		"fr", "es", "it", "nl", "ca", "au", "ch", "se", "no", "dk", "fi", "pt",
		"br", "in", "sg", "jp", "kr", "cn", "me", "tv", "dev",
	}

	defaultTopDomains = []string{
		"gmail.com", "googlemail.com", "outlook.com", "hotmail.com", "live.com",
		"yahoo.com", "icloud.com", "protonmail.com", "aol.com", "facebook.com",
		"google.com",
	}

	defaultTLDTypos = map[string]string{
		".con":  ".com",
		".cmo":  ".com",
		".cim":  ".com",
		".c0m":  ".com",
		".coom": ".com",
		".comm": ".com",
		".vom":  ".com",
		".xom":  ".com",
		".ocm":  ".com",
		".nety": ".net",
		".nett": ".net",
		".orgg": ".org",
		".ogr":  ".org",
	}

	defaultDomainTypos = map[string]string{
		"gmial.com":     "gmail.com",
		"gamil.com":     "gmail.com",
		"gnail.com":     "gmail.com",
		"gmai.com":      "gmail.com",
		"hotnail.com":   "hotmail.com",
		"hotmial.com":   "hotmail.com",
		"yahho.com":     "yahoo.com",
		"yahooo.com":    "yahoo.com",
		"outlok.com":    "outlook.com",
		"faceboook.com": "facebook.com",
		"goolge.com":    "google.com",
		"googel.com":    "google.com",
		"icloud.con":    "icloud.com",
	}
)

// typoTableFile is the YAML shape of refsets.typo_table_path.
type typoTableFile struct {
	TLDTypos    map[string]string `yaml:"tld_typos"`
	DomainTypos map[string]string `yaml:"domain_typos"`
}

// LoadRefSets builds the reference sets from the configured paths,
// falling back to embedded defaults where no path is set. A configured
// but unreadable path is an error: silently validating against the
// wrong lists is worse than failing the run.
func LoadRefSets(cfg RefSetsConfig) (*RefSets, error) {
	rs := &RefSets{
		Disposable:  map[string]struct{}{},
		Roles:       toSet(defaultRoles),
		FreeMail:    toSet(defaultFreeMail),
		TLDs:        toSet(defaultTLDs),
		TopDomains:  defaultTopDomains,
		TLDTypos:    defaultTLDTypos,
		DomainTypos: defaultDomainTypos,
		GmailLike:   toSet([]string{"gmail.com", "googlemail.com"}),
		OutlookLike: toSet([]string{"outlook.com", "hotmail.com", "live.com"}),
	}

	if cfg.DisposablePath != "" {
		lines, err := readListFile(cfg.DisposablePath)
		if err != nil {
			return nil, eris.Wrap(err, "refsets: disposable list")
		}
		rs.Disposable = toSet(lines)
	}
	if cfg.RolePath != "" {
		lines, err := readListFile(cfg.RolePath)
		if err != nil {
			return nil, eris.Wrap(err, "refsets: role list")
		}
		rs.Roles = toSet(lines)
	}
	if cfg.TopDomainsPath != "" {
		lines, err := readListFile(cfg.TopDomainsPath)
		if err != nil {
			return nil, eris.Wrap(err, "refsets: top domains list")
		}
		rs.TopDomains = lines
	}
	if cfg.TLDPath != "" {
		lines, err := readListFile(cfg.TLDPath)
		if err != nil {
			return nil, eris.Wrap(err, "refsets: tld list")
		}
		rs.TLDs = toSet(lines)
	}
	if cfg.TypoTablePath != "" {
		data, err := os.ReadFile(cfg.TypoTablePath)
		if err != nil {
			return nil, eris.Wrapf(err, "refsets: read typo table %s", cfg.TypoTablePath)
		}
		var tt typoTableFile
		if err := yaml.Unmarshal(data, &tt); err != nil {
			return nil, eris.Wrap(err, "refsets: parse typo table")
		}
		if len(tt.TLDTypos) > 0 {
			rs.TLDTypos = lowerKeys(tt.TLDTypos)
		}
		if len(tt.DomainTypos) > 0 {
			rs.DomainTypos = lowerKeys(tt.DomainTypos)
		}
	}

	return rs, nil
}

// readListFile reads one lowercase entry per line, skipping blanks and
// # comments.
func readListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "refsets: open %s", path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "refsets: scan %s", path)
	}
	return lines, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[strings.ToLower(it)] = struct{}{}
	}
	return set
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = strings.ToLower(v)
	}
	return out
}
