// Package pattern implements Phase 1 extraction: deriving academic
// identifiers directly from URL structure using an ordered table of
// publisher URL shapes. No network I/O happens in this package.
package pattern

import (
	"net/url"
	"regexp"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

// Rule describes one publisher URL shape and how to extract an
// identifier token from it. Rules are evaluated in table order;
// several rules may fire on the same URL.
type Rule struct {
	Name       string          // Short identifier for the rule (pubmed, doi-path, ...)
	Host       string          // Hostname suffix to match; empty matches any host
	Pattern    *regexp.Regexp  // Applied to the URL path; group 1 is the raw token
	Type       identifier.Type // Identifier type the rule produces
	Confidence float64         // Baseline confidence for matches

	// Build converts the submatch slice into the raw identifier value.
	// When nil, submatch 1 is used directly.
	Build func(match []string) string

	// Fallback rules fire only when no earlier rule has produced an
	// identifier of the same type for the URL, so a heuristic match
	// never shadows or duplicates a structural one.
	Fallback bool
}

// Extractor evaluates an ordered rule table URL-by-URL.
type Extractor struct {
	rules []Rule
}

// NewExtractor returns an extractor with the built-in publisher rules.
func NewExtractor() *Extractor {
	return &Extractor{rules: builtinRules()}
}

// AddRules appends rules after the built-in table. Later rules only
// contribute matches not already produced for the same type and value.
func (e *Extractor) AddRules(rules []Rule) {
	e.rules = append(e.rules, rules...)
}

// ExtractFromURL derives identifiers from the structure of a single
// URL. A malformed or unrecognized URL yields an empty slice, never an
// error. All matching rules contribute; duplicate (type, value) pairs
// keep the first (highest-priority) match.
func (e *Extractor) ExtractFromURL(rawURL string) []identifier.Identifier {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}

	var ids []identifier.Identifier
	seen := make(map[string]bool)
	typeSeen := make(map[identifier.Type]bool)

	for _, rule := range e.rules {
		if rule.Host != "" && !hostMatches(u.Hostname(), rule.Host) {
			continue
		}
		if rule.Fallback && typeSeen[rule.Type] {
			continue
		}

		subject := u.Path
		if rule.Host == "" && u.RawQuery != "" {
			// Generic rules also see the query string, where some
			// platforms place the DOI.
			subject = u.Path + "?" + u.RawQuery
		}

		match := rule.Pattern.FindStringSubmatch(subject)
		if match == nil {
			continue
		}

		raw := match[1]
		if rule.Build != nil {
			raw = rule.Build(match)
		}

		value := normalize(rule.Type, raw)
		if value == "" {
			continue
		}
		key := string(rule.Type) + "\x00" + value
		if seen[key] {
			continue
		}
		seen[key] = true
		typeSeen[rule.Type] = true

		ids = append(ids, identifier.Identifier{
			Type:       rule.Type,
			Value:      value,
			Confidence: rule.Confidence,
			SourceURL:  rawURL,
		})
	}

	return ids
}

// ExtractFromURLs runs Phase 1 over a batch of URLs, recording URLs
// that produced no identifier into the result's failed set.
func (e *Extractor) ExtractFromURLs(urls []string) *identifier.ExtractionResult {
	result := identifier.NewExtractionResult()
	for _, rawURL := range urls {
		ids := e.ExtractFromURL(rawURL)
		if len(ids) > 0 {
			result.RecordSuccess(ids)
		} else {
			result.RecordFailure(rawURL)
		}
	}
	return result
}

// hostMatches reports whether hostname equals suffix or ends with
// "."+suffix, so "doi.org" covers both doi.org and dx.doi.org.
func hostMatches(hostname, suffix string) bool {
	if hostname == suffix {
		return true
	}
	n := len(hostname) - len(suffix)
	return n > 0 && hostname[n-1] == '.' && hostname[n:] == suffix
}

// normalize converts a raw rule token into the canonical value for the
// type, returning "" when the token does not survive normalization.
func normalize(t identifier.Type, raw string) string {
	switch t {
	case identifier.DOI:
		doi := identifier.NormalizeDOI(raw)
		if !identifier.IsValidDOI(doi) {
			return ""
		}
		return doi
	case identifier.PMID:
		return identifier.NormalizePMID(raw)
	case identifier.PMC:
		return identifier.NormalizePMC(raw)
	}
	return ""
}
