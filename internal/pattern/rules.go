package pattern

import (
	"regexp"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

// Baseline confidences for the built-in rules. Vendor shapes with the
// identifier literally embedded in the path score near 1.0; heuristic
// matches score lower.
const (
	confidenceDOIResolver = 0.98
	confidenceVendorPath  = 0.95
	confidencePreprint    = 0.90
	confidenceHeuristic   = 0.85
)

// builtinRules returns the ordered publisher rule table. Order is
// most-specific first so duplicate matches keep the highest-confidence
// entry.
func builtinRules() []Rule {
	return []Rule{
		{
			Name:       "pubmed",
			Host:       "pubmed.ncbi.nlm.nih.gov",
			Pattern:    regexp.MustCompile(`^/(\d{1,8})/?$`),
			Type:       identifier.PMID,
			Confidence: confidenceVendorPath,
		},
		{
			Name:       "pmc",
			Host:       "pmc.ncbi.nlm.nih.gov",
			Pattern:    regexp.MustCompile(`(?i)/articles/(PMC\d+)`),
			Type:       identifier.PMC,
			Confidence: confidenceVendorPath,
		},
		{
			Name:       "pmc-legacy",
			Host:       "ncbi.nlm.nih.gov",
			Pattern:    regexp.MustCompile(`(?i)/pmc/articles/(PMC\d+)`),
			Type:       identifier.PMC,
			Confidence: confidenceVendorPath,
		},
		{
			Name:       "doi-resolver",
			Host:       "doi.org",
			Pattern:    regexp.MustCompile(`^/(10\.\d{4,9}/.+)$`),
			Type:       identifier.DOI,
			Confidence: confidenceDOIResolver,
		},
		{
			// Atypon/Highwire style: science.org, ACS, Wiley, T&F all
			// place the DOI after a /doi/ path segment.
			Name:       "doi-path",
			Pattern:    regexp.MustCompile(`/doi(?:/abs|/full|/pdf|/epdf|/pdfdirect)?/(10\.\d{4,9}/[^?#]+)`),
			Type:       identifier.DOI,
			Confidence: confidenceVendorPath,
		},
		{
			Name:       "biorxiv-content",
			Host:       "biorxiv.org",
			Pattern:    preprintContentPattern,
			Type:       identifier.DOI,
			Confidence: confidencePreprint,
			Build:      stripVersionSuffix,
		},
		{
			Name:       "medrxiv-content",
			Host:       "medrxiv.org",
			Pattern:    preprintContentPattern,
			Type:       identifier.DOI,
			Confidence: confidencePreprint,
			Build:      stripVersionSuffix,
		},
		{
			// Dated early-access paths carry only the suffix of the
			// 10.1101 DOI: /content/early/2023/09/08/2023.09.08.556944
			Name:       "biorxiv-early",
			Host:       "biorxiv.org",
			Pattern:    preprintEarlyPattern,
			Type:       identifier.DOI,
			Confidence: confidencePreprint,
			Build:      prependPreprintPrefix,
		},
		{
			Name:       "medrxiv-early",
			Host:       "medrxiv.org",
			Pattern:    preprintEarlyPattern,
			Type:       identifier.DOI,
			Confidence: confidencePreprint,
			Build:      prependPreprintPrefix,
		},
		{
			// Last resort: a DOI token anywhere in the path or query.
			Name:       "doi-anywhere",
			Pattern:    regexp.MustCompile(`(10\.\d{4,9}/[^\s?#&]+)`),
			Type:       identifier.DOI,
			Confidence: confidenceHeuristic,
			Fallback:   true,
		},
	}
}

var (
	preprintContentPattern = regexp.MustCompile(`/content/(10\.\d{4,9}/[^?#]+)`)
	preprintEarlyPattern   = regexp.MustCompile(`/content/early/\d{4}/\d{2}/\d{2}/(\d{4}\.\d{2}\.\d{2}\.\d+)`)
	versionSuffixPattern   = regexp.MustCompile(`v\d+(?:\.full(?:\.pdf)?)?$`)
)

// stripVersionSuffix removes the trailing vN (and .full/.full.pdf)
// segment bioRxiv appends to the DOI in content URLs.
func stripVersionSuffix(match []string) string {
	return versionSuffixPattern.ReplaceAllString(match[1], "")
}

// prependPreprintPrefix rebuilds the full 10.1101 DOI from a dated
// early-access path suffix.
func prependPreprintPrefix(match []string) string {
	return "10.1101/" + match[1]
}
