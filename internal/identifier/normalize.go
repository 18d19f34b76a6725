package identifier

import (
	"regexp"
	"strings"
)

// Token patterns shared by URL parsing, page scraping, and document
// text search.
var (
	// doiPattern matches a DOI: 10.XXXX/... where XXXX is 4+ digits.
	doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

	// pmidPattern matches a labeled PubMed ID in free text. Bare digit
	// runs are too ambiguous to treat as PMIDs.
	pmidPattern = regexp.MustCompile(`(?i)PMID[:\s]\s*(\d{1,8})`)

	// pmcPattern matches a PMC accession.
	pmcPattern = regexp.MustCompile(`(?i)PMC(\d{4,9})`)
)

// NormalizeDOI normalizes a DOI to a consistent format: common URL and
// label prefixes removed, surrounding whitespace and trailing
// punctuation trimmed, lower-cased.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "https://dx.doi.org/")
	doi = strings.TrimPrefix(doi, "http://dx.doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	doi = strings.TrimSpace(doi)
	doi = strings.TrimRight(doi, ".,;:)]}\"'")
	return strings.ToLower(doi)
}

// NormalizePMID strips everything but the digits of a PubMed ID.
func NormalizePMID(pmid string) string {
	pmid = strings.TrimSpace(pmid)
	pmid = strings.TrimPrefix(strings.ToUpper(pmid), "PMID:")
	pmid = strings.TrimSpace(pmid)
	pmid = strings.TrimSuffix(pmid, "/")
	return pmid
}

// NormalizePMC returns the canonical PMC accession form: upper-case
// "PMC" prefix followed by digits.
func NormalizePMC(pmc string) string {
	pmc = strings.TrimSpace(pmc)
	upper := strings.ToUpper(pmc)
	upper = strings.TrimPrefix(upper, "PMCID:")
	upper = strings.TrimSpace(upper)
	upper = strings.TrimSuffix(upper, "/")
	if !strings.HasPrefix(upper, "PMC") {
		upper = "PMC" + upper
	}
	return upper
}

// IsValidDOI performs basic structural validation on a normalized DOI.
func IsValidDOI(doi string) bool {
	if len(doi) < 7 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// FindInText searches free text for identifier tokens of all known
// types and returns them as identifiers with the given baseline
// confidence and source URL. Duplicate values are collapsed.
func FindInText(text, sourceURL string, confidence float64) []Identifier {
	var ids []Identifier
	seen := make(map[string]bool)

	add := func(t Type, value string) {
		key := string(t) + "\x00" + value
		if value == "" || seen[key] {
			return
		}
		seen[key] = true
		ids = append(ids, Identifier{
			Type:       t,
			Value:      value,
			Confidence: confidence,
			SourceURL:  sourceURL,
		})
	}

	for _, match := range doiPattern.FindAllString(text, -1) {
		doi := NormalizeDOI(match)
		if IsValidDOI(doi) {
			add(DOI, doi)
		}
	}
	for _, match := range pmidPattern.FindAllStringSubmatch(text, -1) {
		add(PMID, match[1])
	}
	for _, match := range pmcPattern.FindAllStringSubmatch(text, -1) {
		add(PMC, "PMC"+match[1])
	}

	return ids
}

// FindDOIs returns the normalized, structurally valid DOIs found in
// text, in order of appearance.
func FindDOIs(text string) []string {
	var dois []string
	for _, match := range doiPattern.FindAllString(text, -1) {
		doi := NormalizeDOI(match)
		if IsValidDOI(doi) {
			dois = append(dois, doi)
		}
	}
	return dois
}
