// Package identifier defines the core domain types for academic
// identifier extraction: identifier values, the batch extraction
// result, and the confidence-merge rule.
package identifier

import "fmt"

// Type is the kind of academic identifier. The set is closed; adding a
// kind requires a new pattern rule and a validator rule.
type Type string

const (
	DOI  Type = "doi"
	PMID Type = "pmid"
	PMC  Type = "pmc"
)

// ParseType parses a user-supplied type name (case-insensitive).
func ParseType(s string) (Type, error) {
	switch s {
	case "doi", "DOI", "Doi":
		return DOI, nil
	case "pmid", "PMID", "Pmid":
		return PMID, nil
	case "pmc", "PMC", "Pmc", "pmcid", "PMCID":
		return PMC, nil
	}
	return "", fmt.Errorf("unknown identifier type: %q", s)
}

// Valid reports whether t is one of the known identifier types.
func (t Type) Valid() bool {
	return t == DOI || t == PMID || t == PMC
}

func (t Type) String() string {
	return string(t)
}

// Identifier is one recognized academic identifier instance.
type Identifier struct {
	Type       Type    `json:"type"`       // doi, pmid, or pmc
	Value      string  `json:"value"`      // Normalized identifier value
	Confidence float64 `json:"confidence"` // Current best estimate of correctness, in [0,1]
	SourceURL  string  `json:"source_url"` // Bibliography URL that produced it
}

// MergeConfidence raises the identifier's confidence to c if c is
// higher, clamped to [0,1]. This is the only place confidence is ever
// updated: later pipeline stages raise confidence, never lower it.
func (i *Identifier) MergeConfidence(c float64) {
	if c > 1 {
		c = 1
	}
	if c > i.Confidence {
		i.Confidence = c
	}
}

// Stats holds running extraction statistics for a batch.
type Stats struct {
	SuccessfulExtractions int `json:"successful_extractions"`
	FailedExtractions     int `json:"failed_extractions"`
	DOICount              int `json:"doi_count"`
	PMIDCount             int `json:"pmid_count"`
	PMCCount              int `json:"pmc_count"`
}

// ExtractionResult is the aggregate outcome of a batch run. It is
// created once per batch, mutated in place as phases run, and returned
// to the caller when the pipeline completes. Identifiers keeps
// discovery order: Phase 1 first, Phase 2 appended.
type ExtractionResult struct {
	Identifiers []Identifier `json:"identifiers"`
	FailedURLs  []string     `json:"failed_urls"`
	Stats       Stats        `json:"extraction_stats"`
}

// NewExtractionResult returns an empty result.
func NewExtractionResult() *ExtractionResult {
	return &ExtractionResult{
		Identifiers: []Identifier{},
		FailedURLs:  []string{},
	}
}

// RecordSuccess appends identifiers discovered for a URL and updates
// the stats counters.
func (r *ExtractionResult) RecordSuccess(ids []Identifier) {
	r.Identifiers = append(r.Identifiers, ids...)
	r.Stats.SuccessfulExtractions++
	for _, id := range ids {
		r.countType(id.Type)
	}
}

// RecordFailure marks a URL as having produced no identifiers.
func (r *ExtractionResult) RecordFailure(url string) {
	r.FailedURLs = append(r.FailedURLs, url)
	r.Stats.FailedExtractions++
}

// Recover moves a previously failed URL to the successful side,
// appending the identifiers found for it in a later phase. The URL is
// removed from FailedURLs exactly once; a URL not currently failed is
// ignored.
func (r *ExtractionResult) Recover(url string, ids []Identifier) {
	removed := false
	kept := r.FailedURLs[:0]
	for _, u := range r.FailedURLs {
		if !removed && u == url {
			removed = true
			continue
		}
		kept = append(kept, u)
	}
	r.FailedURLs = kept
	if !removed {
		return
	}

	r.Identifiers = append(r.Identifiers, ids...)
	r.Stats.SuccessfulExtractions++
	r.Stats.FailedExtractions--
	for _, id := range ids {
		r.countType(id.Type)
	}
}

// HasFailed reports whether the URL is currently in the failed set.
func (r *ExtractionResult) HasFailed(url string) bool {
	for _, u := range r.FailedURLs {
		if u == url {
			return true
		}
	}
	return false
}

func (r *ExtractionResult) countType(t Type) {
	switch t {
	case DOI:
		r.Stats.DOICount++
	case PMID:
		r.Stats.PMIDCount++
	case PMC:
		r.Stats.PMCCount++
	}
}
