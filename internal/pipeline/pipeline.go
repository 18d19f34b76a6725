// Package pipeline sequences the extraction phases over a bibliography
// batch: Phase 1 pattern extraction across all URLs, optional
// validation-driven confidence refinement, and an optional Phase 2
// sweep that re-attempts failed URLs through page scraping or document
// extraction.
package pipeline

import (
	"context"
	"fmt"

	"github.com/Cellular-Semantics/url2ref/internal/document"
	"github.com/Cellular-Semantics/url2ref/internal/identifier"
	"github.com/Cellular-Semantics/url2ref/internal/pattern"
	"github.com/Cellular-Semantics/url2ref/internal/scrape"
	"github.com/Cellular-Semantics/url2ref/internal/validate"
)

// URLExtractor is a Phase 2 extraction capability. The two variants
// (page scraper and document extractor) are selected per URL by a pure
// classification predicate.
type URLExtractor interface {
	ExtractFromURL(ctx context.Context, url string) ([]identifier.Identifier, error)
}

// Options selects which optional pipeline stages run for a call.
type Options struct {
	UseWebScraping        bool // Phase 2 re-attempt of failed URLs
	UseNCBIValidation     bool // NCBI E-utilities confidence refinement
	UseCrossrefValidation bool // Crossref confidence refinement
}

// DefaultOptions mirrors the batch API defaults: scraping off, both
// validation sources on.
func DefaultOptions() Options {
	return Options{
		UseNCBIValidation:     true,
		UseCrossrefValidation: true,
	}
}

// Pipeline orchestrates extraction over bibliography URLs. Each batch
// call is self-contained; the pipeline holds only configuration and
// capability wiring, never per-batch state.
type Pipeline struct {
	patterns   *pattern.Extractor
	pages      URLExtractor
	documents  URLExtractor
	isDocument func(url string) bool
	ncbi       validate.Source
	crossref   validate.Source
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPatternExtractor replaces the Phase 1 extractor.
func WithPatternExtractor(e *pattern.Extractor) Option {
	return func(p *Pipeline) {
		p.patterns = e
	}
}

// WithPageExtractor replaces the Phase 2 page-scraping capability.
func WithPageExtractor(e URLExtractor) Option {
	return func(p *Pipeline) {
		p.pages = e
	}
}

// WithDocumentExtractor replaces the Phase 2 document capability.
func WithDocumentExtractor(e URLExtractor) Option {
	return func(p *Pipeline) {
		p.documents = e
	}
}

// WithDocumentClassifier replaces the document-vs-page predicate.
func WithDocumentClassifier(fn func(url string) bool) Option {
	return func(p *Pipeline) {
		p.isDocument = fn
	}
}

// WithNCBISource replaces the NCBI validation source.
func WithNCBISource(s validate.Source) Option {
	return func(p *Pipeline) {
		p.ncbi = s
	}
}

// WithCrossrefSource replaces the Crossref validation source.
func WithCrossrefSource(s validate.Source) Option {
	return func(p *Pipeline) {
		p.crossref = s
	}
}

// New creates a pipeline wired to the real extractors and validation
// sources. Options substitute any capability, which is how tests stub
// the network-facing pieces.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		patterns:   pattern.NewExtractor(),
		pages:      scrape.NewScraper(),
		documents:  document.NewExtractor(),
		isDocument: document.IsDocumentURL,
		ncbi:       validate.NewNCBI(),
		crossref:   validate.NewCrossref(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractFromBibliography runs the full pipeline over a batch of URLs.
// It always returns a result for well-formed input: per-URL transport
// failures are downgraded to parse-misses, never propagated.
func (p *Pipeline) ExtractFromBibliography(ctx context.Context, urls []string, opts Options) *identifier.ExtractionResult {
	// Phase 1: pattern extraction over every URL, unconditionally.
	result := p.patterns.ExtractFromURLs(urls)

	// Validation: raise confidence per the max-merge rule. Never adds
	// or removes identifiers or URLs.
	if opts.UseNCBIValidation || opts.UseCrossrefValidation {
		p.refineConfidence(ctx, result.Identifiers, opts)
	}

	// Phase 2: re-attempt failed URLs through content fetching.
	if opts.UseWebScraping && len(result.FailedURLs) > 0 {
		p.retryFailedURLs(ctx, result)
	}

	return result
}

// ExtractFromURL runs Phase 1 on a single URL, with optional
// validation-driven confidence refinement.
func (p *Pipeline) ExtractFromURL(ctx context.Context, url string, opts Options) []identifier.Identifier {
	ids := p.patterns.ExtractFromURL(url)
	if (opts.UseNCBIValidation || opts.UseCrossrefValidation) && len(ids) > 0 {
		p.refineConfidence(ctx, ids, opts)
	}
	return ids
}

// ValidationReport is the structured outcome of a single-identifier
// validation call.
type ValidationReport struct {
	Valid          bool    `json:"valid"`
	Confidence     float64 `json:"confidence"`
	IdentifierType string  `json:"identifier_type"`
	Value          string  `json:"value"`
}

// ValidateIdentifier validates one identifier against the enabled
// sources. An invalid identifier type is a programming error and fails
// immediately; service failures only lower the report to not-valid.
func (p *Pipeline) ValidateIdentifier(ctx context.Context, t identifier.Type, value string, opts Options) (*ValidationReport, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid identifier type: %q", t)
	}

	confidence, err := p.composite(opts).Confidence(ctx, t, value)
	if err != nil {
		return nil, err
	}

	return &ValidationReport{
		Valid:          confidence > 0,
		Confidence:     confidence,
		IdentifierType: t.String(),
		Value:          value,
	}, nil
}

// composite assembles the validator over the sources the options
// enable. With everything disabled the composite is empty and
// validation degrades to a no-op confidence update.
func (p *Pipeline) composite(opts Options) *validate.Composite {
	var sources []validate.Source
	if opts.UseNCBIValidation && p.ncbi != nil {
		sources = append(sources, p.ncbi)
	}
	if opts.UseCrossrefValidation && p.crossref != nil {
		sources = append(sources, p.crossref)
	}
	return validate.NewComposite(sources...)
}

// refineConfidence merges validator confidence into each identifier.
// MergeConfidence keeps the update monotone: validation can only raise
// a score.
func (p *Pipeline) refineConfidence(ctx context.Context, ids []identifier.Identifier, opts Options) {
	comp := p.composite(opts)
	for i := range ids {
		id := &ids[i]
		confidence, err := comp.Confidence(ctx, id.Type, id.Value)
		if err != nil {
			continue
		}
		id.MergeConfidence(confidence)
	}
}

// attempt is the outcome of one Phase 2 re-extraction. Failures are
// values here, not control flow: a single bad URL must not abort the
// batch.
type attempt struct {
	url string
	ids []identifier.Identifier
	err error
}

// retryFailedURLs runs the Phase 2 sweep. It takes a snapshot of the
// failed set before iterating, accumulates per-URL outcomes, and
// applies removals only after the sweep completes, so the set is never
// mutated mid-iteration.
func (p *Pipeline) retryFailedURLs(ctx context.Context, result *identifier.ExtractionResult) {
	snapshot := append([]string(nil), result.FailedURLs...)

	outcomes := make([]attempt, 0, len(snapshot))
	for _, url := range snapshot {
		outcomes = append(outcomes, p.attemptURL(ctx, url))
	}

	for _, o := range outcomes {
		if o.err != nil || len(o.ids) == 0 {
			continue // URL stays failed
		}
		result.Recover(o.url, o.ids)
	}
}

// attemptURL dispatches one failed URL to the document extractor or
// the page scraper based on the classification predicate.
func (p *Pipeline) attemptURL(ctx context.Context, url string) attempt {
	var (
		ids []identifier.Identifier
		err error
	)
	if p.isDocument(url) {
		ids, err = p.documents.ExtractFromURL(ctx, url)
	} else {
		ids, err = p.pages.ExtractFromURL(ctx, url)
	}
	return attempt{url: url, ids: ids, err: err}
}
