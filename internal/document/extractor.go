// Package document implements Phase 2b extraction: fetching a direct
// document (PDF) link, extracting its text, and searching it for
// identifiers, with a text-reasoning capability as the last resort.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/time/rate"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

const (
	// DefaultMinInterval is the default minimum delay between document
	// fetches. More conservative than page scraping: document fetch
	// and parsing are heavier on both ends.
	DefaultMinInterval = 2 * time.Second

	// DefaultTimeout is the default per-request HTTP timeout.
	DefaultTimeout = 60 * time.Second

	// maxDocumentBytes caps the size of a fetched document.
	maxDocumentBytes = 32 << 20

	// maxPages bounds text extraction. Identifiers almost always
	// appear on the first page.
	maxPages = 5

	// maxReaderChars bounds how much extracted text is handed to the
	// text-reasoning capability.
	maxReaderChars = 8000
)

// Baseline confidences: a deterministic token match in document text
// beats a probabilistic reasoning-capability answer.
const (
	confidenceDocumentText = 0.80
	confidenceReader       = 0.60
)

// ErrBadStatus indicates the server answered with a non-2xx status.
var ErrBadStatus = errors.New("unexpected HTTP status")

// TextReader is the text-reasoning capability used when pattern search
// over the document text finds nothing. The answer is free text and
// must be parsed defensively.
type TextReader interface {
	ReadIdentifiers(ctx context.Context, text string) (string, error)
}

// Extractor fetches documents and extracts identifiers from their
// text. All fetches share one rate limiter.
type Extractor struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	reader     TextReader
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Extractor) {
		e.httpClient = hc
	}
}

// WithMinInterval sets the minimum delay between consecutive fetches.
// Non-positive values are ignored.
func WithMinInterval(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithTextReader sets the text-reasoning fallback. Without one, the
// extractor stops after pattern search.
func WithTextReader(r TextReader) Option {
	return func(e *Extractor) {
		e.reader = r
	}
}

// NewExtractor creates a rate-limited document extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsDocumentURL classifies a URL as a direct document (PDF) link. Pure
// string predicate, used by the orchestrator to route failed URLs.
func IsDocumentURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	path := strings.ToLower(u.Path)
	if strings.HasSuffix(path, ".pdf") {
		return true
	}

	// Repository download links hide the extension in query values,
	// e.g. bitstream handles with ?sequence=1.
	for _, values := range u.Query() {
		for _, v := range values {
			if strings.HasSuffix(strings.ToLower(v), ".pdf") {
				return true
			}
		}
	}
	return false
}

// ExtractFromURL fetches the document, extracts its text, and searches
// it for identifiers. The deterministic token search runs first; the
// text-reasoning capability is consulted only when it finds nothing.
// Every failure surfaces as an error for the caller to downgrade to a
// parse-miss.
func (e *Extractor) ExtractFromURL(ctx context.Context, rawURL string) ([]identifier.Identifier, error) {
	data, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	text, err := extractText(data, maxPages)
	if err != nil {
		return nil, fmt.Errorf("extracting document text: %w", err)
	}

	if ids := identifier.FindInText(text, rawURL, confidenceDocumentText); len(ids) > 0 {
		return ids, nil
	}

	if e.reader == nil {
		return nil, nil
	}
	return e.readWithCapability(ctx, text, rawURL)
}

// fetch retrieves the document bytes, honoring the shared rate limiter.
func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("reading document body: %w", err)
	}
	return data, nil
}

// extractText extracts plain text from the first pages of a PDF.
func extractText(data []byte, pages int) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	if pages <= 0 || pages > reader.NumPage() {
		pages = reader.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// readWithCapability asks the text-reasoning capability to locate an
// identifier in the extracted text and parses its free-text answer.
// Answers with no recognizable identifier yield an empty result.
func (e *Extractor) readWithCapability(ctx context.Context, text, sourceURL string) ([]identifier.Identifier, error) {
	if len(text) > maxReaderChars {
		text = text[:maxReaderChars]
	}

	answer, err := e.reader.ReadIdentifiers(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("text reader: %w", err)
	}

	return parseReaderAnswer(answer, sourceURL), nil
}

// parseReaderAnswer parses the capability's free-text answer back into
// typed identifiers. A "NONE" answer, prose, or garbage all degrade to
// an empty slice.
func parseReaderAnswer(answer, sourceURL string) []identifier.Identifier {
	answer = strings.TrimSpace(answer)
	if answer == "" || strings.EqualFold(answer, "none") {
		return nil
	}
	return identifier.FindInText(answer, sourceURL, confidenceReader)
}
