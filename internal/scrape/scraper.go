// Package scrape implements Phase 2a extraction: fetching a URL's HTML
// and searching citation metadata tags, then publisher meta tags, then
// body text for identifier patterns not visible in the URL itself.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

const (
	// DefaultMinInterval is the default minimum delay between
	// consecutive page fetches. Publishers throttle or block scrapers
	// that hit them faster.
	DefaultMinInterval = 1 * time.Second

	// DefaultTimeout is the default per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a page is read.
	maxBodyBytes = 4 << 20

	defaultUserAgent = "url2ref/1.0 (academic identifier extraction)"
)

// Baseline confidences per source tier. Structured citation metadata
// is far more trustworthy than a token found in page text.
const (
	confidenceCitationMeta = 0.90
	confidenceMetaTag      = 0.85
	confidenceBodyText     = 0.70
)

// ErrBadStatus indicates the server answered with a non-2xx status.
var ErrBadStatus = errors.New("unexpected HTTP status")

// Scraper fetches pages and extracts identifiers from their HTML. All
// fetches share one rate limiter, so concurrent callers still observe
// the minimum inter-request interval.
type Scraper struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Scraper) {
		s.httpClient = hc
	}
}

// WithMinInterval sets the minimum delay between consecutive fetches.
// Non-positive values are ignored.
func WithMinInterval(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithUserAgent sets the User-Agent header for fetches.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		s.userAgent = ua
	}
}

// NewScraper creates a rate-limited page scraper.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractFromURL fetches the page and searches it for identifiers.
// Source tiers are tried in priority order and the first tier that
// yields anything wins: citation_* metadata, then other publisher meta
// tags, then free-text search over the body. A fetch failure or an
// empty page both surface as an error for the caller to downgrade to a
// parse-miss.
func (s *Scraper) ExtractFromURL(ctx context.Context, rawURL string) ([]identifier.Identifier, error) {
	body, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	metas := parseMetaTags(body)

	if ids := fromCitationMeta(metas, rawURL); len(ids) > 0 {
		return ids, nil
	}
	if ids := fromPublisherMeta(metas, rawURL); len(ids) > 0 {
		return ids, nil
	}
	if ids := identifier.FindInText(body, rawURL, confidenceBodyText); len(ids) > 0 {
		return ids, nil
	}

	return nil, nil
}

// fetch retrieves the page body, honoring the shared rate limiter.
func (s *Scraper) fetch(ctx context.Context, rawURL string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading page body: %w", err)
	}
	return string(data), nil
}

// metaTag is one <meta name/property content> pair.
type metaTag struct {
	name    string // lower-cased name or property attribute
	content string
}

// parseMetaTags walks the document and collects meta tags. Parse
// errors are tolerated: html.Parse repairs what it can.
func parseMetaTags(body string) []metaTag {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var metas []metaTag
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "name", "property":
					if name == "" {
						name = strings.ToLower(attr.Val)
					}
				case "content":
					content = attr.Val
				}
			}
			if name != "" && content != "" {
				metas = append(metas, metaTag{name: name, content: content})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return metas
}

// citationMetaNames maps Highwire citation tag names to identifier
// types. These are the tags Google Scholar indexes, emitted by most
// journal platforms.
var citationMetaNames = map[string]identifier.Type{
	"citation_doi":    identifier.DOI,
	"citation_pmid":   identifier.PMID,
	"citation_pmcid":  identifier.PMC,
	"citation_pmc_id": identifier.PMC,
}

// fromCitationMeta extracts identifiers from citation_* tags.
func fromCitationMeta(metas []metaTag, sourceURL string) []identifier.Identifier {
	var ids []identifier.Identifier
	seen := make(map[string]bool)
	for _, m := range metas {
		t, ok := citationMetaNames[m.name]
		if !ok {
			continue
		}
		value := normalizeMetaValue(t, m.content)
		if value == "" || seen[string(t)+"\x00"+value] {
			continue
		}
		seen[string(t)+"\x00"+value] = true
		ids = append(ids, identifier.Identifier{
			Type:       t,
			Value:      value,
			Confidence: confidenceCitationMeta,
			SourceURL:  sourceURL,
		})
	}
	return ids
}

// publisherMetaNames are secondary tag names used by repository and
// publisher platforms. Their content is freer-form than citation_*
// tags, so it goes through the token search rather than a direct map.
var publisherMetaNames = map[string]bool{
	"dc.identifier":        true,
	"dc.identifier.doi":    true,
	"dcterms.identifier":   true,
	"prism.doi":            true,
	"bepress_citation_doi": true,
	"eprints.id_number":    true,
}

// fromPublisherMeta extracts identifiers from secondary meta tags.
func fromPublisherMeta(metas []metaTag, sourceURL string) []identifier.Identifier {
	var buf strings.Builder
	for _, m := range metas {
		if publisherMetaNames[m.name] {
			buf.WriteString(m.content)
			buf.WriteString("\n")
		}
	}
	if buf.Len() == 0 {
		return nil
	}
	return identifier.FindInText(buf.String(), sourceURL, confidenceMetaTag)
}

// normalizeMetaValue normalizes a citation tag value for its type,
// returning "" when the content does not survive normalization.
func normalizeMetaValue(t identifier.Type, content string) string {
	switch t {
	case identifier.DOI:
		doi := identifier.NormalizeDOI(content)
		if !identifier.IsValidDOI(doi) {
			return ""
		}
		return doi
	case identifier.PMID:
		pmid := identifier.NormalizePMID(content)
		for _, r := range pmid {
			if r < '0' || r > '9' {
				return ""
			}
		}
		if pmid == "" {
			return ""
		}
		return pmid
	case identifier.PMC:
		return identifier.NormalizePMC(content)
	}
	return ""
}
