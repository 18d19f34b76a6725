package validate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

const (
	// CrossrefBaseURL is the Crossref REST API base URL.
	CrossrefBaseURL = "https://api.crossref.org"

	// Crossref asks polite clients to stay under ~1 request per second.
	crossrefMinInterval    = 1 * time.Second
	crossrefDefaultTimeout = 30 * time.Second
	crossrefConfidence     = 0.90
)

// Crossref validates DOIs against the Crossref works registry. It is
// the bibliographic-database-style source; it cannot validate PMID or
// PMC accessions.
type Crossref struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// CrossrefOption configures a Crossref source.
type CrossrefOption func(*Crossref)

// WithCrossrefBaseURL sets a custom base URL (for testing).
func WithCrossrefBaseURL(url string) CrossrefOption {
	return func(c *Crossref) {
		c.baseURL = url
	}
}

// WithCrossrefHTTPClient sets a custom HTTP client.
func WithCrossrefHTTPClient(hc *http.Client) CrossrefOption {
	return func(c *Crossref) {
		c.httpClient = hc
	}
}

// WithCrossrefMailto sets the contact address Crossref requests from
// polite-pool clients.
func WithCrossrefMailto(mailto string) CrossrefOption {
	return func(c *Crossref) {
		c.mailto = mailto
	}
}

// NewCrossref creates a Crossref validation source.
func NewCrossref(opts ...CrossrefOption) *Crossref {
	c := &Crossref{
		httpClient: &http.Client{Timeout: crossrefDefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(crossrefMinInterval), 1),
		baseURL:    CrossrefBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the source in composite reporting.
func (c *Crossref) Name() string {
	return "crossref"
}

// Check confirms a DOI exists in the Crossref registry. Non-DOI types
// are unsupported and contribute nothing to a composite.
func (c *Crossref) Check(ctx context.Context, t identifier.Type, value string) (float64, error) {
	if t != identifier.DOI {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + "/works/" + url.PathEscape(value)
	if c.mailto != "" {
		endpoint += "?mailto=" + url.QueryEscape(c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 404:
		return 0, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return 0, &APIError{
			Source:     c.Name(),
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	return crossrefConfidence, nil
}
