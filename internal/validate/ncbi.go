package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

const (
	// NCBIBaseURL is the E-utilities base URL.
	NCBIBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// ncbiRateLimit is 3 requests per second, the E-utilities limit
	// for unkeyed clients. An API key raises it to 10.
	ncbiRateLimit       = 3.0
	ncbiKeyedRateLimit  = 10.0
	ncbiDefaultTimeout  = 30 * time.Second
	ncbiConfidence      = 0.95
	ncbiMaxResponseSize = 1 << 20
)

// NCBI validates identifiers against the NCBI E-utilities: esummary
// for PMID and PMC accessions, esearch for DOIs indexed in PubMed. It
// is the authoritative registry-style source.
type NCBI struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// NCBIOption configures an NCBI source.
type NCBIOption func(*NCBI)

// WithNCBIAPIKey sets the E-utilities API key and raises the request
// rate accordingly.
func WithNCBIAPIKey(key string) NCBIOption {
	return func(n *NCBI) {
		n.apiKey = key
		if key != "" {
			n.limiter = rate.NewLimiter(rate.Limit(ncbiKeyedRateLimit), 1)
		}
	}
}

// WithNCBIBaseURL sets a custom base URL (for testing).
func WithNCBIBaseURL(url string) NCBIOption {
	return func(n *NCBI) {
		n.baseURL = url
	}
}

// WithNCBIHTTPClient sets a custom HTTP client.
func WithNCBIHTTPClient(hc *http.Client) NCBIOption {
	return func(n *NCBI) {
		n.httpClient = hc
	}
}

// NewNCBI creates an NCBI validation source.
func NewNCBI(opts ...NCBIOption) *NCBI {
	n := &NCBI{
		httpClient: &http.Client{Timeout: ncbiDefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(ncbiRateLimit), 1),
		baseURL:    NCBIBaseURL,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name identifies the source in composite reporting.
func (n *NCBI) Name() string {
	return "ncbi"
}

// Check confirms the identifier against E-utilities and returns the
// source confidence, or an error when the identifier is unknown or the
// service is unreachable.
func (n *NCBI) Check(ctx context.Context, t identifier.Type, value string) (float64, error) {
	switch t {
	case identifier.PMID:
		return n.checkSummary(ctx, "pubmed", value)
	case identifier.PMC:
		return n.checkSummary(ctx, "pmc", strings.TrimPrefix(strings.ToUpper(value), "PMC"))
	case identifier.DOI:
		return n.checkDOISearch(ctx, value)
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// checkSummary confirms a record exists via esummary.
func (n *NCBI) checkSummary(ctx context.Context, db, id string) (float64, error) {
	params := url.Values{
		"db":      {db},
		"id":      {id},
		"retmode": {"json"},
	}

	raw, err := n.get(ctx, "/esummary.fcgi", params)
	if err != nil {
		return 0, err
	}

	var summary struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &summary); err != nil {
		return 0, fmt.Errorf("%w: parsing esummary: %v", ErrInvalidResponse, err)
	}

	record, ok := summary.Result[id]
	if !ok {
		return 0, ErrNotFound
	}

	// A known uid still carries an error field when the record does
	// not exist.
	var fields struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(record, &fields); err == nil && fields.Error != "" {
		return 0, ErrNotFound
	}

	return ncbiConfidence, nil
}

// checkDOISearch confirms a DOI is indexed in PubMed via esearch.
func (n *NCBI) checkDOISearch(ctx context.Context, doi string) (float64, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {fmt.Sprintf("%q[DOI]", doi)},
		"retmode": {"json"},
	}

	raw, err := n.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return 0, err
	}

	var search struct {
		ESearchResult struct {
			Count string `json:"count"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(raw, &search); err != nil {
		return 0, fmt.Errorf("%w: parsing esearch: %v", ErrInvalidResponse, err)
	}

	if search.ESearchResult.Count == "" || search.ESearchResult.Count == "0" {
		return 0, ErrNotFound
	}
	return ncbiConfidence, nil
}

// get executes a rate-limited E-utilities request.
func (n *NCBI) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if n.apiKey != "" {
		params.Set("api_key", n.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Source:     n.Name(),
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, ncbiMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}
