package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

// stubSource is a canned validation source.
type stubSource struct {
	name  string
	score float64
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Check(ctx context.Context, t identifier.Type, value string) (float64, error) {
	s.calls++
	return s.score, s.err
}

func TestCompositeConfidenceMaxMerge(t *testing.T) {
	tests := []struct {
		name    string
		sources []Source
		want    float64
	}{
		{
			name: "maximum wins",
			sources: []Source{
				&stubSource{name: "a", score: 0.6},
				&stubSource{name: "b", score: 0.95},
				&stubSource{name: "c", score: 0.8},
			},
			want: 0.95,
		},
		{
			name: "failed source excluded not zeroed",
			sources: []Source{
				&stubSource{name: "a", score: 0.9},
				&stubSource{name: "b", err: ErrNetworkError},
			},
			want: 0.9,
		},
		{
			name: "unsupported source excluded",
			sources: []Source{
				&stubSource{name: "a", err: ErrUnsupportedType},
				&stubSource{name: "b", score: 0.7},
			},
			want: 0.7,
		},
		{
			name: "all sources fail",
			sources: []Source{
				&stubSource{name: "a", err: ErrNotFound},
				&stubSource{name: "b", err: errors.New("boom")},
			},
			want: 0,
		},
		{
			name:    "no sources configured",
			sources: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposite(tt.sources...)
			got, err := c.Confidence(context.Background(), identifier.DOI, "10.1000/x")
			if err != nil {
				t.Fatalf("Confidence() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompositeValidate(t *testing.T) {
	confirmed := NewComposite(&stubSource{name: "a", score: 0.9})
	ok, err := confirmed.Validate(context.Background(), identifier.PMID, "37674083")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !ok {
		t.Error("Validate() = false with a confirming source")
	}

	allFailed := NewComposite(
		&stubSource{name: "a", err: ErrNotFound},
		&stubSource{name: "b", err: ErrNetworkError},
	)
	ok, err = allFailed.Validate(context.Background(), identifier.PMID, "37674083")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if ok {
		t.Error("Validate() = true with all sources failing")
	}
}

func TestCompositeInvalidType(t *testing.T) {
	c := NewComposite(&stubSource{name: "a", score: 0.9})

	if _, err := c.Confidence(context.Background(), identifier.Type("isbn"), "x"); err == nil {
		t.Error("Confidence() error = nil for invalid type")
	}
	if _, err := c.Validate(context.Background(), identifier.Type(""), "x"); err == nil {
		t.Error("Validate() error = nil for invalid type")
	}
}

func TestCompositeQueriesEverySource(t *testing.T) {
	// Even after one confirmation the remaining sources still run: the
	// merge takes the max over all responders.
	a := &stubSource{name: "a", score: 0.9}
	b := &stubSource{name: "b", score: 0.95}
	c := NewComposite(a, b)

	got, err := c.Confidence(context.Background(), identifier.DOI, "10.1000/x")
	if err != nil {
		t.Fatalf("Confidence() error = %v", err)
	}
	if got != 0.95 {
		t.Errorf("Confidence() = %v, want 0.95", got)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", a.calls, b.calls)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", ErrNotFound, true},
		{"wrapped sentinel", errors.Join(errors.New("ctx"), ErrNotFound), true},
		{"api 404", &APIError{Source: "ncbi", StatusCode: 404}, true},
		{"api 500", &APIError{Source: "ncbi", StatusCode: 500}, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
