// Package validate refines identifier confidence after extraction by
// querying external bibliographic services. Each enabled source
// contributes its own confidence; the composite score is the maximum
// across sources that successfully responded.
package validate

import (
	"context"
	"fmt"

	"github.com/Cellular-Semantics/url2ref/internal/identifier"
)

// Source is one external validation service. Check returns the
// source's confidence contribution for a confirmed identifier, or an
// error when the source failed, cannot validate the type, or does not
// know the identifier.
type Source interface {
	Name() string
	Check(ctx context.Context, t identifier.Type, value string) (float64, error)
}

// Composite merges zero or more independent validation sources with a
// best-evidence-wins policy: one authoritative confirmation is enough,
// and a failed source contributes nothing rather than dragging the
// maximum down to zero.
type Composite struct {
	sources []Source
}

// NewComposite builds a composite over the given sources.
func NewComposite(sources ...Source) *Composite {
	return &Composite{sources: sources}
}

// Confidence returns the maximum confidence across sources that
// responded successfully. If every source fails, or none is
// configured, the confidence is 0. An invalid identifier type is a
// programming error and fails immediately.
func (c *Composite) Confidence(ctx context.Context, t identifier.Type, value string) (float64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("invalid identifier type: %q", t)
	}

	best := 0.0
	for _, source := range c.sources {
		score, err := source.Check(ctx, t, value)
		if err != nil {
			continue // failed sources are excluded from the max
		}
		if score > best {
			best = score
		}
	}
	return best, nil
}

// Validate reports whether any enabled source confirmed the
// identifier. False when all sources failed or none is configured.
func (c *Composite) Validate(ctx context.Context, t identifier.Type, value string) (bool, error) {
	score, err := c.Confidence(ctx, t, value)
	if err != nil {
		return false, err
	}
	return score > 0, nil
}
