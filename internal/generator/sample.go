package generator

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

// SampleGenerator returns catalog samples without leaving the process.
// Types without a sample get a short placeholder naming the repository.
type SampleGenerator struct {
	catalog *catalog.Catalog
	delay   time.Duration
}

// NewSample creates an offline provider.
func NewSample(cat *catalog.Catalog) *SampleGenerator {
	return &SampleGenerator{catalog: cat}
}

// WithDelay makes every call wait d before answering, honoring cancellation.
func (g *SampleGenerator) WithDelay(d time.Duration) *SampleGenerator {
	g.delay = d
	return g
}

// Name returns "sample".
func (g *SampleGenerator) Name() string { return "sample" }

// Generate returns one body per id.
func (g *SampleGenerator) Generate(ctx context.Context, ref reference.Reference, typeIDs []string) (map[string]string, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	out := make(map[string]string, len(typeIDs))
	for _, id := range typeIDs {
		docType, err := g.catalog.GetType(id)
		if err != nil {
			return nil, err
		}
		if body, ok := g.catalog.Sample(id); ok {
			out[id] = body
			continue
		}
		out[id] = fmt.Sprintf("# %s\n\n%s for `%s`.\n", docType.Label, docType.Description, ref.FullName())
	}
	return out, nil
}
