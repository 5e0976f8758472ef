// Package route supplies travel costs between counties and sites. The
// simulation core only ever sees scalar costs; where they come from (cached
// road routes, great-circle fallback) is a provider concern.
package route

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/headwaters-lab/musselsim/internal/model"
)

// ErrCostUnavailable reports that no cost could be produced for a single
// (county, site) pair. The pair is excluded from distribution; the rest of
// the matrix is unaffected.
var ErrCostUnavailable = eris.New("route: cost unavailable")

// Provider yields a positive travel cost for a (county, site) pair, or
// ErrCostUnavailable for that pair alone.
type Provider interface {
	Cost(ctx context.Context, origin model.County, dest model.Site) (float64, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, origin model.County, dest model.Site) (float64, error)

// Cost implements Provider.
func (f ProviderFunc) Cost(ctx context.Context, origin model.County, dest model.Site) (float64, error) {
	return f(ctx, origin, dest)
}

// Fallback returns a Provider that consults primary first and falls back to
// secondary only when the primary reports ErrCostUnavailable. Any other
// primary error is returned as-is.
func Fallback(primary, secondary Provider) Provider {
	return ProviderFunc(func(ctx context.Context, origin model.County, dest model.Site) (float64, error) {
		c, err := primary.Cost(ctx, origin, dest)
		if err == nil {
			return c, nil
		}
		if eris.Is(err, ErrCostUnavailable) {
			return secondary.Cost(ctx, origin, dest)
		}
		return 0, err
	})
}
