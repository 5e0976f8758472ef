package route

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/headwaters-lab/musselsim/internal/model"
	"github.com/headwaters-lab/musselsim/internal/store"
)

// StoreProvider serves costs from the persisted route cache. Pairs that
// were never retrieved, or whose cached distance is non-positive, report
// ErrCostUnavailable so the caller can exclude the pair or fall back.
type StoreProvider struct {
	store store.Store
}

// NewStoreProvider wraps a route cache.
func NewStoreProvider(s store.Store) *StoreProvider {
	return &StoreProvider{store: s}
}

// Cost implements Provider.
func (p *StoreProvider) Cost(ctx context.Context, origin model.County, dest model.Site) (float64, error) {
	r, err := p.store.GetRoute(ctx, origin.Name, dest.Name)
	if err != nil {
		return 0, err
	}
	if r == nil {
		return 0, eris.Wrapf(ErrCostUnavailable, "no cached route (%s, %s)", origin.Name, dest.Name)
	}
	if r.DistanceKm <= 0 {
		return 0, eris.Wrapf(ErrCostUnavailable, "cached route (%s, %s) has distance %g km",
			origin.Name, dest.Name, r.DistanceKm)
	}
	return r.DistanceKm, nil
}
