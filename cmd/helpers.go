package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/headwaters-lab/musselsim/internal/input"
	"github.com/headwaters-lab/musselsim/internal/model"
	"github.com/headwaters-lab/musselsim/internal/route"
	"github.com/headwaters-lab/musselsim/internal/shape"
	"github.com/headwaters-lab/musselsim/internal/store"
)

// openStore opens the configured database backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DSN)
	default:
		st, err = store.NewSQLite(cfg.Store.DSN)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// loadFrame reads the county and site files and assembles the simulation
// arena. A sites path ending in .shp is read as a point shapefile.
func loadFrame(sitesPath, countiesPath string) (*model.Frame, error) {
	counties, err := input.LoadCounties(countiesPath)
	if err != nil {
		return nil, err
	}

	var sites []model.Site
	if strings.HasSuffix(strings.ToLower(sitesPath), ".shp") {
		sites, err = shape.ImportSites(sitesPath, cfg.Sim.PHThreshold, cfg.Sim.CalciumThreshold)
	} else {
		sites, err = input.LoadSites(sitesPath, cfg.Sim.PHThreshold, cfg.Sim.CalciumThreshold)
	}
	if err != nil {
		return nil, err
	}

	return model.NewFrame(counties, sites)
}

// costProvider builds the travel-cost chain: cached road routes first, then
// great-circle distance for pairs the cache has no route for, unless the
// fallback is disabled.
func costProvider(st store.Store) (route.Provider, error) {
	cached := route.NewStoreProvider(st)
	switch cfg.Routes.Fallback {
	case "none":
		return cached, nil
	case "greatcircle":
		return route.Fallback(cached, route.GreatCircle{}), nil
	default:
		return nil, eris.Errorf("unknown routes.fallback %q", cfg.Routes.Fallback)
	}
}
