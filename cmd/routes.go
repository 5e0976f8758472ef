package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/shape"
	"github.com/headwaters-lab/musselsim/internal/store"
	"github.com/headwaters-lab/musselsim/pkg/ors"
)

var (
	routesSitesPath    string
	routesCountiesPath string
	routesShapefile    string
	routesRefresh      bool
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Retrieve and cache road routes for every county-site pair",
	Long:  "Queries the OpenRouteService directions API for each county-site pair not already cached. Each query costs API quota, so cached pairs are skipped unless --refresh is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		frame, err := loadFrame(routesSitesPath, routesCountiesPath)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := ors.NewClient(cfg.Routes.APIKey,
			ors.WithBaseURL(cfg.Routes.BaseURL),
			ors.WithProfile(cfg.Routes.Profile),
			ors.WithRateLimit(cfg.Routes.RPS),
		)
		if err != nil {
			return err
		}

		log := zap.L().With(zap.String("component", "routes"))
		var fetched, cached, failed int
		for _, county := range frame.Counties() {
			for _, site := range frame.Sites() {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				if !routesRefresh {
					existing, getErr := st.GetRoute(ctx, county.Name, site.Name)
					if getErr != nil {
						return getErr
					}
					if existing != nil {
						cached++
						continue
					}
				}

				r, dirErr := client.Directions(ctx,
					ors.LatLon{Lat: county.Lat, Lon: county.Lon},
					ors.LatLon{Lat: site.Lat, Lon: site.Lon},
				)
				if dirErr != nil {
					log.Warn("route retrieval failed",
						zap.String("county", county.Name),
						zap.String("site", site.Name),
						zap.Error(dirErr),
					)
					failed++
					continue
				}

				if err := st.UpsertRoute(ctx, store.Route{
					County:      county.Name,
					Site:        site.Name,
					DistanceKm:  r.DistanceKm,
					Geometry:    r.Geometry,
					RetrievedAt: time.Now().UTC(),
				}); err != nil {
					return err
				}
				fetched++
			}
		}

		log.Info("route sweep complete",
			zap.Int("pairs", len(frame.Counties())*len(frame.Sites())),
			zap.Int("fetched", fetched),
			zap.Int("cached", cached),
			zap.Int("failed", failed),
		)

		if routesShapefile != "" {
			all, err := st.ListRoutes(ctx)
			if err != nil {
				return err
			}
			if _, err := shape.ExportRoutes(routesShapefile, all); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	routesCmd.Flags().StringVar(&routesSitesPath, "sites", "", "site file (TSV/CSV chemistry readings, or a point shapefile)")
	routesCmd.Flags().StringVar(&routesCountiesPath, "counties", "", "county file (TSV/CSV)")
	routesCmd.Flags().StringVar(&routesShapefile, "shapefile", "", "also export cached routes as a PolyLine shapefile")
	routesCmd.Flags().BoolVar(&routesRefresh, "refresh", false, "re-fetch pairs that are already cached")
	routesCmd.MarkFlagRequired("sites")
	routesCmd.MarkFlagRequired("counties")
	rootCmd.AddCommand(routesCmd)
}
