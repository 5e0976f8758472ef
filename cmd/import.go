package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/model"
	"github.com/headwaters-lab/musselsim/internal/shape"
)

var (
	importShapefile string
	importOut       string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Convert a point shapefile of sites to the site TSV layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, err := shape.ImportSites(importShapefile, cfg.Sim.PHThreshold, cfg.Sim.CalciumThreshold)
		if err != nil {
			return err
		}

		var b strings.Builder
		b.WriteString("Name\tLatitude\tLongitude\tDate\tParameter\tValue\tAttractiveness\tInfested\n")
		for _, s := range sites {
			writeSiteRows(&b, s)
		}

		if err := os.WriteFile(importOut, []byte(b.String()), 0o644); err != nil {
			return eris.Wrapf(err, "write %s", importOut)
		}

		zap.L().Info("shapefile imported",
			zap.String("shapefile", importShapefile),
			zap.String("out", importOut),
			zap.Int("sites", len(sites)),
		)
		return nil
	},
}

// writeSiteRows emits one reading row per chemistry parameter the shapefile
// carried, or a single blank-reading row so the site still appears (and gets
// reported as excluded) when it carried none.
func writeSiteRows(b *strings.Builder, s model.Site) {
	infested := "0"
	if s.InitiallyInfested {
		infested = "1"
	}
	row := func(param string, value *float64) {
		fmt.Fprintf(b, "%s\t%g\t%g\t", s.Name, s.Lat, s.Lon)
		if value != nil {
			fmt.Fprintf(b, "\t%s\t%g", param, *value)
		} else {
			b.WriteString("\t\t")
		}
		fmt.Fprintf(b, "\t%d\t%s\n", s.Attractiveness, infested)
	}

	if s.PH == nil && s.Calcium == nil {
		row("", nil)
		return
	}
	if s.PH != nil {
		row("ph", s.PH)
	}
	if s.Calcium != nil {
		row("calcium", s.Calcium)
	}
}

func init() {
	importCmd.Flags().StringVar(&importShapefile, "shapefile", "", "point shapefile of sites")
	importCmd.Flags().StringVar(&importOut, "out", "sites.tsv", "output TSV path")
	importCmd.MarkFlagRequired("shapefile")
	rootCmd.AddCommand(importCmd)
}
