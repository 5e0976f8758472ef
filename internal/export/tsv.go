// Package export writes simulation results in the tab-separated layouts
// the field crews' spreadsheets expect, plus an xlsx workbook carrying the
// same two views.
package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/headwaters-lab/musselsim/internal/aggregate"
	"github.com/headwaters-lab/musselsim/internal/model"
)

// WriteMonteCarloTSV writes the per-trial view: one row per trial, one
// column per year, each cell the number of infested sites at year end.
func WriteMonteCarloTSV(path string, summary *aggregate.Summary, years int) error {
	var b strings.Builder

	b.WriteString("Year:")
	for y := 1; y <= years; y++ {
		b.WriteByte('\t')
		b.WriteString(strconv.Itoa(y))
	}
	b.WriteByte('\n')

	for n, totals := range summary.TrialTotals {
		fmt.Fprintf(&b, "Iteration %d:", n+1)
		for _, count := range totals {
			b.WriteByte('\t')
			b.WriteString(strconv.Itoa(count))
		}
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// WriteSiteTSV writes the per-site view: site metadata followed by the
// mean infestation fraction per year, averaged over all trials.
func WriteSiteTSV(path string, frame *model.Frame, summary *aggregate.Summary) error {
	var b strings.Builder

	b.WriteString("Name\tLatitude\tLongitude\tHabitability\tInitial")
	for y := range summary.Fractions {
		fmt.Fprintf(&b, "\tYear %d", y+1)
	}
	fmt.Fprintf(&b, "\nResults are averages over %d repeated trials.\n", summary.Trials)

	for j, site := range frame.Sites() {
		fmt.Fprintf(&b, "%s\t%g\t%g\t%g\t%t",
			site.Name, site.Lat, site.Lon, *site.Habitability, site.InitiallyInfested)
		for y := range summary.Fractions {
			fmt.Fprintf(&b, "\t%g", summary.Fractions[y][j])
		}
		b.WriteByte('\n')
	}

	for _, site := range frame.Excluded() {
		fmt.Fprintf(&b, "%s\t%g\t%g\texcluded\t%t\n",
			site.Name, site.Lat, site.Lon, site.InitiallyInfested)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
