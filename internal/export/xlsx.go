package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/headwaters-lab/musselsim/internal/aggregate"
	"github.com/headwaters-lab/musselsim/internal/model"
)

// WriteWorkbook writes both result views as one xlsx workbook: a
// "Monte Carlo" sheet of per-trial yearly infested-site counts and a
// "Sites" sheet of per-site mean fractions.
func WriteWorkbook(path string, frame *model.Frame, summary *aggregate.Summary, years int) error {
	f := xlsx.NewFile()

	mc, err := f.AddSheet("Monte Carlo")
	if err != nil {
		return eris.Wrap(err, "export: add Monte Carlo sheet")
	}
	header := mc.AddRow()
	header.AddCell().Value = "Trial"
	for y := 1; y <= years; y++ {
		header.AddCell().Value = fmt.Sprintf("Year %d", y)
	}
	for n, totals := range summary.TrialTotals {
		row := mc.AddRow()
		row.AddCell().SetInt(n + 1)
		for _, count := range totals {
			row.AddCell().SetInt(count)
		}
	}

	sites, err := f.AddSheet("Sites")
	if err != nil {
		return eris.Wrap(err, "export: add Sites sheet")
	}
	header = sites.AddRow()
	for _, label := range []string{"Name", "Latitude", "Longitude", "Habitability", "Initial"} {
		header.AddCell().Value = label
	}
	for y := range summary.Fractions {
		header.AddCell().Value = fmt.Sprintf("Year %d", y+1)
	}
	for j, site := range frame.Sites() {
		row := sites.AddRow()
		row.AddCell().Value = site.Name
		row.AddCell().SetFloat(site.Lat)
		row.AddCell().SetFloat(site.Lon)
		row.AddCell().SetFloat(*site.Habitability)
		row.AddCell().SetBool(site.InitiallyInfested)
		for y := range summary.Fractions {
			row.AddCell().SetFloat(summary.Fractions[y][j])
		}
	}
	for _, site := range frame.Excluded() {
		row := sites.AddRow()
		row.AddCell().Value = site.Name
		row.AddCell().SetFloat(site.Lat)
		row.AddCell().SetFloat(site.Lon)
		row.AddCell().Value = "excluded"
		row.AddCell().SetBool(site.InitiallyInfested)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}
