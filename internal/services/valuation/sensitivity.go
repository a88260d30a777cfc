package valuation

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/vire-valuation/internal/models"
)

// Sensitivity values every (wacc, growth) pair. Rows follow waccs and columns
// follow growths in input order. A pair whose valuation fails is missing;
// the grid itself never fails.
func Sensitivity(fcf, shares, netDebt models.Num, waccs, growths []float64, tg models.Num, years int) *models.SensitivityGrid {
	grid := &models.SensitivityGrid{
		WACCs:          make([]float64, len(waccs)),
		Growths:        make([]float64, len(growths)),
		Cells:          make([][]models.Num, len(waccs)),
		TerminalGrowth: NormalizeRate(tg).Or(0),
		Years:          years,
	}
	for i, w := range waccs {
		grid.WACCs[i] = normalize(w)
	}
	for j, g := range growths {
		grid.Growths[j] = normalize(g)
	}

	// Each row writes only its own slice. Rows never return an error.
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range grid.WACCs {
		eg.Go(func() error {
			row := make([]models.Num, len(grid.Growths))
			for j, g := range grid.Growths {
				v, err := Value(Input{
					FCF:            fcf,
					Shares:         shares,
					NetDebt:        netDebt,
					WACC:           models.Some(grid.WACCs[i]),
					Growth:         models.Some(g),
					TerminalGrowth: tg,
					Years:          years,
				})
				if err != nil {
					row[j] = models.Missing
					continue
				}
				row[j] = models.Some(v.PerShare)
			}
			grid.Cells[i] = row
			return nil
		})
	}
	eg.Wait()

	return grid
}
