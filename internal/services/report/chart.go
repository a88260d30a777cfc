package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/vire-valuation/internal/common"
	"github.com/bobmcallan/vire-valuation/internal/models"
)

// RenderProjectionChart renders the projected FCF (solid) and its present
// value (dashed) by forecast year as PNG bytes.
func RenderProjectionChart(rows []models.ProjectionRow) ([]byte, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("need at least 2 projection years, got %d", len(rows))
	}

	years := make([]float64, len(rows))
	fcf := make([]float64, len(rows))
	pv := make([]float64, len(rows))
	for i, r := range rows {
		years[i] = float64(r.Year)
		fcf[i] = r.FCF
		pv[i] = r.PVFCF
	}

	fcfSeries := chart.ContinuousSeries{
		Name: "Projected FCF",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: years,
		YValues: fcf,
	}

	pvSeries := chart.ContinuousSeries{
		Name: "PV of FCF",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: years,
		YValues: pv,
	}

	graph := chart.Chart{
		Title:  "DCF Projection",
		Width:  720,
		Height: 360,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("Y%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return common.FormatNumber(models.Some(f))
				}
				return ""
			},
		},
		Series: []chart.Series{fcfSeries, pvSeries},
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
