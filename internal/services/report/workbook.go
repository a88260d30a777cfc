// Package report renders valuation results as spreadsheets and text summaries
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/vire-valuation/internal/common"
	"github.com/bobmcallan/vire-valuation/internal/interfaces"
	"github.com/bobmcallan/vire-valuation/internal/models"
)

// Sheet names in workbook order.
const (
	SheetIncome      = "Income"
	SheetBalance     = "Balance"
	SheetCashFlow    = "CashFlow"
	SheetSummary     = "Summary"
	SheetDCF         = "DCF"
	SheetDCFSummary  = "DCF_Summary"
	SheetSensitivity = "Sensitivity"
)

// SensitivityCorner labels the row and column axes of the sensitivity sheet.
const SensitivityCorner = `WACC \ 5Y_Growth`

// Writer builds xlsx workbooks for analyses
type Writer struct {
	logger *common.Logger
}

// NewWriter creates a workbook writer
func NewWriter(logger *common.Logger) *Writer {
	return &Writer{logger: logger}
}

// ReportName returns the file name for a report generated at t.
func ReportName(ticker string, t time.Time) string {
	if ticker == "" {
		ticker = "TICKER"
	}
	return fmt.Sprintf("%s_%s.xlsx", ticker, t.Format("2006-01-02_1504"))
}

// BuildWorkbook renders the statements, summary, DCF and sensitivity sheets.
// Valuation sheets are only written when a valuation succeeded.
func (w *Writer) BuildWorkbook(a *models.Analysis) ([]byte, error) {
	if a == nil || a.Metrics == nil {
		return nil, fmt.Errorf("analysis has no metrics")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetIncome); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}

	var income, balance, cashflow *models.StatementTable
	if a.Statements != nil {
		income, balance, cashflow = a.Statements.Income, a.Statements.Balance, a.Statements.CashFlow
	}

	steps := []sheetStep{
		{SheetIncome, statementWriter(income)},
		{SheetBalance, statementWriter(balance)},
		{SheetCashFlow, statementWriter(cashflow)},
		{SheetSummary, func(f *excelize.File, s string) error { return writeSummary(f, s, a) }},
	}
	if a.Valuation != nil {
		steps = append(steps,
			sheetStep{SheetDCF, func(f *excelize.File, s string) error { return w.writeDCF(f, s, a.Valuation) }},
			sheetStep{SheetDCFSummary, func(f *excelize.File, s string) error { return writeDCFSummary(f, s, a.Valuation) }},
		)
	}
	if a.Sensitivity != nil {
		steps = append(steps, sheetStep{SheetSensitivity, func(f *excelize.File, s string) error { return writeSensitivity(f, s, a.Sensitivity) }})
	}

	for _, step := range steps {
		if step.sheet != SheetIncome {
			if _, err := f.NewSheet(step.sheet); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", step.sheet, err)
			}
		}
		if err := step.write(f, step.sheet); err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", step.sheet, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStep struct {
	sheet string
	write func(*excelize.File, string) error
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// setNum writes a value, leaving the cell blank when missing.
func setNum(f *excelize.File, sheet string, col, row int, n models.Num) error {
	if !n.Valid {
		return nil
	}
	return f.SetCellValue(sheet, cell(col, row), n.Value)
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", cell(len(headers), 1), style)
}

// statementWriter writes labels down column A and one column per period.
// An empty table gets a single note.
func statementWriter(tbl *models.StatementTable) func(*excelize.File, string) error {
	return func(f *excelize.File, sheet string) error {
		if tbl.Empty() {
			if err := f.SetCellValue(sheet, "A1", "note"); err != nil {
				return err
			}
			return f.SetCellValue(sheet, "A2", "No data returned for "+sheet)
		}

		headers := make([]string, 0, len(tbl.Periods)+1)
		headers = append(headers, "")
		for _, p := range tbl.Periods {
			headers = append(headers, p.String())
		}
		if err := writeHeader(f, sheet, headers); err != nil {
			return err
		}

		for i, label := range tbl.Labels() {
			r := i + 2
			if err := f.SetCellValue(sheet, cell(1, r), label); err != nil {
				return err
			}
			for j, v := range tbl.Row(label) {
				if err := setNum(f, sheet, j+2, r, v); err != nil {
					return err
				}
			}
		}
		return f.SetColWidth(sheet, "A", "A", 48)
	}
}

func writeSummary(f *excelize.File, sheet string, a *models.Analysis) error {
	fields := a.Metrics.Flatten()
	if a.Valuation != nil {
		fields = append(fields, models.SummaryField{Key: "dcf_per_share", Value: models.Some(a.Valuation.PerShare)})
	}

	headers := make([]string, 0, len(fields)+1)
	headers = append(headers, "asof")
	for _, fld := range fields {
		headers = append(headers, fld.Key)
	}
	if err := writeHeader(f, sheet, headers); err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A2", a.Metrics.AsOf); err != nil {
		return err
	}
	for i, fld := range fields {
		if err := setNum(f, sheet, i+2, 2, fld.Value); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeDCF(f *excelize.File, sheet string, v *models.Valuation) error {
	if err := writeHeader(f, sheet, []string{"Year", "FCF", "Discount_Factor", "PV_FCF"}); err != nil {
		return err
	}
	for i, r := range v.Projection {
		row := []interface{}{r.Year, r.FCF, r.DiscountFactor, r.PVFCF}
		if err := f.SetSheetRow(sheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}

	if len(v.Projection) < 2 {
		return nil
	}
	png, err := RenderProjectionChart(v.Projection)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Projection chart skipped")
		return nil
	}
	return f.AddPictureFromBytes(sheet, "F2", &excelize.Picture{
		Extension: ".png",
		File:      png,
		Format:    &excelize.GraphicOptions{AltText: "DCF Projection"},
	})
}

func writeDCFSummary(f *excelize.File, sheet string, v *models.Valuation) error {
	headers := []string{"wacc", "g", "tg", "years", "enterprise_value", "equity_value", "terminal_value", "pv_terminal_value", "per_share"}
	if err := writeHeader(f, sheet, headers); err != nil {
		return err
	}
	row := []interface{}{
		v.Assumptions.WACC,
		v.Assumptions.Growth,
		v.Assumptions.TerminalGrowth,
		v.Assumptions.Years,
		v.EnterpriseValue,
		v.EquityValue,
		v.TerminalValue,
		v.PVTerminalValue,
		v.PerShare,
	}
	return f.SetSheetRow(sheet, "A2", &row)
}

func writeSensitivity(f *excelize.File, sheet string, g *models.SensitivityGrid) error {
	headers := make([]string, 0, len(g.Growths)+1)
	headers = append(headers, SensitivityCorner)
	if err := writeHeader(f, sheet, headers); err != nil {
		return err
	}
	for j, growth := range g.Growths {
		if err := f.SetCellValue(sheet, cell(j+2, 1), growth); err != nil {
			return err
		}
	}
	for i, wacc := range g.WACCs {
		if err := f.SetCellValue(sheet, cell(1, i+2), wacc); err != nil {
			return err
		}
		for j := range g.Growths {
			if err := setNum(f, sheet, j+2, i+2, g.Cell(i, j)); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheet, "A", "A", 18)
}

var _ interfaces.ReportWriter = (*Writer)(nil)
