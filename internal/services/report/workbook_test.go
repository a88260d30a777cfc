package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/vire-valuation/internal/common"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestBuildWorkbook_Sheets(t *testing.T) {
	w := NewWriter(common.NewSilentLogger())
	data, err := w.BuildWorkbook(testAnalysis())
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{
		SheetIncome, SheetBalance, SheetCashFlow, SheetSummary,
		SheetDCF, SheetDCFSummary, SheetSensitivity,
	}, f.GetSheetList())
}

func TestBuildWorkbook_StatementSheet(t *testing.T) {
	w := NewWriter(common.NewSilentLogger())
	data, err := w.BuildWorkbook(testAnalysis())
	require.NoError(t, err)
	f := openWorkbook(t, data)

	assert.Equal(t, "2023-09-30", cellValue(t, f, SheetIncome, "B1"))
	assert.Equal(t, "2022-09-30", cellValue(t, f, SheetIncome, "C1"))
	assert.Equal(t, "Total Revenue", cellValue(t, f, SheetIncome, "A2"))
	assert.Equal(t, "1000", cellValue(t, f, SheetIncome, "B2"))
	assert.Equal(t, "800", cellValue(t, f, SheetIncome, "C2"))
	assert.Equal(t, "Net Income", cellValue(t, f, SheetIncome, "A3"))
	assert.Equal(t, "", cellValue(t, f, SheetIncome, "C3"), "missing cells stay blank")
}

func TestBuildWorkbook_EmptyStatementGetsNote(t *testing.T) {
	w := NewWriter(common.NewSilentLogger())
	data, err := w.BuildWorkbook(testAnalysis())
	require.NoError(t, err)
	f := openWorkbook(t, data)

	assert.Equal(t, "No data returned for Balance", cellValue(t, f, SheetBalance, "A2"))
}

func TestBuildWorkbook_Summary(t *testing.T) {
	w := NewWriter(common.NewSilentLogger())
	data, err := w.BuildWorkbook(testAnalysis())
	require.NoError(t, err)
	f := openWorkbook(t, data)

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	header := rows[0]
	assert.Equal(t, "asof", header[0])
	assert.Equal(t, "revenue", header[1])
	assert.Equal(t, "dcf_per_share", header[len(header)-1])

	assert.Equal(t, "2023-09-30", cellValue(t, f, SheetSummary, "A2"))
	assert.Equal(t, "1000", cellValue(t, f, SheetSummary, "B2"))
	assert.Equal(t, "", cellValue(t, f, SheetSummary, "E2"), "gross margin is missing")
	assert.Equal(t, "125", cellValue(t, f, SheetSummary, "Q2"))
}

func TestBuildWorkbook_DCFSheets(t *testing.T) {
	w := NewWriter(common.NewSilentLogger())
	data, err := w.BuildWorkbook(testAnalysis())
	require.NoError(t, err)
	f := openWorkbook(t, data)

	assert.Equal(t, "Year", cellValue(t, f, SheetDCF, "A1"))
	assert.Equal(t, "PV_FCF", cellValue(t, f, SheetDCF, "D1"))
	assert.Equal(t, "1", cellValue(t, f, SheetDCF, "A2"))
	assert.Equal(t, "106", cellValue(t, f, SheetDCF, "B2"))
	assert.Equal(t, "28", cellValue(t, f, SheetDCF, "D3"))

	pics, err := f.GetPictures(SheetDCF, "F2")
	require.NoError(t, err)
	assert.Len(t, pics, 1, "projection chart embedded")

	assert.Equal(t, "wacc", cellValue(t, f, SheetDCFSummary, "A1"))
	assert.Equal(t, "per_share", cellValue(t, f, SheetDCFSummary, "I1"))
	assert.Equal(t, "0.1", cellValue(t, f, SheetDCFSummary, "A2"))
	assert.Equal(t, "2", cellValue(t, f, SheetDCFSummary, "D2"))
	assert.Equal(t, "125", cellValue(t, f, SheetDCFSummary, "I2"))
}

func TestBuildWorkbook_Sensitivity(t *testing.T) {
	w := NewWriter(common.NewSilentLogger())
	data, err := w.BuildWorkbook(testAnalysis())
	require.NoError(t, err)
	f := openWorkbook(t, data)

	assert.Equal(t, SensitivityCorner, cellValue(t, f, SheetSensitivity, "A1"))
	assert.Equal(t, "0.05", cellValue(t, f, SheetSensitivity, "B1"))
	assert.Equal(t, "0.09", cellValue(t, f, SheetSensitivity, "A2"))
	assert.Equal(t, "140", cellValue(t, f, SheetSensitivity, "B2"))
	assert.Equal(t, "", cellValue(t, f, SheetSensitivity, "B3"), "failed cell is blank")
	assert.Equal(t, "125", cellValue(t, f, SheetSensitivity, "C3"))
}

func TestBuildWorkbook_WithoutValuation(t *testing.T) {
	a := testAnalysis()
	a.Valuation = nil
	a.Sensitivity = nil
	a.ValuationError = "Missing FCF or shares."

	w := NewWriter(common.NewSilentLogger())
	data, err := w.BuildWorkbook(a)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{SheetIncome, SheetBalance, SheetCashFlow, SheetSummary}, f.GetSheetList())
}

func TestBuildWorkbook_NoStatements(t *testing.T) {
	a := testAnalysis()
	a.Statements = nil

	w := NewWriter(common.NewSilentLogger())
	data, err := w.BuildWorkbook(a)
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, "No data returned for Income", cellValue(t, f, SheetIncome, "A2"))
	assert.Equal(t, "No data returned for CashFlow", cellValue(t, f, SheetCashFlow, "A2"))
}

func TestBuildWorkbook_RequiresMetrics(t *testing.T) {
	w := NewWriter(common.NewSilentLogger())
	_, err := w.BuildWorkbook(nil)
	assert.Error(t, err)
}

func TestReportName(t *testing.T) {
	ts := time.Date(2026, 10, 16, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "AAPL_2026-10-16_0905.xlsx", ReportName("AAPL", ts))
	assert.Equal(t, "TICKER_2026-10-16_0905.xlsx", ReportName("", ts))
}

func TestRenderProjectionChart(t *testing.T) {
	png, err := RenderProjectionChart(testAnalysis().Valuation.Projection)
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	_, err = RenderProjectionChart(testAnalysis().Valuation.Projection[:1])
	assert.Error(t, err)
}
