package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bobmcallan/vire-valuation/internal/app"
	"github.com/bobmcallan/vire-valuation/internal/clients/eodhd"
	"github.com/bobmcallan/vire-valuation/internal/common"
	"github.com/bobmcallan/vire-valuation/internal/models"
)

type stubFetcher struct {
	pkg *models.StatementPackage
	err error
}

func (s *stubFetcher) FetchStatements(ctx context.Context, ticker string) (*models.StatementPackage, error) {
	return s.pkg, s.err
}

func stubPackage() *models.StatementPackage {
	periods := []models.Period{models.NewPeriod("2023-12-31"), models.NewPeriod("2022-12-31")}

	income := models.NewStatementTable(periods...)
	income.AddRow("Total Revenue", models.Some(1000), models.Some(800))
	income.AddRow("Net Income", models.Some(120), models.Some(100))

	balance := models.NewStatementTable(periods...)
	balance.AddRow("Total Debt", models.Some(300))
	balance.AddRow("Cash", models.Some(100))

	cashflow := models.NewStatementTable(periods...)
	cashflow.AddRow("Operating Cash Flow", models.Some(150))
	cashflow.AddRow("Capital Expenditure", models.Some(-50))

	return &models.StatementPackage{
		Ticker: "ACME",
		Info: models.CompanyInfo{
			Ticker:            "ACME",
			Name:              "Acme Corp",
			Price:             models.Some(10),
			SharesOutstanding: models.Some(100),
		},
		Income:   income,
		Balance:  balance,
		CashFlow: cashflow,
	}
}

func newTestServer(t *testing.T, fetcher *stubFetcher) *Server {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Reports.Path = t.TempDir()

	a, err := app.New(config, common.NewSilentLogger(), fetcher)
	require.NoError(t, err)
	return NewServer(a)
}

func do(t *testing.T, s *Server, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	rec := do(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = do(t, s, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "version")

	rec = do(t, s, http.MethodPost, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConfig_MasksAPIKey(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})
	s.app.Config.Clients.EODHD.APIKey = "abcdef123456"

	rec := do(t, s, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "abcd****", body["eodhd_api_key"])
	assert.Equal(t, true, body["reports_enabled"])
}

func TestValuation_OK(t *testing.T) {
	s := newTestServer(t, &stubFetcher{pkg: stubPackage()})

	rec := do(t, s, http.MethodGet, "/api/valuation/acme?wacc=9&years=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "ACME", body["ticker"])
	assert.NotEmpty(t, body["run_id"])

	metrics := body["metrics"].(map[string]interface{})
	assert.Equal(t, 100.0, metrics["fcf"])
	assert.Equal(t, 200.0, metrics["net_debt"])

	v := body["valuation"].(map[string]interface{})
	as := v["assumptions"].(map[string]interface{})
	assert.InDelta(t, 0.09, as["wacc"], 1e-12)
	assert.Equal(t, 3.0, as["years"])
	assert.Len(t, v["projection"], 3)
	assert.NotNil(t, body["sensitivity"])
	assert.NotContains(t, body, "Statements")
}

func TestValuation_DCFFailureIsStill200(t *testing.T) {
	s := newTestServer(t, &stubFetcher{pkg: stubPackage()})

	rec := do(t, s, http.MethodGet, "/api/valuation/ACME?wacc=2&tg=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "WACC must be greater than terminal growth.", body["valuation_error"])
	assert.NotContains(t, body, "valuation")
	assert.Nil(t, body["upside"])
}

func TestValuation_BadQuery(t *testing.T) {
	s := newTestServer(t, &stubFetcher{pkg: stubPackage()})

	for _, q := range []string{"wacc=abc", "years=x", "years=0", "years=101", "years=1000000000", "sensitivity=maybe", "save=2"} {
		rec := do(t, s, http.MethodGet, "/api/valuation/ACME?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestValuation_ErrorStatuses(t *testing.T) {
	empty := stubPackage()
	empty.Income, empty.Balance, empty.CashFlow = models.NewStatementTable(), models.NewStatementTable(), models.NewStatementTable()

	tests := []struct {
		name    string
		fetcher *stubFetcher
		want    int
	}{
		{"no statements", &stubFetcher{pkg: empty}, http.StatusNotFound},
		{"provider 404", &stubFetcher{err: &eodhd.APIError{StatusCode: 404, Message: "Ticker Not Found."}}, http.StatusNotFound},
		{"provider 500", &stubFetcher{err: &eodhd.APIError{StatusCode: 500}}, http.StatusBadGateway},
		{"other", &stubFetcher{err: errors.New("boom")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.fetcher)
			rec := do(t, s, http.MethodGet, "/api/valuation/zzz", nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.True(t, strings.HasPrefix(decode(t, rec)["error"].(string), "Error for ZZZ: "))
		})
	}
}

func TestValuation_RoutesAndMethods(t *testing.T) {
	s := newTestServer(t, &stubFetcher{pkg: stubPackage()})

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/valuation/", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/valuation/ACME/other", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodPost, "/api/valuation/ACME", nil).Code)
}

func TestValuationReport(t *testing.T) {
	s := newTestServer(t, &stubFetcher{pkg: stubPackage()})

	rec := do(t, s, http.MethodGet, "/api/valuation/ACME/report", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="ACME_`)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "DCF_Summary")
}

func TestSavedReports(t *testing.T) {
	s := newTestServer(t, &stubFetcher{pkg: stubPackage()})

	rec := do(t, s, http.MethodGet, "/api/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["reports"])

	rec = do(t, s, http.MethodGet, "/api/valuation/ACME?save=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["report_path"])

	rec = do(t, s, http.MethodGet, "/api/reports", nil)
	reports := decode(t, rec)["reports"].([]interface{})
	require.Len(t, reports, 1)
	name := reports[0].(string)

	rec = do(t, s, http.MethodGet, "/api/reports/"+name, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, "/api/reports/missing.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDCF(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	rec := do(t, s, http.MethodPost, "/api/dcf", map[string]interface{}{
		"fcf": 100, "shares": 10, "wacc": 10, "g": 6, "tg": 3, "years": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.InDelta(t, 167.06863473416138, body["per_share"], 1e-9)
	assert.InDelta(t, 1670.6863473416138, body["enterprise_value"], 1e-9)
}

func TestDCF_Preconditions(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	tests := []struct {
		body map[string]interface{}
		want string
	}{
		{map[string]interface{}{"fcf": 100}, "Missing FCF or shares."},
		{map[string]interface{}{"fcf": 100, "shares": 0}, "Missing FCF or shares."},
		{map[string]interface{}{"fcf": 100, "shares": 10, "wacc": 0.03, "tg": 0.03}, "WACC must be greater than terminal growth."},
		{map[string]interface{}{"fcf": 100, "shares": 10, "years": -1}, "Forecast years must be between 1 and 100."},
		{map[string]interface{}{"fcf": 100, "shares": 10, "years": 1000000000}, "Forecast years must be between 1 and 100."},
		{map[string]interface{}{"fcf": 100, "shares": 10, "wacc": -1, "tg": -1.2}, "WACC must be greater than -100%."},
		{map[string]interface{}{"fcf": 1e308, "shares": 10, "g": 0.5, "years": 2}, "Valuation did not produce a finite value."},
	}
	for _, tt := range tests {
		rec := do(t, s, http.MethodPost, "/api/dcf", tt.body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, tt.want, decode(t, rec)["error"])
	}

	req := httptest.NewRequest(http.MethodPost, "/api/dcf", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSensitivity(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	rec := do(t, s, http.MethodPost, "/api/sensitivity", map[string]interface{}{
		"fcf": 100, "shares": 10, "waccs": []float64{10, 0.02}, "growths": []float64{6},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)

	assert.Equal(t, []interface{}{0.1, 0.02}, body["wacc"])
	cells := body["cells"].([]interface{})
	require.Len(t, cells, 2)
	assert.InDelta(t, 167.06863473416138, cells[0].([]interface{})[0], 1e-9)
	assert.Nil(t, cells[1].([]interface{})[0], "wacc below terminal growth is missing")

	rec = do(t, s, http.MethodPost, "/api/sensitivity", map[string]interface{}{"fcf": 100, "shares": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["wacc"], 5)
}

func TestSensitivity_Limits(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	rec := do(t, s, http.MethodPost, "/api/sensitivity", map[string]interface{}{"fcf": 100, "shares": 10, "years": 1000000000})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Forecast years must be between 1 and 100.", decode(t, rec)["error"])

	waccs := make([]float64, maxSensitivityAxis+1)
	for i := range waccs {
		waccs[i] = 0.08 + float64(i)*0.001
	}
	rec = do(t, s, http.MethodPost, "/api/sensitivity", map[string]interface{}{"fcf": 100, "shares": 10, "waccs": waccs})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]float64{"per_share": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "failed to encode response")
}

func TestRatios(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	body := map[string]interface{}{
		"income": map[string]interface{}{
			"periods": []string{"2023-12-31", "2022-12-31"},
			"rows": []map[string]interface{}{
				{"label": "Total Revenue", "values": []interface{}{1000, 800}},
				{"label": "Net Income", "values": []interface{}{100, nil}},
			},
		},
	}
	rec := do(t, s, http.MethodPost, "/api/ratios", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	m := decode(t, rec)
	assert.Equal(t, "2023-12-31", m["asof"])
	growth := m["growth_yoy"].(map[string]interface{})
	assert.InDelta(t, 0.25, growth["rev_yoy"], 1e-12)
	assert.Nil(t, growth["ni_yoy"])

	rec = do(t, s, http.MethodPost, "/api/ratios", map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})
	rec := do(t, s, http.MethodOptions, "/api/dcf", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDPassthrough(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Correlation-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShutdownEndpoint(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})
	ch := make(chan struct{}, 1)
	s.SetShutdownChannel(ch)

	rec := do(t, s, http.MethodPost, "/api/shutdown", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	<-ch

	s.app.Config.Environment = "production"
	rec = do(t, s, http.MethodPost, "/api/shutdown", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPathParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/valuation/AAPL.US/report", nil)
	assert.Equal(t, "AAPL.US", PathParam(r, "/api/valuation/", "/report"))
	assert.Equal(t, "AAPL.US", PathParam(r, "/api/valuation/", ""))
	assert.Equal(t, "", PathParam(r, "/api/other/", ""))
}

func TestQueryNum(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?a=1.5&b=&c=x", nil)

	n, err := queryNum(r, "a")
	require.NoError(t, err)
	assert.Equal(t, models.Some(1.5), n)

	n, err = queryNum(r, "b")
	require.NoError(t, err)
	assert.True(t, n.IsMissing())

	_, err = queryNum(r, "c")
	assert.Error(t, err)
}
