package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskRegime/internal/domain/models"
	"RiskRegime/internal/usecase"
	xlogger "RiskRegime/pkg/logger"
)

type stubAnalyzer struct {
	res    *models.AnalysisResult
	err    error
	period string
}

func (s *stubAnalyzer) AnalyzePeriod(_ context.Context, symbol, period string) (*models.AnalysisResult, error) {
	s.period = period
	if s.err != nil {
		return nil, s.err
	}
	r := *s.res
	r.Symbol = symbol
	return &r, nil
}

func (s *stubAnalyzer) Ready() bool { return s.err == nil }

func serve(t *testing.T, a Analyzer, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	NewRiskEchoHandler(xlogger.Nop(), a).RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestAnalyzeRoute(t *testing.T) {
	day := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	a := &stubAnalyzer{res: &models.AnalysisResult{
		RiskLevel:    models.RiskMedium,
		Confidence:   0.61,
		CurrentPrice: 101.5,
		Volatility:   0.23,
		DailyReturn:  -0.004,
		AsOf:         day,
		History: []models.PricePoint{
			{Date: day.AddDate(0, 0, -1), Price: 101.9},
			{Date: day, Price: 101.5},
		},
	}}

	rec, body := serve(t, a, "/api/v1/analyze/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1y", a.period)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "AAPL", data["symbol"])
	assert.Equal(t, "Medium", data["risk_level"])
	assert.Equal(t, "2024-06-28", data["as_of"])
	assert.Equal(t, 101.5, data["current_price"])
	history := data["history"].([]interface{})
	require.Len(t, history, 2)
	assert.Equal(t, "2024-06-27", history[0].(map[string]interface{})["date"])
}

func TestAnalyzeRouteRejectsUnknownPeriod(t *testing.T) {
	rec, _ := serve(t, &stubAnalyzer{res: &models.AnalysisResult{}}, "/api/v1/analyze/AAPL?period=3d")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeRouteErrorMapping(t *testing.T) {
	cases := map[string]int{
		usecase.CodeInvalidSymbol:       http.StatusBadRequest,
		usecase.CodeNoData:              http.StatusNotFound,
		usecase.CodeInsufficientHistory: http.StatusUnprocessableEntity,
		usecase.CodeModelUnavailable:    http.StatusServiceUnavailable,
		usecase.CodeInternal:            http.StatusInternalServerError,
	}
	for code, status := range cases {
		t.Run(code, func(t *testing.T) {
			a := &stubAnalyzer{err: &usecase.AnalysisError{Symbol: "AAPL", Code: code}}
			rec, body := serve(t, a, "/api/v1/analyze/AAPL")
			assert.Equal(t, status, rec.Code)
			assert.Equal(t, float64(status), body["status"])
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}
}

func TestHealthRoute(t *testing.T) {
	rec, body := serve(t, &stubAnalyzer{res: &models.AnalysisResult{}}, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, true, data["model_ready"])
}
