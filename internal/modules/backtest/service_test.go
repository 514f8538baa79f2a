package backtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/terminal/internal/clients/platform"
)

type mockReader struct {
	summaries []platform.BacktestSummary
	detail    *platform.BacktestDetail
	err       error
	lastLimit int
}

func (m *mockReader) ListBacktests(ctx context.Context, limit int) ([]platform.BacktestSummary, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.summaries, nil
}

func (m *mockReader) GetBacktest(ctx context.Context, id string) (*platform.BacktestDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func TestListDefaultsLimit(t *testing.T) {
	reader := &mockReader{}
	service := NewService(reader, zerolog.Nop())

	backtests, err := service.List(context.Background(), 0)

	require.NoError(t, err)
	assert.NotNil(t, backtests)
	assert.Equal(t, defaultListLimit, reader.lastLimit)
}

func TestDetailComputesStatsFromEquityCurve(t *testing.T) {
	reader := &mockReader{detail: &platform.BacktestDetail{
		BacktestSummary: platform.BacktestSummary{ID: "bt-1", Strategy: "momentum"},
		InitialCapital:  10000,
		EquityCurve:     []float64{10000, 10100, 10050, 10200, 10300},
	}}
	service := NewService(reader, zerolog.Nop())

	report, err := service.Detail(context.Background(), "bt-1")

	require.NoError(t, err)
	assert.Equal(t, "bt-1", report.ID)
	assert.InDelta(t, 0.03, report.Stats.TotalReturn, 1e-9)
	assert.Greater(t, report.Stats.AnnualizedVolatility, 0.0)
	assert.Greater(t, report.Stats.MaxDrawdown, 0.0)
	require.NotNil(t, report.Stats.SharpeRatio)
	assert.Greater(t, *report.Stats.SharpeRatio, 0.0)
}

func TestDetailShortCurveHasNilRatio(t *testing.T) {
	reader := &mockReader{detail: &platform.BacktestDetail{
		BacktestSummary: platform.BacktestSummary{ID: "bt-2"},
		EquityCurve:     []float64{10000, 10100},
	}}
	service := NewService(reader, zerolog.Nop())

	report, err := service.Detail(context.Background(), "bt-2")

	require.NoError(t, err)
	assert.Nil(t, report.Stats.SharpeRatio)
	assert.InDelta(t, 0.01, report.Stats.TotalReturn, 1e-9)
}

func newTestRouter(reader *mockReader) *chi.Mux {
	handlers := NewHandlers(NewService(reader, zerolog.Nop()), zerolog.Nop())
	router := chi.NewRouter()
	router.Route("/api/backtests", handlers.Routes)
	return router
}

func TestHandleListBackendDetailVerbatim(t *testing.T) {
	reader := &mockReader{err: &platform.BackendError{StatusCode: 404, Detail: "no backtests for user"}}
	router := newTestRouter(reader)

	req := httptest.NewRequest(http.MethodGet, "/api/backtests", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "no backtests for user")
}

func TestHandleDetail(t *testing.T) {
	reader := &mockReader{detail: &platform.BacktestDetail{
		BacktestSummary: platform.BacktestSummary{ID: "bt-1"},
		EquityCurve:     []float64{100, 110},
	}}
	router := newTestRouter(reader)

	req := httptest.NewRequest(http.MethodGet, "/api/backtests/bt-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stats"`)
	assert.Contains(t, rec.Body.String(), `"sharpe_ratio":null`)
}
