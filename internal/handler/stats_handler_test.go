package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "accountbook/internal/errors"
	"accountbook/internal/model"
	"accountbook/internal/service"
	"accountbook/internal/trend"
)

func newStatsTestServer(svc *MockStatsService, exposeInternal bool) http.Handler {
	e := newTestEcho(exposeInternal)
	h := NewStatsHandler(svc)
	e.GET("/transaction/stats", h.Totals, RequireUser())
	e.GET("/transaction/category_stats", h.CategoryStats, RequireUser())
	e.GET("/transaction/trend_stats", h.TrendStats, RequireUser())
	return e
}

func TestStatsHandler_Totals(t *testing.T) {
	svc := new(MockStatsService)
	svc.On("Totals", mock.Anything, uint(3), "2024-01-01", "2024-01-31").Return(&service.Totals{
		Income:  decimal.RequireFromString("5000"),
		Expense: decimal.RequireFromString("1234.56"),
		Balance: decimal.RequireFromString("3765.44"),
	}, nil)

	rec := doRequest(newStatsTestServer(svc, true), http.MethodGet, "/transaction/stats?user_id=3&start_date=2024-01-01&end_date=2024-01-31", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"income":5000,"expense":1234.56,"balance":3765.44}`, rec.Body.String())
}

func TestStatsHandler_CategoryStats(t *testing.T) {
	svc := new(MockStatsService)
	svc.On("CategoryBreakdown", mock.Anything, uint(3), "2024-01-01", "2024-01-31").Return(&service.CategoryBreakdown{
		Income:  []model.CategoryTotal{{ID: 1, CategoryName: "工资", Icon: "fa-money-bill", Total: decimal.RequireFromString("5000")}},
		Expense: []model.CategoryTotal{},
	}, nil)

	rec := doRequest(newStatsTestServer(svc, true), http.MethodGet, "/transaction/category_stats?user_id=3&start_date=2024-01-01&end_date=2024-01-31", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"income":[{"id":1,"category_name":"工资","icon":"fa-money-bill","total":5000}],"expense":[]}`,
		rec.Body.String())
}

func TestStatsHandler_TrendStats(t *testing.T) {
	svc := new(MockStatsService)
	svc.On("Trend", mock.Anything, uint(3), "2024-01-01", "2024-01-03").Return(&trend.Series{
		Interval: trend.Day,
		Labels:   []string{"01-01", "01-02", "01-03"},
		Income:   []decimal.Decimal{decimal.Zero, decimal.RequireFromString("100"), decimal.Zero},
		Expense:  []decimal.Decimal{decimal.RequireFromString("12.5"), decimal.Zero, decimal.Zero},
	}, nil)
	svc.On("Trend", mock.Anything, uint(3), "2024-02-01", "2024-01-01").
		Return(nil, apperrors.NewValidationError("开始日期不能晚于结束日期"))

	srv := newStatsTestServer(svc, true)
	rec := doRequest(srv, http.MethodGet, "/transaction/trend_stats?user_id=3&start_date=2024-01-01&end_date=2024-01-03", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"dates":["01-01","01-02","01-03"],"income":[0,100,0],"expense":[12.5,0,0],"interval":"日"}`,
		rec.Body.String())

	rec = doRequest(srv, http.MethodGet, "/transaction/trend_stats?user_id=3&start_date=2024-02-01&end_date=2024-01-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "开始日期不能晚于结束日期", decodeError(t, rec.Body.Bytes()).Error)
}

func TestStatsHandler_AggregationErrorHidesDriverText(t *testing.T) {
	aggErr := &apperrors.AggregationError{Message: "获取统计数据失败", Err: errors.New("dial tcp 10.0.0.5:3306: i/o timeout")}

	for _, tc := range []struct {
		expose   bool
		expected string
	}{
		{expose: false, expected: "获取统计数据失败"},
		{expose: true, expected: "获取统计数据失败: dial tcp 10.0.0.5:3306: i/o timeout"},
	} {
		svc := new(MockStatsService)
		svc.On("Totals", mock.Anything, uint(3), "2024-01-01", "2024-01-31").Return(nil, aggErr)

		rec := doRequest(newStatsTestServer(svc, tc.expose), http.MethodGet, "/transaction/stats?user_id=3&start_date=2024-01-01&end_date=2024-01-31", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body.Bytes())
		assert.Equal(t, tc.expected, resp.Error)
		assert.Equal(t, "AGGREGATION_ERROR", resp.Code)
	}
}
