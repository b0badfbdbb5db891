package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"accountbook/internal/model"
	"accountbook/internal/service"
	"accountbook/internal/trend"
)

// StatsHandler exposes the aggregation endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new statistics handler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// TotalsResponse holds range totals. Balance equals Income - Expense.
type TotalsResponse struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// CategoryTotalResponse is the sum of one category.
type CategoryTotalResponse struct {
	ID           uint    `json:"id"`
	CategoryName string  `json:"category_name"`
	Icon         string  `json:"icon"`
	Total        float64 `json:"total"`
}

// CategoryStatsResponse splits category sums by type.
type CategoryStatsResponse struct {
	Income  []CategoryTotalResponse `json:"income"`
	Expense []CategoryTotalResponse `json:"expense"`
}

// TrendResponse is a gap-filled series; all three arrays have the same length.
type TrendResponse struct {
	Dates    []string  `json:"dates"`
	Income   []float64 `json:"income"`
	Expense  []float64 `json:"expense"`
	Interval string    `json:"interval" example:"日"`
}

func newCategoryTotals(rows []model.CategoryTotal) []CategoryTotalResponse {
	out := make([]CategoryTotalResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryTotalResponse{
			ID:           row.ID,
			CategoryName: row.CategoryName,
			Icon:         row.Icon,
			Total:        row.Total.InexactFloat64(),
		})
	}
	return out
}

// Totals godoc
// @Summary Income, expense and balance of a date range
// @Tags stats
// @Produce json
// @Param user_id query int true "User ID"
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Success 200 {object} TotalsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/stats [get]
func (h *StatsHandler) Totals(c echo.Context) error {
	totals, err := h.statsService.Totals(c.Request().Context(), currentUser(c), c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TotalsResponse{
		Income:  totals.Income.InexactFloat64(),
		Expense: totals.Expense.InexactFloat64(),
		Balance: totals.Balance.InexactFloat64(),
	})
}

// CategoryStats godoc
// @Summary Per-category sums of a date range
// @Tags stats
// @Produce json
// @Param user_id query int true "User ID"
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Success 200 {object} CategoryStatsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/category_stats [get]
func (h *StatsHandler) CategoryStats(c echo.Context) error {
	breakdown, err := h.statsService.CategoryBreakdown(c.Request().Context(), currentUser(c), c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CategoryStatsResponse{
		Income:  newCategoryTotals(breakdown.Income),
		Expense: newCategoryTotals(breakdown.Expense),
	})
}

// TrendStats godoc
// @Summary Bucketed income and expense series
// @Description Ranges up to 31 days are bucketed by day, up to 92 days by week, longer ranges by month.
// @Tags stats
// @Produce json
// @Param user_id query int true "User ID"
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Success 200 {object} TrendResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/trend_stats [get]
func (h *StatsHandler) TrendStats(c echo.Context) error {
	series, err := h.statsService.Trend(c.Request().Context(), currentUser(c), c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TrendResponse{
		Dates:    series.Labels,
		Income:   trend.Floats(series.Income),
		Expense:  trend.Floats(series.Expense),
		Interval: series.Interval.Label(),
	})
}
