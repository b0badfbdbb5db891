package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "accountbook/internal/errors"
	applog "accountbook/internal/log"
	"accountbook/internal/model"
	"accountbook/internal/repository"
	"accountbook/internal/trend"
)

// Totals holds the income and expense sums of a range. Balance is always Income - Expense.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// CategoryBreakdown holds per-category sums for each type, largest first.
type CategoryBreakdown struct {
	Income  []model.CategoryTotal
	Expense []model.CategoryTotal
}

// StatsService computes aggregates over a user's transactions in a date range.
// No partial results are returned; every failure is an AggregationError or ValidationError.
type StatsService interface {
	Totals(ctx context.Context, userID uint, startDate, endDate string) (*Totals, error)
	CategoryBreakdown(ctx context.Context, userID uint, startDate, endDate string) (*CategoryBreakdown, error)
	Trend(ctx context.Context, userID uint, startDate, endDate string) (*trend.Series, error)
}

type statsService struct {
	repo   repository.TransactionRepository
	logger *applog.Logger
}

// NewStatsService creates a new statistics service.
func NewStatsService(repo repository.TransactionRepository, logger *applog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		logger: logger.WithComponent(applog.ComponentStats),
	}
}

// parseRange validates a required [start, end] pair. Unparsable dates fail as aggregation errors.
func parseRange(startDate, endDate, failMsg string) (model.Date, model.Date, error) {
	if startDate == "" || endDate == "" {
		return model.Date{}, model.Date{}, apperrors.NewValidationError("开始日期和结束日期不能为空")
	}
	start, err := model.ParseDate(startDate)
	if err != nil {
		return model.Date{}, model.Date{}, &apperrors.AggregationError{Message: failMsg, Err: err}
	}
	end, err := model.ParseDate(endDate)
	if err != nil {
		return model.Date{}, model.Date{}, &apperrors.AggregationError{Message: failMsg, Err: err}
	}
	if start.After(end.Time) {
		return model.Date{}, model.Date{}, apperrors.NewValidationError("%s", trend.ErrInvertedRange.Error())
	}
	return start, end, nil
}

func (s *statsService) fail(ctx context.Context, userID uint, startDate, endDate, msg string, err error) error {
	s.logger.LogError(ctx, msg, err, applog.OpAggregate, applog.NewFields().WithUser(userID).WithRange(startDate, endDate))
	return &apperrors.AggregationError{Message: msg, Err: err}
}

// Totals sums both types; a type with no rows counts as zero.
func (s *statsService) Totals(ctx context.Context, userID uint, startDate, endDate string) (*Totals, error) {
	const failMsg = "获取统计数据失败"
	start, end, err := parseRange(startDate, endDate, failMsg)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Totals(ctx, userID, start, end)
	if err != nil {
		return nil, s.fail(ctx, userID, startDate, endDate, failMsg, err)
	}

	totals := &Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, row := range rows {
		switch row.Type {
		case model.TypeIncome:
			totals.Income = totals.Income.Add(row.Total)
		case model.TypeExpense:
			totals.Expense = totals.Expense.Add(row.Total)
		}
	}
	totals.Balance = totals.Income.Sub(totals.Expense)
	return totals, nil
}

// CategoryBreakdown queries both types concurrently.
func (s *statsService) CategoryBreakdown(ctx context.Context, userID uint, startDate, endDate string) (*CategoryBreakdown, error) {
	const failMsg = "获取类别统计数据失败"
	start, end, err := parseRange(startDate, endDate, failMsg)
	if err != nil {
		return nil, err
	}

	var breakdown CategoryBreakdown
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.repo.CategoryTotals(gctx, userID, model.TypeIncome, start, end)
		breakdown.Income = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.CategoryTotals(gctx, userID, model.TypeExpense, start, end)
		breakdown.Expense = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, userID, startDate, endDate, failMsg, err)
	}

	if breakdown.Income == nil {
		breakdown.Income = []model.CategoryTotal{}
	}
	if breakdown.Expense == nil {
		breakdown.Expense = []model.CategoryTotal{}
	}
	return &breakdown, nil
}

// Trend builds the gap-filled series for the range.
func (s *statsService) Trend(ctx context.Context, userID uint, startDate, endDate string) (*trend.Series, error) {
	const failMsg = "获取趋势统计数据失败"
	start, end, err := parseRange(startDate, endDate, failMsg)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.DailyTotals(ctx, userID, start, end)
	if err != nil {
		return nil, s.fail(ctx, userID, startDate, endDate, failMsg, err)
	}

	points := make([]trend.Point, len(rows))
	for i, row := range rows {
		points[i] = trend.Point{Date: row.Day, Type: row.Type, Amount: row.Total}
	}

	series, err := trend.Build(start, end, points)
	if err != nil {
		if errors.Is(err, trend.ErrInvertedRange) {
			return nil, apperrors.NewValidationError("%s", err.Error())
		}
		return nil, s.fail(ctx, userID, startDate, endDate, failMsg, err)
	}
	return series, nil
}
