// Package trend turns per-day income and expense sums into a gap-filled series
// bucketed by day, ISO week or month depending on the length of the range.
package trend

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"accountbook/internal/model"
)

// Interval is the bucket granularity.
type Interval string

const (
	Day   Interval = "day"
	Week  Interval = "week"
	Month Interval = "month"
)

const (
	dailyMaxDays  = 31
	weeklyMaxDays = 92
)

// ErrInvertedRange is returned when start falls after end.
var ErrInvertedRange = errors.New("开始日期不能晚于结束日期")

// Label returns the localized name of the interval.
func (i Interval) Label() string {
	switch i {
	case Day:
		return "日"
	case Week:
		return "周"
	default:
		return "月"
	}
}

// Bucket is one slot of the series.
type Bucket struct {
	Key   string
	Label string
}

// Point is an aggregated amount for a single day and type.
type Point struct {
	Date   model.Date
	Type   model.TransactionType
	Amount decimal.Decimal
}

// Series holds parallel label, income and expense sequences of equal length.
type Series struct {
	Interval Interval
	Labels   []string
	Income   []decimal.Decimal
	Expense  []decimal.Decimal
}

// Days returns the inclusive number of calendar days in [start, end].
func Days(start, end model.Date) int {
	return start.DaysUntil(end) + 1
}

// SelectInterval picks the granularity for a range.
func SelectInterval(start, end model.Date) Interval {
	switch days := Days(start, end); {
	case days <= dailyMaxDays:
		return Day
	case days <= weeklyMaxDays:
		return Week
	default:
		return Month
	}
}

// KeyOf returns the bucket key d falls into.
func KeyOf(d model.Date, interval Interval) string {
	switch interval {
	case Day:
		return d.String()
	case Week:
		year, week := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return d.Format("2006-01")
	}
}

func labelOf(d model.Date, interval Interval) string {
	switch interval {
	case Day:
		return d.Format("01-02")
	case Week:
		_, week := d.ISOWeek()
		return fmt.Sprintf("第%02d周", week)
	default:
		return d.Format("2006-01")
	}
}

// Buckets builds the complete ordered bucket sequence covering [start, end].
func Buckets(start, end model.Date, interval Interval) []Bucket {
	var (
		cursor model.Date
		step   func(model.Date) model.Date
	)

	switch interval {
	case Day:
		cursor = start
		step = func(d model.Date) model.Date { return d.AddDays(1) }
	case Week:
		cursor = mondayOf(start)
		step = func(d model.Date) model.Date { return d.AddDays(7) }
	default:
		cursor = model.NewDate(start.Year(), start.Month(), 1)
		step = func(d model.Date) model.Date { return model.Date{Time: d.AddDate(0, 1, 0)} }
	}

	var buckets []Bucket
	for ; !cursor.After(end.Time); cursor = step(cursor) {
		buckets = append(buckets, Bucket{Key: KeyOf(cursor, interval), Label: labelOf(cursor, interval)})
	}
	return buckets
}

func mondayOf(d model.Date) model.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Build selects the interval for [start, end], seeds every bucket with zero and
// overlays points by key. Points outside the range are dropped.
func Build(start, end model.Date, points []Point) (*Series, error) {
	if start.After(end.Time) {
		return nil, ErrInvertedRange
	}

	interval := SelectInterval(start, end)
	buckets := Buckets(start, end, interval)

	series := &Series{
		Interval: interval,
		Labels:   make([]string, len(buckets)),
		Income:   make([]decimal.Decimal, len(buckets)),
		Expense:  make([]decimal.Decimal, len(buckets)),
	}
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		series.Labels[i] = b.Label
		series.Income[i] = decimal.Zero
		series.Expense[i] = decimal.Zero
		index[b.Key] = i
	}

	for _, p := range points {
		if p.Date.Before(start.Time) || p.Date.After(end.Time) {
			continue
		}
		i, ok := index[KeyOf(p.Date, interval)]
		if !ok {
			continue
		}
		switch p.Type {
		case model.TypeIncome:
			series.Income[i] = series.Income[i].Add(p.Amount)
		case model.TypeExpense:
			series.Expense[i] = series.Expense[i].Add(p.Amount)
		}
	}

	return series, nil
}

// Floats converts amounts for JSON output.
func Floats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.InexactFloat64()
	}
	return out
}
