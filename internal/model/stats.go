package model

import "github.com/shopspring/decimal"

// TypeTotal is the sum of one transaction type.
type TypeTotal struct {
	Type  TransactionType
	Total decimal.Decimal
}

// CategoryTotal is the sum of one category within a type.
type CategoryTotal struct {
	ID           uint
	CategoryName string
	Icon         string
	Total        decimal.Decimal
}

// DailyTotal is the sum of one type on one calendar day.
type DailyTotal struct {
	Day   Date
	Type  TransactionType
	Total decimal.Decimal
}
