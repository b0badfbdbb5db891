package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	CategoryID      uint            `json:"category_id" gorm:"not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Type            TransactionType `json:"type" gorm:"type:varchar(10);not null"`
	Description     string          `json:"description" gorm:"size:255;not null;default:''"`
	TransactionDate Date            `json:"transaction_date" gorm:"type:date;not null;index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TransactionDetail is a transaction joined with its category's display fields.
type TransactionDetail struct {
	Transaction
	CategoryName string `json:"category_name"`
	CategoryIcon string `json:"category_icon"`
}

// TransactionFilter narrows a listing. Zero values mean "no constraint".
type TransactionFilter struct {
	StartDate  *Date
	EndDate    *Date
	Type       TransactionType
	CategoryID uint
}
