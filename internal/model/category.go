package model

// TransactionType is either income or expense.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Label returns the localized display label.
func (t TransactionType) Label() string {
	if t == TypeIncome {
		return "收入"
	}
	return "支出"
}

// Category is seed data; the API never mutates it.
type Category struct {
	ID   uint            `json:"id" gorm:"primaryKey"`
	Name string          `json:"name" gorm:"size:50;not null;uniqueIndex:idx_categories_name_type"`
	Type TransactionType `json:"type" gorm:"type:varchar(10);not null;uniqueIndex:idx_categories_name_type"`
	Icon string          `json:"icon" gorm:"size:50;not null;default:''"`
}
