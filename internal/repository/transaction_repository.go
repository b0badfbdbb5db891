package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"accountbook/internal/model"
)

// TransactionRepository defines transaction persistence and aggregation queries.
// Every method is scoped to a single user.
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	FindOwnedForUpdate(ctx context.Context, id, userID uint) (*model.Transaction, error)
	UpdateOwned(ctx context.Context, txn *model.Transaction) error
	DeleteOwned(ctx context.Context, id, userID uint) (int64, error)
	List(ctx context.Context, userID uint, filter model.TransactionFilter) ([]model.TransactionDetail, error)

	Totals(ctx context.Context, userID uint, start, end model.Date) ([]model.TypeTotal, error)
	CategoryTotals(ctx context.Context, userID uint, typ model.TransactionType, start, end model.Date) ([]model.CategoryTotal, error)
	DailyTotals(ctx context.Context, userID uint, start, end model.Date) ([]model.DailyTotal, error)

	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TransactionRepository) error) error
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction and fills in its ID.
func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindOwnedForUpdate loads a transaction owned by userID with a row-level lock.
// It returns gorm.ErrRecordNotFound when the pair (id, userID) matches nothing.
func (r *transactionRepository) FindOwnedForUpdate(ctx context.Context, id, userID uint) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateOwned rewrites the mutable columns of txn, matching on both id and user_id.
func (r *transactionRepository) UpdateOwned(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND user_id = ?", txn.ID, txn.UserID).
		Updates(map[string]any{
			"category_id":      txn.CategoryID,
			"amount":           txn.Amount,
			"type":             txn.Type,
			"description":      txn.Description,
			"transaction_date": txn.TransactionDate,
		}).Error
}

// DeleteOwned removes the transaction and reports how many rows went away.
func (r *transactionRepository) DeleteOwned(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Transaction{})
	return res.RowsAffected, res.Error
}

// List returns the user's transactions joined with category name and icon, newest first.
func (r *transactionRepository) List(ctx context.Context, userID uint, filter model.TransactionFilter) ([]model.TransactionDetail, error) {
	q := r.db.WithContext(ctx).
		Table("transactions AS t").
		Select("t.*, c.name AS category_name, c.icon AS category_icon").
		Joins("JOIN categories c ON t.category_id = c.id").
		Where("t.user_id = ?", userID)

	if filter.StartDate != nil {
		q = q.Where("t.transaction_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("t.transaction_date <= ?", *filter.EndDate)
	}
	if filter.Type != "" {
		q = q.Where("t.type = ?", filter.Type)
	}
	if filter.CategoryID != 0 {
		q = q.Where("t.category_id = ?", filter.CategoryID)
	}

	rows := make([]model.TransactionDetail, 0)
	if err := q.Order("t.transaction_date DESC, t.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Totals sums amounts per type in [start, end]. Sums are rounded to cents
// because SQLite stores decimal columns as REAL.
func (r *transactionRepository) Totals(ctx context.Context, userID uint, start, end model.Date) ([]model.TypeTotal, error) {
	var rows []model.TypeTotal
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("type, ROUND(SUM(amount), 2) AS total").
		Where("user_id = ? AND transaction_date BETWEEN ? AND ?", userID, start, end).
		Group("type").
		Scan(&rows).Error
	return rows, err
}

// CategoryTotals sums one type per category in [start, end], largest first.
func (r *transactionRepository) CategoryTotals(ctx context.Context, userID uint, typ model.TransactionType, start, end model.Date) ([]model.CategoryTotal, error) {
	rows := make([]model.CategoryTotal, 0)
	err := r.db.WithContext(ctx).
		Table("transactions AS t").
		Select("c.id AS id, c.name AS category_name, c.icon AS icon, ROUND(SUM(t.amount), 2) AS total").
		Joins("JOIN categories c ON t.category_id = c.id").
		Where("t.user_id = ? AND t.type = ? AND t.transaction_date BETWEEN ? AND ?", userID, typ, start, end).
		Group("c.id, c.name, c.icon").
		Order("total DESC, c.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DailyTotals sums amounts per calendar day and type in [start, end].
func (r *transactionRepository) DailyTotals(ctx context.Context, userID uint, start, end model.Date) ([]model.DailyTotal, error) {
	var rows []model.DailyTotal
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("transaction_date AS day, type, ROUND(SUM(amount), 2) AS total").
		Where("user_id = ? AND transaction_date BETWEEN ? AND ?", userID, start, end).
		Group("transaction_date, type").
		Order("transaction_date").
		Scan(&rows).Error
	return rows, err
}

// WithTransaction executes a function within a database transaction.
func (r *transactionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo TransactionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &transactionRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
