package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"accountbook/internal/model"
)

// NewSQLite opens a SQLite database, creates the schema and seeds the default categories.
// Use ":memory:" for a throwaway database.
func NewSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.Category{}, &model.Transaction{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	if err := SeedCategories(db, DefaultCategories()); err != nil {
		return nil, err
	}
	return db, nil
}

// SeedCategories inserts categories, updating the icon of any (name, type) pair that already exists.
func SeedCategories(db *gorm.DB, categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"icon"}),
	}).Create(&categories).Error
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	return nil
}

// DefaultCategories is the catalogue shipped with a fresh install.
func DefaultCategories() []model.Category {
	return []model.Category{
		{Name: "工资", Type: model.TypeIncome, Icon: "fa-money-bill"},
		{Name: "奖金", Type: model.TypeIncome, Icon: "fa-gift"},
		{Name: "投资收益", Type: model.TypeIncome, Icon: "fa-chart-line"},
		{Name: "兼职", Type: model.TypeIncome, Icon: "fa-briefcase"},
		{Name: "其他收入", Type: model.TypeIncome, Icon: "fa-plus-circle"},
		{Name: "餐饮", Type: model.TypeExpense, Icon: "fa-utensils"},
		{Name: "交通", Type: model.TypeExpense, Icon: "fa-bus"},
		{Name: "购物", Type: model.TypeExpense, Icon: "fa-shopping-cart"},
		{Name: "住房", Type: model.TypeExpense, Icon: "fa-home"},
		{Name: "娱乐", Type: model.TypeExpense, Icon: "fa-film"},
		{Name: "医疗", Type: model.TypeExpense, Icon: "fa-medkit"},
		{Name: "教育", Type: model.TypeExpense, Icon: "fa-graduation-cap"},
		{Name: "其他支出", Type: model.TypeExpense, Icon: "fa-minus-circle"},
	}
}
