package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"accountbook/internal/model"
)

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	List(ctx context.Context, typ model.TransactionType) ([]model.Category, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Upsert(ctx context.Context, categories []model.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// List returns categories ordered by type then name. An empty typ returns all of them.
func (r *categoryRepository) List(ctx context.Context, typ model.TransactionType) ([]model.Category, error) {
	q := r.db.WithContext(ctx).Model(&model.Category{})
	if typ != "" {
		q = q.Where("type = ?", typ)
	}

	categories := make([]model.Category, 0)
	if err := q.Order("type, name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Upsert inserts categories, refreshing the icon when (name, type) already exists.
func (r *categoryRepository) Upsert(ctx context.Context, categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"icon"}),
	}).CreateInBatches(categories, 100).Error
}
