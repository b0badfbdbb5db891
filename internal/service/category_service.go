package service

import (
	"context"
	"time"

	"accountbook/internal/cache"
	apperrors "accountbook/internal/errors"
	applog "accountbook/internal/log"
	"accountbook/internal/model"
	"accountbook/internal/repository"
)

const (
	categoryCacheTTL  = 10 * time.Minute
	categoryKeyPrefix = "categories:"
)

// CategoryService serves the read-only category catalogue.
type CategoryService interface {
	List(ctx context.Context, typ string) ([]model.Category, error)
	Import(ctx context.Context, categories []model.Category) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	cache  cache.Store
	logger *applog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, store cache.Store, logger *applog.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		cache:  store,
		logger: logger.WithComponent(applog.ComponentCategory),
	}
}

func categoryCacheKey(typ model.TransactionType) string {
	if typ == "" {
		return categoryKeyPrefix + "all"
	}
	return categoryKeyPrefix + string(typ)
}

// List returns categories of the given type. Unknown type values are ignored and
// the whole catalogue is returned.
func (s *categoryService) List(ctx context.Context, typ string) ([]model.Category, error) {
	filter := model.TransactionType(typ)
	if !filter.Valid() {
		filter = ""
	}

	key := categoryCacheKey(filter)
	if cached, ok := cache.GetJSON[[]model.Category](ctx, s.cache, key); ok {
		return cached, nil
	}

	categories, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.LogError(ctx, "list categories", err, applog.OpList, nil)
		return nil, apperrors.NewPersistenceError("获取类别", err)
	}

	_ = cache.SetJSON(ctx, s.cache, key, categories, categoryCacheTTL)
	return categories, nil
}

// Import upserts categories and drops every cached listing.
func (s *categoryService) Import(ctx context.Context, categories []model.Category) error {
	for _, c := range categories {
		if c.Name == "" || !c.Type.Valid() {
			return apperrors.NewValidationError("无效的类别: %q (%s)", c.Name, c.Type)
		}
	}
	if err := s.repo.Upsert(ctx, categories); err != nil {
		return apperrors.NewPersistenceError("导入类别", err)
	}
	_ = s.cache.Delete(ctx,
		categoryCacheKey(""),
		categoryCacheKey(model.TypeIncome),
		categoryCacheKey(model.TypeExpense))

	s.logger.InfoContext(ctx, "categories imported", "count", len(categories))
	return nil
}
