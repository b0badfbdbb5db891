package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "accountbook/internal/errors"
	"accountbook/internal/events"
	applog "accountbook/internal/log"
	"accountbook/internal/model"
	"accountbook/internal/repository"
)

// TransactionInput carries the user-editable fields of a transaction.
type TransactionInput struct {
	CategoryID      uint
	Amount          *decimal.Decimal
	Type            string
	TransactionDate string
	Description     string
}

// ListQuery holds the optional list filters as received from the client.
type ListQuery struct {
	StartDate  string
	EndDate    string
	Type       string
	CategoryID uint
}

// TransactionService manages a user's transactions.
type TransactionService interface {
	Add(ctx context.Context, userID uint, in TransactionInput) (uint, error)
	Update(ctx context.Context, userID, id uint, in TransactionInput) error
	Delete(ctx context.Context, userID, id uint) error
	List(ctx context.Context, userID uint, q ListQuery) ([]model.TransactionDetail, error)
}

type transactionService struct {
	repo         repository.TransactionRepository
	categoryRepo repository.CategoryRepository
	publisher    events.Publisher
	logger       *applog.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(repo repository.TransactionRepository, categoryRepo repository.CategoryRepository, publisher events.Publisher, logger *applog.Logger) TransactionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &transactionService{
		repo:         repo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
		logger:       logger.WithComponent(applog.ComponentLedger),
	}
}

// buildTransaction validates in and converts it. missingMsg is reported when a required field is absent.
func (s *transactionService) buildTransaction(ctx context.Context, userID uint, in TransactionInput, missingMsg, op string) (*model.Transaction, error) {
	if in.CategoryID == 0 || in.Amount == nil || in.Type == "" || in.TransactionDate == "" {
		return nil, apperrors.NewValidationError("%s", missingMsg)
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("金额必须为正数")
	}
	typ := model.TransactionType(in.Type)
	if !typ.Valid() {
		return nil, apperrors.NewValidationError("类型必须为收入或支出")
	}
	date, err := model.ParseDate(in.TransactionDate)
	if err != nil {
		return nil, apperrors.NewValidationError("日期格式不正确")
	}

	exists, err := s.categoryRepo.Exists(ctx, in.CategoryID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(op, err)
	}
	if !exists {
		return nil, apperrors.NewValidationError("类别不存在")
	}

	return &model.Transaction{
		UserID:          userID,
		CategoryID:      in.CategoryID,
		Amount:          amount,
		Type:            typ,
		Description:     strings.TrimSpace(in.Description),
		TransactionDate: date,
	}, nil
}

// Add records a new transaction and returns its ID.
func (s *transactionService) Add(ctx context.Context, userID uint, in TransactionInput) (uint, error) {
	const op = "添加交易记录"
	txn, err := s.buildTransaction(ctx, userID, in, "类别、金额、类型和日期不能为空", op)
	if err != nil {
		return 0, err
	}

	if err := s.repo.Create(ctx, txn); err != nil {
		s.logger.LogError(ctx, "create transaction", err, applog.OpCreate, applog.NewFields().WithUser(userID))
		return 0, apperrors.NewPersistenceError(op, err)
	}

	s.publish(ctx, events.New(events.TransactionCreated, txn.ID, userID))
	return txn.ID, nil
}

// Update rewrites a transaction owned by userID. A missing record and a record owned
// by someone else both yield NotFoundOrForbidden.
func (s *transactionService) Update(ctx context.Context, userID, id uint, in TransactionInput) error {
	const op = "更新交易记录"
	if id == 0 {
		return apperrors.NewValidationError("ID、类别、金额、类型和日期不能为空")
	}
	txn, err := s.buildTransaction(ctx, userID, in, "ID、类别、金额、类型和日期不能为空", op)
	if err != nil {
		return err
	}
	txn.ID = id

	err = s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.TransactionRepository) error {
		if _, err := repo.FindOwnedForUpdate(ctx, id, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundOrForbidden("修改")
			}
			return apperrors.NewPersistenceError(op, err)
		}
		if err := repo.UpdateOwned(ctx, txn); err != nil {
			return apperrors.NewPersistenceError(op, err)
		}
		return nil
	})
	if err != nil {
		var pe *apperrors.PersistenceError
		if errors.As(err, &pe) {
			s.logger.LogError(ctx, "update transaction", err, applog.OpUpdate, applog.NewFields().WithUser(userID).WithTransaction(id))
		}
		return err
	}

	s.publish(ctx, events.New(events.TransactionUpdated, id, userID))
	return nil
}

// Delete removes a transaction owned by userID.
func (s *transactionService) Delete(ctx context.Context, userID, id uint) error {
	if id == 0 {
		return apperrors.NewValidationError("交易记录ID不能为空")
	}

	affected, err := s.repo.DeleteOwned(ctx, id, userID)
	if err != nil {
		s.logger.LogError(ctx, "delete transaction", err, applog.OpDelete, applog.NewFields().WithUser(userID).WithTransaction(id))
		return apperrors.NewPersistenceError("删除交易记录", err)
	}
	if affected == 0 {
		return apperrors.NotFoundOrForbidden("删除")
	}

	s.publish(ctx, events.New(events.TransactionDeleted, id, userID))
	return nil
}

// List returns the user's transactions matching q, newest first.
func (s *transactionService) List(ctx context.Context, userID uint, q ListQuery) ([]model.TransactionDetail, error) {
	filter, err := parseListQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.logger.LogError(ctx, "list transactions", err, applog.OpList, applog.NewFields().WithUser(userID))
		return nil, apperrors.NewPersistenceError("获取交易记录", err)
	}
	return rows, nil
}

// parseListQuery converts raw filters. Unknown type values are ignored; each date bound applies on its own.
func parseListQuery(q ListQuery) (model.TransactionFilter, error) {
	var filter model.TransactionFilter

	if q.StartDate != "" {
		d, err := model.ParseDate(q.StartDate)
		if err != nil {
			return filter, apperrors.NewValidationError("日期格式不正确")
		}
		filter.StartDate = &d
	}
	if q.EndDate != "" {
		d, err := model.ParseDate(q.EndDate)
		if err != nil {
			return filter, apperrors.NewValidationError("日期格式不正确")
		}
		filter.EndDate = &d
	}
	if typ := model.TransactionType(q.Type); typ.Valid() {
		filter.Type = typ
	}
	filter.CategoryID = q.CategoryID

	return filter, nil
}

// publish never fails the request; a lost event is only logged.
func (s *transactionService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.LogError(ctx, "publish event", err, applog.OpPublish,
			applog.NewFields().WithUser(event.UserID).WithTransaction(event.TransactionID))
	}
}
