package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"accountbook/internal/model"
	"accountbook/internal/service"
)

// TransactionHandler handles the ledger endpoints.
type TransactionHandler struct {
	transactionService service.TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// AddTransactionRequest is the body of an add call.
type AddTransactionRequest struct {
	CategoryID      uint             `json:"category_id" validate:"required"`
	Amount          *decimal.Decimal `json:"amount" validate:"required" swaggertype:"string" example:"12.50"`
	Type            string           `json:"type" validate:"required" example:"expense"`
	TransactionDate string           `json:"transaction_date" validate:"required" example:"2024-01-03"`
	Description     string           `json:"description"`
}

// UpdateTransactionRequest is the body of an update call.
type UpdateTransactionRequest struct {
	ID uint `json:"id" validate:"required"`
	AddTransactionRequest
}

// DeleteTransactionRequest identifies the record to delete.
type DeleteTransactionRequest struct {
	ID uint `query:"id" validate:"required"`
}

// ListTransactionsRequest holds the optional list filters.
type ListTransactionsRequest struct {
	StartDate  string `query:"start_date"`
	EndDate    string `query:"end_date"`
	Type       string `query:"type"`
	CategoryID uint   `query:"category_id"`
}

func (r ListTransactionsRequest) toQuery() service.ListQuery {
	return service.ListQuery{
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Type:       r.Type,
		CategoryID: r.CategoryID,
	}
}

// AddTransactionResponse is returned after a successful add.
type AddTransactionResponse struct {
	Message       string `json:"message"`
	TransactionID uint   `json:"transaction_id"`
}

// MutationResponse is returned after an update or delete.
type MutationResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// TransactionResponse is one row of a listing. Amount is rendered with two decimals.
type TransactionResponse struct {
	ID              uint                  `json:"id"`
	UserID          uint                  `json:"user_id"`
	CategoryID      uint                  `json:"category_id"`
	Amount          string                `json:"amount" example:"12.50"`
	Type            model.TransactionType `json:"type"`
	Description     string                `json:"description"`
	TransactionDate model.Date            `json:"transaction_date" swaggertype:"string" example:"2024-01-03"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	CategoryName    string                `json:"category_name"`
	CategoryIcon    string                `json:"category_icon"`
}

func newTransactionResponses(rows []model.TransactionDetail) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, TransactionResponse{
			ID:              row.ID,
			UserID:          row.UserID,
			CategoryID:      row.CategoryID,
			Amount:          row.Amount.StringFixed(2),
			Type:            row.Type,
			Description:     row.Description,
			TransactionDate: row.TransactionDate,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
			CategoryName:    row.CategoryName,
			CategoryIcon:    row.CategoryIcon,
		})
	}
	return out
}

func (r AddTransactionRequest) toInput() service.TransactionInput {
	return service.TransactionInput{
		CategoryID:      r.CategoryID,
		Amount:          r.Amount,
		Type:            r.Type,
		TransactionDate: r.TransactionDate,
		Description:     r.Description,
	}
}

// Add godoc
// @Summary Record a transaction
// @Tags transaction
// @Accept json
// @Produce json
// @Param user_id query int true "User ID"
// @Param request body AddTransactionRequest true "Transaction"
// @Success 200 {object} AddTransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/add [post]
func (h *TransactionHandler) Add(c echo.Context) error {
	var req AddTransactionRequest
	if err := bind(c, &req, "类别、金额、类型和日期不能为空"); err != nil {
		return err
	}

	id, err := h.transactionService.Add(c.Request().Context(), currentUser(c), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AddTransactionResponse{Message: "添加成功", TransactionID: id})
}

// Update godoc
// @Summary Update a transaction
// @Tags transaction
// @Accept json
// @Produce json
// @Param user_id query int true "User ID"
// @Param request body UpdateTransactionRequest true "Transaction"
// @Success 200 {object} MutationResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/update [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	var req UpdateTransactionRequest
	if err := bind(c, &req, "ID、类别、金额、类型和日期不能为空"); err != nil {
		return err
	}

	if err := h.transactionService.Update(c.Request().Context(), currentUser(c), req.ID, req.toInput()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MutationResponse{Message: "更新成功", Success: true})
}

// Delete godoc
// @Summary Delete a transaction
// @Tags transaction
// @Produce json
// @Param user_id query int true "User ID"
// @Param id query int true "Transaction ID"
// @Success 200 {object} MutationResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/delete [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	var req DeleteTransactionRequest
	if err := bind(c, &req, "交易记录ID不能为空"); err != nil {
		return err
	}

	if err := h.transactionService.Delete(c.Request().Context(), currentUser(c), req.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MutationResponse{Message: "删除成功", Success: true})
}

// List godoc
// @Summary List transactions
// @Description Newest first. Each filter is optional and applies on its own.
// @Tags transaction
// @Produce json
// @Param user_id query int true "User ID"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param type query string false "income or expense"
// @Param category_id query int false "Category ID"
// @Success 200 {array} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/list [get]
func (h *TransactionHandler) List(c echo.Context) error {
	var req ListTransactionsRequest
	if err := bind(c, &req, "查询参数格式不正确"); err != nil {
		return err
	}

	rows, err := h.transactionService.List(c.Request().Context(), currentUser(c), req.toQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTransactionResponses(rows))
}
