package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"accountbook/internal/service"
)

// CategoryHandler serves the category catalogue.
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List godoc
// @Summary List categories
// @Tags category
// @Produce json
// @Param type query string false "income or expense"
// @Success 200 {array} model.Category
// @Failure 405 {object} errors.ErrorResponse
// @Router /category/list [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categoryService.List(c.Request().Context(), c.QueryParam("type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}
