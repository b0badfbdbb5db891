package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"accountbook/internal/service"
)

// ExportHandler streams transaction listings as files.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) prepare(c echo.Context) (*service.Export, error) {
	var req ListTransactionsRequest
	if err := bind(c, &req, "查询参数格式不正确"); err != nil {
		return nil, err
	}
	return h.exportService.Prepare(c.Request().Context(), currentUser(c), req.toQuery())
}

func attachment(c echo.Context, name string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
}

// ExportCSV godoc
// @Summary Export transactions as CSV
// @Description UTF-8 with a byte order mark so that spreadsheet software detects the encoding.
// @Tags transaction
// @Produce text/csv
// @Param user_id query int true "User ID"
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Param type query string false "income or expense"
// @Param category_id query int false "Category ID"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/export [get]
func (h *ExportHandler) ExportCSV(c echo.Context) error {
	export, err := h.prepare(c)
	if err != nil {
		return err
	}

	attachment(c, export.FileName("csv"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return h.exportService.WriteCSV(c.Response(), export)
}

// ExportPDF godoc
// @Summary Export transactions as a PDF statement
// @Tags transaction
// @Produce application/pdf
// @Param user_id query int true "User ID"
// @Param start_date query string true "YYYY-MM-DD"
// @Param end_date query string true "YYYY-MM-DD"
// @Param type query string false "income or expense"
// @Param category_id query int false "Category ID"
// @Success 200 {file} file
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /transaction/export_pdf [get]
func (h *ExportHandler) ExportPDF(c echo.Context) error {
	export, err := h.prepare(c)
	if err != nil {
		return err
	}

	// Render fully before writing so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.exportService.WritePDF(&buf, export); err != nil {
		return err
	}

	attachment(c, export.FileName("pdf"))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
