package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	apperrors "accountbook/internal/errors"
	applog "accountbook/internal/log"
	"accountbook/internal/model"
	"accountbook/internal/repository"
)

const (
	utf8BOM     = "\xEF\xBB\xBF"
	pdfFontName = "statement"
)

var csvHeader = []string{"日期", "类型", "类别", "金额", "描述"}

// Export is a filtered set of rows ready to be rendered.
type Export struct {
	StartDate string
	EndDate   string
	Rows      []model.TransactionDetail
}

// FileName returns the download name for the given extension.
func (e *Export) FileName(ext string) string {
	return fmt.Sprintf("transactions_%s_to_%s.%s", e.StartDate, e.EndDate, ext)
}

// ExportService renders transaction listings as downloadable files.
type ExportService interface {
	Prepare(ctx context.Context, userID uint, q ListQuery) (*Export, error)
	WriteCSV(w io.Writer, export *Export) error
	WritePDF(w io.Writer, export *Export) error
}

type exportService struct {
	repo     repository.TransactionRepository
	fontPath string
	logger   *applog.Logger
}

// NewExportService creates an export service. fontPath optionally names a UTF-8 TrueType
// font for PDF output; without it PDFs use Helvetica and cannot show CJK text.
func NewExportService(repo repository.TransactionRepository, fontPath string, logger *applog.Logger) ExportService {
	return &exportService{
		repo:     repo,
		fontPath: fontPath,
		logger:   logger.WithComponent(applog.ComponentExport),
	}
}

// Prepare loads the rows an export will contain. Both dates are required; the remaining
// filters behave exactly as in List.
func (s *exportService) Prepare(ctx context.Context, userID uint, q ListQuery) (*Export, error) {
	if q.StartDate == "" || q.EndDate == "" {
		return nil, apperrors.NewValidationError("开始日期和结束日期不能为空")
	}
	filter, err := parseListQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.logger.LogError(ctx, "load export rows", err, applog.OpExport,
			applog.NewFields().WithUser(userID).WithRange(q.StartDate, q.EndDate))
		return nil, apperrors.NewPersistenceError("获取交易记录", err)
	}

	return &Export{StartDate: q.StartDate, EndDate: q.EndDate, Rows: rows}, nil
}

// WriteCSV writes a BOM-prefixed CSV with one line per row.
func (s *exportService) WriteCSV(w io.Writer, export *Export) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range export.Rows {
		record := []string{
			row.TransactionDate.String(),
			row.Type.Label(),
			row.CategoryName,
			row.Amount.StringFixed(2),
			row.Description,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF renders a statement table followed by the range totals.
func (s *exportService) WritePDF(w io.Writer, export *Export) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(export.FileName("pdf"), true)

	font := "Helvetica"
	text := pdf.UnicodeTranslatorFromDescriptor("")
	if s.fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", s.fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", s.fontPath)
		font = pdfFontName
		text = func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(font, "B", 16)
	pdf.Cell(0, 10, text(fmt.Sprintf("Statement %s ~ %s", export.StartDate, export.EndDate)))
	pdf.Ln(12)

	widths := []float64{28, 20, 40, 30, 72}
	pdf.SetFont(font, "B", 10)
	for i, h := range csvHeader {
		pdf.CellFormat(widths[i], 7, text(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(7)

	income, expense := decimal.Zero, decimal.Zero
	pdf.SetFont(font, "", 10)
	for _, row := range export.Rows {
		if row.Type == model.TypeIncome {
			income = income.Add(row.Amount)
		} else {
			expense = expense.Add(row.Amount)
		}
		pdf.CellFormat(widths[0], 6, row.TransactionDate.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, text(row.Type.Label()), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, text(row.CategoryName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, row.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, text(row.Description), "1", 0, "L", false, 0, "")
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont(font, "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Income: %s", income.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Expense: %s", expense.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Balance: %s", income.Sub(expense).StringFixed(2)))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}
