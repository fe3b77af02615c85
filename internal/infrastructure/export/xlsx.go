package export

import (
	"fmt"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	detailSheet  = "费用明细"
	summarySheet = "预算汇总"
)

// ExpenseWorkbook renders trip expenses to xlsx
type ExpenseWorkbook struct {
	logger *zap.Logger
}

// NewExpenseWorkbook creates a new xlsx exporter
func NewExpenseWorkbook(logger *zap.Logger) *ExpenseWorkbook {
	return &ExpenseWorkbook{logger: logger}
}

// ExportExpenses writes one sheet of expenses and one sheet of totals
func (w *ExpenseWorkbook) ExportExpenses(trip *entity.Trip, expenses []*entity.Expense, summary *entity.ExpenseSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", detailSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	w.setRow(f, detailSheet, 1, "日期", "类别", "描述", "金额 ("+summary.Currency+")")
	_ = f.SetCellStyle(detailSheet, "A1", "D1", headerStyle)

	for i, e := range expenses {
		row := i + 2
		w.setCell(f, detailSheet, cell("A", row), e.SpentAt.Format("2006-01-02 15:04"))
		w.setCell(f, detailSheet, cell("B", row), e.Category.Label())
		w.setCell(f, detailSheet, cell("C", row), e.Description)
		w.setCell(f, detailSheet, cell("D", row), e.Amount.InexactFloat64())
	}

	totalRow := len(expenses) + 2
	w.setCell(f, detailSheet, cell("C", totalRow), "合计")
	w.setCell(f, detailSheet, cell("D", totalRow), summary.TotalSpent.InexactFloat64())
	_ = f.SetColWidth(detailSheet, "A", "A", 18)
	_ = f.SetColWidth(detailSheet, "C", "C", 36)

	w.setRow(f, summarySheet, 1, "行程", trip.Title)
	w.setRow(f, summarySheet, 2, "目的地", trip.Destination)
	w.setRow(f, summarySheet, 3, "预算", summary.Budget.InexactFloat64())
	w.setRow(f, summarySheet, 4, "已花费", summary.TotalSpent.InexactFloat64())
	w.setRow(f, summarySheet, 5, "剩余", summary.Remaining.InexactFloat64())
	if summary.Currency == entity.DefaultCurrency {
		if capital, err := ChineseAmount(summary.TotalSpent); err != nil {
			w.logger.Warn("Skipping capitalized total", zap.Error(err), zap.String("total", summary.TotalSpent.String()))
		} else {
			w.setRow(f, summarySheet, 6, "已花费(大写)", capital)
		}
	}

	w.setRow(f, summarySheet, 8, "类别", "金额")
	_ = f.SetCellStyle(summarySheet, "A8", "B8", headerStyle)
	for i, c := range entity.AllCategories {
		w.setRow(f, summarySheet, 9+i, c.Label(), summary.ByCategory[c].InexactFloat64())
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("Expense workbook generated",
		zap.Int64("trip_id", trip.ID),
		zap.Int("rows", len(expenses)))
	return buf.Bytes(), nil
}

func (w *ExpenseWorkbook) setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		w.setCell(f, sheet, cell(string(rune('A'+i)), row), v)
	}
}

// setCell sets a cell value, logging instead of failing the export
func (w *ExpenseWorkbook) setCell(f *excelize.File, sheet, ref string, value interface{}) {
	if err := f.SetCellValue(sheet, ref, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", ref),
			zap.Error(err))
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// Verify interface compliance
var _ port.ExpenseExporter = (*ExpenseWorkbook)(nil)
