package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestChineseAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "零元整"},
		{"50", "伍拾元整"},
		{"80.5", "捌拾元伍角"},
		{"120.05", "壹佰贰拾元零伍分"},
		{"0.5", "伍角"},
		{"0.05", "伍分"},
		{"1005", "壹仟零伍元整"},
		{"10005", "壹万零伍元整"},
		{"15000", "壹万伍仟元整"},
		{"10000500", "壹仟万零伍佰元整"},
		{"100000000", "壹亿元整"},
		{"100001000", "壹亿零壹仟元整"},
		{"1234.567", "壹仟贰佰叁拾肆元伍角柒分"},
		{"-3", "负叁元整"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ChineseAmount(decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChineseAmount_OutOfRange(t *testing.T) {
	got, err := ChineseAmount(decimal.RequireFromString("9999999999999999.99"))
	require.NoError(t, err)
	assert.Equal(t, "玖仟玖佰玖拾玖万亿玖仟玖佰玖拾玖亿玖仟玖佰玖拾玖万玖仟玖佰玖拾玖元玖角玖分", got)

	for _, amount := range []string{"10000000000000000", "9999999999999999.999", "1e30", "-1e20"} {
		_, err := ChineseAmount(decimal.RequireFromString(amount))
		assert.ErrorIs(t, err, ErrAmountOutOfRange, amount)
	}
}

func sampleTrip() *entity.Trip {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return &entity.Trip{
		ID:            1,
		Title:         "Chengdu food trip",
		Destination:   "成都",
		StartDate:     &start,
		DurationDays:  2,
		Budget:        decimal.NewFromInt(3000),
		TravelerCount: 2,
		Preferences:   []string{"美食"},
		BudgetBreakdown: map[entity.ExpenseCategory]decimal.Decimal{
			entity.CategoryFood: decimal.NewFromInt(800),
		},
		DailyPlans: []*entity.DailyPlan{
			{DayNumber: 1, Title: "Old town", Date: &start, Activities: []entity.Activity{
				{Time: "09:00", Name: "Kuanzhai Alley", Description: "walk", EstimatedCost: decimal.NewFromInt(30)},
			}},
			{DayNumber: 2, Title: "Pandas", Activities: []entity.Activity{}},
		},
	}
}

func TestExpenseWorkbook_ExportExpenses(t *testing.T) {
	trip := sampleTrip()
	spent := time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)
	expenses := []*entity.Expense{
		{ID: 1, TripID: 1, Amount: decimal.NewFromInt(50), Category: entity.CategoryTransport, Description: "打车", SpentAt: spent},
		{ID: 2, TripID: 1, Amount: decimal.RequireFromString("80.5"), Category: entity.CategoryShopping, Description: "纪念品", SpentAt: spent},
	}
	summary := &entity.ExpenseSummary{
		TripID:     1,
		Currency:   "CNY",
		Budget:     trip.Budget,
		TotalSpent: decimal.RequireFromString("130.5"),
		Remaining:  decimal.RequireFromString("2869.5"),
		ByCategory: map[entity.ExpenseCategory]decimal.Decimal{
			entity.CategoryTransport: decimal.NewFromInt(50),
			entity.CategoryShopping:  decimal.RequireFromString("80.5"),
		},
		Count: 2,
	}

	data, err := NewExpenseWorkbook(zap.NewNop()).ExportExpenses(trip, expenses, summary)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{detailSheet, summarySheet}, f.GetSheetList())

	v, err := f.GetCellValue(detailSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "交通", v)

	v, err = f.GetCellValue(detailSheet, "D3")
	require.NoError(t, err)
	assert.Equal(t, "80.5", v)

	v, err = f.GetCellValue(detailSheet, "D4")
	require.NoError(t, err)
	assert.Equal(t, "130.5", v)

	v, err = f.GetCellValue(summarySheet, "B6")
	require.NoError(t, err)
	assert.Equal(t, "壹佰叁拾元伍角", v)

	v, err = f.GetCellValue(summarySheet, "A13")
	require.NoError(t, err)
	assert.Equal(t, "购物", v)
}

func TestItineraryPDF_ExportItinerary(t *testing.T) {
	data, err := NewItineraryPDF("", zap.NewNop()).ExportItinerary(sampleTrip(), "CNY")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Greater(t, len(data), 500)
}

func TestItineraryPDF_MissingFont(t *testing.T) {
	_, err := NewItineraryPDF("/nonexistent/font.ttf", zap.NewNop()).ExportItinerary(sampleTrip(), "CNY")
	assert.Error(t, err)
}

func TestActivityLine(t *testing.T) {
	line := activityLine(entity.Activity{
		Time:          "12:00",
		Name:          "火锅",
		Location:      "春熙路",
		EstimatedCost: decimal.NewFromInt(150),
	}, "CNY")
	assert.Equal(t, "12:00  火锅 @ 春熙路  (150 CNY)", line)
}
