package service

import (
	"context"
	"testing"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/domain/parser"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpenseFixture(expenses ...*entity.Expense) (ExpenseService, *mockExpenseRepo, *mockExporter, *mockExtractor) {
	trips := newMemTripRepo(
		&entity.Trip{ID: 1, UserID: "u1", Destination: "成都", Budget: decimal.NewFromInt(100)},
		&entity.Trip{ID: 2, UserID: "u2", Destination: "三亚"},
	)
	repo := newMockExpenseRepo(expenses...)
	exporter := &mockExporter{}
	extractor := &mockExtractor{}
	settings := NewSettingsService(newMockSettingsRepo(), serverKeys, nopLogger{})
	return NewExpenseService(trips, repo, settings, extractor, exporter, nopLogger{}), repo, exporter, extractor
}

func TestExpenseService_ParseExpense(t *testing.T) {
	svc, _, _, extractor := newExpenseFixture()

	draft, err := svc.ParseExpense(context.Background(), "u1", "打车花了50元")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(draft.Amount))
	assert.Equal(t, entity.CategoryTransport, draft.Category)
	assert.Equal(t, serverKeys.LLMAPIKey, extractor.lastCreds.APIKey)
}

func TestExpenseService_ParseExpense_NoAmount(t *testing.T) {
	svc, _, _, _ := newExpenseFixture()

	draft, err := svc.ParseExpense(context.Background(), "u1", "随便说点什么")

	assert.ErrorIs(t, err, parser.ErrNoAmount)
	require.NotNil(t, draft)
	assert.Equal(t, entity.CategoryOther, draft.Category)

	_, err = svc.ParseExpense(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestExpenseService_CreateExpense(t *testing.T) {
	svc, repo, _, _ := newExpenseFixture()
	ctx := context.Background()

	expense, err := svc.CreateExpense(ctx, "u1", 1, &CreateExpenseInput{
		Amount:      decimal.RequireFromString("80.456"),
		Description: "买纪念品",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryShopping, expense.Category)
	assert.Equal(t, "80.46", expense.Amount.String())
	assert.Len(t, repo.expenses, 1)

	expense, err = svc.CreateExpense(ctx, "u1", 1, &CreateExpenseInput{Amount: decimal.NewFromInt(5), Category: "food"})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryFood, expense.Category)
}

func TestExpenseService_CreateExpense_Errors(t *testing.T) {
	svc, _, _, _ := newExpenseFixture()
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		tripID int64
		in     *CreateExpenseInput
		want   error
	}{
		{"zero amount", "u1", 1, &CreateExpenseInput{Amount: decimal.Zero}, entity.ErrInvalidAmount},
		{"negative amount", "u1", 1, &CreateExpenseInput{Amount: decimal.NewFromInt(-3)}, entity.ErrInvalidAmount},
		{"amount above cap", "u1", 1, &CreateExpenseInput{Amount: decimal.New(1, 16)}, entity.ErrInvalidAmount},
		{"unknown category", "u1", 1, &CreateExpenseInput{Amount: decimal.NewFromInt(3), Category: "GAMBLING"}, entity.ErrInvalidCategory},
		{"someone else's trip", "u1", 2, &CreateExpenseInput{Amount: decimal.NewFromInt(3)}, entity.ErrForbidden},
		{"missing trip", "u1", 99, &CreateExpenseInput{Amount: decimal.NewFromInt(3)}, entity.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(ctx, tt.userID, tt.tripID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpenseService_DeleteExpense(t *testing.T) {
	svc, repo, _, _ := newExpenseFixture(
		&entity.Expense{ID: 1, TripID: 1, UserID: "u1", Amount: decimal.NewFromInt(10), Category: entity.CategoryFood},
		&entity.Expense{ID: 2, TripID: 2, UserID: "u2", Amount: decimal.NewFromInt(10), Category: entity.CategoryFood},
	)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteExpense(ctx, "u1", 1, 2), entity.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteExpense(ctx, "u1", 2, 2), entity.ErrForbidden)
	require.NoError(t, svc.DeleteExpense(ctx, "u1", 1, 1))
	assert.NotContains(t, repo.expenses, int64(1))
}

func TestExpenseService_Summary(t *testing.T) {
	svc, _, _, _ := newExpenseFixture(
		&entity.Expense{ID: 1, TripID: 1, Amount: decimal.NewFromInt(50), Category: entity.CategoryTransport},
		&entity.Expense{ID: 2, TripID: 1, Amount: decimal.RequireFromString("30.5"), Category: entity.CategoryFood},
		&entity.Expense{ID: 3, TripID: 1, Amount: decimal.NewFromInt(40), Category: entity.CategoryFood},
	)

	summary, err := svc.Summary(context.Background(), "u1", 1)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, "120.5", summary.TotalSpent.String())
	assert.Equal(t, "-20.5", summary.Remaining.String())
	assert.True(t, summary.OverBudget)
	assert.Equal(t, "70.5", summary.ByCategory[entity.CategoryFood].String())
	assert.True(t, summary.ByCategory[entity.CategoryShopping].IsZero())
	assert.Len(t, summary.ByCategory, len(entity.AllCategories))
	assert.Equal(t, entity.DefaultCurrency, summary.Currency)
}

func TestSummarize_NoBudget(t *testing.T) {
	summary := Summarize(&entity.Trip{ID: 1}, []*entity.Expense{
		{Amount: decimal.NewFromInt(10), Category: entity.CategoryOther},
	}, "CNY")

	assert.False(t, summary.OverBudget)
	assert.Equal(t, "-10", summary.Remaining.String())
}

func TestExpenseService_ExportExpenses(t *testing.T) {
	svc, _, exporter, _ := newExpenseFixture(
		&entity.Expense{ID: 1, TripID: 1, Amount: decimal.NewFromInt(50), Category: entity.CategoryTransport},
	)

	data, err := svc.ExportExpenses(context.Background(), "u1", 1)

	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	require.NotNil(t, exporter.expenseSummary)
	assert.Equal(t, "50", exporter.expenseSummary.TotalSpent.String())
}
