package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/domain/parser"
	"github.com/garyjia/ai-travel-planner/pkg/utils"
	"github.com/shopspring/decimal"
)

// CreateExpenseInput is a confirmed expense, usually a draft posted back
type CreateExpenseInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	SpentAt     *time.Time      `json:"spent_at,omitempty"`
}

// ExpenseService manages trip expenses
type ExpenseService interface {
	ParseExpense(ctx context.Context, userID, text string) (*entity.ExpenseDraft, error)
	CreateExpense(ctx context.Context, userID string, tripID int64, in *CreateExpenseInput) (*entity.Expense, error)
	ListExpenses(ctx context.Context, userID string, tripID int64) ([]*entity.Expense, error)
	DeleteExpense(ctx context.Context, userID string, tripID, expenseID int64) error
	Summary(ctx context.Context, userID string, tripID int64) (*entity.ExpenseSummary, error)
	ExportExpenses(ctx context.Context, userID string, tripID int64) ([]byte, error)
}

type expenseServiceImpl struct {
	trips     port.TripRepository
	expenses  port.ExpenseRepository
	settings  SettingsService
	extractor DraftExtractor
	exporter  port.ExpenseExporter
	logger    Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	trips port.TripRepository,
	expenses port.ExpenseRepository,
	settings SettingsService,
	extractor DraftExtractor,
	exporter port.ExpenseExporter,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		trips:     trips,
		expenses:  expenses,
		settings:  settings,
		extractor: extractor,
		exporter:  exporter,
		logger:    logger,
	}
}

// ParseExpense extracts a draft from an utterance. When no amount is found
// the draft is returned together with parser.ErrNoAmount.
func (s *expenseServiceImpl) ParseExpense(ctx context.Context, userID, text string) (*entity.ExpenseDraft, error) {
	text = utils.SanitizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	keys, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	draft, err := s.extractor.ExtractExpense(ctx, userID, keys.LLM, text)
	if err != nil {
		return draft, err
	}

	s.logger.Info("Expense parsed",
		"user_id", userID,
		"source", draft.Source,
		"category", draft.Category)
	return draft, nil
}

// CreateExpense persists a confirmed expense on a trip owned by the user
func (s *expenseServiceImpl) CreateExpense(ctx context.Context, userID string, tripID int64, in *CreateExpenseInput) (*entity.Expense, error) {
	if _, err := loadOwnedTrip(ctx, s.trips, userID, tripID); err != nil {
		return nil, err
	}

	if !entity.ValidAmount(in.Amount) {
		return nil, fmt.Errorf("amount %s: %w", in.Amount, entity.ErrInvalidAmount)
	}

	description := utils.SanitizeText(in.Description)
	var category entity.ExpenseCategory
	if strings.TrimSpace(in.Category) == "" {
		category = parser.Categorize(description)
	} else {
		category = entity.ExpenseCategory(strings.ToUpper(strings.TrimSpace(in.Category)))
		if !category.Valid() {
			return nil, fmt.Errorf("category %q: %w", in.Category, entity.ErrInvalidCategory)
		}
	}

	expense := &entity.Expense{
		TripID:      tripID,
		UserID:      userID,
		Amount:      in.Amount.Round(2),
		Category:    category,
		Description: description,
	}
	if in.SpentAt != nil {
		expense.SpentAt = in.SpentAt.UTC()
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		s.logger.Error("Failed to create expense", "error", err, "trip_id", tripID)
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.logger.Info("Expense created",
		"expense_id", expense.ID,
		"trip_id", tripID,
		"amount", expense.Amount.String(),
		"category", expense.Category)
	return expense, nil
}

// ListExpenses returns the expenses of a trip
func (s *expenseServiceImpl) ListExpenses(ctx context.Context, userID string, tripID int64) ([]*entity.Expense, error) {
	if _, err := loadOwnedTrip(ctx, s.trips, userID, tripID); err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense of a trip owned by the user
func (s *expenseServiceImpl) DeleteExpense(ctx context.Context, userID string, tripID, expenseID int64) error {
	if _, err := loadOwnedTrip(ctx, s.trips, userID, tripID); err != nil {
		return err
	}

	expense, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}
	if expense.TripID != tripID {
		return fmt.Errorf("expense %d on trip %d: %w", expenseID, tripID, entity.ErrNotFound)
	}

	if err := s.expenses.Delete(ctx, expenseID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.logger.Info("Expense deleted", "expense_id", expenseID, "trip_id", tripID)
	return nil
}

// Summary totals a trip's expenses against its budget
func (s *expenseServiceImpl) Summary(ctx context.Context, userID string, tripID int64) (*entity.ExpenseSummary, error) {
	trip, err := loadOwnedTrip(ctx, s.trips, userID, tripID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	keys, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Summarize(trip, expenses, keys.Currency), nil
}

// ExportExpenses renders the trip's expenses as an xlsx workbook
func (s *expenseServiceImpl) ExportExpenses(ctx context.Context, userID string, tripID int64) ([]byte, error) {
	trip, err := loadOwnedTrip(ctx, s.trips, userID, tripID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	keys, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.ExportExpenses(trip, expenses, Summarize(trip, expenses, keys.Currency))
	if err != nil {
		s.logger.Error("Failed to export expenses", "error", err, "trip_id", tripID)
		return nil, fmt.Errorf("export expenses: %w", err)
	}
	return data, nil
}

// Summarize aggregates expenses by category. Every category is present.
func Summarize(trip *entity.Trip, expenses []*entity.Expense, currency string) *entity.ExpenseSummary {
	summary := &entity.ExpenseSummary{
		TripID:     trip.ID,
		Currency:   currency,
		Budget:     trip.Budget,
		TotalSpent: decimal.Zero,
		ByCategory: make(map[entity.ExpenseCategory]decimal.Decimal, len(entity.AllCategories)),
		Count:      len(expenses),
	}
	for _, c := range entity.AllCategories {
		summary.ByCategory[c] = decimal.Zero
	}

	for _, e := range expenses {
		summary.TotalSpent = summary.TotalSpent.Add(e.Amount)
		summary.ByCategory[e.Category] = summary.ByCategory[e.Category].Add(e.Amount)
	}

	summary.Remaining = trip.Budget.Sub(summary.TotalSpent)
	summary.OverBudget = trip.Budget.IsPositive() && summary.Remaining.IsNegative()
	return summary
}
