package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	expense.CreatedAt = time.Now().UTC()
	if expense.SpentAt.IsZero() {
		expense.SpentAt = expense.CreatedAt
	}

	query := `
		INSERT INTO expenses (trip_id, user_id, amount, category, description, spent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		expense.TripID,
		expense.UserID,
		expense.Amount,
		string(expense.Category),
		expense.Description,
		expense.SpentAt,
		expense.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Int64("trip_id", expense.TripID), zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	expense.ID = id
	return nil
}

// GetByID retrieves an expense by ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	query := `
		SELECT id, trip_id, user_id, amount, category, description, spent_at, created_at
		FROM expenses
		WHERE id = ?
	`

	expense, err := scanExpense(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.Int64("expense_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListByTrip returns the expenses of a trip in spending order
func (r *ExpenseRepository) ListByTrip(ctx context.Context, tripID int64) ([]*entity.Expense, error) {
	query := `
		SELECT id, trip_id, user_id, amount, category, description, spent_at, created_at
		FROM expenses
		WHERE trip_id = ?
		ORDER BY spent_at ASC, id ASC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, tripID)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Int64("trip_id", tripID), zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*entity.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete expense", zap.Int64("expense_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(result, "expense", id)
}

func scanExpense(row rowScanner) (*entity.Expense, error) {
	var (
		expense  entity.Expense
		category string
	)
	err := row.Scan(
		&expense.ID,
		&expense.TripID,
		&expense.UserID,
		&expense.Amount,
		&category,
		&expense.Description,
		&expense.SpentAt,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.Category = entity.ParseCategory(category)
	return &expense, nil
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
