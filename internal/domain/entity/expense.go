package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxExpenseAmount caps a single expense; larger values are input mistakes
var MaxExpenseAmount = decimal.NewFromInt(100_000_000)

// ValidAmount reports whether amount is positive and within MaxExpenseAmount
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.LessThanOrEqual(MaxExpenseAmount)
}

// ExpenseDraft is an expense extracted from one utterance, pending user confirmation.
// It is never persisted on its own.
type ExpenseDraft struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"source"`
}

// Validate checks the draft invariants
func (d *ExpenseDraft) Validate() error {
	if !ValidAmount(d.Amount) {
		return ErrInvalidAmount
	}
	if !d.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Expense is a confirmed, persisted expense on a trip
type Expense struct {
	ID          int64           `json:"id"`
	TripID      int64           `json:"trip_id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description"`
	SpentAt     time.Time       `json:"spent_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ExpenseSummary aggregates the expenses of a trip against its budget
type ExpenseSummary struct {
	TripID     int64                               `json:"trip_id"`
	Currency   string                              `json:"currency"`
	Budget     decimal.Decimal                     `json:"budget"`
	TotalSpent decimal.Decimal                     `json:"total_spent"`
	Remaining  decimal.Decimal                     `json:"remaining"`
	ByCategory map[ExpenseCategory]decimal.Decimal `json:"by_category"`
	Count      int                                 `json:"count"`
	OverBudget bool                                `json:"over_budget"`
}
