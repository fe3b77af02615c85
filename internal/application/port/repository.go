package port

import (
	"context"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
)

// UserRepository defines persistence operations for User
type UserRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// TripRepository defines persistence operations for Trip
type TripRepository interface {
	Create(ctx context.Context, trip *entity.Trip) error
	GetByID(ctx context.Context, id int64) (*entity.Trip, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Trip, error)
	Update(ctx context.Context, trip *entity.Trip) error
	// Delete removes the trip together with its daily plans and expenses
	Delete(ctx context.Context, id int64) error
}

// DailyPlanRepository defines persistence operations for DailyPlan
type DailyPlanRepository interface {
	Create(ctx context.Context, plan *entity.DailyPlan) error
	GetByTripID(ctx context.Context, tripID int64) ([]*entity.DailyPlan, error)
	DeleteByTripID(ctx context.Context, tripID int64) error
}

// ExpenseRepository defines persistence operations for Expense
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id int64) (*entity.Expense, error)
	ListByTrip(ctx context.Context, tripID int64) ([]*entity.Expense, error)
	Delete(ctx context.Context, id int64) error
}

// SettingsRepository defines persistence operations for UserSettings
type SettingsRepository interface {
	// Get returns entity.ErrNotFound when the user has never saved settings
	Get(ctx context.Context, userID string) (*entity.UserSettings, error)
	Upsert(ctx context.Context, settings *entity.UserSettings) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
