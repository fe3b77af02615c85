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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const tripColumns = `
	id, user_id, title, destination, start_date, duration_days, budget,
	travel_style, traveler_count, preferences, special_requirements,
	budget_breakdown, status, created_at, updated_at`

// TripRepository implements port.TripRepository
type TripRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB, logger *zap.Logger) port.TripRepository {
	return &TripRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a trip and sets its ID and timestamps
func (r *TripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	prefs, breakdown, err := encodeTripColumns(trip)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	query := `
		INSERT INTO trips (
			user_id, title, destination, start_date, duration_days, budget,
			travel_style, traveler_count, preferences, special_requirements,
			budget_breakdown, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		trip.UserID,
		trip.Title,
		trip.Destination,
		nullTime(trip.StartDate),
		trip.DurationDays,
		trip.Budget,
		string(trip.TravelStyle),
		trip.TravelerCount,
		prefs,
		trip.SpecialRequirements,
		breakdown,
		trip.Status,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create trip", zap.String("user_id", trip.UserID), zap.Error(err))
		return fmt.Errorf("failed to create trip: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	trip.ID = id
	return nil
}

// GetByID retrieves a trip without its daily plans
func (r *TripRepository) GetByID(ctx context.Context, id int64) (*entity.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = ?`

	trip, err := scanTrip(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get trip", zap.Int64("trip_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// ListByUser returns the user's trips, newest first
func (r *TripRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Trip, error) {
	query := `SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list trips", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := make([]*entity.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Update overwrites the editable fields of a trip
func (r *TripRepository) Update(ctx context.Context, trip *entity.Trip) error {
	prefs, breakdown, err := encodeTripColumns(trip)
	if err != nil {
		return err
	}

	trip.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE trips SET
			title = ?, destination = ?, start_date = ?, duration_days = ?, budget = ?,
			travel_style = ?, traveler_count = ?, preferences = ?, special_requirements = ?,
			budget_breakdown = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		trip.Title,
		trip.Destination,
		nullTime(trip.StartDate),
		trip.DurationDays,
		trip.Budget,
		string(trip.TravelStyle),
		trip.TravelerCount,
		prefs,
		trip.SpecialRequirements,
		breakdown,
		trip.Status,
		trip.UpdatedAt,
		trip.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update trip", zap.Int64("trip_id", trip.ID), zap.Error(err))
		return fmt.Errorf("failed to update trip: %w", err)
	}

	return requireAffected(result, "trip", trip.ID)
}

// Delete removes a trip with its daily plans and expenses
func (r *TripRepository) Delete(ctx context.Context, id int64) error {
	exec := sqlite.ExecutorFor(ctx, r.db)

	for _, query := range []string{
		`DELETE FROM expenses WHERE trip_id = ?`,
		`DELETE FROM daily_plans WHERE trip_id = ?`,
	} {
		if _, err := exec.ExecContext(ctx, query, id); err != nil {
			r.logger.Error("Failed to delete trip children", zap.Int64("trip_id", id), zap.Error(err))
			return fmt.Errorf("failed to delete trip: %w", err)
		}
	}

	result, err := exec.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete trip", zap.Int64("trip_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	return requireAffected(result, "trip", id)
}

func encodeTripColumns(trip *entity.Trip) (prefs, breakdown string, err error) {
	preferences := trip.Preferences
	if preferences == nil {
		preferences = []string{}
	}
	if prefs, err = toJSON(preferences); err != nil {
		return "", "", err
	}

	budgetBreakdown := trip.BudgetBreakdown
	if budgetBreakdown == nil {
		budgetBreakdown = map[entity.ExpenseCategory]decimal.Decimal{}
	}
	if breakdown, err = toJSON(budgetBreakdown); err != nil {
		return "", "", err
	}
	return prefs, breakdown, nil
}

func scanTrip(row rowScanner) (*entity.Trip, error) {
	var (
		trip      entity.Trip
		startDate sql.NullTime
		style     string
		prefs     string
		breakdown string
	)

	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Title,
		&trip.Destination,
		&startDate,
		&trip.DurationDays,
		&trip.Budget,
		&style,
		&trip.TravelerCount,
		&prefs,
		&trip.SpecialRequirements,
		&breakdown,
		&trip.Status,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	trip.StartDate = timePtr(startDate)
	trip.TravelStyle = entity.ParseTravelStyle(style)
	trip.Preferences = []string{}
	if err := fromJSON(prefs, &trip.Preferences); err != nil {
		return nil, err
	}
	if err := fromJSON(breakdown, &trip.BudgetBreakdown); err != nil {
		return nil, err
	}
	return &trip, nil
}

func requireAffected(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, entity.ErrNotFound)
	}
	return nil
}

// Verify interface compliance
var _ port.TripRepository = (*TripRepository)(nil)
