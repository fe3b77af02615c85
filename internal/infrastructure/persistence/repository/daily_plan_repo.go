package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// DailyPlanRepository implements port.DailyPlanRepository.
// Activities are stored as a JSON array on the plan row.
type DailyPlanRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDailyPlanRepository creates a new daily plan repository
func NewDailyPlanRepository(db *sql.DB, logger *zap.Logger) port.DailyPlanRepository {
	return &DailyPlanRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a daily plan
func (r *DailyPlanRepository) Create(ctx context.Context, plan *entity.DailyPlan) error {
	activities := plan.Activities
	if activities == nil {
		activities = []entity.Activity{}
	}
	activitiesJSON, err := toJSON(activities)
	if err != nil {
		return err
	}

	plan.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO daily_plans (trip_id, day_number, date, title, activities, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		plan.TripID,
		plan.DayNumber,
		nullTime(plan.Date),
		plan.Title,
		activitiesJSON,
		plan.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create daily plan",
			zap.Int64("trip_id", plan.TripID),
			zap.Int("day", plan.DayNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create daily plan: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	plan.ID = id
	return nil
}

// GetByTripID returns the plans of a trip ordered by day
func (r *DailyPlanRepository) GetByTripID(ctx context.Context, tripID int64) ([]*entity.DailyPlan, error) {
	query := `
		SELECT id, trip_id, day_number, date, title, activities, created_at
		FROM daily_plans
		WHERE trip_id = ?
		ORDER BY day_number ASC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, tripID)
	if err != nil {
		r.logger.Error("Failed to get daily plans", zap.Int64("trip_id", tripID), zap.Error(err))
		return nil, fmt.Errorf("failed to get daily plans: %w", err)
	}
	defer rows.Close()

	plans := make([]*entity.DailyPlan, 0)
	for rows.Next() {
		var (
			plan       entity.DailyPlan
			date       sql.NullTime
			activities string
		)
		if err := rows.Scan(&plan.ID, &plan.TripID, &plan.DayNumber, &date, &plan.Title, &activities, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily plan: %w", err)
		}
		plan.Date = timePtr(date)
		plan.Activities = []entity.Activity{}
		if err := fromJSON(activities, &plan.Activities); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}
	return plans, rows.Err()
}

// DeleteByTripID removes every plan of a trip
func (r *DailyPlanRepository) DeleteByTripID(ctx context.Context, tripID int64) error {
	if _, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, `DELETE FROM daily_plans WHERE trip_id = ?`, tripID); err != nil {
		r.logger.Error("Failed to delete daily plans", zap.Int64("trip_id", tripID), zap.Error(err))
		return fmt.Errorf("failed to delete daily plans: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.DailyPlanRepository = (*DailyPlanRepository)(nil)
