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

// SettingsRepository implements port.SettingsRepository
type SettingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB, logger *zap.Logger) port.SettingsRepository {
	return &SettingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns the user's saved settings
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*entity.UserSettings, error) {
	query := `
		SELECT user_id, llm_api_key, llm_base_url, llm_model, map_api_key,
			currency, default_travel_style, updated_at
		FROM user_settings
		WHERE user_id = ?
	`

	var (
		s     entity.UserSettings
		style string
	)
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(
		&s.UserID,
		&s.LLMAPIKey,
		&s.LLMBaseURL,
		&s.LLMModel,
		&s.MapAPIKey,
		&s.Currency,
		&style,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings for %s: %w", userID, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get settings", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	s.DefaultTravelStyle = entity.ParseTravelStyle(style)
	return &s, nil
}

// Upsert saves the user's settings
func (r *SettingsRepository) Upsert(ctx context.Context, s *entity.UserSettings) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO user_settings (
			user_id, llm_api_key, llm_base_url, llm_model, map_api_key,
			currency, default_travel_style, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			llm_api_key = excluded.llm_api_key,
			llm_base_url = excluded.llm_base_url,
			llm_model = excluded.llm_model,
			map_api_key = excluded.map_api_key,
			currency = excluded.currency,
			default_travel_style = excluded.default_travel_style,
			updated_at = excluded.updated_at
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		s.UserID,
		s.LLMAPIKey,
		s.LLMBaseURL,
		s.LLMModel,
		s.MapAPIKey,
		s.Currency,
		string(s.DefaultTravelStyle),
		s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save settings", zap.String("user_id", s.UserID), zap.Error(err))
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.SettingsRepository = (*SettingsRepository)(nil)
