package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// DraftExtractor runs the remote-first extraction chain for a request
type DraftExtractor interface {
	ExtractExpense(ctx context.Context, userID string, creds port.LLMCredentials, text string) (*entity.ExpenseDraft, error)
	ExtractTripRequest(ctx context.Context, userID string, creds port.LLMCredentials, text string) (*entity.TripRequestDraft, error)
	// ItineraryGenerator returns nil when no remote model is available
	ItineraryGenerator(creds port.LLMCredentials) port.ItineraryGenerator
}

// ErrEmptyText is returned when an utterance has nothing to parse
var ErrEmptyText = errors.New("text is required")

// loadOwnedTrip fetches a trip and checks it belongs to userID
func loadOwnedTrip(ctx context.Context, trips port.TripRepository, userID string, tripID int64) (*entity.Trip, error) {
	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	if trip.UserID != userID {
		return nil, fmt.Errorf("trip %d: %w", tripID, entity.ErrForbidden)
	}
	return trip, nil
}
