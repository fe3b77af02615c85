package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/domain/workflow"
	"github.com/garyjia/ai-travel-planner/pkg/utils"
	"github.com/shopspring/decimal"
)

const (
	defaultTripDays = 3
	maxTripDays     = 30
	maxListLimit    = 100
)

var tripLifecycle = workflow.TripLifecycle()

// TripInput creates or patches a trip. Nil fields are left unchanged on update.
type TripInput struct {
	Title               *string             `json:"title,omitempty"`
	Destination         *string             `json:"destination,omitempty"`
	StartDate           *time.Time          `json:"start_date,omitempty"`
	DurationDays        *int                `json:"duration_days,omitempty"`
	Budget              *decimal.Decimal    `json:"budget,omitempty"`
	TravelStyle         *entity.TravelStyle `json:"travel_style,omitempty"`
	TravelerCount       *int                `json:"traveler_count,omitempty"`
	Preferences         []string            `json:"preferences,omitempty"`
	SpecialRequirements *string             `json:"special_requirements,omitempty"`
	Status              *string             `json:"status,omitempty"`
}

// PlanTripInput asks for a generated itinerary
type PlanTripInput struct {
	Request   entity.TripRequestDraft `json:"request"`
	StartDate *time.Time              `json:"start_date,omitempty"`
}

// TripOptions tunes itinerary generation
type TripOptions struct {
	ItineraryTimeout time.Duration
}

// TripService manages trips and their itineraries
type TripService interface {
	ParseTripRequest(ctx context.Context, userID, text string) (*entity.TripRequestDraft, error)
	PlanTrip(ctx context.Context, userID string, in *PlanTripInput) (*entity.Trip, error)
	CreateTrip(ctx context.Context, userID string, in *TripInput) (*entity.Trip, error)
	GetTrip(ctx context.Context, userID string, tripID int64) (*entity.Trip, error)
	ListTrips(ctx context.Context, userID string, limit, offset int) ([]*entity.Trip, error)
	UpdateTrip(ctx context.Context, userID string, tripID int64, in *TripInput) (*entity.Trip, error)
	DeleteTrip(ctx context.Context, userID string, tripID int64) error
	ExportItinerary(ctx context.Context, userID string, tripID int64) ([]byte, error)
}

type tripServiceImpl struct {
	trips     port.TripRepository
	plans     port.DailyPlanRepository
	txManager port.TransactionManager
	settings  SettingsService
	extractor DraftExtractor
	geocoder  port.Geocoder
	exporter  port.ItineraryExporter
	opts      TripOptions
	logger    Logger
}

// NewTripService creates a new TripService. geocoder may be nil.
func NewTripService(
	trips port.TripRepository,
	plans port.DailyPlanRepository,
	txManager port.TransactionManager,
	settings SettingsService,
	extractor DraftExtractor,
	geocoder port.Geocoder,
	exporter port.ItineraryExporter,
	opts TripOptions,
	logger Logger,
) TripService {
	if opts.ItineraryTimeout <= 0 {
		opts.ItineraryTimeout = 60 * time.Second
	}
	return &tripServiceImpl{
		trips:     trips,
		plans:     plans,
		txManager: txManager,
		settings:  settings,
		extractor: extractor,
		geocoder:  geocoder,
		exporter:  exporter,
		opts:      opts,
		logger:    logger,
	}
}

// ParseTripRequest extracts a trip request draft from an utterance
func (s *tripServiceImpl) ParseTripRequest(ctx context.Context, userID, text string) (*entity.TripRequestDraft, error) {
	text = utils.SanitizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	keys, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	draft, err := s.extractor.ExtractTripRequest(ctx, userID, keys.LLM, text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Trip request parsed",
		"user_id", userID,
		"source", draft.Source,
		"destination", draft.Destination)
	return draft, nil
}

// PlanTrip generates an itinerary, geocodes its activities and persists the
// trip with its daily plans in one transaction. Without a usable model the
// trip is saved as a draft with empty days.
func (s *tripServiceImpl) PlanTrip(ctx context.Context, userID string, in *PlanTripInput) (*entity.Trip, error) {
	req := in.Request
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" {
		return nil, fmt.Errorf("destination is required: %w", entity.ErrInvalidTrip)
	}
	if req.BudgetAmount.IsNegative() {
		return nil, entity.ErrInvalidAmount
	}

	keys, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DurationDays <= 0 {
		req.DurationDays = defaultTripDays
	}
	if req.DurationDays > maxTripDays {
		return nil, fmt.Errorf("trip longer than %d days: %w", maxTripDays, entity.ErrInvalidTrip)
	}
	if req.TravelerCount <= 0 {
		req.TravelerCount = 1
	}
	if req.TravelStyle == "" {
		req.TravelStyle = keys.Style
	}

	itinerary, status := s.generate(ctx, userID, keys, &req)

	if s.geocoder != nil && keys.MapAPIKey != "" {
		geocoder := s.geocoder.WithKey(keys.MapAPIKey)
		for _, day := range itinerary.Days {
			geocoder.GeocodeActivities(ctx, req.Destination, day.Activities)
		}
	}

	trip := &entity.Trip{
		UserID:              userID,
		Title:               itinerary.Title,
		Destination:         req.Destination,
		StartDate:           in.StartDate,
		DurationDays:        req.DurationDays,
		Budget:              req.BudgetAmount,
		TravelStyle:         req.TravelStyle,
		TravelerCount:       req.TravelerCount,
		Preferences:         req.Preferences,
		SpecialRequirements: req.SpecialRequirements,
		BudgetBreakdown:     itinerary.BudgetBreakdown,
		Status:              status,
	}
	if trip.Title == "" {
		trip.Title = fmt.Sprintf("%s%d日游", req.Destination, req.DurationDays)
	}

	for _, day := range itinerary.Days {
		if in.StartDate != nil {
			date := in.StartDate.AddDate(0, 0, day.DayNumber-1)
			day.Date = &date
		}
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.trips.Create(ctx, trip); err != nil {
			return err
		}
		for _, day := range itinerary.Days {
			day.TripID = trip.ID
			if err := s.plans.Create(ctx, day); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save planned trip", "error", err, "user_id", userID)
		return nil, fmt.Errorf("save trip: %w", err)
	}

	trip.DailyPlans = itinerary.Days
	s.logger.Info("Trip planned",
		"trip_id", trip.ID,
		"user_id", userID,
		"destination", trip.Destination,
		"days", len(trip.DailyPlans),
		"status", trip.Status)
	return trip, nil
}

// generate calls the remote model, falling back to an empty day skeleton
func (s *tripServiceImpl) generate(ctx context.Context, userID string, keys *ResolvedKeys, req *entity.TripRequestDraft) (*entity.Itinerary, string) {
	if keys.LLM.APIKey != "" {
		if generator := s.extractor.ItineraryGenerator(keys.LLM); generator != nil {
			genCtx, cancel := context.WithTimeout(ctx, s.opts.ItineraryTimeout)
			defer cancel()

			itinerary, err := generator.GenerateItinerary(genCtx, req)
			if err == nil {
				return normalizeItinerary(itinerary, req.DurationDays), entity.TripStatusPlanned
			}
			s.logger.Warn("Itinerary generation failed, saving skeleton",
				"error", err,
				"user_id", userID,
				"destination", req.Destination)
		}
	}
	return skeletonItinerary(req.DurationDays), entity.TripStatusDraft
}

// normalizeItinerary keeps days within the trip length and numbers them uniquely
func normalizeItinerary(it *entity.Itinerary, days int) *entity.Itinerary {
	seen := make(map[int]bool, len(it.Days))
	kept := make([]*entity.DailyPlan, 0, len(it.Days))
	for _, day := range it.Days {
		if day == nil || day.DayNumber < 1 || day.DayNumber > days || seen[day.DayNumber] {
			continue
		}
		seen[day.DayNumber] = true
		kept = append(kept, day)
	}
	it.Days = kept
	if it.BudgetBreakdown == nil {
		it.BudgetBreakdown = map[entity.ExpenseCategory]decimal.Decimal{}
	}
	return it
}

func skeletonItinerary(days int) *entity.Itinerary {
	it := &entity.Itinerary{
		Days:            make([]*entity.DailyPlan, 0, days),
		BudgetBreakdown: map[entity.ExpenseCategory]decimal.Decimal{},
	}
	for d := 1; d <= days; d++ {
		it.Days = append(it.Days, &entity.DailyPlan{
			DayNumber:  d,
			Title:      fmt.Sprintf("第%d天", d),
			Activities: []entity.Activity{},
		})
	}
	return it
}

// CreateTrip saves a manually entered trip
func (s *tripServiceImpl) CreateTrip(ctx context.Context, userID string, in *TripInput) (*entity.Trip, error) {
	keys, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	trip := &entity.Trip{
		UserID:        userID,
		TravelStyle:   keys.Style,
		TravelerCount: 1,
		Status:        entity.TripStatusDraft,
		Preferences:   []string{},
	}
	if err := applyTripInput(trip, in); err != nil {
		return nil, err
	}
	if trip.Title == "" {
		trip.Title = trip.Destination
	}

	if err := s.trips.Create(ctx, trip); err != nil {
		s.logger.Error("Failed to create trip", "error", err, "user_id", userID)
		return nil, fmt.Errorf("create trip: %w", err)
	}

	s.logger.Info("Trip created", "trip_id", trip.ID, "user_id", userID)
	return trip, nil
}

// GetTrip returns a trip with its daily plans
func (s *tripServiceImpl) GetTrip(ctx context.Context, userID string, tripID int64) (*entity.Trip, error) {
	trip, err := loadOwnedTrip(ctx, s.trips, userID, tripID)
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("get daily plans: %w", err)
	}
	trip.DailyPlans = plans
	return trip, nil
}

// ListTrips returns the user's trips, newest first
func (s *tripServiceImpl) ListTrips(ctx context.Context, userID string, limit, offset int) ([]*entity.Trip, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	trips, err := s.trips.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

// UpdateTrip patches a trip owned by the user
func (s *tripServiceImpl) UpdateTrip(ctx context.Context, userID string, tripID int64, in *TripInput) (*entity.Trip, error) {
	trip, err := loadOwnedTrip(ctx, s.trips, userID, tripID)
	if err != nil {
		return nil, err
	}
	if err := applyTripInput(trip, in); err != nil {
		return nil, err
	}
	if err := s.trips.Update(ctx, trip); err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}

	s.logger.Info("Trip updated", "trip_id", tripID, "user_id", userID)
	return trip, nil
}

// DeleteTrip removes a trip with its plans and expenses
func (s *tripServiceImpl) DeleteTrip(ctx context.Context, userID string, tripID int64) error {
	if _, err := loadOwnedTrip(ctx, s.trips, userID, tripID); err != nil {
		return err
	}
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.trips.Delete(ctx, tripID)
	})
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}

	s.logger.Info("Trip deleted", "trip_id", tripID, "user_id", userID)
	return nil
}

// ExportItinerary renders the trip itinerary as a PDF
func (s *tripServiceImpl) ExportItinerary(ctx context.Context, userID string, tripID int64) ([]byte, error) {
	trip, err := s.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	keys, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.ExportItinerary(trip, keys.Currency)
	if err != nil {
		s.logger.Error("Failed to export itinerary", "error", err, "trip_id", tripID)
		return nil, fmt.Errorf("export itinerary: %w", err)
	}
	return data, nil
}

// applyTripInput copies set fields onto trip and validates the result
func applyTripInput(trip *entity.Trip, in *TripInput) error {
	if in.Title != nil {
		trip.Title = strings.TrimSpace(*in.Title)
	}
	if in.Destination != nil {
		trip.Destination = strings.TrimSpace(*in.Destination)
	}
	if in.StartDate != nil {
		start := in.StartDate.UTC()
		trip.StartDate = &start
	}
	if in.DurationDays != nil {
		if *in.DurationDays > maxTripDays {
			return fmt.Errorf("trip longer than %d days: %w", maxTripDays, entity.ErrInvalidTrip)
		}
		trip.DurationDays = *in.DurationDays
	}
	if in.Budget != nil {
		trip.Budget = *in.Budget
	}
	if in.TravelStyle != nil {
		trip.TravelStyle = entity.ParseTravelStyle(string(*in.TravelStyle))
	}
	if in.TravelerCount != nil {
		trip.TravelerCount = *in.TravelerCount
	}
	if in.Preferences != nil {
		trip.Preferences = in.Preferences
	}
	if in.SpecialRequirements != nil {
		trip.SpecialRequirements = strings.TrimSpace(*in.SpecialRequirements)
	}
	if in.Status != nil {
		if err := tripLifecycle.MoveTo(trip, workflow.State(*in.Status)); err != nil {
			return fmt.Errorf("%w: %w", entity.ErrInvalidTrip, err)
		}
	}
	return trip.Validate()
}
