package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TripRequestDraft is a best-effort trip request extracted from one utterance.
// Any field may be zero-valued.
type TripRequestDraft struct {
	Destination         string          `json:"destination"`
	DurationDays        int             `json:"duration_days"`
	BudgetAmount        decimal.Decimal `json:"budget_amount"`
	TravelStyle         TravelStyle     `json:"travel_style"`
	TravelerCount       int             `json:"traveler_count"`
	Preferences         []string        `json:"preferences"`
	SpecialRequirements string          `json:"special_requirements,omitempty"`
	Source              string          `json:"source"`
}

// Trip is a persisted trip plan
type Trip struct {
	ID                  int64                               `json:"id"`
	UserID              string                              `json:"user_id"`
	Title               string                              `json:"title"`
	Destination         string                              `json:"destination"`
	StartDate           *time.Time                          `json:"start_date,omitempty"`
	DurationDays        int                                 `json:"duration_days"`
	Budget              decimal.Decimal                     `json:"budget"`
	TravelStyle         TravelStyle                         `json:"travel_style"`
	TravelerCount       int                                 `json:"traveler_count"`
	Preferences         []string                            `json:"preferences"`
	SpecialRequirements string                              `json:"special_requirements,omitempty"`
	BudgetBreakdown     map[ExpenseCategory]decimal.Decimal `json:"budget_breakdown,omitempty"`
	Status              string                              `json:"status"`
	CreatedAt           time.Time                           `json:"created_at"`
	UpdatedAt           time.Time                           `json:"updated_at"`

	// Loaded on demand
	DailyPlans []*DailyPlan `json:"daily_plans,omitempty"`
}

// Validate checks the fields required to persist a trip
func (t *Trip) Validate() error {
	if t.Destination == "" {
		return ErrInvalidTrip
	}
	if t.DurationDays < 0 || t.TravelerCount < 0 {
		return ErrInvalidTrip
	}
	if t.Budget.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// DailyPlan is one day of a trip itinerary
type DailyPlan struct {
	ID         int64      `json:"id"`
	TripID     int64      `json:"trip_id"`
	DayNumber  int        `json:"day_number"`
	Date       *time.Time `json:"date,omitempty"`
	Title      string     `json:"title"`
	Activities []Activity `json:"activities"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Activity is a single itinerary stop
type Activity struct {
	Time          string          `json:"time,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Location      string          `json:"location,omitempty"`
	Latitude      *float64        `json:"latitude,omitempty"`
	Longitude     *float64        `json:"longitude,omitempty"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	Category      ExpenseCategory `json:"category"`
}

// HasCoordinates reports whether the activity was geocoded
func (a *Activity) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// Itinerary is the generated plan for a trip request
type Itinerary struct {
	Title           string                              `json:"title"`
	Days            []*DailyPlan                        `json:"days"`
	BudgetBreakdown map[ExpenseCategory]decimal.Decimal `json:"budget_breakdown"`
	Tips            []string                            `json:"tips,omitempty"`
}
