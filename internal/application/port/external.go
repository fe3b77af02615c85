package port

import (
	"context"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
)

// ExpenseExtractor turns an utterance into an expense draft
type ExpenseExtractor interface {
	ExtractExpense(ctx context.Context, text string) (*entity.ExpenseDraft, error)
}

// TripRequestExtractor turns an utterance into a trip request draft
type TripRequestExtractor interface {
	ExtractTripRequest(ctx context.Context, text string) (*entity.TripRequestDraft, error)
}

// ItineraryGenerator produces a day-by-day plan for a trip request
type ItineraryGenerator interface {
	GenerateItinerary(ctx context.Context, req *entity.TripRequestDraft) (*entity.Itinerary, error)
}

// LLMClient is a remote model able to do every structured call
type LLMClient interface {
	ExpenseExtractor
	TripRequestExtractor
	ItineraryGenerator
}

// LLMCredentials selects the remote model for one call
type LLMCredentials struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LLMClientFactory builds a client for the given credentials.
// Callers only ask for a client once an API key has been resolved.
type LLMClientFactory interface {
	NewClient(creds LLMCredentials) LLMClient
}

// GeoPoint is a geocoding result
type GeoPoint struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	City             string  `json:"city,omitempty"`
}

// Geocoder resolves addresses to coordinates and back
type Geocoder interface {
	Geocode(ctx context.Context, address, city string) (*GeoPoint, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeoPoint, error)
	// GeocodeActivities fills coordinates of activities in place, skipping
	// ones that fail, and returns how many were resolved
	GeocodeActivities(ctx context.Context, city string, activities []entity.Activity) int
	// WithKey returns a geocoder using the given API key, or the receiver when key is empty
	WithKey(key string) Geocoder
}

// ExpenseExporter renders a trip's expenses as a spreadsheet
type ExpenseExporter interface {
	ExportExpenses(trip *entity.Trip, expenses []*entity.Expense, summary *entity.ExpenseSummary) ([]byte, error)
}

// ItineraryExporter renders a trip itinerary as a printable document
type ItineraryExporter interface {
	ExportItinerary(trip *entity.Trip, currency string) ([]byte, error)
}
