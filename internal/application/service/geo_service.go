package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
)

// ErrGeocodingUnavailable is returned when no map key is configured
var ErrGeocodingUnavailable = errors.New("geocoding is not configured")

// GeoService geocodes with the caller's map key or the server key
type GeoService interface {
	Geocode(ctx context.Context, userID, address, city string) (*port.GeoPoint, error)
	ReverseGeocode(ctx context.Context, userID string, lat, lng float64) (*port.GeoPoint, error)
}

type geoServiceImpl struct {
	geocoder port.Geocoder
	settings SettingsService
}

// NewGeoService creates a new GeoService. geocoder may be nil.
func NewGeoService(geocoder port.Geocoder, settings SettingsService) GeoService {
	return &geoServiceImpl{
		geocoder: geocoder,
		settings: settings,
	}
}

func (s *geoServiceImpl) resolve(ctx context.Context, userID string) (port.Geocoder, error) {
	if s.geocoder == nil {
		return nil, ErrGeocodingUnavailable
	}
	keys, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if keys.MapAPIKey == "" {
		return nil, ErrGeocodingUnavailable
	}
	return s.geocoder.WithKey(keys.MapAPIKey), nil
}

// Geocode resolves an address
func (s *geoServiceImpl) Geocode(ctx context.Context, userID, address, city string) (*port.GeoPoint, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("address is required: %w", ErrEmptyText)
	}
	geocoder, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return geocoder.Geocode(ctx, address, city)
}

// ReverseGeocode resolves coordinates
func (s *geoServiceImpl) ReverseGeocode(ctx context.Context, userID string, lat, lng float64) (*port.GeoPoint, error) {
	geocoder, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return geocoder.ReverseGeocode(ctx, lat, lng)
}
