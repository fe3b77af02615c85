package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://restapi.amap.com"
	defaultTimeout   = 5 * time.Second
	defaultRateLimit = 3.0 // requests per second, free AMap tier
	defaultBurst     = 3

	opGeocode = "geocode"
	opReverse = "reverse"
)

var (
	// ErrNoKey is returned when neither server nor user configured a map key
	ErrNoKey = errors.New("map API key not configured")
	// ErrNoResult is returned when the API found nothing for the query
	ErrNoResult = fmt.Errorf("no geocoding result: %w", entity.ErrNotFound)
)

// Recorder counts geocoding calls
type Recorder interface {
	ObserveGeocode(op, status string)
}

// Config configures the AMap client
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// Client is an AMap web service client implementing port.Geocoder.
// Copies made by WithKey share the HTTP client and rate limiter.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	recorder   Recorder
	logger     *zap.Logger
}

// NewClient creates an AMap client. recorder may be nil.
func NewClient(cfg Config, recorder Recorder, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(limit), burst),
		recorder:   recorder,
		logger:     logger,
	}
}

// WithKey returns a client using key, or c itself when key is empty
func (c *Client) WithKey(key string) port.Geocoder {
	if key == "" || key == c.apiKey {
		return c
	}
	clone := *c
	clone.apiKey = key
	return &clone
}

type geocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Geocodes []struct {
		FormattedAddress string          `json:"formatted_address"`
		City             json.RawMessage `json:"city"`
		Location         string          `json:"location"`
	} `json:"geocodes"`
}

type reverseResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Regeocode struct {
		FormattedAddress json.RawMessage `json:"formatted_address"`
		AddressComponent struct {
			City     json.RawMessage `json:"city"`
			Province json.RawMessage `json:"province"`
		} `json:"addressComponent"`
	} `json:"regeocode"`
}

// Geocode resolves an address, optionally scoped to a city
func (c *Client) Geocode(ctx context.Context, address, city string) (*port.GeoPoint, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}

	params := url.Values{}
	params.Set("address", address)
	if city != "" {
		params.Set("city", city)
	}

	var resp geocodeResponse
	if err := c.get(ctx, opGeocode, "/v3/geocode/geo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "1" {
		c.observe(opGeocode, "api_error")
		return nil, fmt.Errorf("geocode failed: %s", resp.Info)
	}
	if len(resp.Geocodes) == 0 {
		c.observe(opGeocode, "no_result")
		return nil, ErrNoResult
	}

	first := resp.Geocodes[0]
	lng, lat, err := parseLocation(first.Location)
	if err != nil {
		c.observe(opGeocode, "api_error")
		return nil, err
	}

	c.observe(opGeocode, "ok")
	return &port.GeoPoint{
		Latitude:         lat,
		Longitude:        lng,
		FormattedAddress: first.FormattedAddress,
		City:             flexString(first.City),
	}, nil
}

// ReverseGeocode resolves coordinates to an address
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*port.GeoPoint, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("coordinates out of range")
	}

	params := url.Values{}
	// AMap takes longitude first
	params.Set("location", strconv.FormatFloat(lng, 'f', 6, 64)+","+strconv.FormatFloat(lat, 'f', 6, 64))

	var resp reverseResponse
	if err := c.get(ctx, opReverse, "/v3/geocode/regeo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "1" {
		c.observe(opReverse, "api_error")
		return nil, fmt.Errorf("reverse geocode failed: %s", resp.Info)
	}

	address := flexString(resp.Regeocode.FormattedAddress)
	if address == "" {
		c.observe(opReverse, "no_result")
		return nil, ErrNoResult
	}

	// municipalities report an empty city and carry the name in province
	city := flexString(resp.Regeocode.AddressComponent.City)
	if city == "" {
		city = flexString(resp.Regeocode.AddressComponent.Province)
	}

	c.observe(opReverse, "ok")
	return &port.GeoPoint{
		Latitude:         lat,
		Longitude:        lng,
		FormattedAddress: address,
		City:             city,
	}, nil
}

// GeocodeActivities geocodes activities one by one. Failures leave the
// activity without coordinates.
func (c *Client) GeocodeActivities(ctx context.Context, city string, activities []entity.Activity) int {
	resolved := 0
	for i := range activities {
		a := &activities[i]
		if a.HasCoordinates() {
			resolved++
			continue
		}
		query := a.Location
		if query == "" {
			query = a.Name
		}
		if query == "" {
			continue
		}

		point, err := c.Geocode(ctx, query, city)
		if err != nil {
			if ctx.Err() != nil {
				return resolved
			}
			c.logger.Debug("Activity not geocoded",
				zap.String("activity", a.Name),
				zap.Error(err))
			continue
		}

		lat, lng := point.Latitude, point.Longitude
		a.Latitude = &lat
		a.Longitude = &lng
		resolved++
	}
	return resolved
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		c.observe(op, "no_key")
		return ErrNoKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.observe(op, "rate_limited")
		return fmt.Errorf("rate limiter error: %w", err)
	}

	params.Set("key", c.apiKey)
	params.Set("output", "JSON")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, "transport_error")
		return fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.observe(op, "transport_error")
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.observe(op, "http_"+strconv.Itoa(resp.StatusCode))
		return fmt.Errorf("geocode API error (%d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.observe(op, "api_error")
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) observe(op, status string) {
	if c.recorder != nil {
		c.recorder.ObserveGeocode(op, status)
	}
}

// parseLocation parses AMap's "lng,lat"
func parseLocation(s string) (lng, lat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid location %q", s)
	}
	if lng, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", parts[0], err)
	}
	if lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", parts[1], err)
	}
	return lng, lat, nil
}

// flexString decodes a field AMap sends either as a string or as an empty array
func flexString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
