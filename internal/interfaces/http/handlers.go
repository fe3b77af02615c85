package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/ai-travel-planner/internal/application/service"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/domain/parser"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	noAmountMessage = "no amount recognized, please enter the expense manually"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services    Services
	healthCheck func(ctx context.Context) error
	logger      Logger
}

// NewHandlers creates a new Handlers instance. healthCheck may be nil.
func NewHandlers(services Services, healthCheck func(ctx context.Context) error, logger Logger) *Handlers {
	return &Handlers{
		services:    services,
		healthCheck: healthCheck,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ParseRequest is the body of the parse endpoints
type ParseRequest struct {
	Text   string `json:"text" binding:"required"`
	TripID *int64 `json:"trip_id,omitempty"`
}

// ListTripsRequest represents query parameters for listing trips
type ListTripsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// GeocodeRequest represents query parameters for forward geocoding
type GeocodeRequest struct {
	Address string `form:"address" binding:"required"`
	City    string `form:"city"`
}

// ReverseGeocodeRequest represents query parameters for reverse geocoding
type ReverseGeocodeRequest struct {
	Lat *float64 `form:"lat" binding:"required"`
	Lng *float64 `form:"lng" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	if h.healthCheck != nil {
		if err := h.healthCheck(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    response,
				Error:   "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ParseExpense handles POST /api/parse/expense
func (h *Handlers) ParseExpense(c *gin.Context) {
	var req ParseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	// the draft will be posted back to this trip, so reject foreign trips early
	if req.TripID != nil {
		if _, err := h.services.Trips.GetTrip(c.Request.Context(), currentUser(c), *req.TripID); err != nil {
			h.fail(c, err, "failed to load trip")
			return
		}
	}

	draft, err := h.services.Expenses.ParseExpense(c.Request.Context(), currentUser(c), req.Text)
	if errors.Is(err, parser.ErrNoAmount) {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    draft,
			Error:   noAmountMessage,
		})
		return
	}
	if err != nil {
		h.fail(c, err, "failed to parse expense")
		return
	}

	h.ok(c, draft)
}

// ParseTrip handles POST /api/parse/trip
func (h *Handlers) ParseTrip(c *gin.Context) {
	var req ParseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	draft, err := h.services.Trips.ParseTripRequest(c.Request.Context(), currentUser(c), req.Text)
	if err != nil {
		h.fail(c, err, "failed to parse trip request")
		return
	}

	h.ok(c, draft)
}

// ListTrips handles GET /api/trips
func (h *Handlers) ListTrips(c *gin.Context) {
	var req ListTripsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Invalid query parameters", "error", err)
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	trips, err := h.services.Trips.ListTrips(c.Request.Context(), currentUser(c), req.Limit, req.Offset)
	if err != nil {
		h.fail(c, err, "failed to retrieve trips")
		return
	}
	if trips == nil {
		trips = []*entity.Trip{}
	}

	h.ok(c, trips)
}

// CreateTrip handles POST /api/trips
func (h *Handlers) CreateTrip(c *gin.Context) {
	var in service.TripInput
	if !h.bindJSON(c, &in) {
		return
	}

	trip, err := h.services.Trips.CreateTrip(c.Request.Context(), currentUser(c), &in)
	if err != nil {
		h.fail(c, err, "failed to create trip")
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: trip})
}

// PlanTrip handles POST /api/trips/plan
func (h *Handlers) PlanTrip(c *gin.Context) {
	var in service.PlanTripInput
	if !h.bindJSON(c, &in) {
		return
	}

	trip, err := h.services.Trips.PlanTrip(c.Request.Context(), currentUser(c), &in)
	if err != nil {
		h.fail(c, err, "failed to plan trip")
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: trip})
}

// GetTrip handles GET /api/trips/:id
func (h *Handlers) GetTrip(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	trip, err := h.services.Trips.GetTrip(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err, "failed to retrieve trip")
		return
	}

	h.ok(c, trip)
}

// UpdateTrip handles PUT /api/trips/:id
func (h *Handlers) UpdateTrip(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var in service.TripInput
	if !h.bindJSON(c, &in) {
		return
	}

	trip, err := h.services.Trips.UpdateTrip(c.Request.Context(), currentUser(c), id, &in)
	if err != nil {
		h.fail(c, err, "failed to update trip")
		return
	}

	h.ok(c, trip)
}

// DeleteTrip handles DELETE /api/trips/:id
func (h *Handlers) DeleteTrip(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Trips.DeleteTrip(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err, "failed to delete trip")
		return
	}

	h.ok(c, gin.H{"id": id})
}

// ExportItinerary handles GET /api/trips/:id/itinerary.pdf
func (h *Handlers) ExportItinerary(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	data, err := h.services.Trips.ExportItinerary(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err, "failed to export itinerary")
		return
	}

	attachment(c, fmt.Sprintf("trip-%d-itinerary.pdf", id), contentTypePDF, data)
}

// ListExpenses handles GET /api/trips/:id/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	expenses, err := h.services.Expenses.ListExpenses(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err, "failed to retrieve expenses")
		return
	}
	if expenses == nil {
		expenses = []*entity.Expense{}
	}

	h.ok(c, expenses)
}

// CreateExpense handles POST /api/trips/:id/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var in service.CreateExpenseInput
	if !h.bindJSON(c, &in) {
		return
	}

	expense, err := h.services.Expenses.CreateExpense(c.Request.Context(), currentUser(c), id, &in)
	if err != nil {
		h.fail(c, err, "failed to create expense")
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: expense})
}

// DeleteExpense handles DELETE /api/trips/:id/expenses/:expenseId
func (h *Handlers) DeleteExpense(c *gin.Context) {
	tripID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "expenseId")
	if !ok {
		return
	}

	if err := h.services.Expenses.DeleteExpense(c.Request.Context(), currentUser(c), tripID, expenseID); err != nil {
		h.fail(c, err, "failed to delete expense")
		return
	}

	h.ok(c, gin.H{"id": expenseID})
}

// ExpenseSummary handles GET /api/trips/:id/expenses/summary
func (h *Handlers) ExpenseSummary(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	summary, err := h.services.Expenses.Summary(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err, "failed to summarize expenses")
		return
	}

	h.ok(c, summary)
}

// ExportExpenses handles GET /api/trips/:id/expenses/export.xlsx
func (h *Handlers) ExportExpenses(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	data, err := h.services.Expenses.ExportExpenses(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err, "failed to export expenses")
		return
	}

	attachment(c, fmt.Sprintf("trip-%d-expenses.xlsx", id), contentTypeXLSX, data)
}

// GetSettings handles GET /api/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.services.Settings.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err, "failed to load settings")
		return
	}

	h.ok(c, settings)
}

// UpdateSettings handles PUT /api/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var in entity.UserSettings
	if !h.bindJSON(c, &in) {
		return
	}

	settings, err := h.services.Settings.Update(c.Request.Context(), currentUser(c), &in)
	if err != nil {
		h.fail(c, err, "failed to save settings")
		return
	}

	h.ok(c, settings)
}

// Geocode handles GET /api/geocode
func (h *Handlers) Geocode(c *gin.Context) {
	var req GeocodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "address is required")
		return
	}

	point, err := h.services.Geo.Geocode(c.Request.Context(), currentUser(c), req.Address, req.City)
	if err != nil {
		h.fail(c, err, "geocoding failed")
		return
	}

	h.ok(c, point)
}

// ReverseGeocode handles GET /api/geocode/reverse
func (h *Handlers) ReverseGeocode(c *gin.Context) {
	var req ReverseGeocodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "lat and lng are required")
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		h.badRequest(c, "coordinates out of range")
		return
	}

	point, err := h.services.Geo.ReverseGeocode(c.Request.Context(), currentUser(c), *req.Lat, *req.Lng)
	if err != nil {
		h.fail(c, err, "reverse geocoding failed")
		return
	}

	h.ok(c, point)
}

func (h *Handlers) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

func (h *Handlers) bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.logger.Warn("Invalid request body", "path", c.FullPath(), "error", err)
		h.badRequest(c, "invalid request body")
		return false
	}
	return true
}

func (h *Handlers) pathID(c *gin.Context, name string) (int64, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("Invalid path ID", name, idStr)
		h.badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// fail writes the error response for err. Client errors echo the error text,
// server errors use msg.
func (h *Handlers) fail(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error(msg, "path", c.FullPath(), "user_id", currentUser(c), "error", err)
		c.JSON(status, Response{Success: false, Error: msg})
		return
	}

	h.logger.Warn(msg, "path", c.FullPath(), "user_id", currentUser(c), "error", err)
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

// statusFor maps domain and service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrInvalidCategory),
		errors.Is(err, entity.ErrInvalidTrip),
		errors.Is(err, service.ErrInvalidSettings),
		errors.Is(err, service.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, parser.ErrNoAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrGeocodingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
