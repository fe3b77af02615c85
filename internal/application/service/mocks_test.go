package service

import (
	"context"
	"sync"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/domain/parser"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// memTripRepo is an in-memory port.TripRepository
type memTripRepo struct {
	mu     sync.Mutex
	nextID int64
	trips  map[int64]*entity.Trip
}

func newMemTripRepo(trips ...*entity.Trip) *memTripRepo {
	r := &memTripRepo{trips: make(map[int64]*entity.Trip)}
	for _, t := range trips {
		r.trips[t.ID] = t
		if t.ID > r.nextID {
			r.nextID = t.ID
		}
	}
	return r
}

func (r *memTripRepo) Create(ctx context.Context, trip *entity.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	trip.ID = r.nextID
	cp := *trip
	r.trips[trip.ID] = &cp
	return nil
}

func (r *memTripRepo) GetByID(ctx context.Context, id int64) (*entity.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTripRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Trip{}
	for _, t := range r.trips {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTripRepo) Update(ctx context.Context, trip *entity.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[trip.ID]; !ok {
		return entity.ErrNotFound
	}
	cp := *trip
	r.trips[trip.ID] = &cp
	return nil
}

func (r *memTripRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.trips, id)
	return nil
}

type mockPlanRepo struct {
	created   []*entity.DailyPlan
	createErr error
}

func (m *mockPlanRepo) Create(ctx context.Context, plan *entity.DailyPlan) error {
	if m.createErr != nil {
		return m.createErr
	}
	plan.ID = int64(len(m.created) + 1)
	m.created = append(m.created, plan)
	return nil
}

func (m *mockPlanRepo) GetByTripID(ctx context.Context, tripID int64) ([]*entity.DailyPlan, error) {
	out := []*entity.DailyPlan{}
	for _, p := range m.created {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlanRepo) DeleteByTripID(ctx context.Context, tripID int64) error { return nil }

type mockExpenseRepo struct {
	expenses map[int64]*entity.Expense
	nextID   int64
}

func newMockExpenseRepo(expenses ...*entity.Expense) *mockExpenseRepo {
	m := &mockExpenseRepo{expenses: make(map[int64]*entity.Expense)}
	for _, e := range expenses {
		m.expenses[e.ID] = e
		if e.ID > m.nextID {
			m.nextID = e.ID
		}
	}
	return m
}

func (m *mockExpenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	m.nextID++
	e.ID = m.nextID
	m.expenses[e.ID] = e
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return e, nil
}

func (m *mockExpenseRepo) ListByTrip(ctx context.Context, tripID int64) ([]*entity.Expense, error) {
	out := []*entity.Expense{}
	for id := int64(1); id <= m.nextID; id++ {
		if e, ok := m.expenses[id]; ok && e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExpenseRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.expenses[id]; !ok {
		return entity.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

type mockSettingsRepo struct {
	settings map[string]*entity.UserSettings
	getErr   error
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{settings: make(map[string]*entity.UserSettings)}
}

func (m *mockSettingsRepo) Get(ctx context.Context, userID string) (*entity.UserSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.settings[userID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, s *entity.UserSettings) error {
	cp := *s
	m.settings[s.UserID] = &cp
	return nil
}

// mockTxManager runs fn directly
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// mockExtractor answers with the heuristic and a configurable generator
type mockExtractor struct {
	generator port.ItineraryGenerator
	lastCreds port.LLMCredentials
}

func (m *mockExtractor) ExtractExpense(ctx context.Context, userID string, creds port.LLMCredentials, text string) (*entity.ExpenseDraft, error) {
	m.lastCreds = creds
	return parser.NewHeuristic().ExtractExpense(ctx, text)
}

func (m *mockExtractor) ExtractTripRequest(ctx context.Context, userID string, creds port.LLMCredentials, text string) (*entity.TripRequestDraft, error) {
	m.lastCreds = creds
	return parser.NewHeuristic().ExtractTripRequest(ctx, text)
}

func (m *mockExtractor) ItineraryGenerator(creds port.LLMCredentials) port.ItineraryGenerator {
	m.lastCreds = creds
	return m.generator
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, req *entity.TripRequestDraft) (*entity.Itinerary, error)
}

func (m *mockGenerator) GenerateItinerary(ctx context.Context, req *entity.TripRequestDraft) (*entity.Itinerary, error) {
	return m.generateFunc(ctx, req)
}

type mockGeocoder struct {
	key      string
	resolved int
}

func (m *mockGeocoder) Geocode(ctx context.Context, address, city string) (*port.GeoPoint, error) {
	return &port.GeoPoint{Latitude: 30.6, Longitude: 104.0, FormattedAddress: address, City: city}, nil
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*port.GeoPoint, error) {
	return &port.GeoPoint{Latitude: lat, Longitude: lng, FormattedAddress: "somewhere"}, nil
}

func (m *mockGeocoder) WithKey(key string) port.Geocoder {
	m.key = key
	return m
}

func (m *mockGeocoder) GeocodeActivities(ctx context.Context, city string, activities []entity.Activity) int {
	for i := range activities {
		lat, lng := 30.6, 104.0
		activities[i].Latitude = &lat
		activities[i].Longitude = &lng
	}
	m.resolved += len(activities)
	return len(activities)
}

type mockExporter struct {
	expenseSummary *entity.ExpenseSummary
	itineraryTrip  *entity.Trip
}

func (m *mockExporter) ExportExpenses(trip *entity.Trip, expenses []*entity.Expense, summary *entity.ExpenseSummary) ([]byte, error) {
	m.expenseSummary = summary
	return []byte("xlsx"), nil
}

func (m *mockExporter) ExportItinerary(trip *entity.Trip, currency string) ([]byte, error) {
	m.itineraryTrip = trip
	return []byte("%PDF"), nil
}
