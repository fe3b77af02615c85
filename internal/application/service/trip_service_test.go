package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/domain/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tripFixture struct {
	svc       TripService
	trips     *memTripRepo
	plans     *mockPlanRepo
	tx        *mockTxManager
	extractor *mockExtractor
	geocoder  *mockGeocoder
	exporter  *mockExporter
}

func newTripFixture(keys ServerKeys, trips ...*entity.Trip) *tripFixture {
	f := &tripFixture{
		trips:     newMemTripRepo(trips...),
		plans:     &mockPlanRepo{},
		tx:        &mockTxManager{},
		extractor: &mockExtractor{},
		geocoder:  &mockGeocoder{},
		exporter:  &mockExporter{},
	}
	settings := NewSettingsService(newMockSettingsRepo(), keys, nopLogger{})
	f.svc = NewTripService(f.trips, f.plans, f.tx, settings, f.extractor, f.geocoder, f.exporter,
		TripOptions{ItineraryTimeout: time.Second}, nopLogger{})
	return f
}

func twoDayItinerary() *entity.Itinerary {
	return &entity.Itinerary{
		Title: "成都美食两日游",
		Days: []*entity.DailyPlan{
			{DayNumber: 1, Title: "市区", Activities: []entity.Activity{
				{Name: "宽窄巷子", Location: "成都市青羊区宽窄巷子", Category: entity.CategorySightseeing},
			}},
			{DayNumber: 2, Title: "熊猫", Activities: []entity.Activity{
				{Name: "大熊猫基地", EstimatedCost: decimal.NewFromInt(55), Category: entity.CategorySightseeing},
			}},
			{DayNumber: 5, Title: "超出行程"},
		},
		BudgetBreakdown: map[entity.ExpenseCategory]decimal.Decimal{entity.CategoryFood: decimal.NewFromInt(600)},
	}
}

func TestTripService_ParseTripRequest(t *testing.T) {
	f := newTripFixture(serverKeys)

	draft, err := f.svc.ParseTripRequest(context.Background(), "u1", "我想去成都玩5天，预算8000元，喜欢美食")

	require.NoError(t, err)
	assert.Equal(t, "成都", draft.Destination)
	assert.Equal(t, 5, draft.DurationDays)
}

func TestTripService_PlanTrip(t *testing.T) {
	f := newTripFixture(serverKeys)
	var gotReq *entity.TripRequestDraft
	f.extractor.generator = &mockGenerator{generateFunc: func(ctx context.Context, req *entity.TripRequestDraft) (*entity.Itinerary, error) {
		gotReq = req
		return twoDayItinerary(), nil
	}}

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	trip, err := f.svc.PlanTrip(context.Background(), "u1", &PlanTripInput{
		Request:   entity.TripRequestDraft{Destination: " 成都 ", DurationDays: 2, BudgetAmount: decimal.NewFromInt(3000)},
		StartDate: &start,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.TripStatusPlanned, trip.Status)
	assert.Equal(t, "成都美食两日游", trip.Title)
	assert.Equal(t, 1, trip.TravelerCount)
	assert.Equal(t, entity.StyleStandard, trip.TravelStyle)
	require.Len(t, trip.DailyPlans, 2)
	assert.True(t, trip.DailyPlans[0].Activities[0].HasCoordinates())
	require.NotNil(t, trip.DailyPlans[1].Date)
	assert.Equal(t, start.AddDate(0, 0, 1), *trip.DailyPlans[1].Date)
	assert.Equal(t, trip.ID, f.plans.created[0].TripID)
	assert.Len(t, f.plans.created, 2)
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, serverKeys.MapAPIKey, f.geocoder.key)
	assert.Equal(t, "成都", gotReq.Destination)
	assert.True(t, decimal.NewFromInt(600).Equal(trip.BudgetBreakdown[entity.CategoryFood]))
}

func TestTripService_PlanTrip_FallsBackToSkeleton(t *testing.T) {
	f := newTripFixture(serverKeys)
	f.extractor.generator = &mockGenerator{generateFunc: func(ctx context.Context, req *entity.TripRequestDraft) (*entity.Itinerary, error) {
		return nil, errors.New("model overloaded")
	}}

	trip, err := f.svc.PlanTrip(context.Background(), "u1", &PlanTripInput{
		Request: entity.TripRequestDraft{Destination: "三亚"},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.TripStatusDraft, trip.Status)
	assert.Equal(t, "三亚3日游", trip.Title)
	require.Len(t, trip.DailyPlans, defaultTripDays)
	assert.Equal(t, "第1天", trip.DailyPlans[0].Title)
}

func TestTripService_PlanTrip_NoKeys(t *testing.T) {
	f := newTripFixture(ServerKeys{})
	f.extractor.generator = &mockGenerator{generateFunc: func(ctx context.Context, req *entity.TripRequestDraft) (*entity.Itinerary, error) {
		t.Fatal("generator must not be called without a key")
		return nil, nil
	}}

	trip, err := f.svc.PlanTrip(context.Background(), "u1", &PlanTripInput{
		Request: entity.TripRequestDraft{Destination: "三亚", DurationDays: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.TripStatusDraft, trip.Status)
	assert.Empty(t, f.geocoder.key)
}

func TestTripService_PlanTrip_Invalid(t *testing.T) {
	f := newTripFixture(serverKeys)
	ctx := context.Background()

	_, err := f.svc.PlanTrip(ctx, "u1", &PlanTripInput{Request: entity.TripRequestDraft{}})
	assert.ErrorIs(t, err, entity.ErrInvalidTrip)

	_, err = f.svc.PlanTrip(ctx, "u1", &PlanTripInput{Request: entity.TripRequestDraft{Destination: "成都", DurationDays: 45}})
	assert.ErrorIs(t, err, entity.ErrInvalidTrip)

	_, err = f.svc.PlanTrip(ctx, "u1", &PlanTripInput{Request: entity.TripRequestDraft{Destination: "成都", BudgetAmount: decimal.NewFromInt(-1)}})
	assert.ErrorIs(t, err, entity.ErrInvalidAmount)
}

func TestTripService_PlanTrip_SaveFails(t *testing.T) {
	f := newTripFixture(ServerKeys{})
	f.plans.createErr = errors.New("constraint failed")

	_, err := f.svc.PlanTrip(context.Background(), "u1", &PlanTripInput{
		Request: entity.TripRequestDraft{Destination: "成都", DurationDays: 1},
	})
	assert.Error(t, err)
}

func TestTripService_CreateAndUpdate(t *testing.T) {
	f := newTripFixture(serverKeys)
	ctx := context.Background()

	dest := "杭州"
	days := 2
	trip, err := f.svc.CreateTrip(ctx, "u1", &TripInput{Destination: &dest, DurationDays: &days})
	require.NoError(t, err)
	assert.Equal(t, "杭州", trip.Title)
	assert.Equal(t, entity.TripStatusDraft, trip.Status)

	status := entity.TripStatusCompleted
	budget := decimal.NewFromInt(2000)
	updated, err := f.svc.UpdateTrip(ctx, "u1", trip.ID, &TripInput{Status: &status, Budget: &budget})
	require.NoError(t, err)
	assert.Equal(t, entity.TripStatusCompleted, updated.Status)
	assert.Equal(t, "杭州", updated.Destination)

	bad := "archived"
	_, err = f.svc.UpdateTrip(ctx, "u1", trip.ID, &TripInput{Status: &bad})
	assert.ErrorIs(t, err, entity.ErrInvalidTrip)

	back := entity.TripStatusDraft
	_, err = f.svc.UpdateTrip(ctx, "u1", trip.ID, &TripInput{Status: &back})
	assert.ErrorIs(t, err, entity.ErrInvalidTrip)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	empty := ""
	_, err = f.svc.UpdateTrip(ctx, "u1", trip.ID, &TripInput{Destination: &empty})
	assert.ErrorIs(t, err, entity.ErrInvalidTrip)

	_, err = f.svc.UpdateTrip(ctx, "u2", trip.ID, &TripInput{Budget: &budget})
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = f.svc.CreateTrip(ctx, "u1", &TripInput{})
	assert.ErrorIs(t, err, entity.ErrInvalidTrip)
}

func TestTripService_GetDeleteExport(t *testing.T) {
	f := newTripFixture(serverKeys, &entity.Trip{ID: 3, UserID: "u1", Destination: "成都"})
	f.plans.created = []*entity.DailyPlan{{ID: 1, TripID: 3, DayNumber: 1}}
	ctx := context.Background()

	trip, err := f.svc.GetTrip(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Len(t, trip.DailyPlans, 1)

	data, err := f.svc.ExportItinerary(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
	assert.Len(t, f.exporter.itineraryTrip.DailyPlans, 1)

	assert.ErrorIs(t, f.svc.DeleteTrip(ctx, "u2", 3), entity.ErrForbidden)
	require.NoError(t, f.svc.DeleteTrip(ctx, "u1", 3))
	_, err = f.svc.GetTrip(ctx, "u1", 3)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestTripService_ListTrips(t *testing.T) {
	f := newTripFixture(serverKeys,
		&entity.Trip{ID: 1, UserID: "u1", Destination: "成都"},
		&entity.Trip{ID: 2, UserID: "u2", Destination: "三亚"},
	)

	trips, err := f.svc.ListTrips(context.Background(), "u1", 0, -5)
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}
