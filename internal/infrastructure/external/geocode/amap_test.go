package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type spyRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (s *spyRecorder) ObserveGeocode(op, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op+":"+status)
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *spyRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	recorder := &spyRecorder{}
	client := NewClient(Config{APIKey: "server-key", BaseURL: srv.URL, RateLimit: 1000, Burst: 100}, recorder, zap.NewNop())
	return client, recorder
}

func TestClient_Geocode(t *testing.T) {
	client, recorder := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/geocode/geo", r.URL.Path)
		assert.Equal(t, "server-key", r.URL.Query().Get("key"))
		assert.Equal(t, "宽窄巷子", r.URL.Query().Get("address"))
		assert.Equal(t, "成都", r.URL.Query().Get("city"))
		_, _ = w.Write([]byte(`{"status":"1","info":"OK","geocodes":[{"formatted_address":"四川省成都市青羊区宽窄巷子","city":"成都市","location":"104.053,30.669"}]}`))
	})

	point, err := client.Geocode(context.Background(), "宽窄巷子", "成都")

	require.NoError(t, err)
	assert.InDelta(t, 30.669, point.Latitude, 1e-9)
	assert.InDelta(t, 104.053, point.Longitude, 1e-9)
	assert.Equal(t, "成都市", point.City)
	assert.Equal(t, []string{"geocode:ok"}, recorder.calls)
}

func TestClient_Geocode_NoResult(t *testing.T) {
	client, recorder := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"1","info":"OK","geocodes":[]}`))
	})

	_, err := client.Geocode(context.Background(), "不存在的地方", "")

	assert.ErrorIs(t, err, ErrNoResult)
	assert.Equal(t, []string{"geocode:no_result"}, recorder.calls)
}

func TestClient_Geocode_APIError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","info":"INVALID_USER_KEY"}`))
	})

	_, err := client.Geocode(context.Background(), "天安门", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_USER_KEY")
}

func TestClient_Geocode_HTTPError(t *testing.T) {
	client, recorder := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Geocode(context.Background(), "天安门", "")

	assert.Error(t, err)
	assert.Equal(t, []string{"geocode:http_502"}, recorder.calls)
}

func TestClient_NoKey(t *testing.T) {
	client := NewClient(Config{}, nil, zap.NewNop())

	_, err := client.Geocode(context.Background(), "天安门", "")
	assert.ErrorIs(t, err, ErrNoKey)

	_, err = client.ReverseGeocode(context.Background(), 39.9, 116.4)
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestClient_WithKey(t *testing.T) {
	var gotKey string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"status":"1","geocodes":[{"formatted_address":"x","city":[],"location":"116.4,39.9"}]}`))
	})

	assert.Same(t, client, client.WithKey(""))

	point, err := client.WithKey("user-key").Geocode(context.Background(), "天安门", "")
	require.NoError(t, err)
	assert.Equal(t, "user-key", gotKey)
	assert.Equal(t, "", point.City)
	assert.Equal(t, "server-key", client.apiKey)
}

func TestClient_ReverseGeocode(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/geocode/regeo", r.URL.Path)
		assert.Equal(t, "116.397000,39.908000", r.URL.Query().Get("location"))
		_, _ = w.Write([]byte(`{"status":"1","regeocode":{"formatted_address":"北京市东城区天安门","addressComponent":{"city":[],"province":"北京市"}}}`))
	})

	point, err := client.ReverseGeocode(context.Background(), 39.908, 116.397)

	require.NoError(t, err)
	assert.Equal(t, "北京市东城区天安门", point.FormattedAddress)
	assert.Equal(t, "北京市", point.City)
}

func TestClient_ReverseGeocode_OutOfRange(t *testing.T) {
	client := NewClient(Config{APIKey: "k"}, nil, zap.NewNop())

	_, err := client.ReverseGeocode(context.Background(), 91, 0)
	assert.Error(t, err)
}

func TestClient_GeocodeActivities(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "火锅店" {
			_, _ = w.Write([]byte(`{"status":"1","geocodes":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"1","geocodes":[{"formatted_address":"x","city":"成都市","location":"104.0,30.6"}]}`))
	})

	lat, lng := 1.0, 2.0
	activities := []entity.Activity{
		{Name: "宽窄巷子", Location: "成都市青羊区宽窄巷子"},
		{Name: "火锅店"},
		{Name: "已定位", Latitude: &lat, Longitude: &lng},
		{},
	}

	resolved := client.GeocodeActivities(context.Background(), "成都", activities)

	assert.Equal(t, 2, resolved)
	require.True(t, activities[0].HasCoordinates())
	assert.InDelta(t, 30.6, *activities[0].Latitude, 1e-9)
	assert.False(t, activities[1].HasCoordinates())
	assert.Equal(t, 1.0, *activities[2].Latitude)
	assert.False(t, activities[3].HasCoordinates())
}
