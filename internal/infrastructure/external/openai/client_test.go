package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestClient starts a fake chat completions endpoint answering with content
func newTestClient(t *testing.T, status int, content string) (port.LLMClient, *[]map[string]interface{}) {
	t.Helper()
	var requests []map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests = append(requests, body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]interface{}{"role": "assistant", "content": content},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)

	prompts, err := DefaultPrompts()
	require.NoError(t, err)

	factory := NewFactory(prompts, "default-model", zap.NewNop())
	client := factory.NewClient(port.LLMCredentials{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	return client, &requests
}

func TestClient_ExtractExpense(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, `{"amount": 50, "category": "transport", "description": "打车"}`)

	draft, err := client.ExtractExpense(context.Background(), "打车花了50元")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(draft.Amount))
	assert.Equal(t, entity.CategoryTransport, draft.Category)
	assert.Equal(t, "打车", draft.Description)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "default-model", req["model"])
	format := req["response_format"].(map[string]interface{})
	assert.Equal(t, "json_object", format["type"])
}

func TestClient_ExtractExpense_ProseWrapped(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, "好的，结果如下：\n```json\n{\"amount\": \"80.5\", \"category\": \"纪念品\", \"description\": \"纪念品 {限量}\"}\n```")

	draft, err := client.ExtractExpense(context.Background(), "买了80.5元纪念品")

	require.NoError(t, err)
	assert.Equal(t, "80.5", draft.Amount.String())
	assert.Equal(t, entity.CategoryOther, draft.Category)
	assert.Equal(t, "纪念品 {限量}", draft.Description)
}

func TestClient_ExtractExpense_Malformed(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, "抱歉，我无法理解")

	_, err := client.ExtractExpense(context.Background(), "随便说点什么")
	assert.Error(t, err)
}

func TestClient_ExtractExpense_UpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.StatusInternalServerError, "")

	_, err := client.ExtractExpense(context.Background(), "打车花了50元")
	assert.Error(t, err)
}

func TestClient_ExtractTripRequest(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{
		"destination": " 成都 ", "duration_days": 5, "budget": 8000, "travel_style": "COMFORT",
		"traveler_count": -1, "preferences": ["美食", "", "熊猫"], "special_requirements": ""}`)

	draft, err := client.ExtractTripRequest(context.Background(), "想去成都玩5天，预算8000")

	require.NoError(t, err)
	assert.Equal(t, "成都", draft.Destination)
	assert.Equal(t, 5, draft.DurationDays)
	assert.True(t, decimal.NewFromInt(8000).Equal(draft.BudgetAmount))
	assert.Equal(t, entity.StyleComfort, draft.TravelStyle)
	assert.Equal(t, 0, draft.TravelerCount)
	assert.Equal(t, []string{"美食", "熊猫"}, draft.Preferences)
}

func TestClient_GenerateItinerary(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, `{
		"title": "成都美食之旅",
		"days": [
			{"day": 1, "title": "市区", "activities": [
				{"time": "09:00", "name": "宽窄巷子", "location": "成都市青羊区宽窄巷子", "estimated_cost": 0, "category": "SIGHTSEEING"},
				{"time": "12:00", "name": "火锅", "estimated_cost": "150", "category": "FOOD"}
			]},
			{"title": "熊猫基地", "activities": []}
		],
		"budget_breakdown": {"FOOD": 1500, "food": 100, "TRANSPORT": 800},
		"tips": ["带伞"]
	}`)

	itinerary, err := client.GenerateItinerary(context.Background(), &entity.TripRequestDraft{
		Destination:   "成都",
		DurationDays:  2,
		BudgetAmount:  decimal.NewFromInt(5000),
		TravelStyle:   entity.StyleStandard,
		TravelerCount: 2,
		Preferences:   []string{"美食"},
	})

	require.NoError(t, err)
	assert.Equal(t, "成都美食之旅", itinerary.Title)
	require.Len(t, itinerary.Days, 2)
	assert.Equal(t, 1, itinerary.Days[0].DayNumber)
	assert.Equal(t, 2, itinerary.Days[1].DayNumber)
	require.Len(t, itinerary.Days[0].Activities, 2)
	assert.Equal(t, entity.CategoryFood, itinerary.Days[0].Activities[1].Category)
	assert.True(t, decimal.NewFromInt(150).Equal(itinerary.Days[0].Activities[1].EstimatedCost))
	assert.True(t, decimal.NewFromInt(1600).Equal(itinerary.BudgetBreakdown[entity.CategoryFood]))
	assert.Equal(t, []string{"带伞"}, itinerary.Tips)

	messages := (*requests)[0]["messages"].([]interface{})
	userMsg := messages[1].(map[string]interface{})["content"].(string)
	assert.Contains(t, userMsg, "目的地：成都")
	assert.Contains(t, userMsg, "偏好：美食")
}

func TestClient_GenerateItinerary_NoDays(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"title": "空", "days": []}`)

	_, err := client.GenerateItinerary(context.Background(), &entity.TripRequestDraft{Destination: "成都"})
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{"brace in string", `note {"a":"}{"} trailing }`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"say \"hi\" }"}`, `{"a":"say \"hi\" }"}`},
		{"unbalanced", `{"a":1`, ""},
		{"none", "no json here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.content))
		})
	}
}

func TestLoadPrompts(t *testing.T) {
	prompts, err := LoadPrompts("")
	require.NoError(t, err)
	assert.NotEmpty(t, prompts.Itinerary.System)
	assert.Greater(t, prompts.Itinerary.MaxTokens, 0)

	_, err = LoadPrompts("/nonexistent/prompts.yaml")
	assert.Error(t, err)

	_, err = parsePrompts([]byte("expense_extraction:\n  system: x\n"))
	assert.Error(t, err)
}
