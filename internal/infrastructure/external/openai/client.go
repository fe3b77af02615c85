package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the model produced no choices
var ErrEmptyResponse = errors.New("no response from LLM")

// Factory builds clients for per-request credentials.
// It implements port.LLMClientFactory.
type Factory struct {
	prompts      *PromptConfig
	defaultModel string
	logger       *zap.Logger
}

// NewFactory creates a factory; defaultModel is used when credentials carry none
func NewFactory(prompts *PromptConfig, defaultModel string, logger *zap.Logger) *Factory {
	return &Factory{
		prompts:      prompts,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// NewClient creates a client for creds
func (f *Factory) NewClient(creds port.LLMCredentials) port.LLMClient {
	cfg := openai.DefaultConfig(creds.APIKey)
	if creds.BaseURL != "" {
		cfg.BaseURL = creds.BaseURL
	}
	model := creds.Model
	if model == "" {
		model = f.defaultModel
	}
	return &Client{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		prompts: f.prompts,
		logger:  f.logger,
	}
}

// Client implements port.LLMClient over an OpenAI-compatible chat API
type Client struct {
	client  *openai.Client
	model   string
	prompts *PromptConfig
	logger  *zap.Logger
}

type expensePayload struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

type tripPayload struct {
	Destination         string          `json:"destination"`
	DurationDays        int             `json:"duration_days"`
	Budget              decimal.Decimal `json:"budget"`
	TravelStyle         string          `json:"travel_style"`
	TravelerCount       int             `json:"traveler_count"`
	Preferences         []string        `json:"preferences"`
	SpecialRequirements string          `json:"special_requirements"`
}

type activityPayload struct {
	Time          string          `json:"time"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	Category      string          `json:"category"`
}

type dayPayload struct {
	Day        int               `json:"day"`
	Title      string            `json:"title"`
	Activities []activityPayload `json:"activities"`
}

type itineraryPayload struct {
	Title           string                     `json:"title"`
	Days            []dayPayload               `json:"days"`
	BudgetBreakdown map[string]decimal.Decimal `json:"budget_breakdown"`
	Tips            []string                   `json:"tips"`
}

// ExtractExpense asks the model for the amount, category and description of one utterance
func (c *Client) ExtractExpense(ctx context.Context, text string) (*entity.ExpenseDraft, error) {
	content, err := c.complete(ctx, c.prompts.ExpenseExtraction, struct{ Text string }{text})
	if err != nil {
		return nil, err
	}

	var payload expensePayload
	if err := decodeJSON(content, &payload); err != nil {
		c.logger.Warn("Failed to parse expense response", zap.Error(err), zap.String("content", content))
		return nil, err
	}

	return &entity.ExpenseDraft{
		Amount:      payload.Amount,
		Category:    entity.ParseCategory(payload.Category),
		Description: strings.TrimSpace(payload.Description),
	}, nil
}

// ExtractTripRequest asks the model for the trip fields of one utterance
func (c *Client) ExtractTripRequest(ctx context.Context, text string) (*entity.TripRequestDraft, error) {
	content, err := c.complete(ctx, c.prompts.TripExtraction, struct{ Text string }{text})
	if err != nil {
		return nil, err
	}

	var payload tripPayload
	if err := decodeJSON(content, &payload); err != nil {
		c.logger.Warn("Failed to parse trip response", zap.Error(err), zap.String("content", content))
		return nil, err
	}

	prefs := make([]string, 0, len(payload.Preferences))
	for _, p := range payload.Preferences {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}

	return &entity.TripRequestDraft{
		Destination:         strings.TrimSpace(payload.Destination),
		DurationDays:        nonNegative(payload.DurationDays),
		BudgetAmount:        payload.Budget,
		TravelStyle:         entity.ParseTravelStyle(payload.TravelStyle),
		TravelerCount:       nonNegative(payload.TravelerCount),
		Preferences:         prefs,
		SpecialRequirements: strings.TrimSpace(payload.SpecialRequirements),
	}, nil
}

// GenerateItinerary asks the model for a day-by-day plan in a single call
func (c *Client) GenerateItinerary(ctx context.Context, req *entity.TripRequestDraft) (*entity.Itinerary, error) {
	data := struct {
		Destination         string
		DurationDays        int
		Budget              string
		TravelerCount       int
		TravelStyle         string
		Preferences         string
		SpecialRequirements string
	}{
		Destination:         req.Destination,
		DurationDays:        req.DurationDays,
		Budget:              req.BudgetAmount.StringFixed(0),
		TravelerCount:       req.TravelerCount,
		TravelStyle:         string(req.TravelStyle),
		Preferences:         strings.Join(req.Preferences, "、"),
		SpecialRequirements: req.SpecialRequirements,
	}

	content, err := c.complete(ctx, c.prompts.Itinerary, data)
	if err != nil {
		return nil, err
	}

	var payload itineraryPayload
	if err := decodeJSON(content, &payload); err != nil {
		c.logger.Warn("Failed to parse itinerary response", zap.Error(err))
		return nil, err
	}
	if len(payload.Days) == 0 {
		return nil, fmt.Errorf("itinerary has no days")
	}

	itinerary := &entity.Itinerary{
		Title:           strings.TrimSpace(payload.Title),
		Days:            make([]*entity.DailyPlan, 0, len(payload.Days)),
		BudgetBreakdown: make(map[entity.ExpenseCategory]decimal.Decimal),
		Tips:            payload.Tips,
	}

	for i, d := range payload.Days {
		day := d.Day
		if day <= 0 {
			day = i + 1
		}
		plan := &entity.DailyPlan{
			DayNumber:  day,
			Title:      d.Title,
			Activities: make([]entity.Activity, 0, len(d.Activities)),
		}
		for _, a := range d.Activities {
			plan.Activities = append(plan.Activities, entity.Activity{
				Time:          a.Time,
				Name:          a.Name,
				Description:   a.Description,
				Location:      a.Location,
				EstimatedCost: a.EstimatedCost,
				Category:      entity.ParseCategory(a.Category),
			})
		}
		itinerary.Days = append(itinerary.Days, plan)
	}

	for k, v := range payload.BudgetBreakdown {
		cat := entity.ParseCategory(k)
		itinerary.BudgetBreakdown[cat] = itinerary.BudgetBreakdown[cat].Add(v)
	}

	c.logger.Info("Itinerary generated",
		zap.String("destination", req.Destination),
		zap.Int("days", len(itinerary.Days)))

	return itinerary, nil
}

// complete renders the prompt and returns the message content of the first choice
func (c *Client) complete(ctx context.Context, prompt Prompt, data interface{}) (string, error) {
	userPrompt, err := renderTemplate(prompt.UserTemplate, data)
	if err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
