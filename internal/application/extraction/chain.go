package extraction

import (
	"context"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/internal/domain/parser"
	"golang.org/x/sync/singleflight"
)

// LocalExtractor is the heuristic side of the chain
type LocalExtractor interface {
	port.ExpenseExtractor
	port.TripRequestExtractor
}

// Chain builds fallback extractors for the credentials of each request and
// collapses identical concurrent requests from the same user.
type Chain struct {
	factory  port.LLMClientFactory
	local    LocalExtractor
	timeout  time.Duration
	logger   Logger
	recorder Recorder
	group    singleflight.Group
}

// NewChain creates a chain. A nil factory disables remote extraction entirely.
func NewChain(factory port.LLMClientFactory, timeout time.Duration, logger Logger, recorder Recorder) *Chain {
	return &Chain{
		factory:  factory,
		local:    parser.NewHeuristic(),
		timeout:  timeout,
		logger:   logger,
		recorder: recorder,
	}
}

// remote returns the LLM client for creds, or nil when no key is available
func (c *Chain) remote(creds port.LLMCredentials) port.LLMClient {
	if c.factory == nil || creds.APIKey == "" {
		return nil
	}
	return c.factory.NewClient(creds)
}

// ExpenseExtractor returns the extractor chain for creds
func (c *Chain) ExpenseExtractor(creds port.LLMCredentials) port.ExpenseExtractor {
	var remote port.ExpenseExtractor
	if client := c.remote(creds); client != nil {
		remote = client
	}
	return NewFallbackExpenseExtractor(remote, c.local, c.timeout, c.logger, c.recorder)
}

// TripExtractor returns the extractor chain for creds
func (c *Chain) TripExtractor(creds port.LLMCredentials) port.TripRequestExtractor {
	var remote port.TripRequestExtractor
	if client := c.remote(creds); client != nil {
		remote = client
	}
	return NewFallbackTripExtractor(remote, c.local, c.timeout, c.logger, c.recorder)
}

// ItineraryGenerator returns the remote generator for creds, or nil without a key
func (c *Chain) ItineraryGenerator(creds port.LLMCredentials) port.ItineraryGenerator {
	if client := c.remote(creds); client != nil {
		return client
	}
	return nil
}

type expenseResult struct {
	draft *entity.ExpenseDraft
	err   error
}

// ExtractExpense runs the expense chain, sharing one execution between
// identical concurrent calls from the same user.
func (c *Chain) ExtractExpense(ctx context.Context, userID string, creds port.LLMCredentials, text string) (*entity.ExpenseDraft, error) {
	v, _, _ := c.group.Do(KindExpense+"\x00"+userID+"\x00"+text, func() (interface{}, error) {
		draft, err := c.ExpenseExtractor(creds).ExtractExpense(ctx, text)
		return expenseResult{draft: draft, err: err}, nil
	})

	res := v.(expenseResult)
	if res.draft == nil {
		return nil, res.err
	}
	draft := *res.draft
	return &draft, res.err
}

type tripResult struct {
	draft *entity.TripRequestDraft
	err   error
}

// ExtractTripRequest runs the trip request chain with the same deduplication as ExtractExpense
func (c *Chain) ExtractTripRequest(ctx context.Context, userID string, creds port.LLMCredentials, text string) (*entity.TripRequestDraft, error) {
	v, _, _ := c.group.Do(KindTrip+"\x00"+userID+"\x00"+text, func() (interface{}, error) {
		draft, err := c.TripExtractor(creds).ExtractTripRequest(ctx, text)
		return tripResult{draft: draft, err: err}, nil
	})

	res := v.(tripResult)
	if res.draft == nil {
		return nil, res.err
	}
	draft := *res.draft
	draft.Preferences = append([]string{}, res.draft.Preferences...)
	return &draft, res.err
}
