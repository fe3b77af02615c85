package parser

import (
	"context"

	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
)

// Heuristic is the rule-based extractor used when no remote model is available
type Heuristic struct{}

// NewHeuristic creates a heuristic extractor
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// ParseExpense builds an expense draft from text. The draft always carries a
// category so manual entry can be prefilled; ok is false when no amount was found.
func ParseExpense(text string) (*entity.ExpenseDraft, bool) {
	draft := &entity.ExpenseDraft{
		Category: Categorize(text),
		Source:   entity.SourceHeuristic,
	}

	match, ok := ExtractAmount(text)
	if !ok {
		return draft, false
	}
	draft.Amount = match.Amount
	draft.Description = match.Description
	return draft, true
}

// ExtractExpense implements port.ExpenseExtractor.
// On ErrNoAmount the returned draft is still non-nil.
func (h *Heuristic) ExtractExpense(_ context.Context, text string) (*entity.ExpenseDraft, error) {
	draft, ok := ParseExpense(text)
	if !ok {
		return draft, ErrNoAmount
	}
	return draft, nil
}

// ExtractTripRequest implements port.TripRequestExtractor
func (h *Heuristic) ExtractTripRequest(_ context.Context, text string) (*entity.TripRequestDraft, error) {
	return ParseTripRequest(text), nil
}
