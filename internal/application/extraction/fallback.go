// Package extraction implements the remote-first, heuristic-fallback chain
// that turns utterances into drafts.
package extraction

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
)

// Extraction kinds
const (
	KindExpense = "expense"
	KindTrip    = "trip"
)

// Fallback reasons
const (
	ReasonNoKey   = "no_key"
	ReasonTimeout = "timeout"
	ReasonError   = "error"
	ReasonInvalid = "invalid"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Recorder receives extraction outcomes
type Recorder interface {
	ObserveExtraction(kind, source string)
	ObserveFallback(kind, reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveExtraction(string, string) {}
func (nopRecorder) ObserveFallback(string, string)   {}

// FallbackExpenseExtractor tries the remote extractor once and falls back to the local one
type FallbackExpenseExtractor struct {
	remote   port.ExpenseExtractor
	local    port.ExpenseExtractor
	timeout  time.Duration
	logger   Logger
	recorder Recorder
}

// NewFallbackExpenseExtractor creates an expense extractor chain. remote may be nil.
func NewFallbackExpenseExtractor(remote, local port.ExpenseExtractor, timeout time.Duration, logger Logger, recorder Recorder) *FallbackExpenseExtractor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &FallbackExpenseExtractor{
		remote:   remote,
		local:    local,
		timeout:  timeout,
		logger:   logger,
		recorder: recorder,
	}
}

// ExtractExpense implements port.ExpenseExtractor
func (f *FallbackExpenseExtractor) ExtractExpense(ctx context.Context, text string) (*entity.ExpenseDraft, error) {
	if f.remote == nil {
		f.recorder.ObserveFallback(KindExpense, ReasonNoKey)
		return f.extractLocal(ctx, text)
	}

	remoteCtx, cancel := withTimeout(ctx, f.timeout)
	draft, err := f.remote.ExtractExpense(remoteCtx, text)
	cancel()

	if err == nil && draft != nil {
		if verr := draft.Validate(); verr != nil {
			err = verr
		}
	}
	if err != nil || draft == nil {
		reason := classify(err)
		f.logger.Warn("Remote expense extraction failed, using heuristic",
			"reason", reason,
			"error", err)
		f.recorder.ObserveFallback(KindExpense, reason)
		return f.extractLocal(ctx, text)
	}

	draft.Source = entity.SourceLLM
	f.recorder.ObserveExtraction(KindExpense, entity.SourceLLM)
	return draft, nil
}

func (f *FallbackExpenseExtractor) extractLocal(ctx context.Context, text string) (*entity.ExpenseDraft, error) {
	draft, err := f.local.ExtractExpense(ctx, text)
	if err == nil {
		f.recorder.ObserveExtraction(KindExpense, entity.SourceHeuristic)
	}
	return draft, err
}

// FallbackTripExtractor tries the remote extractor once and falls back to the local one
type FallbackTripExtractor struct {
	remote   port.TripRequestExtractor
	local    port.TripRequestExtractor
	timeout  time.Duration
	logger   Logger
	recorder Recorder
}

// NewFallbackTripExtractor creates a trip request extractor chain. remote may be nil.
func NewFallbackTripExtractor(remote, local port.TripRequestExtractor, timeout time.Duration, logger Logger, recorder Recorder) *FallbackTripExtractor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &FallbackTripExtractor{
		remote:   remote,
		local:    local,
		timeout:  timeout,
		logger:   logger,
		recorder: recorder,
	}
}

// ExtractTripRequest implements port.TripRequestExtractor
func (f *FallbackTripExtractor) ExtractTripRequest(ctx context.Context, text string) (*entity.TripRequestDraft, error) {
	if f.remote == nil {
		f.recorder.ObserveFallback(KindTrip, ReasonNoKey)
		return f.extractLocal(ctx, text)
	}

	remoteCtx, cancel := withTimeout(ctx, f.timeout)
	draft, err := f.remote.ExtractTripRequest(remoteCtx, text)
	cancel()

	if err == nil && (draft == nil || draft.Destination == "") {
		err = errEmptyDraft
	}
	if err != nil {
		reason := classify(err)
		f.logger.Warn("Remote trip extraction failed, using heuristic",
			"reason", reason,
			"error", err)
		f.recorder.ObserveFallback(KindTrip, reason)
		return f.extractLocal(ctx, text)
	}

	draft.Source = entity.SourceLLM
	f.recorder.ObserveExtraction(KindTrip, entity.SourceLLM)
	return draft, nil
}

func (f *FallbackTripExtractor) extractLocal(ctx context.Context, text string) (*entity.TripRequestDraft, error) {
	draft, err := f.local.ExtractTripRequest(ctx, text)
	if err == nil {
		f.recorder.ObserveExtraction(KindTrip, entity.SourceHeuristic)
	}
	return draft, err
}

var errEmptyDraft = errors.New("remote returned an empty draft")

// classify maps a remote failure to a fallback reason
func classify(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, entity.ErrInvalidAmount), errors.Is(err, entity.ErrInvalidCategory), errors.Is(err, errEmptyDraft):
		return ReasonInvalid
	default:
		return ReasonError
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
