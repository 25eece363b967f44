package search

import (
	"context"
	"fmt"
	"log/slog"

	"jobmate/search-service/internal/classifier"
	"jobmate/search-service/internal/model"
)

// MaxPageSize caps SearchRequest.PageSize.
const MaxPageSize = 100

// Dispatcher is the single entry point for searches. It holds no mutable
// state, so concurrent Dispatch calls are independent.
type Dispatcher struct {
	registry   *Registry
	classifier *classifier.Classifier
	logger     *slog.Logger
}

// NewDispatcher returns a Dispatcher over registry. A nil classifier uses the
// embedded vocabulary.
func NewDispatcher(registry *Registry, cls *classifier.Classifier) *Dispatcher {
	if cls == nil {
		cls = classifier.New(nil)
	}
	return &Dispatcher{
		registry:   registry,
		classifier: cls,
		logger:     slog.Default().With("component", "dispatcher"),
	}
}

// Dispatch validates req, resolves its mode and runs the matching strategy.
//
// Returns *ValidationError for bad paging input and ErrNoStrategy when
// nothing, not even the semantic fallback, can serve the mode.
func (d *Dispatcher) Dispatch(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	requested := req.Mode
	if requested == "" {
		requested = model.ModeAuto
	}

	resolved := req
	resolved.Mode = requested
	var detected *classifier.Classification
	if requested == model.ModeAuto {
		c := d.classifier.Explain(req.Term)
		detected = &c
		resolved.Mode = c.Mode
	}

	strategy, fallback, err := d.registry.Resolve(resolved.Mode)
	if err != nil {
		d.logger.Error("search dispatch failed",
			"requestedMode", requested, "resolvedMode", resolved.Mode, "err", err)
		return nil, fmt.Errorf("dispatch mode %q: %w", resolved.Mode, err)
	}

	attrs := []any{
		"requestedMode", requested,
		"resolvedMode", resolved.Mode,
		"strategy", strategy.Name(),
		"fallback", fallback,
		"tenant", req.Tenant(),
	}
	if detected != nil {
		attrs = append(attrs, "reason", detected.Reason, "vocabularyVersion", d.classifier.VocabularyVersion())
	}
	d.logger.Info("search dispatched", attrs...)

	return strategy.Search(ctx, resolved)
}

func validate(req model.SearchRequest) error {
	if req.Page < 1 {
		return &ValidationError{Msg: fmt.Sprintf("page must be >= 1, got %d", req.Page)}
	}
	if req.PageSize < 1 || req.PageSize > MaxPageSize {
		return &ValidationError{Msg: fmt.Sprintf("pageSize must be between 1 and %d, got %d", MaxPageSize, req.PageSize)}
	}
	return nil
}
