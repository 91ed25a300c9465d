package enrichment

import (
	"context"
	"errors"

	"github.com/gartstein/insightdesk/internal/company/completeness"
	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/gartstein/insightdesk/internal/company/events"
	"go.uber.org/zap"
)

// Worker enriches companies that were just created with an incomplete
// profile. Merge events are ignored, so its own submissions never
// trigger another round.
type Worker struct {
	submit func(ctx context.Context, name string) error
	policy completeness.Policy
	logger *zap.Logger
}

// NewWorker builds a Worker that calls submit for every created,
// incomplete company.
func NewWorker(submit func(ctx context.Context, name string) error, policy completeness.Policy, logger *zap.Logger) *Worker {
	return &Worker{
		submit: submit,
		policy: policy,
		logger: logger.Named("enrichment_worker"),
	}
}

// HandleEvent is registered as the events.Consumer handler.
func (w *Worker) HandleEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.CompanyCreated || event.Company == nil {
		return nil
	}
	if w.policy.IsFullyPopulated(event.Company) {
		return nil
	}

	name := event.Company.Name
	err := w.submit(ctx, name)
	switch {
	case err == nil:
		w.logger.Info("Enriched new company", zap.String("name", name))
		return nil
	case errors.Is(err, e.ErrDuplicateComplete):
		// Someone completed it first.
		return nil
	case errors.Is(err, ErrMalformedOutput):
		w.logger.Warn("Skipping company with unusable enrichment", zap.String("name", name), zap.Error(err))
		return nil
	default:
		return err
	}
}
