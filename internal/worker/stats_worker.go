package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/observability/metrics"
)

// StatsWorker periodically refreshes the listing and offer gauges from the
// stores so dashboards see current counts without every request paying for
// a count query.
type StatsWorker struct {
	propertyRepo domain.PropertyRepository
	offerRepo    domain.OfferRepository
	logger       *slog.Logger
	interval     time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(
	propertyRepo domain.PropertyRepository,
	offerRepo domain.OfferRepository,
	logger *slog.Logger,
	interval time.Duration,
) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}

	return &StatsWorker{
		propertyRepo: propertyRepo,
		offerRepo:    offerRepo,
		logger:       logger,
		interval:     interval,
	}
}

// Start begins the refresh loop. It runs until ctx is cancelled.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	if count, err := w.propertyRepo.Count(ctx); err == nil {
		metrics.SetListedProperties(count)
	} else {
		w.logger.Warn("failed to count properties", slog.String("error", err.Error()))
	}

	if count, err := w.offerRepo.CountByStatus(ctx, domain.StatusPending); err == nil {
		metrics.SetPendingOffers(count)
	} else {
		w.logger.Warn("failed to count pending offers", slog.String("error", err.Error()))
	}
}
