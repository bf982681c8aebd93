package worker

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

// StockRefresher reloads the live stock cache. Implemented by service.StockService.
type StockRefresher interface {
	Refresh(ctx context.Context) error
}

// StockSyncWorker periodically re-synchronizes the live stock cache with the
// database so sales committed by other instances become visible.
type StockSyncWorker struct {
	stock    StockRefresher
	clock    clock.Clock
	interval time.Duration
}

// NewStockSyncWorker constructs a StockSyncWorker.
func NewStockSyncWorker(stock StockRefresher, clk clock.Clock, interval time.Duration) *StockSyncWorker {
	if clk == nil {
		clk = clock.New()
	}
	return &StockSyncWorker{
		stock:    stock,
		clock:    clk,
		interval: interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *StockSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting stock sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := w.clock.Ticker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Stock sync worker stopped")
			return
		}
	}
}

func (w *StockSyncWorker) run(ctx context.Context) {
	start := w.clock.Now()
	if err := w.stock.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to sync stock cache")
		return
	}
	log.Debug().Dur("duration", w.clock.Since(start)).Msg("Stock cache sync completed")
}
