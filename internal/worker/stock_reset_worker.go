package worker

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

// StockResetter restores daily stock in the database. Implemented by service.StockService.
type StockResetter interface {
	ResetSweep(ctx context.Context) (int, error)
}

// StockResetWorker restores the daily stock of every product once per local
// day. Each tick is idempotent, so the interval only bounds how late after
// midnight a reset can land.
type StockResetWorker struct {
	stock    StockResetter
	clock    clock.Clock
	interval time.Duration
}

// NewStockResetWorker constructs a StockResetWorker.
func NewStockResetWorker(stock StockResetter, clk clock.Clock, interval time.Duration) *StockResetWorker {
	if clk == nil {
		clk = clock.New()
	}
	return &StockResetWorker{
		stock:    stock,
		clock:    clk,
		interval: interval,
	}
}

// Start begins the periodic reset loop until context is canceled.
func (w *StockResetWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting stock reset worker")

	w.run(ctx)

	ticker := w.clock.Ticker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Stock reset worker stopped")
			return
		}
	}
}

func (w *StockResetWorker) run(ctx context.Context) {
	n, err := w.stock.ResetSweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to run daily stock reset")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("Daily stock reset completed")
	}
}
