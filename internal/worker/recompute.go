package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/config"
	"fueleu-ledger/compliance-backend/internal/outcome"
)

// ShipLister lists the ships with voyage data in a year.
type ShipLister interface {
	ShipsForYear(ctx context.Context, year int) ([]string, error)
}

// BalanceRefresher recomputes a ship-year balance.
type BalanceRefresher interface {
	AdjustedCB(ctx context.Context, shipID string, year int) (*compliance.AdjustedResult, error)
}

// RunSummary reports one recompute pass.
type RunSummary struct {
	Year      int `json:"year"`
	Ships     int `json:"ships"`
	Refreshed int `json:"refreshed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Recomputer refreshes the stored compliance balances of every active ship
// on a cron schedule. Each ship goes through the ledger's own per-ship
// serialization, so a pass can overlap with API traffic.
type Recomputer struct {
	cron     *cron.Cron
	ships    ShipLister
	balances BalanceRefresher
	config   config.WorkerConfig
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
}

// NewRecomputer creates a new recompute worker
func NewRecomputer(ships ShipLister, balances BalanceRefresher, cfg config.WorkerConfig, logger *zap.Logger) *Recomputer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Recomputer{
		cron:     cron.New(),
		ships:    ships,
		balances: balances,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start schedules recompute passes for the current year.
func (r *Recomputer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("recompute worker already running")
	}

	_, err := r.cron.AddFunc(r.config.Schedule, func() {
		runCtx := ctx
		if r.config.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
			defer cancel()
		}
		if _, err := r.RunOnce(runCtx, r.now().Year()); err != nil {
			r.logger.Error("Compliance recompute failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid worker schedule %q: %w", r.config.Schedule, err)
	}

	r.logger.Info("Starting compliance recompute worker",
		zap.String("schedule", r.config.Schedule),
		zap.Int("concurrency", r.config.Concurrency))
	r.cron.Start()
	r.running = true
	return nil
}

// Stop waits for a running pass to finish.
func (r *Recomputer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.logger.Info("Stopping compliance recompute worker")
	<-r.cron.Stop().Done()
	r.running = false
}

// RunOnce recomputes every ship with routes in year. A ship that fails does
// not stop the others; only listing the ships is fatal.
func (r *Recomputer) RunOnce(ctx context.Context, year int) (*RunSummary, error) {
	ships, err := r.ships.ShipsForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}

	var refreshed, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for _, shipID := range ships {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			_, err := r.balances.AdjustedCB(gctx, shipID, year)
			switch {
			case err == nil:
				refreshed.Add(1)
			case isRejection(err):
				skipped.Add(1)
				r.logger.Debug("Skipping ship", zap.String("ship_id", shipID), zap.Int("year", year), zap.Error(err))
			default:
				failed.Add(1)
				r.logger.Warn("Failed to recompute balance", zap.String("ship_id", shipID), zap.Int("year", year), zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &RunSummary{
		Year:      year,
		Ships:     len(ships),
		Refreshed: int(refreshed.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
	r.logger.Info("Compliance recompute completed",
		zap.Int("year", year),
		zap.Int("ships", summary.Ships),
		zap.Int("refreshed", summary.Refreshed),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func isRejection(err error) bool {
	_, ok := outcome.As(err)
	return ok
}
