package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/feral-file/ff-fractions/internal/adapter"
	"github.com/feral-file/ff-fractions/internal/domain"
	"github.com/feral-file/ff-fractions/internal/escrow"
	"github.com/feral-file/ff-fractions/internal/logger"
)

const (
	DEFAULT_SCHEDULE = "@every 1m"
)

// SettlementSweeperConfig holds configuration for the settlement sweeper
type SettlementSweeperConfig struct {
	Schedule       string         // Cron spec of the sweep cycles
	BatchSize      int            // Sales settled per cycle
	WorkerPoolSize int            // Concurrent settlements
	Keeper         common.Address // Caller recorded on seller releases
}

// Settler lists and settles sales. It is served in process by the executor or remotely by the REST client.
//
//go:generate mockgen -source=settlement.go -destination=../mocks/settler.go -package=mocks -mock_names=Settler=MockSettler
type Settler interface {
	ListSettleableSales(ctx context.Context, limit int) ([]*domain.Sale, error)
	ReleaseSeller(ctx context.Context, caller, escrowAddress common.Address) (*escrow.SellerReleaseResult, error)
}

// CycleResult summarizes one sweep cycle
type CycleResult struct {
	Found   int
	Settled int
	Failed  int
}

// SettlementSweeper releases seller proceeds of successful sales once they close
type SettlementSweeper interface {
	Sweeper
	// RunCycle runs a single sweep cycle
	RunCycle(ctx context.Context) (CycleResult, error)
}

type settlementSweeper struct {
	config    *SettlementSweeperConfig
	settler   Settler
	clock     adapter.Clock
	pool      pond.Pool
	cycleMu   sync.Mutex
	running   atomic.Bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewSettlementSweeper creates a new settlement sweeper
func NewSettlementSweeper(config *SettlementSweeperConfig, settler Settler, clock adapter.Clock) SettlementSweeper {
	if config.Schedule == "" {
		config.Schedule = DEFAULT_SCHEDULE
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 1
	}
	return &settlementSweeper{
		config:    config,
		settler:   settler,
		clock:     clock,
		pool:      pond.NewPool(config.WorkerPoolSize),
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *settlementSweeper) Name() string {
	return "settlement-sweeper"
}

// Start schedules sweep cycles on the configured cron spec
func (s *settlementSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	c := cron.New(cron.WithLocation(s.clock.Now().Location()))
	_, err := c.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", s.config.Schedule, err)
	}

	logger.InfoCtx(ctx, "Starting settlement sweeper",
		zap.String("schedule", s.config.Schedule),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)
	c.Start()

	select {
	case <-ctx.Done():
		logger.InfoCtx(ctx, "Settlement sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
	case <-s.stopChan:
		logger.InfoCtx(ctx, "Settlement sweeper stop requested")
	}

	// Wait for a running cycle before releasing the pool
	<-c.Stop().Done()
	s.pool.StopAndWait()
	return nil
}

// Stop gracefully stops the sweeper with timeout support
func (s *settlementSweeper) Stop(ctx context.Context) error {
	// Signal stop to the main loop, including one that has not started yet
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	if !s.running.Load() {
		return nil // Not running
	}

	logger.InfoCtx(ctx, "Stopping settlement sweeper")

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Settlement sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Settlement sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunCycle releases the seller of every settleable sale found, one pool task per sale.
// A failed release is logged and retried on the next cycle.
func (s *settlementSweeper) RunCycle(ctx context.Context) (CycleResult, error) {
	// Overlapping cron ticks would race for the same escrows
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	startTime := s.clock.Now()

	sales, err := s.settler.ListSettleableSales(ctx, s.config.BatchSize)
	if err != nil {
		return CycleResult{}, fmt.Errorf("failed to list settleable sales: %w", err)
	}
	if len(sales) == 0 {
		logger.DebugCtx(ctx, "No sales to settle")
		return CycleResult{}, nil
	}

	logger.InfoCtx(ctx, "Found sales to settle", zap.Int("count", len(sales)))

	var settled, failed atomic.Int32
	group := s.pool.NewGroup()
	for _, sale := range sales {
		group.Submit(func() {
			s.settle(ctx, sale, &settled, &failed)
		})
	}
	if err := group.Wait(); err != nil {
		return CycleResult{}, fmt.Errorf("settlement tasks failed: %w", err)
	}

	result := CycleResult{
		Found:   len(sales),
		Settled: int(settled.Load()),
		Failed:  int(failed.Load()),
	}
	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("found", result.Found),
		zap.Int("settled", result.Settled),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

func (s *settlementSweeper) settle(ctx context.Context, sale *domain.Sale, settled, failed *atomic.Int32) {
	res, err := s.settler.ReleaseSeller(ctx, s.config.Keeper, sale.EscrowAddress)
	if errors.Is(err, domain.ErrSellerAlreadyReleased) {
		// Released by another keeper or by hand since the listing
		settled.Add(1)
		logger.DebugCtx(ctx, "Seller already released", zap.Uint64("sale_id", uint64(sale.ID)))
		return
	}
	if err != nil {
		failed.Add(1)
		logger.WarnCtx(ctx, "Failed to release seller",
			zap.Uint64("sale_id", uint64(sale.ID)),
			zap.String("escrow", sale.EscrowAddress.Hex()),
			zap.Error(err),
		)
		return
	}

	settled.Add(1)
	logger.InfoCtx(ctx, "Released seller",
		zap.Uint64("sale_id", uint64(sale.ID)),
		zap.String("escrow", sale.EscrowAddress.Hex()),
		zap.String("seller_amount", res.SellerAmount.String()),
		zap.String("fee", res.Fee.String()),
	)
}
