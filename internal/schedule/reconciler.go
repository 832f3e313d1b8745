package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"StaffHub/internal/model/dto"
	"StaffHub/pkg/logger"
)

const reconcileLockKey = "scheduler:points_reconcile"

// LedgerReconciler rewrites diverged point counters from the ledger.
type LedgerReconciler interface {
	ReconcileAll(ctx context.Context) ([]dto.ReconcileResponse, error)
}

// Locker keeps concurrent scheduler replicas from running the same pass.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// PointsReconciler periodically re-derives point counters from the ledger.
type PointsReconciler struct {
	reconciler LedgerReconciler
	locker     Locker
	logger     *zap.Logger
	interval   time.Duration

	mu      sync.Mutex
	running bool
}

func NewPointsReconciler(r LedgerReconciler, locker Locker, interval time.Duration) *PointsReconciler {
	return &PointsReconciler{
		reconciler: r,
		locker:     locker,
		logger:     logger.Logger,
		interval:   interval,
	}
}

// Run executes one pass immediately and then one per interval until ctx is done.
func (p *PointsReconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Points reconciler started", zap.Duration("interval", p.interval))
	for {
		if _, err := p.RunOnce(ctx); err != nil {
			p.logger.Error("Points reconciliation failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			p.logger.Info("Points reconciler stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce reconciles every diverged user and returns how many counters were rewritten.
// It does nothing when a previous pass is still running here or on another replica.
func (p *PointsReconciler) RunOnce(ctx context.Context) (int, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		p.logger.Info("Reconciliation already running, skipping")
		return 0, nil
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	locked, err := p.locker.TryLock(ctx, reconcileLockKey, p.interval)
	if err != nil {
		// without redis a single scheduler is assumed
		p.logger.Warn("Failed to take reconcile lock, running unlocked", zap.Error(err))
	} else if !locked {
		p.logger.Info("Reconcile lock held elsewhere, skipping")
		return 0, nil
	} else {
		defer func() {
			if err := p.locker.Unlock(context.Background(), reconcileLockKey); err != nil {
				p.logger.Warn("Failed to release reconcile lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	fixed, err := p.reconciler.ReconcileAll(ctx)
	if err != nil {
		return 0, err
	}

	p.logger.Info("Points reconciliation finished",
		zap.Int("diverged_users", len(fixed)),
		zap.Duration("took", time.Since(start)),
	)
	return len(fixed), nil
}
