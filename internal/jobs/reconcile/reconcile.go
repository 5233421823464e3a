package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
	entsvc "github.com/Abinayanafaiq/BotDating/internal/services/entitlements"
)

type PendingLister interface {
	ListWithPendingOrders(ctx context.Context, afterUserID int64, limit int) ([]model.Profile, error)
}

type Verifier interface {
	Verify(ctx context.Context, userID int64) (entsvc.VerifyReport, error)
}

type ActivationNotifier interface {
	NotifyActivated(ctx context.Context, userID int64, expiresAt *time.Time) error
}

type Observer interface {
	ObserveReconcile(err error)
}

// Job re-checks pending orders so payments settle even when the user never
// runs /verify and the gateway callback is lost. Each run resumes after the
// last user of the previous batch and wraps to the start on a short page.
type Job struct {
	mu     sync.Mutex
	cursor int64

	profiles  PendingLister
	verifier  Verifier
	notifier  ActivationNotifier
	observer  Observer
	batchSize int
	logger    *zap.Logger
}

type Summary struct {
	Checked   int
	Activated int
	Failed    int
}

func New(profiles PendingLister, verifier Verifier, batchSize int, logger *zap.Logger) *Job {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		profiles:  profiles,
		verifier:  verifier,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (j *Job) AttachNotifier(notifier ActivationNotifier) {
	j.notifier = notifier
}

func (j *Job) AttachObserver(observer Observer) {
	j.observer = observer
}

// Run verifies one batch. A failing user is logged and skipped; Run only
// errors when the batch itself cannot be listed.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	summary, err := j.run(ctx)
	if j.observer != nil {
		j.observer.ObserveReconcile(err)
	}
	return summary, err
}

func (j *Job) run(ctx context.Context) (Summary, error) {
	if j.profiles == nil || j.verifier == nil {
		return Summary{}, nil
	}

	pending, err := j.nextBatch(ctx)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, profile := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		report, err := j.verifier.Verify(ctx, profile.UserID)
		summary.Checked++
		if err != nil {
			summary.Failed++
			j.logger.Warn("reconcile verify failed", zap.Int64("user_id", profile.UserID), zap.Error(err))
			continue
		}
		for _, check := range report.Checks {
			if check.Err != nil {
				j.logger.Debug("reconcile order status unknown",
					zap.Int64("user_id", profile.UserID),
					zap.String("order_id", check.OrderID),
					zap.Error(check.Err),
				)
			}
		}
		if !report.Activated {
			continue
		}

		summary.Activated++
		if j.notifier != nil {
			if err := j.notifier.NotifyActivated(ctx, profile.UserID, report.ExpiresAt); err != nil {
				j.logger.Warn("activation notification failed", zap.Int64("user_id", profile.UserID), zap.Error(err))
			}
		}
	}

	if summary.Checked > 0 {
		j.logger.Info("reconcile pending orders completed",
			zap.Int("checked", summary.Checked),
			zap.Int("activated", summary.Activated),
			zap.Int("failed", summary.Failed),
		)
	}
	return summary, nil
}

// nextBatch must be called with j.mu held.
func (j *Job) nextBatch(ctx context.Context) ([]model.Profile, error) {
	pending, err := j.profiles.ListWithPendingOrders(ctx, j.cursor, j.batchSize)
	if err != nil {
		return nil, fmt.Errorf("list profiles with pending orders: %w", err)
	}
	if len(pending) == 0 && j.cursor > 0 {
		j.cursor = 0
		pending, err = j.profiles.ListWithPendingOrders(ctx, 0, j.batchSize)
		if err != nil {
			return nil, fmt.Errorf("list profiles with pending orders: %w", err)
		}
	}

	if len(pending) < j.batchSize {
		j.cursor = 0
	} else {
		j.cursor = pending[len(pending)-1].UserID
	}
	return pending, nil
}
