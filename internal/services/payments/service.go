package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
	entsvc "github.com/Abinayanafaiq/BotDating/internal/services/entitlements"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrOrderNotFound = errors.New("order not found")
)

type OwnerIndex interface {
	Owner(ctx context.Context, orderID string) (int64, error)
}

type OwnerLookup interface {
	FindByPendingOrder(ctx context.Context, orderID string) (model.Profile, error)
}

type Verifier interface {
	Verify(ctx context.Context, userID int64) (entsvc.VerifyReport, error)
}

type ActivationNotifier interface {
	NotifyActivated(ctx context.Context, userID int64, expiresAt *time.Time) error
}

type Dependencies struct {
	Index    OwnerIndex
	Profiles OwnerLookup
	Verifier Verifier
	Notifier ActivationNotifier
	Logger   *zap.Logger
}

// Service settles gateway callbacks. The callback only says which order
// moved; the gateway is asked again for the authoritative status.
type Service struct {
	index    OwnerIndex
	profiles OwnerLookup
	verifier Verifier
	notifier ActivationNotifier
	logger   *zap.Logger
}

type CallbackInput struct {
	OrderID string
	Status  string
	Amount  int
}

type CallbackResult struct {
	OrderID   string
	UserID    int64
	Activated bool
	ExpiresAt *time.Time
	// Settled is true when the order was no longer pending for its owner.
	Settled bool
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		index:    deps.Index,
		profiles: deps.Profiles,
		verifier: deps.Verifier,
		notifier: deps.Notifier,
		logger:   logger,
	}
}

func (s *Service) HandleCallback(ctx context.Context, in CallbackInput) (CallbackResult, error) {
	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		return CallbackResult{}, ErrValidation
	}
	if s.verifier == nil {
		return CallbackResult{}, fmt.Errorf("payment verifier is nil")
	}

	userID, err := s.resolveOwner(ctx, orderID)
	if err != nil {
		return CallbackResult{}, err
	}

	s.logger.Info("payment callback received",
		zap.String("order_id", orderID),
		zap.Int64("user_id", userID),
		zap.String("reported_status", in.Status),
	)

	report, err := s.verifier.Verify(ctx, userID)
	if err != nil {
		return CallbackResult{}, fmt.Errorf("verify callback order: %w", err)
	}

	result := CallbackResult{
		OrderID:   orderID,
		UserID:    userID,
		Activated: report.Activated,
		ExpiresAt: report.ExpiresAt,
		Settled:   orderSettled(report, orderID),
	}

	if report.Activated && s.notifier != nil {
		if err := s.notifier.NotifyActivated(ctx, userID, report.ExpiresAt); err != nil {
			s.logger.Warn("activation notification failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return result, nil
}

func (s *Service) resolveOwner(ctx context.Context, orderID string) (int64, error) {
	if s.index != nil {
		userID, err := s.index.Owner(ctx, orderID)
		if err == nil && userID > 0 {
			return userID, nil
		}
		if err != nil {
			s.logger.Debug("order index miss", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	if s.profiles == nil {
		return 0, ErrOrderNotFound
	}
	profile, err := s.profiles.FindByPendingOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return 0, ErrOrderNotFound
		}
		return 0, fmt.Errorf("find order owner: %w", err)
	}
	return profile.UserID, nil
}

// orderSettled treats an order that was not checked as already settled by an
// earlier callback or verification.
func orderSettled(report entsvc.VerifyReport, orderID string) bool {
	for _, check := range report.Checks {
		if check.OrderID == orderID {
			return check.Outcome == enums.PaymentOutcomePaid
		}
	}
	return true
}
