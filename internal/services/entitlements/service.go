package entitlements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
	"github.com/Abinayanafaiq/BotDating/internal/infra/pakasir"
	"github.com/Abinayanafaiq/BotDating/internal/pkg/keylock"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
)

type Store interface {
	GetOrCreate(ctx context.Context, userID int64, username string) (model.Profile, error)
	Put(ctx context.Context, profile model.Profile) error
}

type Gateway interface {
	CreateOrder(ctx context.Context, in pakasir.OrderRequest) (pakasir.Order, error)
	CheckStatus(ctx context.Context, orderID string) (string, error)
}

// OrderIndex maps order ids to their owners for the payment callback.
type OrderIndex interface {
	Save(ctx context.Context, orderID string, userID int64) error
	Delete(ctx context.Context, orderID string) error
}

type Observer interface {
	ObserveOrder(result string)
	ObserveVerify(outcome enums.PaymentOutcome)
}

type Config struct {
	Price        int
	DurationDays int
	CallbackURL  string
}

type Dependencies struct {
	Store   Store
	Gateway Gateway
	Locks   *keylock.Locker
	Logger  *zap.Logger
}

type Service struct {
	store    Store
	gateway  Gateway
	locks    *keylock.Locker
	orders   OrderIndex
	observer Observer
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

type OrderResult struct {
	OrderID    string
	Amount     int
	PaymentURL string
	QRString   string
}

type OrderCheck struct {
	OrderID string
	Outcome enums.PaymentOutcome
	Status  string
	Err     error
}

type VerifyReport struct {
	UserID         int64
	NothingPending bool
	Checks         []OrderCheck
	Activated      bool
	ExpiresAt      *time.Time
}

// PaidCount counts orders confirmed in this run.
func (r VerifyReport) PaidCount() int {
	n := 0
	for _, c := range r.Checks {
		if c.Outcome == enums.PaymentOutcomePaid {
			n++
		}
	}
	return n
}

type StatusView struct {
	UserID        int64
	Active        bool
	ExpiresAt     *time.Time
	PendingOrders []string
}

func NewService(deps Dependencies, cfg Config) *Service {
	locks := deps.Locks
	if locks == nil {
		locks = keylock.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   deps.Store,
		gateway: deps.Gateway,
		locks:   locks,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *Service) AttachOrderIndex(orders OrderIndex) {
	s.orders = orders
}

func (s *Service) AttachObserver(observer Observer) {
	s.observer = observer
}

// IsActive reports whether the entitlement holds at now. Expiry is evaluated
// on read; a missing expiry is never active.
func IsActive(ent model.Entitlement, now time.Time) bool {
	if !ent.Active || ent.ExpiresAt == nil {
		return false
	}
	return !now.After(*ent.ExpiresAt)
}

func (s *Service) IsActive(profile model.Profile, now time.Time) bool {
	return IsActive(profile.Entitlement, now)
}

// Activate grants days of PRO starting at now. A prior expiry is replaced.
func Activate(profile *model.Profile, days int, now time.Time) {
	exp := now.UTC().Add(time.Duration(days) * 24 * time.Hour)
	profile.Entitlement = model.Entitlement{Active: true, ExpiresAt: &exp}
}

// ClassifyStatus maps a raw gateway status onto a payment outcome.
func ClassifyStatus(raw string) enums.PaymentOutcome {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return enums.PaymentOutcomeUnknown
	case "paid", "completed", "success", "settlement":
		return enums.PaymentOutcomePaid
	default:
		return enums.PaymentOutcomePending
	}
}

func (s *Service) Status(ctx context.Context, userID int64, username string) (StatusView, error) {
	if userID <= 0 {
		return StatusView{}, ErrValidation
	}
	if s.store == nil {
		return StatusView{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.store.GetOrCreate(ctx, userID, username)
	if err != nil {
		return StatusView{}, fmt.Errorf("load profile: %w", err)
	}
	return StatusView{
		UserID:        userID,
		Active:        IsActive(profile.Entitlement, s.now().UTC()),
		ExpiresAt:     profile.Entitlement.ExpiresAt,
		PendingOrders: profile.PendingOrders,
	}, nil
}

// CreateOrder opens a gateway order and records it as pending. Nothing is
// persisted when the gateway call fails.
func (s *Service) CreateOrder(ctx context.Context, userID int64, username string) (OrderResult, error) {
	if userID <= 0 {
		return OrderResult{}, ErrValidation
	}
	if s.store == nil {
		return OrderResult{}, fmt.Errorf("entitlement store is nil")
	}
	if s.gateway == nil {
		s.observeOrder("gateway_error")
		return OrderResult{}, fmt.Errorf("%w: gateway is not configured", ErrGatewayUnavailable)
	}

	orderID := s.newID()
	label := strings.TrimSpace(username)
	if label == "" {
		label = fmt.Sprintf("%d", userID)
	}

	order, err := s.gateway.CreateOrder(ctx, pakasir.OrderRequest{
		OrderID:     orderID,
		Amount:      s.cfg.Price,
		Description: "Upgrade PRO untuk @" + label,
		CallbackURL: s.cfg.CallbackURL,
	})
	if err != nil {
		s.observeOrder("gateway_error")
		s.logger.Warn("create gateway order failed", zap.Error(err), zap.Int64("user_id", userID))
		return OrderResult{}, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	unlock := s.locks.Lock(userID)
	profile, err := s.store.GetOrCreate(ctx, userID, username)
	if err == nil {
		profile.AddPendingOrder(orderID)
		profile.UpdatedAt = s.now().UTC()
		err = s.store.Put(ctx, profile)
	}
	unlock()
	if err != nil {
		s.observeOrder("store_error")
		s.logger.Error("gateway order created but not recorded",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("order_id", orderID),
		)
		return OrderResult{}, fmt.Errorf("record pending order: %w", err)
	}

	if s.orders != nil {
		if err := s.orders.Save(ctx, orderID, userID); err != nil {
			s.logger.Warn("index pending order failed", zap.Error(err), zap.String("order_id", orderID))
		}
	}

	s.observeOrder("created")
	s.logger.Info("pending order created", zap.Int64("user_id", userID), zap.String("order_id", orderID))

	return OrderResult{
		OrderID:    orderID,
		Amount:     s.cfg.Price,
		PaymentURL: order.PaymentURL,
		QRString:   order.QRString,
	}, nil
}

// Verify asks the gateway about every pending order of the user. Paid orders
// activate the entitlement and leave the pending set; the rest stay.
func (s *Service) Verify(ctx context.Context, userID int64) (VerifyReport, error) {
	if userID <= 0 {
		return VerifyReport{}, ErrValidation
	}
	if s.store == nil {
		return VerifyReport{}, fmt.Errorf("entitlement store is nil")
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	profile, err := s.store.GetOrCreate(ctx, userID, "")
	if err != nil {
		return VerifyReport{}, fmt.Errorf("load profile: %w", err)
	}

	report := VerifyReport{UserID: userID}
	if len(profile.PendingOrders) == 0 {
		report.NothingPending = true
		return report, nil
	}

	paid := make([]string, 0)
	for _, orderID := range append([]string(nil), profile.PendingOrders...) {
		check := s.checkOrder(ctx, orderID)
		report.Checks = append(report.Checks, check)
		if s.observer != nil {
			s.observer.ObserveVerify(check.Outcome)
		}
		if check.Outcome != enums.PaymentOutcomePaid {
			continue
		}
		Activate(&profile, s.cfg.DurationDays, s.now())
		profile.RemovePendingOrder(orderID)
		paid = append(paid, orderID)
	}

	if len(paid) == 0 {
		return report, nil
	}

	profile.UpdatedAt = s.now().UTC()
	if err := s.store.Put(ctx, profile); err != nil {
		return VerifyReport{}, fmt.Errorf("save activated profile: %w", err)
	}
	report.Activated = true
	report.ExpiresAt = profile.Entitlement.ExpiresAt

	s.logger.Info("entitlement activated",
		zap.Int64("user_id", userID),
		zap.Strings("order_ids", paid),
		zap.Timep("expires_at", report.ExpiresAt),
	)

	if s.orders != nil {
		for _, orderID := range paid {
			if err := s.orders.Delete(ctx, orderID); err != nil {
				s.logger.Warn("drop order index failed", zap.Error(err), zap.String("order_id", orderID))
			}
		}
	}
	return report, nil
}

// Grant activates the entitlement without a payment, for operators.
func (s *Service) Grant(ctx context.Context, userID int64, days int) (model.Profile, error) {
	if userID <= 0 || days <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	profile, err := s.store.GetOrCreate(ctx, userID, "")
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	Activate(&profile, days, s.now())
	profile.UpdatedAt = s.now().UTC()
	if err := s.store.Put(ctx, profile); err != nil {
		return model.Profile{}, fmt.Errorf("save granted profile: %w", err)
	}
	return profile, nil
}

// checkOrder reports Unknown without a gateway so the order is kept.
func (s *Service) checkOrder(ctx context.Context, orderID string) OrderCheck {
	if s.gateway == nil {
		return OrderCheck{
			OrderID: orderID,
			Outcome: enums.PaymentOutcomeUnknown,
			Err:     fmt.Errorf("%w: %w", ErrUnknownPaymentStatus, ErrGatewayUnavailable),
		}
	}

	raw, err := s.gateway.CheckStatus(ctx, orderID)
	if err != nil {
		s.logger.Warn("check order status failed", zap.Error(err), zap.String("order_id", orderID))
		return OrderCheck{
			OrderID: orderID,
			Outcome: enums.PaymentOutcomeUnknown,
			Err:     fmt.Errorf("%w: %w", ErrUnknownPaymentStatus, err),
		}
	}

	outcome := ClassifyStatus(raw)
	check := OrderCheck{OrderID: orderID, Outcome: outcome, Status: raw}
	if outcome == enums.PaymentOutcomeUnknown {
		check.Err = ErrUnknownPaymentStatus
	}
	return check
}

func (s *Service) observeOrder(result string) {
	if s.observer != nil {
		s.observer.ObserveOrder(result)
	}
}
