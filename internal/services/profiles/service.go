package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
	"github.com/Abinayanafaiq/BotDating/internal/domain/rules"
	"github.com/Abinayanafaiq/BotDating/internal/pkg/keylock"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidGender = errors.New("gender must be pria or wanita")
	ErrInvalidRegion = errors.New("unknown region")
)

// Store is implemented by every profile backend. Get reports
// model.ErrProfileNotFound for unknown users.
type Store interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
	GetOrCreate(ctx context.Context, userID int64, username string) (model.Profile, error)
	Put(ctx context.Context, profile model.Profile) error
	ListWithPendingOrders(ctx context.Context, afterUserID int64, limit int) ([]model.Profile, error)
	FindByPendingOrder(ctx context.Context, orderID string) (model.Profile, error)
}

type Service struct {
	store  Store
	locks  *keylock.Locker
	logger *zap.Logger
	now    func() time.Time
}

type Dependencies struct {
	Store  Store
	Locks  *keylock.Locker
	Logger *zap.Logger
}

func NewService(deps Dependencies) *Service {
	locks := deps.Locks
	if locks == nil {
		locks = keylock.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  deps.Store,
		locks:  locks,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) GetOrCreate(ctx context.Context, userID int64, username string) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}
	return s.store.GetOrCreate(ctx, userID, strings.TrimSpace(username))
}

func (s *Service) SetGender(ctx context.Context, userID int64, username, raw string) (model.Profile, error) {
	gender, ok := enums.ParseGender(raw)
	if !ok {
		return model.Profile{}, ErrInvalidGender
	}
	return s.update(ctx, userID, username, func(p *model.Profile) {
		p.Gender = gender
	})
}

// SetRegion stores the canonical province matched by the raw input.
func (s *Service) SetRegion(ctx context.Context, userID int64, username, raw string) (model.Profile, error) {
	region, ok := rules.NormalizeRegion(raw)
	if !ok {
		return model.Profile{}, ErrInvalidRegion
	}
	return s.update(ctx, userID, username, func(p *model.Profile) {
		p.Region = region
	})
}

func (s *Service) update(ctx context.Context, userID int64, username string, mutate func(p *model.Profile)) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	profile, err := s.store.GetOrCreate(ctx, userID, strings.TrimSpace(username))
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	mutate(&profile)
	if name := strings.TrimSpace(username); name != "" {
		profile.Username = name
	}
	profile.UpdatedAt = s.now().UTC()

	if err := s.store.Put(ctx, profile); err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Debug("profile updated",
		zap.Int64("user_id", userID),
		zap.String("gender", string(profile.Gender)),
		zap.String("region", profile.Region),
	)
	return profile, nil
}
