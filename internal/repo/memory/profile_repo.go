package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
)

type ProfileRepo struct {
	mu       sync.RWMutex
	profiles map[int64]model.Profile
	now      func() time.Time
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{
		profiles: make(map[int64]model.Profile),
		now:      time.Now,
	}
}

func (r *ProfileRepo) Get(_ context.Context, userID int64) (model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return model.Profile{}, model.ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (r *ProfileRepo) GetOrCreate(_ context.Context, userID int64, username string) (model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.profiles[userID]; ok {
		return p.Clone(), nil
	}
	p := model.NewProfile(userID, username, r.now())
	r.profiles[userID] = p
	return p.Clone(), nil
}

func (r *ProfileRepo) Put(_ context.Context, profile model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[profile.UserID] = profile.Clone()
	return nil
}

// ListWithPendingOrders returns profiles with user id above afterUserID,
// ordered by user id.
func (r *ProfileRepo) ListWithPendingOrders(_ context.Context, afterUserID int64, limit int) ([]model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Profile, 0)
	for _, p := range r.profiles {
		if p.UserID > afterUserID && len(p.PendingOrders) > 0 {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProfileRepo) FindByPendingOrder(_ context.Context, orderID string) (model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if p.HasPendingOrder(orderID) {
			return p.Clone(), nil
		}
	}
	return model.Profile{}, model.ErrProfileNotFound
}
