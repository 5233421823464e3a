// Package jsonfile keeps profiles in a single users.json document keyed by
// the stringified user id.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
)

const expiryLayout = "2006-01-02T15:04:05.000000"

var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

type record struct {
	Username      string    `json:"username,omitempty"`
	Gender        *string   `json:"gender"`
	Region        *string   `json:"region"`
	IsPro         bool      `json:"is_pro"`
	ProExpiry     *string   `json:"pro_expiry"`
	PendingOrders []string  `json:"pending_orders"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

type ProfileRepo struct {
	mu       sync.RWMutex
	path     string
	profiles map[int64]model.Profile
	now      func() time.Time
}

// Open loads path if it exists. A missing file starts an empty store.
func Open(path string) (*ProfileRepo, error) {
	repo := &ProfileRepo{
		path:     path,
		profiles: make(map[int64]model.Profile),
		now:      time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repo, nil
		}
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	if len(data) == 0 {
		return repo, nil
	}

	var raw map[string]record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode profiles file: %w", err)
	}
	for key, rec := range raw {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode profiles file: invalid user id %q", key)
		}
		repo.profiles[userID] = fromRecord(userID, rec)
	}
	return repo, nil
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
	if err := r.flushLocked(); err != nil {
		delete(r.profiles, userID)
		return model.Profile{}, err
	}
	return p.Clone(), nil
}

func (r *ProfileRepo) Put(_ context.Context, profile model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.profiles[profile.UserID]
	r.profiles[profile.UserID] = profile.Clone()
	if err := r.flushLocked(); err != nil {
		if existed {
			r.profiles[profile.UserID] = prev
		} else {
			delete(r.profiles, profile.UserID)
		}
		return err
	}
	return nil
}

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

// flushLocked rewrites the whole document through a temp file so readers
// never see a partial write.
func (r *ProfileRepo) flushLocked() error {
	raw := make(map[string]record, len(r.profiles))
	for id, p := range r.profiles {
		raw[strconv.FormatInt(id, 10)] = toRecord(p)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profiles file: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp profiles file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp profiles file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp profiles file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace profiles file: %w", err)
	}
	return nil
}

func fromRecord(userID int64, rec record) model.Profile {
	p := model.Profile{
		UserID:        userID,
		Username:      rec.Username,
		PendingOrders: append([]string{}, rec.PendingOrders...),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
	if rec.Gender != nil {
		if g, ok := enums.ParseGender(*rec.Gender); ok {
			p.Gender = g
		}
	}
	if rec.Region != nil {
		p.Region = *rec.Region
	}
	p.Entitlement.Active = rec.IsPro
	if rec.ProExpiry != nil {
		// An unreadable expiry loads as none, which is never entitled.
		p.Entitlement.ExpiresAt = parseExpiry(*rec.ProExpiry)
	}
	return p
}

func toRecord(p model.Profile) record {
	rec := record{
		Username:      p.Username,
		IsPro:         p.Entitlement.Active,
		PendingOrders: append([]string{}, p.PendingOrders...),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Gender != enums.GenderUnset {
		g := string(p.Gender)
		rec.Gender = &g
	}
	if p.Region != "" {
		region := p.Region
		rec.Region = &region
	}
	if p.Entitlement.ExpiresAt != nil {
		exp := p.Entitlement.ExpiresAt.UTC().Format(expiryLayout)
		rec.ProExpiry = &exp
	}
	return rec
}

func parseExpiry(raw string) *time.Time {
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
