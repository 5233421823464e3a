package model

import (
	"errors"
	"slices"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
)

var ErrProfileNotFound = errors.New("profile not found")

type Profile struct {
	UserID        int64        `json:"user_id"`
	Username      string       `json:"username,omitempty"`
	Gender        enums.Gender `json:"gender"`
	Region        string       `json:"region"`
	Entitlement   Entitlement  `json:"entitlement"`
	PendingOrders []string     `json:"pending_orders"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func NewProfile(userID int64, username string, now time.Time) Profile {
	return Profile{
		UserID:        userID,
		Username:      username,
		PendingOrders: []string{},
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
}

func (p Profile) Complete() bool {
	return p.Gender.Valid() && p.Region != ""
}

func (p Profile) HasPendingOrder(orderID string) bool {
	return slices.Contains(p.PendingOrders, orderID)
}

// AddPendingOrder keeps PendingOrders a set.
func (p *Profile) AddPendingOrder(orderID string) {
	if orderID == "" || p.HasPendingOrder(orderID) {
		return
	}
	p.PendingOrders = append(p.PendingOrders, orderID)
}

func (p *Profile) RemovePendingOrder(orderID string) bool {
	idx := slices.Index(p.PendingOrders, orderID)
	if idx < 0 {
		return false
	}
	p.PendingOrders = slices.Delete(p.PendingOrders, idx, idx+1)
	return true
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Profile) Clone() Profile {
	out := p
	out.PendingOrders = slices.Clone(p.PendingOrders)
	if out.PendingOrders == nil {
		out.PendingOrders = []string{}
	}
	if p.Entitlement.ExpiresAt != nil {
		exp := *p.Entitlement.ExpiresAt
		out.Entitlement.ExpiresAt = &exp
	}
	return out
}
