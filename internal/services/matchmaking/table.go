package matchmaking

import (
	"errors"
	"sync"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
)

var (
	ErrAlreadyLinked = errors.New("session table: user already has a partner")
	ErrSelfLink      = errors.New("session table: cannot link a user to itself")
)

// SessionTable is the symmetric partner relation. Every link stores both
// directions and every unlink drops both.
type SessionTable struct {
	mu       sync.RWMutex
	partners map[int64]int64
	started  map[int64]time.Time
}

func NewSessionTable() *SessionTable {
	return &SessionTable{
		partners: make(map[int64]int64),
		started:  make(map[int64]time.Time),
	}
}

func (t *SessionTable) Link(userA, userB int64, at time.Time) error {
	if userA == userB {
		return ErrSelfLink
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.partners[userA]; ok {
		return ErrAlreadyLinked
	}
	if _, ok := t.partners[userB]; ok {
		return ErrAlreadyLinked
	}

	t.partners[userA] = userB
	t.partners[userB] = userA
	t.started[userA] = at
	t.started[userB] = at
	return nil
}

// Unlink ends the user's session, if any, and returns the former partner.
func (t *SessionTable) Unlink(userID int64) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	partner, ok := t.partners[userID]
	if !ok {
		return 0, false
	}
	delete(t.partners, userID)
	delete(t.partners, partner)
	delete(t.started, userID)
	delete(t.started, partner)
	return partner, true
}

func (t *SessionTable) PartnerOf(userID int64) (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	partner, ok := t.partners[userID]
	return partner, ok
}

func (t *SessionTable) Session(userID int64) (model.ChatSession, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	partner, ok := t.partners[userID]
	if !ok {
		return model.ChatSession{}, false
	}
	return model.ChatSession{UserA: userID, UserB: partner, StartedAt: t.started[userID]}, true
}

// Len counts sessions, not directed entries.
func (t *SessionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.partners) / 2
}
