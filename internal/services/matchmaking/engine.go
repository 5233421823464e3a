package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrAlreadyInSession   = errors.New("user already in a session")
	ErrProfileIncomplete  = errors.New("profile gender and region must be set")
	ErrDependencyNotReady = errors.New("matchmaking dependencies are not configured")
)

// TooManySearchesError is returned when the per-user search window is full.
type TooManySearchesError struct {
	retryAfterSec int64
}

func (e *TooManySearchesError) Error() string {
	return fmt.Sprintf("too many searches, retry after %ds", e.retryAfterSec)
}

func (e *TooManySearchesError) RetryAfter() int64 {
	return e.retryAfterSec
}

func IsTooManySearches(err error) (*TooManySearchesError, bool) {
	var target *TooManySearchesError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

type ProfileStore interface {
	GetOrCreate(ctx context.Context, userID int64, username string) (model.Profile, error)
}

type EntitlementChecker interface {
	IsActive(profile model.Profile, now time.Time) bool
}

type SearchLimiter interface {
	AllowSearch(ctx context.Context, userID int64) (int64, bool, error)
}

type Observer interface {
	ObserveMatch(filtered bool)
	SetWaiting(n int)
	SetSessions(n int)
}

type SearchOutcome string

const (
	SearchMatched SearchOutcome = "matched"
	SearchWaiting SearchOutcome = "waiting"
)

type CancelOutcome string

const (
	CancelLeftSession   CancelOutcome = "left_session"
	CancelStoppedSearch CancelOutcome = "stopped_search"
	CancelNotSearching  CancelOutcome = "not_searching"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusWaiting Status = "waiting"
	StatusPaired  Status = "paired"
)

type SearchRequest struct {
	UserID   int64
	Username string
	Filters  Filters
}

type SearchResult struct {
	Outcome   SearchOutcome
	PartnerID int64
	Entitled  bool
	// Applied is what actually constrained the scan; empty for free users.
	Applied Filters
}

type CancelResult struct {
	Outcome   CancelOutcome
	PartnerID int64
}

type Dependencies struct {
	Profiles     ProfileStore
	Entitlements EntitlementChecker
	Notifier     Notifier
	Logger       *zap.Logger
}

// Engine pairs searching users. mu is the single serialization point for
// every compound change to the pool and the session table; notifications are
// sent only after it is released.
type Engine struct {
	mu       sync.Mutex
	pool     *WaitingPool
	sessions *SessionTable

	profiles     ProfileStore
	entitlements EntitlementChecker
	notifier     Notifier
	limiter      SearchLimiter
	observer     Observer
	logger       *zap.Logger
	now          func() time.Time
}

func NewEngine(deps Dependencies) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Engine{
		pool:         NewWaitingPool(),
		sessions:     NewSessionTable(),
		profiles:     deps.Profiles,
		entitlements: deps.Entitlements,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

func (e *Engine) AttachLimiter(limiter SearchLimiter) {
	e.limiter = limiter
}

func (e *Engine) AttachObserver(observer Observer) {
	e.observer = observer
}

func (e *Engine) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	if req.UserID <= 0 {
		return SearchResult{}, ErrValidation
	}
	if e.profiles == nil || e.entitlements == nil {
		return SearchResult{}, ErrDependencyNotReady
	}

	if err := e.checkSearchRate(ctx, req.UserID); err != nil {
		return SearchResult{}, err
	}

	profile, err := e.profiles.GetOrCreate(ctx, req.UserID, req.Username)
	if err != nil {
		return SearchResult{}, fmt.Errorf("load searcher profile: %w", err)
	}
	if !profile.Complete() {
		return SearchResult{}, ErrProfileIncomplete
	}

	now := e.now().UTC()
	entitled := e.entitlements.IsActive(profile, now)
	applied := req.Filters
	if !entitled {
		applied = Filters{}
	}
	attrs := Attributes{Gender: profile.Gender, Region: profile.Region}

	e.mu.Lock()
	if _, paired := e.sessions.PartnerOf(req.UserID); paired {
		e.mu.Unlock()
		return SearchResult{}, ErrAlreadyInSession
	}

	partnerID, found := e.firstCandidate(req.UserID, applied)
	if found {
		if err := e.sessions.Link(req.UserID, partnerID, now); err != nil {
			e.mu.Unlock()
			e.logger.Error("session table invariant violated",
				zap.Error(err),
				zap.Int64("user_id", req.UserID),
				zap.Int64("partner_id", partnerID),
			)
			return SearchResult{}, fmt.Errorf("commit match: %w", err)
		}
		e.pool.Remove(partnerID)
		e.pool.Remove(req.UserID)
	} else {
		e.pool.Enroll(Entry{
			UserID:     req.UserID,
			Attributes: attrs,
			Filters:    applied,
			EnrolledAt: now,
		})
	}
	waiting, sessions := e.pool.Len(), e.sessions.Len()
	e.mu.Unlock()

	e.observe(waiting, sessions)

	if found {
		if e.observer != nil {
			e.observer.ObserveMatch(!applied.Empty())
		}
		e.logger.Info("match committed",
			zap.Int64("user_id", req.UserID),
			zap.Int64("partner_id", partnerID),
			zap.Bool("filtered", !applied.Empty()),
		)
		e.notify(ctx, req.UserID, Event{Kind: EventMatched, PartnerID: partnerID})
		e.notify(ctx, partnerID, Event{Kind: EventMatched, PartnerID: req.UserID})
		return SearchResult{Outcome: SearchMatched, PartnerID: partnerID, Entitled: entitled, Applied: applied}, nil
	}

	e.logger.Debug("user enrolled in waiting pool",
		zap.Int64("user_id", req.UserID),
		zap.Bool("filtered", !applied.Empty()),
	)
	e.notify(ctx, req.UserID, Event{Kind: EventWaiting, Filters: applied})
	return SearchResult{Outcome: SearchWaiting, Entitled: entitled, Applied: applied}, nil
}

// firstCandidate must be called with e.mu held.
func (e *Engine) firstCandidate(userID int64, filters Filters) (int64, bool) {
	for candidate := range e.pool.Candidates() {
		if candidate.UserID == userID {
			continue
		}
		if filters.Match(candidate.Attributes) {
			return candidate.UserID, true
		}
	}
	return 0, false
}

func (e *Engine) Cancel(ctx context.Context, userID int64) (CancelResult, error) {
	if userID <= 0 {
		return CancelResult{}, ErrValidation
	}

	e.mu.Lock()
	partnerID, paired := e.sessions.Unlink(userID)
	removed := false
	if !paired {
		removed = e.pool.Remove(userID)
	}
	waiting, sessions := e.pool.Len(), e.sessions.Len()
	e.mu.Unlock()

	switch {
	case paired:
		e.observe(waiting, sessions)
		e.logger.Info("session ended", zap.Int64("user_id", userID), zap.Int64("partner_id", partnerID))
		e.notify(ctx, partnerID, Event{Kind: EventPartnerDisconnected, PartnerID: userID})
		e.notify(ctx, userID, Event{Kind: EventCancelled, PartnerID: partnerID, WasPaired: true})
		return CancelResult{Outcome: CancelLeftSession, PartnerID: partnerID}, nil
	case removed:
		e.observe(waiting, sessions)
		e.notify(ctx, userID, Event{Kind: EventCancelled})
		return CancelResult{Outcome: CancelStoppedSearch}, nil
	default:
		return CancelResult{Outcome: CancelNotSearching}, nil
	}
}

// Next leaves the current session or search and immediately searches again.
func (e *Engine) Next(ctx context.Context, req SearchRequest) (CancelResult, SearchResult, error) {
	cancelled, err := e.Cancel(ctx, req.UserID)
	if err != nil {
		return CancelResult{}, SearchResult{}, err
	}
	found, err := e.Search(ctx, req)
	if err != nil {
		return cancelled, SearchResult{}, err
	}
	return cancelled, found, nil
}

func (e *Engine) PartnerOf(userID int64) (int64, bool) {
	return e.sessions.PartnerOf(userID)
}

// Occupancy reports the pool size and the number of live sessions.
func (e *Engine) Occupancy() (waiting, sessions int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Len(), e.sessions.Len()
}

func (e *Engine) Status(userID int64) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions.PartnerOf(userID); ok {
		return StatusPaired
	}
	if e.pool.Contains(userID) {
		return StatusWaiting
	}
	return StatusIdle
}

func (e *Engine) checkSearchRate(ctx context.Context, userID int64) error {
	if e.limiter == nil {
		return nil
	}

	retryAfter, allowed, err := e.limiter.AllowSearch(ctx, userID)
	if err != nil {
		e.logger.Warn("search rate check failed, allowing search", zap.Error(err), zap.Int64("user_id", userID))
		return nil
	}
	if !allowed {
		return &TooManySearchesError{retryAfterSec: retryAfter}
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, userID int64, event Event) {
	if err := e.notifier.Notify(ctx, userID, event); err != nil {
		e.logger.Warn("notification delivery failed",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("event", string(event.Kind)),
		)
	}
}

func (e *Engine) observe(waiting, sessions int) {
	if e.observer == nil {
		return
	}
	e.observer.SetWaiting(waiting)
	e.observer.SetSessions(sessions)
}
