package matchmaking

import (
	"container/list"
	"iter"
	"sync"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
)

// Attributes is the snapshot of a waiting user's own profile fields.
type Attributes struct {
	Gender enums.Gender
	Region string
}

// Filters are the optional targets a PRO searcher asked for. Zero fields
// mean "any".
type Filters struct {
	TargetGender enums.Gender
	TargetRegion string
}

func (f Filters) Empty() bool {
	return f.TargetGender == enums.GenderUnset && f.TargetRegion == ""
}

// Match reports whether a candidate with attrs satisfies every set target.
func (f Filters) Match(attrs Attributes) bool {
	if f.TargetRegion != "" && attrs.Region != f.TargetRegion {
		return false
	}
	if f.TargetGender != enums.GenderUnset && attrs.Gender != f.TargetGender {
		return false
	}
	return true
}

type Entry struct {
	UserID     int64
	Attributes Attributes
	Filters    Filters
	EnrolledAt time.Time
}

// WaitingPool holds users looking for a partner in enrollment order.
type WaitingPool struct {
	mu      sync.RWMutex
	order   *list.List
	entries map[int64]*list.Element
}

func NewWaitingPool() *WaitingPool {
	return &WaitingPool{
		order:   list.New(),
		entries: make(map[int64]*list.Element),
	}
}

// Enroll inserts or replaces the user's entry. A replaced entry moves to the
// back of the line.
func (p *WaitingPool) Enroll(entry Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if el, ok := p.entries[entry.UserID]; ok {
		p.order.Remove(el)
	}
	p.entries[entry.UserID] = p.order.PushBack(entry)
}

func (p *WaitingPool) Remove(userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	el, ok := p.entries[userID]
	if !ok {
		return false
	}
	p.order.Remove(el)
	delete(p.entries, userID)
	return true
}

func (p *WaitingPool) Contains(userID int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[userID]
	return ok
}

func (p *WaitingPool) Get(userID int64) (Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	el, ok := p.entries[userID]
	if !ok {
		return Entry{}, false
	}
	return el.Value.(Entry), true
}

func (p *WaitingPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Candidates copies the pool at call time. The returned sequence can be
// ranged over any number of times and never observes later mutations.
func (p *WaitingPool) Candidates() iter.Seq[Entry] {
	p.mu.RLock()
	snapshot := make([]Entry, 0, len(p.entries))
	for el := p.order.Front(); el != nil; el = el.Next() {
		snapshot = append(snapshot, el.Value.(Entry))
	}
	p.mu.RUnlock()

	return func(yield func(Entry) bool) {
		for _, entry := range snapshot {
			if !yield(entry) {
				return
			}
		}
	}
}
