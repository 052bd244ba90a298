package kermesse

import (
	"sync"
)

// ChangeOp is the kind of backend mutation
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change describes one backend mutation. Keys carries the owner-key values
// of the affected record (agent id, event id, participant id) used for
// subscription filtering; a missing key never suppresses delivery.
type Change struct {
	Table string
	Op    ChangeOp
	Keys  map[string]string
}

// ChangeHandler receives matching changes. Delivery is at-least-once:
// duplicates and coalesced notifications are permitted, so handlers must be
// idempotent (the caches reload wholesale for exactly this reason).
type ChangeHandler func(Change)

// ChangeRecord is implemented by models that announce their own mutations
// to the feed.
type ChangeRecord interface {
	ChangeTable() string
	ChangeKeys() map[string]string
}

// ChangeFeed is the process-wide bridge between backend mutations and the
// caches that need to hear about them. Subscriptions are independent; no
// locking is required of subscribers.
type ChangeFeed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscription
	logger Logger
}

type subscription struct {
	table       string
	filterKey   string
	filterValue string
	fn          ChangeHandler
}

// ChangeFeedOption customizes feed construction
type ChangeFeedOption func(*ChangeFeed)

// WithChangeFeedLogger overrides the feed's logger.
func WithChangeFeedLogger(logger Logger) ChangeFeedOption {
	return func(f *ChangeFeed) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewChangeFeed returns an empty feed.
func NewChangeFeed(opts ...ChangeFeedOption) *ChangeFeed {
	f := &ChangeFeed{
		subs:   map[int]*subscription{},
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// Subscribe registers fn for changes to table whose filterKey equals
// filterValue. An empty filterKey matches every change on the table.
//
// The returned disposer must be invoked exactly once on the consuming
// view's teardown; it is safe against double invocation but a leaked handle
// leaks a live subscription.
func (f *ChangeFeed) Subscribe(table, filterKey, filterValue string, fn ChangeHandler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subs[id] = &subscription{
		table:       table,
		filterKey:   filterKey,
		filterValue: filterValue,
		fn:          fn,
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Publish fans the change out to every matching subscriber. Handlers run
// on the publisher's goroutine; subscribers that need to do real work hand
// it off themselves (the caches do).
func (f *ChangeFeed) Publish(change Change) {
	if change.Table == "" {
		return
	}

	f.mu.RLock()
	matched := make([]ChangeHandler, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.matches(change) {
			matched = append(matched, sub.fn)
		}
	}
	f.mu.RUnlock()

	for _, fn := range matched {
		fn(change)
	}
}

// PublishRecord publishes a mutation described by the record itself.
func (f *ChangeFeed) PublishRecord(op ChangeOp, record ChangeRecord) {
	if record == nil {
		return
	}
	f.Publish(Change{
		Table: record.ChangeTable(),
		Op:    op,
		Keys:  record.ChangeKeys(),
	})
}

// SubscriberCount reports live subscriptions, mostly for leak checks.
func (f *ChangeFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

func (s *subscription) matches(change Change) bool {
	if s.table != change.Table {
		return false
	}
	if s.filterKey == "" {
		return true
	}

	val, ok := change.Keys[s.filterKey]
	if !ok {
		// the publisher did not carry this key; over-deliver rather than
		// risk a dropped notification
		return true
	}
	return val == s.filterValue
}
