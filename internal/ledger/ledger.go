// Package ledger implements the append-only learning ledger. Every registry
// transition and every feedback signal becomes an Entry with a sequence id
// assigned at append time. Entries are never modified or removed.
package ledger

import (
	"context"
	"iter"
	"maps"
	"sync"
	"time"

	"github.com/vk/hotswap/internal/ctxlog"
)

// Journal receives a copy of every appended entry. Writes happen on a
// background goroutine in sequence order, so a slow journal never stalls
// appenders. Journal failures are logged and never undo the in-memory append.
type Journal interface {
	Append(ctx context.Context, e Entry) error
}

// Filter narrows a Query. The zero Filter matches every entry.
type Filter struct {
	Kind             Kind
	ModificationKind ModificationKind
	Capability       string
	// SinceSeq excludes entries with a sequence id at or below it.
	SinceSeq uint64
	// Limit caps the number of yielded entries when positive.
	Limit int
}

// Match reports whether e passes the filter, ignoring Limit.
func (f Filter) Match(e Entry) bool {
	if e.Seq <= f.SinceSeq {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.ModificationKind != "" && (e.Modification == nil || e.Modification.Kind != f.ModificationKind) {
		return false
	}
	if f.Capability != "" && e.Capability() != f.Capability {
		return false
	}
	return true
}

// Stats are running counters over the ledger.
type Stats struct {
	Entries       int                      `json:"entries"`
	Modifications int                      `json:"modifications"`
	Feedback      int                      `json:"feedback"`
	Successes     int                      `json:"successes"`
	ByKind        map[ModificationKind]int `json:"by_kind"`
	LastSeq       uint64                   `json:"last_seq"`
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithJournal mirrors every append to j.
func WithJournal(j Journal) Option {
	return func(l *Ledger) {
		l.journal = j
	}
}

// WithClock overrides the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

type journalItem struct {
	ctx   context.Context
	entry Entry
}

// Ledger is safe for concurrent use.
type Ledger struct {
	// mu also covers subscriber notifications and journal enqueueing so they
	// observe entries in sequence order.
	mu          sync.RWMutex
	entries     []Entry
	stats       Stats
	subscribers map[int]func(Entry)
	nextSubID   int

	journal Journal
	now     func() time.Time

	// jmu guards the journal queue. Lock order is mu then jmu.
	jmu     sync.Mutex
	jcond   *sync.Cond
	pending []journalItem
	writing bool
	closed  bool
	done    chan struct{}
}

// New creates an empty Ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		stats:       Stats{ByKind: make(map[ModificationKind]int)},
		subscribers: make(map[int]func(Entry)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.journal != nil {
		l.jcond = sync.NewCond(&l.jmu)
		l.done = make(chan struct{})
		go l.writeJournal()
	}
	return l
}

// Flush blocks until every entry appended so far has been handed to the
// journal. It returns immediately when no journal is configured.
func (l *Ledger) Flush() {
	if l.journal == nil {
		return
	}
	l.jmu.Lock()
	defer l.jmu.Unlock()
	for len(l.pending) > 0 || l.writing {
		l.jcond.Wait()
	}
}

// Close drains the journal queue and stops the journal writer. Entries
// appended after Close are kept in memory but not journaled. Close is
// idempotent.
func (l *Ledger) Close() {
	if l.journal == nil {
		return
	}
	l.jmu.Lock()
	l.closed = true
	l.jcond.Broadcast()
	l.jmu.Unlock()
	<-l.done
}

func (l *Ledger) enqueue(ctx context.Context, e Entry) {
	l.jmu.Lock()
	defer l.jmu.Unlock()
	if l.closed {
		ctxlog.FromContext(ctx).Warn("Ledger closed, entry not journaled.", "seq", e.Seq)
		return
	}
	l.pending = append(l.pending, journalItem{ctx: context.WithoutCancel(ctx), entry: e})
	l.jcond.Broadcast()
}

func (l *Ledger) writeJournal() {
	defer close(l.done)
	l.jmu.Lock()
	defer l.jmu.Unlock()
	for {
		for len(l.pending) == 0 && !l.closed {
			l.jcond.Wait()
		}
		if len(l.pending) == 0 {
			return
		}
		batch := l.pending
		l.pending = nil
		l.writing = true
		l.jmu.Unlock()

		for _, it := range batch {
			if err := l.journal.Append(it.ctx, it.entry); err != nil {
				ctxlog.FromContext(it.ctx).Error("Failed to journal ledger entry.", "seq", it.entry.Seq, "error", err)
			}
		}

		l.jmu.Lock()
		l.writing = false
		l.jcond.Broadcast()
	}
}

// RecordModification appends a modification event. A zero At is stamped with
// the ledger clock.
func (l *Ledger) RecordModification(ctx context.Context, ev ModificationEvent) Entry {
	if ev.At.IsZero() {
		ev.At = l.now()
	}
	return l.append(ctx, Entry{Kind: KindModification, Modification: &ev})
}

// RecordFeedback appends a feedback event.
func (l *Ledger) RecordFeedback(ctx context.Context, note string, success bool) Entry {
	return l.append(ctx, Entry{
		Kind:     KindFeedback,
		Feedback: &FeedbackEvent{Note: note, Success: success, At: l.now()},
	})
}

func (l *Ledger) append(ctx context.Context, e Entry) Entry {
	l.mu.Lock()
	e.Seq = uint64(len(l.entries)) + 1
	l.entries = append(l.entries, e)
	l.count(e)
	defer l.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Ledger entry appended.", "seq", e.Seq, "kind", e.Kind)

	if l.journal != nil {
		l.enqueue(ctx, e.clone())
	}
	for _, fn := range l.subscribers {
		fn(e.clone())
	}
	return e.clone()
}

func (l *Ledger) count(e Entry) {
	l.stats.Entries++
	l.stats.LastSeq = e.Seq
	switch {
	case e.Modification != nil:
		l.stats.Modifications++
		l.stats.ByKind[e.Modification.Kind]++
	case e.Feedback != nil:
		l.stats.Feedback++
		if e.Feedback.Success {
			l.stats.Successes++
		}
	}
}

// Query yields matching entries in ascending sequence order. Each range over
// the returned sequence reads a fresh snapshot, so it is restartable and sees
// entries appended since the previous range.
func (l *Ledger) Query(f Filter) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		l.mu.RLock()
		snapshot := l.entries[:len(l.entries):len(l.entries)]
		l.mu.RUnlock()

		n := 0
		for _, e := range snapshot {
			if !f.Match(e) {
				continue
			}
			if !yield(e.clone()) {
				return
			}
			n++
			if f.Limit > 0 && n >= f.Limit {
				return
			}
		}
	}
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Stats returns a copy of the running counters.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := l.stats
	s.ByKind = maps.Clone(l.stats.ByKind)
	return s
}

// Subscribe registers fn to be called with every subsequently appended entry,
// in sequence order. fn runs with the ledger locked and must not call back
// into it. The returned function removes the subscription.
func (l *Ledger) Subscribe(fn func(Entry)) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subscribers, id)
	}
}
