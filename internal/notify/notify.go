// Package notify manages short-lived banners and error text derived from
// protocol events. Notifications decay on a fixed timer and are never part of
// the durable session snapshot.
package notify

import (
	"sort"
	"sync"
	"time"
)

// Category identifies one slot of transient UI state. A new notification in a
// category replaces the current one; categories never queue.
type Category string

const (
	CategoryElimination Category = "elimination"
	CategoryWin         Category = "win"
	CategoryLoss        Category = "loss"
	CategoryDuplicate   Category = "duplicate"
	CategoryError       Category = "error"
)

// Notification is one displayed fact with its arrival time.
type Notification struct {
	Category Category
	Text     string
	At       time.Time
}

const (
	defaultTTL            = 3 * time.Second
	defaultSuppressWindow = 500 * time.Millisecond
)

// Manager owns all transient notification state. Safe for concurrent use,
// though the client drives it from a single loop.
type Manager struct {
	mu            sync.Mutex
	ttl           time.Duration
	suppressFor   time.Duration
	now           func() time.Time
	active        map[Category]Notification
	timers        map[Category]*time.Timer
	seq           map[Category]uint64
	suppressUntil time.Time
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithTTL sets how long a notification stays visible.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSuppressWindow sets the post-selection window during which incoming
// error notifications are dropped.
func WithSuppressWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.suppressFor = d
		}
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		ttl:         defaultTTL,
		suppressFor: defaultSuppressWindow,
		now:         time.Now,
		active:      make(map[Category]Notification),
		timers:      make(map[Category]*time.Timer),
		seq:         make(map[Category]uint64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Push records a notification, replacing any current one in the same
// category. The pending decay timer for the replaced notification is always
// canceled before a new one is armed, so a late timer can never clear a newer
// notification early.
func (m *Manager) Push(cat Category, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.push(cat, text)
}

// PushError records a generic error notification unless it arrives inside
// the post-selection suppression window, in which case it is dropped
// entirely, not deferred.
func (m *Manager) PushError(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.now().Before(m.suppressUntil) {
		return
	}
	m.push(CategoryError, text)
}

// SuppressErrors arms the suppression window. Called by the dispatcher right
// after a selectNumber send; re-arming extends the window.
func (m *Manager) SuppressErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressUntil = m.now().Add(m.suppressFor)
}

// Get returns the active notification for a category, if any.
func (m *Manager) Get(cat Category) (Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.active[cat]
	return n, ok
}

// Active returns all currently displayed notifications in a stable order.
func (m *Manager) Active() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, 0, len(m.active))
	for _, n := range m.active {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Reset drops all notifications and pending timers. Used on lobby exit.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for cat, t := range m.timers {
		t.Stop()
		delete(m.timers, cat)
	}
	clear(m.active)
	m.suppressUntil = time.Time{}
}

func (m *Manager) push(cat Category, text string) {
	if t, ok := m.timers[cat]; ok {
		t.Stop()
	}
	m.seq[cat]++
	seq := m.seq[cat]
	m.active[cat] = Notification{Category: cat, Text: text, At: m.now()}
	m.timers[cat] = time.AfterFunc(m.ttl, func() { m.expire(cat, seq) })
}

// expire clears a notification only if it is still the instance the timer was
// armed for. Clearing is monotonic: an expired notification never comes back.
func (m *Manager) expire(cat Category, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq[cat] != seq {
		return
	}
	delete(m.active, cat)
	delete(m.timers, cat)
}
