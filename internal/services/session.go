package services

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ananth-NQI/orderbot/internal/flow"
	"github.com/Ananth-NQI/orderbot/internal/log"
)

// ExpireFunc is called, while the customer's lease is held, after an idle
// session was removed.
type ExpireFunc func(session *flow.Session)

// SessionManager keeps one dialog session per customer id in memory and
// drops sessions that stay idle longer than the configured timeout.
//
// All access to a customer's session goes through a Lease, which serializes
// inbound events and timer expiry for that customer.
type SessionManager struct {
	mu       sync.Mutex
	slots    map[string]*sessionSlot
	idle     time.Duration
	onExpire ExpireFunc
	now      func() time.Time
	logger   zerolog.Logger
	closed   bool

	active atomic.Int64
	gen    atomic.Uint64 // timer generations, unique across slots
}

type sessionSlot struct {
	mu      sync.Mutex
	refs    int // lease holders and waiters, guarded by SessionManager.mu
	session *flow.Session
	timer   *time.Timer
	gen     uint64 // changed on every re-arm so stale timers can tell they lost
}

// NewSessionManager creates a session manager with the given idle timeout.
func NewSessionManager(idle time.Duration, onExpire ExpireFunc) *SessionManager {
	return &SessionManager{
		slots:    make(map[string]*sessionSlot),
		idle:     idle,
		onExpire: onExpire,
		now:      time.Now,
		logger:   log.WithComponent("sessions"),
	}
}

// Lease is exclusive ownership of one customer's session. It must be released.
type Lease struct {
	sm         *SessionManager
	customerID string
	slot       *sessionSlot
	released   bool
}

// Acquire blocks until the caller is the only holder for customerID.
func (sm *SessionManager) Acquire(customerID string) *Lease {
	sm.mu.Lock()
	slot, ok := sm.slots[customerID]
	if !ok {
		slot = &sessionSlot{}
		sm.slots[customerID] = slot
	}
	slot.refs++
	sm.mu.Unlock()

	slot.mu.Lock()
	return &Lease{sm: sm, customerID: customerID, slot: slot}
}

// Release gives up the lease and reclaims the slot when nothing uses it.
func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true

	empty := l.slot.session == nil && l.slot.timer == nil
	l.slot.mu.Unlock()

	l.sm.mu.Lock()
	l.slot.refs--
	if l.slot.refs == 0 && empty && l.sm.slots[l.customerID] == l.slot {
		delete(l.sm.slots, l.customerID)
	}
	l.sm.mu.Unlock()
}

// Get returns the current session, if any.
func (l *Lease) Get() (*flow.Session, bool) {
	return l.slot.session, l.slot.session != nil
}

// GetOrCreate returns the current session or starts one at the greeting.
// The second result reports whether the session was created.
func (l *Lease) GetOrCreate() (*flow.Session, bool) {
	if l.slot.session != nil {
		return l.slot.session, false
	}
	l.slot.session = flow.NewSession(l.customerID, l.sm.now())
	l.sm.active.Add(1)
	l.sm.logger.Debug().Str("customer", l.customerID).Msg("session created")
	return l.slot.session, true
}

// Reset discards the current session and starts a new one at the greeting.
func (l *Lease) Reset() *flow.Session {
	if l.slot.session == nil {
		l.sm.active.Add(1)
	}
	l.slot.session = flow.NewSession(l.customerID, l.sm.now())
	l.sm.logger.Debug().Str("customer", l.customerID).Msg("session reset")
	return l.slot.session
}

// Delete drops the session and cancels its inactivity timer.
func (l *Lease) Delete() {
	l.stopTimer()
	if l.slot.session != nil {
		l.sm.active.Add(-1)
		l.slot.session = nil
	}
}

// Touch re-arms the inactivity timer: any pending timer is cancelled and a
// new one started for the full idle duration.
func (l *Lease) Touch() {
	l.stopTimer()
	if l.slot.session == nil || l.sm.isClosed() {
		return
	}
	l.slot.session.LastActive = l.sm.now()

	gen := l.slot.gen
	sm, customerID := l.sm, l.customerID
	l.slot.timer = time.AfterFunc(sm.idle, func() {
		sm.expire(customerID, gen)
	})
}

func (l *Lease) stopTimer() {
	if l.slot.timer != nil {
		l.slot.timer.Stop()
		l.slot.timer = nil
	}
	// A timer that already fired but still waits for the lease sees a
	// different generation and backs off.
	l.slot.gen = l.sm.gen.Add(1)
}

// expire runs as one more event for the customer: it only deletes the
// session if no event re-armed or removed it since the timer started.
func (sm *SessionManager) expire(customerID string, gen uint64) {
	lease := sm.Acquire(customerID)
	defer lease.Release()

	if lease.slot.gen != gen {
		return
	}
	lease.slot.timer = nil

	session := lease.slot.session
	if session == nil {
		return
	}
	lease.slot.session = nil
	sm.active.Add(-1)

	sm.logger.Info().
		Str("customer", customerID).
		Str("step", string(session.Step)).
		Dur("idle", sm.idle).
		Msg("session expired")

	if sm.onExpire != nil {
		sm.onExpire(session)
	}
}

// Len returns the number of live sessions.
func (sm *SessionManager) Len() int {
	return int(sm.active.Load())
}

// Close cancels every inactivity timer. Sessions are left in place; the
// process is expected to exit.
func (sm *SessionManager) Close() {
	sm.mu.Lock()
	sm.closed = true
	slots := make([]*sessionSlot, 0, len(sm.slots))
	for _, s := range sm.slots {
		slots = append(slots, s)
	}
	sm.mu.Unlock()

	for _, s := range slots {
		s.mu.Lock()
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.gen = sm.gen.Add(1)
		s.mu.Unlock()
	}
}

func (sm *SessionManager) isClosed() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.closed
}
