package application

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
)

type schedulerState int

const (
	stateIdle schedulerState = iota
	statePending
	stateRunning
)

// Scheduler owns the snapshot for one location. It coalesces bursts of
// change notifications into single aggregator passes and guarantees that at
// most one pass is in flight. All mutation goes through the
// Idle -> Pending -> Running transitions; the mutex is held only across
// transitions, never across the blocking store calls.
type Scheduler struct {
	locationID   string
	tracker      *Tracker
	aggregator   *Aggregator
	timezone     *time.Location
	debounce     time.Duration
	queryTimeout time.Duration
	logger       *log.Logger
	now          func() time.Time

	mu           sync.Mutex
	state        schedulerState
	timer        *time.Timer
	pendingAgain bool
	closed       bool
	version      uint64
	latest       *domain.Snapshot
	subscribers  map[int]chan domain.Snapshot
	nextSubID    int
}

// SchedulerConfig carries the dependencies for one location's scheduler.
type SchedulerConfig struct {
	LocationID   string
	Tracker      *Tracker
	Aggregator   *Aggregator
	Timezone     *time.Location
	Debounce     time.Duration
	QueryTimeout time.Duration
	Logger       *log.Logger
	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// NewScheduler builds the scheduler and forces an immediate first recompute,
// so the first view is never empty just because no change has happened yet.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Scheduler{
		locationID:   cfg.LocationID,
		tracker:      cfg.Tracker,
		aggregator:   cfg.Aggregator,
		timezone:     cfg.Timezone,
		debounce:     cfg.Debounce,
		queryTimeout: cfg.QueryTimeout,
		logger:       cfg.Logger,
		now:          now,
		subscribers:  make(map[int]chan domain.Snapshot),
	}
	s.state = stateRunning
	go s.run()
	return s
}

// Notify records that something relevant to the leaderboard changed. Bursts
// arriving within the debounce window trigger exactly one recompute; a
// notification during a running pass schedules exactly one more afterwards.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	switch s.state {
	case stateIdle:
		s.state = statePending
		s.timer = time.AfterFunc(s.debounce, s.fire)
	case statePending:
		s.timer.Reset(s.debounce)
	case stateRunning:
		s.pendingAgain = true
	}
}

// Latest returns the most recently published snapshot, if any.
func (s *Scheduler) Latest() (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return domain.Snapshot{}, false
	}
	return *s.latest, true
}

// Subscribe registers a read-only consumer of published snapshots. The
// channel holds the most recent unread snapshot; slow consumers only ever
// miss intermediate states, never the latest. Cancelling releases just this
// subscription and never aborts an in-flight recompute.
func (s *Scheduler) Subscribe() (<-chan domain.Snapshot, func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan domain.Snapshot, 1)
	s.subscribers[id] = ch
	if s.latest != nil {
		ch <- *s.latest
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close stops the debounce timer and drops all subscribers. An in-flight
// recompute finishes on its own; its result is discarded.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// fire moves Pending -> Running when the debounce timer expires.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.closed || s.state != statePending {
		s.mu.Unlock()
		return
	}
	s.state = stateRunning
	s.mu.Unlock()
	s.run()
}

// run performs one aggregator pass. Must be entered with state == Running.
// The active set is snapshotted before aggregation so "who is active" and
// "whose transactions count" always agree within one snapshot.
func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	windowStart, windowEnd := DayWindow(s.now(), s.timezone)

	active, err := s.tracker.ActiveStaff(ctx, s.locationID)
	if err != nil {
		s.logger.Printf("scheduler %s: serving stale active set: %v", s.locationID, err)
		if active == nil {
			s.finish(nil)
			return
		}
	}

	snapshot, err := s.aggregator.Aggregate(ctx, s.locationID, active, windowStart, windowEnd)
	if err != nil {
		s.logger.Printf("scheduler %s: recompute failed, keeping previous snapshot: %v", s.locationID, err)
		s.finish(nil)
		return
	}
	s.finish(&snapshot)
}

// finish publishes the result (if any) and leaves Running, re-arming the
// debounce when a notification arrived mid-run so nothing is dropped.
func (s *Scheduler) finish(snapshot *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if snapshot != nil {
		s.version++
		snapshot.Version = s.version
		s.latest = snapshot
		for _, ch := range s.subscribers {
			select {
			case ch <- *snapshot:
			default:
				// Drop the unread older snapshot, keep the newest.
				select {
				case <-ch:
				default:
				}
				ch <- *snapshot
			}
		}
	}

	if s.pendingAgain {
		s.pendingAgain = false
		s.state = statePending
		s.timer = time.AfterFunc(s.debounce, s.fire)
		return
	}
	s.state = stateIdle
}
