package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"
)

var errInvalidInterval = errors.New("invalid interval")

// scheduledCycle is a single scheduled refresh cycle
type scheduledCycle struct {
	at time.Time
	id xid.ID
}

// Less is utilized to sort scheduled cycles by their due-time (latest == first)
func (a scheduledCycle) Less(b scheduledCycle) bool {
	return a.at.Before(b.at)
}

// Scheduler re-runs refresh cycles at a fixed interval, without
// waiting on the operator. The first cycle runs on boot
type Scheduler struct {
	refresher *Refresher

	q             iq.Queue[scheduledCycle]
	interval      time.Duration
	queryInterval time.Duration
	qMux          sync.Mutex
}

// NewScheduler creates a new refresh cycle scheduler
func NewScheduler(r *Refresher, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errInvalidInterval
	}

	s := &Scheduler{
		refresher:     r,
		q:             iq.NewQueue[scheduledCycle](),
		interval:      interval,
		queryInterval: time.Second, // every second
	}

	// Queue up the boot cycle
	s.scheduleCycle(time.Now().UTC())

	return s, nil
}

// Start starts the scheduler service loop [BLOCKING]
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.queryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.refresher.logger.Info("refresh scheduler shut down")

			return nil
		case <-ticker.C:
			next := s.nextCycle()
			if next == nil {
				continue // nothing due yet
			}

			s.refresher.runCycle(ctx)

			// Queue up the follow-up cycle
			s.scheduleCycle(time.Now().UTC().Add(s.interval))
		}
	}
}

// scheduleCycle schedules a refresh cycle at the given time
func (s *Scheduler) scheduleCycle(at time.Time) {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	s.q.Push(scheduledCycle{
		at: at,
		id: xid.New(),
	})
}

// nextCycle fetches the next due cycle, as of the moment of calling
func (s *Scheduler) nextCycle() *scheduledCycle {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	if s.q.Len() == 0 {
		return nil // nothing scheduled
	}

	if s.q.Index(0).at.After(time.Now().UTC()) {
		return nil // latest cycle is in the future
	}

	return s.q.PopFront()
}
