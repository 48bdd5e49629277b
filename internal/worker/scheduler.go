// Package worker runs the dispatch scheduler.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/awaresim/internal/metrics"
	"github.com/ignite/awaresim/internal/pkg/distlock"
	"github.com/ignite/awaresim/internal/pkg/logger"
	"github.com/ignite/awaresim/internal/service/dispatch"
)

const (
	// DefaultInterval is how often a dispatch tick runs.
	DefaultInterval = 60 * time.Second

	// DefaultLockTTL bounds how long a crashed holder blocks other workers.
	DefaultLockTTL = 5 * time.Minute

	tickLockKey = "dispatch:tick"
)

// Ticker runs one dispatch pass.
type Ticker interface {
	Tick(ctx context.Context) (*dispatch.TickResult, error)
}

// Stats is a snapshot of the scheduler counters.
type Stats struct {
	WorkerID     string `json:"worker_id"`
	TicksRun     int64  `json:"ticks_run"`
	TicksSkipped int64  `json:"ticks_skipped"`
	TickErrors   int64  `json:"tick_errors"`
	Sent         int64  `json:"sent"`
	Failed       int64  `json:"failed"`
	Bounced      int64  `json:"bounced"`
}

// Scheduler runs dispatch ticks on an interval. Each tick takes a
// distributed lock first, so only one worker dispatches at a time and an
// overlapping instance skips its turn instead of queueing.
type Scheduler struct {
	ticker      Ticker
	db          *sql.DB
	redisClient *redis.Client // optional; nil falls back to PG advisory locks
	workerID    string
	interval    time.Duration
	lockTTL     time.Duration

	// Stats
	ticksRun     int64
	ticksSkipped int64
	tickErrors   int64
	sent         int64
	failed       int64
	bounced      int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewScheduler creates a scheduler. db backs the advisory-lock fallback.
func NewScheduler(t Ticker, db *sql.DB) *Scheduler {
	return &Scheduler{
		ticker:   t,
		db:       db,
		workerID: fmt.Sprintf("dispatch-%s-%d", hostname(), time.Now().UnixNano()%10000),
		interval: DefaultInterval,
		lockTTL:  DefaultLockTTL,
	}
}

// SetRedisClient switches tick locking to Redis.
func (s *Scheduler) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// SetInterval overrides the tick interval. Non-positive values are ignored.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// SetLockTTL overrides the Redis lock TTL. Non-positive values are ignored.
func (s *Scheduler) SetLockTTL(d time.Duration) {
	if d > 0 {
		s.lockTTL = d
	}
}

// Start begins the tick loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	logger.Info("dispatch scheduler starting", "worker_id", s.workerID, "interval", s.interval.String())

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop cancels the loop and waits for an in-flight tick to return. Rows
// that tick had not committed stay pending.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	st := s.Stats()
	logger.Info("dispatch scheduler stopped",
		"worker_id", s.workerID,
		"ticks_run", st.TicksRun,
		"sent", st.Sent,
	)
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.RunNow(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("dispatch tick failed", "worker_id", s.workerID, "error", err)
			}
		}
	}
}

// RunNow runs one tick immediately under the distributed lock. ran is false
// when another worker holds the lock.
func (s *Scheduler) RunNow(ctx context.Context) (res *dispatch.TickResult, ran bool, err error) {
	lock := distlock.NewLock(s.redisClient, s.db, tickLockKey, s.lockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		atomic.AddInt64(&s.tickErrors, 1)
		metrics.DispatchTicks.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("acquire tick lock: %w", err)
	}
	if !acquired {
		atomic.AddInt64(&s.ticksSkipped, 1)
		metrics.DispatchTicks.WithLabelValues("skipped").Inc()
		logger.Debug("dispatch tick skipped, lock held elsewhere", "worker_id", s.workerID)
		return nil, false, nil
	}
	defer func() {
		// released on a fresh context so a cancelled tick still frees the lock
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if rerr := lock.Release(relCtx); rerr != nil {
			logger.Warn("release tick lock", "worker_id", s.workerID, "error", rerr)
		}
	}()

	res, err = s.ticker.Tick(ctx)
	atomic.AddInt64(&s.ticksRun, 1)
	if res != nil {
		atomic.AddInt64(&s.sent, int64(res.Sent))
		atomic.AddInt64(&s.failed, int64(res.Failed))
		atomic.AddInt64(&s.bounced, int64(res.Bounced))
	}
	if err != nil {
		atomic.AddInt64(&s.tickErrors, 1)
		metrics.DispatchTicks.WithLabelValues("error").Inc()
		return res, true, err
	}
	metrics.DispatchTicks.WithLabelValues("ran").Inc()
	return res, true, nil
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		WorkerID:     s.workerID,
		TicksRun:     atomic.LoadInt64(&s.ticksRun),
		TicksSkipped: atomic.LoadInt64(&s.ticksSkipped),
		TickErrors:   atomic.LoadInt64(&s.tickErrors),
		Sent:         atomic.LoadInt64(&s.sent),
		Failed:       atomic.LoadInt64(&s.failed),
		Bounced:      atomic.LoadInt64(&s.bounced),
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
