package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/awaresim/internal/service/dispatch"
)

type countingTicker struct {
	calls atomic.Int64
	res   *dispatch.TickResult
	err   error
}

func (c *countingTicker) Tick(ctx context.Context) (*dispatch.TickResult, error) {
	c.calls.Add(1)
	return c.res, c.err
}

func setupScheduler(t *testing.T, tk Ticker) (*Scheduler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewScheduler(tk, nil)
	s.SetRedisClient(client)
	return s, mr
}

const lockKey = "awaresim:lock:" + tickLockKey

func TestScheduler_RunNow(t *testing.T) {
	tk := &countingTicker{res: &dispatch.TickResult{Attempted: 4, Sent: 2, Failed: 1, Bounced: 1}}
	s, mr := setupScheduler(t, tk)

	res, ran, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, res.Sent)
	assert.False(t, mr.Exists(lockKey), "lock must be released after the tick")

	st := s.Stats()
	assert.Equal(t, int64(1), st.TicksRun)
	assert.Equal(t, int64(2), st.Sent)
	assert.Equal(t, int64(1), st.Failed)
	assert.Equal(t, int64(1), st.Bounced)
}

func TestScheduler_SkipsWhenLockHeld(t *testing.T) {
	tk := &countingTicker{res: &dispatch.TickResult{}}
	s, mr := setupScheduler(t, tk)
	require.NoError(t, mr.Set(lockKey, "other-worker"))

	_, ran, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, tk.calls.Load())
	assert.Equal(t, int64(1), s.Stats().TicksSkipped)

	v, _ := mr.Get(lockKey)
	assert.Equal(t, "other-worker", v, "another holder's lock must survive")
}

func TestScheduler_ExpiredLockIsTakenOver(t *testing.T) {
	tk := &countingTicker{res: &dispatch.TickResult{}}
	s, mr := setupScheduler(t, tk)
	s.SetLockTTL(time.Minute)

	require.NoError(t, mr.Set(lockKey, "crashed-worker"))
	mr.SetTTL(lockKey, 30*time.Second)
	mr.FastForward(31 * time.Second)

	_, ran, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestScheduler_TickErrorIsCounted(t *testing.T) {
	tk := &countingTicker{res: &dispatch.TickResult{Sent: 1}, err: errors.New("due campaigns: connection refused")}
	s, mr := setupScheduler(t, tk)

	_, ran, err := s.RunNow(context.Background())
	assert.Error(t, err)
	assert.True(t, ran)
	assert.Equal(t, int64(1), s.Stats().TickErrors)
	assert.Equal(t, int64(1), s.Stats().Sent)
	assert.False(t, mr.Exists(lockKey))
}

func TestScheduler_StartStop(t *testing.T) {
	tk := &countingTicker{res: &dispatch.TickResult{}}
	s, _ := setupScheduler(t, tk)
	s.SetInterval(10 * time.Millisecond)

	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "double start")

	assert.Eventually(t, func() bool { return tk.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	after := tk.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, tk.calls.Load(), "no ticks after Stop")

	s.Stop()
}

func TestScheduler_Defaults(t *testing.T) {
	s := NewScheduler(&countingTicker{}, nil)
	assert.Equal(t, DefaultInterval, s.interval)
	assert.Equal(t, DefaultLockTTL, s.lockTTL)

	s.SetInterval(0)
	s.SetLockTTL(-time.Second)
	assert.Equal(t, DefaultInterval, s.interval)
	assert.Equal(t, DefaultLockTTL, s.lockTTL)
	assert.Contains(t, s.Stats().WorkerID, "dispatch-")
}
