package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSchedulerRunsJob(t *testing.T) {
	s := NewScheduler(quietLogger())

	var runs int32
	_, err := s.ScheduleEvery("race", time.Second, 0, func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		atomic.AddInt32(&runs, 1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.NextRun().IsZero())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestSchedulerRejectsChangesWhileRunning(t *testing.T) {
	s := NewScheduler(quietLogger())
	assert.Error(t, s.Start(), "no jobs scheduled")

	_, err := s.ScheduleEvery("race", time.Minute, 0, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.Start())
	_, err = s.ScheduleEvery("late", time.Minute, 0, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	s := NewScheduler(quietLogger())

	var active, maxActive int32
	_, err := s.ScheduleEvery("slow", time.Second, 5*time.Second, func(ctx context.Context) error {
		n := atomic.AddInt32(&active, 1)
		if n > atomic.LoadInt32(&maxActive) {
			atomic.StoreInt32(&maxActive, n)
		}
		time.Sleep(2500 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())

	time.Sleep(4 * time.Second)
	require.NoError(t, s.Stop())
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
}
