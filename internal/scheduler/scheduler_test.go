package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJob fails the first failures runs, then succeeds
type fakeJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler(retries int) *Scheduler {
	return New(nil, WithRetry(retries, time.Millisecond), WithTimeout(time.Second))
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 0 7 * * 1-5"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@daily"}))

	err := s.AddJob(&fakeJob{name: "a", schedule: "@daily"})
	assert.ErrorContains(t, err, "already exists")

	err = s.AddJob(&fakeJob{name: "c", schedule: "0 7 * * *"})
	assert.ErrorContains(t, err, "failed to schedule job c")

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	next, err := s.Next("a")
	require.NoError(t, err)
	assert.True(t, next.IsZero(), "entries have no next run before Start")
}

func TestRunJob_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler(3)
	job := &fakeJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "flaky")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)
	assert.Equal(t, int32(3), job.calls.Load())
}

func TestRunJob_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler(2)
	job := &fakeJob{name: "broken", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "broken")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "transient", result.Error)

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 0.0, stats.SuccessRate)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunJob_StopsOnCancel(t *testing.T) {
	s := New(nil, WithRetry(5, time.Hour))
	job := &fakeJob{name: "slow", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result, err := s.RunJob(ctx, "slow")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, context.Canceled.Error(), result.Error)
}

func TestRunJob_Unknown(t *testing.T) {
	_, err := newTestScheduler(0).RunJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = newTestScheduler(0).GetJobHistory("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobHistory(t *testing.T) {
	s := newTestScheduler(0)
	job := &fakeJob{name: "h", schedule: "@daily", failures: 1}
	require.NoError(t, s.AddJob(job))

	for i := 0; i < 3; i++ {
		_, err := s.RunJob(context.Background(), "h")
		require.NoError(t, err)
	}

	history, err := s.GetJobHistory("h")
	require.NoError(t, err)
	require.Len(t, history.Results, 3)
	assert.False(t, history.Results[0].Success)
	assert.InDelta(t, 2.0/3.0, history.SuccessRate(), 1e-12)
	assert.Equal(t, 1, history.Failures())
	assert.Len(t, history.Latest(10), 3)
	assert.Len(t, history.Latest(2), 2)

	last, ok := history.Last()
	require.True(t, ok)
	assert.True(t, last.Success)

	// 반환된 이력은 복사본
	history.Add(JobResult{JobName: "h"})
	again, _ := s.GetJobHistory("h")
	assert.Len(t, again.Results, 3)
}

func TestJobHistory_Cap(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+5; i++ {
		h.Add(JobResult{Attempts: i})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Equal(t, 5, h.Results[0].Attempts)

	empty := &JobHistory{}
	assert.Empty(t, empty.Latest(3))
	_, ok := empty.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, empty.SuccessRate())
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 0 7 * * *"}))

	s.Start()
	next, err := s.Next("a")
	require.NoError(t, err)
	assert.False(t, next.IsZero())
	assert.Equal(t, 7, next.Hour())

	s.Stop()
}
