package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	runs    int32
	release chan struct{}
	started chan struct{}
	err     error
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	if j.started != nil {
		j.started <- struct{}{}
	}
	if j.release != nil {
		<-j.release
	}
	return j.err
}

func TestAddJobRejectsBadSpecAndDuplicates(t *testing.T) {
	s := NewCronScheduler()
	job := &blockingJob{}
	assert.Error(t, s.AddJob(job, "not a spec"))
	require.NoError(t, s.AddJob(job, "*/5 * * * *"))
	assert.Error(t, s.AddJob(job, "* * * * *"))
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestRunNowSkipsOverlap(t *testing.T) {
	s := NewCronScheduler()
	job := &blockingJob{release: make(chan struct{}), started: make(chan struct{}, 1), err: errors.New("boom")}
	require.NoError(t, s.AddJob(job, "0 0 1 1 *"))

	done := make(chan struct{})
	go func() {
		_ = s.RunNow(context.Background(), "blocking")
		close(done)
	}()
	<-job.started
	// second trigger returns at once while the first is still running
	require.NoError(t, s.RunNow(context.Background(), "blocking"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))
	close(job.release)
	<-done

	job.release = nil
	require.NoError(t, s.RunNow(context.Background(), "blocking"))
	<-job.started
	assert.Equal(t, int32(2), atomic.LoadInt32(&job.runs))
}

func TestNextAndStop(t *testing.T) {
	s := NewCronScheduler()
	require.NoError(t, s.AddJob(&blockingJob{}, "0 * * * *"))
	s.Start(context.Background())
	defer s.Stop()
	next, ok := s.Next("blocking")
	require.True(t, ok)
	assert.True(t, next.After(time.Now()))
	assert.Zero(t, next.Minute())
	_, ok = s.Next("missing")
	assert.False(t, ok)
}
