package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Inline_ReturnsJobError(t *testing.T) {
	jobErr := errors.New("failed")
	ran := false

	err := NewInline().Dispatch(context.Background(), "test", func(ctx context.Context) error {
		ran = true
		return jobErr
	})

	assert.True(t, ran)
	assert.ErrorIs(t, err, jobErr)
}

func Test_Queued_RunsEveryJob(t *testing.T) {
	queued, err := NewQueued(EventBus.New())
	require.NoError(t, err)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		err = queued.Dispatch(context.Background(), "test", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
		assert.NoError(t, err)
	}

	queued.Wait()
	assert.Equal(t, int32(5), ran.Load())
}

func Test_Queued_JobSurvivesCallerCancellation(t *testing.T) {
	queued, err := NewQueued(EventBus.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	var jobCtxErr error

	err = queued.Dispatch(ctx, "test", func(jobCtx context.Context) error {
		<-release
		jobCtxErr = jobCtx.Err()
		return errors.New("logged, not returned")
	})
	require.NoError(t, err)

	cancel()
	close(release)
	queued.Wait()

	assert.NoError(t, jobCtxErr)
}
