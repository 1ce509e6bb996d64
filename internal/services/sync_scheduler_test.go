package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSynchronizer struct {
	mu      sync.Mutex
	running int
	overlap bool
	scopes  []hh.VacancyScope
}

func (r *recordingSynchronizer) Execute(ctx context.Context, scope hh.VacancyScope) error {
	r.mu.Lock()
	r.running++
	if r.running > 1 {
		r.overlap = true
	}
	r.scopes = append(r.scopes, scope)
	r.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	r.mu.Lock()
	r.running--
	r.mu.Unlock()
	return nil
}

func Test_SyncScheduler_Run_ShouldNotOverlap(t *testing.T) {
	synchronizer := &recordingSynchronizer{}

	scheduler, err := NewSyncScheduler(context.Background(), synchronizer, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, scope := range []hh.VacancyScope{hh.ActiveVacancies, hh.ArchivedVacancies, hh.ActiveVacancies} {
		wg.Add(1)
		go func(scope hh.VacancyScope) {
			defer wg.Done()
			scheduler.Run(scope)
		}(scope)
	}
	wg.Wait()

	assert.False(t, synchronizer.overlap)
	assert.Len(t, synchronizer.scopes, 3)
}

func Test_NewSyncScheduler_WhenScheduleInvalid_ShouldFail(t *testing.T) {
	_, err := NewSyncScheduler(context.Background(), &recordingSynchronizer{}, map[hh.VacancyScope]string{
		hh.ActiveVacancies: "every now and then",
	})

	assert.Error(t, err)
}

func Test_NewSyncScheduler_WhenScheduleEmpty_ShouldSkipScope(t *testing.T) {
	scheduler, err := NewSyncScheduler(context.Background(), &recordingSynchronizer{}, map[hh.VacancyScope]string{
		hh.ActiveVacancies:   "*/15 * * * *",
		hh.ArchivedVacancies: "",
	})
	require.NoError(t, err)

	assert.Len(t, scheduler.cron.Entries(), 1)
}

type blockingSynchronizer struct {
	started  chan hh.VacancyScope
	release  chan struct{}
	finished chan hh.VacancyScope
}

func newBlockingSynchronizer() *blockingSynchronizer {
	return &blockingSynchronizer{
		started:  make(chan hh.VacancyScope, 4),
		release:  make(chan struct{}),
		finished: make(chan hh.VacancyScope, 4),
	}
}

func (b *blockingSynchronizer) Execute(ctx context.Context, scope hh.VacancyScope) error {
	b.started <- scope
	<-b.release
	b.finished <- scope
	return nil
}

func Test_SyncScheduler_Trigger_WhenRunning_ShouldSkip(t *testing.T) {
	synchronizer := newBlockingSynchronizer()

	scheduler, err := NewSyncScheduler(context.Background(), synchronizer, nil)
	require.NoError(t, err)

	require.True(t, scheduler.Trigger(hh.ActiveVacancies))
	assert.Equal(t, hh.ActiveVacancies, <-synchronizer.started)

	assert.False(t, scheduler.Trigger(hh.ArchivedVacancies))
	assert.False(t, scheduler.Trigger(hh.ActiveVacancies))

	close(synchronizer.release)
	scheduler.Stop()

	assert.Len(t, synchronizer.finished, 1)
	assert.Empty(t, synchronizer.started)
	assert.True(t, scheduler.Trigger(hh.ArchivedVacancies))
	scheduler.Stop()
	assert.Len(t, synchronizer.finished, 2)
}

func Test_SyncScheduler_Stop_ShouldWaitForTriggeredRun(t *testing.T) {
	synchronizer := newBlockingSynchronizer()

	scheduler, err := NewSyncScheduler(context.Background(), synchronizer, nil)
	require.NoError(t, err)
	scheduler.Start()

	require.True(t, scheduler.Trigger(hh.ActiveVacancies))
	<-synchronizer.started

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while synchronization was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(synchronizer.release)
	<-stopped
	assert.Len(t, synchronizer.finished, 1)
}
