package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskRegime/internal/domain/models"
	"RiskRegime/pkg/logger"
)

type countingTrainer struct {
	calls int
	req   models.TrainRequest
	err   error
}

func (c *countingTrainer) Train(ctx context.Context, req models.TrainRequest) (*TrainResult, error) {
	c.calls++
	c.req = req
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	if c.err != nil {
		return nil, c.err
	}
	return &TrainResult{Model: &models.TrainedModel{ID: "rf-test"}}, nil
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("not a cron", &countingTrainer{}, models.TrainRequest{}, time.Minute, logger.Nop())
	assert.Error(t, err)
}

func TestSchedulerRunsTrainer(t *testing.T) {
	tr := &countingTrainer{}
	req := models.TrainRequest{Symbols: []string{"AAPL"}, Period: "2y", ModelKey: "risk_model"}
	s, err := NewScheduler("@daily", tr, req, time.Minute, logger.Nop())
	require.NoError(t, err)

	s.run()
	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, req, tr.req)

	tr.err = errors.New("boom")
	s.run()
	assert.Equal(t, 2, tr.calls)
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := NewScheduler("0 3 * * 1-5", &countingTrainer{}, models.TrainRequest{}, time.Minute, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

type blockingTrainer struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingTrainer) Train(context.Context, models.TrainRequest) (*TrainResult, error) {
	b.calls.Add(1)
	b.started <- struct{}{}
	<-b.release
	return &TrainResult{Model: &models.TrainedModel{ID: "rf-slow"}}, nil
}

func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	tr := &blockingTrainer{started: make(chan struct{}, 2), release: make(chan struct{})}
	s, err := NewScheduler("@daily", tr, models.TrainRequest{}, time.Minute, logger.Nop())
	require.NoError(t, err)
	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	job := entries[0].WrappedJob

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job.Run()
	}()
	<-tr.started

	// Fires while the first run is blocked and must be dropped.
	job.Run()
	assert.Equal(t, int32(1), tr.calls.Load())

	close(tr.release)
	wg.Wait()

	job.Run()
	assert.Equal(t, int32(2), tr.calls.Load())
}
