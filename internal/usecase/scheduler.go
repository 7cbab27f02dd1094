package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"RiskRegime/internal/domain/models"
	"RiskRegime/pkg/logger"
)

// Trainer runs one training pass.
type Trainer interface {
	Train(ctx context.Context, req models.TrainRequest) (*TrainResult, error)
}

// Scheduler retrains on a cron schedule. A run that is still going when the next
// tick fires causes that tick to be skipped.
type Scheduler struct {
	cron    *cron.Cron
	trainer Trainer
	req     models.TrainRequest
	timeout time.Duration
	l       *logger.Logger
}

// NewScheduler parses spec (standard five-field cron or a descriptor such as
// "@daily") and registers the training job.
func NewScheduler(spec string, trainer Trainer, req models.TrainRequest, timeout time.Duration, l *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		trainer: trainer,
		req:     req,
		timeout: timeout,
		l:       l.Component("scheduler"),
	}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLogger{s.l}), cron.SkipIfStillRunning(cronLogger{s.l})),
	)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := s.trainer.Train(ctx, s.req)
	if err != nil {
		s.l.Error("scheduled training failed", logger.Error(err))
		return
	}
	s.l.Info("scheduled training done", logger.String("model_id", res.Model.ID))
}

// Start begins firing the schedule. It does not block.
func (s *Scheduler) Start() error {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.l.Info("retraining scheduled", logger.Time("next_run", e.Next))
	}
	return nil
}

// Stop waits for a running job to finish or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct{ l *logger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
