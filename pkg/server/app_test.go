package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"RiskRegime/pkg/logger"
)

type fakeComponent struct {
	name     string
	events   *[]string
	startErr error
}

func (f *fakeComponent) Start() error {
	*f.events = append(*f.events, "start "+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	*f.events = append(*f.events, "stop "+f.name)
	return nil
}

func shutdownCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Second)
}

func TestAppLifecycleOrder(t *testing.T) {
	var events []string
	app := New(logger.Nop()).
		Add("http", &fakeComponent{name: "http", events: &events}).
		Add("cron", &fakeComponent{name: "cron", events: &events})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, app.Run(ctx, shutdownCtx))
	assert.Equal(t, []string{"start http", "start cron", "stop cron", "stop http"}, events)
}

func TestAppStartFailureStopsStarted(t *testing.T) {
	var events []string
	app := New(logger.Nop()).
		Add("http", &fakeComponent{name: "http", events: &events}).
		Add("cron", &fakeComponent{name: "cron", events: &events, startErr: errors.New("bad spec")})

	err := app.Run(context.Background(), shutdownCtx)
	assert.Error(t, err)
	assert.Equal(t, []string{"start http", "start cron", "stop http"}, events)
}
