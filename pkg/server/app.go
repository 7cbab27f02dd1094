package server

import (
	"context"

	"RiskRegime/pkg/logger"
)

// Component is a long-running part of the process, such as the HTTP server or a scheduler.
type Component interface {
	Start() error
	Stop(ctx context.Context) error
}

// App owns the process lifecycle: it starts components in order, waits for ctx to
// end, then stops them in reverse order.
type App struct {
	log        *logger.Logger
	components []namedComponent
}

type namedComponent struct {
	name string
	c    Component
}

// New creates an empty App.
func New(l *logger.Logger) *App {
	return &App{log: l}
}

// Add registers a component.
func (a *App) Add(name string, c Component) *App {
	if c != nil {
		a.components = append(a.components, namedComponent{name: name, c: c})
	}
	return a
}

// Run blocks until ctx is done. shutdownCtx bounds the stop phase.
func (a *App) Run(ctx context.Context, shutdownCtx func() (context.Context, context.CancelFunc)) error {
	started := 0
	for _, nc := range a.components {
		if err := nc.c.Start(); err != nil {
			a.log.Error("component start failed", logger.String("component", nc.name), logger.Error(err))
			a.stop(shutdownCtx, started)
			return err
		}
		a.log.Info("component started", logger.String("component", nc.name))
		started++
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	a.stop(shutdownCtx, started)
	return nil
}

func (a *App) stop(shutdownCtx func() (context.Context, context.CancelFunc), started int) {
	ctx, cancel := shutdownCtx()
	defer cancel()

	for i := started - 1; i >= 0; i-- {
		nc := a.components[i]
		if err := nc.c.Stop(ctx); err != nil {
			a.log.Warn("component stop error", logger.String("component", nc.name), logger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
}
