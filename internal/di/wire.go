//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"RiskRegime/internal/usecase"
	"RiskRegime/pkg/config"
	"RiskRegime/pkg/server"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideTimeSeriesSource,
	ProvideModelStore,
	ProvideEventPublisher,
)

// InitializeServer wires the serving process: HTTP API plus the optional
// retraining scheduler.
func InitializeServer(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		ProvideTrainingOrchestrator,
		ProvideTrainedModel,
		ProvideInferenceService,
		ProvideHandlers,
		ProvideHTTPServer,
		ProvideScheduler,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeTrainer wires a one-shot training run.
func InitializeTrainer(cfg *config.Config) (*usecase.TrainingOrchestrator, func(), error) {
	wire.Build(
		infraSet,
		ProvideTrainingOrchestrator,
	)
	return nil, nil, nil
}

// InitializeInference wires the inference use case without the HTTP layer.
func InitializeInference(cfg *config.Config) (*usecase.InferenceService, func(), error) {
	wire.Build(
		infraSet,
		ProvideTrainedModel,
		ProvideInferenceService,
	)
	return nil, nil, nil
}
