package service

import "RiskRegime/internal/domain/models"

// RiskClassifier fits a model from a feature matrix and its labels.
type RiskClassifier interface {
	Fit(X [][]float64, y []models.RiskLabel) (*models.TrainedModel, error)
}

// RiskPredictor scores one feature vector laid out in the model's contract order.
type RiskPredictor interface {
	Predict(x []float64) (models.RiskLabel, error)
	PredictProba(x []float64) ([]float64, error)
	Contract() models.FeatureContract
}
