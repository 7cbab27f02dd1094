package models

import "errors"

var (
	// ErrEmptySeries means no bar survived cleaning.
	ErrEmptySeries = errors.New("empty series")
	// ErrInsufficientHistory means the series is too short for the longest feature window.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrNoDataFound means the provider returned nothing for the symbol.
	ErrNoDataFound = errors.New("no data found")
	// ErrDegenerateBatch means volatility quantiles are undefined for the batch.
	ErrDegenerateBatch = errors.New("degenerate batch")
	// ErrShapeMismatch means a feature vector does not match the model's contract.
	ErrShapeMismatch = errors.New("feature shape mismatch")
	// ErrModelNotFound is returned by model stores for unknown keys.
	ErrModelNotFound = errors.New("model not found")
	// ErrModelUnavailable means inference was requested without a loaded model.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInsufficientSymbolData means training could not build features for a symbol.
	ErrInsufficientSymbolData = errors.New("insufficient symbol data")
)
