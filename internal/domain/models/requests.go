package models

// Requests for the HTTP adapter and the training CLI.

type AnalyzeRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=16"`
	Period string `query:"period" json:"period" default:"1y" validate:"oneof=1y 2y 5y"`
}

type TrainRequest struct {
	Symbols  []string `json:"symbols" validate:"required,min=1,dive,required"`
	Period   string   `json:"period" default:"2y" validate:"oneof=1y 2y 5y 10y"`
	ModelKey string   `json:"model_key" default:"risk_model" validate:"required"`
}
